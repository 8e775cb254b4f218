package gcode

import "strings"

// CommentStripper removes comments after the startup rewrite site.
// It never removes a line: stripped content becomes a blank line.
type CommentStripper struct {
	Mode    CommentMode
	Dialect Dialect
}

// Strip applies the configured mode in place and returns the number of
// lines it changed.
func (cs CommentStripper) Strip(doc *Document) int {
	switch cs.Mode {
	case CommentsStripTrailing:
		return cs.stripTrailing(doc)
	case CommentsStripAll:
		return cs.stripAll(doc)
	}
	return 0
}

// stripTrailing cuts comments off code lines. Pure comment lines stay,
// and everything from the configuration block on is left verbatim.
func (cs CommentStripper) stripTrailing(doc *Document) int {
	start := doc.LastTagged(TagStartup) + 1
	begin := cs.Dialect.Markers().ConfigBegin
	changed := 0
	for i := start; i < len(doc.Lines); i++ {
		text := doc.Lines[i].Text
		if strings.EqualFold(strings.TrimSpace(text), begin) {
			break
		}
		if IsComment(text) {
			continue
		}
		if stripped := StripComment(text); stripped != text {
			doc.Lines[i].Text = stripped
			changed++
		}
	}
	return changed
}

// stripAll blanks pure comment lines and cuts comments off the rest,
// configuration block included.
func (cs CommentStripper) stripAll(doc *Document) int {
	start := doc.FirstTagged(TagStartup)
	if start < 0 {
		start = 0
	}
	changed := 0
	for i := start; i < len(doc.Lines); i++ {
		text := doc.Lines[i].Text
		stripped := ""
		if !IsComment(text) {
			stripped = StripComment(text)
		}
		if stripped != text {
			doc.Lines[i].Text = stripped
			changed++
		}
	}
	return changed
}

// StripComment truncates a line at its first unescaped ';' and trims
// surrounding whitespace. Whitespace runs holding a tab become one space.
func StripComment(line string) string {
	code := CodePart(line)
	if strings.Contains(code, "\t") {
		return strings.Join(strings.Fields(code), " ")
	}
	return strings.TrimSpace(code)
}
