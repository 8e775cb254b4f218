package gcode

import "strings"

type typePair struct {
	from, to string
}

// orcaTypes maps OrcaSlicer feature names to the PrusaSlicer names its
// G-code viewer colours.
var orcaTypes = []typePair{
	{"Skirt", "Skirt/Brim"},
	{"Brim", "Skirt/Brim"},
	{"Support interface", "Support material interface"},
	{"Support", "Support material"},
	{"Sparse infill", "Internal infill"},
	{"Internal solid infill", "Solid infill"},
	{"Bridge", "Bridge infill"},
	{"Overhang wall", "Overhang perimeter"},
	{"Bottom surface", "Solid infill"},
	{"Top surface", "Top solid infill"},
	{"Outer wall", "External perimeter"},
	{"Inner wall", "Perimeter"},
}

// craftWareTypes maps CraftWare segment types to PrusaSlicer feature names.
var craftWareTypes = []typePair{
	{"Skirt", "Skirt/Brim"},
	{"SoftSupport", "Support material interface"},
	{"Support", "Support material"},
	{"Infill", "Solid infill"},
	{"Solid infill", "Internal solid infill"},
	{"Perimeter", "Gap fill"},
	{"Perimeter", "External perimeter"},
	{"Loop", "Perimeter"},
}

const typePrefix = ";TYPE:"

// ViewerTypes rewrites ;TYPE: comments so other G-code viewers colour
// the features.
type ViewerTypes struct {
	// Orca renames OrcaSlicer types to PrusaSlicer types.
	Orca bool
	// CraftWare adds a ;segType: line in front of known types.
	CraftWare bool
}

// Apply rewrites doc in place and returns the number of lines changed.
func (v ViewerTypes) Apply(doc *Document) int {
	if !v.Orca && !v.CraftWare {
		return 0
	}
	changed := 0
	out := make([]Line, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		if !strings.HasPrefix(l.Text, typePrefix) {
			out = append(out, l)
			continue
		}
		text := l.Text
		name := strings.TrimSpace(strings.TrimPrefix(text, typePrefix))

		if v.Orca {
			if pair, ok := lookupType(orcaTypes, name, func(p typePair) string { return p.from }); ok {
				text = typePrefix + pair.to
				name = pair.to
			}
		}
		replaced := []Line{{Text: text, Tag: l.Tag}}
		if v.CraftWare {
			if seg, ok := lookupType(craftWareTypes, name, func(p typePair) string { return p.to }); ok {
				replaced = append([]Line{{Text: ";segType:" + seg.from, Tag: l.Tag}}, replaced...)
			}
		}

		if len(replaced) != 1 || text != l.Text {
			changed++
		}
		out = append(out, replaced...)
	}
	doc.Lines = out
	return changed
}

// lookupType returns the first pair whose key matches name, ignoring case.
func lookupType(table []typePair, name string, key func(typePair) string) (typePair, bool) {
	for _, p := range table {
		if strings.EqualFold(key(p), name) {
			return p, true
		}
	}
	return typePair{}, false
}
