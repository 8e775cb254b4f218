package gcode

import (
	"fmt"
	"regexp"
)

var reInfoBlock = regexp.MustCompile(`(?i)^;\s.*extrusion width`)

// AddLayerCount writes "; total number of layers = N" into the slicer's
// info block, in front of the first blank line after the first
// "extrusion width" entry. It reports whether the line was added.
func AddLayerCount(doc *Document, total int) bool {
	inBlock := false
	for i, l := range doc.Lines {
		if !inBlock {
			inBlock = reInfoBlock.MatchString(l.Text)
			continue
		}
		if l.Text == "" {
			info := Line{Text: fmt.Sprintf("; total number of layers = %d", total), Tag: TagInfo}
			doc.Lines = append(doc.Lines[:i], append([]Line{info}, doc.Lines[i:]...)...)
			return true
		}
	}
	return false
}
