package gcode

import "strings"

// ObscuredEntry replaces every configuration entry when obscuring.
const ObscuredEntry = "; = 0"

// ObscureConfig overwrites the configuration block from the end of the
// file back to its begin marker. The end marker survives so the block
// stays recognisable. It returns the number of lines overwritten; 0 when
// the file has no configuration block.
func ObscureConfig(doc *Document, d Dialect) int {
	m := d.Markers()
	begin := -1
	for i := len(doc.Lines) - 1; i >= 0; i-- {
		if strings.EqualFold(strings.TrimSpace(doc.Lines[i].Text), m.ConfigBegin) {
			begin = i
			break
		}
	}
	if begin < 0 {
		return 0
	}
	n := 0
	for i := begin + 1; i < len(doc.Lines); i++ {
		if strings.EqualFold(strings.TrimSpace(doc.Lines[i].Text), m.ConfigEnd) {
			continue
		}
		doc.Lines[i].Text = ObscuredEntry
		n++
	}
	return n
}
