package gcode

import (
	"fmt"
	"strconv"
	"strings"
)

// FirstLayerStatus replaces the marker of layer 0 in every mode.
const FirstLayerStatus = "M117 First Layer"

// progressSteps picks the transitional bar character from the fractional
// part of the filled length. Ordered by threshold; the highest one not
// above the remainder wins.
var progressSteps = []struct {
	threshold float64
	char      string
}{
	{0, "."},
	{.25, ":"},
	{.5, "+"},
	{.75, "#"},
}

// CountLayers scans backwards for the last ;layer:<n> marker and returns n.
// It returns 0 when the file has no layer markers.
func CountLayers(doc *Document) int {
	for i := len(doc.Lines) - 1; i >= 0; i-- {
		if n, ok := LayerNumber(doc.Lines[i].Text); ok {
			return n
		}
	}
	return 0
}

// ProgressAnnotator rewrites "M117 Layer <n>" lines.
type ProgressAnnotator struct {
	Mode  ProgressMode
	Width int
	Char  string
}

// Annotate replaces every progress marker and returns how many it replaced.
// Nothing is replaced when total is 0.
func (a ProgressAnnotator) Annotate(doc *Document, total int) int {
	if a.Mode == ProgressNone || total <= 0 {
		return 0
	}
	replaced := 0
	for i, l := range doc.Lines {
		sub := reLayerM117.FindStringSubmatch(l.Text)
		if sub == nil {
			continue
		}
		n, err := strconv.Atoi(sub[1])
		if err != nil {
			continue
		}
		doc.Lines[i].Text = a.Status(n, total)
		replaced++
	}
	return replaced
}

// Status renders the display line for layer n of total.
func (a ProgressAnnotator) Status(n, total int) string {
	if n == 0 {
		return FirstLayerStatus
	}
	switch a.Mode {
	case ProgressBar:
		return "M117 [" + Bar(n, total, a.Width, a.Char) + "]"
	case ProgressLayerOfTotal:
		return fmt.Sprintf("M117 Layer %d of %d", n+1, total+1)
	default:
		return fmt.Sprintf("M117 Layer %d, %s%%", n+1, Percentage(n, total))
	}
}

// BarFill returns the number of full bar cells for layer n and the
// fractional remainder of the next cell.
func BarFill(n, total, width int) (int, float64) {
	if total <= 0 || width <= 0 {
		return 0, 0
	}
	if n >= total {
		return width, 0
	}
	filled := width * n / total
	rem := float64(width*n%total) / float64(total)
	return filled, rem
}

// Bar renders exactly width characters: full cells, one transitional
// character while the print is unfinished, then padding dots.
func Bar(n, total, width int, char string) string {
	filled, rem := BarFill(n, total, width)
	var b strings.Builder
	b.WriteString(strings.Repeat(char, filled))
	if filled < width {
		step := progressSteps[0].char
		for _, s := range progressSteps {
			if rem >= s.threshold {
				step = s.char
			} else {
				break
			}
		}
		b.WriteString(step)
		b.WriteString(strings.Repeat(".", width-filled-1))
	}
	return b.String()
}

// Percentage formats n/total as a percentage with three significant
// digits, cut to a fixed display width.
func Percentage(n, total int) string {
	if total <= 0 {
		return NaN
	}
	s := strconv.FormatFloat(float64(n)/float64(total)*100, 'g', 3, 64)
	if strings.HasSuffix(s, ".") && len(s) > 3 {
		return s[:3]
	}
	if len(s) > 4 {
		return s[:4]
	}
	return s
}
