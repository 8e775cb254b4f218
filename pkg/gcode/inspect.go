package gcode

import (
	"fmt"
	"io"
	"strings"
)

// Summary is a read-only description of a file as the engine sees it.
type Summary struct {
	Lines            int
	Layers           int
	FirstLayerHeight Number
	Objects          int
	ConfigBlock      bool
	ApproachLine     int
	ProgressMarkers  int
	CRLF             bool
}

// Inspect classifies every line of doc without changing it.
func Inspect(doc *Document, d Dialect) Summary {
	s := Summary{
		Lines:            doc.Len(),
		Layers:           CountLayers(doc),
		FirstLayerHeight: FindFirstLayerHeight(doc, d),
		ApproachLine:     -1,
		CRLF:             doc.Ending == "\r\n",
	}
	s.Objects = len(SplitPlate(doc, d).Objects)

	sawHeight := false
	for i, l := range doc.Lines {
		c := Classify(l.Text, d)
		switch {
		case c.Category == ConfigBoundary && c.Boundary == BoundaryBegin:
			s.ConfigBlock = true
		case c.Category == ProgressMarker:
			s.ProgressMarkers++
		case c.Category == HeightMarker && c.HeightKind == HeightZ:
			sawHeight = true
		case sawHeight && s.ApproachLine < 0 && isApproach(c):
			s.ApproachLine = i + 1
		}
	}
	return s
}

// WriteTo prints the summary as aligned "key: value" lines.
func (s Summary) WriteTo(w io.Writer) (int64, error) {
	approach := "not found"
	if s.ApproachLine > 0 {
		approach = fmt.Sprintf("line %d", s.ApproachLine)
	}
	ending := "LF"
	if s.CRLF {
		ending = "CRLF"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "lines:              %d (%s)\n", s.Lines, ending)
	fmt.Fprintf(&b, "layers:             %d\n", s.Layers)
	fmt.Fprintf(&b, "first layer height: %s\n", s.FirstLayerHeight)
	fmt.Fprintf(&b, "objects:            %d\n", s.Objects)
	fmt.Fprintf(&b, "config block:       %t\n", s.ConfigBlock)
	fmt.Fprintf(&b, "approach move:      %s\n", approach)
	fmt.Fprintf(&b, "progress markers:   %d\n", s.ProgressMarkers)
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}
