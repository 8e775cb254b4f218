package gcode

import (
	"regexp"
	"strconv"
	"strings"
)

// Category is the structural role of one line.
type Category int

const (
	Other Category = iota
	Blank
	Comment
	LayerMarker
	ProgressMarker
	HeightMarker
	ConfigBoundary
	ObjectStartMarker
	HeaderEndMarker
	FooterStartMarker
	SafeZoneMarker
	ApproachMoveCandidate
	GenericLayerZeroMove
)

var categoryNames = [...]string{
	Other:                 "other",
	Blank:                 "blank",
	Comment:               "comment",
	LayerMarker:           "layer-marker",
	ProgressMarker:        "progress-marker",
	HeightMarker:          "height-marker",
	ConfigBoundary:        "config-boundary",
	ObjectStartMarker:     "object-start",
	HeaderEndMarker:       "header-end",
	FooterStartMarker:     "footer-start",
	SafeZoneMarker:        "safe-zone",
	ApproachMoveCandidate: "approach-move",
	GenericLayerZeroMove:  "generic-layer-zero-move",
}

func (c Category) String() string {
	if int(c) >= 0 && int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "category(" + strconv.Itoa(int(c)) + ")"
}

// HeightKind tells a ;Z: marker from a ;HEIGHT: marker.
type HeightKind int

const (
	HeightZ HeightKind = iota
	HeightLayer
)

// Boundary is the side of the configuration block a boundary line opens or closes.
type Boundary int

const (
	BoundaryBegin Boundary = iota
	BoundaryEnd
)

// Move is the payload of a recognised motion line.
// Absent coordinates are invalid Numbers.
type Move struct {
	X, Y, Z, Feed Number

	// XText and YText are the coordinates exactly as written.
	XText, YText string
}

// Classification is the result of Classify.
type Classification struct {
	Category   Category
	Layer      int
	Height     Number
	HeightKind HeightKind
	Boundary   Boundary
	Move       *Move
}

const numberPattern = `[-+]?\d*\.?\d+`

var (
	reLayerNum  = regexp.MustCompile(`(?i);layer:\s*(\d+)`)
	reLayerM117 = regexp.MustCompile(`(?i)^M117 Layer (\d+)`)
	reZ         = regexp.MustCompile(`(?i)^;Z:(.*)`)
	reHeight    = regexp.MustCompile(`(?i)^;HEIGHT:(.*)`)
	reZValue    = regexp.MustCompile(`(?i)\bZ(` + numberPattern + `)`)
	reFeed      = regexp.MustCompile(`(?i)\bF(` + numberPattern + `)`)
	reXY        = regexp.MustCompile(`(?i)^G1\s+X(` + numberPattern + `)\s+Y(` + numberPattern + `)`)
	reApproach  = regexp.MustCompile(`(?i)^G1\s+X` + numberPattern + `\s+Y` + numberPattern + `\s.*move to first.*point`)
	reLayerZero = regexp.MustCompile(`(?i)^G1\s+Z(` + numberPattern + `)(?:\s+F(` + numberPattern + `)?)?.*layer \(0\)`)
)

// Classify reports the structural category of one line, without its
// terminator. It has no side effects and never fails: lines that match no
// known shape are Other.
func Classify(line string, d Dialect) Classification {
	m := d.Markers()
	trimmed := strings.TrimSpace(line)

	if trimmed == "" {
		return Classification{Category: Blank}
	}

	if strings.EqualFold(trimmed, m.ConfigBegin) {
		return Classification{Category: ConfigBoundary, Boundary: BoundaryBegin}
	}
	if strings.EqualFold(trimmed, m.ConfigEnd) {
		return Classification{Category: ConfigBoundary, Boundary: BoundaryEnd}
	}

	if sub := reZ.FindStringSubmatch(line); sub != nil {
		return Classification{Category: HeightMarker, Height: ParseNumber(sub[1]), HeightKind: HeightZ}
	}
	if sub := reHeight.FindStringSubmatch(line); sub != nil {
		return Classification{Category: HeightMarker, Height: ParseNumber(sub[1]), HeightKind: HeightLayer}
	}

	if sub := reLayerM117.FindStringSubmatch(line); sub != nil {
		n, _ := strconv.Atoi(sub[1])
		return Classification{Category: ProgressMarker, Layer: n}
	}

	if m.HeaderEnd != "" && strings.Contains(trimmed, m.HeaderEnd) {
		return Classification{Category: HeaderEndMarker}
	}
	if m.FooterStart != "" && strings.Contains(trimmed, m.FooterStart) {
		return Classification{Category: FooterStartMarker}
	}
	for _, marker := range m.ObjectStart {
		if strings.EqualFold(trimmed, marker) {
			return Classification{Category: ObjectStartMarker}
		}
	}

	if sub := reLayerZero.FindStringSubmatch(line); sub != nil {
		return Classification{
			Category: GenericLayerZeroMove,
			Move:     &Move{Z: ParseNumber(sub[1]), Feed: ParseNumber(sub[2])},
		}
	}

	if m.SafeZone != nil && m.SafeZone.MatchString(line) {
		return Classification{Category: SafeZoneMarker, Move: parseMove(line)}
	}
	if reApproach.MatchString(line) {
		return Classification{Category: ApproachMoveCandidate, Move: parseMove(line)}
	}

	if strings.HasPrefix(trimmed, ";") {
		if sub := reLayerNum.FindStringSubmatch(line); sub != nil {
			n, _ := strconv.Atoi(sub[1])
			return Classification{Category: LayerMarker, Layer: n}
		}
		return Classification{Category: Comment}
	}

	return Classification{Category: Other}
}

// parseMove extracts the coordinates of a G1 line. Only the code part
// before the comment is searched for Z and F.
func parseMove(line string) *Move {
	mv := &Move{}
	if sub := reXY.FindStringSubmatch(line); sub != nil {
		mv.XText, mv.YText = sub[1], sub[2]
		mv.X, mv.Y = ParseNumber(sub[1]), ParseNumber(sub[2])
	}
	code := CodePart(line)
	if sub := reZValue.FindStringSubmatch(code); sub != nil {
		mv.Z = ParseNumber(sub[1])
	}
	if sub := reFeed.FindStringSubmatch(code); sub != nil {
		mv.Feed = ParseNumber(sub[1])
	}
	return mv
}

// LayerNumber reports the number of a ;layer:<n> marker found anywhere in line.
func LayerNumber(line string) (int, bool) {
	sub := reLayerNum.FindStringSubmatch(line)
	if sub == nil {
		return 0, false
	}
	n, err := strconv.Atoi(sub[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ZValue returns the first Z<number> word of the code part of line.
func ZValue(line string) (Number, bool) {
	sub := reZValue.FindStringSubmatch(CodePart(line))
	if sub == nil {
		return Number{}, false
	}
	return ParseNumber(sub[1]), true
}

// CodePart returns line up to its first unescaped ';'.
func CodePart(line string) string {
	if i := commentIndex(line); i >= 0 {
		return line[:i]
	}
	return line
}

// IsComment reports whether the line is wholly a comment.
func IsComment(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), ";")
}

func commentIndex(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] == ';' && (i == 0 || line[i-1] != '\\') {
			return i
		}
	}
	return -1
}
