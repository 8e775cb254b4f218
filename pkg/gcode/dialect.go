package gcode

import (
	"fmt"
	"regexp"
	"strings"

	gerrors "github.com/provide-io/spp/pkg/gcode/errors"
)

// Dialect selects the literal marker set a slicer writes.
// Never reorder: the numeric values are persisted by callers.
type Dialect int

const (
	DialectPrusa Dialect = iota
	DialectOrca
)

// MarkerSet holds the literals that delimit structure in one slicer's output.
type MarkerSet struct {
	// ConfigBegin and ConfigEnd bound the trailing configuration block.
	ConfigBegin string
	ConfigEnd   string

	// ObjectStart is written before the travel to the next object.
	ObjectStart []string

	// HeaderEnd and FooterStart are user markers placed in the
	// start and end G-code of the printer profile.
	HeaderEnd   string
	FooterStart string

	// FirstLayerKey names the config key holding the first layer height.
	FirstLayerKey string

	// SafeZone matches the line where a transition move may be spliced in.
	SafeZone *regexp.Regexp
}

var dialectMarkers = map[Dialect]MarkerSet{
	DialectPrusa: {
		ConfigBegin:   "; prusaslicer_config = begin",
		ConfigEnd:     "; prusaslicer_config = end",
		ObjectStart:   []string{"; move to origin position for next object"},
		HeaderEnd:     "; # # # # # # END Header",
		FooterStart:   "; # # # # # # START Footer",
		FirstLayerKey: "first_layer_height",
		SafeZone:      regexp.MustCompile(`(?i)^G1.* move to first infill point`),
	},
	DialectOrca: {
		ConfigBegin:   "; CONFIG_BLOCK_START",
		ConfigEnd:     "; CONFIG_BLOCK_END",
		ObjectStart:   []string{"; move to origin position for next object travel_to_xyz", "; move to origin position for next object"},
		HeaderEnd:     "; # # # # # # END Header",
		FooterStart:   "; # # # # # # START Footer",
		FirstLayerKey: "initial_layer_print_height",
		SafeZone:      regexp.MustCompile(`(?i)^G1.* move to first infill point`),
	},
}

var dialectNames = map[Dialect]string{
	DialectPrusa: "prusa",
	DialectOrca:  "orca",
}

// Markers returns the marker set of the dialect. Unknown dialects fall
// back to PrusaSlicer.
func (d Dialect) Markers() MarkerSet {
	if m, ok := dialectMarkers[d]; ok {
		return m
	}
	return dialectMarkers[DialectPrusa]
}

func (d Dialect) String() string {
	if name, ok := dialectNames[d]; ok {
		return name
	}
	return fmt.Sprintf("dialect(%d)", int(d))
}

// ParseDialect accepts the names used on the command line.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "prusa", "prusaslicer", "superslicer", "slic3r":
		return DialectPrusa, nil
	case "orca", "orcaslicer", "bambu", "bambustudio":
		return DialectOrca, nil
	}
	return DialectPrusa, fmt.Errorf("%w: %q", gerrors.ErrUnknownDialect, s)
}

// DialectNames lists the canonical names, for help texts.
func DialectNames() []string {
	return []string{dialectNames[DialectPrusa], dialectNames[DialectOrca]}
}
