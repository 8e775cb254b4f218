package gcode

import (
	"fmt"
	"strings"
	"unicode/utf8"

	gerrors "github.com/provide-io/spp/pkg/gcode/errors"
)

// ApproachMode selects how the first approach move is rewritten.
type ApproachMode int

const (
	// ApproachXYFirst travels in XY, then eases in on Z.
	ApproachXYFirst ApproachMode = iota
	// ApproachCombined moves to X, Y and the first layer height at once.
	ApproachCombined
	// ApproachNone leaves the start sequence alone.
	ApproachNone
)

// CommentMode selects what the comment stripper removes.
type CommentMode int

const (
	CommentsKeep CommentMode = iota
	CommentsStripTrailing
	CommentsStripAll
)

// ProgressMode selects the replacement for M117 layer lines.
type ProgressMode int

const (
	ProgressNone ProgressMode = iota
	ProgressBar
	ProgressLayerOfTotal
	ProgressPercent
)

// =================================
// Engine defaults
// =================================
const (
	DefaultEaseInFactor  = 15
	DefaultApproachSpeed = 3000
	DefaultBarWidth      = 17
	DefaultBarChar       = "O"
	DefaultHeightBudget  = "9999"
)

// InterleaveOptions configures the object interleaver.
type InterleaveOptions struct {
	Enabled          bool
	HeightBudget     Number
	FirstLayersFirst bool
}

// Options is the full configuration bundle of one engine run.
type Options struct {
	Approach     ApproachMode
	Comments     CommentMode
	EaseInFactor int
	Progress     ProgressMode
	BarWidth     int
	BarChar      string
	Dialect      Dialect
	Interleave   InterleaveOptions

	// Features carried over from the original tool.
	CraftWareTypes  bool
	OrcaViewerTypes bool
	LayerCountInfo  bool
	ObscureConfig   bool
}

// DefaultOptions mirrors the behaviour of a run without flags.
func DefaultOptions() Options {
	return Options{
		Approach:     ApproachCombined,
		Comments:     CommentsKeep,
		EaseInFactor: DefaultEaseInFactor,
		Progress:     ProgressPercent,
		BarWidth:     DefaultBarWidth,
		BarChar:      DefaultBarChar,
		Dialect:      DialectPrusa,
		Interleave: InterleaveOptions{
			HeightBudget: ParseNumber(DefaultHeightBudget),
		},
	}
}

// Validate checks the ranges the engine relies on.
func (o Options) Validate() error {
	if o.EaseInFactor < 1 {
		return fmt.Errorf("%w: ease-in factor must be >= 1, got %d", gerrors.ErrInvalidOption, o.EaseInFactor)
	}
	if o.Progress == ProgressBar {
		if o.BarWidth <= 0 {
			return fmt.Errorf("%w: bar width must be > 0, got %d", gerrors.ErrInvalidOption, o.BarWidth)
		}
		if utf8.RuneCountInString(o.BarChar) != 1 {
			return fmt.Errorf("%w: bar character must be a single character, got %q", gerrors.ErrInvalidOption, o.BarChar)
		}
	}
	if o.Interleave.Enabled {
		h := o.Interleave.HeightBudget
		if !h.Valid() || h.Decimal().Sign() <= 0 {
			return fmt.Errorf("%w: height budget must be > 0, got %s", gerrors.ErrInvalidOption, h)
		}
	}
	if o.ObscureConfig && o.Comments != CommentsKeep {
		return fmt.Errorf("%w: obscuring the configuration excludes comment removal", gerrors.ErrConflictingMode)
	}
	return nil
}

// ParseApproachMode accepts "xy-first"/"xy", "combined" and "none".
func ParseApproachMode(s string) (ApproachMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xy-first", "xy":
		return ApproachXYFirst, nil
	case "", "combined", "xyz":
		return ApproachCombined, nil
	case "none", "nomove":
		return ApproachNone, nil
	}
	return ApproachCombined, fmt.Errorf("%w: approach %q", gerrors.ErrUnknownMode, s)
}

// ParseCommentMode accepts "none", "strip-trailing" and "strip-all".
func ParseCommentMode(s string) (CommentMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "keep":
		return CommentsKeep, nil
	case "strip-trailing", "trailing", "rk":
		return CommentsStripTrailing, nil
	case "strip-all", "all", "rak":
		return CommentsStripAll, nil
	}
	return CommentsKeep, fmt.Errorf("%w: comments %q", gerrors.ErrUnknownMode, s)
}

// ParseProgressMode accepts "none", "bar", "layer-of-total" and "percent".
func ParseProgressMode(s string) (ProgressMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return ProgressNone, nil
	case "bar":
		return ProgressBar, nil
	case "layer-of-total", "layer":
		return ProgressLayerOfTotal, nil
	case "", "percent":
		return ProgressPercent, nil
	}
	return ProgressPercent, fmt.Errorf("%w: progress %q", gerrors.ErrUnknownMode, s)
}

func (m ApproachMode) String() string {
	switch m {
	case ApproachXYFirst:
		return "xy-first"
	case ApproachCombined:
		return "combined"
	case ApproachNone:
		return "none"
	}
	return "unknown"
}

func (m CommentMode) String() string {
	switch m {
	case CommentsKeep:
		return "none"
	case CommentsStripTrailing:
		return "strip-trailing"
	case CommentsStripAll:
		return "strip-all"
	}
	return "unknown"
}

func (m ProgressMode) String() string {
	switch m {
	case ProgressNone:
		return "none"
	case ProgressBar:
		return "bar"
	case ProgressLayerOfTotal:
		return "layer-of-total"
	case ProgressPercent:
		return "percent"
	}
	return "unknown"
}
