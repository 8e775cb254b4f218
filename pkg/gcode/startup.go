package gcode

import "fmt"

// StartupPhase is the state of the startup rewriter.
type StartupPhase int

const (
	SeekingFirstHeight StartupPhase = iota
	SeekingGenericMove
	SeekingApproachCandidate
	// Done also means every later rewrite is suppressed for this file.
	Done
)

func (p StartupPhase) String() string {
	switch p {
	case SeekingFirstHeight:
		return "seeking-first-height"
	case SeekingGenericMove:
		return "seeking-generic-move"
	case SeekingApproachCandidate:
		return "seeking-approach-candidate"
	case Done:
		return "done"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// StartupState is threaded through one forward pass over a file.
type StartupState struct {
	Phase              StartupPhase
	FirstLayerHeight   Number
	ApproachSpeed      Number
	RemovedGenericMove bool
	EditedApproach     bool
}

// NewStartupState returns the state at the start of a file.
func NewStartupState() StartupState {
	return StartupState{
		Phase:         SeekingFirstHeight,
		ApproachSpeed: NumberFromInt(DefaultApproachSpeed),
	}
}

// StartupRewriter replaces the slicer's first approach move with a
// travel that cannot drag the nozzle through bed clips.
type StartupRewriter struct {
	Mode         ApproachMode
	EaseInFactor int
	Dialect      Dialect
}

// Step advances the state by one line and returns the lines to emit in
// its place: the line itself, nothing, or the generated sequence.
func (r StartupRewriter) Step(s StartupState, line Line) (StartupState, []Line) {
	if r.Mode == ApproachNone || s.Phase == Done {
		return s, []Line{line}
	}

	c := Classify(line.Text, r.Dialect)

	switch s.Phase {
	case SeekingFirstHeight:
		if c.Category == HeightMarker && c.HeightKind == HeightZ {
			s.FirstLayerHeight = c.Height
			s.Phase = SeekingGenericMove
		}
		return s, []Line{line}

	case SeekingGenericMove:
		if c.Category == GenericLayerZeroMove {
			if c.Move.Feed.Valid() {
				s.ApproachSpeed = c.Move.Feed
			}
			s.RemovedGenericMove = true
			s.Phase = SeekingApproachCandidate
			return s, nil
		}
		if isApproach(c) {
			return r.emit(s, c.Move)
		}
		return s, []Line{line}

	case SeekingApproachCandidate:
		if isApproach(c) {
			return r.emit(s, c.Move)
		}
		return s, []Line{line}
	}

	return s, []Line{line}
}

func isApproach(c Classification) bool {
	if c.Category != ApproachMoveCandidate && c.Category != SafeZoneMarker {
		return false
	}
	return c.Move != nil && c.Move.XText != "" && c.Move.YText != ""
}

func (r StartupRewriter) emit(s StartupState, mv *Move) (StartupState, []Line) {
	// The generic layer zero move's feed wins; the candidate's own F only
	// stands in when the slicer wrote no such move.
	speed := s.ApproachSpeed
	if !s.RemovedGenericMove && mv.Feed.Valid() {
		speed = mv.Feed
	}
	flh := s.FirstLayerHeight

	var out []Line
	switch r.Mode {
	case ApproachXYFirst:
		factor := r.EaseInFactor
		if factor < 1 {
			factor = DefaultEaseInFactor
		}
		out = tagged(TagStartup,
			fmt.Sprintf("G0 X%s Y%s F%s ; just XY", mv.XText, mv.YText, speed),
			fmt.Sprintf("G0 F%s Z%s ; ease in at normal speed", speed, flh.Mul(int64(factor))),
			fmt.Sprintf("G0 F%s Z%s ; final approach at a third of the speed", speed.Div(3, 3), flh),
		)
	default:
		out = tagged(TagStartup,
			fmt.Sprintf("G0 X%s Y%s Z%s F%s ; move to first skirt/support point", mv.XText, mv.YText, flh, speed),
		)
	}

	s.EditedApproach = true
	s.Phase = Done
	return s, out
}

// Rewrite runs the state machine over the whole document in place and
// returns the final state.
func (r StartupRewriter) Rewrite(doc *Document) StartupState {
	s := NewStartupState()
	if r.Mode == ApproachNone {
		return s
	}
	out := make([]Line, 0, len(doc.Lines)+2)
	removedAt := -1
	var removed Line
	for _, l := range doc.Lines {
		before := s.Phase
		var emitted []Line
		s, emitted = r.Step(s, l)
		if before == SeekingGenericMove && s.Phase == SeekingApproachCandidate {
			removedAt, removed = len(out), l
		}
		out = append(out, emitted...)
	}

	// Without an approach candidate the file must pass through unmodified,
	// so the generic move goes back where it was.
	if s.Phase != Done && removedAt >= 0 {
		out = append(out[:removedAt], append([]Line{removed}, out[removedAt:]...)...)
		s.RemovedGenericMove = false
	}
	doc.Lines = out
	return s
}
