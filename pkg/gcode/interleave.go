package gcode

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// InterleaveNotice is inserted near the top of every interleaved file.
const InterleaveNotice = "; this file has been modded to print individual objects in blocks."

// maxHeightSentinel is the height of a block whose height markers could
// not be read, so that it sorts last and is never starved.
var maxHeightSentinel = NumberFromInt(1_000_000)

// ObjectBlock is the run of lines printing one independently sliced object.
type ObjectBlock struct {
	Lines []Line

	// MaxHeight is the last ;Z: value of the block, or the sentinel.
	MaxHeight   Number
	HeightKnown bool

	// Index is the position of the block in the source file.
	Index int
}

// Plate is a multi-object file decomposed for interleaving.
type Plate struct {
	Header           []Line
	Objects          []*ObjectBlock
	Footer           []Line
	FirstLayerHeight Number
}

// Lines reassembles header, objects in their current order, and footer.
func (p *Plate) Lines() []Line {
	n := len(p.Header) + len(p.Footer)
	for _, o := range p.Objects {
		n += len(o.Lines)
	}
	out := make([]Line, 0, n)
	out = append(out, p.Header...)
	for _, o := range p.Objects {
		out = append(out, o.Lines...)
	}
	return append(out, p.Footer...)
}

// FindFirstLayerHeight reads the dialect's first layer height key from the
// configuration text. It returns an invalid Number when the key is missing
// or not a plain decimal (PrusaSlicer also accepts a percentage there).
func FindFirstLayerHeight(doc *Document, d Dialect) Number {
	key := d.Markers().FirstLayerKey
	re := regexp.MustCompile(`(?i)^;?\s*` + regexp.QuoteMeta(key) + `\s*=\s*(.*?)\s*$`)
	for _, l := range doc.Lines {
		if !strings.Contains(l.Text, key) {
			continue
		}
		if sub := re.FindStringSubmatch(l.Text); sub != nil {
			return ParseNumber(sub[1])
		}
	}
	return Number{}
}

// SplitPlate decomposes doc into header, object blocks and footer. A block
// starts at an object-start marker, at the end-of-header marker, or at a
// ;Z: marker equal to the first layer height. When the first layer height
// is unknown the first ;Z: of the file opens the first block instead. A
// block opened by a marker absorbs the first layer ;Z: that follows it.
// The footer starts at the footer marker, or at the configuration block
// when the printer profile has no footer marker.
func SplitPlate(doc *Document, d Dialect) *Plate {
	p := &Plate{FirstLayerHeight: FindFirstLayerHeight(doc, d)}
	flh := p.FirstLayerHeight

	const (
		inHeader = iota
		inObject
		inFooter
	)
	section := inHeader
	// awaitingZ is set while the newest block was opened by a marker and
	// has not seen a height yet.
	awaitingZ := false
	open := func(l ...Line) {
		p.Objects = append(p.Objects, &ObjectBlock{Index: len(p.Objects), Lines: l})
		section = inObject
	}

	for _, l := range doc.Lines {
		if section == inFooter {
			p.Footer = append(p.Footer, l)
			continue
		}
		c := Classify(l.Text, d)
		isZ := c.Category == HeightMarker && c.HeightKind == HeightZ && c.Height.Valid()

		switch {
		case c.Category == FooterStartMarker,
			c.Category == ConfigBoundary && c.Boundary == BoundaryBegin:
			section = inFooter
			p.Footer = append(p.Footer, l)

		case c.Category == HeaderEndMarker && section == inHeader:
			p.Header = append(p.Header, l)
			open()
			awaitingZ = true

		case c.Category == ObjectStartMarker:
			open(l)
			awaitingZ = true

		case isZ && awaitingZ:
			last := p.Objects[len(p.Objects)-1]
			last.Lines = append(last.Lines, l)
			awaitingZ = false

		case isZ && flh.Valid() && c.Height.Equal(flh),
			isZ && !flh.Valid() && section == inHeader:
			open(l)

		case section == inObject:
			last := p.Objects[len(p.Objects)-1]
			last.Lines = append(last.Lines, l)

		default:
			p.Header = append(p.Header, l)
		}
	}

	// A header end marker directly followed by the footer leaves an empty block.
	objects := p.Objects[:0]
	for _, o := range p.Objects {
		if len(o.Lines) == 0 {
			continue
		}
		o.Index = len(objects)
		objects = append(objects, o)
	}
	p.Objects = objects

	for _, o := range p.Objects {
		o.MaxHeight, o.HeightKnown = lastHeight(o.Lines, d)
	}
	return p
}

// lastHeight scans a block from its end for the first ;Z: marker. Z values
// are assumed non-decreasing inside a block.
func lastHeight(lines []Line, d Dialect) (Number, bool) {
	for i := len(lines) - 1; i >= 0; i-- {
		c := Classify(lines[i].Text, d)
		if c.Category == HeightMarker && c.HeightKind == HeightZ && c.Height.Valid() {
			return c.Height, true
		}
	}
	return maxHeightSentinel, false
}

// firstHeight returns the first ;Z: value of a block, or zero.
func firstHeight(lines []Line, d Dialect) Number {
	for _, l := range lines {
		c := Classify(l.Text, d)
		if c.Category == HeightMarker && c.HeightKind == HeightZ && c.Height.Valid() {
			return c.Height
		}
	}
	return NumberFromInt(0)
}

// Interleaver prints the objects of a sequential print in blocks of a
// bounded height, for printers whose nozzle-to-shroud clearance is smaller
// than the objects.
type Interleaver struct {
	Dialect          Dialect
	HeightBudget     Number
	FirstLayersFirst bool
	Logger           hclog.Logger
}

// InterleaveResult reports what Interleave did.
type InterleaveResult struct {
	Objects      int
	Transitions  int
	HeightBudget Number
	Applied      bool
}

// Interleave rewrites doc in place. Files with fewer than two object
// blocks are left untouched.
func (iv Interleaver) Interleave(doc *Document) InterleaveResult {
	logger := iv.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	plate := SplitPlate(doc, iv.Dialect)
	res := InterleaveResult{Objects: len(plate.Objects), HeightBudget: iv.HeightBudget}
	if !plate.FirstLayerHeight.Valid() {
		logger.Warn("⚠️ First layer height not found, delimiting objects by markers only", "key", iv.Dialect.Markers().FirstLayerKey)
	}
	if len(plate.Objects) < 2 {
		logger.Debug("🔍 Nothing to interleave", "objects", len(plate.Objects))
		return res
	}

	logger.Info("🧱 Segmenting individual objects", "objects", len(plate.Objects), "first_layer_height", plate.FirstLayerHeight.String())

	sort.SliceStable(plate.Objects, func(i, j int) bool {
		return plate.Objects[i].MaxHeight.Cmp(plate.Objects[j].MaxHeight) < 0
	})
	for _, o := range plate.Objects {
		if !o.HeightKnown {
			logger.Warn("⚠️ Object has no readable height markers, printing it last", "object", o.Index)
		}
		logger.Debug("📏 Object height", "object", o.Index, "max_height", o.MaxHeight.String(), "lines", len(o.Lines))
	}

	budget := iv.HeightBudget
	tallest := plate.Objects[len(plate.Objects)-1].MaxHeight
	if budget.Cmp(tallest) > 0 {
		budget = tallest.Add(NumberFromInt(1))
		logger.Debug("📐 Height budget clamped to tallest object", "budget", budget.String())
	}
	res.HeightBudget = budget

	body, transitions := iv.drain(plate.Objects, budget)
	res.Transitions = transitions

	out := make([]Line, 0, len(plate.Header)+len(body)+len(plate.Footer)+1)
	out = append(out, plate.Header...)
	out = append(out, body...)
	out = append(out, plate.Footer...)

	at := 2
	if at > len(out) {
		at = len(out)
	}
	out = append(out[:at], append([]Line{{Text: InterleaveNotice, Tag: TagInfo}}, out[at:]...)...)

	doc.Lines = out
	res.Applied = true
	logger.Info("✅ Done with segmented individual objects", "transitions", transitions)
	return res
}

// drain empties the blocks round-robin, at most budget of height per
// block and round, and returns the merged lines.
func (iv Interleaver) drain(blocks []*ObjectBlock, budget Number) ([]Line, int) {
	queues := make([][]Line, len(blocks))
	total := 0
	for i, b := range blocks {
		queues[i] = b.Lines
		total += len(b.Lines)
	}

	out := make([]Line, 0, total+4*len(blocks))
	transitions := 0
	peak := NumberFromInt(0)
	current := NumberFromInt(0)
	firstRound := iv.FirstLayersFirst

	for remaining(queues) > 0 {
		for idx := range queues {
			if len(queues[idx]) == 0 {
				continue
			}
			baseline := firstHeight(queues[idx], iv.Dialect)
			limit := budget
			if firstRound {
				limit = baseline
			}
			next := nextNonEmpty(queues, idx)

			drained := 0
			for len(queues[idx]) > 0 {
				l := queues[idx][0]
				c := Classify(l.Text, iv.Dialect)
				if c.Category == HeightMarker && c.HeightKind == HeightZ && c.Height.Valid() {
					if next >= 0 && drained > 0 && c.Height.Sub(baseline).Cmp(limit) >= 0 {
						out = append(out, iv.transition(queues[next], peak)...)
						transitions++
						break
					}
					current = c.Height
					if current.Cmp(peak) > 0 {
						peak = current
					}
				}
				out = append(out, l)
				queues[idx] = queues[idx][1:]
				drained++

				if len(queues[idx]) == 0 {
					out = append(out, tagged(TagInterleave,
						"; finished this object and now move in Z some extra:",
						fmt.Sprintf("G0 Z%s", current.Add(budget)),
					)...)
				}
			}
		}
		firstRound = false
	}
	return out, transitions
}

// transition builds the hand-off into the next block: raise to a height
// above everything printed so far, travel to the next block's safe point,
// then lower to the next block's layer when that is below the travel
// height.
func (iv Interleaver) transition(next []Line, peak Number) []Line {
	target := firstHeight(next, iv.Dialect)
	var safe *Move
	for i, l := range next {
		c := Classify(l.Text, iv.Dialect)
		if c.Category != SafeZoneMarker || c.Move == nil || c.Move.XText == "" {
			continue
		}
		safe = c.Move
		if i > 0 {
			if z, ok := ZValue(next[i-1].Text); ok && z.Valid() {
				target = z
			}
		}
		break
	}

	travel := peak
	if target.Cmp(travel) > 0 {
		travel = target
	}

	lines := []string{
		"; injected by interleaver: switching to next object",
		fmt.Sprintf("G0 Z%s ; raise to travel height", travel),
	}
	if safe != nil {
		lines = append(lines, fmt.Sprintf("G0 X%s Y%s ; travel to next object", safe.XText, safe.YText))
		if target.Cmp(travel) < 0 {
			lines = append(lines, fmt.Sprintf("G1 Z%s ; move to next layer of next object", target))
		}
	}
	return tagged(TagInterleave, lines...)
}

func remaining(queues [][]Line) int {
	n := 0
	for _, q := range queues {
		n += len(q)
	}
	return n
}

// nextNonEmpty returns the next queue after idx, wrapping around, that
// still holds lines, or -1 when idx is the last one.
func nextNonEmpty(queues [][]Line, idx int) int {
	for step := 1; step < len(queues); step++ {
		j := (idx + step) % len(queues)
		if len(queues[j]) > 0 {
			return j
		}
	}
	return -1
}
