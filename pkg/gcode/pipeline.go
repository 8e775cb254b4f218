package gcode

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	gerrors "github.com/provide-io/spp/pkg/gcode/errors"
)

// Pass identifiers, in execution order.
const (
	PassInterleave uint8 = iota + 1
	PassObscure
	PassStartup
	PassProgress
	PassViewerTypes
	PassLayerInfo
	PassComments
)

// Pass is one rewrite over a whole document.
type Pass interface {
	// ID returns the pass identifier (e.g. PassStartup)
	ID() uint8

	// Name returns the name used on the command line and in logs
	Name() string

	// Enabled reports whether opts asks for this pass
	Enabled(opts Options) bool

	// Apply rewrites doc in place and records its outcome in run
	Apply(doc *Document, run *Run) error
}

// BasePass provides the identity half of a Pass.
type BasePass struct {
	PassID   uint8
	PassName string
}

func (p *BasePass) ID() uint8 {
	return p.PassID
}

func (p *BasePass) Name() string {
	return p.PassName
}

// Report collects what every pass of one run did.
type Report struct {
	Layers           int
	Interleave       InterleaveResult
	ObscuredLines    int
	Startup          StartupState
	ProgressLines    int
	ViewerTypeLines  int
	LayerInfoAdded   bool
	CommentsStripped int
	Passes           []string
}

// Run is the state shared by the passes of one Process call.
type Run struct {
	Options Options
	Logger  hclog.Logger
	Report  *Report
}

// Registry maps pass IDs to implementations
var Registry = make(map[uint8]Pass)

// Register registers a pass implementation
func Register(p Pass) {
	Registry[p.ID()] = p
}

// Get retrieves a pass by ID
func Get(id uint8) (Pass, error) {
	p, ok := Registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: 0x%02x", gerrors.ErrUnknownPass, id)
	}
	return p, nil
}

// Lookup retrieves a pass by name.
func Lookup(name string) (Pass, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, p := range Registry {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", gerrors.ErrUnknownPass, name)
}

func init() {
	Register(&interleavePass{BasePass{PassInterleave, "interleave"}})
	Register(&obscurePass{BasePass{PassObscure, "obscure"}})
	Register(&startupPass{BasePass{PassStartup, "startup"}})
	Register(&progressPass{BasePass{PassProgress, "progress"}})
	Register(&viewerTypesPass{BasePass{PassViewerTypes, "viewer-types"}})
	Register(&layerInfoPass{BasePass{PassLayerInfo, "layer-info"}})
	Register(&commentsPass{BasePass{PassComments, "comments"}})
}

// Chain is an ordered list of passes.
type Chain []Pass

// BuildChain returns the passes opts enables, in execution order.
func BuildChain(opts Options) Chain {
	var chain Chain
	for id := PassInterleave; id <= PassComments; id++ {
		p, err := Get(id)
		if err != nil {
			continue
		}
		if p.Enabled(opts) {
			chain = append(chain, p)
		}
	}
	return chain
}

// String renders the chain as "name|name|...", or "none".
func (c Chain) String() string {
	if len(c) == 0 {
		return "none"
	}
	names := make([]string, len(c))
	for i, p := range c {
		names[i] = p.Name()
	}
	return strings.Join(names, "|")
}

// Apply runs every pass of the chain over doc.
func (c Chain) Apply(doc *Document, run *Run) error {
	for _, p := range c {
		run.Logger.Trace("🔧 Applying pass", "pass", p.Name(), "lines", doc.Len())
		if err := p.Apply(doc, run); err != nil {
			return fmt.Errorf("applying %s: %w", p.Name(), err)
		}
		run.Report.Passes = append(run.Report.Passes, p.Name())
	}
	return nil
}

// Process validates opts and runs the enabled passes over doc in place.
func Process(doc *Document, opts Options, logger hclog.Logger) (*Report, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if doc == nil || doc.Len() == 0 {
		return nil, gerrors.ErrEmptyDocument
	}

	run := &Run{
		Options: opts,
		Logger:  logger,
		Report:  &Report{Layers: CountLayers(doc)},
	}
	if run.Report.Layers == 0 {
		logger.Debug("🔍 No layer markers found, progress is left alone")
	}

	chain := BuildChain(opts)
	logger.Debug("🔗 Pass chain", "chain", chain.String(), "dialect", opts.Dialect.String())
	if err := chain.Apply(doc, run); err != nil {
		return run.Report, err
	}
	return run.Report, nil
}

type interleavePass struct{ BasePass }

func (p *interleavePass) Enabled(opts Options) bool { return opts.Interleave.Enabled }

func (p *interleavePass) Apply(doc *Document, run *Run) error {
	iv := Interleaver{
		Dialect:          run.Options.Dialect,
		HeightBudget:     run.Options.Interleave.HeightBudget,
		FirstLayersFirst: run.Options.Interleave.FirstLayersFirst,
		Logger:           run.Logger.Named(p.Name()),
	}
	run.Report.Interleave = iv.Interleave(doc)
	if !run.Report.Interleave.Applied {
		run.Logger.Debug("⏭️ Interleave skipped, fewer than two objects", "objects", run.Report.Interleave.Objects)
	}
	return nil
}

type obscurePass struct{ BasePass }

func (p *obscurePass) Enabled(opts Options) bool { return opts.ObscureConfig }

func (p *obscurePass) Apply(doc *Document, run *Run) error {
	run.Report.ObscuredLines = ObscureConfig(doc, run.Options.Dialect)
	if run.Report.ObscuredLines == 0 {
		run.Logger.Debug("⏭️ Nothing obscured, no configuration block")
	}
	return nil
}

type startupPass struct{ BasePass }

func (p *startupPass) Enabled(opts Options) bool { return opts.Approach != ApproachNone }

func (p *startupPass) Apply(doc *Document, run *Run) error {
	r := StartupRewriter{
		Mode:         run.Options.Approach,
		EaseInFactor: run.Options.EaseInFactor,
		Dialect:      run.Options.Dialect,
	}
	s := r.Rewrite(doc)
	run.Report.Startup = s
	if s.EditedApproach {
		run.Logger.Debug("✏️ Approach move rewritten", "mode", r.Mode.String(), "first_layer_height", s.FirstLayerHeight.String())
	} else {
		run.Logger.Debug("⏭️ Approach move not found", "phase", s.Phase.String())
	}
	return nil
}

type progressPass struct{ BasePass }

func (p *progressPass) Enabled(opts Options) bool { return opts.Progress != ProgressNone }

func (p *progressPass) Apply(doc *Document, run *Run) error {
	a := ProgressAnnotator{
		Mode:  run.Options.Progress,
		Width: run.Options.BarWidth,
		Char:  run.Options.BarChar,
	}
	run.Report.ProgressLines = a.Annotate(doc, run.Report.Layers)
	return nil
}

type viewerTypesPass struct{ BasePass }

func (p *viewerTypesPass) Enabled(opts Options) bool {
	return opts.CraftWareTypes || opts.OrcaViewerTypes
}

func (p *viewerTypesPass) Apply(doc *Document, run *Run) error {
	v := ViewerTypes{Orca: run.Options.OrcaViewerTypes, CraftWare: run.Options.CraftWareTypes}
	run.Report.ViewerTypeLines = v.Apply(doc)
	return nil
}

type layerInfoPass struct{ BasePass }

func (p *layerInfoPass) Enabled(opts Options) bool { return opts.LayerCountInfo }

func (p *layerInfoPass) Apply(doc *Document, run *Run) error {
	run.Report.LayerInfoAdded = AddLayerCount(doc, run.Report.Layers)
	return nil
}

type commentsPass struct{ BasePass }

func (p *commentsPass) Enabled(opts Options) bool { return opts.Comments != CommentsKeep }

func (p *commentsPass) Apply(doc *Document, run *Run) error {
	cs := CommentStripper{Mode: run.Options.Comments, Dialect: run.Options.Dialect}
	run.Report.CommentsStripped = cs.Strip(doc)
	return nil
}
