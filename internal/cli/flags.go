// Package cli holds the command line surface shared by spp and spp-watch.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/provide-io/spp/internal/job"
	"github.com/provide-io/spp/internal/settings"
	"github.com/provide-io/spp/pkg/codec"
	"github.com/provide-io/spp/pkg/gcode"
)

// shortAliases keeps the multi-letter short options of the original tool.
var shortAliases = map[string]string{
	"cwt": "craftwaretypes",
	"ost": "orcaslicertypes",
}

// Flags is the parsed engine and workflow configuration.
type Flags struct {
	Backup         bool
	BackupCompress string
	UseTempFile    bool
	Slicer         string
	ConfigPath     string

	CraftWareTypes  bool
	OrcaSlicerTypes bool
	NumLayer        bool

	Individual       bool
	BlockHeight      float64
	FirstLayersFirst bool

	XY           bool
	NoMove       bool
	EaseInFactor int

	ObscureConfig bool
	RemoveKeep    bool
	RemoveAll     bool

	FileCounter bool
	Reverse     bool
	SetCounter  int
	Digits      int

	Progress      bool
	ProgressLayer bool
	BarWidth      int
	BarChar       string

	// setCounter records whether --setcounter was given at all.
	setCounter *pflag.Flag
}

// Register adds every flag to cmd and marks the exclusive groups.
func (f *Flags) Register(cmd *cobra.Command) {
	fs := cmd.Flags()

	fs.BoolVarP(&f.Backup, "backup", "b", false, "Write <file>.bak before rewriting")
	fs.StringVar(&f.BackupCompress, "backup-compress", "none", "Backup compression: "+strings.Join(codec.Names(), ", "))
	fs.BoolVarP(&f.UseTempFile, "usetempfile", "t", false, "Leave the file in place and write <file>.output_name for the slicer")
	fs.StringVar(&f.Slicer, "slicer", "prusa", "Slicer dialect: "+strings.Join(gcode.DialectNames(), ", "))
	fs.StringVar(&f.ConfigPath, "config", "", "Settings file (default: "+settings.FileName+" beside the executable, or $"+settings.EnvConfigPath+")")

	fs.BoolVar(&f.CraftWareTypes, "craftwaretypes", false, "Add CraftWare segment types for viewing in CraftWare")
	fs.BoolVar(&f.OrcaSlicerTypes, "orcaslicertypes", false, "Rename OrcaSlicer feature types for the PrusaSlicer viewer")
	fs.BoolVarP(&f.NumLayer, "numlayer", "n", false, "Add the total number of layers to the slice info")

	fs.BoolVar(&f.Individual, "iob", false, "Print individual objects in blocks (experimental)")
	fs.Float64Var(&f.BlockHeight, "iobh", 0, "Block height in mm for --iob, stored in the settings file")
	fs.BoolVar(&f.FirstLayersFirst, "iobfl", false, "Print the first layer of all objects before the blocks")

	fs.BoolVar(&f.XY, "xy", false, "Move to X/Y first, then ease the nozzle down on Z")
	fs.BoolVar(&f.NoMove, "nomove", false, "Leave the start sequence alone")
	fs.IntVarP(&f.EaseInFactor, "easeinfactor", "e", gcode.DefaultEaseInFactor, "First layer height multiple Z travels to at full speed")

	fs.BoolVar(&f.ObscureConfig, "oc", false, "Replace the configuration block with bogus values")
	fs.BoolVar(&f.RemoveKeep, "rk", false, "Remove trailing comments, keep pure comment lines")
	fs.BoolVar(&f.RemoveAll, "rak", false, "Remove all comments")

	fs.BoolVarP(&f.FileCounter, "filecounter", "f", false, "Prefix the output file with a counter")
	fs.BoolVar(&f.Reverse, "rev", false, "Count down instead of up")
	fs.IntVar(&f.SetCounter, "setcounter", 0, "Reset the stored counter to this value")
	fs.IntVar(&f.Digits, "digits", 0, fmt.Sprintf("Counter digits, stored in the settings file (default %d)", settings.DefaultCounterDigits))

	fs.BoolVar(&f.Progress, "prog", false, "Show a progress bar instead of layer percentages")
	fs.BoolVar(&f.ProgressLayer, "proglayer", false, "Show progress as layer of total")
	fs.IntVar(&f.BarWidth, "pwidth", gcode.DefaultBarWidth, "Progress bar width in characters")
	fs.StringVar(&f.BarChar, "pchar", gcode.DefaultBarChar, "Progress bar character")

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if long, ok := shortAliases[name]; ok {
			name = long
		}
		return pflag.NormalizedName(name)
	})

	cmd.MarkFlagsMutuallyExclusive("xy", "nomove")
	cmd.MarkFlagsMutuallyExclusive("oc", "rk", "rak")
	cmd.MarkFlagsMutuallyExclusive("prog", "proglayer")

	f.setCounter = fs.Lookup("setcounter")
}

// Options builds the engine options.
func (f *Flags) Options() (gcode.Options, error) {
	opts := gcode.DefaultOptions()

	dialect, err := gcode.ParseDialect(f.Slicer)
	if err != nil {
		return opts, err
	}
	opts.Dialect = dialect

	switch {
	case f.XY:
		opts.Approach = gcode.ApproachXYFirst
	case f.NoMove:
		opts.Approach = gcode.ApproachNone
	}
	opts.EaseInFactor = f.EaseInFactor

	switch {
	case f.RemoveKeep:
		opts.Comments = gcode.CommentsStripTrailing
	case f.RemoveAll:
		opts.Comments = gcode.CommentsStripAll
	}
	opts.ObscureConfig = f.ObscureConfig

	switch {
	case f.Progress:
		opts.Progress = gcode.ProgressBar
	case f.ProgressLayer:
		opts.Progress = gcode.ProgressLayerOfTotal
	}
	opts.BarWidth = f.BarWidth
	opts.BarChar = f.BarChar

	opts.CraftWareTypes = f.CraftWareTypes
	opts.OrcaViewerTypes = f.OrcaSlicerTypes
	opts.LayerCountInfo = f.NumLayer

	opts.Interleave.Enabled = f.Individual
	opts.Interleave.FirstLayersFirst = f.FirstLayersFirst

	return opts, opts.Validate()
}

// Job builds the workflow configuration.
func (f *Flags) Job() (job.Config, error) {
	opts, err := f.Options()
	if err != nil {
		return job.Config{}, err
	}

	backupCodec, err := codec.Lookup(f.BackupCompress)
	if err != nil {
		return job.Config{}, err
	}

	settingsPath := f.ConfigPath
	if settingsPath == "" {
		if settingsPath, err = settings.DefaultPath(); err != nil {
			return job.Config{}, err
		}
	}

	if f.BlockHeight < 0 {
		return job.Config{}, fmt.Errorf("--iobh must be positive, got %g", f.BlockHeight)
	}
	if f.Digits < 0 {
		return job.Config{}, fmt.Errorf("--digits must be positive, got %d", f.Digits)
	}

	cfg := job.Config{
		Options:      opts,
		Backup:       f.Backup,
		BackupCodec:  backupCodec,
		FileCounter:  f.FileCounter,
		Reverse:      f.Reverse,
		Digits:       f.Digits,
		BlockHeight:  f.BlockHeight,
		UseTempFile:  f.UseTempFile,
		OutputName:   os.Getenv(job.EnvOutputName),
		SettingsPath: settingsPath,
	}
	if f.setCounter != nil && f.setCounter.Changed {
		n := f.SetCounter
		cfg.SetCounter = &n
	}
	return cfg, nil
}
