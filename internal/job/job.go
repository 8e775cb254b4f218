// Package job runs the post-processing workflow for files written by a
// slicer: counter, backup, rewrite, atomic replace and numbering.
package job

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/spp/internal/settings"
	"github.com/provide-io/spp/pkg/codec"
	"github.com/provide-io/spp/pkg/gcode"
	gerrors "github.com/provide-io/spp/pkg/gcode/errors"
)

// EnvOutputName is set by PrusaSlicer to the final file name when it
// post-processes a temporary copy.
const EnvOutputName = "SLIC3R_PP_OUTPUT_NAME"

// lockTimeout bounds the wait for another run to release the settings.
const lockTimeout = 10 * time.Second

// Config is everything one invocation asks for.
type Config struct {
	Options gcode.Options

	// Backup writes <file>.bak before rewriting, encoded with BackupCodec.
	Backup      bool
	BackupCodec codec.Codec

	// FileCounter prefixes the output with the zero-padded counter.
	FileCounter bool
	Reverse     bool

	// SetCounter resets the stored counter before the first file.
	SetCounter *int
	// Digits overrides the stored counter width when > 0.
	Digits int
	// BlockHeight overrides the stored interleave height when > 0.
	BlockHeight float64

	// UseTempFile leaves the file in place and writes <file>.output_name
	// for the slicer instead of renaming.
	UseTempFile bool
	OutputName  string

	SettingsPath string

	// DryRun prints a summary of every file to Stdout and writes nothing.
	DryRun bool
	Stdout io.Writer
}

// Result describes one processed file.
type Result struct {
	Source         string
	Destination    string
	Backup         string
	OutputNameFile string
	Counter        string
	BytesIn        int64
	BytesOut       int64
	Report         *gcode.Report
	Skipped        bool
}

// Runner processes files with one Config.
type Runner struct {
	cfg    Config
	logger hclog.Logger
}

// New returns a Runner for cfg.
func New(cfg Config, logger hclog.Logger) *Runner {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if cfg.BackupCodec == nil {
		cfg.BackupCodec = codec.Identity
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	return &Runner{cfg: cfg, logger: logger}
}

// Run processes files in order. It stops at the first failing file; the
// results of the files before it are returned with the error.
func (r *Runner) Run(ctx context.Context, files []string) ([]Result, error) {
	if r.cfg.DryRun {
		return r.inspect(files)
	}

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	lock, err := settings.Acquire(lockCtx, r.cfg.SettingsPath, 100*time.Millisecond, r.logger)
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	st, existed, err := settings.Load(r.cfg.SettingsPath)
	if err != nil {
		return nil, err
	}
	if !existed {
		r.logger.Info("📝 Creating settings file", "path", r.cfg.SettingsPath)
	}
	r.apply(&st)
	if err := settings.Save(r.cfg.SettingsPath, st); err != nil {
		return nil, err
	}

	var results []Result
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.processFile(file, &st)
		if err != nil {
			return results, fmt.Errorf("processing %s: %w", file, err)
		}
		results = append(results, res)
		if res.Skipped {
			continue
		}
		if err := settings.Save(r.cfg.SettingsPath, st); err != nil {
			return results, err
		}
	}
	return results, nil
}

// apply folds the command line overrides into the stored settings.
func (r *Runner) apply(st *settings.Settings) {
	if r.cfg.SetCounter != nil {
		r.logger.Info("🔢 Counter reset", "from", st.FileCounter, "to", *r.cfg.SetCounter)
		st.FileCounter = *r.cfg.SetCounter
	}
	if r.cfg.Digits > 0 {
		st.CounterDigits = r.cfg.Digits
	}
	if r.cfg.BlockHeight > 0 {
		st.IndividualObjects.BlockHeight = r.cfg.BlockHeight
	}
}

func (r *Runner) processFile(path string, st *settings.Settings) (Result, error) {
	res := Result{Source: path, Destination: path}
	logger := r.logger.With("file", filepath.Base(path))

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("⚠️ Input file does not exist, skipping")
		res.Skipped = true
		return res, nil
	}
	if err != nil {
		return res, err
	}

	st.Step(r.cfg.Reverse)
	res.Counter = st.Counter()

	if r.cfg.Backup {
		res.Backup, err = WriteBackup(path, r.cfg.BackupCodec)
		if err != nil {
			return res, err
		}
		logger.Debug("💾 Backup written", "backup", res.Backup, "codec", r.cfg.BackupCodec.Name())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("reading source: %w", err)
	}
	res.BytesIn = int64(len(data))

	doc, err := gcode.ParseBytes(data)
	if err != nil {
		return res, err
	}

	opts := r.cfg.Options
	if opts.Interleave.Enabled {
		opts.Interleave.HeightBudget = gcode.ParseNumber(st.BlockHeightText())
	}

	start := time.Now()
	res.Report, err = gcode.Process(doc, opts, logger)
	if errors.Is(err, gerrors.ErrEmptyDocument) {
		logger.Warn("⚠️ Input file is empty, leaving it alone")
		res.Report = &gcode.Report{}
		err = nil
	} else if err != nil {
		return res, err
	} else {
		n, werr := WriteAtomic(path, doc, info.Mode().Perm())
		if werr != nil {
			return res, werr
		}
		res.BytesOut = n
	}

	logger.Info("✅ Post-processed",
		"lines", doc.Len(),
		"in", humanize.Bytes(uint64(res.BytesIn)),
		"out", humanize.Bytes(uint64(res.BytesOut)),
		"took", time.Since(start).Round(time.Millisecond),
	)

	if !r.cfg.FileCounter {
		return res, nil
	}
	if r.cfg.UseTempFile {
		res.OutputNameFile, err = WriteOutputName(path, res.Counter, r.cfg.OutputName)
		if err != nil {
			return res, err
		}
		logger.Debug("🏷️ Output name written", "path", res.OutputNameFile)
		return res, nil
	}
	res.Destination, err = NumberFile(path, res.Counter)
	if err != nil {
		return res, err
	}
	logger.Info("🏷️ Renamed", "to", filepath.Base(res.Destination))
	return res, nil
}

func (r *Runner) inspect(files []string) ([]Result, error) {
	var results []Result
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return results, fmt.Errorf("reading %s: %w", file, err)
		}
		doc, err := gcode.ParseBytes(data)
		if err != nil {
			return results, fmt.Errorf("parsing %s: %w", file, err)
		}

		var buf bytes.Buffer
		fmt.Fprintf(&buf, "%s (%s)\n", file, humanize.Bytes(uint64(len(data))))
		summary := gcode.Inspect(doc, r.cfg.Options.Dialect)
		if _, err := summary.WriteTo(&buf); err != nil {
			return results, err
		}
		fmt.Fprintf(&buf, "passes:             %s\n", gcode.BuildChain(r.cfg.Options))
		if _, err := r.cfg.Stdout.Write(buf.Bytes()); err != nil {
			return results, err
		}
		results = append(results, Result{Source: file, Destination: file, BytesIn: int64(len(data)), Skipped: true})
	}
	return results, nil
}

// Handle processes a single file and returns the paths it wrote. It lets
// a Runner serve as the watcher's handler.
func (r *Runner) Handle(ctx context.Context, path string) ([]string, error) {
	results, err := r.Run(ctx, []string{path})
	if err != nil {
		return nil, err
	}
	var written []string
	for _, res := range results {
		if res.Skipped {
			continue
		}
		written = append(written, res.Destination)
		if res.OutputNameFile != "" {
			written = append(written, res.OutputNameFile)
		}
	}
	return written, nil
}
