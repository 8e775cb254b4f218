package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/provide-io/spp/internal/cli"
	"github.com/provide-io/spp/internal/cliargs"
	"github.com/provide-io/spp/internal/job"
	"github.com/provide-io/spp/pkg/codec"
	_ "github.com/provide-io/spp/pkg/codec/compress"
	"github.com/provide-io/spp/pkg/gcode"
	"github.com/provide-io/spp/pkg/logging"
)

const version = "3.0.0"

var (
	flags       cli.Flags
	logLevel    string
	restore     bool
	dryRun      bool
	versionFlag bool
	rootCmd     *cobra.Command
)

func buildTimestamp() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func printVersion() {
	fmt.Printf("spp %s\n", version)
	fmt.Printf("Built: %s\n", buildTimestamp())
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "spp [flags] gcode-files...",
		Short: "Post-process G-code written by Slic3r-family slicers",
		Long: `Post-process G-code written by PrusaSlicer, SuperSlicer and OrcaSlicer.

Default arguments can be given in $` + cliargs.EnvOpts + `; they are read
before the command line.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	flags.Register(rootCmd)
	fs := rootCmd.Flags()
	fs.BoolVar(&restore, "restore", false, "Restore the files from their backups instead of processing")
	fs.BoolVar(&dryRun, "dry-run", false, "Print what the files contain and which passes would run; write nothing")
	fs.StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error), json:<level> for JSON")
	fs.BoolVarP(&versionFlag, "version", "V", false, "Show version information")
}

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		printVersion()
		os.Exit(0)
	}

	args, err := cliargs.Expand(os.Getenv(cliargs.EnvOpts), os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", cliargs.EnvOpts, err)
		os.Exit(1)
	}
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, files []string) error {
	if versionFlag {
		printVersion()
		return nil
	}

	logCfg := logging.Resolve("spp", logLevel, "")
	logger := logging.New(logCfg, os.Stderr)
	logger.Debug("🔧 Log level resolved", "level", logCfg.Level, "source", logCfg.Source)
	if opts := os.Getenv(cliargs.EnvOpts); opts != "" {
		logger.Debug("📋 Default arguments", "env", cliargs.EnvOpts, "args", opts)
	}
	logger.Trace("📋 Files", "args", cliargs.Join(files))

	if restore {
		for _, file := range files {
			backup, err := job.Restore(file)
			if err != nil {
				logger.Error("❌ Restore failed", "file", file, "error", err)
				return err
			}
			logger.Info("♻️ Restored", "file", file, "from", backup, "codec", codec.ForPath(backup).Name())
		}
		return nil
	}

	cfg, err := flags.Job()
	if err != nil {
		return err
	}
	cfg.DryRun = dryRun
	cfg.Stdout = cmd.OutOrStdout()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Debug("🚀 Starting", "files", len(files), "settings", cfg.SettingsPath, "passes", gcode.BuildChain(cfg.Options).String())
	if _, err := job.New(cfg, logger).Run(ctx, files); err != nil {
		logger.Error("❌ Post-processing failed", "error", err)
		return err
	}
	return nil
}
