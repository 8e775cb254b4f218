package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/provide-io/spp/internal/cli"
	"github.com/provide-io/spp/internal/cliargs"
	"github.com/provide-io/spp/internal/job"
	"github.com/provide-io/spp/internal/watch"
	_ "github.com/provide-io/spp/pkg/codec/compress"
	"github.com/provide-io/spp/pkg/logging"
)

const (
	version = "3.0.0"

	// EnvWatchLogLevel takes precedence over SPP_LOG_LEVEL for the watcher.
	EnvWatchLogLevel = "SPP_WATCH_LOG_LEVEL"
)

var (
	flags    cli.Flags
	logLevel string
	debounce time.Duration
	rootCmd  *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:           "spp-watch [flags] directory",
		Short:         "Post-process every G-code file written to a directory",
		Args:          cobra.ExactArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	flags.Register(rootCmd)
	rootCmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet time before a written file is processed")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error), json:<level> for JSON")
}

func main() {
	args, err := cliargs.Expand("", os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(_ *cobra.Command, args []string) error {
	logCfg := logging.Resolve("spp-watch", logLevel, EnvWatchLogLevel)
	logger := logging.New(logCfg, os.Stderr)
	logger.Debug("🔧 Log level resolved", "level", logCfg.Level, "source", logCfg.Source)

	if flags.UseTempFile {
		return fmt.Errorf("--usetempfile needs the slicer to call spp directly")
	}
	cfg, err := flags.Job()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w := &watch.Watcher{
		Dir:      args[0],
		Debounce: debounce,
		Handler:  job.New(cfg, logger),
		Logger:   logger.Named("watch"),
	}
	if err := w.Run(ctx); err != nil {
		logger.Error("❌ Watcher failed", "error", err)
		return err
	}

	s := w.Stats()
	logger.Info("📊 Done", "handled", s.Handled, "ignored", s.Ignored, "errors", s.Errors)
	return nil
}
