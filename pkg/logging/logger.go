package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Environment variables read by every binary.
const (
	EnvLogLevel = "SPP_LOG_LEVEL"
	EnvJSONLog  = "SPP_JSON_LOG"
	EnvLogPath  = "SPP_LOG_PATH"

	// Prefix marks every text log line.
	Prefix = "🖨️  "
)

// Config is a resolved logger configuration.
type Config struct {
	Name   string
	Level  string
	Source string
	JSON   bool
	Path   string
}

// Resolve picks the log level from the CLI flag, then the binary's own
// variable (e.g. SPP_WATCH_LOG_LEVEL), then SPP_LOG_LEVEL, then "info".
// A level of the form "json:<level>" selects JSON output.
func Resolve(name, cliLevel, specificEnv string) Config {
	cfg := Config{Name: name}

	switch {
	case cliLevel != "":
		cfg.Level, cfg.Source = cliLevel, "CLI --log-level"
	case specificEnv != "" && os.Getenv(specificEnv) != "":
		cfg.Level, cfg.Source = os.Getenv(specificEnv), specificEnv
	case os.Getenv(EnvLogLevel) != "":
		cfg.Level, cfg.Source = os.Getenv(EnvLogLevel), EnvLogLevel
	default:
		cfg.Level, cfg.Source = "info", "default"
	}

	cfg.JSON = os.Getenv(EnvJSONLog) == "1"
	if strings.HasPrefix(cfg.Level, "json") {
		cfg.JSON = true
		if _, level, ok := strings.Cut(cfg.Level, ":"); ok && level != "" {
			cfg.Level = level
		} else {
			cfg.Level = "info"
		}
	}

	cfg.Path = os.Getenv(EnvLogPath)
	return cfg
}

// New builds the logger described by cfg. With a Path the output goes to
// a size-rotated file instead of output.
func New(cfg Config, output io.Writer) hclog.Logger {
	if output == nil {
		output = os.Stderr
	}
	if cfg.Path != "" {
		output = &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			Compress:   true,
		}
	}

	// Add prefix for non-JSON output
	if !cfg.JSON {
		output = NewPrefixWriter(Prefix, output)
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       cfg.Name,
		Level:      hclog.LevelFromString(cfg.Level),
		JSONFormat: cfg.JSON,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// NewLogger creates a logger with the environment defaults
func NewLogger(name string, level string, output io.Writer) hclog.Logger {
	return New(Resolve(name, level, ""), output)
}
