package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		cli      string
		specific string
		generic  string
		level    string
		source   string
		json     bool
	}{
		{"default", "", "", "", "info", "default", false},
		{"generic env", "", "", "debug", "debug", EnvLogLevel, false},
		{"specific env wins", "", "trace", "debug", "trace", "SPP_WATCH_LOG_LEVEL", false},
		{"cli wins", "warn", "trace", "debug", "warn", "CLI --log-level", false},
		{"json with level", "json:debug", "", "", "debug", "CLI --log-level", true},
		{"bare json", "json", "", "", "info", "CLI --log-level", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SPP_WATCH_LOG_LEVEL", tt.specific)
			t.Setenv(EnvLogLevel, tt.generic)
			t.Setenv(EnvJSONLog, "")

			cfg := Resolve("spp", tt.cli, "SPP_WATCH_LOG_LEVEL")
			assert.Equal(t, tt.level, cfg.Level)
			assert.Equal(t, tt.source, cfg.Source)
			assert.Equal(t, tt.json, cfg.JSON)
		})
	}
}

func TestNew_TextPrefix(t *testing.T) {
	t.Setenv(EnvLogPath, "")
	t.Setenv(EnvJSONLog, "")

	var buf bytes.Buffer
	logger := New(Resolve("spp", "debug", ""), &buf)
	logger.Debug("🔍 hello", "file", "a.gcode")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, Prefix), "output %q lacks prefix", out)
	assert.Contains(t, out, "file=a.gcode")
}

func TestNew_JSON(t *testing.T) {
	t.Setenv(EnvLogPath, "")
	t.Setenv(EnvJSONLog, "1")

	var buf bytes.Buffer
	New(Resolve("spp", "info", ""), &buf).Info("done", "lines", 3)

	assert.True(t, strings.HasPrefix(buf.String(), "{"), "json output %q", buf.String())
	assert.Contains(t, buf.String(), `"lines":3`)
}

func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spp.log")
	t.Setenv(EnvLogPath, path)
	t.Setenv(EnvJSONLog, "")

	var buf bytes.Buffer
	New(Resolve("spp", "info", ""), &buf).Info("written to file")

	assert.Empty(t, buf.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
}

func TestPrefixWriter_PartialLines(t *testing.T) {
	var buf bytes.Buffer
	pw := NewPrefixWriter("> ", &buf)

	_, _ = pw.Write([]byte("one\ntw"))
	assert.Equal(t, "> one\n", buf.String())

	_, _ = pw.Write([]byte("o\nthree\n"))
	assert.Equal(t, "> one\n> two\n> three\n", buf.String())
}
