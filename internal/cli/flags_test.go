package cli

import (
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/spp/internal/cliargs"
	_ "github.com/provide-io/spp/pkg/codec/compress"
	"github.com/provide-io/spp/pkg/gcode"
)

func parse(t *testing.T, args ...string) (*Flags, error) {
	t.Helper()
	var f Flags
	cmd := &cobra.Command{Use: "spp", RunE: func(*cobra.Command, []string) error { return nil }}
	f.Register(cmd)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return &f, cmd.Execute()
}

func TestOptions_Defaults(t *testing.T) {
	f, err := parse(t)
	require.NoError(t, err)

	opts, err := f.Options()
	require.NoError(t, err)
	assert.Equal(t, gcode.DefaultOptions(), opts)
}

func TestOptions_Modes(t *testing.T) {
	f, err := parse(t, "--xy", "--rk", "--proglayer", "--slicer", "orca", "--cwt", "--ost", "-n", "--iob", "--iobfl", "-e", "5")
	require.NoError(t, err)

	opts, err := f.Options()
	require.NoError(t, err)
	assert.Equal(t, gcode.ApproachXYFirst, opts.Approach)
	assert.Equal(t, gcode.CommentsStripTrailing, opts.Comments)
	assert.Equal(t, gcode.ProgressLayerOfTotal, opts.Progress)
	assert.Equal(t, gcode.DialectOrca, opts.Dialect)
	assert.True(t, opts.CraftWareTypes)
	assert.True(t, opts.OrcaViewerTypes)
	assert.True(t, opts.LayerCountInfo)
	assert.True(t, opts.Interleave.Enabled)
	assert.True(t, opts.Interleave.FirstLayersFirst)
	assert.Equal(t, 5, opts.EaseInFactor)
}

func TestOptions_LegacyShortOptions(t *testing.T) {
	args, err := cliargs.Expand("-cwt", []string{"-ost"})
	require.NoError(t, err)
	f, err := parse(t, args...)
	require.NoError(t, err)

	opts, err := f.Options()
	require.NoError(t, err)
	assert.True(t, opts.CraftWareTypes)
	assert.True(t, opts.OrcaViewerTypes)
}

func TestFlags_MutuallyExclusive(t *testing.T) {
	for _, args := range [][]string{
		{"--xy", "--nomove"},
		{"--oc", "--rak"},
		{"--rk", "--rak"},
		{"--prog", "--proglayer"},
	} {
		_, err := parse(t, args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestOptions_Invalid(t *testing.T) {
	f, err := parse(t, "--slicer", "cura")
	require.NoError(t, err)
	_, err = f.Options()
	assert.Error(t, err)

	f, err = parse(t, "--prog", "--pchar", "ab")
	require.NoError(t, err)
	_, err = f.Options()
	assert.Error(t, err)
}

func TestJob(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	t.Setenv("SLIC3R_PP_OUTPUT_NAME", "/tmp/final.gcode")

	f, err := parse(t, "-b", "--backup-compress", "bz2", "-f", "--rev", "--digits", "4", "--iobh", "2.5", "--config", path, "-t")
	require.NoError(t, err)

	cfg, err := f.Job()
	require.NoError(t, err)
	assert.True(t, cfg.Backup)
	assert.Equal(t, "bzip2", cfg.BackupCodec.Name())
	assert.True(t, cfg.FileCounter)
	assert.True(t, cfg.Reverse)
	assert.Equal(t, 4, cfg.Digits)
	assert.Equal(t, 2.5, cfg.BlockHeight)
	assert.Equal(t, path, cfg.SettingsPath)
	assert.True(t, cfg.UseTempFile)
	assert.Equal(t, "/tmp/final.gcode", cfg.OutputName)
	assert.Nil(t, cfg.SetCounter)
}

func TestJob_SetCounter(t *testing.T) {
	f, err := parse(t, "--setcounter", "0", "--config", filepath.Join(t.TempDir(), "s.yaml"))
	require.NoError(t, err)

	cfg, err := f.Job()
	require.NoError(t, err)
	require.NotNil(t, cfg.SetCounter)
	assert.Equal(t, 0, *cfg.SetCounter)
}

func TestJob_UnknownCodec(t *testing.T) {
	f, err := parse(t, "--backup-compress", "zstd", "--config", filepath.Join(t.TempDir(), "s.yaml"))
	require.NoError(t, err)
	_, err = f.Job()
	assert.Error(t, err)
}
