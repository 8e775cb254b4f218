package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	seen  chan string
	fn    func(path string) []string
}

func newRecorder() *recorder {
	return &recorder{seen: make(chan string, 16)}
}

func (r *recorder) Handle(_ context.Context, path string) ([]string, error) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()

	var out []string
	if r.fn != nil {
		out = r.fn(path)
	}
	r.seen <- path
	return out, nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func startWatcher(t *testing.T, dir string, h Handler) (*Watcher, func()) {
	t.Helper()
	w := &Watcher{
		Dir:      dir,
		Debounce: 50 * time.Millisecond,
		Tick:     10 * time.Millisecond,
		Handler:  h,
		Logger:   hclog.New(&hclog.LoggerOptions{Name: t.Name(), Level: hclog.Trace}),
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	return w, func() {
		cancel()
		require.NoError(t, <-done)
	}
}

func waitFor(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(5 * time.Second):
		t.Fatal("handler was not called")
		return ""
	}
}

func TestWatcher_HandlesSettledGCode(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	rec := newRecorder()
	_, stop := startWatcher(t, dir, rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.gcode"), []byte("G28\n"), 0o644))
	target := filepath.Join(dir, "print.gcode")
	require.NoError(t, os.WriteFile(target, []byte("G28\n"), 0o644))

	assert.Equal(t, target, waitFor(t, rec.seen))
	time.Sleep(200 * time.Millisecond)
	stop()

	assert.Equal(t, 1, rec.count())
}

func TestWatcher_IgnoresOwnOutput(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	rec := newRecorder()
	rec.fn = func(path string) []string {
		_ = os.WriteFile(path, []byte("G28 ; rewritten\n"), 0o644)
		return []string{path}
	}
	w, stop := startWatcher(t, dir, rec)

	target := filepath.Join(dir, "print.gcode")
	require.NoError(t, os.WriteFile(target, []byte("G28\n"), 0o644))

	waitFor(t, rec.seen)
	time.Sleep(300 * time.Millisecond)
	stop()

	assert.Equal(t, 1, rec.count())
	assert.Equal(t, 1, w.Stats().Handled)
}

func TestWatcher_MissingDir(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := &Watcher{Dir: filepath.Join(t.TempDir(), "absent"), Handler: newRecorder()}
	assert.Error(t, w.Run(context.Background()))
}

func TestWatcher_NoHandler(t *testing.T) {
	assert.Error(t, (&Watcher{Dir: t.TempDir()}).Run(context.Background()))
}

func TestIsGCode(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"/a/print.gcode", true},
		{"/a/PRINT.GCODE", true},
		{"/a/.print.gcode.spp-123", false},
		{"/a/.print.gcode", false},
		{"/a/print.gcode.bak", false},
		{"/a/print.gcode.output_name", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsGCode(tt.name), tt.name)
	}
}
