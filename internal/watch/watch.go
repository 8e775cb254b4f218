// Package watch post-processes G-code files as they appear in a directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

const (
	DefaultDebounce = 2 * time.Second
	defaultTick     = 250 * time.Millisecond
)

// Handler processes one settled file and returns the paths it wrote, so
// the watcher does not pick its own output up again.
type Handler interface {
	Handle(ctx context.Context, path string) ([]string, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, path string) ([]string, error)

func (f HandlerFunc) Handle(ctx context.Context, path string) ([]string, error) {
	return f(ctx, path)
}

// Stats counts watcher activity.
type Stats struct {
	Events  int
	Handled int
	Ignored int
	Errors  int
}

// Watcher hands every .gcode file created or written in Dir to Handler
// once it has been quiet for Debounce.
type Watcher struct {
	Dir      string
	Debounce time.Duration
	Handler  Handler
	Logger   hclog.Logger

	// Tick is how often pending files are checked; zero means a quarter second.
	Tick time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
	written map[string]time.Time
	stats   Stats
}

// Stats returns a snapshot of the counters.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Run watches until ctx is done. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	if w.Handler == nil {
		return fmt.Errorf("watch %s: no handler", w.Dir)
	}
	logger := w.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	tick := w.Tick
	if tick <= 0 {
		tick = defaultTick
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.Dir, err)
	}

	w.mu.Lock()
	w.pending = make(map[string]time.Time)
	w.written = make(map[string]time.Time)
	w.mu.Unlock()

	logger.Info("👀 Watching for G-code", "dir", w.Dir, "debounce", debounce)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("🛑 Watcher stopped", "dir", w.Dir)
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.record(ev, logger)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("❌ Watch error", "error", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-ticker.C:
			w.flush(ctx, debounce, logger)
		}
	}
}

// IsGCode reports whether name is a visible .gcode file.
func IsGCode(name string) bool {
	base := filepath.Base(name)
	return !strings.HasPrefix(base, ".") && strings.EqualFold(filepath.Ext(base), ".gcode")
}

func (w *Watcher) record(ev fsnotify.Event, logger hclog.Logger) {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
		return
	}
	if !IsGCode(ev.Name) {
		return
	}
	logger.Trace("📥 Event", "path", ev.Name, "op", ev.Op.String())

	w.mu.Lock()
	w.stats.Events++
	w.pending[ev.Name] = time.Now()
	w.mu.Unlock()
}

// flush hands settled files to the handler.
func (w *Watcher) flush(ctx context.Context, debounce time.Duration, logger hclog.Logger) {
	now := time.Now()
	var ready []string

	w.mu.Lock()
	for path, at := range w.pending {
		if now.Sub(at) >= debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		if ctx.Err() != nil {
			return
		}
		w.handle(ctx, path, logger)
	}
}

func (w *Watcher) handle(ctx context.Context, path string, logger hclog.Logger) {
	info, err := os.Stat(path)
	if err != nil {
		logger.Debug("File vanished before it settled", "path", path)
		return
	}

	w.mu.Lock()
	mod, ours := w.written[path]
	if ours && mod.Equal(info.ModTime()) {
		w.stats.Ignored++
		w.mu.Unlock()
		logger.Trace("Skipping own output", "path", path)
		return
	}
	delete(w.written, path)
	w.mu.Unlock()

	outputs, err := w.Handler.Handle(ctx, path)
	if err != nil {
		logger.Error("❌ Post-processing failed", "path", path, "error", err)
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.Handled++
	for _, out := range outputs {
		if st, err := os.Stat(out); err == nil {
			w.written[out] = st.ModTime()
		}
	}
}
