package settings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"
)

// ErrLocked is returned when another live process holds the settings lock.
var ErrLocked = errors.New("🔒 settings are locked by another process")

// Lock serialises read-modify-write cycles of the settings file between
// concurrent post-processing runs.
type Lock struct {
	path   string
	logger hclog.Logger
}

// LockPath returns the lock file used for a settings file.
func LockPath(settingsPath string) string {
	return settingsPath + ".lock"
}

// IsProcessRunning checks if a process with given PID is still running
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// On Unix, Signal(0) checks if process exists without actually sending a signal
	return process.Signal(syscall.Signal(0)) == nil
}

// TryLock attempts to take the lock once. Locks left behind by dead
// processes are removed first.
func TryLock(settingsPath string, logger hclog.Logger) (*Lock, error) {
	lockPath := LockPath(settingsPath)
	removeStale(lockPath, logger)

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("creating lock file: %w", err)
	}
	defer file.Close()

	pid := os.Getpid()
	if _, err := fmt.Fprintf(file, "%d\n", pid); err != nil {
		os.Remove(lockPath)
		return nil, fmt.Errorf("writing lock file: %w", err)
	}

	logger.Debug("🔒 Acquired settings lock", "pid", pid, "path", lockPath)
	return &Lock{path: lockPath, logger: logger}, nil
}

// Acquire retries TryLock every interval until ctx is done.
func Acquire(ctx context.Context, settingsPath string, interval time.Duration, logger hclog.Logger) (*Lock, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 0; ; attempt++ {
		l, err := TryLock(settingsPath, logger)
		if !errors.Is(err, ErrLocked) {
			return l, err
		}
		if attempt%10 == 0 {
			logger.Debug("⏳ Waiting for settings lock...", "attempt", attempt)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLocked, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Release removes the lock file.
func (l *Lock) Release() {
	if l == nil {
		return
	}
	if err := os.Remove(l.path); err != nil {
		l.logger.Debug("⚠️ Failed to remove lock file", "error", err)
		return
	}
	l.logger.Debug("🔓 Released settings lock")
}

func removeStale(lockPath string, logger hclog.Logger) {
	data, err := os.ReadFile(lockPath)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		logger.Info("🧹 Removing unreadable lock file", "path", lockPath)
		os.Remove(lockPath)
		return
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	switch {
	case err != nil:
		logger.Info("🧹 Removing invalid lock file (couldn't parse PID)", "path", lockPath)
		os.Remove(lockPath)
	case !IsProcessRunning(pid):
		logger.Info("🧹 Removing stale lock from dead process", "pid", pid)
		os.Remove(lockPath)
	default:
		logger.Debug("🔒 Lock held by active process", "pid", pid)
	}
}
