// Package lock keeps two scans from writing the same menu at once. The lock
// is a file holding the owner's PID; a lock left behind by a dead process is
// taken over.
package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/afero"
)

// FileName is the lock file created in the home path.
const FileName = ".opkscan.lock"

// ErrLocked is returned when a running process holds the lock.
var ErrLocked = errors.New("another scan is running")

// processRunning reports whether pid names a live process.
var processRunning = func(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 checks existence without delivering anything
	return process.Signal(syscall.Signal(0)) == nil
}

// Lock is a held scan lock
type Lock struct {
	fs     afero.Fs
	path   string
	logger hclog.Logger
}

// Acquire takes the lock at path for the current process.
func Acquire(fsys afero.Fs, path string, logger hclog.Logger) (*Lock, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	if err := removeStale(fsys, path, logger); err != nil {
		return nil, err
	}

	file, err := fsys.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("creating lock %s: %w", path, err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "%d\n", os.Getpid()); err != nil {
		fsys.Remove(path)
		return nil, fmt.Errorf("writing lock %s: %w", path, err)
	}

	logger.Debug("Acquired scan lock", "path", path, "pid", os.Getpid())
	return &Lock{fs: fsys, path: path, logger: logger}, nil
}

// removeStale deletes a lock whose owner is gone or unknown.
func removeStale(fsys afero.Fs, path string, logger hclog.Logger) error {
	data, err := afero.ReadFile(fsys, path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err == nil {
		pid, perr := strconv.Atoi(strings.TrimSpace(string(data)))
		if perr == nil && processRunning(pid) {
			logger.Debug("Lock held by active process", "pid", pid)
			return fmt.Errorf("%w (pid %d)", ErrLocked, pid)
		}
		logger.Info("Removing stale scan lock", "path", path, "contents", strings.TrimSpace(string(data)))
	} else {
		logger.Info("Removing unreadable scan lock", "path", path, "error", err)
	}

	if err := fsys.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing stale lock %s: %w", path, err)
	}
	return nil
}

// Release removes the lock file.
func (l *Lock) Release() error {
	if err := l.fs.Remove(l.path); err != nil {
		l.logger.Debug("Failed to remove lock file", "error", err)
		return err
	}
	l.logger.Debug("Released scan lock", "path", l.path)
	return nil
}
