package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// ErrLockHeld is returned when another process already holds the sync lock.
// Callers treat this as fatal: a second instance must not sync concurrently.
var ErrLockHeld = errors.New("sync lock is held by another process")

// Lock is the exclusive, process-scoped sync lock. Its lifecycle spans the
// whole process: acquired before any sync work begins, released at exit.
type Lock struct {
	fl    *flock.Flock
	runID string
}

// Acquire takes the exclusive lock at path, failing immediately with
// ErrLockHeld when another process holds it. The lock file body records the
// holder's pid, a run identifier and the acquisition time for diagnostics;
// only the lock itself is load-bearing.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrLockHeld)
	}

	l := &Lock{fl: fl, runID: uuid.NewString()}
	body := fmt.Sprintf("pid=%d run=%s acquired=%s\n",
		os.Getpid(), l.runID, time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		_ = fl.Unlock()
		return nil, fmt.Errorf("write lock body %s: %w", path, err)
	}
	return l, nil
}

// RunID returns the unique identifier of this lock acquisition.
func (l *Lock) RunID() string { return l.runID }

// Release unlocks and removes the lock file. Safe to call once at process
// exit; removal failures are ignored (the advisory lock is already gone).
func (l *Lock) Release() error {
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	_ = os.Remove(l.fl.Path())
	return nil
}
