package lockfile

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Stamp is the validation timestamp file. It is rewritten after each
// successful sync and gates the periodic re-check of the replay folder, so a
// long-running process occasionally verifies it has not missed externally
// added files without re-scanning on every poll cycle.
type Stamp struct {
	path string
}

// NewStamp creates a stamp handle for the given path. The file is not
// touched until Touch is called.
func NewStamp(path string) *Stamp {
	return &Stamp{path: path}
}

// Touch rewrites the stamp with the current time.
func (s *Stamp) Touch() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	body := time.Now().UTC().Format(time.RFC3339) + "\n"
	return os.WriteFile(s.path, []byte(body), 0o644)
}

// Last returns the recorded time, or the zero time when the stamp is missing
// or unreadable.
func (s *Stamp) Last() time.Time {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(string(raw)))
	if err != nil {
		return time.Time{}
	}
	return t
}

// ShouldRevalidate reports whether more than interval has passed since the
// last successful sync. A missing stamp always revalidates.
func (s *Stamp) ShouldRevalidate(interval time.Duration) bool {
	last := s.Last()
	if last.IsZero() {
		return true
	}
	return time.Since(last) > interval
}
