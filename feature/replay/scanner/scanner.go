package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Extension is the replay file extension matched by the scanner.
const Extension = ".SC2Replay"

// Scanner lists replay files under a root folder.
type Scanner interface {
	// List returns the paths of all replay files under root, recursing into
	// subfolders when recursive is set. Order is deterministic (sorted).
	List(ctx context.Context, root string, recursive bool) ([]string, error)
}

// FileScanner is the filesystem Scanner implementation.
type FileScanner struct {
	extension string
}

// NewFileScanner creates a scanner matching the standard replay extension.
func NewFileScanner() *FileScanner {
	return &FileScanner{extension: Extension}
}

// List implements Scanner.
func (s *FileScanner) List(ctx context.Context, root string, recursive bool) ([]string, error) {
	var paths []string

	if recursive {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if s.matches(d.Name()) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if s.matches(e.Name()) {
				paths = append(paths, filepath.Join(root, e.Name()))
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func (s *FileScanner) matches(name string) bool {
	return strings.EqualFold(filepath.Ext(name), s.extension)
}

// Locator resolves the just-finished replay for the single-file persist
// path. It is deliberately separate from Scanner: the exit-of-game
// transition must never run the batch enumeration pipeline.
type Locator interface {
	// NewestReplay returns the path of the most recently modified replay
	// under the configured folder, or "" when none exists.
	NewestReplay(ctx context.Context) (string, error)
}

// NewestFileLocator locates the newest replay in a single folder by
// modification time.
type NewestFileLocator struct {
	Root string
}

// NewestReplay implements Locator.
func (l *NewestFileLocator) NewestReplay(ctx context.Context) (string, error) {
	entries, err := os.ReadDir(l.Root)
	if err != nil {
		return "", fmt.Errorf("locate newest replay in %s: %w", l.Root, err)
	}

	var (
		newest     string
		newestTime time.Time
	)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Extension) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = filepath.Join(l.Root, e.Name())
			newestTime = info.ModTime()
		}
	}
	return newest, nil
}
