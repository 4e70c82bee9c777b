package store

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
)

// sampleWindow is the number of bytes hashed per sampled region.
const sampleWindow = 4096

// Fingerprint derives the stable dedup key for a replay from its file name
// and recorded game date. The source path is deliberately excluded: a file
// moved or renamed-in-place with unchanged name and date is still recognized
// as the same replay.
func Fingerprint(fileName string, gameDate time.Time) string {
	h := xxhash.New()
	_, _ = io.WriteString(h, fileName)
	_, _ = h.Write([]byte{0})
	_, _ = io.WriteString(h, gameDate.UTC().Format(time.RFC3339))
	return fmt.Sprintf("%016x", h.Sum64())
}

// ContentHash computes a sampled byte-level hash of the file at path: the
// file size plus three fixed windows (head, middle, tail). It supports a
// secondary "same bytes" check without reading entire large replays; files
// at most three windows long are hashed fully.
func ContentHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("content hash %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("content hash %s: %w", path, err)
	}
	size := info.Size()

	h := xxhash.New()
	_, _ = io.WriteString(h, fmt.Sprintf("%d:", size))

	if size <= 3*sampleWindow {
		if _, err := io.Copy(h, f); err != nil {
			return "", fmt.Errorf("content hash %s: %w", path, err)
		}
		return fmt.Sprintf("%016x", h.Sum64()), nil
	}

	offsets := []int64{0, size/2 - sampleWindow/2, size - sampleWindow}
	buf := make([]byte, sampleWindow)
	for _, off := range offsets {
		if _, err := f.ReadAt(buf, off); err != nil && err != io.EOF {
			return "", fmt.Errorf("content hash %s: %w", path, err)
		}
		_, _ = h.Write(buf)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
