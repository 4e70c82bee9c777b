package monitor

import (
	"os"
	"regexp"
	"time"
)

// Marker files are small; a sane upper bound guards against reading
// something unexpected at the configured path.
const maxMarkerBytes = 1 << 20

var lobbyTagRe = regexp.MustCompile(`[A-Za-z][A-Za-z0-9]{2,11}#\d{3,8}`)

// LobbySnapshot is a best-effort view of the current match lobby, scraped
// from the marker file bytes. The marker format is opaque and version
// dependent; battle-tag-shaped strings are the only thing extracted.
type LobbySnapshot struct {
	// BattleTags lists the tags found in the marker, in order of first
	// appearance, deduplicated.
	BattleTags []string
	// ReadAt is when the marker was read.
	ReadAt time.Time
}

// ParseLobby reads the marker file and extracts battle tags. Returns nil
// when the file cannot be read or is implausibly large; lobby info is an
// optional nicety, never an error source.
func ParseLobby(path string) *LobbySnapshot {
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxMarkerBytes {
		return nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	snap := &LobbySnapshot{ReadAt: time.Now()}
	seen := make(map[string]struct{})
	for _, tag := range lobbyTagRe.FindAllString(string(raw), -1) {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		snap.BattleTags = append(snap.BattleTags, tag)
	}
	return snap
}
