package models

import "time"

// Race identifies a playable race as reported by the decoder.
type Race string

const (
	RaceTerran  Race = "Terran"
	RaceZerg    Race = "Zerg"
	RaceProtoss Race = "Protoss"
)

// StepKind classifies a build order step.
type StepKind string

const (
	StepStructure StepKind = "structure"
	StepUnit      StepKind = "unit"
	StepUpgrade   StepKind = "upgrade"
	StepTech      StepKind = "tech"
)

// PlayerInfo describes one participant of a replay. It is the typed
// boundary for decoder output: the decoder adapter maps its raw structures
// into PlayerInfo exactly once, and the rest of the engine never performs
// dynamic field lookups.
type PlayerInfo struct {
	// Name is the display name without discriminator.
	Name string `json:"name"`

	// BattleTag is the canonical tag (name + '#' + discriminator).
	// May be empty for older replays.
	BattleTag string `json:"battle_tag"`

	// Handle is the raw internal identifier as recorded in the replay,
	// e.g. "2-S2-1-6861867". Region prefixes are inconsistent across
	// recordings; comparisons go through the identity resolver.
	Handle string `json:"handle"`

	// Race is the race the participant played.
	Race Race `json:"race"`
}

// ReplayMetadata is the fast, metadata-only decoder output for one file.
type ReplayMetadata struct {
	// MapName is the localized map name.
	MapName string `json:"map_name"`

	// GameDate is the recorded end time of the game.
	GameDate time.Time `json:"game_date"`

	// EngineVersion is the game engine / decoder version string.
	EngineVersion string `json:"engine_version"`

	// Players holds the participants, two for a ladder game.
	Players []PlayerInfo `json:"players"`

	// Winner is the display name of the declared winner, empty when the
	// replay does not declare one.
	Winner string `json:"winner"`
}

// BuildOrderEvent is one ordered event from the slow, event-stream decoder
// mode.
type BuildOrderEvent struct {
	// Owner is the display name of the participant the event belongs to.
	Owner string `json:"owner"`

	// Seconds is the elapsed game time.
	Seconds int `json:"seconds"`

	// Kind classifies the event.
	Kind StepKind `json:"kind"`

	// Name is the structure/unit/upgrade/tech name.
	Name string `json:"name"`
}

// ReplayRecord is one completed game persisted in the cache store.
//
// Records are append-only: they are never deleted, and the only permitted
// mutation is flipping BuildOrderCached (plus its timestamp) once when the
// build order is cached. Uniqueness is keyed by the deterministic
// Fingerprint; FilePath carries its own unique index purely for fast
// lookups.
type ReplayRecord struct {
	ID uint `gorm:"primaryKey"`

	// Fingerprint is the stable dedup key derived from (file name, game
	// date), independent of the storage location.
	Fingerprint string `gorm:"uniqueIndex;size:16;not null"`

	// FilePath is the source path the record was last inserted from.
	FilePath string `gorm:"uniqueIndex;not null"`

	// FileName is the base name of the source file.
	FileName string `gorm:"index;not null"`

	// ContentHash is a sampled byte-level hash used for "same bytes"
	// checks without hashing entire large files.
	ContentHash string `gorm:"index"`

	MapName       string
	GameDate      time.Time `gorm:"index"`
	EngineVersion string

	Player1Name   string
	Player1Tag    string
	Player1Handle string `gorm:"index"`
	Player1Race   Race

	Player2Name   string
	Player2Tag    string
	Player2Handle string `gorm:"index"`
	Player2Race   Race

	// Winner is the display name of the declared winner, empty when
	// undeclared.
	Winner string

	// BuildOrderCached reports whether build order steps for this record
	// are present in the store.
	BuildOrderCached   bool
	BuildOrderCachedAt *time.Time

	CreatedAt time.Time
}

// Players returns the two participants as PlayerInfo values, in slot order.
func (r *ReplayRecord) Players() []PlayerInfo {
	return []PlayerInfo{
		{Name: r.Player1Name, BattleTag: r.Player1Tag, Handle: r.Player1Handle, Race: r.Player1Race},
		{Name: r.Player2Name, BattleTag: r.Player2Tag, Handle: r.Player2Handle, Race: r.Player2Race},
	}
}

// BuildOrderStep is one persisted build order entry belonging to exactly one
// ReplayRecord. Steps for a record are always replaced wholesale inside a
// transaction, never partially.
type BuildOrderStep struct {
	ID       uint   `gorm:"primaryKey"`
	ReplayID uint   `gorm:"index;not null"`
	Owner    string `gorm:"not null"`
	Seconds  int
	Kind     StepKind
	Name     string
}
