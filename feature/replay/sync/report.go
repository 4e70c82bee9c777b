package sync

import "time"

// Mode identifies which synchronization path produced a report.
type Mode string

const (
	// ModeFull processes every replay on disk; run once when the store is
	// empty at startup.
	ModeFull Mode = "full"
	// ModeIncremental processes only files absent from the store,
	// determined by a bulk set difference.
	ModeIncremental Mode = "incremental"
	// ModeSingle persists exactly one just-finished replay.
	ModeSingle Mode = "single"
)

// SkippedFile records one file that failed inside a batch and was skipped.
type SkippedFile struct {
	// Path is the file that was skipped.
	Path string `json:"path"`
	// Reason is a human-readable cause.
	Reason string `json:"reason"`
}

// Report summarizes one synchronization run. Per-file failures never abort
// a batch; they are collected here so callers can surface the skipped count
// instead of swallowing it.
type Report struct {
	// Mode is the synchronization path taken.
	Mode Mode `json:"mode"`

	// Scanned is the number of replay files enumerated on disk.
	Scanned int `json:"scanned"`

	// Processed is the number of files run through the pipeline.
	Processed int `json:"processed"`

	// Inserted counts newly created records.
	Inserted int `json:"inserted"`

	// AlreadyCached counts files whose fingerprint was already stored.
	AlreadyCached int `json:"already_cached"`

	// Skipped lists per-file failures (decode errors, store write
	// failures after retries).
	Skipped []SkippedFile `json:"skipped"`

	// Suppressed is set on the one incremental pass elided right after a
	// full sync completed in the same process run.
	Suppressed bool `json:"suppressed"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`
}

// SkippedCount returns the number of skipped files.
func (r *Report) SkippedCount() int { return len(r.Skipped) }
