// Package monitor watches the game process through its lobby marker file.
//
// A single cooperative polling loop checks marker existence on a fixed
// interval. Appearance means a match started: the monitor runs an
// incremental sync so any history against the detected opponent is cached
// before it is needed. Disappearance means the match ended: exactly the
// just-finished replay is persisted through the single-file path, and the
// replay folder is never re-enumerated.
//
// State changes fire before the iteration's periodic tick. Ticks carry the
// current state and, during a match, a best-effort lobby snapshot parsed
// from the marker bytes.
package monitor
