// Package models defines the persisted replay cache entities and the typed
// structures exchanged with the external replay decoder.
//
// # Persistence Model
//
// Two related tables are persisted: ReplayRecord (keyed by a deterministic
// fingerprint, unique on source path) and BuildOrderStep (foreign-keyed to a
// record, replaced wholesale per record). The replay table is an append-only
// log: records are never deleted, and the only mutation ever applied is the
// one-time flip of the BuildOrderCached flag.
//
// # Decoder Boundary
//
// ReplayMetadata, PlayerInfo and BuildOrderEvent form the typed adapter
// boundary for decoder output. Decoder adapters map their raw structures
// into these types once; no dynamic field access happens inside the engine.
package models
