// Package buildorder resolves cached build orders per opponent matchup.
//
// Lookup is identity driven: the opponent identifier (battle tag, handle or
// display name) is resolved against each record's participants through the
// identity package, walking records in game date order. Navigation moves
// strictly forward or backward in time with Next and Previous.
//
// Event decoding is on demand. The slow decoder pass runs only when a
// record's steps are not yet in the store, and the result is persisted
// atomically so every record is decoded at most once over its lifetime.
package buildorder
