// Package decoder defines the boundary to the external replay decoder.
//
// The decoder is an external collaborator: this package only specifies the
// typed contract (metadata mode and event-stream mode) and provides a
// subprocess adapter that shells out to a configured decoder command.
// Decoding failures surface as *DecodeError so sync batches can skip a bad
// file without aborting.
package decoder
