package decoder

import (
	"context"
	"errors"
	"fmt"

	"replay-manager/feature/replay/models"
)

// Decoder is the boundary to the external replay binary decoder. The engine
// never parses replay bytes itself; it consumes the decoder as a black box
// that maps a file path to typed metadata or a typed failure.
type Decoder interface {
	// DecodeMetadata resolves players, map, date, races and winner for one
	// file. This is the fast mode: no event stream is decoded.
	DecodeMetadata(ctx context.Context, path string) (*models.ReplayMetadata, error)

	// DecodeEvents additionally yields the ordered build order events for
	// one file. Considerably slower than DecodeMetadata; callers invoke it
	// on demand for single files, never eagerly for whole batches.
	DecodeEvents(ctx context.Context, path string) ([]models.BuildOrderEvent, error)
}

// DecodeError is the typed per-file failure returned by decoder adapters.
// Sync batches catch it at the per-file boundary, log it, and continue.
type DecodeError struct {
	// Path is the file that failed to decode.
	Path string

	// Reason is a short human-readable cause (corrupt, timeout, version).
	Reason string

	// Err is the underlying error, if any.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Path, e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// IsDecodeError reports whether err is (or wraps) a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
