package buildorder

import (
	"context"
	"fmt"
	"time"

	"replay-manager/feature/identity"
	"replay-manager/feature/replay/decoder"
	"replay-manager/feature/replay/models"
	"replay-manager/feature/replay/store"

	"go.uber.org/zap"
)

// Entry is one resolved matchup: the replay record, the opponent resolved
// from the query identifier, and the opponent's build order steps in game
// time order.
type Entry struct {
	Record   *models.ReplayRecord
	Opponent models.PlayerInfo
	Steps    []models.BuildOrderStep
}

// Cache resolves build orders per opponent matchup. Event decoding is lazy:
// the slow decoder mode runs only for the one record being viewed, and its
// result is persisted so a second view of the same record never decodes
// again.
type Cache struct {
	store *store.Store
	dec   decoder.Decoder
	log   *zap.Logger
}

// New creates a Cache over the given store and decoder.
func New(st *store.Store, dec decoder.Decoder, log *zap.Logger) *Cache {
	return &Cache{store: st, dec: dec, log: log}
}

// LoadForOpponent returns the most recent matchup against the opponent.
// Returns (nil, nil) when no record matches or the replay cannot be decoded.
func (c *Cache) LoadForOpponent(ctx context.Context, you, opponent string) (*Entry, error) {
	return c.lookup(ctx, you, opponent, store.RecordQuery{Descending: true})
}

// Next returns the chronologically next matchup strictly after the given
// date, or (nil, nil) when none exists.
func (c *Cache) Next(ctx context.Context, you, opponent string, after time.Time) (*Entry, error) {
	return c.lookup(ctx, you, opponent, store.RecordQuery{After: &after})
}

// Previous returns the chronologically previous matchup strictly before the
// given date, or (nil, nil) when none exists.
func (c *Cache) Previous(ctx context.Context, you, opponent string, before time.Time) (*Entry, error) {
	return c.lookup(ctx, you, opponent, store.RecordQuery{Before: &before, Descending: true})
}

// lookup walks date-ordered records and returns the first one where the
// opponent identifier resolves to a participant.
func (c *Cache) lookup(ctx context.Context, you, opponent string, q store.RecordQuery) (*Entry, error) {
	recs, err := c.store.ListByDate(ctx, q)
	if err != nil {
		return nil, err
	}

	for i := range recs {
		rec := &recs[i]
		opp, ok := resolveOpponent(rec, you, opponent)
		if !ok {
			continue
		}

		steps, err := c.stepsFor(ctx, rec)
		if err != nil {
			return nil, err
		}
		if steps == nil {
			// Decode failed for this one file. The matchup exists but has
			// no usable data; callers show "no data".
			return nil, nil
		}
		return &Entry{Record: rec, Opponent: opp, Steps: ownerSteps(steps, opp.Name)}, nil
	}
	return nil, nil
}

// stepsFor returns the full step set for a record, decoding and persisting
// it on first access. A nil slice with nil error means the decode failed.
func (c *Cache) stepsFor(ctx context.Context, rec *models.ReplayRecord) ([]models.BuildOrderStep, error) {
	if rec.BuildOrderCached {
		return c.store.BuildOrderSteps(ctx, rec.ID)
	}

	events, err := c.dec.DecodeEvents(ctx, rec.FilePath)
	if err != nil {
		c.log.Warn("Build order decode failed",
			zap.String("file", rec.FileName),
			zap.Error(err))
		return nil, nil
	}

	steps := make([]models.BuildOrderStep, len(events))
	for i, ev := range events {
		steps[i] = models.BuildOrderStep{
			Owner:   ev.Owner,
			Seconds: ev.Seconds,
			Kind:    ev.Kind,
			Name:    ev.Name,
		}
	}
	if err := c.store.ReplaceBuildOrder(ctx, rec.ID, steps); err != nil {
		return nil, fmt.Errorf("cache build order: %w", err)
	}
	rec.BuildOrderCached = true

	c.log.Info("Build order cached",
		zap.String("file", rec.FileName),
		zap.Int("steps", len(steps)))
	return steps, nil
}

// resolveOpponent matches the opponent identifier against a record's
// participants. When a self identifier is given it must resolve to the other
// participant, so mirror queries never hand back the caller's own build.
func resolveOpponent(rec *models.ReplayRecord, you, opponent string) (models.PlayerInfo, bool) {
	players := rec.Players()
	opp, ok := identity.Match(players, opponent)
	if !ok {
		return models.PlayerInfo{}, false
	}
	if you != "" {
		self, ok := identity.Match(players, you)
		if !ok || self == opp {
			return models.PlayerInfo{}, false
		}
	}
	return opp, true
}

// ownerSteps filters steps down to the opponent's own build. Older decoder
// outputs occasionally carry owner names that do not line up with replay
// metadata; in that case the unfiltered set is better than nothing.
func ownerSteps(steps []models.BuildOrderStep, owner string) []models.BuildOrderStep {
	var out []models.BuildOrderStep
	for _, st := range steps {
		if st.Owner == owner {
			out = append(out, st)
		}
	}
	if len(out) == 0 {
		return steps
	}
	return out
}
