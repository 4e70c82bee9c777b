package store

import (
	"context"
	"fmt"
	"time"

	"replay-manager/feature/replay/models"
)

// Statistics is the derived view over the replay cache. It is computed on
// demand from record and step counts; it is never an independent source of
// truth.
type Statistics struct {
	// ReplayCount is the total number of cached replay records.
	ReplayCount int64 `json:"replay_count"`

	// BuildOrderCached counts records whose build order steps are cached.
	BuildOrderCached int64 `json:"build_order_cached"`

	// StepCount is the total number of cached build order steps.
	StepCount int64 `json:"step_count"`

	// DistinctMaps counts distinct map names across all records.
	DistinctMaps int64 `json:"distinct_maps"`

	// OldestGame and NewestGame bound the recorded game dates; zero when
	// the cache is empty.
	OldestGame time.Time `json:"oldest_game"`
	NewestGame time.Time `json:"newest_game"`

	// LastSyncAt is the completion time of the latest sync run; zero when
	// no sync has completed.
	LastSyncAt time.Time `json:"last_sync_at"`
}

// Statistics computes the current cache statistics.
func (s *Store) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{}

	db := s.db.WithContext(ctx)

	if err := db.Model(&models.ReplayRecord{}).Count(&stats.ReplayCount).Error; err != nil {
		return nil, fmt.Errorf("statistics: count replays: %w", err)
	}
	if err := db.Model(&models.ReplayRecord{}).Where("build_order_cached = ?", true).Count(&stats.BuildOrderCached).Error; err != nil {
		return nil, fmt.Errorf("statistics: count cached build orders: %w", err)
	}
	if err := db.Model(&models.BuildOrderStep{}).Count(&stats.StepCount).Error; err != nil {
		return nil, fmt.Errorf("statistics: count steps: %w", err)
	}
	if err := db.Model(&models.ReplayRecord{}).Distinct("map_name").Count(&stats.DistinctMaps).Error; err != nil {
		return nil, fmt.Errorf("statistics: count maps: %w", err)
	}

	if stats.ReplayCount > 0 {
		var oldest, newest models.ReplayRecord
		if err := db.Order("game_date ASC").First(&oldest).Error; err != nil {
			return nil, fmt.Errorf("statistics: oldest game: %w", err)
		}
		if err := db.Order("game_date DESC").First(&newest).Error; err != nil {
			return nil, fmt.Errorf("statistics: newest game: %w", err)
		}
		stats.OldestGame = oldest.GameDate
		stats.NewestGame = newest.GameDate
	}

	lastSync, err := s.LastSync(ctx)
	if err != nil {
		return nil, err
	}
	stats.LastSyncAt = lastSync

	return stats, nil
}
