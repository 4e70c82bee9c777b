package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"replay-manager/core/database"
	"replay-manager/feature/replay/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const lastSyncKey = "last_sync_at"

// syncMeta is the small key/value table holding last-sync metadata.
type syncMeta struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

func (syncMeta) TableName() string { return "sync_meta" }

// Store is the insert-only, deduplicated replay cache backed by the
// embedded SQLite database. All write paths go through contention retry.
type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

// New creates a Store on an open database handle.
func New(db *gorm.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

// Migrate creates or updates the store schema.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&models.ReplayRecord{}, &models.BuildOrderStep{}, &syncMeta{}); err != nil {
		return fmt.Errorf("migrate store schema: %w", err)
	}
	return nil
}

// InsertOrIgnore persists a record unless its fingerprint already exists.
// It is idempotent: the second and every later call with the same
// (file name, game date) returns the existing record's id untouched.
// created reports whether this call inserted the record.
func (s *Store) InsertOrIgnore(ctx context.Context, rec *models.ReplayRecord) (id uint, created bool, err error) {
	if rec.Fingerprint == "" {
		rec.Fingerprint = Fingerprint(rec.FileName, rec.GameDate)
	}

	existing, err := s.FindByFingerprint(ctx, rec.Fingerprint)
	if err != nil {
		return 0, false, err
	}
	if existing != nil {
		return existing.ID, false, nil
	}

	err = database.RetryWrite(ctx, s.log, func() error {
		return s.db.WithContext(ctx).Create(rec).Error
	})
	if err != nil {
		// A concurrent worker may have inserted the same fingerprint
		// between the lookup and the create; resolve to the winner.
		if isUniqueViolation(err) {
			existing, lookupErr := s.FindByFingerprint(ctx, rec.Fingerprint)
			if lookupErr == nil && existing != nil {
				return existing.ID, false, nil
			}
		}
		return 0, false, fmt.Errorf("insert replay %s: %w", rec.FileName, err)
	}
	return rec.ID, true, nil
}

// FindByPath returns the record inserted from path, or nil when the path is
// not cached. Missing records are a normal outcome, not an error.
func (s *Store) FindByPath(ctx context.Context, path string) (*models.ReplayRecord, error) {
	var rec models.ReplayRecord
	err := s.db.WithContext(ctx).Where("file_path = ?", path).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find replay by path: %w", err)
	}
	return &rec, nil
}

// FindByFingerprint returns the record with the given dedup key, or nil.
func (s *Store) FindByFingerprint(ctx context.Context, fingerprint string) (*models.ReplayRecord, error) {
	var rec models.ReplayRecord
	err := s.db.WithContext(ctx).Where("fingerprint = ?", fingerprint).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find replay by fingerprint: %w", err)
	}
	return &rec, nil
}

// Count returns the number of cached replay records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.ReplayRecord{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count replays: %w", err)
	}
	return n, nil
}

// CachedPaths returns every cached source path. Loaded once at startup into
// the coordinator's in-memory sync state; incremental sync diffs against
// that set instead of querying per file.
func (s *Store) CachedPaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := s.db.WithContext(ctx).Model(&models.ReplayRecord{}).Pluck("file_path", &paths).Error
	if err != nil {
		return nil, fmt.Errorf("load cached paths: %w", err)
	}
	return paths, nil
}

// RecordQuery selects replay records by game date.
type RecordQuery struct {
	// Before restricts to records strictly older than the given date.
	Before *time.Time
	// After restricts to records strictly newer than the given date.
	After *time.Time
	// Descending orders newest-first when set.
	Descending bool
	// Limit bounds the result set; 0 means no limit.
	Limit int
}

// ListByDate returns records ordered by game date according to q.
func (s *Store) ListByDate(ctx context.Context, q RecordQuery) ([]models.ReplayRecord, error) {
	tx := s.db.WithContext(ctx).Model(&models.ReplayRecord{})
	if q.Before != nil {
		tx = tx.Where("game_date < ?", *q.Before)
	}
	if q.After != nil {
		tx = tx.Where("game_date > ?", *q.After)
	}
	if q.Descending {
		tx = tx.Order("game_date DESC")
	} else {
		tx = tx.Order("game_date ASC")
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var recs []models.ReplayRecord
	if err := tx.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list replays by date: %w", err)
	}
	return recs, nil
}

// ReplaceBuildOrder atomically replaces the build order steps of one record:
// old steps are deleted, the new set inserted, and the cached flag plus
// timestamp set, all in a single transaction. A reader never observes
// "flag set, no steps" or "steps present, flag unset".
func (s *Store) ReplaceBuildOrder(ctx context.Context, replayID uint, steps []models.BuildOrderStep) error {
	now := time.Now().UTC()
	return database.RetryWrite(ctx, s.log, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("replay_id = ?", replayID).Delete(&models.BuildOrderStep{}).Error; err != nil {
				return fmt.Errorf("clear build order: %w", err)
			}
			for i := range steps {
				steps[i].ID = 0
				steps[i].ReplayID = replayID
			}
			if len(steps) > 0 {
				if err := tx.Create(&steps).Error; err != nil {
					return fmt.Errorf("insert build order: %w", err)
				}
			}
			err := tx.Model(&models.ReplayRecord{}).
				Where("id = ?", replayID).
				Updates(map[string]any{
					"build_order_cached":    true,
					"build_order_cached_at": now,
				}).Error
			if err != nil {
				return fmt.Errorf("flag build order cached: %w", err)
			}
			return nil
		})
	})
}

// BuildOrderSteps returns the cached steps for a record ordered by elapsed
// time. An empty slice with no error means the record has no cached steps.
func (s *Store) BuildOrderSteps(ctx context.Context, replayID uint) ([]models.BuildOrderStep, error) {
	var steps []models.BuildOrderStep
	err := s.db.WithContext(ctx).
		Where("replay_id = ?", replayID).
		Order("seconds ASC, id ASC").
		Find(&steps).Error
	if err != nil {
		return nil, fmt.Errorf("load build order steps: %w", err)
	}
	return steps, nil
}

// SetLastSync records the completion time of the latest sync run.
func (s *Store) SetLastSync(ctx context.Context, t time.Time) error {
	meta := syncMeta{Key: lastSyncKey, Value: t.UTC().Format(time.RFC3339), UpdatedAt: time.Now().UTC()}
	return database.RetryWrite(ctx, s.log, func() error {
		return s.db.WithContext(ctx).Save(&meta).Error
	})
}

// LastSync returns the recorded completion time of the latest sync run, or
// the zero time when no sync has completed yet.
func (s *Store) LastSync(ctx context.Context) (time.Time, error) {
	var meta syncMeta
	err := s.db.WithContext(ctx).Where("key = ?", lastSyncKey).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load last sync: %w", err)
	}
	t, err := time.Parse(time.RFC3339, meta.Value)
	if err != nil {
		return time.Time{}, nil
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "constraint failed")
}
