package sync

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	stdsync "sync"
	"time"

	"replay-manager/core/lockfile"
	"replay-manager/feature/replay/decoder"
	"replay-manager/feature/replay/models"
	"replay-manager/feature/replay/scanner"
	"replay-manager/feature/replay/store"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc receives (processed, total) after every item of the parallel
// insertion stage.
type ProgressFunc func(processed, total int)

// Coordinator compares file-system state against the store, decides full vs
// incremental synchronization, and drives bounded-parallel extraction into
// the store.
//
// The coordinator owns the process-local sync state: the set of cached file
// paths (loaded once from the store) and the full-sync-just-completed flag.
// Sync runs are serialized; workers only write to the store and never touch
// the sync state.
type Coordinator struct {
	store    *store.Store
	dec      decoder.Decoder
	scan     scanner.Scanner
	stamp    *lockfile.Stamp
	log      *zap.Logger
	progress ProgressFunc
	numCPU   func() int

	mu           stdsync.Mutex
	knownPaths   map[string]struct{}
	loaded       bool
	fullSyncDone bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithProgress installs a progress callback for batch runs.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Coordinator) { c.progress = fn }
}

// WithStamp installs the validation timestamp, touched after each
// successful sync.
func WithStamp(s *lockfile.Stamp) Option {
	return func(c *Coordinator) { c.stamp = s }
}

// WithNumCPU overrides the processor count used for worker pool sizing.
func WithNumCPU(fn func() int) Option {
	return func(c *Coordinator) { c.numCPU = fn }
}

// New creates a Coordinator. All collaborators are injected explicitly;
// there is no ambient global decoder or store.
func New(st *store.Store, dec decoder.Decoder, scan scanner.Scanner, log *zap.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:      st,
		dec:        dec,
		scan:       scan,
		log:        log,
		numCPU:     runtime.NumCPU,
		knownPaths: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureSynced is the startup entry point: it runs a full sync when the
// store is empty, and otherwise just loads the cached-path set into memory.
// Returns the full sync report, or nil when no full sync was needed.
func (c *Coordinator) EnsureSynced(ctx context.Context, folder string, recursive bool) (*Report, error) {
	n, err := c.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return c.FullSync(ctx, folder, recursive)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadStateLocked(ctx); err != nil {
		return nil, err
	}
	return nil, nil
}

// FullSync enumerates every replay file under folder and processes all of
// them through the two-stage pipeline. Intended to run only when the store
// is empty; on a populated store it is harmless (dedup makes inserts
// no-ops) but wasteful.
func (c *Coordinator) FullSync(ctx context.Context, folder string, recursive bool) (*Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := time.Now()
	paths, err := c.scan.List(ctx, folder, recursive)
	if err != nil {
		return nil, fmt.Errorf("full sync: %w", err)
	}

	rep := &Report{Mode: ModeFull, Scanned: len(paths)}
	c.log.Info("Full sync started", zap.Int("files", len(paths)), zap.String("folder", folder))

	c.processLocked(ctx, paths, rep)
	c.fullSyncDone = true
	c.loaded = true
	c.finishLocked(ctx, rep, start)
	return rep, nil
}

// IncrementalSync enumerates disk files, computes the set difference against
// the in-memory cached-path set in one bulk comparison, and processes only
// the missing files. The first call after a completed full sync in the same
// process run is suppressed as redundant.
func (c *Coordinator) IncrementalSync(ctx context.Context, folder string, recursive bool) (*Report, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fullSyncDone {
		c.fullSyncDone = false
		c.log.Debug("Incremental sync suppressed, full sync just completed")
		return &Report{Mode: ModeIncremental, Suppressed: true}, nil
	}

	start := time.Now()
	if err := c.loadStateLocked(ctx); err != nil {
		return nil, err
	}

	paths, err := c.scan.List(ctx, folder, recursive)
	if err != nil {
		return nil, fmt.Errorf("incremental sync: %w", err)
	}

	var missing []string
	for _, p := range paths {
		if _, ok := c.knownPaths[p]; !ok {
			missing = append(missing, p)
		}
	}

	rep := &Report{Mode: ModeIncremental, Scanned: len(paths)}
	if len(missing) == 0 {
		rep.Duration = time.Since(start)
		c.log.Debug("Incremental sync found nothing new", zap.Int("scanned", len(paths)))
		return rep, nil
	}

	c.log.Info("Incremental sync started",
		zap.Int("scanned", len(paths)),
		zap.Int("new", len(missing)))

	c.processLocked(ctx, missing, rep)
	c.finishLocked(ctx, rep, start)
	return rep, nil
}

// PersistReplay decodes exactly one file and inserts it: no enumeration, no
// diffing. This is the "game just ended" path; rescanning the whole folder
// after every match is exactly the redundancy this method exists to avoid.
func (c *Coordinator) PersistReplay(ctx context.Context, path string) (*models.ReplayRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	meta, err := c.dec.DecodeMetadata(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("persist replay: %w", err)
	}

	rec := c.buildRecord(path, meta)
	id, created, err := c.store.InsertOrIgnore(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("persist replay: %w", err)
	}
	c.knownPaths[path] = struct{}{}

	c.log.Info("Persisted finished replay",
		zap.String("file", rec.FileName),
		zap.Bool("created", created))

	stored, err := c.store.FindByFingerprint(ctx, rec.Fingerprint)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("persist replay: record %d vanished after insert", id)
	}
	return stored, nil
}

// Bound binds a coordinator to a fixed folder so consumers like the game
// state monitor can trigger syncs without carrying scan parameters.
type Bound struct {
	c         *Coordinator
	folder    string
	recursive bool
}

// Bind returns a folder-bound view of the coordinator.
func (c *Coordinator) Bind(folder string, recursive bool) *Bound {
	return &Bound{c: c, folder: folder, recursive: recursive}
}

// IncrementalSync runs an incremental sync against the bound folder.
func (b *Bound) IncrementalSync(ctx context.Context) (*Report, error) {
	return b.c.IncrementalSync(ctx, b.folder, b.recursive)
}

// PersistReplay persists a single finished replay.
func (b *Bound) PersistReplay(ctx context.Context, path string) (*models.ReplayRecord, error) {
	return b.c.PersistReplay(ctx, path)
}

// loadStateLocked loads the cached-path set from the store once.
func (c *Coordinator) loadStateLocked(ctx context.Context) error {
	if c.loaded {
		return nil
	}
	paths, err := c.store.CachedPaths(ctx)
	if err != nil {
		return err
	}
	c.knownPaths = make(map[string]struct{}, len(paths))
	for _, p := range paths {
		c.knownPaths[p] = struct{}{}
	}
	c.loaded = true
	return nil
}

// extraction is one file whose metadata has been resolved and is ready for
// insertion.
type extraction struct {
	path string
	meta *models.ReplayMetadata
}

// processLocked runs the two-stage pipeline over paths and fills rep.
//
// Stage 1 extracts metadata sequentially (fast mode, no event streams), so
// slow decoder I/O never interleaves with store lock contention. Stage 2
// inserts in parallel under a bounded worker pool. Per-file errors are
// recorded and skipped; they never abort the batch.
func (c *Coordinator) processLocked(ctx context.Context, paths []string, rep *Report) {
	var extractions []extraction
	for _, p := range paths {
		if ctx.Err() != nil {
			break
		}
		meta, err := c.dec.DecodeMetadata(ctx, p)
		if err != nil {
			c.log.Warn("Replay decode failed, skipping",
				zap.String("path", p),
				zap.Error(err))
			rep.Skipped = append(rep.Skipped, SkippedFile{Path: p, Reason: err.Error()})
			continue
		}
		extractions = append(extractions, extraction{path: p, meta: meta})
	}

	workers := workerCount(c.numCPU())
	total := len(extractions)

	var (
		resMu     stdsync.Mutex
		processed int
	)

	g := new(errgroup.Group)
	g.SetLimit(workers)

	for _, ex := range extractions {
		// Dispatched work finishes even if cancellation arrives mid-batch;
		// only new dispatches stop. Per-record transactions keep a partial
		// batch consistent regardless.
		if ctx.Err() != nil {
			break
		}
		ex := ex
		g.Go(func() error {
			rec := c.buildRecord(ex.path, ex.meta)
			_, created, err := c.store.InsertOrIgnore(ctx, rec)

			resMu.Lock()
			defer resMu.Unlock()
			processed++
			switch {
			case err != nil:
				c.log.Warn("Replay insert failed, skipping",
					zap.String("path", ex.path),
					zap.Error(err))
				rep.Skipped = append(rep.Skipped, SkippedFile{Path: ex.path, Reason: err.Error()})
			case created:
				rep.Inserted++
				c.knownPathsAdd(ex.path)
			default:
				rep.AlreadyCached++
				c.knownPathsAdd(ex.path)
			}
			rep.Processed++
			if c.progress != nil {
				c.progress(processed, total)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// knownPathsAdd records a processed path. Called under resMu from workers;
// the coordinator mutex is already held by the sync entry point, and workers
// are the only writers during a batch.
func (c *Coordinator) knownPathsAdd(path string) {
	c.knownPaths[path] = struct{}{}
}

// finishLocked records run duration, persists the last-sync marker and
// touches the validation stamp.
func (c *Coordinator) finishLocked(ctx context.Context, rep *Report, start time.Time) {
	rep.Duration = time.Since(start)

	if err := c.store.SetLastSync(ctx, time.Now()); err != nil {
		c.log.Warn("Recording last sync time failed", zap.Error(err))
	}
	if c.stamp != nil {
		if err := c.stamp.Touch(); err != nil {
			c.log.Warn("Touching validation stamp failed", zap.Error(err))
		}
	}

	c.log.Info("Sync completed",
		zap.String("mode", string(rep.Mode)),
		zap.Int("scanned", rep.Scanned),
		zap.Int("inserted", rep.Inserted),
		zap.Int("already_cached", rep.AlreadyCached),
		zap.Int("skipped", rep.SkippedCount()),
		zap.Duration("duration", rep.Duration))
}

// buildRecord maps decoder metadata into a persistable record. Metadata is
// fully resolved before any insert is attempted.
func (c *Coordinator) buildRecord(path string, meta *models.ReplayMetadata) *models.ReplayRecord {
	fileName := filepath.Base(path)

	rec := &models.ReplayRecord{
		Fingerprint:   store.Fingerprint(fileName, meta.GameDate),
		FilePath:      path,
		FileName:      fileName,
		MapName:       meta.MapName,
		GameDate:      meta.GameDate,
		EngineVersion: meta.EngineVersion,
		Winner:        meta.Winner,
	}

	if hash, err := store.ContentHash(path); err == nil {
		rec.ContentHash = hash
	} else {
		c.log.Debug("Content hash unavailable", zap.String("path", path), zap.Error(err))
	}

	if len(meta.Players) > 0 {
		p := meta.Players[0]
		rec.Player1Name, rec.Player1Tag, rec.Player1Handle, rec.Player1Race = p.Name, p.BattleTag, p.Handle, p.Race
	}
	if len(meta.Players) > 1 {
		p := meta.Players[1]
		rec.Player2Name, rec.Player2Tag, rec.Player2Handle, rec.Player2Race = p.Name, p.BattleTag, p.Handle, p.Race
	}
	return rec
}
