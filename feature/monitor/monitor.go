package monitor

import (
	"context"
	"os"
	"time"

	"replay-manager/core/lockfile"
	"replay-manager/feature/replay/models"
	"replay-manager/feature/replay/scanner"
	replaysync "replay-manager/feature/replay/sync"

	"go.uber.org/zap"
)

// State is the monitor's view of the game process.
type State string

const (
	// StateAwaiting means no match is running.
	StateAwaiting State = "awaiting"
	// StateInGame means the marker file exists, a match is in progress.
	StateInGame State = "in_game"
)

// Config holds configuration for the game state monitor.
type Config struct {
	// MarkerPath is the lobby marker file created by the game process when
	// a match starts and removed when it ends. Only its existence drives
	// state; its bytes feed the best-effort lobby snapshot.
	MarkerPath string `mapstructure:"marker_path" default:"replay.server.battlelobby"`
	// PollIntervalMS is the fixed polling interval in milliseconds.
	PollIntervalMS int `mapstructure:"poll_interval_ms" default:"1000"`
}

// PollInterval returns the polling period as a duration.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// Synchronizer is the sync surface the monitor drives. *replaysync.Bound
// satisfies it.
type Synchronizer interface {
	IncrementalSync(ctx context.Context) (*replaysync.Report, error)
	PersistReplay(ctx context.Context, path string) (*models.ReplayRecord, error)
}

// Transition describes one state change.
type Transition struct {
	// From and To are the states around the change.
	From, To State
	// Report carries the incremental sync result on entering InGame.
	Report *replaysync.Report
	// Persisted carries the just-finished replay record on leaving InGame,
	// nil when no replay file could be located or persisted.
	Persisted *models.ReplayRecord
}

// Tick is the lightweight periodic event fired every poll iteration.
type Tick struct {
	// State is the current state.
	State State
	// Lobby is the parsed marker snapshot, nil outside a match or when the
	// marker cannot be read.
	Lobby *LobbySnapshot
}

// TransitionFunc receives state changes. Fired before the iteration's Tick.
type TransitionFunc func(Transition)

// TickFunc receives the periodic event.
type TickFunc func(Tick)

// Monitor polls the marker file on a fixed interval and turns its presence
// changes into sync actions: an incremental sync when a match starts, and a
// single-file persist when it ends. The exit path never enumerates the
// replay folder.
type Monitor struct {
	cfg     Config
	syncer  Synchronizer
	locator scanner.Locator
	log     *zap.Logger

	stamp      *lockfile.Stamp
	revalidate time.Duration

	onTransition TransitionFunc
	onTick       TickFunc

	state State
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithTransition installs the state-change callback.
func WithTransition(fn TransitionFunc) Option {
	return func(m *Monitor) { m.onTransition = fn }
}

// WithTick installs the periodic tick callback.
func WithTick(fn TickFunc) Option {
	return func(m *Monitor) { m.onTick = fn }
}

// WithRevalidation makes idle iterations run an incremental sync whenever
// the stamp is older than interval, so externally added files are noticed
// by a long-running process.
func WithRevalidation(s *lockfile.Stamp, interval time.Duration) Option {
	return func(m *Monitor) {
		m.stamp = s
		m.revalidate = interval
	}
}

// New creates a Monitor. The locator resolves the just-finished replay for
// the exit transition; it is intentionally not the batch scanner.
func New(cfg Config, syncer Synchronizer, locator scanner.Locator, log *zap.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		cfg:     cfg,
		syncer:  syncer,
		locator: locator,
		log:     log,
		state:   StateAwaiting,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current state.
func (m *Monitor) State() State { return m.state }

// Run polls until ctx is cancelled. Cancellation is observed once per
// iteration; an in-flight sync finishes its dispatched work first.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("Game state monitor started",
		zap.String("marker", m.cfg.MarkerPath),
		zap.Duration("interval", m.cfg.PollInterval()))

	ticker := time.NewTicker(m.cfg.PollInterval())
	defer ticker.Stop()

	for {
		m.Poll(ctx)

		select {
		case <-ctx.Done():
			m.log.Info("Game state monitor stopped")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Poll runs one monitor iteration: detect a state change, fire its
// transition, then fire the periodic tick. Exported so tests and callers can
// step the monitor without the timer loop.
func (m *Monitor) Poll(ctx context.Context) {
	current := m.readState()
	if current != m.state {
		prev := m.state
		m.state = current
		m.transition(ctx, prev, current)
	} else if m.shouldRevalidate() {
		m.runRevalidation(ctx)
	}

	if m.onTick != nil {
		tick := Tick{State: m.state}
		if m.state == StateInGame {
			tick.Lobby = ParseLobby(m.cfg.MarkerPath)
		}
		m.onTick(tick)
	}
}

func (m *Monitor) readState() State {
	if _, err := os.Stat(m.cfg.MarkerPath); err == nil {
		return StateInGame
	}
	return StateAwaiting
}

func (m *Monitor) transition(ctx context.Context, from, to State) {
	ev := Transition{From: from, To: to}

	switch to {
	case StateInGame:
		m.log.Info("Match started, syncing history")
		rep, err := m.syncer.IncrementalSync(ctx)
		if err != nil {
			m.log.Error("Incremental sync on match start failed", zap.Error(err))
		}
		ev.Report = rep

	case StateAwaiting:
		// Single-file path only. A full folder rescan here would re-read
		// the entire history after every match.
		path, err := m.locator.NewestReplay(ctx)
		switch {
		case err != nil:
			m.log.Error("Locating finished replay failed", zap.Error(err))
		case path == "":
			m.log.Warn("Match ended but no replay file found")
		default:
			rec, err := m.syncer.PersistReplay(ctx, path)
			if err != nil {
				m.log.Error("Persisting finished replay failed",
					zap.String("path", path),
					zap.Error(err))
			}
			ev.Persisted = rec
		}
	}

	if m.onTransition != nil {
		m.onTransition(ev)
	}
}

func (m *Monitor) shouldRevalidate() bool {
	return m.stamp != nil && m.state == StateAwaiting && m.stamp.ShouldRevalidate(m.revalidate)
}

func (m *Monitor) runRevalidation(ctx context.Context) {
	m.log.Debug("Revalidation interval elapsed, syncing")
	if _, err := m.syncer.IncrementalSync(ctx); err != nil {
		m.log.Error("Revalidation sync failed", zap.Error(err))
		return
	}
	// A nothing-new sync does not rewrite the stamp on its own; touch it
	// here so the next check waits a full interval again.
	if err := m.stamp.Touch(); err != nil {
		m.log.Warn("Touching validation stamp failed", zap.Error(err))
	}
}
