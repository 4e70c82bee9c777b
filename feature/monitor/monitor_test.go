package monitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"replay-manager/core/lockfile"
	"replay-manager/feature/replay/models"
	replaysync "replay-manager/feature/replay/sync"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSyncer struct {
	incrementalCalls int
	persistCalls     int
	persistedPaths   []string
}

func (s *fakeSyncer) IncrementalSync(context.Context) (*replaysync.Report, error) {
	s.incrementalCalls++
	return &replaysync.Report{Mode: replaysync.ModeIncremental}, nil
}

func (s *fakeSyncer) PersistReplay(_ context.Context, path string) (*models.ReplayRecord, error) {
	s.persistCalls++
	s.persistedPaths = append(s.persistedPaths, path)
	return &models.ReplayRecord{FileName: filepath.Base(path)}, nil
}

type fakeLocator struct {
	calls int
	path  string
}

func (l *fakeLocator) NewestReplay(context.Context) (string, error) {
	l.calls++
	return l.path, nil
}

type harness struct {
	marker  string
	syncer  *fakeSyncer
	locator *fakeLocator
	mon     *Monitor
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		marker:  filepath.Join(t.TempDir(), "replay.server.battlelobby"),
		syncer:  &fakeSyncer{},
		locator: &fakeLocator{path: "/replays/finished.SC2Replay"},
	}
	cfg := Config{MarkerPath: h.marker, PollIntervalMS: 10}
	h.mon = New(cfg, h.syncer, h.locator, zap.NewNop(), opts...)
	return h
}

func (h *harness) createMarker(t *testing.T) {
	t.Helper()
	require.NoError(t, os.WriteFile(h.marker, []byte("lobby"), 0o644))
}

func (h *harness) removeMarker(t *testing.T) {
	t.Helper()
	require.NoError(t, os.Remove(h.marker))
}

func TestMonitor_InitialStateAwaiting(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, StateAwaiting, h.mon.State())

	h.mon.Poll(context.Background())
	assert.Equal(t, StateAwaiting, h.mon.State())
	assert.Equal(t, 0, h.syncer.incrementalCalls)
	assert.Equal(t, 0, h.syncer.persistCalls)
}

func TestMonitor_EnterGameTriggersIncrementalSync(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.createMarker(t)
	h.mon.Poll(ctx)

	assert.Equal(t, StateInGame, h.mon.State())
	assert.Equal(t, 1, h.syncer.incrementalCalls)
	assert.Equal(t, 0, h.syncer.persistCalls)

	// No change: polling again must not re-sync.
	h.mon.Poll(ctx)
	assert.Equal(t, 1, h.syncer.incrementalCalls)
}

func TestMonitor_ExitGamePersistsSingleFileOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.createMarker(t)
	h.mon.Poll(ctx)
	h.removeMarker(t)
	syncsBeforeExit := h.syncer.incrementalCalls

	h.mon.Poll(ctx)

	assert.Equal(t, StateAwaiting, h.mon.State())
	assert.Equal(t, 1, h.syncer.persistCalls)
	assert.Equal(t, []string{"/replays/finished.SC2Replay"}, h.syncer.persistedPaths)
	// The anti-rescan contract: leaving the game runs no batch sync.
	assert.Equal(t, syncsBeforeExit, h.syncer.incrementalCalls)
	assert.Equal(t, 1, h.locator.calls)
}

func TestMonitor_ExitWithoutReplayFile(t *testing.T) {
	h := newHarness(t)
	h.locator.path = ""
	ctx := context.Background()

	h.createMarker(t)
	h.mon.Poll(ctx)
	h.removeMarker(t)
	h.mon.Poll(ctx)

	assert.Equal(t, StateAwaiting, h.mon.State())
	assert.Equal(t, 0, h.syncer.persistCalls)
}

func TestMonitor_TransitionFiresBeforeTick(t *testing.T) {
	h := newHarness(t)

	var order []string
	h.mon.onTransition = func(ev Transition) {
		order = append(order, "transition:"+string(ev.To))
	}
	h.mon.onTick = func(tick Tick) {
		order = append(order, "tick:"+string(tick.State))
	}

	ctx := context.Background()
	h.mon.Poll(ctx)
	h.createMarker(t)
	h.mon.Poll(ctx)

	assert.Equal(t, []string{
		"tick:awaiting",
		"transition:in_game",
		"tick:in_game",
	}, order)
}

func TestMonitor_TransitionEventPayloads(t *testing.T) {
	h := newHarness(t)

	var events []Transition
	h.mon.onTransition = func(ev Transition) { events = append(events, ev) }

	ctx := context.Background()
	h.createMarker(t)
	h.mon.Poll(ctx)
	h.removeMarker(t)
	h.mon.Poll(ctx)

	require.Len(t, events, 2)

	assert.Equal(t, StateAwaiting, events[0].From)
	assert.Equal(t, StateInGame, events[0].To)
	require.NotNil(t, events[0].Report)
	assert.Nil(t, events[0].Persisted)

	assert.Equal(t, StateInGame, events[1].From)
	assert.Equal(t, StateAwaiting, events[1].To)
	assert.Nil(t, events[1].Report)
	require.NotNil(t, events[1].Persisted)
	assert.Equal(t, "finished.SC2Replay", events[1].Persisted.FileName)
}

func TestMonitor_TickCarriesLobbySnapshot(t *testing.T) {
	h := newHarness(t)

	var ticks []Tick
	h.mon.onTick = func(tick Tick) { ticks = append(ticks, tick) }

	ctx := context.Background()
	require.NoError(t, os.WriteFile(h.marker, []byte("\x00\x01You#1111\x00junk Rival#2222\x00"), 0o644))
	h.mon.Poll(ctx)

	require.Len(t, ticks, 1)
	require.NotNil(t, ticks[0].Lobby)
	assert.Equal(t, []string{"You#1111", "Rival#2222"}, ticks[0].Lobby.BattleTags)
}

func TestMonitor_RevalidationSyncsWhenStampIsStale(t *testing.T) {
	dir := t.TempDir()
	stamp := lockfile.NewStamp(filepath.Join(dir, "validation"))

	h := newHarness(t)
	h.mon.stamp = stamp
	h.mon.revalidate = time.Hour

	ctx := context.Background()

	// Missing stamp counts as stale: the idle poll syncs and touches it.
	h.mon.Poll(ctx)
	assert.Equal(t, 1, h.syncer.incrementalCalls)
	assert.False(t, stamp.Last().IsZero())

	// Fresh stamp: the next idle poll stays quiet.
	h.mon.Poll(ctx)
	assert.Equal(t, 1, h.syncer.incrementalCalls)
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- h.mon.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after cancellation")
	}
}

func TestParseLobby(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "marker")
	require.NoError(t, os.WriteFile(path, []byte("\x02You#1111\x00garbage You#1111 \x05Rival#2222"), 0o644))

	snap := ParseLobby(path)
	require.NotNil(t, snap)
	assert.Equal(t, []string{"You#1111", "Rival#2222"}, snap.BattleTags)

	assert.Nil(t, ParseLobby(filepath.Join(dir, "missing")))
}
