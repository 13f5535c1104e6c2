package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/config"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/db"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/export"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/fixtures"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/traffic"
)

// stubRewards returns a fixed snapshot per period. Periods listed in gates
// block until their gate is closed, ignoring cancellation so that late
// results reach the manager.
type stubRewards struct {
	mu    sync.Mutex
	calls map[models.Period]int
	gates map[models.Period]chan struct{}
	err   error
}

func newStubRewards() *stubRewards {
	return &stubRewards{
		calls: make(map[models.Period]int),
		gates: make(map[models.Period]chan struct{}),
	}
}

func (s *stubRewards) gate(p models.Period) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan struct{})
	s.gates[p] = ch
	return ch
}

func (s *stubRewards) setErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *stubRewards) count(p models.Period) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[p]
}

func (s *stubRewards) Fetch(_ context.Context, p models.Period) (*models.Snapshot, error) {
	s.mu.Lock()
	s.calls[p]++
	gate := s.gates[p]
	err := s.err
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return &models.Snapshot{
		FetchedAt: time.Now(),
		Period:    p,
		Shape:     models.ShapeStandard,
		Buckets: []models.RangeBucket{
			{From: 0, To: models.Int64Ptr(4000), Users: 7},
			{From: 4000, To: models.Int64Ptr(8000), Users: 3},
		},
		TotalUsers: 10,
	}, nil
}

type stubTraffic struct{}

func (stubTraffic) Fetch(_ context.Context, rng models.DateRange) (*models.TrafficReport, error) {
	return &models.TrafficReport{
		FetchedAt:  time.Now(),
		Range:      rng,
		Pages:      []models.PageStat{{Page: "landing_page", TotalUsers: 5, NewUsers: 2}},
		GrandTotal: 5,
	}, nil
}

type stubLeaderboard struct{}

func (stubLeaderboard) Fetch(_ context.Context, limit int) ([]models.TopEarner, error) {
	earners := []models.TopEarner{
		{Rank: 1, DeveloperID: "dev-1", TotalRewardPoints: 900},
		{Rank: 2, DeveloperID: "dev-2", TotalRewardPoints: 500},
	}
	if limit < len(earners) {
		earners = earners[:limit]
	}
	return earners, nil
}

type notification struct {
	title, body string
}

func newTestManager(t *testing.T, rw *stubRewards, interval time.Duration) (*Manager, *db.DB) {
	t.Helper()
	return newTestManagerWithSources(t, Sources{Rewards: rw, Traffic: stubTraffic{}, Leaderboard: stubLeaderboard{}}, interval)
}

func newTestManagerWithSources(t *testing.T, sources Sources, interval time.Duration) (*Manager, *db.DB) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.New(filepath.Join(tmpDir, "history.db"))
	require.NoError(t, err)

	cfg := &config.Config{
		APIBaseURL:      "http://localhost:8089",
		DatabasePath:    database.Path(),
		ExportDir:       filepath.Join(tmpDir, "exports"),
		RefreshInterval: interval,
		TopEarnersLimit: 50,
	}
	m, err := newManager(cfg, sources, database)
	require.NoError(t, err)
	m.notify = func(string, string) error { return nil }
	t.Cleanup(func() { _ = m.Close() })
	return m, database
}

// next waits for the first event of type T, skipping the others.
func next[T ServiceEvent](t *testing.T, ch <-chan ServiceEvent) T {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			require.True(t, ok, "event channel closed")
			if v, ok := ev.(T); ok {
				return v
			}
		case <-timeout:
			var zero T
			t.Fatalf("timed out waiting for %T", zero)
			return zero
		}
	}
}

func TestManager_SetQueryPublishesSnapshot(t *testing.T) {
	rw := newStubRewards()
	m, database := newTestManager(t, rw, time.Hour)
	ch, _ := m.Subscribe()

	key := RewardsQuery(models.PeriodWeekly)
	m.SetQuery(key)

	started := next[FetchStartedEvent](t, ch)
	assert.Equal(t, key, started.Key)

	updated := next[SnapshotUpdatedEvent](t, ch)
	assert.Equal(t, key, updated.Key)
	assert.Equal(t, int64(10), updated.Snapshot.TotalUsers)
	assert.Same(t, updated.Snapshot, m.Snapshot(models.PeriodWeekly))

	stored, err := database.LatestSnapshot(models.PeriodWeekly)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, int64(10), stored.TotalUsers)

	current, active := m.CurrentQuery(QueryRewards)
	assert.True(t, active)
	assert.Equal(t, key, current)
}

func TestManager_StaleResultDiscarded(t *testing.T) {
	rw := newStubRewards()
	release := rw.gate(models.PeriodDaily)
	m, _ := newTestManager(t, rw, time.Hour)
	ch, _ := m.Subscribe()

	m.SetQuery(RewardsQuery(models.PeriodDaily))
	require.Eventually(t, func() bool { return rw.count(models.PeriodDaily) == 1 }, time.Second, 5*time.Millisecond)

	m.SetQuery(RewardsQuery(models.PeriodMonthly))
	updated := next[SnapshotUpdatedEvent](t, ch)
	assert.Equal(t, models.PeriodMonthly, updated.Snapshot.Period)

	close(release)
	time.Sleep(50 * time.Millisecond)

	assert.Nil(t, m.Snapshot(models.PeriodDaily), "superseded result must not be applied")
	for {
		select {
		case ev := <-ch:
			if up, ok := ev.(SnapshotUpdatedEvent); ok {
				t.Fatalf("unexpected update for %s", up.Key)
			}
		default:
			return
		}
	}
}

func TestManager_RepeatedQueryJoinsInFlight(t *testing.T) {
	rw := newStubRewards()
	release := rw.gate(models.PeriodOverall)
	m, _ := newTestManager(t, rw, time.Hour)
	ch, _ := m.Subscribe()

	key := RewardsQuery(models.PeriodOverall)
	m.SetQuery(key)
	require.Eventually(t, func() bool { return rw.count(models.PeriodOverall) == 1 }, time.Second, 5*time.Millisecond)

	m.SetQuery(key)
	m.Refresh()
	time.Sleep(20 * time.Millisecond)
	close(release)

	updated := next[SnapshotUpdatedEvent](t, ch)
	assert.Equal(t, key, updated.Key)
	assert.Equal(t, 1, rw.count(models.PeriodOverall))
}

func TestManager_PollSkipsWhileInFlight(t *testing.T) {
	rw := newStubRewards()
	release := rw.gate(models.PeriodDaily)
	m, _ := newTestManager(t, rw, 10*time.Millisecond)

	m.SetQuery(RewardsQuery(models.PeriodDaily))
	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, 1, rw.count(models.PeriodDaily), "poll must not pile up behind a slow request")

	rw.mu.Lock()
	delete(rw.gates, models.PeriodDaily)
	rw.mu.Unlock()
	close(release)

	assert.Eventually(t, func() bool { return rw.count(models.PeriodDaily) >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestManager_DeactivateIgnoresResult(t *testing.T) {
	rw := newStubRewards()
	release := rw.gate(models.PeriodWeekly)
	m, _ := newTestManager(t, rw, 10*time.Millisecond)

	m.SetQuery(RewardsQuery(models.PeriodWeekly))
	require.Eventually(t, func() bool { return rw.count(models.PeriodWeekly) == 1 }, time.Second, 5*time.Millisecond)

	m.Deactivate(QueryRewards)
	close(release)
	time.Sleep(80 * time.Millisecond)

	assert.Nil(t, m.Snapshot(models.PeriodWeekly))
	assert.Equal(t, 1, rw.count(models.PeriodWeekly), "inactive views are not polled")
	_, active := m.CurrentQuery(QueryRewards)
	assert.False(t, active)
}

func TestManager_HealthTransitionsNotify(t *testing.T) {
	rw := newStubRewards()
	rw.setErr(errors.New("connection refused"))
	m, _ := newTestManager(t, rw, time.Hour)

	var mu sync.Mutex
	var sent []notification
	m.notify = func(title, body string) error {
		mu.Lock()
		defer mu.Unlock()
		sent = append(sent, notification{title, body})
		return nil
	}
	ch, _ := m.Subscribe()

	m.SetQuery(RewardsQuery(models.PeriodDaily))
	errEv := next[ErrorEvent](t, ch)
	assert.Equal(t, "rewards", errEv.Service)
	down := next[HealthChangedEvent](t, ch)
	assert.False(t, down.Healthy)
	assert.False(t, m.Healthy())

	// A second failure is not a transition.
	m.SetQuery(RewardsQuery(models.PeriodWeekly))
	next[ErrorEvent](t, ch)

	rw.setErr(nil)
	m.SetQuery(RewardsQuery(models.PeriodDaily))
	up := next[HealthChangedEvent](t, ch)
	assert.True(t, up.Healthy)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sent, 2)
	assert.Equal(t, "SpiceGold backend unreachable", sent[0].title)
	assert.Equal(t, "connection refused", sent[0].body)
	assert.Equal(t, "SpiceGold backend recovered", sent[1].title)
}

func TestManager_TrafficAndLeaderboard(t *testing.T) {
	m, database := newTestManager(t, newStubRewards(), time.Hour)
	ch, _ := m.Subscribe()

	rng := models.DateRange{From: "2024-01-01", To: "2024-01-07"}
	m.SetQuery(TrafficQuery(rng))
	tr := next[TrafficUpdatedEvent](t, ch)
	assert.Equal(t, rng, tr.Report.Range)
	assert.Same(t, tr.Report, m.Traffic())

	trends, err := database.PageTrends(time.Time{})
	require.NoError(t, err)
	assert.Len(t, trends["landing_page"], 1)

	m.SetQuery(LeaderboardQuery(1))
	lb := next[LeaderboardUpdatedEvent](t, ch)
	require.Len(t, lb.Earners, 1)
	assert.Equal(t, "dev-1", m.Leaderboard()[0].DeveloperID)
}

// rawGetter answers every request with the same data member.
type rawGetter string

func (g rawGetter) Get(context.Context, string, url.Values) (json.RawMessage, error) {
	return json.RawMessage(g), nil
}

func TestManager_UnknownTrafficShapeKeepsBackendHealthy(t *testing.T) {
	sources := Sources{
		Rewards:     newStubRewards(),
		Traffic:     traffic.New(rawGetter(`{"pages": []}`)),
		Leaderboard: stubLeaderboard{},
	}
	m, _ := newTestManagerWithSources(t, sources, time.Hour)
	ch, _ := m.Subscribe()

	m.SetQuery(TrafficQuery(models.DateRange{}))
	updated := next[TrafficUpdatedEvent](t, ch)

	assert.True(t, updated.Report.IsEmpty())
	assert.True(t, m.Healthy())
}

func TestManager_WarmStart(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "history.db")
	seed, err := db.New(path)
	require.NoError(t, err)
	require.NoError(t, seed.InsertSnapshot(&models.Snapshot{
		FetchedAt:  time.Now().UTC(),
		Period:     models.PeriodOverall,
		Shape:      models.ShapeCombined,
		Buckets:    []models.RangeBucket{{From: 0, To: models.Int64Ptr(4000), Users: 42}},
		TotalUsers: 42,
	}))
	require.NoError(t, seed.Close())

	database, err := db.New(path)
	require.NoError(t, err)
	cfg := &config.Config{ExportDir: tmpDir, RefreshInterval: time.Hour, HistoryRetention: 24 * time.Hour}
	m, err := newManager(cfg, Sources{Rewards: newStubRewards()}, database)
	require.NoError(t, err)
	defer m.Close()

	snap := m.Snapshot(models.PeriodOverall)
	require.NotNil(t, snap)
	assert.Equal(t, int64(42), snap.TotalUsers)
	assert.Nil(t, m.Snapshot(models.PeriodDaily))
}

func TestManager_Export(t *testing.T) {
	m, _ := newTestManager(t, newStubRewards(), time.Hour)

	_, err := m.ExportRanges(models.PeriodDaily, export.Options{})
	assert.ErrorIs(t, err, export.ErrNothingToExport)

	ch, _ := m.Subscribe()
	m.SetQuery(RewardsQuery(models.PeriodDaily))
	next[SnapshotUpdatedEvent](t, ch)

	path, err := m.ExportRanges(models.PeriodDaily, export.Options{})
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, m.Config().ExportDir, filepath.Dir(path))
}

func TestManager_ApplyConfigResetsInterval(t *testing.T) {
	rw := newStubRewards()
	m, _ := newTestManager(t, rw, time.Hour)
	ch, _ := m.Subscribe()

	m.SetQuery(RewardsQuery(models.PeriodDaily))
	next[SnapshotUpdatedEvent](t, ch)

	cfg := *m.Config()
	cfg.RefreshInterval = 10 * time.Millisecond
	m.ApplyConfig(&cfg)

	assert.Eventually(t, func() bool { return rw.count(models.PeriodDaily) >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, m.Config().RefreshInterval)
}

func TestManager_SubscribeUnsubscribe(t *testing.T) {
	m, _ := newTestManager(t, newStubRewards(), time.Hour)

	ch, cmd := m.Subscribe()
	require.NotNil(t, cmd)

	m.broadcast(FetchStartedEvent{Key: LeaderboardQuery(5)})
	msg := cmd()
	ev, ok := msg.(FetchStartedEvent)
	require.True(t, ok)
	assert.Equal(t, 5, ev.Key.Limit)

	m.Unsubscribe(ch)
	_, open := <-ch
	assert.False(t, open)
}

func TestManager_CloseIsIdempotent(t *testing.T) {
	rw := newStubRewards()
	m, _ := newTestManager(t, rw, time.Hour)
	ch, _ := m.Subscribe()

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	_, open := <-ch
	assert.False(t, open)

	m.SetQuery(RewardsQuery(models.PeriodDaily))
	assert.Equal(t, 0, rw.count(models.PeriodDaily))
}

func TestManager_CloseWhileQuerying(t *testing.T) {
	m, _ := newTestManager(t, newStubRewards(), 10*time.Millisecond)

	var wg sync.WaitGroup
	for _, p := range models.AllPeriods() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				m.SetQuery(RewardsQuery(p))
			}
		}()
	}

	require.NoError(t, m.Close())
	wg.Wait()

	m.mu.RLock()
	defer m.mu.RUnlock()
	assert.True(t, m.closed)
}

func TestNewManager_AgainstFixtureServer(t *testing.T) {
	base, shutdown, err := fixtures.Start(fixtures.VariantNested)
	require.NoError(t, err)
	defer shutdown()

	tmpDir := t.TempDir()
	cfg := &config.Config{
		APIBaseURL:      base,
		DatabasePath:    filepath.Join(tmpDir, "history.db"),
		ExportDir:       filepath.Join(tmpDir, "exports"),
		RefreshInterval: time.Hour,
		RequestTimeout:  5 * time.Second,
		TopEarnersLimit: 50,
	}
	m, err := NewManager(cfg)
	require.NoError(t, err)
	defer m.Close()
	require.NotNil(t, m.Database())

	ch, _ := m.Subscribe()
	m.SetQuery(RewardsQuery(models.PeriodDaily))

	updated := next[SnapshotUpdatedEvent](t, ch)
	assert.Equal(t, models.ShapeNested, updated.Snapshot.Shape)
	assert.Equal(t, int64(11), updated.Snapshot.TotalUsers)
	assert.True(t, m.Healthy())
}
