// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"golang.org/x/sync/singleflight"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/config"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/db"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/export"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/logger"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/api"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/leaderboard"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/rewards"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/traffic"
)

type (
	// SnapshotUpdatedEvent is emitted when a distribution query completes.
	SnapshotUpdatedEvent struct {
		Key      QueryKey
		Snapshot *models.Snapshot
	}

	// TrafficUpdatedEvent is emitted when a page traffic query completes.
	TrafficUpdatedEvent struct {
		Key    QueryKey
		Report *models.TrafficReport
	}

	// LeaderboardUpdatedEvent is emitted when a leaderboard query completes.
	LeaderboardUpdatedEvent struct {
		Key     QueryKey
		Earners []models.TopEarner
	}

	// FetchStartedEvent is emitted when a user-initiated query is dispatched.
	FetchStartedEvent struct {
		Key QueryKey
	}

	// ErrorEvent is emitted when a current query fails.
	ErrorEvent struct {
		Service string
		Key     QueryKey
		Error   error
	}

	// HealthChangedEvent is emitted when the backend starts or stops failing.
	HealthChangedEvent struct {
		Healthy bool
		Error   error
	}

	// ExportCompletedEvent is emitted after a scheduled export is written.
	ExportCompletedEvent struct {
		Path string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (SnapshotUpdatedEvent) isServiceEvent()    {}
func (TrafficUpdatedEvent) isServiceEvent()     {}
func (LeaderboardUpdatedEvent) isServiceEvent() {}
func (FetchStartedEvent) isServiceEvent()       {}
func (ErrorEvent) isServiceEvent()              {}
func (HealthChangedEvent) isServiceEvent()      {}
func (ExportCompletedEvent) isServiceEvent()    {}

// Manager orchestrates queries, polling, persistence and event routing.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	sources     Sources
	database    *db.DB
	exporter    *export.Exporter
	scheduler   *export.Scheduler
	group       singleflight.Group
	views       map[QueryType]*viewState
	snapshots   map[models.Period]*models.Snapshot
	report      *models.TrafficReport
	earners     []models.TopEarner
	healthy     bool
	subscribers []chan<- ServiceEvent
	closed      bool
	notify      func(title, body string) error
	now         func() time.Time

	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	stopChan     chan struct{}
	intervalChan chan time.Duration
}

// NewManager creates a manager backed by the analytics API described by cfg.
func NewManager(cfg *config.Config) (*Manager, error) {
	client := api.New(cfg.APIBaseURL,
		api.WithToken(cfg.APIToken),
		api.WithTimeout(cfg.RequestTimeout),
	)
	sources := Sources{
		Rewards:     rewards.New(client),
		Traffic:     traffic.New(client),
		Leaderboard: leaderboard.New(client),
	}

	database, err := db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	m, err := newManager(cfg, sources, database)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return m, nil
}

// newManager wires a manager around the given sources. database may be nil.
func newManager(cfg *config.Config, sources Sources, database *db.DB) (*Manager, error) {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:          cfg,
		sources:      sources,
		database:     database,
		exporter:     export.New(cfg.ExportDir),
		views:        make(map[QueryType]*viewState),
		snapshots:    make(map[models.Period]*models.Snapshot),
		healthy:      true,
		notify:       func(title, body string) error { return beeep.Notify(title, body, "") },
		now:          time.Now,
		ctx:          ctx,
		cancel:       cancel,
		stopChan:     make(chan struct{}),
		intervalChan: make(chan time.Duration, 1),
	}
	for _, q := range AllQueryTypes() {
		m.views[q] = &viewState{}
	}

	m.warmStart()

	if cfg.ExportSchedule != "" {
		scheduler, err := export.NewScheduler(cfg.ExportSchedule, m.exporter, m.fetchOverall, export.Options{KeepEmpty: true})
		if err != nil {
			cancel()
			return nil, err
		}
		m.scheduler = scheduler
		m.scheduler.Start()
		m.wg.Add(1)
		go m.forwardExports()
	}

	m.wg.Add(1)
	go m.pollLoop(cfg.RefreshInterval)

	return m, nil
}

// warmStart loads the last recorded snapshots so the dashboard has data
// before the first fetch returns, and prunes expired history.
func (m *Manager) warmStart() {
	if m.database == nil {
		return
	}
	for _, p := range models.AllPeriods() {
		snap, err := m.database.LatestSnapshot(p)
		if err != nil {
			logger.Warn("failed to load cached snapshot", "period", p.String(), "error", err)
			continue
		}
		if snap != nil {
			m.snapshots[p] = snap
		}
	}
	if m.cfg.HistoryRetention > 0 {
		removed, err := m.database.Prune(m.now().Add(-m.cfg.HistoryRetention))
		if err != nil {
			logger.Warn("failed to prune history", "error", err)
		} else if removed > 0 {
			logger.Info("pruned history", "rows", removed)
			if err := m.database.Vacuum(); err != nil {
				logger.Warn("failed to vacuum history", "error", err)
			}
		}
	}
}

// SetQuery makes key the current query of its view. Any in-flight request of
// another key is cancelled and its result will be discarded; repeating the
// key while it is in flight shares the running request.
func (m *Manager) SetQuery(key QueryKey) {
	gen, ctx, ok := m.begin(key, true)
	if !ok {
		return
	}
	m.broadcast(FetchStartedEvent{Key: key})
	m.dispatch(ctx, key, gen)
}

// Refresh re-issues the current query of every active view.
func (m *Manager) Refresh() {
	for _, q := range AllQueryTypes() {
		m.mu.RLock()
		vs := m.views[q]
		active, key := vs.active, vs.key
		m.mu.RUnlock()
		if active {
			m.SetQuery(key)
		}
	}
}

// Deactivate cancels the view's in-flight work and stops polling it.
func (m *Manager) Deactivate(q QueryType) {
	m.mu.Lock()
	defer m.mu.Unlock()

	vs := m.views[q]
	if vs.cancel != nil {
		vs.cancel()
		vs.cancel = nil
	}
	vs.active = false
	vs.generation++
	m.group.Forget(vs.key.String())
}

// CurrentQuery returns the current key of a view and whether it is active.
func (m *Manager) CurrentQuery(q QueryType) (QueryKey, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vs := m.views[q]
	return vs.key, vs.active
}

// begin records key as the view's current query. With supersede the previous
// request is cancelled and a new generation starts; otherwise the current
// generation is reused and nothing is dispatched while a request is in flight.
// A successful begin counts the fetch in the wait group while holding the
// lock; dispatch must follow.
func (m *Manager) begin(key QueryKey, supersede bool) (uint64, context.Context, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return 0, nil, false
	}

	vs := m.views[key.Type]
	if !supersede {
		if !vs.active || vs.inFlight > 0 || vs.key != key {
			return 0, nil, false
		}
		if vs.cancel != nil {
			vs.cancel()
		}
		ctx, cancel := context.WithCancel(m.ctx)
		vs.cancel = cancel
		vs.inFlight++
		m.wg.Add(1)
		return vs.generation, ctx, true
	}

	ctx, cancel := context.WithCancel(m.ctx)

	if vs.active && vs.key == key && vs.inFlight > 0 {
		// Same query already running: join it through the group.
		prev := vs.cancel
		vs.cancel = func() {
			prev()
			cancel()
		}
		vs.generation++
		vs.inFlight++
		m.wg.Add(1)
		return vs.generation, ctx, true
	}

	if vs.cancel != nil {
		vs.cancel()
	}
	m.group.Forget(vs.key.String())

	vs.key = key
	vs.active = true
	vs.generation++
	vs.cancel = cancel
	vs.inFlight++
	m.wg.Add(1)
	return vs.generation, ctx, true
}

// dispatch runs a fetch that begin already counted in the wait group.
func (m *Manager) dispatch(ctx context.Context, key QueryKey, gen uint64) {
	go func() {
		defer m.wg.Done()
		m.fetch(ctx, key, gen)
	}()
}

// fetch runs one query. Concurrent fetches of the same key share a single
// backend request.
func (m *Manager) fetch(ctx context.Context, key QueryKey, gen uint64) {
	defer m.finish(key.Type)

	result, err, _ := m.group.Do(key.String(), func() (any, error) {
		return m.execute(ctx, key)
	})

	if !m.isCurrent(key, gen) {
		logger.Debug("discarding stale result", "query", key.String(), "generation", gen)
		return
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Error("query failed", "query", key.String(), "error", err)
		m.broadcast(ErrorEvent{Service: key.Type.String(), Key: key, Error: err})
		m.setHealthy(false, err)
		return
	}

	m.setHealthy(true, nil)
	m.apply(key, result)
}

func (m *Manager) execute(ctx context.Context, key QueryKey) (any, error) {
	switch key.Type {
	case QueryRewards:
		return m.sources.Rewards.Fetch(ctx, key.Period)
	case QueryTraffic:
		return m.sources.Traffic.Fetch(ctx, key.Range)
	case QueryLeaderboard:
		return m.sources.Leaderboard.Fetch(ctx, key.Limit)
	default:
		return nil, fmt.Errorf("unknown query type %d", key.Type)
	}
}

// apply stores and publishes a successful result.
func (m *Manager) apply(key QueryKey, result any) {
	switch v := result.(type) {
	case *models.Snapshot:
		m.mu.Lock()
		m.snapshots[v.Period] = v
		m.mu.Unlock()
		if m.database != nil {
			if err := m.database.InsertSnapshot(v); err != nil {
				logger.Error("failed to record snapshot", "error", err)
			}
		}
		m.broadcast(SnapshotUpdatedEvent{Key: key, Snapshot: v})

	case *models.TrafficReport:
		m.mu.Lock()
		m.report = v
		m.mu.Unlock()
		if m.database != nil {
			if err := m.database.InsertPageTotals(v); err != nil {
				logger.Error("failed to record page totals", "error", err)
			}
		}
		m.broadcast(TrafficUpdatedEvent{Key: key, Report: v})

	case []models.TopEarner:
		m.mu.Lock()
		m.earners = v
		m.mu.Unlock()
		m.broadcast(LeaderboardUpdatedEvent{Key: key, Earners: v})
	}
}

func (m *Manager) isCurrent(key QueryKey, gen uint64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vs := m.views[key.Type]
	return vs.active && vs.key == key && vs.generation == gen
}

func (m *Manager) finish(q QueryType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if vs := m.views[q]; vs.inFlight > 0 {
		vs.inFlight--
	}
}

// setHealthy tracks backend health and sends a desktop notification when it
// changes.
func (m *Manager) setHealthy(healthy bool, cause error) {
	m.mu.Lock()
	changed := m.healthy != healthy
	m.healthy = healthy
	m.mu.Unlock()

	if !changed {
		return
	}

	title, body := "SpiceGold backend recovered", "Analytics are updating again."
	if !healthy {
		title, body = "SpiceGold backend unreachable", cause.Error()
	}
	if err := m.notify(title, body); err != nil {
		logger.Debug("desktop notification failed", "error", err)
	}
	m.broadcast(HealthChangedEvent{Healthy: healthy, Error: cause})
}

// Healthy reports whether the last completed query succeeded.
func (m *Manager) Healthy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.healthy
}

// pollLoop re-issues the current query of every active view on each tick.
func (m *Manager) pollLoop(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.poll()
		case d := <-m.intervalChan:
			ticker.Reset(d)
		case <-m.stopChan:
			return
		}
	}
}

// poll dispatches the current queries, skipping views with a request in flight.
func (m *Manager) poll() {
	for _, q := range AllQueryTypes() {
		m.mu.RLock()
		key := m.views[q].key
		m.mu.RUnlock()

		gen, ctx, ok := m.begin(key, false)
		if !ok {
			continue
		}
		m.dispatch(ctx, key, gen)
	}
}

// ApplyConfig adopts settings that can change at runtime.
func (m *Manager) ApplyConfig(cfg *config.Config) {
	m.mu.Lock()
	changed := cfg.RefreshInterval != m.cfg.RefreshInterval
	m.cfg = cfg
	m.mu.Unlock()

	if changed && cfg.RefreshInterval > 0 {
		select {
		case m.intervalChan <- cfg.RefreshInterval:
		default:
		}
		logger.Info("refresh interval changed", "interval", cfg.RefreshInterval)
	}
}

// Config returns the configuration in use.
func (m *Manager) Config() *config.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Snapshot returns the latest snapshot of a period, or nil.
func (m *Manager) Snapshot(p models.Period) *models.Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshots[p]
}

// Traffic returns the latest traffic report, or nil.
func (m *Manager) Traffic() *models.TrafficReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.report
}

// Leaderboard returns the latest earners.
func (m *Manager) Leaderboard() []models.TopEarner {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.earners
}

// History returns the recorded history of a period.
func (m *Manager) History(p models.Period, tr models.TimeRange) (*models.HistoryStats, error) {
	if m.database == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return m.database.LoadHistory(p, tr, m.now())
}

// ExportRanges writes the current snapshot of a period as CSV.
func (m *Manager) ExportRanges(p models.Period, opts export.Options) (string, error) {
	return m.exporter.ExportRanges(m.Snapshot(p), opts)
}

// ExportTraffic writes the current traffic report as CSV.
func (m *Manager) ExportTraffic(opts export.Options) (string, error) {
	return m.exporter.ExportTraffic(m.Traffic(), opts)
}

// ExportLeaderboard writes the current earners as CSV.
func (m *Manager) ExportLeaderboard() (string, error) {
	return m.exporter.ExportLeaderboard(m.Leaderboard())
}

// fetchOverall feeds scheduled exports with a fresh overall snapshot.
func (m *Manager) fetchOverall(ctx context.Context) (*models.Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-m.ctx.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return m.sources.Rewards.Fetch(ctx, models.PeriodOverall)
}

func (m *Manager) forwardExports() {
	defer m.wg.Done()
	for {
		select {
		case path := <-m.scheduler.Completed():
			m.broadcast(ExportCompletedEvent{Path: path})
		case <-m.stopChan:
			return
		}
	}
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return
	}
	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Database returns the database instance for direct access.
func (m *Manager) Database() *db.DB {
	return m.database
}

// Close stops polling, cancels all queries and closes the database.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	close(m.stopChan)
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
	m.wg.Wait()

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	if m.database != nil {
		return m.database.Close()
	}
	return nil
}
