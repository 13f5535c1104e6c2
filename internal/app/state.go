// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// Loadable resources.
const (
	ResourceInitial     = "initial"
	ResourceRewards     = "rewards"
	ResourceTraffic     = "traffic"
	ResourceLeaderboard = "leaderboard"
	ResourceHistory     = "history"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial     bool
	Rewards     bool
	Traffic     bool
	Leaderboard bool
	History     bool
}

// State is the data shared by the root model and every tab. Service results
// are immutable and stored by reference.
type State struct {
	mu sync.RWMutex

	Period       models.Period
	TrafficRange models.TimeRange
	TopN         int

	Snapshots map[models.Period]*models.Snapshot
	Traffic   *models.TrafficReport
	Earners   []models.TopEarner

	Healthy bool
	errors  map[string]error

	Loading     LoadingState
	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates the initial application state.
func NewState() *State {
	return &State{
		Period:        models.PeriodDaily,
		TrafficRange:  models.TimeRange7Days,
		TopN:          10,
		Snapshots:     make(map[models.Period]*models.Snapshot),
		Healthy:       true,
		errors:        make(map[string]error),
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case ResourceInitial:
		s.Loading.Initial = loading
	case ResourceRewards:
		s.Loading.Rewards = loading
	case ResourceTraffic:
		s.Loading.Traffic = loading
	case ResourceLeaderboard:
		s.Loading.Leaderboard = loading
	case ResourceHistory:
		s.Loading.History = loading
	}
}

// IsLoading reports whether a resource is loading.
func (s *State) IsLoading(resource string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch resource {
	case ResourceInitial:
		return s.Loading.Initial
	case ResourceRewards:
		return s.Loading.Rewards
	case ResourceTraffic:
		return s.Loading.Traffic
	case ResourceLeaderboard:
		return s.Loading.Leaderboard
	case ResourceHistory:
		return s.Loading.History
	default:
		return false
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial ||
		s.Loading.Rewards ||
		s.Loading.Traffic ||
		s.Loading.Leaderboard ||
		s.Loading.History
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, ResourceInitial)
	}
	if s.Loading.Rewards {
		resources = append(resources, ResourceRewards)
	}
	if s.Loading.Traffic {
		resources = append(resources, ResourceTraffic)
	}
	if s.Loading.Leaderboard {
		resources = append(resources, ResourceLeaderboard)
	}
	if s.Loading.History {
		resources = append(resources, ResourceHistory)
	}
	return resources
}

// SetPeriod selects the distribution period.
func (s *State) SetPeriod(p models.Period) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Period = p
}

// GetPeriod returns the selected distribution period.
func (s *State) GetPeriod() models.Period {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Period
}

// SetTrafficRange selects the traffic window.
func (s *State) SetTrafficRange(tr models.TimeRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TrafficRange = tr
}

// GetTrafficRange returns the selected traffic window.
func (s *State) GetTrafficRange() models.TimeRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.TrafficRange
}

// SetTopN selects how many leaderboard entries are shown.
func (s *State) SetTopN(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TopN = n
}

// GetTopN returns how many leaderboard entries are shown.
func (s *State) GetTopN() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.TopN
}

// SetSnapshot stores the latest snapshot of its period.
func (s *State) SetSnapshot(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Snapshots[snap.Period] = snap
	delete(s.errors, ResourceRewards)
	s.LastUpdated = time.Now()
}

// GetSnapshot returns the latest snapshot of a period, or nil.
func (s *State) GetSnapshot(p models.Period) *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Snapshots[p]
}

// CurrentSnapshot returns the snapshot of the selected period, or nil.
func (s *State) CurrentSnapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Snapshots[s.Period]
}

// SetTraffic stores the latest traffic report.
func (s *State) SetTraffic(report *models.TrafficReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Traffic = report
	delete(s.errors, ResourceTraffic)
	s.LastUpdated = time.Now()
}

// GetTraffic returns the latest traffic report, or nil.
func (s *State) GetTraffic() *models.TrafficReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Traffic
}

// SetEarners stores the latest leaderboard.
func (s *State) SetEarners(earners []models.TopEarner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Earners = earners
	delete(s.errors, ResourceLeaderboard)
	s.LastUpdated = time.Now()
}

// GetEarners returns the latest leaderboard.
func (s *State) GetEarners() []models.TopEarner {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Earners
}

// SetError records the last failure of a resource. A nil error clears it.
func (s *State) SetError(resource string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errors, resource)
		return
	}
	s.errors[resource] = err
}

// GetError returns the last failure of a resource, or nil.
func (s *State) GetError(resource string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errors[resource]
}

// Errors returns a copy of every recorded failure.
func (s *State) Errors() map[string]error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.errors)
}

// SetHealthy records whether the backend is reachable.
func (s *State) SetHealthy(healthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Healthy = healthy
}

// IsHealthy reports whether the backend is reachable.
func (s *State) IsHealthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Healthy
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := fmt.Sprintf("%s-%d", time.Now().Format("20060102150405"), s.notificationSeq)

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// GetLastUpdated returns the last time the state was updated.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
