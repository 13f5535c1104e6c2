package app

import (
	"time"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/config"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// InitialDataMsg carries the cached data available before the first fetch.
type InitialDataMsg struct {
	Snapshots map[models.Period]*models.Snapshot
	Traffic   *models.TrafficReport
	Earners   []models.TopEarner
	Healthy   bool
}

// RefreshMsg requests a refresh of every active query.
type RefreshMsg struct{}

// SetPeriodMsg selects the distribution period.
type SetPeriodMsg struct {
	Period models.Period
}

// SetTrafficRangeMsg selects the traffic window.
type SetTrafficRangeMsg struct {
	Range models.TimeRange
}

// SetTopNMsg selects how many leaderboard entries are fetched.
type SetTopNMsg struct {
	Limit int
}

// DataUpdatedMsg tells tabs that shared state changed.
type DataUpdatedMsg struct {
	Resource string
}

// ExportKind selects what an export writes.
type ExportKind int

// Export kinds.
const (
	ExportRanges ExportKind = iota
	ExportTraffic
	ExportLeaderboard
)

// String returns the export kind name.
func (k ExportKind) String() string {
	switch k {
	case ExportRanges:
		return "ranges"
	case ExportTraffic:
		return "traffic"
	case ExportLeaderboard:
		return "leaderboard"
	default:
		return "unknown"
	}
}

// ExportMsg requests a CSV export of the data currently shown.
type ExportMsg struct {
	Kind     ExportKind
	Detailed bool
}

// ExportResultMsg contains the result of an export operation.
type ExportResultMsg struct {
	Kind  ExportKind
	Path  string
	Error error
}

// ConfigReloadedMsg is sent when the configuration file changed on disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// TabActivatedMsg is delivered to a tab when it becomes the active tab.
type TabActivatedMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}
