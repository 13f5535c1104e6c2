package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/export"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialData returns a command that reads the data the manager already
// holds, such as snapshots restored from history.
func loadInitialData(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		snapshots := make(map[models.Period]*models.Snapshot)
		for _, p := range models.AllPeriods() {
			if snap := mgr.Snapshot(p); snap != nil {
				snapshots[p] = snap
			}
		}
		return InitialDataMsg{
			Snapshots: snapshots,
			Traffic:   mgr.Traffic(),
			Earners:   mgr.Leaderboard(),
			Healthy:   mgr.Healthy(),
		}
	}
}

// setQueryCmd makes key the current query of its view. The manager fetches
// in the background and reports through service events.
func setQueryCmd(mgr *services.Manager, key services.QueryKey) tea.Cmd {
	return func() tea.Msg {
		mgr.SetQuery(key)
		return nil
	}
}

// deactivateCmd stops the given views.
func deactivateCmd(mgr *services.Manager, views ...services.QueryType) tea.Cmd {
	return func() tea.Msg {
		for _, v := range views {
			mgr.Deactivate(v)
		}
		return nil
	}
}

// refreshCmd re-issues every active query.
func refreshCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		mgr.Refresh()
		return nil
	}
}

// exportCmd writes the data currently held by the manager as CSV.
func exportCmd(mgr *services.Manager, msg ExportMsg, period models.Period) tea.Cmd {
	return func() tea.Msg {
		opts := export.Options{Detailed: msg.Detailed}

		var (
			path string
			err  error
		)
		switch msg.Kind {
		case ExportRanges:
			path, err = mgr.ExportRanges(period, opts)
		case ExportTraffic:
			path, err = mgr.ExportTraffic(opts)
		case ExportLeaderboard:
			path, err = mgr.ExportLeaderboard()
		}
		return ExportResultMsg{Kind: msg.Kind, Path: path, Error: err}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// DefaultTick returns a tick command with the default interval.
func (c *Commands) DefaultTick() tea.Cmd {
	return defaultTickCmd()
}

// SetQuery returns a command that makes key current. It is nil without a manager.
func (c *Commands) SetQuery(key services.QueryKey) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return setQueryCmd(c.manager, key)
}

// Refresh returns a command that re-issues every active query.
func (c *Commands) Refresh() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return refreshCmd(c.manager)
}

// SubscribeToServices returns a command that subscribes to service events.
func (c *Commands) SubscribeToServices() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return subscribeToServicesCmd(c.manager)
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return tea.Quit
}
