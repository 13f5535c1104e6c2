package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/services"
)

func TestCommands_Tick(t *testing.T) {
	cmds := NewCommands(nil)
	if cmds.Tick(time.Millisecond) == nil {
		t.Error("Tick returned nil")
	}
	if cmds.DefaultTick() == nil {
		t.Error("DefaultTick returned nil")
	}
}

func TestCommands_WithoutManager(t *testing.T) {
	cmds := NewCommands(nil)

	if cmds.SetQuery(services.RewardsQuery(0)) != nil {
		t.Error("SetQuery should be nil without a manager")
	}
	if cmds.Refresh() != nil {
		t.Error("Refresh should be nil without a manager")
	}
	if cmds.SubscribeToServices() != nil {
		t.Error("SubscribeToServices should be nil without a manager")
	}
}

func TestCommands_Notifications(t *testing.T) {
	cmds := NewCommands(nil)

	tests := []struct {
		name     string
		fn       func(string) tea.Cmd
		want     NotificationType
		duration time.Duration
	}{
		{"Success", cmds.NotifySuccess, NotificationSuccess, DefaultNotificationDuration},
		{"Error", cmds.NotifyError, NotificationError, LongNotificationDuration},
		{"Warning", cmds.NotifyWarning, NotificationWarning, DefaultNotificationDuration},
		{"Info", cmds.NotifyInfo, NotificationInfo, QuickNotificationDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.fn("msg")()

			addMsg, ok := msg.(AddNotificationMsg)
			if !ok {
				t.Fatalf("Expected AddNotificationMsg, got %T", msg)
			}
			if addMsg.Type != tt.want {
				t.Errorf("Type = %v, want %v", addMsg.Type, tt.want)
			}
			if addMsg.Message != "msg" {
				t.Errorf("Message = %q, want msg", addMsg.Message)
			}
			if addMsg.Duration != tt.duration {
				t.Errorf("Duration = %v, want %v", addMsg.Duration, tt.duration)
			}
		})
	}
}

func TestCommands_ClearNotification(t *testing.T) {
	cmds := NewCommands(nil)
	if cmds.ClearNotification("id", time.Millisecond) == nil {
		t.Error("ClearNotification returned nil")
	}
}

func TestCommands_Quit(t *testing.T) {
	cmds := NewCommands(nil)
	msg := cmds.Quit()()
	if _, ok := msg.(tea.QuitMsg); !ok {
		t.Errorf("Expected QuitMsg, got %T", msg)
	}
}

func TestWaitForServiceEventCmd(t *testing.T) {
	ch := make(chan services.ServiceEvent, 1)
	ch <- services.HealthChangedEvent{Healthy: true}

	msg, ok := waitForServiceEventCmd(ch)().(ServiceEventMsg)
	if !ok {
		t.Fatal("expected ServiceEventMsg")
	}
	if e, ok := msg.Event.(services.HealthChangedEvent); !ok || !e.Healthy {
		t.Errorf("Event = %#v", msg.Event)
	}

	close(ch)
	if got := waitForServiceEventCmd(ch)(); got != nil {
		t.Errorf("closed channel should yield nil, got %T", got)
	}
}

func TestExportKind_String(t *testing.T) {
	tests := []struct {
		kind ExportKind
		want string
	}{
		{ExportRanges, "ranges"},
		{ExportTraffic, "traffic"},
		{ExportLeaderboard, "leaderboard"},
		{ExportKind(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
