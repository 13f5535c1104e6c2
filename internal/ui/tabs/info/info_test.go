package info

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/app"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/config"
)

func TestNew(t *testing.T) {
	m := New(app.NewState(), &config.Config{})
	if m == nil {
		t.Fatal("New returned nil")
	}
	if m.Init() != nil {
		t.Error("Init should return nil")
	}
}

func TestModel_View(t *testing.T) {
	state := app.NewState()
	cfg := &config.Config{
		APIBaseURL:      "http://localhost:8089",
		APIToken:        "secret",
		RefreshInterval: 30 * time.Second,
		TopEarnersLimit: 50,
	}
	m := New(state, cfg)
	m.SetSize(100, 80)

	view := m.View()
	for _, want := range []string{"http://localhost:8089", "configured", "30s", "disabled", "reachable"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
	if strings.Contains(view, "secret") {
		t.Error("View must not show the API token")
	}
}

func TestModel_ViewWithoutConfig(t *testing.T) {
	m := New(app.NewState(), nil)
	m.SetSize(100, 80)
	if !strings.Contains(m.View(), "Configuration not loaded") {
		t.Error("View should note the missing configuration")
	}
}

func TestModel_ConfigReloaded(t *testing.T) {
	m := New(app.NewState(), &config.Config{APIBaseURL: "http://old"})
	m.SetSize(100, 80)

	m.Update(app.ConfigReloadedMsg{Config: &config.Config{APIBaseURL: "http://new"}})
	if !strings.Contains(m.View(), "http://new") {
		t.Error("View should show the reloaded configuration")
	}

	m.Update(app.ConfigReloadedMsg{})
	if m.config == nil {
		t.Error("a nil reload should keep the current configuration")
	}
}

func TestModel_Errors(t *testing.T) {
	state := app.NewState()
	state.SetHealthy(false)
	state.SetError(app.ResourceTraffic, errors.New("gateway timeout"))

	m := New(state, &config.Config{})
	m.SetSize(100, 80)
	view := m.View()

	if !strings.Contains(view, "unreachable") {
		t.Error("View should show the backend as unreachable")
	}
	if !strings.Contains(view, "gateway timeout") {
		t.Error("View should list the traffic error")
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState(), &config.Config{})
	if len(m.FullHelp()) != 1 {
		t.Error("FullHelp should have one group")
	}
}
