package traffic

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/app"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/api"
	trafficsvc "github.com/j-veylop/spicegold-dashboard-tui/internal/services/traffic"
)

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func sampleReport() *models.TrafficReport {
	records := []models.PageVisit{
		{Page: "landing_page", Date: "2026-10-01", TotalUsers: 10, OldUsers: 6, NewUsers: 4},
		{Page: "rewards", Date: "2026-10-01", TotalUsers: 5, OldUsers: 1, NewUsers: 4},
		{Page: "landing_page", Date: "2026-10-02", TotalUsers: 20, OldUsers: 15, NewUsers: 5, Created: 2},
	}
	rng := models.DateRange{From: "2026-10-01", To: "2026-10-02"}
	return trafficsvc.BuildReport(records, rng, time.Now())
}

func newModel(state *app.State) *Model {
	m := New(state)
	m.SetSize(140, 80)
	return m
}

func TestModel_ToggleRange(t *testing.T) {
	state := app.NewState()
	m := newModel(state)

	_, cmd := m.Update(keyPress('t'))
	require.NotNil(t, cmd)
	msg, ok := cmd().(app.SetTrafficRangeMsg)
	require.True(t, ok)
	assert.Equal(t, models.TimeRange30Days, msg.Range)
}

func TestModel_Export(t *testing.T) {
	m := newModel(app.NewState())

	_, cmd := m.Update(keyPress('E'))
	require.NotNil(t, cmd)
	assert.Equal(t, app.ExportMsg{Kind: app.ExportTraffic, Detailed: true}, cmd())
}

func TestModel_SortCycles(t *testing.T) {
	state := app.NewState()
	state.SetTraffic(sampleReport())
	m := newModel(state)

	pages := m.sortedPages(state.GetTraffic())
	assert.Equal(t, "landing_page", pages[0].Page, "total order puts the busiest page first")

	m.Update(keyPress('s'))
	pages = m.sortedPages(state.GetTraffic())
	assert.Equal(t, "rewards", pages[0].Page, "percent-new order puts the newest audience first")

	m.Update(keyPress('s'))
	m.Update(keyPress('s'))
	assert.Equal(t, sortByTotal, m.order)

	// Sorting never reorders the shared report.
	assert.Equal(t, "landing_page", state.GetTraffic().Pages[0].Page)
}

func TestView_States(t *testing.T) {
	t.Run("Loading", func(t *testing.T) {
		state := app.NewState()
		m := newModel(state)
		assert.Contains(t, m.View(), "Loading page traffic (7 days)...")

		state.SetTrafficRange(models.TimeRange24Hours)
		assert.Contains(t, m.View(), "Loading page traffic (today)...")
	})

	t.Run("TransportError", func(t *testing.T) {
		state := app.NewState()
		state.SetError(app.ResourceTraffic, &api.TransportError{Path: "/pages", Err: errors.New("timeout")})
		view := newModel(state).View()
		assert.Contains(t, view, "Error")
		assert.Contains(t, view, "Press r to retry")
	})

	t.Run("Empty", func(t *testing.T) {
		state := app.NewState()
		state.SetTraffic(&models.TrafficReport{Range: models.DateRange{From: "2026-10-01", To: "2026-10-01"}})
		view := newModel(state).View()
		assert.Contains(t, view, "No visits recorded")
		assert.Contains(t, view, "2026-10-01")
	})
}

func TestView_WithData(t *testing.T) {
	state := app.NewState()
	state.SetTraffic(sampleReport())
	view := newModel(state).View()

	for _, want := range []string{"Landing Page", "Rewards", "35", "80.0%", "Daily trend", "2026-10-01 to 2026-10-02"} {
		assert.True(t, strings.Contains(view, want), "view missing %q", want)
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState())
	assert.Len(t, m.ShortHelp(), 4)
	assert.Len(t, m.FullHelp(), 3)
}

func TestDescribeRange(t *testing.T) {
	tests := []struct {
		rng  models.DateRange
		want string
	}{
		{models.DateRange{}, "all time"},
		{models.DateRange{From: "2024-03-01", To: "2024-03-01"}, "2024-03-01"},
		{models.DateRange{From: "2024-03-01", To: "2024-03-07"}, "2024-03-01 to 2024-03-07"},
		{models.RelativeRange(models.PeriodWeekly), "the weekly range"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, describeRange(tt.rng))
		})
	}
}
