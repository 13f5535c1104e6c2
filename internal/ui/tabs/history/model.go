// Package history provides the history tab for viewing recorded snapshots.
package history

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/app"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
)

// Source loads recorded history. The service manager implements it.
type Source interface {
	History(p models.Period, tr models.TimeRange) (*models.HistoryStats, error)
}

// keyMap defines the key bindings specific to the history tab.
type keyMap struct {
	ToggleRange  key.Binding
	TogglePeriod key.Binding
	Refresh      key.Binding
	Up           key.Binding
	Down         key.Binding
}

// defaultKeyMap returns the default key bindings for the history tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		TogglePeriod: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "toggle period"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// historyLoadedMsg is sent when history data is loaded.
type historyLoadedMsg struct {
	stats *models.HistoryStats
}

// historyErrorMsg is sent when there's an error loading history.
type historyErrorMsg struct {
	err string
}

// Model represents the history tab state.
type Model struct {
	state    *app.State
	source   Source
	width    int
	height   int
	keys     keyMap
	viewport viewport.Model

	// Current view state
	period      models.Period
	timeRange   models.TimeRange
	historyData *models.HistoryStats
	loading     bool
	lastRefresh time.Time
	errorMsg    string
}

// New creates a new history model. The period starts at the one selected in
// the distribution tab.
func New(state *app.State, source Source) *Model {
	return &Model{
		state:     state,
		source:    source,
		keys:      defaultKeyMap(),
		viewport:  viewport.New(0, 0),
		period:    state.GetPeriod(),
		timeRange: models.TimeRange30Days,
	}
}

// Init initializes the history tab.
func (m *Model) Init() tea.Cmd {
	m.loading = true
	return m.loadHistoryCmd()
}

// loadHistoryCmd creates a command to load history data.
func (m *Model) loadHistoryCmd() tea.Cmd {
	source, period, tr := m.source, m.period, m.timeRange
	return func() tea.Msg {
		if source == nil {
			return historyErrorMsg{err: "History store not available"}
		}

		stats, err := source.History(period, tr)
		if err != nil {
			return historyErrorMsg{err: err.Error()}
		}
		return historyLoadedMsg{stats: stats}
	}
}

func (m *Model) reload() tea.Cmd {
	m.loading = true
	return m.loadHistoryCmd()
}

// Update handles messages for the history tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case historyLoadedMsg:
		// Drop results of a selection the user already moved away from.
		if msg.stats != nil && (msg.stats.Period != m.period || msg.stats.TimeRange != m.timeRange) {
			return m, nil
		}
		m.historyData = msg.stats
		m.loading = false
		m.lastRefresh = time.Now()
		m.errorMsg = ""

	case historyErrorMsg:
		m.loading = false
		m.errorMsg = msg.err
		cmds = append(cmds, func() tea.Msg {
			return app.AddNotificationMsg{
				Type:     app.NotificationError,
				Message:  fmt.Sprintf("History error: %s", msg.err),
				Duration: app.LongNotificationDuration,
			}
		})

	case app.TabActivatedMsg:
		if msg.Tab == app.TabHistory {
			cmds = append(cmds, m.reload())
		}

	case app.DataUpdatedMsg:
		// A new snapshot was recorded.
		if !m.loading {
			cmds = append(cmds, m.reload())
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		m.timeRange = m.timeRange.Next()
		cmds = append(cmds, m.reload())

	case key.Matches(msg, m.keys.TogglePeriod):
		m.period = m.period.Next()
		cmds = append(cmds, m.reload())

	case key.Matches(msg, m.keys.Refresh):
		cmds = append(cmds, m.reload())

	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// SetSize sets the available size for the history tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.ToggleRange,
		m.keys.TogglePeriod,
		m.keys.Refresh,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.TogglePeriod, m.keys.Refresh},
		{m.keys.Up, m.keys.Down},
	}
}
