// Package leaderboard provides the tab listing the top SpiceGold earners.
package leaderboard

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/app"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	lb "github.com/j-veylop/spicegold-dashboard-tui/internal/services/leaderboard"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/styles"
)

var limitSteps = []int{10, 25, 50, 100}

// keyMap defines the key bindings specific to the leaderboard tab.
type keyMap struct {
	CycleLimit key.Binding
	Export     key.Binding
	Up         key.Binding
	Down       key.Binding
}

// defaultKeyMap returns the default key bindings for the leaderboard tab.
func defaultKeyMap() keyMap {
	return keyMap{
		CycleLimit: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "cycle top N"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export csv"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
	}
}

// Model represents the leaderboard tab state.
type Model struct {
	state   *app.State
	spinner components.LoadingSpinner
	keys    keyMap
	table   table.Model
	limits  []int
	width   int
	height  int
}

// New creates a new leaderboard model. maxLimit caps the selectable top-N
// sizes; zero means no cap.
func New(state *app.State, maxLimit int) *Model {
	limits := limitSteps
	if maxLimit > 0 {
		limits = nil
		for _, l := range limitSteps {
			if l <= maxLimit {
				limits = append(limits, l)
			}
		}
		if !slices.Contains(limits, maxLimit) {
			limits = append(limits, maxLimit)
		}
	}

	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		Foreground(styles.Primary).
		BorderStyle(styles.TableHeaderStyle.GetBorderStyle()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true)
	s.Selected = styles.TableSelectedStyle
	t.SetStyles(s)

	return &Model{
		state:   state,
		spinner: components.NewSpinner("leaderboard"),
		keys:    defaultKeyMap(),
		table:   t,
		limits:  limits,
	}
}

// columns sizes the table to width, giving the rest to the name column.
func columns(width int) []table.Column {
	const (
		rankW   = 6
		idW     = 22
		pointsW = 14
		eventsW = 10
	)
	nameW := max(width-rankW-idW-pointsW-eventsW-12, 16)
	return []table.Column{
		{Title: "Rank", Width: rankW},
		{Title: "Name", Width: nameW},
		{Title: "Developer ID", Width: idW},
		{Title: "Points", Width: pointsW},
		{Title: "Events", Width: eventsW},
	}
}

func rows(earners []models.TopEarner) []table.Row {
	out := make([]table.Row, 0, len(earners))
	for _, e := range earners {
		name := lb.DisplayName(e)
		if e.HasBharatPass {
			name += " ★"
		}
		out = append(out, table.Row{
			fmt.Sprintf("#%d", e.Rank),
			name,
			e.DeveloperID,
			components.FormatCount(e.TotalRewardPoints),
			components.FormatCount(e.TotalEventCount),
		})
	}
	return out
}

// Init initializes the leaderboard tab.
func (m *Model) Init() tea.Cmd {
	m.syncRows()
	return m.spinner.Init()
}

// Update handles messages for the leaderboard tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case app.TabActivatedMsg:
		m.syncRows()
		return m, m.spinner.Tick()

	case app.DataUpdatedMsg:
		if msg.Resource == app.ResourceLeaderboard {
			m.syncRows()
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.CycleLimit):
		next := m.nextLimit()
		return m, func() tea.Msg {
			return app.SetTopNMsg{Limit: next}
		}

	case key.Matches(msg, m.keys.Export):
		return m, func() tea.Msg {
			return app.ExportMsg{Kind: app.ExportLeaderboard}
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// nextLimit returns the selectable size after the current one.
func (m *Model) nextLimit() int {
	current := m.state.GetTopN()
	for _, l := range m.limits {
		if l > current {
			return l
		}
	}
	return m.limits[0]
}

func (m *Model) syncRows() {
	m.table.SetRows(rows(lb.TopN(m.state.GetEarners(), m.state.GetTopN())))
}

// SetSize sets the available size for the leaderboard tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetColumns(columns(max(width-6, 40)))
	m.table.SetHeight(max(height-8, 5))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.CycleLimit,
		m.keys.Export,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.CycleLimit, m.keys.Export},
		{m.keys.Up, m.keys.Down},
	}
}
