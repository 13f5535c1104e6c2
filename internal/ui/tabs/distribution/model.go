// Package distribution provides the tab showing how users spread across
// SpiceGold brackets.
package distribution

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/app"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/components"
)

// keyMap defines the key bindings specific to the distribution tab.
type keyMap struct {
	Daily          key.Binding
	Weekly         key.Binding
	Monthly        key.Binding
	Overall        key.Binding
	NextPeriod     key.Binding
	Export         key.Binding
	ExportDetailed key.Binding
	Up             key.Binding
	Down           key.Binding
}

// defaultKeyMap returns the default key bindings for the distribution tab.
func defaultKeyMap() keyMap {
	return keyMap{
		Daily: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "daily"),
		),
		Weekly: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "weekly"),
		),
		Monthly: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "monthly"),
		),
		Overall: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "overall"),
		),
		NextPeriod: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "next period"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export csv"),
		),
		ExportDetailed: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "export with labels"),
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

// Model represents the distribution tab state.
type Model struct {
	state    *app.State
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int
}

// New creates a new distribution model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		spinner:  components.NewSpinner("distribution"),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the distribution tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the distribution tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case app.TabActivatedMsg:
		return m, m.spinner.Tick()

	case app.DataUpdatedMsg:
		if msg.Resource == app.ResourceRewards {
			m.viewport.GotoTop()
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Daily):
		return m, m.selectPeriod(models.PeriodDaily)
	case key.Matches(msg, m.keys.Weekly):
		return m, m.selectPeriod(models.PeriodWeekly)
	case key.Matches(msg, m.keys.Monthly):
		return m, m.selectPeriod(models.PeriodMonthly)
	case key.Matches(msg, m.keys.Overall):
		return m, m.selectPeriod(models.PeriodOverall)
	case key.Matches(msg, m.keys.NextPeriod):
		return m, m.selectPeriod(m.state.GetPeriod().Next())
	case key.Matches(msg, m.keys.Export):
		return m, exportCmd(false)
	case key.Matches(msg, m.keys.ExportDetailed):
		return m, exportCmd(true)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// selectPeriod asks the root model to switch period. Selecting the current
// period does nothing.
func (m *Model) selectPeriod(p models.Period) tea.Cmd {
	if p == m.state.GetPeriod() {
		return nil
	}
	return func() tea.Msg {
		return app.SetPeriodMsg{Period: p}
	}
}

func exportCmd(detailed bool) tea.Cmd {
	return func() tea.Msg {
		return app.ExportMsg{Kind: app.ExportRanges, Detailed: detailed}
	}
}

// SetSize sets the available size for the distribution tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Daily,
		m.keys.Weekly,
		m.keys.Monthly,
		m.keys.Overall,
		m.keys.Export,
		m.keys.ExportDetailed,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Daily, m.keys.Weekly, m.keys.Monthly, m.keys.Overall, m.keys.NextPeriod},
		{m.keys.Export, m.keys.ExportDetailed},
		{m.keys.Up, m.keys.Down},
	}
}
