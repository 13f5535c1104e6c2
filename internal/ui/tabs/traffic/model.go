// Package traffic provides the tab showing per-page visitor traffic.
package traffic

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/app"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/components"
)

// sortOrder selects how pages are ordered in the table.
type sortOrder int

const (
	sortByTotal sortOrder = iota
	sortByNew
	sortByPage
)

func (s sortOrder) String() string {
	switch s {
	case sortByNew:
		return "% new"
	case sortByPage:
		return "page"
	default:
		return "total"
	}
}

func (s sortOrder) next() sortOrder {
	return (s + 1) % 3
}

// keyMap defines the key bindings specific to the traffic tab.
type keyMap struct {
	ToggleRange    key.Binding
	Sort           key.Binding
	Export         key.Binding
	ExportDetailed key.Binding
	Up             key.Binding
	Down           key.Binding
}

// defaultKeyMap returns the default key bindings for the traffic tab.
func defaultKeyMap() keyMap {
	return keyMap{
		ToggleRange: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle time range"),
		),
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sort pages"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export csv"),
		),
		ExportDetailed: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "export per date"),
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

// Model represents the traffic tab state.
type Model struct {
	state    *app.State
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	order    sortOrder
	width    int
	height   int
}

// New creates a new traffic model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		spinner:  components.NewSpinner("page traffic"),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the traffic tab.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages for the traffic tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case app.TabActivatedMsg:
		return m, m.spinner.Tick()

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (app.Tab, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleRange):
		next := m.state.GetTrafficRange().Next()
		return m, func() tea.Msg {
			return app.SetTrafficRangeMsg{Range: next}
		}

	case key.Matches(msg, m.keys.Sort):
		m.order = m.order.next()
		return m, nil

	case key.Matches(msg, m.keys.Export):
		return m, exportCmd(false)

	case key.Matches(msg, m.keys.ExportDetailed):
		return m, exportCmd(true)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func exportCmd(detailed bool) tea.Cmd {
	return func() tea.Msg {
		return app.ExportMsg{Kind: app.ExportTraffic, Detailed: detailed}
	}
}

// SetSize sets the available size for the traffic tab.
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
		m.keys.Sort,
		m.keys.Export,
		m.keys.ExportDetailed,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleRange, m.keys.Sort},
		{m.keys.Export, m.keys.ExportDetailed},
		{m.keys.Up, m.keys.Down},
	}
}
