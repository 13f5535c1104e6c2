package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/styles"
)

// LoadingSpinner is the spinner a tab shows while its query is in flight.
// The label names what is being fetched, e.g. "Loading weekly distribution...".
type LoadingSpinner struct {
	spinner spinner.Model
	label   string
	style   lipgloss.Style
}

// LoadingLabel returns the label shown while subject is fetched.
func LoadingLabel(subject string) string {
	return "Loading " + subject + "..."
}

// NewSpinner creates a spinner for the given subject.
func NewSpinner(subject string) LoadingSpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return LoadingSpinner{
		spinner: s,
		label:   LoadingLabel(subject),
		style:   lipgloss.NewStyle().Foreground(styles.TextSecondary),
	}
}

// Init starts the tick chain.
func (l LoadingSpinner) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner on its own tick messages.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// View renders the spinner frame only.
func (l LoadingSpinner) View() string {
	return l.spinner.View()
}

// ViewWithLabel renders the frame followed by the label.
func (l LoadingSpinner) ViewWithLabel() string {
	return l.spinner.View() + " " + l.style.Render(l.label)
}

// Refreshing renders the inline notice shown above data that is being
// re-fetched.
func (l LoadingSpinner) Refreshing() string {
	return l.spinner.View() + " refreshing"
}

// SetSubject points the label at a new subject, such as the selected period
// or date range.
func (l *LoadingSpinner) SetSubject(subject string) {
	l.label = LoadingLabel(subject)
}

// Label returns the current label.
func (l LoadingSpinner) Label() string {
	return l.label
}

// Tick restarts the tick chain, e.g. when a tab becomes visible again.
func (l LoadingSpinner) Tick() tea.Cmd {
	return l.spinner.Tick
}

// RenderSpinnerCentered renders a labeled spinner centered in the given area.
func RenderSpinnerCentered(s LoadingSpinner, width, height int) string {
	return styles.CenterBoth(s.ViewWithLabel(), width, height)
}
