package leaderboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/app"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/styles"
)

const title = "Top Earners"

// View renders the leaderboard tab.
func (m *Model) View() string {
	earners := m.state.GetEarners()
	err := m.state.GetError(app.ResourceLeaderboard)

	switch {
	case earners == nil && err != nil:
		return m.frame(components.RenderFetchError(title, err))
	case earners == nil:
		m.spinner.SetSubject(fmt.Sprintf("top %d earners", m.state.GetTopN()))
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	case len(earners) == 0:
		return m.frame(lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(0),
			components.RenderEmpty("Nobody on the board yet",
				"Earners appear once someone collects SpiceGold."),
		))
	}

	sections := []string{m.renderHeader(min(len(earners), m.state.GetTopN()))}
	if err != nil {
		sections = append(sections, components.RenderStaleBanner(err), "")
	}
	sections = append(sections, m.table.View())

	return m.frame(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) frame(content string) string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderHeader(shown int) string {
	heading := styles.TitleStyle.Render(title)
	selector := styles.SelectorStyle.Render(fmt.Sprintf("[n] Top %d", m.state.GetTopN()))
	header := lipgloss.JoinHorizontal(lipgloss.Center, heading, "  ", selector)

	sub := fmt.Sprintf("%d earners shown", shown)
	if m.state.IsLoading(app.ResourceLeaderboard) {
		sub += "  •  " + m.spinner.Refreshing()
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, styles.HelpStyle.Render(sub), "")
}
