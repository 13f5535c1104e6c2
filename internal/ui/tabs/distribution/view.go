package distribution

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/app"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/brackets"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/styles"
)

// View renders the distribution tab.
func (m *Model) View() string {
	snap := m.state.CurrentSnapshot()
	err := m.state.GetError(app.ResourceRewards)

	switch {
	case snap == nil && err != nil:
		return m.frame(components.RenderFetchError(m.title(), err))
	case snap == nil:
		m.spinner.SetSubject(m.state.GetPeriod().String() + " distribution")
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	case snap.IsEmpty() || len(snap.VisibleBuckets()) == 0:
		return m.frame(lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(snap),
			components.RenderEmpty("No users yet",
				fmt.Sprintf("Nobody has earned SpiceGold in the %s period.", strings.ToLower(snap.Period.Title())),
				"The view refreshes automatically."),
		))
	}

	var sections []string
	sections = append(sections, m.renderHeader(snap))
	if err != nil {
		sections = append(sections, components.RenderStaleBanner(err), "")
	}
	sections = append(sections,
		m.renderSummary(snap),
		m.renderBars(snap),
		m.renderBracketTable(snap),
	)
	if len(snap.Daily) > 1 {
		sections = append(sections, m.renderTrend(snap))
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))
	return m.frame(m.viewport.View())
}

func (m *Model) frame(content string) string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) title() string {
	return "SpiceGold Distribution"
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderHeader(snap *models.Snapshot) string {
	title := styles.TitleStyle.Render(m.title())

	var periods []string
	for _, p := range models.AllPeriods() {
		label := fmt.Sprintf("[%s] %s", strings.ToLower(p.Title()[:1]), p.Title())
		if p == snap.Period {
			periods = append(periods, styles.SelectorStyle.Render(label))
		} else {
			periods = append(periods, styles.HelpStyle.Padding(1, 1).Render(label))
		}
	}
	selector := lipgloss.JoinHorizontal(lipgloss.Center, periods...)

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", selector)
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("Updated %s  •  %s payload",
		components.FormatAge(snap.FetchedAt), snap.Shape))

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderSummary(snap *models.Snapshot) string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Summary"))

	rows = append(rows,
		summaryRow("Total users", components.FormatCount(snap.TotalUsers)),
		summaryRow("Brackets", fmt.Sprintf("%d", len(snap.VisibleBuckets()))),
	)
	if agg := snap.Aggregate; agg != nil {
		rows = append(rows,
			summaryRow("Unique users", components.FormatCount(agg.UniqueUsers)),
			summaryRow("Total points", components.FormatPoints(float64(agg.TotalPoints))),
			summaryRow("Average points", fmt.Sprintf("%.1f", agg.AveragePoints)),
		)
	}
	rows = append(rows, summaryRow("Points held",
		styles.EstimateStyle.Render("~"+components.FormatPoints(snap.EstimatedPoints())+" (estimated from bracket midpoints)")))

	if snap.Malformed > 0 {
		rows = append(rows, "", styles.WarningTextStyle.Render(
			fmt.Sprintf("%d range(s) had an unreadable upper bound and are shown as open-ended", snap.Malformed)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func summaryRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(16).
		Foreground(styles.TextMuted)
	return labelStyle.Render(label+":") + " " + value
}

func (m *Model) renderBars(snap *models.Snapshot) string {
	rows := []string{
		styles.CardTitleStyle.Render("Users per bracket"),
		components.RenderBracketBars(snap, m.cardWidth()-6),
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderBracketTable(snap *models.Snapshot) string {
	const (
		rangeCol = 16
		usersCol = 10
		labelCol = 24
	)

	header := styles.TableHeaderStyle.Render(
		fmt.Sprintf("%-*s %*s  %-*s %s", rangeCol, "Range", usersCol, "Users", labelCol, "Bracket", "Insight"))

	rows := []string{styles.CardTitleStyle.Render("Brackets"), header}
	for _, b := range snap.VisibleBuckets() {
		label := brackets.Classify(b, snap.Period)
		name := styles.BracketStyle(label.Color).Bold(true).Render(fmt.Sprintf("%-*s", labelCol, label.Label))
		rows = append(rows, fmt.Sprintf("%-*s %*s  %s %s",
			rangeCol, brackets.RangeText(b),
			usersCol, components.FormatCount(b.Users),
			name,
			styles.HelpDescStyle.Render(label.Insight),
		))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderTrend(snap *models.Snapshot) string {
	totals := snap.DailyTotals()
	chartWidth := max(m.cardWidth()-12, 30)

	caption := fmt.Sprintf("Users per day, %s to %s", snap.Daily[0].Date, snap.Daily[len(snap.Daily)-1].Date)
	chart := components.RenderLineChart(totals, chartWidth, 8, caption)

	rows := []string{styles.CardTitleStyle.Render("Daily trend")}
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
