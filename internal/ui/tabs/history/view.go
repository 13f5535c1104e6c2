package history

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.loading && m.historyData == nil {
		return m.renderLoading()
	}
	if m.errorMsg != "" {
		return m.renderError()
	}
	if !m.historyData.HasData() {
		return m.renderEmpty()
	}

	sections := []string{
		m.renderHeader(),
		m.renderTotalsChart(),
	}
	if len(m.historyData.Pages) > 0 {
		sections = append(sections, m.renderPageTrends())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderLoading() string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(styles.HelpStyle.Render("Loading history data..."))
}

func (m *Model) renderError() string {
	content := fmt.Sprintf("%s %s",
		styles.ErrorTextStyle.Render("Error:"),
		m.errorMsg,
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderSelectors(),
		"",
		styles.HelpStyle.Render("No historical data available yet."),
		styles.HelpStyle.Render("Data will appear as snapshots are recorded."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderSelectors() string {
	title := styles.TitleStyle.Render("History")
	period := styles.SelectorStyle.Render(fmt.Sprintf("[p] %s", m.period.Title()))
	rng := styles.SelectorStyle.Render(fmt.Sprintf("[t] %s", m.timeRange.String()))
	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", period, " ", rng)
}

func (m *Model) renderHeader() string {
	header := m.renderSelectors()

	var subtitle string
	if !m.historyData.FirstDataPoint.IsZero() {
		dataRange := fmt.Sprintf("Data: %s → %s (%d snapshots)",
			m.historyData.FirstDataPoint.Format("Jan 2, 2006 15:04"),
			m.historyData.LastDataPoint.Format("Jan 2, 2006 15:04"),
			len(m.historyData.Points),
		)
		subtitle = styles.HelpStyle.Render(dataRange)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) renderTotalsChart() string {
	cardWidth := max(m.width-6, 40)

	var rows []string

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📈")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Users in brackets")), "")

	chartWidth := max(cardWidth-12, 30)
	chart := components.RenderLineChart(m.historyData.Totals(), chartWidth, 8,
		fmt.Sprintf("%s totals, %s", m.period.Title(), m.timeRange.String()))
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}

	points := m.historyData.Points
	latest := points[len(points)-1].TotalUsers
	growth := m.historyData.Growth()
	growthStyle := styles.SuccessTextStyle
	if growth < 0 {
		growthStyle = styles.ErrorTextStyle
	}
	rows = append(rows, "",
		fmt.Sprintf("  Latest: %s  •  Change: %s",
			lipgloss.NewStyle().Bold(true).Foreground(styles.Primary).Render(humanize.Comma(latest)),
			growthStyle.Render(fmt.Sprintf("%+d", growth)),
		),
		"",
	)

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderPageTrends() string {
	cardWidth := max(m.width-6, 40)
	const pageCol = 24
	sparkWidth := max(cardWidth-pageCol-30, 10)

	var rows []string
	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("📄")
	rows = append(rows, fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Page visitors")), "")

	pages := make([]string, 0, len(m.historyData.Pages))
	for page := range m.historyData.Pages {
		pages = append(pages, page)
	}
	slices.Sort(pages)

	for _, page := range pages {
		trend := m.historyData.Pages[page]
		if len(trend) == 0 {
			continue
		}
		values := make([]float64, len(trend))
		for i, p := range trend {
			values[i] = float64(p.TotalUsers)
		}
		last := trend[len(trend)-1]
		rows = append(rows, fmt.Sprintf("  %-*s %s  %s total, %s new",
			pageCol, components.Truncate(components.PageTitle(page), pageCol),
			lipgloss.NewStyle().Foreground(components.ChartTotalColor).Render(components.RenderSparkline(values, sparkWidth)),
			humanize.Comma(last.TotalUsers),
			humanize.Comma(last.NewUsers),
		))
	}
	rows = append(rows, "")

	return styles.CardStyle.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
