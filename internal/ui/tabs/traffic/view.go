package traffic

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/app"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	trafficsvc "github.com/j-veylop/spicegold-dashboard-tui/internal/services/traffic"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/styles"
)

const title = "Page Traffic"

// View renders the traffic tab.
func (m *Model) View() string {
	report := m.state.GetTraffic()
	err := m.state.GetError(app.ResourceTraffic)

	switch {
	case report == nil && err != nil:
		return m.frame(components.RenderFetchError(title, err))
	case report == nil:
		m.spinner.SetSubject(fmt.Sprintf("page traffic (%s)", strings.ToLower(m.state.GetTrafficRange().String())))
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	case report.IsEmpty():
		return m.frame(lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(report),
			components.RenderEmpty("No visits recorded",
				fmt.Sprintf("No page traffic for %s.", describeRange(report.Range)),
				"Press t to try another time range."),
		))
	}

	var sections []string
	sections = append(sections, m.renderHeader(report))
	if err != nil {
		sections = append(sections, components.RenderStaleBanner(err), "")
	}
	sections = append(sections,
		m.renderSummary(report),
		m.renderPageTable(report),
	)
	if len(report.Daily) > 1 {
		sections = append(sections, m.renderTrend(report))
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

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func describeRange(r models.DateRange) string {
	if r.IsZero() {
		return "all time"
	}
	if !r.HasDates() {
		return "the " + r.String() + " range"
	}
	if r.From == r.To {
		return r.From
	}
	return r.From + " to " + r.To
}

func (m *Model) renderHeader(report *models.TrafficReport) string {
	heading := styles.TitleStyle.Render(title)
	selector := styles.SelectorStyle.Render(fmt.Sprintf("[t] %s", m.state.GetTrafficRange()))
	header := lipgloss.JoinHorizontal(lipgloss.Center, heading, "  ", selector)

	sub := fmt.Sprintf("%s  •  updated %s", describeRange(report.Range), components.FormatAge(report.FetchedAt))
	if m.state.IsLoading(app.ResourceTraffic) {
		sub += "  •  " + m.spinner.Refreshing()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, styles.HelpStyle.Render(sub), "")
}

func (m *Model) renderSummary(report *models.TrafficReport) string {
	var totals models.PageStat
	for _, p := range report.Pages {
		totals.TotalUsers += p.TotalUsers
		totals.OldUsers += p.OldUsers
		totals.NewUsers += p.NewUsers
		totals.FirstTimeUsers += p.FirstTimeUsers
		totals.Created += p.Created
		totals.VisitorConversions += p.VisitorConversions
	}
	mix := trafficsvc.Mix(totals)

	cell := func(label, value string) string {
		return lipgloss.JoinVertical(lipgloss.Left,
			styles.HelpStyle.Render(label),
			lipgloss.NewStyle().Bold(true).Foreground(styles.TextPrimary).Render(value),
		)
	}
	gap := "    "
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		cell("Visitors", components.FormatCount(report.GrandTotal)), gap,
		cell("Pages", fmt.Sprintf("%d", len(report.Pages))), gap,
		cell("New", styles.GetNewUserStyle(trafficsvc.PercentNew(totals)).Render(
			components.FormatPercent(trafficsvc.PercentNew(totals)))), gap,
		cell("Accounts created", components.FormatCount(totals.Created)), gap,
		cell("Conversions", components.FormatCount(totals.VisitorConversions)),
	)

	mixLine := styles.HelpStyle.Render(fmt.Sprintf("Returning %s  •  new %s  •  first-time %s",
		components.FormatPercent(mix.Old), components.FormatPercent(mix.New), components.FormatPercent(mix.FirstTime)))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, styles.CardTitleStyle.Render("Summary"), row, "", mixLine),
	)
}

// sortedPages returns the pages in the selected order without touching the
// report, which is shared.
func (m *Model) sortedPages(report *models.TrafficReport) []models.PageStat {
	pages := slices.Clone(report.Pages)
	switch m.order {
	case sortByTotal:
		slices.SortStableFunc(pages, func(a, b models.PageStat) int {
			return cmp.Compare(b.TotalUsers, a.TotalUsers)
		})
	case sortByNew:
		slices.SortStableFunc(pages, func(a, b models.PageStat) int {
			return cmp.Compare(trafficsvc.PercentNew(b), trafficsvc.PercentNew(a))
		})
	case sortByPage:
		slices.SortStableFunc(pages, func(a, b models.PageStat) int {
			return cmp.Compare(a.Page, b.Page)
		})
	}
	return pages
}

func (m *Model) renderPageTable(report *models.TrafficReport) string {
	const (
		pageCol = 24
		numCol  = 10
	)

	header := styles.TableHeaderStyle.Render(fmt.Sprintf("%-*s %*s %*s %*s %*s %*s %*s",
		pageCol, "Page",
		numCol, "Visitors",
		numCol, "Returning",
		numCol, "New",
		numCol, "% New",
		numCol, "Share",
		numCol, "Created",
	))

	rows := []string{
		styles.CardTitleStyle.Render(fmt.Sprintf("Pages (sorted by %s)", m.order)),
		header,
	}
	for _, p := range m.sortedPages(report) {
		pctNew := trafficsvc.PercentNew(p)
		newCell := styles.GetNewUserStyle(pctNew).Render(fmt.Sprintf("%*s", numCol, components.FormatPercent(pctNew)))
		rows = append(rows, fmt.Sprintf("%-*s %*s %*s %*s %s %*s %*s",
			pageCol, components.Truncate(components.PageTitle(p.Page), pageCol),
			numCol, components.FormatCount(p.TotalUsers),
			numCol, components.FormatCount(p.OldUsers),
			numCol, components.FormatCount(p.NewUsers),
			newCell,
			numCol, components.FormatPercent(trafficsvc.Share(p, report.GrandTotal)),
			numCol, components.FormatCount(p.Created),
		))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderTrend(report *models.TrafficReport) string {
	total := make([]float64, len(report.Daily))
	fresh := make([]float64, len(report.Daily))
	for i, d := range report.Daily {
		for _, p := range d.Pages {
			total[i] += float64(p.TotalUsers)
			fresh[i] += float64(p.NewUsers)
		}
	}

	chartWidth := max(m.cardWidth()-12, 30)
	caption := fmt.Sprintf("Visitors per day, %s to %s", report.Daily[0].Date, report.Daily[len(report.Daily)-1].Date)
	chart := components.RenderDualLineChart(total, fresh, chartWidth, 8, caption)

	rows := []string{styles.CardTitleStyle.Render("Daily trend"), ""}
	for line := range strings.SplitSeq(chart, "\n") {
		rows = append(rows, "  "+line)
	}
	rows = append(rows, "", "  "+components.RenderLegend([]components.LegendItem{
		{Label: "All visitors", Color: components.ChartTotalColor},
		{Label: "New visitors", Color: components.ChartNewColor},
	}))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
