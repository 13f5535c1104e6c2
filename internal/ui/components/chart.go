// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/brackets"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/styles"
)

// ChartColors defines colors for chart elements.
var (
	ChartTotalColor   = lipgloss.Color("#f59e0b")
	ChartNewColor     = lipgloss.Color("#22c55e")
	ChartPrimaryColor = lipgloss.Color("#7D56F4")
)

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	graph := asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)

	return graph
}

// RenderDualLineChart plots total users against new users.
func RenderDualLineChart(total, fresh []float64, width, height int, caption string) string {
	if len(total) == 0 && len(fresh) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	// Normalize lengths - pad shorter array with zeros
	maxLen := max(len(total), len(fresh))

	totalData := make([]float64, maxLen)
	freshData := make([]float64, maxLen)
	copy(totalData, total)
	copy(freshData, fresh)

	graph := asciigraph.PlotMany([][]float64{totalData, freshData},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(
			asciigraph.Yellow,
			asciigraph.Green,
		),
	)

	return graph
}

// RenderBarChart creates a simple horizontal bar chart.
func RenderBarChart(values []float64, labels []string, width int) string {
	if len(values) == 0 {
		return ""
	}

	maxVal := maxOf(values)

	// Find max label length
	maxLabelLen := 0
	for _, l := range labels {
		maxLabelLen = max(maxLabelLen, lipgloss.Width(l))
	}

	barWidth := max(width-maxLabelLen-10, 10) // Leave room for label and value

	var lines []string
	for i, v := range values {
		label := ""
		if i < len(labels) {
			label = labels[i]
		}

		paddedLabel := strings.Repeat(" ", maxLabelLen-lipgloss.Width(label)) + label
		bar := strings.Repeat("█", barLength(v, maxVal, barWidth))
		lines = append(lines, paddedLabel+" │"+bar+fmt.Sprintf(" %.0f", v))
	}

	return strings.Join(lines, "\n")
}

// RenderBracketBars draws one bar per bucket in the bucket's bracket color,
// followed by the user count and share.
func RenderBracketBars(snap *models.Snapshot, width int) string {
	buckets := snap.VisibleBuckets()
	if len(buckets) == 0 {
		return ""
	}

	labels := make([]string, len(buckets))
	values := make([]float64, len(buckets))
	maxLabelLen := 0
	for i, b := range buckets {
		labels[i] = brackets.RangeText(b)
		values[i] = float64(b.Users)
		maxLabelLen = max(maxLabelLen, len(labels[i]))
	}

	maxVal := maxOf(values)
	barWidth := max(width-maxLabelLen-22, 10)

	lines := make([]string, 0, len(buckets))
	for i, b := range buckets {
		style := styles.BracketStyle(brackets.ColorFor(b.From, b.To))
		bar := style.Render(strings.Repeat("█", barLength(values[i], maxVal, barWidth)))
		value := fmt.Sprintf(" %s (%.1f%%)", FormatCount(b.Users), snap.Share(b))
		lines = append(lines, fmt.Sprintf("%*s │", maxLabelLen, labels[i])+bar+value)
	}

	return strings.Join(lines, "\n")
}

func maxOf(values []float64) float64 {
	maxVal := 0.0
	for _, v := range values {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}
	return maxVal
}

func barLength(v, maxVal float64, width int) int {
	return max(int((v/maxVal)*float64(width)), 0)
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := maxOf(values)

	// Sample values to fit width
	var result strings.Builder
	step := max(float64(len(values))/float64(width), 1)

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int((val / maxVal) * float64(len(sparkChars)-1))
		normalized = min(max(normalized, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
