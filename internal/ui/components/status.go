package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/api"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/styles"
)

// RenderFetchError renders a failed fetch inline. Transport failures get a
// retry hint; backend errors show the backend message only.
func RenderFetchError(title string, err error) string {
	rows := []string{
		styles.TitleStyle.Render(title),
		styles.ErrorTextStyle.Render("Error: ") + err.Error(),
	}
	if api.IsRetryable(err) {
		rows = append(rows, "", styles.HelpStyle.Render("Press r to retry"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// RenderStaleBanner renders a one-line notice shown above data that could
// not be refreshed.
func RenderStaleBanner(err error) string {
	msg := "Showing last known data: " + err.Error()
	if api.IsRetryable(err) {
		msg += " (press r to retry)"
	}
	return styles.WarningTextStyle.Render(msg)
}

// RenderEmpty renders an empty state with a title and explanation lines.
func RenderEmpty(title string, lines ...string) string {
	rows := []string{styles.TitleStyle.Render(title), ""}
	for _, l := range lines {
		rows = append(rows, styles.HelpStyle.Render(l))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
