package info

import (
	"fmt"
	"runtime"
	"slices"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections,
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderStatusCard(),
		m.renderAboutCard(),
	)

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 90)
}

// renderConfigCard renders the configuration card.
func (m *Model) renderConfigCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"), "")

	if cfg := m.config; cfg != nil {
		token := "not set"
		if cfg.APIToken != "" {
			token = "configured"
		}
		schedule := cfg.ExportSchedule
		if schedule == "" {
			schedule = "disabled"
		}
		envFile := cfg.EnvFile
		if envFile == "" {
			envFile = "none"
		}

		rows = append(rows,
			m.renderConfigRow("API", cfg.APIBaseURL),
			m.renderConfigRow("API Token", token),
			m.renderConfigRow("Refresh", cfg.RefreshInterval.String()),
			m.renderConfigRow("Request Timeout", cfg.RequestTimeout.String()),
			m.renderConfigRow("Database", cfg.DatabasePath),
			m.renderConfigRow("History Kept", cfg.HistoryRetention.String()),
			m.renderConfigRow("Export Dir", cfg.ExportDir),
			m.renderConfigRow("Export Schedule", schedule),
			m.renderConfigRow("Top Earners Max", fmt.Sprintf("%d", cfg.TopEarnersLimit)),
			m.renderConfigRow("Log File", cfg.LogPath),
			m.renderConfigRow("Log Level", cfg.LogLevel),
			m.renderConfigRow("Env File", envFile),
		)
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	rows = append(rows, "", styles.HelpStyle.Render("Edits to the .env file are applied automatically"))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderStatusCard renders backend health and the last error of each view.
func (m *Model) renderStatusCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Backend"), "")

	health := "reachable"
	if !m.state.IsHealthy() {
		health = "unreachable"
	}
	rows = append(rows,
		m.renderConfigRow("Status", styles.GetHealthStyle(m.state.IsHealthy()).Render(health)),
		m.renderConfigRow("Last Update", components.FormatAge(m.state.GetLastUpdated())),
	)

	errs := m.state.Errors()
	resources := make([]string, 0, len(errs))
	for r := range errs {
		resources = append(resources, r)
	}
	slices.Sort(resources)
	for _, r := range resources {
		rows = append(rows, m.renderConfigRow("Error ("+r+")", styles.ErrorTextStyle.Render(errs[r].Error())))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About SpiceGold Dashboard TUI"), "")

	rows = append(rows,
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
	)

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
