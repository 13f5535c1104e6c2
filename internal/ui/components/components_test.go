package components

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/api"
)

func TestNewSpinner(t *testing.T) {
	s := NewSpinner("leaderboard")
	if s.Label() != "Loading leaderboard..." {
		t.Errorf("Label = %q, want %q", s.Label(), "Loading leaderboard...")
	}
}

func TestSpinner_Methods(t *testing.T) {
	s := NewSpinner("distribution")

	s.SetSubject("weekly distribution")
	if s.Label() != "Loading weekly distribution..." {
		t.Errorf("Label = %s, want Loading weekly distribution...", s.Label())
	}

	if s.View() == "" {
		t.Error("View returned empty")
	}
	if !strings.Contains(s.ViewWithLabel(), "Loading weekly distribution...") {
		t.Error("ViewWithLabel should include the label")
	}
	if !strings.HasSuffix(s.Refreshing(), " refreshing") {
		t.Errorf("Refreshing = %q", s.Refreshing())
	}
	if s.Init() == nil {
		t.Error("Init should return command")
	}

	_, cmd := s.Update(spinner.TickMsg{})
	if cmd == nil {
		t.Error("Update should return command for tick")
	}
	if s.Tick() == nil {
		t.Error("Tick should return command")
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	s := NewSpinner("page traffic")
	if view := RenderSpinnerCentered(s, 40, 5); !strings.Contains(view, "Loading page traffic...") {
		t.Error("RenderSpinnerCentered should show the label")
	}
}

func TestRenderLineChart(t *testing.T) {
	if s := RenderLineChart([]float64{1, 2, 3, 4}, 20, 5, "Test"); s == "" {
		t.Error("RenderLineChart returned empty")
	}
	if s := RenderLineChart(nil, 20, 5, "Empty"); !strings.Contains(s, "No data") {
		t.Errorf("RenderLineChart(nil) = %q, want placeholder", s)
	}
}

func TestRenderDualLineChart(t *testing.T) {
	if s := RenderDualLineChart([]float64{1, 2, 3}, []float64{1}, 20, 5, "Users"); s == "" {
		t.Error("RenderDualLineChart returned empty")
	}
}

func TestRenderBarChart(t *testing.T) {
	s := RenderBarChart([]float64{10, 20}, []string{"A", "B"}, 20)
	lines := strings.Split(s, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if strings.Count(lines[1], "█") <= strings.Count(lines[0], "█") {
		t.Error("larger value should draw a longer bar")
	}
	if RenderBarChart(nil, nil, 20) != "" {
		t.Error("RenderBarChart(nil) should be empty")
	}
}

func TestRenderBracketBars(t *testing.T) {
	snap := &models.Snapshot{
		Period: models.PeriodDaily,
		Buckets: []models.RangeBucket{
			{From: 0, To: models.Int64Ptr(50), Users: 3},
			{From: 51, To: models.Int64Ptr(100), Users: 0},
			{From: 62001, Users: 1},
		},
		TotalUsers: 4,
	}

	s := RenderBracketBars(snap, 60)
	if strings.Contains(s, "51 - 100") {
		t.Error("empty bucket should be hidden outside the overall period")
	}
	if !strings.Contains(s, "62001+") {
		t.Error("open-ended bucket missing")
	}
	if !strings.Contains(s, "75.0%") {
		t.Errorf("share missing in %q", s)
	}

	if RenderBracketBars(models.EmptySnapshot(models.PeriodDaily), 60) != "" {
		t.Error("empty snapshot should render nothing")
	}
}

func TestRenderSparkline(t *testing.T) {
	s := RenderSparkline([]float64{0, 1, 2, 3}, 10)
	if []rune(s)[0] != '▁' || []rune(s)[3] != '█' {
		t.Errorf("RenderSparkline = %q", s)
	}
	if RenderSparkline([]float64{1}, 0) != "" {
		t.Error("zero width should render nothing")
	}
}

func TestRenderLegend(t *testing.T) {
	items := []LegendItem{
		{Label: "Total", Color: lipgloss.Color("#ffffff")},
	}
	if s := RenderLegend(items); !strings.Contains(s, "Total") {
		t.Error("RenderLegend missing label")
	}
}

func TestFormatters(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"Count", FormatCount(1234567), "1,234,567"},
		{"SmallPoints", FormatPoints(9500), "9,500"},
		{"LargePoints", FormatPoints(125000), "125.0k"},
		{"Percent", FormatPercent(45), "45.0%"},
		{"Never", FormatAge(time.Time{}), "never"},
		{"PageTitle", PageTitle("landing_page"), "Landing Page"},
		{"EmptyPage", PageTitle(""), "Unknown"},
		{"Truncate", Truncate("abcdefghij", 6), "abc..."},
		{"NoTruncate", Truncate("abc", 6), "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestRenderFetchError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantRetry bool
	}{
		{"transport", &api.TransportError{Path: "/traffic", StatusCode: 502}, true},
		{"application", &api.ApplicationError{Code: 500, Message: "boom"}, false},
		{"plain", errors.New("oops"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderFetchError("Traffic", tt.err)
			if !strings.Contains(out, tt.err.Error()) {
				t.Errorf("output missing error text %q", tt.err.Error())
			}
			if got := strings.Contains(out, "Press r to retry"); got != tt.wantRetry {
				t.Errorf("retry hint shown = %v, want %v", got, tt.wantRetry)
			}
		})
	}
}

func TestRenderStaleBanner(t *testing.T) {
	out := RenderStaleBanner(&api.TransportError{Path: "/x", Err: errors.New("refused")})
	if !strings.Contains(out, "Showing last known data") || !strings.Contains(out, "press r to retry") {
		t.Errorf("unexpected banner %q", out)
	}

	out = RenderStaleBanner(&api.ApplicationError{Code: 400})
	if strings.Contains(out, "retry") {
		t.Errorf("application errors should not suggest retrying: %q", out)
	}
}

func TestRenderEmpty(t *testing.T) {
	out := RenderEmpty("Leaderboard", "Nobody yet", "Check back later")
	for _, want := range []string{"Leaderboard", "Nobody yet", "Check back later"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}
