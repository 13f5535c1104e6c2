package models

import (
	"testing"
	"time"
)

func TestTimeRange_String(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want string
	}{
		{"24Hours", TimeRange24Hours, "Today"},
		{"7Days", TimeRange7Days, "7 Days"},
		{"30Days", TimeRange30Days, "30 Days"},
		{"AllTime", TimeRangeAllTime, "All Time"},
		{"Unknown", TimeRange(999), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.String(); got != tt.want {
				t.Errorf("TimeRange.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Days(t *testing.T) {
	tests := []struct {
		name string
		tr   TimeRange
		want int
	}{
		{"24Hours", TimeRange24Hours, 1},
		{"7Days", TimeRange7Days, 7},
		{"30Days", TimeRange30Days, 30},
		{"AllTime", TimeRangeAllTime, 0},
		{"Unknown", TimeRange(999), 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tr.Days(); got != tt.want {
				t.Errorf("TimeRange.Days() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTimeRange_Next(t *testing.T) {
	if got := TimeRangeAllTime.Next(); got != TimeRange24Hours {
		t.Errorf("AllTime.Next() = %v, want %v", got, TimeRange24Hours)
	}
	if got := TimeRange24Hours.Next(); got != TimeRange7Days {
		t.Errorf("24Hours.Next() = %v, want %v", got, TimeRange7Days)
	}
}

func TestTimeRange_Since(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	if got := TimeRangeAllTime.Since(now); !got.IsZero() {
		t.Errorf("AllTime.Since() = %v, want zero", got)
	}
	want := now.Add(-7 * 24 * time.Hour)
	if got := TimeRange7Days.Since(now); !got.Equal(want) {
		t.Errorf("7Days.Since() = %v, want %v", got, want)
	}
}

func TestDateRangeFor(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		tr   TimeRange
		want DateRange
	}{
		{"Today", TimeRange24Hours, DateRange{From: "2024-03-10", To: "2024-03-10"}},
		{"7Days", TimeRange7Days, DateRange{From: "2024-03-04", To: "2024-03-10"}},
		{"AllTime", TimeRangeAllTime, DateRange{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DateRangeFor(tt.tr, now); got != tt.want {
				t.Errorf("DateRangeFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDateRange_String(t *testing.T) {
	tests := []struct {
		r    DateRange
		want string
	}{
		{DateRange{}, "all"},
		{DateRange{From: "2024-03-10", To: "2024-03-10"}, "2024-03-10"},
		{DateRange{From: "2024-03-01", To: "2024-03-10"}, "2024-03-01_2024-03-10"},
	}
	for _, tt := range tests {
		if got := tt.r.String(); got != tt.want {
			t.Errorf("DateRange.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestHistoryStats(t *testing.T) {
	var empty *HistoryStats
	if empty.HasData() {
		t.Error("nil stats should have no data")
	}
	if empty.Growth() != 0 {
		t.Error("nil stats growth should be 0")
	}

	h := &HistoryStats{
		Points: []SnapshotPoint{
			{TotalUsers: 100},
			{TotalUsers: 90},
			{TotalUsers: 140},
		},
	}
	if !h.HasData() {
		t.Error("expected data")
	}
	if got := h.Growth(); got != 40 {
		t.Errorf("Growth() = %d, want 40", got)
	}
	totals := h.Totals()
	if len(totals) != 3 || totals[2] != 140 {
		t.Errorf("Totals() = %v", totals)
	}
}
