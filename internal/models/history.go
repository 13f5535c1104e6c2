package models

import "time"

// TimeRange represents the selected history or traffic time range.
type TimeRange int

const (
	// TimeRange24Hours covers the current day.
	TimeRange24Hours TimeRange = iota
	// TimeRange7Days covers the last 7 days.
	TimeRange7Days
	// TimeRange30Days covers the last 30 days.
	TimeRange30Days
	// TimeRangeAllTime covers all available data.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange24Hours:
		return "Today"
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRange24Hours:
		return 1
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRangeAllTime:
		return 0
	default:
		return 30
	}
}

// Since returns the start of the range relative to now, or the zero time
// for all time.
func (t TimeRange) Since(now time.Time) time.Time {
	days := t.Days()
	if days == 0 {
		return time.Time{}
	}
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// SnapshotPoint is one recorded snapshot total.
type SnapshotPoint struct {
	Time       time.Time
	TotalUsers int64
	Shape      string
}

// PageTrendPoint is one recorded page total.
type PageTrendPoint struct {
	Time       time.Time
	Range      string
	TotalUsers int64
	NewUsers   int64
}

// HistoryStats is the recorded snapshot history of one period.
type HistoryStats struct {
	FirstDataPoint time.Time
	LastDataPoint  time.Time
	Points         []SnapshotPoint
	Pages          map[string][]PageTrendPoint
	Period         Period
	TimeRange      TimeRange
}

// HasData reports whether any snapshot has been recorded.
func (h *HistoryStats) HasData() bool {
	return h != nil && len(h.Points) > 0
}

// Totals returns the snapshot totals in time order.
func (h *HistoryStats) Totals() []float64 {
	if h == nil {
		return nil
	}
	out := make([]float64, len(h.Points))
	for i, p := range h.Points {
		out[i] = float64(p.TotalUsers)
	}
	return out
}

// Growth returns the difference between the last and first recorded totals.
func (h *HistoryStats) Growth() int64 {
	if !h.HasData() {
		return 0
	}
	return h.Points[len(h.Points)-1].TotalUsers - h.Points[0].TotalUsers
}
