package traffic

import (
	"slices"
	"time"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
)

// Aggregate sums the counters of every page across dates. Pages keep the
// order in which they were first seen.
func Aggregate(records []models.PageVisit) []models.PageStat {
	index := make(map[string]int)
	stats := make([]models.PageStat, 0)
	for _, r := range records {
		i, ok := index[r.Page]
		if !ok {
			i = len(stats)
			index[r.Page] = i
			stats = append(stats, models.PageStat{Page: r.Page})
		}
		stats[i].Add(r)
	}
	return stats
}

// ByDate returns the per-page sums of every date, dates ascending.
// Undated records are grouped under the empty date, which sorts first.
func ByDate(records []models.PageVisit) []models.DailyPageStats {
	grouped := make(map[string][]models.PageVisit)
	var dates []string
	for _, r := range records {
		if _, ok := grouped[r.Date]; !ok {
			dates = append(dates, r.Date)
		}
		grouped[r.Date] = append(grouped[r.Date], r)
	}
	slices.Sort(dates)

	out := make([]models.DailyPageStats, 0, len(dates))
	for _, d := range dates {
		out = append(out, models.DailyPageStats{Date: d, Pages: Aggregate(grouped[d])})
	}
	return out
}

// GrandTotal sums the total users of every stat.
func GrandTotal(stats []models.PageStat) int64 {
	var total int64
	for _, s := range stats {
		total += s.TotalUsers
	}
	return total
}

// PercentNew returns the share of new users in a page's total, 0 when the
// page has no users.
func PercentNew(s models.PageStat) float64 {
	return percent(s.NewUsers, s.TotalUsers)
}

// Share returns a page's share of the grand total, 0 when the total is 0.
func Share(s models.PageStat, grandTotal int64) float64 {
	return percent(s.TotalUsers, grandTotal)
}

// UserMix is the split of a page's visitors by kind, in percent.
type UserMix struct {
	Old       float64
	New       float64
	FirstTime float64
}

// Mix splits a page's old, new and first-time users into shares of their sum.
func Mix(s models.PageStat) UserMix {
	sum := s.OldUsers + s.NewUsers + s.FirstTimeUsers
	return UserMix{
		Old:       percent(s.OldUsers, sum),
		New:       percent(s.NewUsers, sum),
		FirstTime: percent(s.FirstTimeUsers, sum),
	}
}

func percent(part, whole int64) float64 {
	if whole <= 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// BuildReport bundles records with their aggregates.
func BuildReport(records []models.PageVisit, rng models.DateRange, fetchedAt time.Time) *models.TrafficReport {
	pages := Aggregate(records)
	return &models.TrafficReport{
		FetchedAt:  fetchedAt,
		Range:      rng,
		Records:    records,
		Pages:      pages,
		Daily:      ByDate(records),
		GrandTotal: GrandTotal(pages),
	}
}
