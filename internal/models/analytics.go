// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Period is the aggregation window of a range analytics query.
type Period int

const (
	// PeriodDaily aggregates over the current day.
	PeriodDaily Period = iota
	// PeriodWeekly aggregates over the current week.
	PeriodWeekly
	// PeriodMonthly aggregates over the current month.
	PeriodMonthly
	// PeriodOverall aggregates over the lifetime of every user.
	PeriodOverall
)

// AllPeriods returns every period in display order.
func AllPeriods() []Period {
	return []Period{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodOverall}
}

// String returns the lowercase identifier used in filenames and the CLI.
func (p Period) String() string {
	switch p {
	case PeriodDaily:
		return "daily"
	case PeriodWeekly:
		return "weekly"
	case PeriodMonthly:
		return "monthly"
	case PeriodOverall:
		return "overall"
	default:
		return "unknown"
	}
}

// Title returns the display name for a period.
func (p Period) Title() string {
	switch p {
	case PeriodDaily:
		return "Daily"
	case PeriodWeekly:
		return "Weekly"
	case PeriodMonthly:
		return "Monthly"
	case PeriodOverall:
		return "Overall"
	default:
		return "Unknown"
	}
}

// RangeCode returns the `range` query value of the daily analytics endpoint.
// Overall has no code since it is served by the till-date endpoint.
func (p Period) RangeCode() string {
	switch p {
	case PeriodDaily:
		return "D"
	case PeriodWeekly:
		return "W"
	case PeriodMonthly:
		return "M"
	default:
		return ""
	}
}

// Next cycles to the next period.
func (p Period) Next() Period {
	return (p + 1) % 4
}

// ParsePeriod parses a period name or its single-letter range code.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day", "d":
		return PeriodDaily, nil
	case "weekly", "week", "w":
		return PeriodWeekly, nil
	case "monthly", "month", "m":
		return PeriodMonthly, nil
	case "overall", "all", "till_date", "o":
		return PeriodOverall, nil
	default:
		return PeriodOverall, fmt.Errorf("unknown period %q", s)
	}
}

// ResponseShape identifies which backend payload variant a snapshot came from.
type ResponseShape int

const (
	// ShapeUnknown is reported when no known variant matched.
	ShapeUnknown ResponseShape = iota
	// ShapeCombined is an object carrying both `daily` and `aggregated`.
	ShapeCombined
	// ShapeNested is an array of per-date entries each carrying `ranges`.
	ShapeNested
	// ShapeFlat is an array of range objects.
	ShapeFlat
	// ShapeStandard is an object carrying `total_users` and `ranges`.
	ShapeStandard
)

// String returns the shape name.
func (s ResponseShape) String() string {
	switch s {
	case ShapeCombined:
		return "combined"
	case ShapeNested:
		return "nested"
	case ShapeFlat:
		return "flat"
	case ShapeStandard:
		return "standard"
	default:
		return "unknown"
	}
}

// ParseShape is the inverse of ResponseShape.String. Unrecognized names map
// to ShapeUnknown.
func ParseShape(s string) ResponseShape {
	for _, shape := range []ResponseShape{ShapeCombined, ShapeNested, ShapeFlat, ShapeStandard} {
		if shape.String() == s {
			return shape
		}
	}
	return ShapeUnknown
}

// RangeBucket is one SpiceGold earning bracket.
type RangeBucket struct {
	From  int64  `json:"from"`
	To    *int64 `json:"to,omitempty"`
	Users int64  `json:"users"`
	// Unparsed marks a bucket whose upper bound was present but not numeric.
	Unparsed bool `json:"unparsed,omitempty"`
}

// OpenEnded reports whether the bucket has no upper bound.
func (b RangeBucket) OpenEnded() bool {
	return b.To == nil
}

// Upper returns the upper bound, or fallback when the bucket is open-ended.
func (b RangeBucket) Upper(fallback int64) int64 {
	if b.To == nil {
		return fallback
	}
	return *b.To
}

// Midpoint estimates the average points of a user in this bucket.
// Open-ended buckets use their lower bound.
func (b RangeBucket) Midpoint() float64 {
	if b.To == nil {
		return float64(b.From)
	}
	return float64(b.From+*b.To) / 2
}

// Int64Ptr returns a pointer to v.
func Int64Ptr(v int64) *int64 {
	return &v
}

// DailyRanges is the bucket distribution of a single date.
type DailyRanges struct {
	Date    string        `json:"date"`
	Buckets []RangeBucket `json:"buckets"`
}

// TotalUsers sums the users of every bucket of the day.
func (d DailyRanges) TotalUsers() int64 {
	var total int64
	for _, b := range d.Buckets {
		total += b.Users
	}
	return total
}

// AggregateStats carries server-computed totals of the combined payload.
type AggregateStats struct {
	UniqueUsers   int64   `json:"unique_users"`
	TotalPoints   int64   `json:"total_points"`
	AveragePoints float64 `json:"average_points"`
}

// Snapshot is the normalized distribution of users across SpiceGold brackets.
// A snapshot is never modified after it has been built.
type Snapshot struct {
	FetchedAt  time.Time       `json:"fetched_at"`
	Aggregate  *AggregateStats `json:"aggregate,omitempty"`
	Buckets    []RangeBucket   `json:"buckets"`
	Daily      []DailyRanges   `json:"daily,omitempty"`
	TotalUsers int64           `json:"total_users"`
	// Malformed counts range entries whose bounds had to be coerced.
	Malformed int           `json:"malformed,omitempty"`
	Period    Period        `json:"period"`
	Shape     ResponseShape `json:"shape"`
}

// EmptySnapshot returns a snapshot without buckets.
func EmptySnapshot(period Period) *Snapshot {
	return &Snapshot{
		Period:  period,
		Buckets: []RangeBucket{},
	}
}

// IsEmpty reports whether the snapshot carries no buckets.
func (s *Snapshot) IsEmpty() bool {
	return s == nil || len(s.Buckets) == 0
}

// BucketUsers sums the users of every bucket. It can differ from TotalUsers
// when the backend reports a distinct-user count.
func (s *Snapshot) BucketUsers() int64 {
	if s == nil {
		return 0
	}
	var total int64
	for _, b := range s.Buckets {
		total += b.Users
	}
	return total
}

// VisibleBuckets returns the buckets to display. Overall keeps empty brackets
// so the full ladder is always shown; other periods drop them.
func (s *Snapshot) VisibleBuckets() []RangeBucket {
	if s == nil {
		return nil
	}
	if s.Period == PeriodOverall {
		out := make([]RangeBucket, len(s.Buckets))
		copy(out, s.Buckets)
		return out
	}
	out := make([]RangeBucket, 0, len(s.Buckets))
	for _, b := range s.Buckets {
		if b.Users > 0 {
			out = append(out, b)
		}
	}
	return out
}

// Share returns the percentage of TotalUsers that falls in b.
func (s *Snapshot) Share(b RangeBucket) float64 {
	if s == nil || s.TotalUsers == 0 {
		return 0
	}
	return float64(b.Users) / float64(s.TotalUsers) * 100
}

// EstimatedPoints approximates the SpiceGold held by all users from bucket
// midpoints. It is an estimate and never replaces Aggregate.TotalPoints.
func (s *Snapshot) EstimatedPoints() float64 {
	if s == nil {
		return 0
	}
	var total float64
	for _, b := range s.Buckets {
		total += b.Midpoint() * float64(b.Users)
	}
	return total
}

// DailyTotals returns the per-date user totals in date order.
func (s *Snapshot) DailyTotals() []float64 {
	if s == nil {
		return nil
	}
	out := make([]float64, len(s.Daily))
	for i, d := range s.Daily {
		out[i] = float64(d.TotalUsers())
	}
	return out
}
