// Package brackets maps SpiceGold ranges to their display color and label.
//
// Colors depend only on the numeric range so a cohort keeps its color when
// the period changes. Labels and insights depend on the period.
package brackets

import (
	"fmt"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
)

// OpenEndedSentinel is the effective upper bound of an open-ended range.
const OpenEndedSentinel int64 = 100000

// DefaultColor is used above the last threshold.
const DefaultColor = "#ec4899"

type colorStep struct {
	max   int64
	color string
}

var colorLadder = []colorStep{
	{50, "#ef4444"},
	{100, "#f97316"},
	{400, "#f59e0b"},
	{700, "#eab308"},
	{1000, "#84cc16"},
	{4000, "#22c55e"},
	{7000, "#10b981"},
	{15000, "#14b8a6"},
	{23000, "#06b6d4"},
	{31000, "#3b82f6"},
	{62000, "#6366f1"},
	{93000, "#8b5cf6"},
}

type labelStep struct {
	max     int64
	label   string
	insight string
}

// dailyLadder covers the fine sub-ranges that only matter within a day.
var dailyLadder = []labelStep{
	{50, "Starter", "Opened the app and earned a first few points %s"},
	{100, "Casual Earner", "Completed a couple of light actions %s"},
	{400, "Active Earner", "Engaged with several earning actions %s"},
	{700, "Engaged Earner", "Returned repeatedly to earn %s"},
	{1000, "Power Earner", "Among the most active earners %s"},
}

var sharedLadder = []labelStep{
	{4000, "Explorer", "Building up a balance %s"},
	{7000, "Rising Star", "Earning steadily %s"},
	{15000, "Consistent Contributor", "Earning across many sessions %s"},
	{23000, "Dedicated Member", "Committed to earning %s"},
	{31000, "Top Performer", "Outpacing most users %s"},
	{62000, "High Achiever", "Holding a large balance %s"},
	{93000, "Champion", "One of the strongest earners %s"},
}

const (
	eliteLabel   = "Elite Tier"
	eliteInsight = "Beyond every tracked bracket %s"
)

// Label is the derived presentation of a range.
type Label struct {
	Color   string
	Label   string
	Insight string
}

// effectiveUpper clamps inputs and substitutes the sentinel for open ranges.
func effectiveUpper(from int64, to *int64) int64 {
	if to == nil {
		if from > OpenEndedSentinel {
			return from
		}
		return OpenEndedSentinel
	}
	if *to < 0 {
		return 0
	}
	return *to
}

// ColorFor returns the color of a range. It never depends on the period.
func ColorFor(from int64, to *int64) string {
	upper := effectiveUpper(max(from, 0), to)
	for _, step := range colorLadder {
		if upper <= step.max {
			return step.color
		}
	}
	return DefaultColor
}

// LabelFor returns the color, label and insight of a range for a period.
func LabelFor(from int64, to *int64, period models.Period) Label {
	upper := effectiveUpper(max(from, 0), to)
	when := periodPhrase(period)

	ladder := sharedLadder
	if period == models.PeriodDaily {
		ladder = append(dailyLadder[:len(dailyLadder):len(dailyLadder)], sharedLadder...)
	}

	out := Label{Color: ColorFor(from, to)}
	for _, step := range ladder {
		if upper <= step.max {
			out.Label = step.label
			out.Insight = fmt.Sprintf(step.insight, when)
			return out
		}
	}
	out.Label = eliteLabel
	out.Insight = fmt.Sprintf(eliteInsight, when)
	return out
}

// Classify is LabelFor applied to a bucket.
func Classify(b models.RangeBucket, period models.Period) Label {
	return LabelFor(b.From, b.To, period)
}

// RangeText renders the bounds of a bucket, e.g. "0 - 50" or "62001+".
func RangeText(b models.RangeBucket) string {
	switch {
	case b.Unparsed:
		return fmt.Sprintf("%d+ (unparsed)", b.From)
	case b.To == nil:
		return fmt.Sprintf("%d+", b.From)
	default:
		return fmt.Sprintf("%d - %d", b.From, *b.To)
	}
}

func periodPhrase(period models.Period) string {
	switch period {
	case models.PeriodDaily:
		return "today"
	case models.PeriodWeekly:
		return "this week"
	case models.PeriodMonthly:
		return "this month"
	default:
		return "overall"
	}
}
