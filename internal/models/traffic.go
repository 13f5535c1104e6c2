package models

import "time"

// PageVisit is one (page, date) traffic observation.
type PageVisit struct {
	Page               string `json:"page"`
	Date               string `json:"date,omitempty"`
	TotalUsers         int64  `json:"total_users"`
	OldUsers           int64  `json:"old_users"`
	NewUsers           int64  `json:"new_users"`
	FirstTimeUsers     int64  `json:"first_time_users"`
	Created            int64  `json:"created"`
	VisitorConversions int64  `json:"visitor_conversions"`
}

// PageStat holds the counters of one page summed across dates.
type PageStat struct {
	Page               string
	TotalUsers         int64
	OldUsers           int64
	NewUsers           int64
	FirstTimeUsers     int64
	Created            int64
	VisitorConversions int64
}

// Add folds a visit record into the stat.
func (s *PageStat) Add(v PageVisit) {
	s.TotalUsers += v.TotalUsers
	s.OldUsers += v.OldUsers
	s.NewUsers += v.NewUsers
	s.FirstTimeUsers += v.FirstTimeUsers
	s.Created += v.Created
	s.VisitorConversions += v.VisitorConversions
}

// DailyPageStats is the per-page breakdown of one date.
type DailyPageStats struct {
	Date  string
	Pages []PageStat
}

// DateRange bounds a traffic query. Either explicit dates or a relative
// range code (D, W or M) are sent; a zero range asks for the backend default.
type DateRange struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
	Code string `json:"range,omitempty"`
}

// RelativeRange returns the range the backend resolves from a period's range
// code. Overall has no code and yields the zero range.
func RelativeRange(p Period) DateRange {
	return DateRange{Code: p.RangeCode()}
}

// IsZero reports whether no bounds are set.
func (r DateRange) IsZero() bool {
	return r.From == "" && r.To == "" && r.Code == ""
}

// HasDates reports whether explicit dates are set.
func (r DateRange) HasDates() bool {
	return r.From != "" || r.To != ""
}

// String renders the range for display and filenames.
func (r DateRange) String() string {
	switch {
	case r.IsZero():
		return "all"
	case !r.HasDates():
		if p, err := ParsePeriod(r.Code); err == nil {
			return p.String()
		}
		return r.Code
	case r.From == r.To:
		return r.From
	default:
		return r.From + "_" + r.To
	}
}

// DateRangeFor returns the calendar range covered by t, ending on now.
func DateRangeFor(t TimeRange, now time.Time) DateRange {
	days := t.Days()
	if days == 0 {
		return DateRange{}
	}
	to := now.Format(time.DateOnly)
	from := now.AddDate(0, 0, -(days - 1)).Format(time.DateOnly)
	return DateRange{From: from, To: to}
}

// TrafficReport is the aggregated page traffic of one query.
type TrafficReport struct {
	FetchedAt  time.Time
	Range      DateRange
	Records    []PageVisit
	Pages      []PageStat
	Daily      []DailyPageStats
	GrandTotal int64
}

// IsEmpty reports whether the report carries no pages.
func (r *TrafficReport) IsEmpty() bool {
	return r == nil || len(r.Pages) == 0
}

// TopEarner is one entry of the reward points leaderboard.
type TopEarner struct {
	LinkedID          string `json:"linkedId"`
	DeveloperID       string `json:"developerId"`
	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	Mobile            string `json:"mobile,omitempty"`
	Rank              int    `json:"rank"`
	TotalRewardPoints int64  `json:"totalRewardPoints"`
	TotalEventCount   int64  `json:"totalEventCount,omitempty"`
	HasBharatPass     bool   `json:"hasBharatPass,omitempty"`
}
