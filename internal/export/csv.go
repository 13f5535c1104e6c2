// Package export writes analytics as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/brackets"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/leaderboard"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/traffic"
)

// Options controls the rows written by the CSV writers.
type Options struct {
	// Detailed writes one row per date instead of the aggregate.
	Detailed bool
	// KeepEmpty keeps zero-user rows that the dashboard hides.
	KeepEmpty bool
}

var (
	rangesHeader         = []string{"Range", "From", "To", "Users", "Share %", "Label", "Color"}
	rangesDetailedHeader = []string{"Date", "Range", "From", "To", "Users"}
	trafficHeader        = []string{"Page", "Total Users", "Old", "New", "First Time", "Created", "Visitor Conversions", "% New", "Share %"}
	leaderboardHeader    = []string{"Rank", "Name", "Developer ID", "Linked ID", "Mobile", "Total Reward Points", "Total Events", "Bharat Pass"}
)

// rangeRows returns the rows WriteRanges would write, without the header.
// Detailed rows come from the per-date entries, so they do not depend on the
// aggregate being present.
func rangeRows(snap *models.Snapshot, opts Options) [][]string {
	if snap == nil {
		return nil
	}

	var rows [][]string
	if opts.Detailed && len(snap.Daily) > 0 {
		for _, day := range snap.Daily {
			for _, b := range day.Buckets {
				if b.Users == 0 && !opts.KeepEmpty {
					continue
				}
				rows = append(rows, []string{
					day.Date, brackets.RangeText(b), itoa(b.From), upperText(b), itoa(b.Users),
				})
			}
		}
		return rows
	}
	if snap.IsEmpty() {
		return nil
	}

	buckets := snap.VisibleBuckets()
	if opts.KeepEmpty {
		buckets = snap.Buckets
	}
	for _, b := range buckets {
		label := brackets.Classify(b, snap.Period)
		rows = append(rows, []string{
			brackets.RangeText(b),
			itoa(b.From),
			upperText(b),
			itoa(b.Users),
			percentText(snap.Share(b)),
			label.Label,
			label.Color,
		})
	}
	return rows
}

// WriteRanges writes the distribution of a snapshot.
func WriteRanges(w io.Writer, snap *models.Snapshot, opts Options) error {
	header := rangesHeader
	if opts.Detailed && snap != nil && len(snap.Daily) > 0 {
		header = rangesDetailedHeader
	}
	return writeAll(w, header, rangeRows(snap, opts))
}

func trafficRows(report *models.TrafficReport, opts Options) [][]string {
	if report.IsEmpty() {
		return nil
	}

	row := func(s models.PageStat) []string {
		return []string{
			s.Page,
			itoa(s.TotalUsers),
			itoa(s.OldUsers),
			itoa(s.NewUsers),
			itoa(s.FirstTimeUsers),
			itoa(s.Created),
			itoa(s.VisitorConversions),
			percentText(traffic.PercentNew(s)),
			percentText(traffic.Share(s, report.GrandTotal)),
		}
	}

	var rows [][]string
	if opts.Detailed {
		for _, day := range report.Daily {
			dayTotal := traffic.GrandTotal(day.Pages)
			for _, s := range day.Pages {
				if s.TotalUsers == 0 && !opts.KeepEmpty {
					continue
				}
				r := row(s)
				r[len(r)-1] = percentText(traffic.Share(s, dayTotal))
				rows = append(rows, append([]string{day.Date}, r...))
			}
		}
		return rows
	}

	for _, s := range report.Pages {
		if s.TotalUsers == 0 && !opts.KeepEmpty {
			continue
		}
		rows = append(rows, row(s))
	}
	return rows
}

// WriteTraffic writes the per-page traffic of a report. Detailed rows are
// prefixed with their date and their share is relative to that date.
func WriteTraffic(w io.Writer, report *models.TrafficReport, opts Options) error {
	header := trafficHeader
	if opts.Detailed {
		header = append([]string{"Date"}, trafficHeader...)
	}
	return writeAll(w, header, trafficRows(report, opts))
}

func leaderboardRows(earners []models.TopEarner) [][]string {
	rows := make([][]string, 0, len(earners))
	for _, e := range earners {
		rows = append(rows, []string{
			strconv.Itoa(e.Rank),
			leaderboard.DisplayName(e),
			e.DeveloperID,
			e.LinkedID,
			e.Mobile,
			itoa(e.TotalRewardPoints),
			itoa(e.TotalEventCount),
			strconv.FormatBool(e.HasBharatPass),
		})
	}
	return rows
}

// WriteLeaderboard writes the earners in the given order.
func WriteLeaderboard(w io.Writer, earners []models.TopEarner) error {
	return writeAll(w, leaderboardHeader, leaderboardRows(earners))
}

func writeAll(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}
	return nil
}

func upperText(b models.RangeBucket) string {
	if b.To == nil {
		return ""
	}
	return itoa(*b.To)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func percentText(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
