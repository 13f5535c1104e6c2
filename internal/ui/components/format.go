package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatCount renders an integer with thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatPoints renders a SpiceGold amount, abbreviating large values.
func FormatPoints(v float64) string {
	if v < 10000 {
		return humanize.Commaf(float64(int64(v)))
	}
	value, prefix := humanize.ComputeSI(v)
	return fmt.Sprintf("%.1f%s", value, prefix)
}

// FormatPercent renders a percentage with one decimal.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatAge renders how long ago t was, e.g. "3 minutes ago".
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

// PageTitle turns a canonical page key such as "landing_page" into
// "Landing Page".
func PageTitle(page string) string {
	if page == "" {
		return "Unknown"
	}
	// A Caser keeps state between calls, so each call gets its own.
	return cases.Title(language.English).String(strings.ReplaceAll(page, "_", " "))
}

// Truncate shortens s to width cells, ending with an ellipsis.
func Truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
