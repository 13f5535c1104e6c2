// Package traffic aggregates per-page visit counts.
package traffic

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/logger"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
)

// ErrUnsupportedPayload is logged when page traffic data is not a list.
var ErrUnsupportedPayload = errors.New("page traffic payload is not a list")

// LandingPage is the canonical name of the landing page.
const LandingPage = "landing_page"

// pageAliases maps legacy page names to their canonical name.
var pageAliases = map[string]string{
	"credential": LandingPage,
}

// Counter field aliases, canonical name first.
var (
	fieldsTotal       = []string{"total_users", "total"}
	fieldsOld         = []string{"old_users", "old"}
	fieldsNew         = []string{"new_users", "new"}
	fieldsFirstTime   = []string{"first_time_users", "first_time"}
	fieldsCreated     = []string{"created", "created_users"}
	fieldsConversions = []string{"visitor_conversions", "visitor_converted"}
	fieldsDate        = []string{"date", "day"}
	fieldsNestedPages = []string{"pages", "data"}
)

// CanonicalPage returns the canonical name of a page. Only exact legacy names
// are renamed; every other name is kept as the backend sent it.
func CanonicalPage(page string) string {
	if canonical, ok := pageAliases[page]; ok {
		return canonical
	}
	return page
}

type record map[string]json.RawMessage

// Parse decodes a page traffic payload. Both a flat list of page records and
// a list of {date, pages|data} groups are accepted. Page names are
// canonicalized here so later stages never see a legacy name. Any other
// payload is logged and yields no records, never an error.
func Parse(data json.RawMessage) ([]models.PageVisit, error) {
	var items []record
	if err := json.Unmarshal(data, &items); err != nil || items == nil {
		logger.Warn("unrecognized page traffic payload",
			"error", ErrUnsupportedPayload,
			"bytes", len(data),
		)
		return []models.PageVisit{}, nil
	}

	visits := make([]models.PageVisit, 0, len(items))
	for _, item := range items {
		if pages, ok := item.nested(); ok {
			date := item.text(fieldsDate...)
			for _, page := range pages {
				if v, ok := page.visit(date); ok {
					visits = append(visits, v)
				}
			}
			continue
		}
		if v, ok := item.visit(item.text(fieldsDate...)); ok {
			visits = append(visits, v)
		}
	}
	return visits, nil
}

func (r record) nested() ([]record, bool) {
	for _, f := range fieldsNestedPages {
		raw, ok := r[f]
		if !ok {
			continue
		}
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			continue
		}
		var pages []record
		if err := json.Unmarshal(trimmed, &pages); err != nil {
			continue
		}
		return pages, true
	}
	return nil, false
}

func (r record) visit(date string) (models.PageVisit, bool) {
	page := CanonicalPage(r.text("page", "page_name"))
	if page == "" {
		return models.PageVisit{}, false
	}
	return models.PageVisit{
		Page:               page,
		Date:               date,
		TotalUsers:         r.count(fieldsTotal...),
		OldUsers:           r.count(fieldsOld...),
		NewUsers:           r.count(fieldsNew...),
		FirstTimeUsers:     r.count(fieldsFirstTime...),
		Created:            r.count(fieldsCreated...),
		VisitorConversions: r.count(fieldsConversions...),
	}, true
}

// text returns the first present string or number member.
func (r record) text(fields ...string) string {
	for _, f := range fields {
		raw, ok := r[f]
		if !ok {
			continue
		}
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			continue
		}
		if raw[0] == '"' {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
			continue
		}
		return string(raw)
	}
	return ""
}

// count parses the first present counter. Missing or unparsable counters are 0.
func (r record) count(fields ...string) int64 {
	for _, f := range fields {
		s := r.text(f)
		if s == "" {
			continue
		}
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return max(n, 0)
		}
		if fl, err := strconv.ParseFloat(s, 64); err == nil {
			return max(int64(fl), 0)
		}
	}
	return 0
}
