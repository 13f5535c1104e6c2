package traffic

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/fixtures"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/api"
)

func TestCanonicalPage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"credential", LandingPage},
		{"landing_page", LandingPage},
		{"dashboard", "dashboard"},
		{"Dashboard", "Dashboard"},
		{" Credential ", " Credential "},
		{"credentials", "credentials"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalPage(tt.in))
		})
	}
}

func TestParse_Nested(t *testing.T) {
	visits, err := Parse(json.RawMessage(fixtures.NestedTraffic))
	require.NoError(t, err)
	require.Len(t, visits, 5)

	assert.Equal(t, models.PageVisit{
		Page: LandingPage, Date: "2024-03-01",
		TotalUsers: 4, OldUsers: 1, NewUsers: 2, FirstTimeUsers: 1,
	}, visits[1], "short field names and the legacy page name are unified")
	assert.Equal(t, int64(1), visits[2].VisitorConversions)
	assert.Equal(t, "2024-03-02", visits[3].Date, "the data key is read like pages")
}

func TestParse_Flat(t *testing.T) {
	visits, err := Parse(json.RawMessage(fixtures.FlatTraffic))
	require.NoError(t, err)
	require.Len(t, visits, 3)

	assert.Equal(t, LandingPage, visits[0].Page)
	assert.Equal(t, int64(5), visits[0].TotalUsers, "counts may be strings")
	assert.Equal(t, int64(2), visits[1].Created)
	assert.Equal(t, int64(3), visits[1].VisitorConversions)
	assert.Empty(t, visits[2].Date)
}

func TestParse_UnknownShapeFallsBackToEmpty(t *testing.T) {
	for _, payload := range []string{`{"pages": []}`, `{}`, `"x"`, `null`} {
		visits, err := Parse(json.RawMessage(payload))
		require.NoError(t, err, payload)
		assert.NotNil(t, visits, payload)
		assert.Empty(t, visits, payload)
	}
}

func TestParse_SkipsUnnamedPages(t *testing.T) {
	visits, err := Parse(json.RawMessage(`[{"total_users": 3}, {"page": "profile", "total_users": "oops"}]`))
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Zero(t, visits[0].TotalUsers)
}

func TestAggregate_AliasUnification(t *testing.T) {
	visits, err := Parse(json.RawMessage(fixtures.NestedTraffic))
	require.NoError(t, err)

	stats := Aggregate(visits)
	require.Len(t, stats, 3)
	assert.Equal(t, []string{LandingPage, "dashboard", "rewards"},
		[]string{stats[0].Page, stats[1].Page, stats[2].Page})

	landing := stats[0]
	assert.Equal(t, int64(22), landing.TotalUsers)
	assert.Equal(t, int64(6), landing.OldUsers)
	assert.Equal(t, int64(11), landing.NewUsers)
	assert.Equal(t, int64(5), landing.FirstTimeUsers)
	assert.Equal(t, int64(1), landing.Created)
	assert.Equal(t, int64(28), GrandTotal(stats))
}

func TestByDate(t *testing.T) {
	visits, err := Parse(json.RawMessage(fixtures.NestedTraffic))
	require.NoError(t, err)

	days := ByDate(visits)
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-01", days[0].Date)
	require.Len(t, days[0].Pages, 2)
	assert.Equal(t, int64(14), days[0].Pages[0].TotalUsers)
	assert.Equal(t, "2024-03-02", days[1].Date)
	assert.Equal(t, "rewards", days[1].Pages[1].Page)
}

func TestByDate_SortsDates(t *testing.T) {
	days := ByDate([]models.PageVisit{
		{Page: "a", Date: "2024-03-05"},
		{Page: "a", Date: "2024-03-01"},
		{Page: "b", Date: "2024-03-05"},
	})
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-01", days[0].Date)
	assert.Len(t, days[1].Pages, 2)
}

func TestDerivedMetrics_ZeroSafe(t *testing.T) {
	zero := models.PageStat{Page: "rewards"}
	assert.Zero(t, PercentNew(zero))
	assert.Zero(t, Share(zero, 0))
	assert.Equal(t, UserMix{}, Mix(zero))
}

func TestAggregate_KeepsDistinctPageNames(t *testing.T) {
	visits, err := Parse(json.RawMessage(`[
		{"page": "Dashboard", "total_users": 2},
		{"page": "dashboard", "total_users": 3},
		{"page": "Credential", "total_users": 1}
	]`))
	require.NoError(t, err)
	stats := Aggregate(visits)
	require.Len(t, stats, 3)

	names := make([]string, 0, len(stats))
	for _, s := range stats {
		names = append(names, s.Page)
	}
	assert.ElementsMatch(t, []string{"Dashboard", "dashboard", "Credential"}, names)
}

func TestDerivedMetrics(t *testing.T) {
	visits, err := Parse(json.RawMessage(fixtures.FlatTraffic))
	require.NoError(t, err)
	stats := Aggregate(visits)
	require.Len(t, stats, 2)

	landing := stats[0]
	assert.InDelta(t, 45.0, PercentNew(landing), 1e-9)
	assert.InDelta(t, 20.0/23.0*100, Share(landing, GrandTotal(stats)), 1e-9)
	assert.Equal(t, UserMix{Old: 30, New: 45, FirstTime: 25}, Mix(landing))
}

func TestBuildReport(t *testing.T) {
	visits, err := Parse(json.RawMessage(fixtures.NestedTraffic))
	require.NoError(t, err)

	at := time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)
	rng := models.DateRange{From: "2024-03-01", To: "2024-03-02"}
	report := BuildReport(visits, rng, at)

	assert.Equal(t, at, report.FetchedAt)
	assert.Equal(t, rng, report.Range)
	assert.Len(t, report.Records, 5)
	assert.Len(t, report.Pages, 3)
	assert.Len(t, report.Daily, 2)
	assert.Equal(t, int64(28), report.GrandTotal)
	assert.False(t, report.IsEmpty())
}

type stubGetter struct {
	data  string
	err   error
	query url.Values
}

func (g *stubGetter) Get(_ context.Context, _ string, query url.Values) (json.RawMessage, error) {
	g.query = query
	if g.err != nil {
		return nil, g.err
	}
	return json.RawMessage(g.data), nil
}

func TestService_Fetch(t *testing.T) {
	getter := &stubGetter{data: fixtures.NestedTraffic}
	svc := New(getter)

	report, err := svc.Fetch(context.Background(), models.DateRange{From: "2024-03-01", To: "2024-03-02"})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", getter.query.Get("from"))
	assert.Equal(t, "2024-03-02", getter.query.Get("to"))
	assert.Equal(t, int64(28), report.GrandTotal)
}

func TestQuery(t *testing.T) {
	tests := []struct {
		name string
		rng  models.DateRange
		want url.Values
	}{
		{"Default", models.DateRange{}, url.Values{}},
		{"Dates", models.DateRange{From: "2024-03-01", To: "2024-03-02"}, url.Values{"from": {"2024-03-01"}, "to": {"2024-03-02"}}},
		{"RangeCode", models.RelativeRange(models.PeriodWeekly), url.Values{"range": {"W"}}},
		{"DatesWinOverCode", models.DateRange{From: "2024-03-01", To: "2024-03-01", Code: "M"}, url.Values{"from": {"2024-03-01"}, "to": {"2024-03-01"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Query(tt.rng))
		})
	}
}

func TestService_FetchRangeCode(t *testing.T) {
	getter := &stubGetter{data: fixtures.FlatTraffic}
	report, err := New(getter).Fetch(context.Background(), models.RelativeRange(models.PeriodMonthly))
	require.NoError(t, err)
	assert.Equal(t, "M", getter.query.Get("range"))
	assert.Empty(t, getter.query.Get("from"))
	assert.Equal(t, "monthly", report.Range.String())
}

func TestService_FetchErrors(t *testing.T) {
	appErr := &api.ApplicationError{Code: 500, Message: "down"}
	_, err := New(&stubGetter{err: appErr}).Fetch(context.Background(), models.DateRange{})
	assert.True(t, errors.Is(err, appErr))

	report, err := New(&stubGetter{data: `{}`}).Fetch(context.Background(), models.DateRange{})
	require.NoError(t, err)
	assert.True(t, report.IsEmpty())
	assert.Zero(t, report.GrandTotal)
}

func TestService_FetchAgainstFixtureServer(t *testing.T) {
	base, shutdown, err := fixtures.Start(fixtures.VariantNested)
	require.NoError(t, err)
	defer func() { _ = shutdown() }()

	svc := New(api.New(base, api.WithRetry(1, time.Millisecond)))

	all, err := svc.Fetch(context.Background(), models.DateRange{})
	require.NoError(t, err)
	assert.Equal(t, int64(23), all.GrandTotal)

	ranged, err := svc.Fetch(context.Background(), models.DateRange{From: "2024-03-01", To: "2024-03-02"})
	require.NoError(t, err)
	assert.Equal(t, int64(28), ranged.GrandTotal)
}
