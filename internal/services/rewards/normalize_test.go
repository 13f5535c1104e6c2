package rewards

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/fixtures"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/api"
)

func ptr(v int64) *int64 { return &v }

func normalize(t *testing.T, payload string, period models.Period) *models.Snapshot {
	t.Helper()
	snap, err := Normalize([]byte(fixtures.Envelope(payload)), period)
	require.NoError(t, err)
	require.NotNil(t, snap)
	return snap
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    models.ResponseShape
	}{
		{"Combined", fixtures.CombinedRanges, models.ShapeCombined},
		{"Nested", fixtures.NestedRanges, models.ShapeNested},
		{"Flat", fixtures.FlatRanges, models.ShapeFlat},
		{"Encoded", fixtures.EncodedRanges, models.ShapeFlat},
		{"Standard", fixtures.StandardRanges, models.ShapeStandard},
		{"EmptyArray", `[]`, models.ShapeFlat},
		{"String", `"maintenance"`, models.ShapeUnknown},
		{"ObjectWithoutRanges", `{"total_users": 4}`, models.ShapeUnknown},
		{"DailyWithoutAggregated", `{"daily": []}`, models.ShapeUnknown},
		{"ArrayOfNumbers", `[1, 2]`, models.ShapeUnknown},
		{"Null", `null`, models.ShapeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(json.RawMessage(tt.payload)))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, payload := range []string{
		fixtures.StandardRanges, fixtures.NestedRanges, fixtures.CombinedRanges,
		fixtures.FlatRanges, fixtures.EncodedRanges,
	} {
		first := normalize(t, payload, models.PeriodWeekly)
		second := normalize(t, payload, models.PeriodWeekly)
		assert.Equal(t, first, second)
	}
}

func TestNormalize_SumInvariant(t *testing.T) {
	for _, payload := range []string{fixtures.NestedRanges, fixtures.FlatRanges, fixtures.EncodedRanges} {
		snap := normalize(t, payload, models.PeriodDaily)
		assert.Equal(t, snap.BucketUsers(), snap.TotalUsers)
	}
}

func TestNormalize_NestedMerge(t *testing.T) {
	snap := normalize(t, fixtures.NestedRanges, models.PeriodWeekly)

	assert.Equal(t, models.ShapeNested, snap.Shape)
	require.Len(t, snap.Buckets, 3)
	assert.Equal(t, models.RangeBucket{From: 0, To: ptr(50), Users: 8}, snap.Buckets[0])
	assert.Equal(t, models.RangeBucket{From: 51, To: ptr(100), Users: 2}, snap.Buckets[1])
	assert.Equal(t, models.RangeBucket{From: 101, To: ptr(400), Users: 1}, snap.Buckets[2])
	assert.Equal(t, int64(11), snap.TotalUsers)

	require.Len(t, snap.Daily, 2)
	assert.Equal(t, "2024-03-01", snap.Daily[0].Date)
	assert.Equal(t, int64(3), snap.Daily[0].Buckets[0].Users, "per-date breakdown is not merged")
	assert.Len(t, snap.Daily[1].Buckets, 3)
}

func TestNormalize_NestedMergeDoesNotCollideKeys(t *testing.T) {
	payload := `[
	  {"date": "d1", "ranges": [{"reward_from_range": "100", "reward_to_range": "23", "total_users": 1}]},
	  {"date": "d2", "ranges": [{"reward_from_range": "1", "reward_to_range": "023", "total_users": 1}]}
	]`
	snap := normalize(t, payload, models.PeriodDaily)

	require.Len(t, snap.Buckets, 2)
	assert.Equal(t, int64(1), snap.Buckets[0].From)
	assert.Equal(t, int64(23), *snap.Buckets[0].To)
	assert.True(t, snap.Buckets[1].Unparsed, "100..23 is inverted and kept as an unparsed bucket")
}

func TestNormalize_CombinedPrecedence(t *testing.T) {
	snap := normalize(t, fixtures.CombinedRanges, models.PeriodDaily)

	assert.Equal(t, models.ShapeCombined, snap.Shape)
	assert.Equal(t, int64(120), snap.TotalUsers)
	assert.Equal(t, int64(115), snap.BucketUsers())
	require.NotNil(t, snap.Aggregate)
	assert.Equal(t, models.AggregateStats{UniqueUsers: 120, TotalPoints: 5400, AveragePoints: 45}, *snap.Aggregate)

	require.Len(t, snap.Buckets, 3)
	assert.Equal(t, int64(0), snap.Buckets[0].From, "buckets are sorted by lower bound")
	require.Len(t, snap.Daily, 2)
	assert.Equal(t, "2024-03-02", snap.Daily[1].Date)
}

func TestNormalize_CombinedWithoutUniqueUsers(t *testing.T) {
	payload := `{"daily": [], "aggregated": {"ranges": [{"reward_from_range": "0", "reward_to_range": "50", "total_users": 4}]}}`
	snap := normalize(t, payload, models.PeriodMonthly)
	assert.Equal(t, int64(4), snap.TotalUsers)
	assert.Empty(t, snap.Daily)
}

func TestNormalize_StandardPrecedence(t *testing.T) {
	snap := normalize(t, fixtures.StandardRanges, models.PeriodOverall)

	assert.Equal(t, models.ShapeStandard, snap.Shape)
	assert.Equal(t, int64(130), snap.TotalUsers)
	assert.Equal(t, int64(118), snap.BucketUsers())
	assert.Len(t, snap.Buckets, 12)
	assert.Len(t, snap.VisibleBuckets(), 12, "overall keeps the empty bracket")

	last := snap.Buckets[len(snap.Buckets)-1]
	assert.Equal(t, int64(62001), last.From)
	assert.Nil(t, last.To)
	assert.False(t, last.Unparsed)
}

func TestNormalize_Flat(t *testing.T) {
	snap := normalize(t, fixtures.FlatRanges, models.PeriodDaily)

	require.Len(t, snap.Buckets, 4)
	assert.Equal(t, int64(20), snap.TotalUsers)
	assert.Len(t, snap.VisibleBuckets(), 3, "daily hides empty brackets")
	assert.Nil(t, snap.Buckets[3].To, "null upper bound is open-ended")
	assert.Zero(t, snap.Malformed)
}

func TestNormalize_Encoded(t *testing.T) {
	snap := normalize(t, fixtures.EncodedRanges, models.PeriodDaily)

	require.Len(t, snap.Buckets, 3)
	assert.Equal(t, models.RangeBucket{From: 0, To: ptr(50), Users: 9}, snap.Buckets[0])
	assert.Equal(t, models.RangeBucket{From: 51, To: ptr(100), Users: 4}, snap.Buckets[1])
	assert.Equal(t, models.RangeBucket{From: 62001, Users: 2}, snap.Buckets[2])
	assert.Equal(t, int64(15), snap.TotalUsers)
}

func TestNormalize_OpenEndedParsing(t *testing.T) {
	payload := `[
	  {"reward_from_range": "0", "reward_to_range": "", "total_users": 1},
	  {"reward_from_range": "10", "total_users": 2},
	  {"reward_from_range": "20", "reward_to_range": "abc", "total_users": 3}
	]`
	snap := normalize(t, payload, models.PeriodOverall)

	require.Len(t, snap.Buckets, 3)
	for _, b := range snap.Buckets {
		assert.Nil(t, b.To)
	}
	assert.False(t, snap.Buckets[0].Unparsed)
	assert.False(t, snap.Buckets[1].Unparsed)
	assert.True(t, snap.Buckets[2].Unparsed)
	assert.Equal(t, 1, snap.Malformed)
}

func TestNormalize_MalformedLowerBoundKeepsUsers(t *testing.T) {
	payload := `[
	  {"reward_from_range": "n/a", "reward_to_range": "50", "total_users": 6},
	  {"reward_from_range": "62001", "reward_to_range": "", "total_users": 2}
	]`
	snap := normalize(t, payload, models.PeriodOverall)

	require.Len(t, snap.Buckets, 2)
	assert.Equal(t, models.RangeBucket{From: 0, Users: 6, Unparsed: true}, snap.Buckets[0])
	assert.Equal(t, int64(8), snap.TotalUsers)
}

func TestNormalize_UnparsedDoesNotMergeWithOpenEnded(t *testing.T) {
	payload := `[
	  {"date": "d1", "ranges": [{"reward_from_range": "62001", "reward_to_range": "", "total_users": 2}]},
	  {"date": "d2", "ranges": [{"reward_from_range": "62001", "reward_to_range": "???", "total_users": 3}]}
	]`
	snap := normalize(t, payload, models.PeriodWeekly)

	require.Len(t, snap.Buckets, 2)
	assert.False(t, snap.Buckets[0].Unparsed)
	assert.True(t, snap.Buckets[1].Unparsed)
	assert.Equal(t, int64(5), snap.TotalUsers)
}

func TestNormalize_EmptyFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"EmptyArray", `[]`},
		{"Unknown", `"maintenance"`},
		{"StandardWithoutRanges", `{"total_users": 40, "ranges": []}`},
		{"Null", `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := normalize(t, tt.payload, models.PeriodDaily)
			assert.Zero(t, snap.TotalUsers)
			assert.NotNil(t, snap.Buckets)
			assert.Empty(t, snap.Buckets)
			assert.True(t, snap.IsEmpty())
		})
	}
}

func TestNormalize_ApplicationError(t *testing.T) {
	_, err := Normalize([]byte(`{"code": 403, "data": null, "message": "forbidden"}`), models.PeriodOverall)

	var appErr *api.ApplicationError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 403, appErr.Code)
	assert.Equal(t, "forbidden", appErr.Message)
}

func TestNormalize_DoesNotShareBucketMemory(t *testing.T) {
	snap := normalize(t, fixtures.NestedRanges, models.PeriodWeekly)
	*snap.Buckets[0].To = 999
	assert.Equal(t, int64(50), *snap.Daily[0].Buckets[0].To)
}
