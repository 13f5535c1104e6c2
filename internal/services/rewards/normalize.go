// Package rewards normalizes SpiceGold range analytics into snapshots.
package rewards

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/logger"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/api"
)

// ErrShapeMismatch is logged when a payload matches no known shape.
var ErrShapeMismatch = errors.New("analytics payload matches no known shape")

// Normalize decodes a full backend response body into a snapshot.
// An envelope code other than 200 is returned as *api.ApplicationError.
// Unrecognized payloads are not an error and yield an empty snapshot.
func Normalize(body []byte, period models.Period) (*models.Snapshot, error) {
	data, err := api.DecodeEnvelope(body)
	if err != nil {
		return nil, err
	}
	return NormalizeData(data, period), nil
}

// NormalizeData normalizes the envelope's data member.
func NormalizeData(data json.RawMessage, period models.Period) *models.Snapshot {
	shape, parse := detect(data)
	if parse == nil {
		logger.Warn("unrecognized analytics payload",
			"error", ErrShapeMismatch,
			"period", period.String(),
			"bytes", len(data),
		)
		return models.EmptySnapshot(period)
	}

	p := &bucketParser{}
	snap := parse(p, data)
	snap.Period = period
	snap.Shape = shape
	snap.Malformed = p.malformed

	if len(snap.Buckets) == 0 {
		snap.Buckets = []models.RangeBucket{}
		snap.TotalUsers = 0
	}
	return snap
}

// Detect reports which shape a payload has without parsing it.
func Detect(data json.RawMessage) models.ResponseShape {
	shape, _ := detect(data)
	return shape
}

type shapeParser func(p *bucketParser, data json.RawMessage) *models.Snapshot

// detect applies the shape rules in priority order; the first match wins.
func detect(data json.RawMessage) (models.ResponseShape, shapeParser) {
	if obj, ok := decodeObject(data); ok {
		if isCombined(obj) {
			return models.ShapeCombined, parseCombined
		}
		if _, ok := obj.array(fieldRanges); ok && obj.has(fieldTotalUsers) {
			return models.ShapeStandard, parseStandard
		}
		return models.ShapeUnknown, nil
	}

	arr, ok := decodeArray(data)
	if !ok {
		return models.ShapeUnknown, nil
	}
	if len(arr) == 0 {
		return models.ShapeFlat, parseFlat
	}
	first, ok := decodeObject(arr[0])
	if !ok {
		return models.ShapeUnknown, nil
	}
	if _, ok := first.array(fieldRanges); ok {
		return models.ShapeNested, parseNested
	}
	return models.ShapeFlat, parseFlat
}

func isCombined(obj object) bool {
	if _, ok := obj.array(fieldDaily); !ok {
		return false
	}
	_, ok := obj.object(fieldAggregated)
	return ok
}

// parseCombined takes buckets and the distinct-user total from `aggregated`
// and keeps `daily` as the per-date breakdown.
func parseCombined(p *bucketParser, data json.RawMessage) *models.Snapshot {
	obj, _ := decodeObject(data)
	agg, _ := obj.object(fieldAggregated)
	dailyItems, _ := obj.array(fieldDaily)

	ranges, _ := agg.array(fieldRanges)
	buckets := p.parseBuckets(ranges)
	sortBuckets(buckets)

	stats := &models.AggregateStats{}
	unique, hasUnique := agg.int64Field(fieldUnique)
	if hasUnique {
		stats.UniqueUsers = max(unique, 0)
	} else {
		stats.UniqueUsers = sumUsers(buckets)
	}
	stats.TotalPoints, _ = agg.int64Field(fieldPoints)
	stats.AveragePoints, _ = agg.float64Field(fieldAverage)

	return &models.Snapshot{
		TotalUsers: stats.UniqueUsers,
		Buckets:    buckets,
		Daily:      parseDaily(p, dailyItems),
		Aggregate:  stats,
	}
}

// parseNested merges the per-date ranges into one distribution.
func parseNested(p *bucketParser, data json.RawMessage) *models.Snapshot {
	items, _ := decodeArray(data)
	daily := parseDaily(p, items)

	groups := make([][]models.RangeBucket, len(daily))
	for i, d := range daily {
		groups[i] = d.Buckets
	}
	merged := mergeBuckets(groups...)

	return &models.Snapshot{
		TotalUsers: sumUsers(merged),
		Buckets:    merged,
		Daily:      daily,
	}
}

// parseFlat turns every element into one bucket.
func parseFlat(p *bucketParser, data json.RawMessage) *models.Snapshot {
	items, _ := decodeArray(data)
	buckets := p.parseBuckets(items)
	sortBuckets(buckets)
	return &models.Snapshot{
		TotalUsers: sumUsers(buckets),
		Buckets:    buckets,
	}
}

// parseStandard trusts the explicit total over the bucket sum.
func parseStandard(p *bucketParser, data json.RawMessage) *models.Snapshot {
	obj, _ := decodeObject(data)
	ranges, _ := obj.array(fieldRanges)
	buckets := p.parseBuckets(ranges)
	sortBuckets(buckets)

	total, ok := obj.int64Field(fieldTotalUsers)
	if !ok {
		total = sumUsers(buckets)
	}
	return &models.Snapshot{
		TotalUsers: max(total, 0),
		Buckets:    buckets,
	}
}

// parseDaily keeps the per-date entries in their received order.
func parseDaily(p *bucketParser, items []json.RawMessage) []models.DailyRanges {
	if len(items) == 0 {
		return nil
	}
	out := make([]models.DailyRanges, 0, len(items))
	for _, item := range items {
		obj, ok := decodeObject(item)
		if !ok {
			continue
		}
		ranges, _ := obj.array(fieldRanges)
		out = append(out, models.DailyRanges{
			Date:    obj.date(),
			Buckets: slices.Clip(p.parseBuckets(ranges)),
		})
	}
	return out
}
