package rewards

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/logger"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
)

// Field names used by the range payloads.
const (
	fieldFrom       = "reward_from_range"
	fieldTo         = "reward_to_range"
	fieldTotalUsers = "total_users"
	fieldRange      = "range"
	fieldRanges     = "ranges"
	fieldDaily      = "daily"
	fieldAggregated = "aggregated"
	fieldUnique     = "unique_users"
	fieldPoints     = "total_points"
	fieldAverage    = "average_points"
)

var userCountFields = []string{fieldTotalUsers, "users", "user_count", "count"}

var dateFields = []string{"date", "day", "created_date"}

// MalformedRangeWarning describes a range entry whose bounds could not be
// parsed. The entry is kept as an open-ended bucket so no users are lost.
type MalformedRangeWarning struct {
	Field string
	Value string
	Index int
}

func (w *MalformedRangeWarning) Error() string {
	return fmt.Sprintf("range %d: unparsable %s %q", w.Index, w.Field, w.Value)
}

// rangeKey merges buckets describing the same bracket across dates.
type rangeKey struct {
	from     int64
	to       int64
	open     bool
	unparsed bool
}

func keyOf(b models.RangeBucket) rangeKey {
	k := rangeKey{from: b.From, open: b.To == nil, unparsed: b.Unparsed}
	if b.To != nil {
		k.to = *b.To
	}
	return k
}

type object map[string]json.RawMessage

// decodeObject returns the members of raw when it is a JSON object.
func decodeObject(raw json.RawMessage) (object, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var obj object
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// decodeArray returns the elements of raw when it is a JSON array.
func decodeArray(raw json.RawMessage) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return nil, false
	}
	return arr, true
}

func (o object) has(field string) bool {
	v, ok := o[field]
	return ok && !isNull(v)
}

func (o object) array(field string) ([]json.RawMessage, bool) {
	v, ok := o[field]
	if !ok {
		return nil, false
	}
	return decodeArray(v)
}

func (o object) object(field string) (object, bool) {
	v, ok := o[field]
	if !ok {
		return nil, false
	}
	return decodeObject(v)
}

// scalar returns the text of a string or number member.
func (o object) scalar(field string) (string, bool) {
	v, ok := o[field]
	if !ok || isNull(v) {
		return "", false
	}
	v = bytes.TrimSpace(v)
	if len(v) > 0 && v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return "", false
		}
		return strings.TrimSpace(s), true
	}
	return string(v), true
}

// int64Field parses a numeric member encoded as a number or a string.
func (o object) int64Field(fields ...string) (int64, bool) {
	for _, f := range fields {
		s, ok := o.scalar(f)
		if !ok || s == "" {
			continue
		}
		if n, ok := parseInt(s); ok {
			return n, true
		}
	}
	return 0, false
}

func (o object) float64Field(field string) (float64, bool) {
	s, ok := o.scalar(field)
	if !ok || s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (o object) date() string {
	for _, f := range dateFields {
		if s, ok := o.scalar(f); ok && s != "" {
			return s
		}
	}
	return ""
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// parseInt parses a base-10 integer. Whole floats such as "50.0" are accepted.
func parseInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return int64(f), true
	}
	return 0, false
}

// splitEncodedRange splits "0-50", "0|50", "62001+" or "62001-".
func splitEncodedRange(s string) (from, to string) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "+") {
		return strings.TrimSuffix(s, "+"), ""
	}
	if i := strings.IndexAny(s, "|-"); i > 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// bucketParser accumulates malformed-entry counts while parsing ranges.
type bucketParser struct {
	malformed int
}

func (p *bucketParser) warn(w *MalformedRangeWarning) {
	p.malformed++
	logger.Warn("malformed range entry", "warning", w.Error())
}

// parseBucket converts one raw range object into a bucket.
// Users are never dropped: unparsable bounds yield an open bucket.
func (p *bucketParser) parseBucket(idx int, obj object) models.RangeBucket {
	users, ok := obj.int64Field(userCountFields...)
	if !ok {
		if s, present := obj.scalar(fieldTotalUsers); present && s != "" {
			p.warn(&MalformedRangeWarning{Index: idx, Field: fieldTotalUsers, Value: s})
		}
		users = 0
	}
	users = max(users, 0)

	fromText, fromPresent := obj.scalar(fieldFrom)
	toText, _ := obj.scalar(fieldTo)
	if !fromPresent {
		if encoded, ok := obj.scalar(fieldRange); ok {
			fromText, toText = splitEncodedRange(encoded)
			fromPresent = true
		}
	}

	from, ok := parseInt(fromText)
	if !fromPresent || !ok {
		p.warn(&MalformedRangeWarning{Index: idx, Field: fieldFrom, Value: fromText})
		return models.RangeBucket{From: 0, Users: users, Unparsed: true}
	}
	from = max(from, 0)

	b := models.RangeBucket{From: from, Users: users}
	if toText == "" {
		return b
	}

	to, ok := parseInt(toText)
	if !ok || to < from {
		p.warn(&MalformedRangeWarning{Index: idx, Field: fieldTo, Value: toText})
		b.Unparsed = true
		return b
	}
	b.To = models.Int64Ptr(to)
	return b
}

// parseBuckets converts a list of raw range objects, keeping input order.
func (p *bucketParser) parseBuckets(items []json.RawMessage) []models.RangeBucket {
	out := make([]models.RangeBucket, 0, len(items))
	for i, item := range items {
		obj, ok := decodeObject(item)
		if !ok {
			p.warn(&MalformedRangeWarning{Index: i, Field: fieldRange, Value: string(bytes.TrimSpace(item))})
			continue
		}
		out = append(out, p.parseBucket(i, obj))
	}
	return out
}

// mergeBuckets sums users per bracket and sorts by lower bound.
func mergeBuckets(groups ...[]models.RangeBucket) []models.RangeBucket {
	index := make(map[rangeKey]int)
	var merged []models.RangeBucket
	for _, group := range groups {
		for _, b := range group {
			k := keyOf(b)
			if i, ok := index[k]; ok {
				merged[i].Users += b.Users
				continue
			}
			index[k] = len(merged)
			if b.To != nil {
				b.To = models.Int64Ptr(*b.To)
			}
			merged = append(merged, b)
		}
	}
	sortBuckets(merged)
	if merged == nil {
		merged = []models.RangeBucket{}
	}
	return merged
}

func sortBuckets(buckets []models.RangeBucket) {
	slices.SortStableFunc(buckets, func(a, b models.RangeBucket) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		const inf = int64(^uint64(0) >> 1)
		if c := cmp.Compare(a.Upper(inf), b.Upper(inf)); c != 0 {
			return c
		}
		switch {
		case a.Unparsed == b.Unparsed:
			return 0
		case a.Unparsed:
			return 1
		default:
			return -1
		}
	})
}

func sumUsers(buckets []models.RangeBucket) int64 {
	var total int64
	for _, b := range buckets {
		total += b.Users
	}
	return total
}
