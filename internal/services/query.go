package services

import (
	"context"
	"fmt"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
)

// QueryType identifies the view a query feeds.
type QueryType int

// Query types, one per data view.
const (
	QueryRewards QueryType = iota
	QueryTraffic
	QueryLeaderboard
)

// AllQueryTypes lists every query type.
func AllQueryTypes() []QueryType {
	return []QueryType{QueryRewards, QueryTraffic, QueryLeaderboard}
}

// String returns the query type name.
func (q QueryType) String() string {
	switch q {
	case QueryRewards:
		return "rewards"
	case QueryTraffic:
		return "traffic"
	case QueryLeaderboard:
		return "leaderboard"
	default:
		return "unknown"
	}
}

// QueryKey identifies one backend query. Results are only applied while their
// key is still the current key of its view.
type QueryKey struct {
	Type   QueryType
	Period models.Period
	Range  models.DateRange
	Limit  int
}

// RewardsQuery returns the key of a distribution query.
func RewardsQuery(period models.Period) QueryKey {
	return QueryKey{Type: QueryRewards, Period: period}
}

// TrafficQuery returns the key of a page traffic query.
func TrafficQuery(rng models.DateRange) QueryKey {
	return QueryKey{Type: QueryTraffic, Range: rng}
}

// LeaderboardQuery returns the key of a leaderboard query.
func LeaderboardQuery(limit int) QueryKey {
	return QueryKey{Type: QueryLeaderboard, Limit: limit}
}

// String renders the key; equal keys render equally.
func (k QueryKey) String() string {
	switch k.Type {
	case QueryRewards:
		return fmt.Sprintf("%s/%s", k.Type, k.Period)
	case QueryTraffic:
		return fmt.Sprintf("%s/%s", k.Type, k.Range)
	case QueryLeaderboard:
		return fmt.Sprintf("%s/%d", k.Type, k.Limit)
	default:
		return k.Type.String()
	}
}

// RewardsSource fetches range distributions.
type RewardsSource interface {
	Fetch(ctx context.Context, period models.Period) (*models.Snapshot, error)
}

// TrafficSource fetches page traffic reports.
type TrafficSource interface {
	Fetch(ctx context.Context, rng models.DateRange) (*models.TrafficReport, error)
}

// LeaderboardSource fetches top earners.
type LeaderboardSource interface {
	Fetch(ctx context.Context, limit int) ([]models.TopEarner, error)
}

// Sources bundles the backends the manager queries.
type Sources struct {
	Rewards     RewardsSource
	Traffic     TrafficSource
	Leaderboard LeaderboardSource
}

// viewState tracks the current query of one view.
type viewState struct {
	key        QueryKey
	generation uint64
	active     bool
	inFlight   int
	cancel     context.CancelFunc
}
