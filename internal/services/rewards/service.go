package rewards

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/api"
)

// Fetcher retrieves raw backend responses.
type Fetcher interface {
	GetRaw(ctx context.Context, path string, query url.Values) ([]byte, error)
}

// Service fetches and normalizes range analytics.
type Service struct {
	client Fetcher
	now    func() time.Time
}

// New creates a rewards service.
func New(client Fetcher) *Service {
	return &Service{client: client, now: time.Now}
}

// Endpoint returns the path and query serving a period.
func Endpoint(period models.Period) (string, url.Values) {
	if period == models.PeriodOverall {
		return api.PathRangeTillDate, nil
	}
	q := url.Values{}
	q.Set("range", period.RangeCode())
	return api.PathRangeDaily, q
}

// Fetch retrieves the distribution of a period.
func (s *Service) Fetch(ctx context.Context, period models.Period) (*models.Snapshot, error) {
	path, query := Endpoint(period)

	body, err := s.client.GetRaw(ctx, path, query)
	if err != nil {
		return nil, err
	}

	snap, err := Normalize(body, period)
	if err != nil {
		var appErr *api.ApplicationError
		if errors.As(err, &appErr) {
			appErr.Path = path
			return nil, appErr
		}
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	snap.FetchedAt = s.now()
	return snap, nil
}
