package traffic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/api"
)

// Getter retrieves the data member of backend responses.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
}

// Service fetches page traffic reports.
type Service struct {
	client Getter
	now    func() time.Time
}

// New creates a traffic service.
func New(client Getter) *Service {
	return &Service{client: client, now: time.Now}
}

// Query returns the query parameters selecting rng. Explicit dates win over a
// range code.
func Query(rng models.DateRange) url.Values {
	q := url.Values{}
	if !rng.HasDates() {
		if rng.Code != "" {
			q.Set("range", rng.Code)
		}
		return q
	}
	if rng.From != "" {
		q.Set("from", rng.From)
	}
	if rng.To != "" {
		q.Set("to", rng.To)
	}
	return q
}

// Fetch retrieves and aggregates page traffic within rng.
func (s *Service) Fetch(ctx context.Context, rng models.DateRange) (*models.TrafficReport, error) {
	data, err := s.client.Get(ctx, api.PathPageTraffic, Query(rng))
	if err != nil {
		return nil, err
	}

	records, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page traffic: %w", err)
	}
	return BuildReport(records, rng, s.now()), nil
}
