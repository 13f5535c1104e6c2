// Package leaderboard fetches the top reward points earners.
package leaderboard

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/models"
	"github.com/j-veylop/spicegold-dashboard-tui/internal/services/api"
)

// DefaultLimit is used when no positive limit is configured.
const DefaultLimit = 50

// Getter retrieves the data member of backend responses.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
}

// Service fetches the leaderboard.
type Service struct {
	client Getter
}

// New creates a leaderboard service.
func New(client Getter) *Service {
	return &Service{client: client}
}

// Fetch returns at most limit earners ordered by rank.
func (s *Service) Fetch(ctx context.Context, limit int) ([]models.TopEarner, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	data, err := s.client.Get(ctx, api.PathTopEarners, q)
	if err != nil {
		return nil, err
	}

	earners, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return TopN(earners, limit), nil
}

// Parse decodes the leaderboard payload and orders it by rank. Earners
// without a rank keep their received position after the ranked ones.
func Parse(data json.RawMessage) ([]models.TopEarner, error) {
	var earners []models.TopEarner
	if err := json.Unmarshal(data, &earners); err != nil {
		return nil, fmt.Errorf("failed to decode leaderboard: %w", err)
	}
	if earners == nil {
		earners = []models.TopEarner{}
	}

	slices.SortStableFunc(earners, func(a, b models.TopEarner) int {
		switch {
		case a.Rank <= 0 && b.Rank <= 0:
			return 0
		case a.Rank <= 0:
			return 1
		case b.Rank <= 0:
			return -1
		}
		return cmp.Compare(a.Rank, b.Rank)
	})
	return earners, nil
}

// TopN returns the first n earners without modifying the input.
func TopN(earners []models.TopEarner, n int) []models.TopEarner {
	if n <= 0 || n >= len(earners) {
		return slices.Clone(earners)
	}
	return slices.Clone(earners[:n])
}

// DisplayName returns the earner's full name, or the developer id when no
// name is known.
func DisplayName(e models.TopEarner) string {
	name := strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
	if name != "" {
		return name
	}
	if e.DeveloperID != "" {
		return e.DeveloperID
	}
	return e.LinkedID
}
