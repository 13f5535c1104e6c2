// Package api provides the HTTP client for the SpiceGold analytics backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/spicegold-dashboard-tui/internal/logger"
)

// Backend endpoints.
const (
	PathRangeTillDate = "/reward_points_range_analytics_till_date"
	PathRangeDaily    = "/reward_points_range_analytics_daily"
	PathTopEarners    = "/top_reward_points_earners"
	PathPageTraffic   = "/test_vs_result_daily"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultMaxAttempts = 3
	defaultBackoff     = 500 * time.Millisecond
	userAgent          = "spicegold-dashboard-tui"
)

// Envelope wraps every backend response.
type Envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Code    int             `json:"code"`
}

// Client performs requests against the analytics backend.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	token       string
	maxAttempts int
	backoff     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetry sets the number of attempts for transport failures and the
// initial backoff, which doubles after every failed attempt.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
		if backoff >= 0 {
			c.backoff = backoff
		}
	}
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient:  &http.Client{Timeout: defaultTimeout},
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get fetches path and returns the envelope's data. Transport failures are
// retried with exponential backoff; application errors are returned as is.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	body, err := c.GetRaw(ctx, path, query)
	if err != nil {
		return nil, err
	}
	data, err := DecodeEnvelope(body)
	if err != nil {
		var appErr *ApplicationError
		if errors.As(err, &appErr) {
			appErr.Path = path
		}
		return nil, err
	}
	return data, nil
}

// GetRaw fetches path and returns the undecoded response body.
func (c *Client) GetRaw(ctx context.Context, path string, query url.Values) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body []byte
	var err error

	backoff := c.backoff
	for attempt := range c.maxAttempts {
		body, err = c.do(ctx, path, target)
		if err == nil || !IsRetryable(err) || ctx.Err() != nil {
			break
		}

		logger.Warn("backend request failed", "path", path, "attempt", attempt+1, "error", err)

		if attempt < c.maxAttempts-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, path, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{Path: path, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	logger.Debug("backend request",
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", bytes.TrimSpace(body)),
		}
	}

	return body, nil
}

// DecodeEnvelope unwraps a backend response body. A code other than 200 is
// reported as *ApplicationError carrying the backend message.
func DecodeEnvelope(body []byte) (json.RawMessage, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if env.Code != http.StatusOK {
		return nil, &ApplicationError{Code: env.Code, Message: env.Message}
	}
	return env.Data, nil
}
