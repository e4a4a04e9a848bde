// Package beaconapi reads network data from a beacon chain explorer API.
package beaconapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/vietddude/netwatch/internal/core/domain"
	"github.com/vietddude/netwatch/internal/monitoring/metrics"
)

// ErrDataUnavailable wraps every failure to obtain usable data from the explorer.
var ErrDataUnavailable = errors.New("network data unavailable")

const (
	overviewPath = "/network/overview"
	splitsPath   = "/network/splits"
	epochsPath   = "/epochs"

	// Burst covers the concurrent fetches of one poll cycle.
	limiterBurst = 3
)

// Cache stores decoded responses between polls.
type Cache interface {
	Get(ctx context.Context, key string, out any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// Options configures a Client.
type Options struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 = unlimited
	Cache     Cache
	CacheTTL  time.Duration
	Retry     RetryConfig // zero value selects DefaultRetryConfig
}

// Client is an explorer API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      Cache
	cacheTTL   time.Duration
	retry      RetryConfig
	log        *slog.Logger
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
}

// envelopeError is a response that arrived intact but carries no usable data.
type envelopeError struct {
	reason string
}

func (e *envelopeError) Error() string {
	return e.reason
}

// NewClient creates a client for opts.BaseURL.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = DefaultRetryConfig
	}
	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, limiterBurst),
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		retry:      opts.Retry,
		log:        slog.Default().With("component", "beaconapi"),
	}
}

// Overview fetches the current network overview.
func (c *Client) Overview(ctx context.Context) (*domain.NetworkSnapshot, error) {
	var snapshot domain.NetworkSnapshot
	if err := c.get(ctx, overviewPath, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// Splits fetches the chain branches currently tracked by the explorer.
func (c *Client) Splits(ctx context.Context) (*domain.NetworkSplits, error) {
	var splits domain.NetworkSplits
	if err := c.get(ctx, splitsPath, &splits); err != nil {
		return nil, err
	}
	return &splits, nil
}

// Epochs fetches metrics for the most recent limit epochs, newest first.
func (c *Client) Epochs(ctx context.Context, limit int) ([]domain.EpochMetrics, error) {
	var data struct {
		Epochs []domain.EpochMetrics `json:"epochs"`
	}
	if err := c.get(ctx, epochsPath+"?limit="+strconv.Itoa(limit), &data); err != nil {
		return nil, err
	}
	return data.Epochs, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	source := strings.TrimPrefix(strings.SplitN(path, "?", 2)[0], "/")

	if c.cache != nil {
		if err := c.cache.Get(ctx, path, out); err == nil {
			metrics.UpstreamRequestsTotal.WithLabelValues(source, "cached").Inc()
			return nil
		}
	}

	var data json.RawMessage
	err := withRetry(ctx, c.retry, func() error {
		var err error
		data, err = c.fetch(ctx, path)
		return err
	})
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(source, "error").Inc()
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(source, "error").Inc()
		return fmt.Errorf("%w: decode %s: %w", ErrDataUnavailable, path, err)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(source, "ok").Inc()

	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, path, out, c.cacheTTL); err != nil {
			c.log.Debug("Cache set failed", "path", path, "error", err)
		}
	}
	return nil
}

// fetch returns the data member of the response envelope.
func (c *Client) fetch(ctx context.Context, path string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %w", ErrDataUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrDataUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDataUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s: %w", ErrDataUnavailable, path, &StatusError{StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrDataUnavailable, path, err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrDataUnavailable, path, &envelopeError{reason: err.Error()})
	}
	if env.Status != "OK" {
		return nil, fmt.Errorf("%w: %s: %w", ErrDataUnavailable, path, &envelopeError{reason: fmt.Sprintf("status %q", env.Status)})
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("%w: %s: %w", ErrDataUnavailable, path, &envelopeError{reason: "no data"})
	}
	return env.Data, nil
}
