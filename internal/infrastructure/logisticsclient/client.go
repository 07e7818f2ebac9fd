// Package logisticsclient is a REST client for the logistics API. Endpoints
// are declared once with the cache tags their results provide or invalidate;
// query results are cached by tag, identical in-flight queries are shared
// and successful mutations drop every cached result they make stale.
package logisticsclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bizconsole/backend/internal/infrastructure/cache"
	"github.com/bizconsole/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx logistics response
type APIError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("logistics api: %d %s", e.Code, e.Message)
}

// IsNotFound reports a 404
func (e *APIError) IsNotFound() bool { return e.Code == http.StatusNotFound }

// envelope is the {code, status, data, message} wrapper of every response
type envelope struct {
	Code    int             `json:"code"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// Metrics receives cache statistics; *telemetry.Metrics satisfies it
type Metrics interface {
	CacheHit(endpoint string)
	CacheMiss(endpoint string)
	CacheInvalidated(tagType string, n int)
	CacheSize(n int)
}

// Client talks to one logistics API base URL
type Client struct {
	baseURL     string
	http        *http.Client
	cache       *cache.TagCache
	ownsCache   bool
	invalidator cache.TagInvalidator
	metrics     Metrics
	logger      *zap.Logger
	group       singleflight.Group
	token       string

	// bounds a shared query call detached from its callers
	sharedTimeout time.Duration
	cacheOpts     []cache.TagCacheOption
}

// Option configures Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client. A client timeout also
// bounds shared query calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
			if hc.Timeout > 0 {
				c.sharedTimeout = hc.Timeout
			}
		}
	}
}

// WithCache shares a cache; the caller closes it
func WithCache(tc *cache.TagCache) Option {
	return func(c *Client) {
		if tc != nil {
			c.cache = tc
		}
	}
}

// WithCacheOptions configures the cache the client creates when none is shared
func WithCacheOptions(opts ...cache.TagCacheOption) Option {
	return func(c *Client) { c.cacheOpts = append(c.cacheOpts, opts...) }
}

// WithInvalidator publishes local invalidations to other instances; Listen
// applies theirs
func WithInvalidator(inv cache.TagInvalidator) Option {
	return func(c *Client) { c.invalidator = inv }
}

// WithMetrics records cache hits, misses and invalidations
func WithMetrics(m Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithBearerToken authenticates every request with a console access token
func WithBearerToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for baseURL, e.g. http://localhost:8080/logistics/api/v1
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  zap.NewNop(),

		sharedTimeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = cache.NewTagCache(append([]cache.TagCacheOption{cache.WithCacheLogger(c.logger)}, c.cacheOpts...)...)
		c.ownsCache = true
	}
	return c
}

// NewFromConfig creates a client from the logistics client and cache settings
func NewFromConfig(cfg *config.Config, opts ...Option) *Client {
	base := []Option{WithCacheOptions(cache.WithTTL(cfg.Cache.TTL), cache.WithCleanupInterval(cfg.Cache.CleanupInterval))}
	if cfg.LogisticsClient.Timeout > 0 {
		base = append(base, WithHTTPClient(&http.Client{Timeout: cfg.LogisticsClient.Timeout}))
	}
	return New(cfg.LogisticsClient.BaseURL, append(base, opts...)...)
}

// Cache exposes the tag cache, mainly for stats
func (c *Client) Cache() *cache.TagCache { return c.cache }

// Listen applies invalidations published by other instances until ctx ends.
// Without an invalidator it returns immediately.
func (c *Client) Listen(ctx context.Context) error {
	if c.invalidator == nil {
		return nil
	}
	return c.invalidator.Subscribe(ctx, c.invalidateLocal)
}

// Close stops the cache cleanup (when owned) and the invalidator
func (c *Client) Close() error {
	if c.ownsCache {
		c.cache.Close()
	}
	if c.invalidator != nil {
		return c.invalidator.Close()
	}
	return nil
}

// invalidate drops tags locally and tells the other instances
func (c *Client) invalidate(ctx context.Context, tags []cache.Tag) {
	if len(tags) == 0 {
		return
	}
	c.invalidateLocal(tags)
	if c.invalidator != nil {
		if err := c.invalidator.Publish(ctx, tags); err != nil {
			c.logger.Warn("Failed to publish cache invalidation", zap.Error(err))
		}
	}
}

func (c *Client) invalidateLocal(tags []cache.Tag) {
	removed := c.cache.Invalidate(tags...)
	if c.metrics == nil {
		return
	}
	for tagType, n := range removed {
		c.metrics.CacheInvalidated(tagType, n)
	}
	c.metrics.CacheSize(c.cache.Len())
}

// do sends the request and returns the unwrapped data of a success envelope
func (c *Client) do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.logger.Debug("Logistics API call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Code: resp.StatusCode, Status: "error", Message: http.StatusText(resp.StatusCode)}
		if decodeErr == nil && env.Message != "" {
			apiErr.Message = env.Message
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
	}
	return env.Data, nil
}
