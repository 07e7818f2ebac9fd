package logisticsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bizconsole/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// QueryEndpoint declares a cached read. Provides names the tags the result
// carries; a mutation invalidating any of them evicts it.
type QueryEndpoint[A, T any] struct {
	Name     string
	Method   string
	Path     func(args A) string
	Provides func(result T, args A) []cache.Tag
}

// MutationEndpoint declares a write. Invalidates names the tags made stale
// by a successful call.
type MutationEndpoint[A, T any] struct {
	Name        string
	Method      string
	Path        func(args A) string
	Body        func(args A) any
	Invalidates func(result T, args A) []cache.Tag
}

// cacheKey is the endpoint name plus the serialized arguments
func cacheKey[A any](name string, args A) (string, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("failed to serialize %s arguments: %w", name, err)
	}
	return name + ":" + string(raw), nil
}

// Query runs a query endpoint through the tag cache. Concurrent misses of the
// same key share one HTTP call.
func Query[A, T any](ctx context.Context, c *Client, ep QueryEndpoint[A, T], args A) (T, error) {
	var zero T
	key, err := cacheKey(ep.Name, args)
	if err != nil {
		return zero, err
	}

	if raw, ok := c.cache.Get(key); ok {
		if c.metrics != nil {
			c.metrics.CacheHit(ep.Name)
		}
		var result T
		if err := json.Unmarshal(raw, &result); err != nil {
			return zero, fmt.Errorf("failed to decode cached %s: %w", ep.Name, err)
		}
		return result, nil
	}
	if c.metrics != nil {
		c.metrics.CacheMiss(ep.Name)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// the shared call outlives a caller that gives up; the others may
		// still be waiting for it
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.sharedTimeout)
		defer cancel()

		since := c.cache.Generation()
		raw, err := c.do(callCtx, methodOr(ep.Method, http.MethodGet), ep.Path(args), nil)
		if err != nil {
			return nil, err
		}
		var result T
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", ep.Name, err)
		}
		var tags []cache.Tag
		if ep.Provides != nil {
			tags = ep.Provides(result, args)
		}
		if !c.cache.SetIfFresh(key, raw, tags, since) {
			c.logger.Debug("Dropped result invalidated while in flight", zap.String("endpoint", ep.Name))
		}
		if c.metrics != nil {
			c.metrics.CacheSize(c.cache.Len())
		}
		return []byte(raw), nil
	})

	var v any
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v = res.Val
	}

	// each caller decodes its own copy
	var result T
	if err := json.Unmarshal(v.([]byte), &result); err != nil {
		return zero, fmt.Errorf("failed to decode %s: %w", ep.Name, err)
	}
	return result, nil
}

// Mutate runs a mutation endpoint and, on success, invalidates the tags it
// names locally and on every instance sharing the invalidator
func Mutate[A, T any](ctx context.Context, c *Client, ep MutationEndpoint[A, T], args A) (T, error) {
	var zero T
	var body any
	if ep.Body != nil {
		body = ep.Body(args)
	}
	raw, err := c.do(ctx, methodOr(ep.Method, http.MethodPost), ep.Path(args), body)
	if err != nil {
		return zero, err
	}

	var result T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return zero, fmt.Errorf("failed to decode %s: %w", ep.Name, err)
		}
	}
	if ep.Invalidates != nil {
		c.invalidate(ctx, ep.Invalidates(result, args))
	}
	return result, nil
}

func methodOr(method, fallback string) string {
	if method == "" {
		return fallback
	}
	return method
}
