package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"predictd/pkg/types"
)

// Cached wraps a Client with time-bounded memoization of successful results.
// Identical (model, temperature, topN, text) requests within the TTL are
// served from memory; failures are never cached. Trades the live-call cost
// model for fewer upstream calls, so it is only constructed when the
// operator opts in via configuration.
type Cached struct {
	inner *Client
	cache *ttlcache.Cache[string, *types.PredictionResult]
}

// NewCached builds a caching wrapper around inner with the given TTL.
func NewCached(inner *Client, ttl time.Duration) *Cached {
	c := ttlcache.New[string, *types.PredictionResult](
		ttlcache.WithTTL[string, *types.PredictionResult](ttl),
		ttlcache.WithDisableTouchOnHit[string, *types.PredictionResult](),
	)
	go c.Start()
	return &Cached{inner: inner, cache: c}
}

// Close stops the cache expiration loop.
func (c *Cached) Close() { c.cache.Stop() }

// DefaultModel returns the wrapped client's default profile id.
func (c *Cached) DefaultModel() string { return c.inner.DefaultModel() }

// Predict serves from cache when possible, otherwise delegates to the
// wrapped client and retains the result.
func (c *Cached) Predict(ctx context.Context, req types.PredictRequest) (*types.PredictionResult, error) {
	norm, prof, err := c.inner.resolve(req)
	if err != nil {
		return nil, err
	}
	key := cacheKey(prof.ID, norm)
	if item := c.cache.Get(key); item != nil {
		return copyResult(item.Value()), nil
	}
	res, err := c.inner.Predict(ctx, norm)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, res, ttlcache.DefaultTTL)
	return copyResult(res), nil
}

func cacheKey(model string, req types.PredictRequest) string {
	return fmt.Sprintf("%s|%.4f|%d|%s", model, req.Temperature, req.TopN, req.Text)
}

// copyResult shields cached entries from caller mutation.
func copyResult(r *types.PredictionResult) *types.PredictionResult {
	out := *r
	out.Candidates = append([]types.Candidate(nil), r.Candidates...)
	return &out
}
