package marketdata

import (
	"context"
	"encoding/json"
	"time"

	drepo "RiskPulse/internal/domain/repository"
	"RiskPulse/pkg/cache"
)

// CachedSource wraps a MarketDataSource and caches daily history series, the
// slow and rate-limited part of a refresh. Markets calls always go through:
// quotes must be live. Cache failures degrade to a direct fetch.
type CachedSource struct {
	src   drepo.MarketDataSource
	cache cache.Service
	ttl   time.Duration
}

// NewCachedSource wraps src with a history cache.
func NewCachedSource(src drepo.MarketDataSource, c cache.Service, ttl time.Duration) *CachedSource {
	return &CachedSource{src: src, cache: c, ttl: ttl}
}

func (c *CachedSource) Markets(ctx context.Context, ids []string) (map[string]drepo.MarketQuote, error) {
	return c.src.Markets(ctx, ids)
}

func (c *CachedSource) DailyHistory(ctx context.Context, id string, days int) ([]float64, error) {
	key := cache.GenerateKeyWithParams("hist", id, days)

	var raw string
	if err := c.cache.Get(ctx, key, &raw); err == nil {
		var prices []float64
		if jerr := json.Unmarshal([]byte(raw), &prices); jerr == nil {
			return prices, nil
		}
	}

	prices, err := c.src.DailyHistory(ctx, id, days)
	if err != nil {
		return nil, err
	}

	if b, jerr := json.Marshal(prices); jerr == nil {
		_ = c.cache.Set(ctx, key, string(b), c.ttl)
	}
	return prices, nil
}

var _ drepo.MarketDataSource = (*CachedSource)(nil)
