package repository

import (
	"context"
)

// MarketQuote is the batched markets payload for one token.
type MarketQuote struct {
	Price     *float64
	MarketCap *float64
	Volume24h *float64
}

// MarketDataSource provides read-only market metrics for the configured
// holdings. Implementations own the timeout and retry policy; callers treat a
// missing entry in the result map as a fetch failure for that token.
type MarketDataSource interface {
	// Markets fetches price, market cap and 24h volume for the given
	// provider IDs in one batched call.
	Markets(ctx context.Context, ids []string) (map[string]MarketQuote, error)
	// DailyHistory fetches up to days daily closing prices for one ID,
	// oldest first.
	DailyHistory(ctx context.Context, id string, days int) ([]float64, error)
}

// TVLSource provides protocol TVL by slug.
type TVLSource interface {
	TVL(ctx context.Context, slug string) (float64, error)
}

// Metrics records operational counters for evaluations and provider calls.
type Metrics interface {
	RecordEvaluation(degraded bool)
	RecordFetchError(provider string)
	RecordNAV(nav float64)
	RecordLatency(op string, seconds float64)
}
