package marketdata

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	drepo "RiskPulse/internal/domain/repository"
	"RiskPulse/pkg/cache"
)

type countingSource struct {
	marketCalls  atomic.Int32
	historyCalls atomic.Int32
}

func (s *countingSource) Markets(ctx context.Context, ids []string) (map[string]drepo.MarketQuote, error) {
	s.marketCalls.Add(1)
	return map[string]drepo.MarketQuote{}, nil
}

func (s *countingSource) DailyHistory(ctx context.Context, id string, days int) ([]float64, error) {
	s.historyCalls.Add(1)
	return []float64{100, 101, 102}, nil
}

func TestCachedSourceHistoryHitsCache(t *testing.T) {
	src := &countingSource{}
	c := NewCachedSource(src, cache.NewMemoryCache(), 10*time.Minute)

	first, err := c.DailyHistory(context.Background(), "bitcoin", 90)
	require.NoError(t, err)
	second, err := c.DailyHistory(context.Background(), "bitcoin", 90)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), src.historyCalls.Load())
}

func TestCachedSourceHistoryKeyedByDays(t *testing.T) {
	src := &countingSource{}
	c := NewCachedSource(src, cache.NewMemoryCache(), 10*time.Minute)

	_, err := c.DailyHistory(context.Background(), "bitcoin", 90)
	require.NoError(t, err)
	_, err = c.DailyHistory(context.Background(), "bitcoin", 180)
	require.NoError(t, err)

	assert.Equal(t, int32(2), src.historyCalls.Load())
}

func TestCachedSourceMarketsNeverCached(t *testing.T) {
	src := &countingSource{}
	c := NewCachedSource(src, cache.NewMemoryCache(), 10*time.Minute)

	for i := 0; i < 3; i++ {
		_, err := c.Markets(context.Background(), []string{"bitcoin"})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), src.marketCalls.Load())
}
