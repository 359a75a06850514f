package marketdata

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	drepo "RiskPulse/internal/domain/repository"
	"RiskPulse/internal/service/ratelimit"
	"RiskPulse/pkg/config"
	xhttp "RiskPulse/pkg/http"
)

// ErrFetch marks provider failures surfaced to the evaluation boundary.
var ErrFetch = errors.New("marketdata: fetch failed")

// CoinGecko implements MarketDataSource against the CoinGecko REST API.
// Timeout and retry come from config, not library defaults; calls go through
// a token-bucket limiter and a circuit breaker so a flapping provider fails
// fast instead of stalling every dashboard refresh.
type CoinGecko struct {
	baseURL  string
	apiKey   string
	attempts int
	client   *xhttp.Client
	limiter  *ratelimit.Limiter
	capacity float64
	refill   float64
	breaker  *gobreaker.CircuitBreaker
}

// NewCoinGecko creates a CoinGecko market data source from config.
func NewCoinGecko(cfg *config.Config) *CoinGecko {
	st := gobreaker.Settings{Name: "coingecko"}
	st.Interval = 60 * time.Second
	st.Timeout = 60 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}
	return &CoinGecko{
		baseURL:  strings.TrimRight(cfg.Coingecko.BaseURL, "/"),
		apiKey:   cfg.Coingecko.APIKey,
		attempts: cfg.Coingecko.Attempts,
		client:   xhttp.NewClient(xhttp.WithTimeout(cfg.Coingecko.Timeout)),
		limiter:  ratelimit.New(),
		capacity: cfg.Coingecko.RateCapacity,
		refill:   cfg.Coingecko.RatePerSec,
		breaker:  gobreaker.NewCircuitBreaker(st),
	}
}

type cgMarket struct {
	ID           string   `json:"id"`
	CurrentPrice *float64 `json:"current_price"`
	MarketCap    *float64 `json:"market_cap"`
	TotalVolume  *float64 `json:"total_volume"`
}

// Markets fetches price, market cap and 24h volume for all ids in one call.
func (c *CoinGecko) Markets(ctx context.Context, ids []string) (map[string]drepo.MarketQuote, error) {
	if len(ids) == 0 {
		return map[string]drepo.MarketQuote{}, nil
	}
	uniq := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" && !seen[id] {
			seen[id] = true
			uniq = append(uniq, id)
		}
	}
	sort.Strings(uniq)

	var rows []cgMarket
	err := c.get(ctx, "/coins/markets", map[string][]string{
		"vs_currency": {"usd"},
		"ids":         {strings.Join(uniq, ",")},
		"per_page":    {"250"},
		"page":        {"1"},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("%w: markets: %v", ErrFetch, err)
	}

	out := make(map[string]drepo.MarketQuote, len(rows))
	for _, r := range rows {
		out[r.ID] = drepo.MarketQuote{
			Price:     r.CurrentPrice,
			MarketCap: r.MarketCap,
			Volume24h: r.TotalVolume,
		}
	}
	return out, nil
}

type cgChart struct {
	Prices [][2]float64 `json:"prices"`
}

// DailyHistory fetches daily closing prices for one id, oldest first.
func (c *CoinGecko) DailyHistory(ctx context.Context, id string, days int) ([]float64, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrFetch)
	}
	var chart cgChart
	err := c.get(ctx, "/coins/"+id+"/market_chart", map[string][]string{
		"vs_currency": {"usd"},
		"days":        {strconv.Itoa(days)},
		"interval":    {"daily"},
	}, &chart)
	if err != nil {
		return nil, fmt.Errorf("%w: history %s: %v", ErrFetch, id, err)
	}
	prices := make([]float64, 0, len(chart.Prices))
	for _, p := range chart.Prices {
		prices = append(prices, p[1])
	}
	return prices, nil
}

// get performs a rate-limited GET with retries behind the circuit breaker.
func (c *CoinGecko) get(ctx context.Context, path string, query map[string][]string, dest interface{}) error {
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["x-cg-pro-api-key"] = c.apiKey
	}

	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if werr := c.limiter.Wait(ctx, "coingecko", c.capacity, c.refill); werr != nil {
			return werr
		}
		_, err = c.breaker.Execute(func() (interface{}, error) {
			return nil, c.client.SendAndParse(ctx, &xhttp.RequestOptions{
				Method:      xhttp.MethodGet,
				URL:         c.baseURL + path,
				Headers:     headers,
				QueryParams: query,
			}, dest)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) {
			return err
		}
		select {
		case <-time.After(time.Duration(attempt) * 250 * time.Millisecond):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

var _ drepo.MarketDataSource = (*CoinGecko)(nil)
