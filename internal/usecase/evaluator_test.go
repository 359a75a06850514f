package usecase

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskPulse/internal/domain/models"
	drepo "RiskPulse/internal/domain/repository"
	"RiskPulse/internal/risk"
	applogger "RiskPulse/pkg/logger"
)

type fakeMarkets struct {
	quotes        map[string]drepo.MarketQuote
	history       map[string][]float64
	histRequested map[string]bool
	marketsErr    error
}

func (f *fakeMarkets) Markets(ctx context.Context, ids []string) (map[string]drepo.MarketQuote, error) {
	if f.marketsErr != nil {
		return nil, f.marketsErr
	}
	out := make(map[string]drepo.MarketQuote)
	for _, id := range ids {
		if q, ok := f.quotes[id]; ok {
			out[id] = q
		}
	}
	return out, nil
}

func (f *fakeMarkets) DailyHistory(ctx context.Context, id string, days int) ([]float64, error) {
	if f.histRequested == nil {
		f.histRequested = make(map[string]bool)
	}
	f.histRequested[id] = true
	prices, ok := f.history[id]
	if !ok {
		return nil, errors.New("no series")
	}
	return prices, nil
}

type fakeTVL struct {
	tvls map[string]float64
}

func (f *fakeTVL) TVL(ctx context.Context, slug string) (float64, error) {
	v, ok := f.tvls[slug]
	if !ok {
		return 0, errors.New("unknown protocol")
	}
	return v, nil
}

type recordingMetrics struct {
	evaluations int
	degraded    bool
	fetchErrors map[string]int
	nav         float64
}

func (m *recordingMetrics) RecordEvaluation(degraded bool) {
	m.evaluations++
	m.degraded = degraded
}

func (m *recordingMetrics) RecordFetchError(provider string) {
	if m.fetchErrors == nil {
		m.fetchErrors = make(map[string]int)
	}
	m.fetchErrors[provider]++
}

func (m *recordingMetrics) RecordNAV(nav float64) { m.nav = nav }

func (m *recordingMetrics) RecordLatency(op string, sec float64) {}

func testLogger(t *testing.T) *applogger.Logger {
	t.Helper()
	l, err := applogger.New(&applogger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return l
}

func testEngine() *risk.Engine {
	return risk.NewEngine(risk.Model{
		Tiers: risk.Tiers{
			VolLow: 0.5, VolHigh: 1.0,
			CapLarge: 10e9, CapMid: 1e9,
			CorrLow: 0.4, CorrHigh: 0.7,
			LiqRatioHigh: 0.1, LiqRatioLow: 0.02,
			TVLLarge: 1e9, TVLMid: 100e6,
		},
		MarketVolWeight:   0.5,
		MarketCapWeight:   0.3,
		MarketCorrWeight:  0.2,
		StableMarketScore: 1.5,
		Horizons:          risk.DefaultHorizons(),
	})
}

// wavySeries produces a price series with mild daily movement so volatility
// and correlation features have something to chew on.
func wavySeries(base float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = base * (1 + 0.01*math.Sin(float64(i)))
	}
	return out
}

func quote(price, cap, volume float64) drepo.MarketQuote {
	return drepo.MarketQuote{
		Price:     models.Float(price),
		MarketCap: models.Float(cap),
		Volume24h: models.Float(volume),
	}
}

func twoAssetPortfolio() models.Portfolio {
	return models.Portfolio{
		StartingNAV: 100_000,
		Holdings: []models.Holding{
			{Token: "BTC", CoingeckoID: "bitcoin", Weight: 0.6, Class: models.ClassBlueChip},
			{Token: "USDC", CoingeckoID: "usd-coin", Weight: 0.4, Class: models.ClassStable},
		},
	}
}

func newEvaluator(p models.Portfolio, src *fakeMarkets, tvl *fakeTVL, m *recordingMetrics, t *testing.T) *PortfolioEvaluator {
	return NewPortfolioEvaluator(p, 90, 30, true, src, tvl, testEngine(), m, testLogger(t))
}

func TestEvaluateNAVStablePinnedToDollar(t *testing.T) {
	src := &fakeMarkets{
		quotes: map[string]drepo.MarketQuote{
			"bitcoin": quote(50_000, 1200e9, 40e9),
			// provider returned the row but with a null price
			"usd-coin": {MarketCap: models.Float(30e9), Volume24h: models.Float(5e9)},
		},
		history: map[string][]float64{
			"bitcoin":  wavySeries(50_000, 91),
			"ethereum": wavySeries(3_000, 91),
		},
	}
	m := &recordingMetrics{}
	ev := newEvaluator(twoAssetPortfolio(), src, &fakeTVL{}, m, t)

	out := ev.Evaluate(context.Background(), EvaluateParams{})
	require.Len(t, out.Positions, 2)

	btc, usdc := out.Positions[0], out.Positions[1]
	assert.Equal(t, "BTC", btc.Token)
	assert.Equal(t, "60000", btc.TargetUSD)
	assert.Equal(t, "1.2", btc.Units)
	assert.Equal(t, "60000", btc.CurrentValue)

	require.NotNil(t, usdc.Price)
	assert.Equal(t, 1.00, *usdc.Price)
	assert.Equal(t, "40000", usdc.CurrentValue)

	assert.Equal(t, "100000", out.NAV)
	assert.Equal(t, 100_000.0, m.nav)
	assert.Equal(t, 1, m.evaluations)
}

func TestEvaluateFailedHoldingExcluded(t *testing.T) {
	p := models.Portfolio{
		StartingNAV: 100_000,
		Holdings: []models.Holding{
			{Token: "BTC", CoingeckoID: "bitcoin", Weight: 0.5, Class: models.ClassBlueChip},
			{Token: "ETH", CoingeckoID: "ethereum", Weight: 0.3, Class: models.ClassBlueChip},
			{Token: "SOL", CoingeckoID: "solana", Weight: 0.2, Class: models.ClassBlueChip},
		},
	}
	src := &fakeMarkets{
		quotes: map[string]drepo.MarketQuote{
			"bitcoin":  quote(50_000, 1200e9, 40e9),
			"ethereum": quote(3_000, 400e9, 20e9),
			// solana missing: its fetch failed
		},
		history: map[string][]float64{
			"bitcoin":  wavySeries(50_000, 91),
			"ethereum": wavySeries(3_000, 91),
			"solana":   wavySeries(150, 91),
		},
	}
	m := &recordingMetrics{}
	ev := newEvaluator(p, src, &fakeTVL{}, m, t)

	out := ev.Evaluate(context.Background(), EvaluateParams{})
	assert.True(t, out.Degraded)
	assert.True(t, m.degraded)
	require.Len(t, out.Holdings, 2)
	require.NotEmpty(t, out.Warnings)
	assert.Contains(t, out.Warnings[0], "SOL")

	// excluded holding still shows in the NAV table, just without a value
	require.Len(t, out.Positions, 3)
	assert.Nil(t, out.Positions[2].Price)
	assert.Empty(t, out.Positions[2].CurrentValue)
}

func TestEvaluateMarketsTotalFailure(t *testing.T) {
	src := &fakeMarkets{marketsErr: errors.New("provider down")}
	m := &recordingMetrics{}
	ev := newEvaluator(twoAssetPortfolio(), src, &fakeTVL{}, m, t)

	out := ev.Evaluate(context.Background(), EvaluateParams{})
	assert.True(t, out.Degraded)
	assert.Empty(t, out.Holdings)
	assert.GreaterOrEqual(t, m.fetchErrors["coingecko"], 1)
}

func TestEvaluateSkipsStableHistory(t *testing.T) {
	src := &fakeMarkets{
		quotes: map[string]drepo.MarketQuote{
			"bitcoin":  quote(50_000, 1200e9, 40e9),
			"usd-coin": quote(1, 30e9, 5e9),
		},
		history: map[string][]float64{
			"bitcoin":  wavySeries(50_000, 91),
			"ethereum": wavySeries(3_000, 91),
		},
	}
	ev := newEvaluator(twoAssetPortfolio(), src, &fakeTVL{}, &recordingMetrics{}, t)

	ev.Evaluate(context.Background(), EvaluateParams{})
	assert.True(t, src.histRequested["bitcoin"])
	assert.True(t, src.histRequested["ethereum"])
	assert.False(t, src.histRequested["usd-coin"])
}

func TestEvaluateTVLAttached(t *testing.T) {
	p := models.Portfolio{
		StartingNAV: 100_000,
		Holdings: []models.Holding{
			{Token: "AAVE", CoingeckoID: "aave", DefillamaSlug: "aave-v3", Weight: 1.0, Class: models.ClassOther},
		},
	}
	src := &fakeMarkets{
		quotes: map[string]drepo.MarketQuote{
			"aave": quote(90, 1.3e9, 0.2e9),
		},
		history: map[string][]float64{
			"aave":     wavySeries(90, 91),
			"bitcoin":  wavySeries(50_000, 91),
			"ethereum": wavySeries(3_000, 91),
		},
	}
	ev := newEvaluator(p, src, &fakeTVL{tvls: map[string]float64{"aave-v3": 12e9}}, &recordingMetrics{}, t)

	out := ev.Evaluate(context.Background(), EvaluateParams{})
	require.Len(t, out.Holdings, 1)
	assert.Equal(t, risk.ScoreMin, out.Holdings[0].Scores[models.CategoryProtocol])
}

func TestEvaluateTVLFetchFailureDegrades(t *testing.T) {
	p := models.Portfolio{
		StartingNAV: 100_000,
		Holdings: []models.Holding{
			{Token: "UNI", CoingeckoID: "uniswap", DefillamaSlug: "uniswap-v3", Weight: 1.0, Class: models.ClassOther},
		},
	}
	src := &fakeMarkets{
		quotes: map[string]drepo.MarketQuote{
			"uniswap": quote(8, 6e9, 0.3e9),
		},
		history: map[string][]float64{
			"uniswap":  wavySeries(8, 91),
			"bitcoin":  wavySeries(50_000, 91),
			"ethereum": wavySeries(3_000, 91),
		},
	}
	m := &recordingMetrics{}
	ev := newEvaluator(p, src, &fakeTVL{}, m, t)

	out := ev.Evaluate(context.Background(), EvaluateParams{})
	require.Len(t, out.Holdings, 1)
	assert.True(t, out.Degraded)
	assert.Equal(t, risk.ScoreMax, out.Holdings[0].Scores[models.CategoryProtocol])
	assert.Equal(t, 1, m.fetchErrors["defillama"])
}

func TestEvaluateEmphasisTiltsComposite(t *testing.T) {
	src := &fakeMarkets{
		quotes: map[string]drepo.MarketQuote{
			"bitcoin":  quote(50_000, 1200e9, 40e9),
			"usd-coin": quote(1, 30e9, 5e9),
		},
		history: map[string][]float64{
			"bitcoin":  wavySeries(50_000, 91),
			"ethereum": wavySeries(3_000, 91),
		},
	}
	ev := newEvaluator(twoAssetPortfolio(), src, &fakeTVL{}, &recordingMetrics{}, t)

	balanced := ev.Evaluate(context.Background(), EvaluateParams{})
	tilted := ev.Evaluate(context.Background(), EvaluateParams{Emphasis: models.HorizonShort})

	assert.NotEqual(t, balanced.Composites[models.HorizonShort], tilted.Composites[models.HorizonShort])
	// untouched horizons are unchanged by the emphasis knob
	assert.Equal(t, balanced.Composites[models.HorizonLong], tilted.Composites[models.HorizonLong])
}

func TestEvaluateParamsOverrideDays(t *testing.T) {
	src := &fakeMarkets{
		quotes: map[string]drepo.MarketQuote{
			"bitcoin":  quote(50_000, 1200e9, 40e9),
			"usd-coin": quote(1, 30e9, 5e9),
		},
		history: map[string][]float64{
			"bitcoin":  wavySeries(50_000, 181),
			"ethereum": wavySeries(3_000, 181),
		},
	}
	ev := newEvaluator(twoAssetPortfolio(), src, &fakeTVL{}, &recordingMetrics{}, t)

	out := ev.Evaluate(context.Background(), EvaluateParams{Days: 180, VolWindow: 14})
	require.Len(t, out.Holdings, 2)
	_, err := strconv.ParseFloat(out.NAV, 64)
	assert.NoError(t, err)
}
