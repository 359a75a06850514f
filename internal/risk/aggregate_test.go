package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RiskPulse/internal/domain/models"
)

func twoHoldingPortfolio() models.Portfolio {
	return models.Portfolio{
		StartingNAV: 100_000,
		Holdings: []models.Holding{
			{Token: "BTC", CoingeckoID: "bitcoin", Weight: 0.5, Class: models.ClassBlueChip},
			{Token: "PENDLE", CoingeckoID: "pendle", Weight: 0.5, Class: models.ClassOther},
		},
	}
}

func TestEvaluatePortfolioEqualWeightAverages(t *testing.T) {
	e := NewEngine(testModel())
	p := twoHoldingPortfolio()
	snaps := map[string]models.MarketSnapshot{
		"BTC":    snap("BTC", 0.6, 1200e9, 40e9, 0.9),
		"PENDLE": snap("PENDLE", 1.3, 0.8e9, 0.1e9, 0.5),
	}

	out := e.Evaluate(p, snaps, DefaultHorizons())
	require.Len(t, out.Holdings, 2)
	assert.False(t, out.Degraded)

	// equal 50/50 allocation: every portfolio figure is the simple average
	a, b := out.Holdings[0], out.Holdings[1]
	for _, cat := range models.Categories() {
		assert.InDelta(t, (a.Scores[cat]+b.Scores[cat])/2, out.CategoryAverages[cat], 0.01, "category %s", cat)
	}
	for _, horizon := range models.Horizons() {
		assert.InDelta(t, (a.Composites[horizon]+b.Composites[horizon])/2, out.Composites[horizon], 0.01, "horizon %s", horizon)
	}
}

func TestEvaluateFailedFetchExcludesAndRenormalizes(t *testing.T) {
	e := NewEngine(testModel())
	p := models.Portfolio{
		StartingNAV: 100_000,
		Holdings: []models.Holding{
			{Token: "BTC", CoingeckoID: "bitcoin", Weight: 0.5, Class: models.ClassBlueChip},
			{Token: "ETH", CoingeckoID: "ethereum", Weight: 0.3, Class: models.ClassBlueChip},
			{Token: "SOL", CoingeckoID: "solana", Weight: 0.2, Class: models.ClassBlueChip},
		},
	}
	// SOL's fetch failed entirely: no snapshot
	snaps := map[string]models.MarketSnapshot{
		"BTC": snap("BTC", 0.6, 1200e9, 40e9, 0.9),
		"ETH": snap("ETH", 0.8, 400e9, 20e9, 0.9),
	}

	out := e.Evaluate(p, snaps, DefaultHorizons())
	require.Len(t, out.Holdings, 2)
	assert.True(t, out.Degraded)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "SOL")

	// remaining weights renormalized: BTC 0.5/0.8, ETH 0.3/0.8
	btc, eth := out.Holdings[0], out.Holdings[1]
	for _, horizon := range models.Horizons() {
		want := btc.Composites[horizon]*(0.5/0.8) + eth.Composites[horizon]*(0.3/0.8)
		assert.InDelta(t, want, out.Composites[horizon], 0.01, "horizon %s", horizon)
	}
}

func TestEvaluateNoDataAtAll(t *testing.T) {
	e := NewEngine(testModel())
	out := e.Evaluate(twoHoldingPortfolio(), map[string]models.MarketSnapshot{}, DefaultHorizons())
	assert.True(t, out.Degraded)
	assert.Empty(t, out.Holdings)
	assert.Empty(t, out.Composites)
}

func TestEvaluateDegradedPropagatesFromHolding(t *testing.T) {
	e := NewEngine(testModel())
	p := twoHoldingPortfolio()
	snaps := map[string]models.MarketSnapshot{
		"BTC": snap("BTC", 0.6, 1200e9, 40e9, 0.9),
		// PENDLE quote arrived but without a volume figure
		"PENDLE": {
			Token:         "PENDLE",
			Price:         models.Float(4),
			MarketCap:     models.Float(0.8e9),
			Volatility30d: models.Float(1.3),
		},
	}

	out := e.Evaluate(p, snaps, DefaultHorizons())
	require.Len(t, out.Holdings, 2)
	assert.True(t, out.Degraded)
	assert.Equal(t, ScoreMax, out.Holdings[1].Scores[models.CategoryLiquidity])
}

func TestEmphasizeMarket(t *testing.T) {
	tilted := EmphasizeMarket(DefaultHorizons(), models.HorizonShort, 0.1)

	// untouched horizons keep their vectors
	assert.Equal(t, DefaultHorizons()[models.HorizonLong], tilted[models.HorizonLong])

	short := tilted[models.HorizonShort]
	var sum float64
	for _, w := range short {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, short[models.CategoryMarket], DefaultHorizons()[models.HorizonShort][models.CategoryMarket])

	// input must not be mutated
	base := DefaultHorizons()
	_ = EmphasizeMarket(base, models.HorizonMedium, 0.1)
	assert.Equal(t, DefaultHorizons(), base)
}
