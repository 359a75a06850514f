package risk

import (
	"fmt"
	"math"

	"RiskPulse/internal/domain/models"
)

// Model is the scoring configuration: tier thresholds, the market sub-score
// mix and the per-horizon category weight vectors. It is built once from
// config and never mutated.
type Model struct {
	Tiers Tiers `yaml:"tiers"`

	// Market sub-score mix over volatility, cap tier and correlation.
	MarketVolWeight  float64 `yaml:"market_vol_weight" default:"0.5"`
	MarketCapWeight  float64 `yaml:"market_cap_weight" default:"0.3"`
	MarketCorrWeight float64 `yaml:"market_corr_weight" default:"0.2"`

	// StableMarketScore pins the market score for stablecoin sleeves.
	StableMarketScore float64 `yaml:"stable_market_score" default:"1.5"`

	Horizons models.HorizonWeights `yaml:"horizons"`
}

// DefaultHorizons returns the published horizon weight vectors: short term
// overweights market and liquidity, long term protocol and regulatory.
func DefaultHorizons() models.HorizonWeights {
	return models.HorizonWeights{
		models.HorizonShort: {
			models.CategoryMarket: 0.4, models.CategoryLiquidity: 0.4,
			models.CategoryProtocol: 0.1, models.CategoryRegulatory: 0.1,
		},
		models.HorizonMedium: {
			models.CategoryMarket: 0.3, models.CategoryLiquidity: 0.2,
			models.CategoryProtocol: 0.3, models.CategoryRegulatory: 0.2,
		},
		models.HorizonLong: {
			models.CategoryMarket: 0.2, models.CategoryLiquidity: 0.1,
			models.CategoryProtocol: 0.4, models.CategoryRegulatory: 0.3,
		},
	}
}

// regulatoryTable is a pure function of the classification tag.
var regulatoryTable = map[models.Classification]float64{
	models.ClassStable:   3,
	models.ClassBlueChip: 2,
	models.ClassOther:    4,
}

// Engine scores holdings against the model. All methods are pure: no I/O, no
// hidden state, identical inputs produce identical outputs.
type Engine struct {
	model Model
}

// NewEngine creates a scoring engine for the given model.
func NewEngine(model Model) *Engine {
	return &Engine{model: model}
}

// Model returns the engine's model configuration.
func (e *Engine) Model() Model { return e.model }

// ScoreMarket combines volatility, market cap tier and BTC/ETH correlation
// buckets. Stablecoins are pinned to a fixed low score. Missing volatility or
// cap fails closed to the maximum bucket and is reported as a warning.
func (e *Engine) ScoreMarket(s models.MarketSnapshot, stable bool) (float64, []string) {
	if stable {
		return e.model.StableMarketScore, nil
	}
	t := e.model.Tiers

	var warns []string
	volScore := ScoreMax
	if s.Volatility30d != nil {
		volScore = ascendingTier(*s.Volatility30d, t.VolLow, t.VolHigh)
	} else {
		warns = append(warns, fmt.Sprintf("%s: volatility unavailable, scored max", s.Token))
	}

	capScore := ScoreMax
	if s.MarketCap != nil {
		capScore = descendingTier(*s.MarketCap, t.CapMid, t.CapLarge)
	} else {
		warns = append(warns, fmt.Sprintf("%s: market cap unavailable, scored max", s.Token))
	}

	// Correlation defaults to zero when unknown: an uncorrelated asset is
	// the low-risk bucket, so absence here is not penalized.
	avgCorr := (math.Abs(deref(s.CorrBTC)) + math.Abs(deref(s.CorrETH))) / 2
	corrScore := ascendingTier(avgCorr, t.CorrLow, t.CorrHigh)

	score := volScore*e.model.MarketVolWeight +
		capScore*e.model.MarketCapWeight +
		corrScore*e.model.MarketCorrWeight
	return round2(score), warns
}

// ScoreLiquidity buckets the 24h volume to market cap ratio. Either metric
// missing fails closed to the maximum score.
func (e *Engine) ScoreLiquidity(s models.MarketSnapshot) (float64, []string) {
	if s.Volume24h == nil || s.MarketCap == nil || *s.MarketCap <= 0 {
		return ScoreMax, []string{fmt.Sprintf("%s: volume/cap unavailable, liquidity scored max", s.Token)}
	}
	ratio := *s.Volume24h / *s.MarketCap
	t := e.model.Tiers
	switch {
	case ratio > t.LiqRatioHigh:
		return ScoreMin, nil
	case ratio > t.LiqRatioLow:
		return scoreMid, nil
	default:
		return ScoreMax, nil
	}
}

// ScoreProtocol tiers by TVL magnitude. Missing TVL fails closed to the
// maximum score rather than silently averaging in a zero.
func (e *Engine) ScoreProtocol(s models.MarketSnapshot) (float64, []string) {
	if s.TVL == nil {
		return ScoreMax, []string{fmt.Sprintf("%s: TVL unavailable, protocol scored max", s.Token)}
	}
	t := e.model.Tiers
	return descendingTier(*s.TVL, t.TVLMid, t.TVLLarge), nil
}

// ScoreRegulatory is a static heuristic independent of live data.
func (e *Engine) ScoreRegulatory(class models.Classification) float64 {
	if v, ok := regulatoryTable[class]; ok {
		return v
	}
	return ScoreMax
}

// Composite is the dot product of category scores with one horizon's weight
// vector.
func Composite(scores models.CategoryScores, weights models.CategoryWeights) float64 {
	var sum float64
	for cat, w := range weights {
		sum += scores[cat] * w
	}
	return round2(sum)
}

// ScoreHolding builds the full per-holding assessment for one snapshot.
func (e *Engine) ScoreHolding(h models.Holding, s models.MarketSnapshot, horizons models.HorizonWeights) models.HoldingAssessment {
	var warns []string

	market, w := e.ScoreMarket(s, h.IsStable())
	warns = append(warns, w...)
	liquidity, w := e.ScoreLiquidity(s)
	warns = append(warns, w...)
	protocol, w := e.ScoreProtocol(s)
	warns = append(warns, w...)

	scores := models.CategoryScores{
		models.CategoryMarket:     market,
		models.CategoryLiquidity:  liquidity,
		models.CategoryProtocol:   protocol,
		models.CategoryRegulatory: e.ScoreRegulatory(h.Class),
	}

	composites := make(map[models.Horizon]float64, len(horizons))
	for horizon, weights := range horizons {
		composites[horizon] = Composite(scores, weights)
	}

	return models.HoldingAssessment{
		Token:      h.Token,
		Class:      h.Class,
		Weight:     h.Weight,
		Scores:     scores,
		Composites: composites,
		Snapshot:   s,
		Degraded:   len(warns) > 0,
		Warnings:   warns,
	}
}

func deref(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
