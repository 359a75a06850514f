package models

import "time"

// RiskCategory is a typed enumeration of the scored risk dimensions.
type RiskCategory string

const (
	CategoryMarket     RiskCategory = "market"
	CategoryLiquidity  RiskCategory = "liquidity"
	CategoryProtocol   RiskCategory = "protocol"
	CategoryRegulatory RiskCategory = "regulatory"
)

// Categories lists all risk categories in canonical order.
func Categories() []RiskCategory {
	return []RiskCategory{CategoryMarket, CategoryLiquidity, CategoryProtocol, CategoryRegulatory}
}

// Horizon is the risk perspective a composite score is weighted for.
type Horizon string

const (
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
)

// Horizons lists all horizons in canonical order.
func Horizons() []Horizon {
	return []Horizon{HorizonShort, HorizonMedium, HorizonLong}
}

// IsValidHorizon returns true if h is a supported horizon.
func IsValidHorizon(h Horizon) bool {
	switch h {
	case HorizonShort, HorizonMedium, HorizonLong:
		return true
	default:
		return false
	}
}

// CategoryScores is a typed score table keyed by risk category. Scores live
// on the 1-5 tier scale.
type CategoryScores map[RiskCategory]float64

// CategoryWeights is a per-horizon weight vector over categories. Weights for
// one horizon sum to 1.0.
type CategoryWeights map[RiskCategory]float64

// HorizonWeights maps each horizon to its category weight vector.
type HorizonWeights map[Horizon]CategoryWeights

// HoldingAssessment is the per-holding scoring result: category scores plus a
// horizon-weighted composite per horizon. Derived and immutable; a new one is
// built on every evaluation.
type HoldingAssessment struct {
	Token      string              `json:"token"`
	Class      Classification      `json:"class"`
	Weight     float64             `json:"weight"`
	Scores     CategoryScores      `json:"scores"`
	Composites map[Horizon]float64 `json:"composites"`
	Snapshot   MarketSnapshot      `json:"snapshot"`
	Degraded   bool                `json:"degraded"`
	Warnings   []string            `json:"warnings,omitempty"`
}

// PositionValue is the live dollar view of one holding in the $100k model
// portfolio.
type PositionValue struct {
	Token        string   `json:"token"`
	AllocPct     float64  `json:"alloc_pct"`
	TargetUSD    string   `json:"target_usd"`
	Price        *float64 `json:"price,omitempty"`
	Units        string   `json:"units,omitempty"`
	CurrentValue string   `json:"current_value_usd,omitempty"`
}

// PortfolioAssessment is the portfolio-level result for one evaluation run.
type PortfolioAssessment struct {
	EvaluationID string              `json:"evaluation_id"`
	EvaluatedAt  time.Time           `json:"evaluated_at"`
	Holdings     []HoldingAssessment `json:"holdings"`
	// Composites is the allocation-weighted portfolio score per horizon.
	Composites map[Horizon]float64 `json:"composites"`
	// CategoryAverages is the allocation-weighted portfolio score per category.
	CategoryAverages CategoryScores  `json:"category_averages"`
	NAV              string          `json:"nav_usd"`
	Positions        []PositionValue `json:"positions"`
	Degraded         bool            `json:"degraded"`
	Warnings         []string        `json:"warnings,omitempty"`
}
