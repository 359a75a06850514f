package risk

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"RiskPulse/internal/domain/models"
)

// Evaluate scores every holding against its snapshot and aggregates the
// portfolio-level composites. snapshots is keyed by token symbol; a holding
// with no snapshot at all is treated as a failed fetch, excluded from the
// aggregate with the remaining allocation weights renormalized, and the
// result is flagged degraded. Pure: identical inputs yield identical scores.
func (e *Engine) Evaluate(p models.Portfolio, snapshots map[string]models.MarketSnapshot, horizons models.HorizonWeights) models.PortfolioAssessment {
	out := models.PortfolioAssessment{
		EvaluationID:     uuid.NewString(),
		EvaluatedAt:      time.Now().UTC(),
		Holdings:         make([]models.HoldingAssessment, 0, len(p.Holdings)),
		Composites:       make(map[models.Horizon]float64, len(horizons)),
		CategoryAverages: make(models.CategoryScores, 4),
	}

	scoredWeight := 0.0
	for _, h := range p.Holdings {
		snap, ok := snapshots[h.Token]
		if !ok {
			out.Degraded = true
			out.Warnings = append(out.Warnings,
				fmt.Sprintf("%s: market data fetch failed, excluded from portfolio score", h.Token))
			continue
		}
		ha := e.ScoreHolding(h, snap, horizons)
		if ha.Degraded {
			out.Degraded = true
		}
		scoredWeight += h.Weight
		out.Holdings = append(out.Holdings, ha)
	}

	if scoredWeight <= 0 {
		out.Degraded = true
		out.Warnings = append(out.Warnings, "no holdings scored, portfolio composite unavailable")
		return out
	}

	// Allocation-weighted averages over the scored holdings, with weights
	// renormalized so partial data never shrinks the portfolio score.
	for _, ha := range out.Holdings {
		w := ha.Weight / scoredWeight
		for cat, s := range ha.Scores {
			out.CategoryAverages[cat] += s * w
		}
		for horizon, c := range ha.Composites {
			out.Composites[horizon] += c * w
		}
	}
	for cat := range out.CategoryAverages {
		out.CategoryAverages[cat] = round2(out.CategoryAverages[cat])
	}
	for horizon := range out.Composites {
		out.Composites[horizon] = round2(out.Composites[horizon])
	}

	return out
}

// EmphasizeMarket tilts one horizon's market weight up by delta (capped at
// 0.7) and renormalizes that horizon's vector. The input weights are not
// mutated.
func EmphasizeMarket(horizons models.HorizonWeights, target models.Horizon, delta float64) models.HorizonWeights {
	out := make(models.HorizonWeights, len(horizons))
	for horizon, weights := range horizons {
		cloned := make(models.CategoryWeights, len(weights))
		for cat, w := range weights {
			cloned[cat] = w
		}
		if horizon == target {
			m := cloned[models.CategoryMarket] + delta
			if m > 0.7 {
				m = 0.7
			}
			cloned[models.CategoryMarket] = m
			var norm float64
			for _, w := range cloned {
				norm += w
			}
			for cat, w := range cloned {
				cloned[cat] = w / norm
			}
		}
		out[horizon] = cloned
	}
	return out
}
