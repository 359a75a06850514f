package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"RiskPulse/internal/domain/models"
	drepo "RiskPulse/internal/domain/repository"
	"RiskPulse/internal/risk"
	"RiskPulse/internal/services/features"
	applogger "RiskPulse/pkg/logger"
)

// Reference series used for the correlation columns.
const (
	refBTC = "bitcoin"
	refETH = "ethereum"
)

// emphasisDelta is the market-weight tilt applied by the horizon emphasis knob.
const emphasisDelta = 0.1

// EvaluateParams are the per-request knobs of one evaluation run.
type EvaluateParams struct {
	// Emphasis tilts one horizon's market weight; empty means balanced.
	Emphasis  models.Horizon
	Days      int
	VolWindow int
}

// PortfolioEvaluator runs one synchronous evaluation per dashboard refresh:
// fetch quotes, history and TVL, derive volatility and correlations, score
// through the pure engine and attach the live NAV view. All provider failures
// degrade the result instead of failing the run; the scoring core itself
// never performs I/O.
type PortfolioEvaluator struct {
	portfolio models.Portfolio
	histDays  int
	volWindow int
	skipStableVol bool

	markets drepo.MarketDataSource
	tvl     drepo.TVLSource
	engine  *risk.Engine
	metrics drepo.Metrics
	logger  *applogger.Logger
}

// NewPortfolioEvaluator creates the evaluation orchestrator.
func NewPortfolioEvaluator(
	portfolio models.Portfolio,
	histDays, volWindow int,
	skipStableVol bool,
	markets drepo.MarketDataSource,
	tvl drepo.TVLSource,
	engine *risk.Engine,
	metrics drepo.Metrics,
	logger *applogger.Logger,
) *PortfolioEvaluator {
	return &PortfolioEvaluator{
		portfolio:     portfolio,
		histDays:      histDays,
		volWindow:     volWindow,
		skipStableVol: skipStableVol,
		markets:       markets,
		tvl:           tvl,
		engine:        engine,
		metrics:       metrics,
		logger:        logger,
	}
}

// Portfolio returns the static portfolio definition.
func (e *PortfolioEvaluator) Portfolio() models.Portfolio { return e.portfolio }

// Evaluate runs one full scoring pass and returns the portfolio assessment.
func (e *PortfolioEvaluator) Evaluate(ctx context.Context, params EvaluateParams) models.PortfolioAssessment {
	start := time.Now()

	days := params.Days
	if days <= 0 {
		days = e.histDays
	}
	window := params.VolWindow
	if window <= 0 {
		window = e.volWindow
	}

	quotes := e.fetchQuotes(ctx)
	returns := e.fetchReturns(ctx, days)
	snapshots := e.buildSnapshots(ctx, quotes, returns, window)

	horizons := e.engine.Model().Horizons
	if models.IsValidHorizon(params.Emphasis) {
		horizons = risk.EmphasizeMarket(horizons, params.Emphasis, emphasisDelta)
	}

	out := e.engine.Evaluate(e.portfolio, snapshots, horizons)
	e.attachNAV(&out)

	e.metrics.RecordEvaluation(out.Degraded)
	e.metrics.RecordLatency("evaluate", time.Since(start).Seconds())
	e.logger.Info("portfolio evaluated",
		applogger.String("evaluation_id", out.EvaluationID),
		applogger.Int("holdings", len(out.Holdings)),
		applogger.Bool("degraded", out.Degraded),
	)
	return out
}

// fetchQuotes batches the markets call; a total failure yields an empty map
// and every holding is excluded downstream.
func (e *PortfolioEvaluator) fetchQuotes(ctx context.Context) map[string]drepo.MarketQuote {
	ids := make([]string, 0, len(e.portfolio.Holdings))
	for _, h := range e.portfolio.Holdings {
		ids = append(ids, h.CoingeckoID)
	}
	quotes, err := e.markets.Markets(ctx, ids)
	if err != nil {
		e.metrics.RecordFetchError("coingecko")
		e.logger.Error("markets fetch failed", applogger.Error(err))
		return map[string]drepo.MarketQuote{}
	}
	return quotes
}

// fetchReturns fetches daily history for each non-stable holding plus the
// BTC/ETH reference series and converts them to daily returns.
func (e *PortfolioEvaluator) fetchReturns(ctx context.Context, days int) map[string][]float64 {
	wanted := map[string]bool{refBTC: true, refETH: true}
	for _, h := range e.portfolio.Holdings {
		if h.IsStable() && e.skipStableVol {
			continue
		}
		wanted[h.CoingeckoID] = true
	}

	out := make(map[string][]float64, len(wanted))
	for id := range wanted {
		prices, err := e.markets.DailyHistory(ctx, id, days)
		if err != nil {
			e.metrics.RecordFetchError("coingecko")
			e.logger.Warn("history fetch failed", applogger.String("id", id), applogger.Error(err))
			continue
		}
		if rets := features.DailyReturns(prices); rets != nil {
			out[id] = rets
		}
	}
	return out
}

// buildSnapshots assembles one MarketSnapshot per holding that has a quote.
// Holdings absent from quotes get no snapshot: that is the failed-fetch
// signal the aggregator's exclusion policy keys on.
func (e *PortfolioEvaluator) buildSnapshots(
	ctx context.Context,
	quotes map[string]drepo.MarketQuote,
	returns map[string][]float64,
	window int,
) map[string]models.MarketSnapshot {
	now := time.Now().UTC()
	btc := returns[refBTC]
	eth := returns[refETH]

	snapshots := make(map[string]models.MarketSnapshot, len(e.portfolio.Holdings))
	for _, h := range e.portfolio.Holdings {
		q, ok := quotes[h.CoingeckoID]
		if !ok {
			continue
		}
		s := models.MarketSnapshot{
			Token:     h.Token,
			FetchedAt: now,
			Price:     q.Price,
			MarketCap: q.MarketCap,
			Volume24h: q.Volume24h,
		}
		// A row of all-null fields is a failed fetch, not a scorable snapshot.
		if !s.HasMarketData() {
			continue
		}

		if rets, ok := returns[h.CoingeckoID]; ok {
			if vol, ok := features.RollingVolatility(rets, window); ok {
				s.Volatility30d = models.Float(vol)
			}
			if c, ok := features.Correlation(rets, btc); ok {
				s.CorrBTC = models.Float(c)
			}
			if c, ok := features.Correlation(rets, eth); ok {
				s.CorrETH = models.Float(c)
			}
		}

		if h.DefillamaSlug != "" {
			if tvl, err := e.tvl.TVL(ctx, h.DefillamaSlug); err != nil {
				e.metrics.RecordFetchError("defillama")
				e.logger.Warn("tvl fetch failed", applogger.String("slug", h.DefillamaSlug), applogger.Error(err))
			} else {
				s.TVL = models.Float(tvl)
			}
		}

		snapshots[h.Token] = s
	}
	return snapshots
}

// attachNAV builds the $100k live portfolio view. A stablecoin with no live
// price is pinned to $1.00 so the NAV still sums.
func (e *PortfolioEvaluator) attachNAV(out *models.PortfolioAssessment) {
	startingNAV := decimal.NewFromFloat(e.portfolio.StartingNAV)
	nav := decimal.Zero
	positions := make([]models.PositionValue, 0, len(e.portfolio.Holdings))

	byToken := make(map[string]models.HoldingAssessment, len(out.Holdings))
	for _, ha := range out.Holdings {
		byToken[ha.Token] = ha
	}

	for _, h := range e.portfolio.Holdings {
		target := startingNAV.Mul(decimal.NewFromFloat(h.Weight))
		pos := models.PositionValue{
			Token:     h.Token,
			AllocPct:  h.Weight * 100,
			TargetUSD: target.Round(2).String(),
		}

		var price *float64
		if ha, ok := byToken[h.Token]; ok {
			price = ha.Snapshot.Price
		}
		if price == nil && h.IsStable() {
			price = models.Float(1.00)
		}
		if price != nil && *price > 0 {
			p := decimal.NewFromFloat(*price)
			units := target.DivRound(p, 8)
			value := units.Mul(p)
			pos.Price = price
			pos.Units = units.String()
			pos.CurrentValue = value.Round(2).String()
			nav = nav.Add(value)
		}
		positions = append(positions, pos)
	}

	out.Positions = positions
	out.NAV = nav.Round(2).String()
	navF, _ := nav.Float64()
	e.metrics.RecordNAV(navF)
}
