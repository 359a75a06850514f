package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	models "RiskPulse/internal/domain/models"
	svcmetrics "RiskPulse/internal/service/metrics"
	"RiskPulse/internal/usecase"
	xhttp "RiskPulse/pkg/http"
	xlogger "RiskPulse/pkg/logger"
	xutil "RiskPulse/pkg/util"
)

// DashboardHandler serves the risk dashboard API: the evaluated risk table,
// a CSV export of the same table, and the static portfolio definition.
type DashboardHandler struct {
	logger    *xlogger.Logger
	evaluator *usecase.PortfolioEvaluator
}

func NewDashboardHandler(logger *xlogger.Logger, evaluator *usecase.PortfolioEvaluator) *DashboardHandler {
	return &DashboardHandler{logger: logger, evaluator: evaluator}
}

func (h *DashboardHandler) RegisterRoutes(e *echo.Echo) {
	svcmetrics.Register()
	g := e.Group("/api")
	g.GET("/risk", h.Risk)
	g.GET("/risk/export", h.Export)
	g.GET("/portfolio", h.Portfolio)
	e.GET("/healthz", h.Health)
}

// Risk runs a full evaluation and returns the per-holding risk table plus the
// portfolio composites.
func (h *DashboardHandler) Risk(c echo.Context) error {
	start := time.Now()
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.DashboardErrors.WithLabelValues("risk").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	res := h.evaluator.Evaluate(c.Request().Context(), usecase.EvaluateParams{
		Emphasis:  emphasisHorizon(req.Emphasis),
		Days:      req.Days,
		VolWindow: req.VolWindow,
	})

	svcmetrics.DashboardLatency.WithLabelValues("risk").Observe(time.Since(start).Seconds())
	return xhttp.SuccessResponse(c, res)
}

// Export returns the same evaluation as a CSV download.
func (h *DashboardHandler) Export(c echo.Context) error {
	start := time.Now()
	req := &models.ExportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		svcmetrics.DashboardErrors.WithLabelValues("export").Inc()
		return xhttp.BadRequestResponse(c, verr)
	}

	res := h.evaluator.Evaluate(c.Request().Context(), usecase.EvaluateParams{
		Emphasis:  emphasisHorizon(req.Emphasis),
		Days:      req.Days,
		VolWindow: req.VolWindow,
	})

	csvBody, err := renderCSV(res)
	if err != nil {
		h.logger.Error("csv render error", xlogger.Error(err))
		svcmetrics.DashboardErrors.WithLabelValues("export").Inc()
		return xhttp.InternalServerErrorResponse(c)
	}

	svcmetrics.DashboardLatency.WithLabelValues("export").Observe(time.Since(start).Seconds())
	filename := fmt.Sprintf("risk_table_%s.csv", xutil.DayStamp(res.EvaluatedAt))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, "text/csv", []byte(csvBody))
}

type portfolioHolding struct {
	models.Holding
	TargetUSD float64 `json:"target_usd"`
}

type portfolioResponse struct {
	StartingNAV float64            `json:"starting_nav"`
	Holdings    []portfolioHolding `json:"holdings"`
}

// Portfolio returns the static portfolio definition with NAV targets.
func (h *DashboardHandler) Portfolio(c echo.Context) error {
	p := h.evaluator.Portfolio()
	res := portfolioResponse{
		StartingNAV: p.StartingNAV,
		Holdings:    make([]portfolioHolding, 0, len(p.Holdings)),
	}
	for _, holding := range p.Holdings {
		res.Holdings = append(res.Holdings, portfolioHolding{
			Holding:   holding,
			TargetUSD: holding.Weight * p.StartingNAV,
		})
	}
	return xhttp.SuccessResponse(c, res)
}

// Health is the liveness endpoint.
func (h *DashboardHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func emphasisHorizon(s string) models.Horizon {
	h := models.Horizon(s)
	if models.IsValidHorizon(h) {
		return h
	}
	return ""
}
