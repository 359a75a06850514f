package di

import (
	"io"

	"RiskPulse/internal/domain/repository"
	"RiskPulse/internal/handler/api"
	"RiskPulse/internal/risk"
	"RiskPulse/internal/services/marketdata"
	"RiskPulse/internal/usecase"
	"RiskPulse/pkg/cache"
	"RiskPulse/pkg/config"
	xhttp "RiskPulse/pkg/http"
	applogger "RiskPulse/pkg/logger"
	pkgmetrics "RiskPulse/pkg/metrics"
	"RiskPulse/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return pkgmetrics.New()
}

// ProvideCacheService creates the history cache: memory-over-Redis when Redis
// is enabled, plain in-memory otherwise.
func ProvideCacheService(cfg *config.Config) (cache.Service, error) {
	if cfg.Cache.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix("riskpulse"),
		)
		if err != nil {
			return nil, err
		}
		return cache.NewLayeredCache(rc), nil
	}
	return cache.NewMemoryCache(), nil
}

// ProvideMarketDataSource creates the CoinGecko source with history caching.
func ProvideMarketDataSource(cfg *config.Config, c cache.Service) repository.MarketDataSource {
	return marketdata.NewCachedSource(marketdata.NewCoinGecko(cfg), c, cfg.Cache.HistoryTTL)
}

// ProvideTVLSource creates the DefiLlama TVL source.
func ProvideTVLSource(cfg *config.Config) repository.TVLSource {
	return marketdata.NewDefiLlama(cfg)
}

// ProvideEngine creates the scoring engine from the model config.
func ProvideEngine(cfg *config.Config) *risk.Engine {
	return risk.NewEngine(cfg.Model.Risk)
}

// ProvideEvaluator creates the portfolio evaluation use case.
func ProvideEvaluator(
	cfg *config.Config,
	markets repository.MarketDataSource,
	tvl repository.TVLSource,
	engine *risk.Engine,
	metrics repository.Metrics,
	logger *applogger.Logger,
) *usecase.PortfolioEvaluator {
	return usecase.NewPortfolioEvaluator(
		cfg.Model.Portfolio,
		cfg.Model.HistoryDays,
		cfg.Model.VolWindow,
		cfg.Model.ExcludeStablesForVol,
		markets,
		tvl,
		engine,
		metrics,
		logger,
	)
}

// ProvideHandler creates the dashboard HTTP handler.
func ProvideHandler(logger *applogger.Logger, evaluator *usecase.PortfolioEvaluator) xhttp.Handler {
	return api.NewDashboardHandler(logger, evaluator)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, logger *applogger.Logger, handler xhttp.Handler, c cache.Service) *server.App {
	app := server.New(cfg, logger, handler)
	if closer, ok := c.(io.Closer); ok {
		app.AddCloser(closer)
	}
	return app
}
