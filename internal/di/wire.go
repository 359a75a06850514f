//go:build wireinject
// +build wireinject

package di

import (
	"RiskPulse/pkg/config"
	"RiskPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCacheService,
		ProvideMarketDataSource,
		ProvideTVLSource,

		// Scoring
		ProvideEngine,
		ProvideEvaluator,

		// HTTP
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
