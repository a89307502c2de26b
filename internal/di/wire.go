//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"VolEdge/internal/usecase"
	"VolEdge/pkg/config"
	"VolEdge/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideRegistry,
		ProvideMetrics,

		// Engine
		ProvideVRPClassifier,
		ProvideLiquidityClassifier,
		ProvideScorer,
		ProvideSizer,
		ProvideGuardrail,
		usecase.NewEvaluator,

		// Cache and budget
		ProvideBudgetLedger,
		ProvideRedisCache,
		ProvideResultCache,

		// Collaborators
		ProvideClickHouseClient,
		ProvideHistoryProvider,
		ProvideMarketProvider,
		ProvideSentimentProvider,
		ProvidePipeline,

		// HTTP and application
		ProvideHandler,
		ProvideLimiter,
		ProvideHTTPServer,
		ProvideApp,
	)
	return nil, nil, nil
}
