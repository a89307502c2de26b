// Injector for wire.go, kept by hand in the shape `wire` emits.
// Running `wire ./internal/di` regenerates it from the provider set.

//go:build !wireinject
// +build !wireinject

package di

import (
	"VolEdge/internal/usecase"
	"VolEdge/pkg/config"
	"VolEdge/pkg/server"
)

// Injectors from wire.go:

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	registry := ProvideRegistry(cfg)
	metrics := ProvideMetrics(cfg, registry)
	classifier, err := ProvideVRPClassifier(cfg)
	if err != nil {
		return nil, nil, err
	}
	liquidityClassifier, err := ProvideLiquidityClassifier(cfg)
	if err != nil {
		return nil, nil, err
	}
	scorer, err := ProvideScorer(cfg)
	if err != nil {
		return nil, nil, err
	}
	sizer, err := ProvideSizer(cfg)
	if err != nil {
		return nil, nil, err
	}
	engine := ProvideGuardrail(cfg)
	evaluator := usecase.NewEvaluator(classifier, liquidityClassifier, scorer, sizer, engine, metrics, logger)
	budgetLedger := ProvideBudgetLedger(cfg)
	redisCache, cleanup, err := ProvideRedisCache(cfg)
	if err != nil {
		return nil, nil, err
	}
	resultCache := ProvideResultCache(cfg, budgetLedger, redisCache, metrics, logger)
	client, cleanup2, err := ProvideClickHouseClient(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	historyProvider, err := ProvideHistoryProvider(cfg, client, logger)
	if err != nil {
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	marketDataProvider := ProvideMarketProvider(cfg, logger)
	sentimentProvider := ProvideSentimentProvider(cfg, logger)
	pipeline := ProvidePipeline(cfg, evaluator, resultCache, historyProvider, marketDataProvider, sentimentProvider, logger)
	handler := ProvideHandler(logger, evaluator, pipeline)
	limiter := ProvideLimiter(cfg)
	httpServer := ProvideHTTPServer(cfg, handler, limiter, logger, registry)
	app := ProvideApp(cfg, httpServer, limiter, logger)
	return app, func() {
		cleanup2()
		cleanup()
	}, nil
}
