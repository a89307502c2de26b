package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"VolEdge/internal/domain/repository"
	"VolEdge/internal/domain/service"
	"VolEdge/internal/handler/api"
	internalrepo "VolEdge/internal/repository"
	rcache "VolEdge/internal/service/cache"
	apimetrics "VolEdge/internal/service/metrics"
	"VolEdge/internal/service/ratelimit"
	"VolEdge/internal/services/guardrail"
	"VolEdge/internal/services/liquidity"
	"VolEdge/internal/services/scoring"
	"VolEdge/internal/services/sizing"
	"VolEdge/internal/services/upstream"
	"VolEdge/internal/services/vrp"
	"VolEdge/internal/usecase"
	"VolEdge/pkg/cache"
	pkgch "VolEdge/pkg/clickhouse"
	"VolEdge/pkg/config"
	xhttp "VolEdge/pkg/http"
	"VolEdge/pkg/http/middleware"
	applogger "VolEdge/pkg/logger"
	"VolEdge/pkg/metrics"
	"VolEdge/pkg/server"
	"VolEdge/pkg/util"
)

// ProvideLogger builds the process logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With("env", cfg.Environment), nil
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry(cfg *config.Config) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		middleware.RegisterMetrics(reg)
		apimetrics.Register(reg)
	}
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) repository.Metrics {
	if !cfg.Metrics.Enabled {
		return repository.NopMetrics{}
	}
	return metrics.New(reg)
}

func ProvideVRPClassifier(cfg *config.Config) (*vrp.Classifier, error) {
	c := cfg.Engine.VRP.Custom
	p, err := vrp.ResolveProfile(cfg.Engine.VRP.Profile, vrp.Thresholds{
		Excellent: c.Excellent,
		Good:      c.Good,
		Marginal:  c.Marginal,
	})
	if err != nil {
		return nil, fmt.Errorf("vrp profile: %w", err)
	}
	return vrp.NewClassifier(p), nil
}

func ProvideLiquidityClassifier(cfg *config.Config) (*liquidity.Classifier, error) {
	l := cfg.Engine.Liquidity
	th := liquidity.Thresholds{
		OIExcellent:     l.OIExcellent,
		OIGood:          l.OIGood,
		OIWarning:       l.OIWarning,
		SpreadExcellent: l.SpreadExcellent,
		SpreadGood:      l.SpreadGood,
		SpreadWarning:   l.SpreadWarning,
	}
	if err := th.Validate(); err != nil {
		return nil, fmt.Errorf("liquidity thresholds: %w", err)
	}
	return liquidity.NewClassifier(th), nil
}

func ProvideScorer(cfg *config.Config) (*scoring.Scorer, error) {
	s := cfg.Engine.Scoring
	sc := scoring.Config{
		Weights:       scoring.Weights{VRP: s.Weights.VRP, Move: s.Weights.Move, Liquidity: s.Weights.Liquidity},
		VRPTarget:     s.VRPTarget,
		MoveReference: s.MoveReference,
		CapAt100:      s.CapAt100,
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("scoring: %w", err)
	}
	return scoring.NewScorer(sc), nil
}

func ProvideSizer(cfg *config.Config) (*sizing.Sizer, error) {
	s := cfg.Engine.Sizing
	sc := sizing.Config{
		KellyFraction: s.KellyFraction,
		MinEdge:       s.MinEdge,
		MinContracts:  s.MinContracts,
		MaxContracts:  s.MaxContracts,
	}
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("sizing: %w", err)
	}
	return sizing.NewSizer(sc), nil
}

func ProvideGuardrail(cfg *config.Config) *guardrail.Engine {
	g := cfg.Engine.Guardrail
	return guardrail.NewEngine(guardrail.Config{
		OutlierRatio:    g.OutlierRatio,
		StaleWindowDays: g.StaleWindowDays,
		StaleCacheHours: g.StaleCacheHours,
		MinHistory:      g.MinHistory,
	})
}

func ProvideBudgetLedger(cfg *config.Config) *ratelimit.BudgetLedger {
	return ratelimit.NewBudgetLedger(ratelimit.BudgetConfig{
		DailyCalls:  cfg.Budget.DailyCalls,
		MonthlyCost: cfg.Budget.MonthlyCost,
		Timezone:    cfg.Budget.Timezone,
		Costs:       cfg.Budget.Costs,
	})
}

// ProvideRedisCache connects the shared cache tier. It returns nil when Redis is disabled.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, func(), error) {
	r := cfg.Cache.Redis
	if !r.Enabled {
		return nil, func() {}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rc, err := cache.NewRedisCache(ctx,
		cache.WithRedisAddr(r.Addr),
		cache.WithRedisAuth(r.Password, r.DB),
		cache.WithRedisPrefix(r.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, func() { _ = rc.Close() }, nil
}

func ProvideResultCache(cfg *config.Config, ledger *ratelimit.BudgetLedger, redis *cache.RedisCache, m repository.Metrics, l *applogger.Logger) *rcache.ResultCache {
	var remote cache.Remote
	if redis != nil {
		remote = redis
	}
	return rcache.New(rcache.Config{
		MaxEntries:   cfg.Cache.MaxEntries,
		HistoryTTL:   cfg.Cache.TTL.History,
		MarketTTL:    cfg.Cache.TTL.Market,
		SentimentTTL: cfg.Cache.TTL.Sentiment,
	}, ledger, remote, rcache.WithMetrics(m), rcache.WithLogger(l))
}

// ProvideClickHouseClient opens the history store when history.source is clickhouse, nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, func(), error) {
	if cfg.History.Source != "clickhouse" {
		return nil, func() {}, nil
	}
	ch := cfg.ClickHouse
	client, err := pkgch.NewClient(
		pkgch.WithHost(ch.Host),
		pkgch.WithPort(ch.Port),
		pkgch.WithDatabase(ch.Database),
		pkgch.WithCredentials(ch.User, ch.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(ch.UseHTTP),
		pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	stmts := append([]string{"CREATE DATABASE IF NOT EXISTS " + ch.Database}, internalrepo.MovesSchema(historyTable(cfg))...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, func() { _ = client.Close() }, nil
}

func historyTable(cfg *config.Config) string {
	return cfg.ClickHouse.Database + "." + cfg.History.Table
}

func upstreamConfig(cfg *config.Config) upstream.Config {
	u := cfg.Upstream
	return upstream.Config{
		BaseURL:  u.BaseURL,
		APIKey:   u.APIKey,
		Timeout:  u.Timeout,
		Attempts: u.Attempts,
		Breaker: upstream.BreakerConfig{
			MaxRequests:      u.Breaker.MaxRequests,
			Interval:         u.Breaker.Interval,
			Timeout:          u.Breaker.Timeout,
			FailureThreshold: u.Breaker.FailureThreshold,
		},
	}
}

// ProvideHistoryProvider selects ClickHouse or HTTP as the source of earnings moves.
func ProvideHistoryProvider(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (service.HistoryProvider, error) {
	if ch != nil {
		store, err := internalrepo.NewCHMoveStore(ch, historyTable(cfg), cfg.History.MaxSamples)
		if err != nil {
			return nil, fmt.Errorf("history store: %w", err)
		}
		store.SetLogger(l.With("component", "history_store"))
		return store, nil
	}
	return upstream.NewHistoryClient(upstream.NewHTTPServiceBase(usecase.ProviderHistory, upstreamConfig(cfg), l)), nil
}

func ProvideMarketProvider(cfg *config.Config, l *applogger.Logger) service.MarketDataProvider {
	return upstream.NewMarketClient(upstream.NewHTTPServiceBase(usecase.ProviderMarket, upstreamConfig(cfg), l))
}

// ProvideSentimentProvider returns nil when sentiment is disabled.
func ProvideSentimentProvider(cfg *config.Config, l *applogger.Logger) service.SentimentProvider {
	if !cfg.Upstream.Sentiment {
		return nil
	}
	return upstream.NewSentimentClient(upstream.NewHTTPServiceBase(usecase.ProviderSentiment, upstreamConfig(cfg), l))
}

func ProvidePipeline(
	cfg *config.Config,
	eval *usecase.Evaluator,
	rc *rcache.ResultCache,
	h service.HistoryProvider,
	m service.MarketDataProvider,
	s service.SentimentProvider,
	l *applogger.Logger,
) *usecase.Pipeline {
	opts := []usecase.PipelineOption{
		usecase.WithWorkers(cfg.Batch.Workers),
		usecase.WithLocation(util.LoadLocation(cfg.Budget.Timezone)),
		usecase.WithPipelineLogger(l),
	}
	if s != nil {
		opts = append(opts, usecase.WithSentiment(s))
	}
	return usecase.NewPipeline(eval, rc, h, m, opts...)
}

func ProvideHandler(l *applogger.Logger, eval *usecase.Evaluator, pipe *usecase.Pipeline) xhttp.Handler {
	return api.NewEngineEchoHandler(l, eval, pipe)
}

func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.Server.RateLimit.PerSecond, cfg.Server.RateLimit.Burst)
}

func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, limiter *ratelimit.Limiter, l *applogger.Logger, reg *prometheus.Registry) *xhttp.Server {
	s := cfg.Server
	return xhttp.NewServer(h,
		xhttp.WithHost(s.Host),
		xhttp.WithPort(s.Port),
		xhttp.WithTimeouts(s.ReadTimeout, s.WriteTimeout, s.ShutdownTimeout),
		xhttp.WithCORSOrigins(s.CORSOrigins...),
		xhttp.WithRateLimiter(limiter),
		xhttp.WithLogger(l),
		xhttp.WithGatherer(reg),
	)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, srv *xhttp.Server, limiter *ratelimit.Limiter, l *applogger.Logger) *server.App {
	return server.New(cfg, srv, limiter, l)
}
