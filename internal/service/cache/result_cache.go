package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"VolEdge/internal/domain/models"
	"VolEdge/internal/domain/repository"
	"VolEdge/internal/service/ratelimit"
	"VolEdge/pkg/cache"
	"VolEdge/pkg/logger"
)

// Kind names a logical cache; each kind has its own store and TTL.
type Kind string

const (
	KindHistory   Kind = "history"
	KindMarket    Kind = "market"
	KindSentiment Kind = "sentiment"
)

// ErrInvalidResponse marks an upstream payload that failed validation. No budget is recorded for it.
var ErrInvalidResponse = errors.New("invalid upstream response")

type Config struct {
	MaxEntries   int           `yaml:"max_entries" default:"1000" validate:"gte=1"`
	HistoryTTL   time.Duration `yaml:"history_ttl" default:"168h"`
	MarketTTL    time.Duration `yaml:"market_ttl" default:"36h"`
	SentimentTTL time.Duration `yaml:"sentiment_ttl" default:"12h"`
}

// ResultCache memoizes upstream lookups per data kind and owns the budget ledger.
// Each store has its own lock; the ledger has another. None is held during a fetch.
// Concurrent misses on one key share a single fetch.
type ResultCache struct {
	History   cache.Store[[]models.HistoricalMoveSample]
	Market    cache.Store[models.MarketSnapshot]
	Sentiment cache.Store[models.Sentiment]

	ledger  *ratelimit.BudgetLedger
	metrics repository.Metrics
	log     *logger.Logger
	now     cache.Clock
	flight  singleflight.Group
}

type Option func(*ResultCache)

func WithMetrics(m repository.Metrics) Option {
	return func(rc *ResultCache) {
		if m != nil {
			rc.metrics = m
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(rc *ResultCache) {
		if l != nil {
			rc.log = l.With("component", "result_cache")
		}
	}
}

func WithClock(c cache.Clock) Option {
	return func(rc *ResultCache) {
		if c != nil {
			rc.now = c
		}
	}
}

// New builds a ResultCache whose stores live in process memory, or in memory
// backed by remote when remote is non-nil.
func New(cfg Config, ledger *ratelimit.BudgetLedger, remote cache.Remote, opts ...Option) *ResultCache {
	rc := &ResultCache{
		ledger:  ledger,
		metrics: repository.NopMetrics{},
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(rc)
	}

	rc.History = newStore[[]models.HistoricalMoveSample](rc, remote, cfg.MaxEntries, cfg.HistoryTTL)
	rc.Market = newStore[models.MarketSnapshot](rc, remote, cfg.MaxEntries, cfg.MarketTTL)
	rc.Sentiment = newStore[models.Sentiment](rc, remote, cfg.MaxEntries, cfg.SentimentTTL)
	return rc
}

func newStore[V any](rc *ResultCache, remote cache.Remote, maxEntries int, ttl time.Duration) cache.Store[V] {
	opts := []cache.MemoryOption{
		cache.WithMemoryMaxSize(maxEntries),
		cache.WithMemoryTTL(ttl),
		cache.WithClock(rc.now),
	}
	if remote == nil {
		return cache.NewMemory[V](opts...)
	}
	l := cache.NewLayered[V](remote, opts...)
	l.OnRemoteError = func(op string, err error) {
		rc.log.Warn("redis tier unavailable", logger.String("op", op), logger.Error(err))
	}
	return l
}

func (rc *ResultCache) Ledger() *ratelimit.BudgetLedger { return rc.ledger }

// Stats reports per-kind store counters.
func (rc *ResultCache) Stats() map[Kind]cache.Stats {
	return map[Kind]cache.Stats{
		KindHistory:   rc.History.Stats(),
		KindMarket:    rc.Market.Stats(),
		KindSentiment: rc.Sentiment.Stats(),
	}
}

// Fetched is a value resolved through the cache.
type Fetched[V any] struct {
	Value     V
	Age       time.Duration
	FromCache bool
}

// Lookup describes one read-through: where to look, what to call on a miss and how to check the answer.
type Lookup[V any] struct {
	Kind     Kind
	Key      string
	Provider string
	Fetch    func(ctx context.Context) (V, error)
	Validate func(V) error
}

// ReadThrough returns the cached value for l.Key or fetches it. On a miss the budget
// is reserved first, the fetch runs without any lock held, and the reservation is
// booked only after the response validated. Callers missing on the same key while a
// fetch is in flight wait for it instead of paying again.
func ReadThrough[V any](ctx context.Context, rc *ResultCache, store cache.Store[V], l Lookup[V]) (Fetched[V], error) {
	if e, ok := store.Get(ctx, l.Key); ok {
		rc.metrics.RecordCacheLookup(string(l.Kind), true)
		return Fetched[V]{Value: e.Value, Age: e.Age(rc.now()), FromCache: true}, nil
	}
	rc.metrics.RecordCacheLookup(string(l.Kind), false)

	ch := rc.flight.DoChan(string(l.Kind)+"|"+l.Key, func() (interface{}, error) {
		return fetchAndStore(ctx, rc, store, l)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return Fetched[V]{}, res.Err
		}
		return res.Val.(Fetched[V]), nil
	case <-ctx.Done():
		return Fetched[V]{}, fmt.Errorf("%s %s: %w", l.Kind, l.Key, ctx.Err())
	}
}

func fetchAndStore[V any](ctx context.Context, rc *ResultCache, store cache.Store[V], l Lookup[V]) (Fetched[V], error) {
	cost := rc.ledger.CostOf(l.Provider)
	settle, err := rc.ledger.Reserve(l.Provider, cost)
	if err != nil {
		return Fetched[V]{}, fmt.Errorf("%s %s: %w", l.Kind, l.Key, err)
	}
	// no-op once booked below
	defer settle(false)

	start := time.Now()
	v, err := l.Fetch(ctx)
	rc.metrics.RecordLatency("fetch_"+string(l.Kind), time.Since(start).Seconds())
	if err != nil {
		return Fetched[V]{}, fmt.Errorf("fetch %s %s: %w", l.Kind, l.Key, err)
	}
	if l.Validate != nil {
		if err := l.Validate(v); err != nil {
			rc.log.Warn("discarding upstream response",
				logger.String("kind", string(l.Kind)),
				logger.String("key", l.Key),
				logger.Error(err))
			return Fetched[V]{}, fmt.Errorf("%s %s: %w: %v", l.Kind, l.Key, ErrInvalidResponse, err)
		}
	}

	settle(true)
	rc.metrics.RecordUpstreamCall(l.Provider, cost)

	if err := store.Set(ctx, l.Key, v); err != nil {
		rc.log.Warn("cache write failed", logger.String("key", l.Key), logger.Error(err))
	}
	return Fetched[V]{Value: v}, nil
}
