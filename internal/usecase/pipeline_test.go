package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VolEdge/internal/domain/models"
	rcache "VolEdge/internal/service/cache"
	"VolEdge/internal/service/ratelimit"
)

type fakeHistory struct {
	calls atomic.Int32
	moves map[string][]float64
}

func (f *fakeHistory) GetMoves(_ context.Context, ticker string) ([]models.HistoricalMoveSample, error) {
	f.calls.Add(1)
	out := make([]models.HistoricalMoveSample, 0, len(f.moves[ticker]))
	for i, m := range f.moves[ticker] {
		out = append(out, models.HistoricalMoveSample{
			Ticker:       ticker,
			EarningsDate: time.Date(2022, time.Month(1+3*i), 25, 0, 0, 0, 0, time.UTC),
			MovePct:      m,
		})
	}
	return out, nil
}

type fakeMarket struct {
	calls atomic.Int32
	snaps map[string]models.MarketSnapshot
	err   error
	hook  func()
}

func (f *fakeMarket) GetSnapshot(_ context.Context, ticker, expiration string) (models.MarketSnapshot, error) {
	f.calls.Add(1)
	if f.hook != nil {
		f.hook()
	}
	if f.err != nil {
		return models.MarketSnapshot{}, f.err
	}
	s := f.snaps[ticker]
	s.Ticker, s.Expiration = ticker, expiration
	return s, nil
}

type fakeSentiment struct {
	calls atomic.Int32
	s     models.Sentiment
	err   error
}

func (f *fakeSentiment) GetSentiment(context.Context, string) (models.Sentiment, error) {
	f.calls.Add(1)
	return f.s, f.err
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	p         *Pipeline
	clk       *testClock
	history   *fakeHistory
	market    *fakeMarket
	sentiment *fakeSentiment
	ledger    *ratelimit.BudgetLedger
}

func newFixture(budget ratelimit.BudgetConfig) *fixture {
	clk := &testClock{t: time.Date(2024, 4, 22, 13, 0, 0, 0, time.UTC)}
	f := &fixture{
		clk: clk,
		history: &fakeHistory{moves: map[string][]float64{
			"AAPL": {4, -5, 3, -4},
			"NVDA": {2, -2, 2, -2},
			"THIN": {3, 4},
		}},
		market: &fakeMarket{snaps: map[string]models.MarketSnapshot{
			"AAPL": {ImpliedMovePct: 8, OpenInterest: 1000, SpreadPct: 5},
			"NVDA": {ImpliedMovePct: 14, OpenInterest: 1000, SpreadPct: 5},
			"THIN": {ImpliedMovePct: 6, OpenInterest: 1000, SpreadPct: 5},
		}},
		sentiment: &fakeSentiment{s: models.Sentiment{Direction: models.SentimentBullish, Score: 0.3}},
		ledger:    ratelimit.NewBudgetLedger(budget, ratelimit.WithLedgerClock(clk.Now)),
	}
	rc := rcache.New(rcache.Config{
		MaxEntries:   100,
		HistoryTTL:   168 * time.Hour,
		MarketTTL:    36 * time.Hour,
		SentimentTTL: 12 * time.Hour,
	}, f.ledger, nil, rcache.WithClock(clk.Now))

	f.p = NewPipeline(newTestEvaluator(nil), rc, f.history, f.market,
		WithSentiment(f.sentiment),
		WithWorkers(2),
		WithPipelineClock(clk.Now),
	)
	return f
}

func tickerReq(ticker string) models.TickerRequest {
	return models.TickerRequest{
		Ticker:       ticker,
		Expiration:   "2024-04-26",
		EarningsDate: time.Date(2024, 4, 25, 0, 0, 0, 0, time.UTC),
		PositionSize: 10,
	}
}

func TestEvaluateTickerUsesMagnitudes(t *testing.T) {
	f := newFixture(ratelimit.BudgetConfig{})

	ev, err := f.p.EvaluateTicker(context.Background(), tickerReq("aapl"))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, ev.VRP.HistoricalMeanPct, 1e-9)
	assert.Equal(t, models.VRPMarginal, ev.VRP.Tier)
	assert.Equal(t, models.SentimentBullish, ev.Score.SentimentDirection)
	assert.Equal(t, models.RecommendTrade, ev.Guardrail.Recommendation)
}

func TestEvaluateTickerWarmCacheSkipsUpstream(t *testing.T) {
	f := newFixture(ratelimit.BudgetConfig{})
	ctx := context.Background()

	first, err := f.p.EvaluateTicker(ctx, tickerReq("AAPL"))
	require.NoError(t, err)
	second, err := f.p.EvaluateTicker(ctx, tickerReq("AAPL"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), f.history.calls.Load())
	assert.Equal(t, int32(1), f.market.calls.Load())
	assert.Equal(t, int32(1), f.sentiment.calls.Load())
	assert.Equal(t, 3, f.ledger.Snapshot().DailyCalls)
}

func TestEvaluateTickerColdCachesAreIdentical(t *testing.T) {
	a, err := newFixture(ratelimit.BudgetConfig{}).p.EvaluateTicker(context.Background(), tickerReq("AAPL"))
	require.NoError(t, err)
	b, err := newFixture(ratelimit.BudgetConfig{}).p.EvaluateTicker(context.Background(), tickerReq("AAPL"))
	require.NoError(t, err)

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	assert.Equal(t, string(ja), string(jb))
}

func TestEvaluateTickerSentimentFailureIsNeutral(t *testing.T) {
	f := newFixture(ratelimit.BudgetConfig{})
	f.sentiment.err = errors.New("model offline")

	ev, err := f.p.EvaluateTicker(context.Background(), tickerReq("AAPL"))
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNeutral, ev.Score.SentimentDirection)
	assert.Equal(t, 0.0, ev.Score.SentimentModifier)
	assert.Equal(t, 2, f.ledger.Snapshot().DailyCalls)
}

func TestEvaluateTickerInvalidSentimentIsNeutral(t *testing.T) {
	f := newFixture(ratelimit.BudgetConfig{})
	f.sentiment.s = models.Sentiment{Direction: "sideways", Score: 3}

	ev, err := f.p.EvaluateTicker(context.Background(), tickerReq("AAPL"))
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNeutral, ev.Score.SentimentDirection)
}

func TestEvaluateTickerStaleCacheNearEarnings(t *testing.T) {
	f := newFixture(ratelimit.BudgetConfig{})
	ctx := context.Background()
	_, err := f.p.EvaluateTicker(ctx, tickerReq("AAPL"))
	require.NoError(t, err)

	f.clk.Advance(30 * time.Hour)
	ev, err := f.p.EvaluateTicker(ctx, tickerReq("AAPL"))
	require.NoError(t, err)

	require.Len(t, ev.Guardrail.Anomalies, 1)
	assert.Equal(t, "stale_cache", ev.Guardrail.Anomalies[0].Check)
	assert.Equal(t, models.RecommendReduceSize, ev.Guardrail.Recommendation)
	assert.Equal(t, int32(1), f.market.calls.Load())
	assert.Equal(t, int32(2), f.sentiment.calls.Load())
}

func TestEvaluateTickerInsufficientHistorySkipsMarket(t *testing.T) {
	f := newFixture(ratelimit.BudgetConfig{})

	_, err := f.p.EvaluateTicker(context.Background(), tickerReq("THIN"))
	assert.ErrorIs(t, err, models.ErrInsufficientData)
	assert.Equal(t, int32(0), f.market.calls.Load())
}

func TestEvaluateTickerBudgetExhausted(t *testing.T) {
	f := newFixture(ratelimit.BudgetConfig{DailyCalls: 1})

	_, err := f.p.EvaluateTicker(context.Background(), tickerReq("AAPL"))
	assert.ErrorIs(t, err, ratelimit.ErrBudgetExhausted)
	assert.Equal(t, models.StatusBudgetExhausted, StatusFor(err))
	assert.Equal(t, int32(0), f.market.calls.Load())
}

func TestEvaluateTickerUpstreamError(t *testing.T) {
	f := newFixture(ratelimit.BudgetConfig{})
	f.market.err = &models.UpstreamError{Provider: "market", Err: errors.New("502 bad gateway")}

	_, err := f.p.EvaluateTicker(context.Background(), tickerReq("AAPL"))
	assert.ErrorIs(t, err, models.ErrUpstream)
	assert.Equal(t, models.StatusUpstreamError, StatusFor(err))
	assert.Equal(t, 1, f.ledger.Snapshot().DailyCalls)
}

func TestEvaluateBatchRanksAndReportsFailures(t *testing.T) {
	f := newFixture(ratelimit.BudgetConfig{})
	bad := tickerReq("AAPL")
	bad.PositionSize = 0

	results := f.p.EvaluateBatch(context.Background(), []models.TickerRequest{
		tickerReq("THIN"),
		tickerReq("AAPL"),
		bad,
		tickerReq("NVDA"),
	})

	require.Len(t, results, 4)
	assert.Equal(t, "NVDA", results[0].Ticker)
	assert.Equal(t, models.StatusEvaluated, results[0].Status)
	assert.Equal(t, "AAPL", results[1].Ticker)
	assert.Equal(t, models.StatusEvaluated, results[1].Status)
	assert.Greater(t, results[0].Evaluation.Score.AdjustedScore, results[1].Evaluation.Score.AdjustedScore)

	assert.Equal(t, "THIN", results[2].Ticker)
	assert.Equal(t, models.StatusInsufficientData, results[2].Status)
	assert.Equal(t, "AAPL", results[3].Ticker)
	assert.Equal(t, models.StatusInvalidInput, results[3].Status)
	assert.Nil(t, results[3].Evaluation)
	assert.NotEmpty(t, results[3].Error)
}

func TestEvaluateBatchCancelled(t *testing.T) {
	f := newFixture(ratelimit.BudgetConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := f.p.EvaluateBatch(ctx, []models.TickerRequest{tickerReq("AAPL"), tickerReq("NVDA")})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, models.StatusCancelled, r.Status)
	}
	assert.Equal(t, int32(0), f.history.calls.Load())
}

func TestEvaluateBatchCancelledMidway(t *testing.T) {
	f := newFixture(ratelimit.BudgetConfig{})
	f.p.workers = 1
	ctx, cancel := context.WithCancel(context.Background())
	f.market.hook = cancel
	f.market.err = context.Canceled

	reqs := []models.TickerRequest{tickerReq("AAPL"), tickerReq("NVDA"), tickerReq("THIN")}
	results := f.p.EvaluateBatch(ctx, reqs)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.Equal(t, models.StatusCancelled, r.Status, r.Ticker)
	}
	assert.Equal(t, int32(1), f.market.calls.Load())
}

func TestEvaluateBatchEmpty(t *testing.T) {
	f := newFixture(ratelimit.BudgetConfig{})
	assert.Empty(t, f.p.EvaluateBatch(context.Background(), nil))
}
