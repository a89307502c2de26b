package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"VolEdge/internal/domain/models"
	"VolEdge/internal/domain/service"
	rcache "VolEdge/internal/service/cache"
	"VolEdge/internal/service/ratelimit"
	"VolEdge/internal/services/features"
	"VolEdge/internal/services/vrp"
	"VolEdge/pkg/cache"
	applogger "VolEdge/pkg/logger"
	"VolEdge/pkg/util"
)

// Provider names used for budgeting and cost lookup.
const (
	ProviderHistory   = "history"
	ProviderMarket    = "market"
	ProviderSentiment = "sentiment"
)

// Pipeline gathers a ticker's inputs through the ResultCache and evaluates it.
type Pipeline struct {
	eval      *Evaluator
	rc        *rcache.ResultCache
	history   service.HistoryProvider
	market    service.MarketDataProvider
	sentiment service.SentimentProvider

	workers  int
	loc      *time.Location
	now      func() time.Time
	validate *validator.Validate
	l        *applogger.Logger
}

type PipelineOption func(*Pipeline)

// WithSentiment enables the optional sentiment provider.
func WithSentiment(s service.SentimentProvider) PipelineOption {
	return func(p *Pipeline) { p.sentiment = s }
}

func WithWorkers(n int) PipelineOption {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithLocation sets the zone in which days to earnings are counted.
func WithLocation(loc *time.Location) PipelineOption {
	return func(p *Pipeline) {
		if loc != nil {
			p.loc = loc
		}
	}
}

func WithPipelineClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

func WithPipelineLogger(l *applogger.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.l = l.With("component", "pipeline")
		}
	}
}

func NewPipeline(eval *Evaluator, rc *rcache.ResultCache, h service.HistoryProvider, m service.MarketDataProvider, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		eval:     eval,
		rc:       rc,
		history:  h,
		market:   m,
		workers:  8,
		loc:      time.UTC,
		now:      time.Now,
		validate: validator.New(),
		l:        applogger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Cache exposes the ResultCache for stats and budget reporting.
func (p *Pipeline) Cache() *rcache.ResultCache { return p.rc }

// EvaluateTicker resolves history, market data and sentiment, then evaluates.
// Sentiment failures of any kind fall back to neutral.
func (p *Pipeline) EvaluateTicker(ctx context.Context, req models.TickerRequest) (*models.Evaluation, error) {
	ticker := util.NormalizeTicker(req.Ticker)
	if ticker == "" {
		return nil, &models.InvalidInputError{Field: "ticker", Reason: "required"}
	}
	if req.Expiration == "" {
		return nil, &models.InvalidInputError{Field: "expiration", Reason: "required"}
	}

	hist, err := rcache.ReadThrough(ctx, p.rc, p.rc.History, rcache.Lookup[[]models.HistoricalMoveSample]{
		Kind:     rcache.KindHistory,
		Key:      cache.TickerKey(string(rcache.KindHistory), ticker),
		Provider: ProviderHistory,
		Fetch: func(ctx context.Context) ([]models.HistoricalMoveSample, error) {
			return p.history.GetMoves(ctx, ticker)
		},
		Validate: validateMoves,
	})
	if err != nil {
		return nil, err
	}

	// No budget is spent on market data when the history cannot support a classification.
	moves := features.Magnitudes(hist.Value)
	if len(moves) < vrp.MinSamples {
		return nil, &models.InsufficientDataError{Have: len(moves), Need: vrp.MinSamples}
	}

	snap, err := rcache.ReadThrough(ctx, p.rc, p.rc.Market, rcache.Lookup[models.MarketSnapshot]{
		Kind:     rcache.KindMarket,
		Key:      cache.TickerKey(string(rcache.KindMarket), ticker, req.Expiration),
		Provider: ProviderMarket,
		Fetch: func(ctx context.Context) (models.MarketSnapshot, error) {
			return p.market.GetSnapshot(ctx, ticker, req.Expiration)
		},
		Validate: validateSnapshot,
	})
	if err != nil {
		return nil, err
	}

	age := maxDuration(hist.Age, snap.Age)
	sent := models.NeutralSentiment()
	if p.sentiment != nil {
		s, err := rcache.ReadThrough(ctx, p.rc, p.rc.Sentiment, rcache.Lookup[models.Sentiment]{
			Kind:     rcache.KindSentiment,
			Key:      cache.TickerKey(string(rcache.KindSentiment), ticker),
			Provider: ProviderSentiment,
			Fetch: func(ctx context.Context) (models.Sentiment, error) {
				return p.sentiment.GetSentiment(ctx, ticker)
			},
			Validate: func(s models.Sentiment) error { return p.validate.Struct(s) },
		})
		if err != nil {
			p.l.Debug("sentiment unavailable, using neutral",
				applogger.String("ticker", ticker),
				applogger.Error(err),
			)
		} else {
			sent = s.Value
			age = maxDuration(age, s.Age)
		}
	}

	return p.eval.Evaluate(models.EvaluationInput{
		Ticker:          ticker,
		ImpliedMovePct:  snap.Value.ImpliedMovePct,
		HistoricalMoves: moves,
		OpenInterest:    snap.Value.OpenInterest,
		SpreadPct:       snap.Value.SpreadPct,
		PositionSize:    req.PositionSize,
		Sentiment:       sent,
		CacheAgeHours:   age.Hours(),
		DaysToEarnings:  util.DaysUntil(p.loc, p.now(), req.EarningsDate),
	})
}

// EvaluateBatch evaluates every request on a bounded worker pool. Each request yields
// exactly one result. Evaluated tickers come first by adjusted score, highest first;
// the rest follow in request order. Once ctx is done, pending tickers are reported cancelled.
func (p *Pipeline) EvaluateBatch(ctx context.Context, reqs []models.TickerRequest) []models.BatchResult {
	start := time.Now()
	results := make([]models.BatchResult, len(reqs))
	for i, r := range reqs {
		results[i] = models.BatchResult{
			Ticker: util.NormalizeTicker(r.Ticker),
			Status: models.StatusCancelled,
			Error:  context.Canceled.Error(),
		}
	}

	workers := p.workers
	if workers > len(reqs) {
		workers = len(reqs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				ev, err := p.EvaluateTicker(ctx, reqs[i])
				results[i] = toBatchResult(results[i].Ticker, ev, err)
			}
		}()
	}

feed:
	for i := range reqs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	rank(results)

	p.eval.metrics.RecordLatency("batch", time.Since(start).Seconds())
	p.l.Info("batch evaluated",
		applogger.Int("tickers", len(reqs)),
		applogger.Int("evaluated", countStatus(results, models.StatusEvaluated)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return results
}

// StatusFor maps an evaluation error to a batch status.
func StatusFor(err error) models.BatchStatus {
	switch {
	case err == nil:
		return models.StatusEvaluated
	case errors.Is(err, models.ErrInsufficientData):
		return models.StatusInsufficientData
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrInvalidStrategy):
		return models.StatusInvalidInput
	case errors.Is(err, ratelimit.ErrBudgetExhausted):
		return models.StatusBudgetExhausted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return models.StatusCancelled
	default:
		return models.StatusUpstreamError
	}
}

func toBatchResult(ticker string, ev *models.Evaluation, err error) models.BatchResult {
	if err != nil {
		return models.BatchResult{Ticker: ticker, Status: StatusFor(err), Error: err.Error()}
	}
	return models.BatchResult{Ticker: ticker, Status: models.StatusEvaluated, Evaluation: ev}
}

func rank(results []models.BatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		aok, bok := a.Status == models.StatusEvaluated, b.Status == models.StatusEvaluated
		if aok != bok {
			return aok
		}
		if !aok {
			return false
		}
		return a.Evaluation.Score.AdjustedScore > b.Evaluation.Score.AdjustedScore
	})
}

func countStatus(results []models.BatchResult, s models.BatchStatus) int {
	n := 0
	for _, r := range results {
		if r.Status == s {
			n++
		}
	}
	return n
}

func validateMoves(samples []models.HistoricalMoveSample) error {
	for _, s := range samples {
		if math.IsNaN(s.MovePct) || math.IsInf(s.MovePct, 0) {
			return fmt.Errorf("non-finite move on %s", s.EarningsDate.Format(util.DateLayout))
		}
	}
	return nil
}

func validateSnapshot(s models.MarketSnapshot) error {
	switch {
	case math.IsNaN(s.ImpliedMovePct) || math.IsInf(s.ImpliedMovePct, 0) || s.ImpliedMovePct <= 0:
		return fmt.Errorf("implied_move_pct %g", s.ImpliedMovePct)
	case s.OpenInterest < 0:
		return fmt.Errorf("open_interest %d", s.OpenInterest)
	case math.IsNaN(s.SpreadPct) || math.IsInf(s.SpreadPct, 0) || s.SpreadPct < 0:
		return fmt.Errorf("spread_pct %g", s.SpreadPct)
	}
	return nil
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}
