package usecase

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"VolEdge/internal/domain/models"
	"VolEdge/internal/domain/repository"
	"VolEdge/internal/services/guardrail"
	"VolEdge/internal/services/liquidity"
	"VolEdge/internal/services/scoring"
	"VolEdge/internal/services/sizing"
	"VolEdge/internal/services/vrp"
	applogger "VolEdge/pkg/logger"
)

// Evaluator runs the classifiers, the scorer and the guardrail for one ticker.
// It holds no mutable state and is safe for concurrent use.
type Evaluator struct {
	vrp       *vrp.Classifier
	liquidity *liquidity.Classifier
	scorer    *scoring.Scorer
	sizer     *sizing.Sizer
	guard     *guardrail.Engine
	metrics   repository.Metrics
	l         *applogger.Logger
}

func NewEvaluator(
	v *vrp.Classifier,
	lq *liquidity.Classifier,
	sc *scoring.Scorer,
	sz *sizing.Sizer,
	g *guardrail.Engine,
	m repository.Metrics,
	l *applogger.Logger,
) *Evaluator {
	if m == nil {
		m = repository.NopMetrics{}
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &Evaluator{vrp: v, liquidity: lq, scorer: sc, sizer: sz, guard: g, metrics: m, l: l.With("component", "evaluator")}
}

// Evaluate is deterministic: identical inputs give identical results.
// Data problems come back as typed errors; a DO_NOT_TRADE verdict is a normal result.
func (e *Evaluator) Evaluate(in models.EvaluationInput) (*models.Evaluation, error) {
	start := time.Now()
	defer func() { e.metrics.RecordLatency("evaluate", time.Since(start).Seconds()) }()

	ticker := strings.ToUpper(strings.TrimSpace(in.Ticker))
	if ticker == "" {
		return nil, e.fail(&models.InvalidInputError{Field: "ticker", Reason: "required"})
	}

	v, err := e.vrp.Classify(in.ImpliedMovePct, in.HistoricalMoves)
	if err != nil {
		return nil, e.fail(err)
	}
	liq, err := e.liquidity.Classify(in.OpenInterest, in.SpreadPct, in.PositionSize)
	if err != nil {
		return nil, e.fail(err)
	}

	score := e.scorer.Evaluate(v, in.ImpliedMovePct, liq.FinalTier, in.Sentiment)
	report := e.guard.Evaluate(models.GuardrailInput{
		VRP:                   v,
		Liquidity:             liq,
		HistoricalSampleCount: len(in.HistoricalMoves),
		CacheAgeHours:         in.CacheAgeHours,
		DaysToEarnings:        in.DaysToEarnings,
	})

	e.metrics.RecordEvaluation(string(report.Recommendation))
	e.l.Debug("evaluated",
		applogger.String("ticker", ticker),
		applogger.String("vrp_tier", v.Tier.String()),
		applogger.String("liquidity_tier", liq.FinalTier.String()),
		applogger.Float64("adjusted_score", score.AdjustedScore),
		applogger.String("recommendation", string(report.Recommendation)),
	)

	return &models.Evaluation{
		Ticker:    ticker,
		VRP:       v,
		Liquidity: liq,
		Score:     score,
		Guardrail: report,
	}, nil
}

// SizePosition sizes a strategy candidate against capital.
func (e *Evaluator) SizePosition(c models.StrategyCandidate, capital decimal.Decimal) (models.PositionSizeResult, error) {
	res, err := e.sizer.SizeCandidate(c, capital)
	if err != nil {
		return models.PositionSizeResult{}, e.fail(err)
	}
	return res, nil
}

// Legs are the per-strategy inputs of the payoff adapters. Unused fields are ignored.
type Legs struct {
	Credit              decimal.Decimal
	Spot                decimal.Decimal
	StressMovePct       float64
	Width               decimal.Decimal
	PutWidth            decimal.Decimal
	CallWidth           decimal.Decimal
	ShortDelta          float64
	ShortPutDelta       float64
	ShortCallDelta      float64
	LowerBreakevenDelta float64
	UpperBreakevenDelta float64
}

// BuildCandidate turns leg inputs into a payoff profile.
func BuildCandidate(t models.StrategyType, legs Legs) (models.StrategyCandidate, error) {
	switch t {
	case models.StrategyNaked:
		return sizing.NakedCandidate(legs.Credit, legs.Spot, legs.StressMovePct, legs.ShortDelta)
	case models.StrategyVerticalSpread:
		return sizing.VerticalSpreadCandidate(legs.Width, legs.Credit, legs.ShortDelta)
	case models.StrategyIronCondor:
		return sizing.IronCondorCandidate(legs.PutWidth, legs.CallWidth, legs.Credit, legs.ShortPutDelta, legs.ShortCallDelta)
	case models.StrategyIronButterfly:
		return sizing.IronButterflyCandidate(legs.Width, legs.Credit, legs.LowerBreakevenDelta, legs.UpperBreakevenDelta)
	default:
		return models.StrategyCandidate{}, &models.InvalidStrategyError{Field: "strategy_type", Value: string(t), Reason: "unknown"}
	}
}

// SizeStrategy builds a candidate from legs and sizes it.
func (e *Evaluator) SizeStrategy(t models.StrategyType, legs Legs, capital decimal.Decimal) (models.StrategyCandidate, models.PositionSizeResult, error) {
	c, err := BuildCandidate(t, legs)
	if err != nil {
		return models.StrategyCandidate{}, models.PositionSizeResult{}, e.fail(err)
	}
	res, err := e.SizePosition(c, capital)
	return c, res, err
}

func (e *Evaluator) fail(err error) error {
	e.metrics.RecordError(ErrorKind(err))
	return err
}

// ErrorKind labels err for metrics and batch statuses.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientData):
		return "insufficient_data"
	case errors.Is(err, models.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, models.ErrInvalidStrategy):
		return "invalid_strategy"
	default:
		return "internal"
	}
}
