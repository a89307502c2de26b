package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"VolEdge/internal/domain/models"
	rcache "VolEdge/internal/service/cache"
	apimetrics "VolEdge/internal/service/metrics"
	"VolEdge/internal/service/ratelimit"
	"VolEdge/internal/usecase"
	xhttp "VolEdge/pkg/http"
	xlogger "VolEdge/pkg/logger"
)

const defaultPositionSize = 10

// EngineEchoHandler exposes evaluation, sizing and batch endpoints.
type EngineEchoHandler struct {
	logger *xlogger.Logger
	eval   *usecase.Evaluator
	pipe   *usecase.Pipeline
}

func NewEngineEchoHandler(logger *xlogger.Logger, eval *usecase.Evaluator, pipe *usecase.Pipeline) *EngineEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &EngineEchoHandler{logger: logger.With("component", "api"), eval: eval, pipe: pipe}
}

func (h *EngineEchoHandler) RegisterRoutes(e *echo.Echo, throttle ...echo.MiddlewareFunc) {
	g := e.Group("/api", throttle...)
	g.POST("/evaluate", h.Evaluate)
	g.POST("/size", h.Size)
	g.POST("/strategies/:type", h.Strategy)
	g.GET("/tickers/:ticker/evaluation", h.TickerEvaluation)
	g.POST("/batch", h.Batch)
	g.GET("/budget", h.Budget)
	g.GET("/cache/stats", h.CacheStats)
}

// Evaluate scores caller-supplied inputs without touching upstream providers.
func (h *EngineEchoHandler) Evaluate(c echo.Context) error {
	defer observe("evaluate", time.Now())
	req := &models.EvaluationInput{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.eval.Evaluate(*req)
	if err != nil {
		return h.fail(c, "evaluate", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *EngineEchoHandler) Size(c echo.Context) error {
	defer observe("size", time.Now())
	req := &models.SizeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	amounts, aerr := parseDecimals(map[string]string{
		"max_profit": req.MaxProfit,
		"max_loss":   req.MaxLoss,
		"capital":    req.Capital,
	})
	if aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}

	res, err := h.eval.SizePosition(models.StrategyCandidate{
		Type:                models.StrategyType(req.StrategyType),
		MaxProfit:           amounts["max_profit"],
		MaxLoss:             amounts["max_loss"],
		ProbabilityOfProfit: req.ProbabilityOfProfit,
	}, amounts["capital"])
	if err != nil {
		return h.fail(c, "size", err)
	}
	return xhttp.SuccessResponse(c, res)
}

// StrategyResponse is a built payoff profile together with its sizing.
type StrategyResponse struct {
	Candidate models.StrategyCandidate  `json:"candidate"`
	Sizing    models.PositionSizeResult `json:"sizing"`
}

func (h *EngineEchoHandler) Strategy(c echo.Context) error {
	defer observe("strategy", time.Now())
	req := &models.StrategyLegsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	amounts, aerr := parseDecimals(map[string]string{
		"credit":     req.Credit,
		"spot":       req.Spot,
		"width":      req.Width,
		"put_width":  req.PutWidth,
		"call_width": req.CallWidth,
		"capital":    req.Capital,
	})
	if aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}

	cand, size, err := h.eval.SizeStrategy(models.StrategyType(req.StrategyType), usecase.Legs{
		Credit:              amounts["credit"],
		Spot:                amounts["spot"],
		StressMovePct:       req.StressMovePct,
		Width:               amounts["width"],
		PutWidth:            amounts["put_width"],
		CallWidth:           amounts["call_width"],
		ShortDelta:          req.ShortDelta,
		ShortPutDelta:       req.ShortPutDelta,
		ShortCallDelta:      req.ShortCallDelta,
		LowerBreakevenDelta: req.LowerBreakevenDelta,
		UpperBreakevenDelta: req.UpperBreakevenDelta,
	}, amounts["capital"])
	if err != nil {
		return h.fail(c, "strategy", err)
	}
	return xhttp.SuccessResponse(c, StrategyResponse{Candidate: cand, Sizing: size})
}

func (h *EngineEchoHandler) TickerEvaluation(c echo.Context) error {
	defer observe("ticker_evaluation", time.Now())
	req := &models.TickerEvaluationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	earnings, aerr := xhttp.ParseDateParam("earnings_date", req.EarningsDate)
	if aerr != nil {
		return xhttp.AppErrorResponse(c, aerr)
	}

	res, err := h.pipe.EvaluateTicker(c.Request().Context(), models.TickerRequest{
		Ticker:       req.Ticker,
		Expiration:   req.Expiration,
		EarningsDate: earnings,
		PositionSize: req.PositionSize,
	})
	if err != nil {
		return h.fail(c, "ticker_evaluation", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=60")
	return xhttp.SuccessResponse(c, res)
}

// BatchResponse lists ranked per-ticker outcomes.
type BatchResponse struct {
	Evaluated int                  `json:"evaluated"`
	Results   []models.BatchResult `json:"results"`
}

func (h *EngineEchoHandler) Batch(c echo.Context) error {
	defer observe("batch", time.Now())
	req := &models.BatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	reqs := make([]models.TickerRequest, 0, len(req.Items))
	for _, it := range req.Items {
		earnings, aerr := xhttp.ParseDateParam("earnings_date", it.EarningsDate)
		if aerr != nil {
			return xhttp.AppErrorResponse(c, aerr.WithParam("ticker", it.Ticker))
		}
		size := it.PositionSize
		if size == 0 {
			size = defaultPositionSize
		}
		reqs = append(reqs, models.TickerRequest{
			Ticker:       it.Ticker,
			Expiration:   it.Expiration,
			EarningsDate: earnings,
			PositionSize: size,
		})
	}
	apimetrics.BatchSize.Observe(float64(len(reqs)))

	results := h.pipe.EvaluateBatch(c.Request().Context(), reqs)
	n := 0
	for _, r := range results {
		if r.Status == models.StatusEvaluated {
			n++
		}
	}
	return xhttp.SuccessResponse(c, BatchResponse{Evaluated: n, Results: results})
}

func (h *EngineEchoHandler) Budget(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.pipe.Cache().Ledger().Snapshot())
}

func (h *EngineEchoHandler) CacheStats(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.pipe.Cache().Stats())
}

func (h *EngineEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := ToAppError(err)
	apimetrics.APIErrors.WithLabelValues(endpoint, strings.ToLower(strings.TrimPrefix(appErr.Code, "ERR_"))).Inc()
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error(endpoint+" failed", xlogger.Error(err))
	} else {
		h.logger.Debug(endpoint+" rejected", xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// ToAppError maps engine errors to HTTP errors: data problems are 422,
// an exhausted budget is 429 and provider failures are 502.
func ToAppError(err error) *xhttp.AppError {
	var (
		ide *models.InsufficientDataError
		iie *models.InvalidInputError
		ise *models.InvalidStrategyError
	)
	switch {
	case errors.As(err, &ide):
		return xhttp.UnprocessableError("ERR_INSUFFICIENT_DATA", "historical_moves", err.Error()).
			WithParam("have", ide.Have).
			WithParam("need", ide.Need).
			WithError(err)
	case errors.As(err, &iie):
		return xhttp.UnprocessableError("ERR_INVALID_INPUT", iie.Field, err.Error()).WithError(err)
	case errors.As(err, &ise):
		return xhttp.UnprocessableError("ERR_INVALID_STRATEGY", ise.Field, err.Error()).WithError(err)
	case errors.Is(err, ratelimit.ErrBudgetExhausted):
		e := xhttp.TooManyRequestsError(err.Error()).WithError(err)
		e.Code = "ERR_BUDGET_EXHAUSTED"
		return e
	case errors.Is(err, models.ErrUpstream), errors.Is(err, rcache.ErrInvalidResponse):
		return xhttp.BadGatewayError(err.Error()).WithError(err)
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.GatewayTimeoutError("upstream timed out").WithError(err)
	default:
		return xhttp.InternalError("Something went wrong").WithError(err)
	}
}

func parseDecimals(fields map[string]string) (map[string]decimal.Decimal, *xhttp.AppError) {
	out := make(map[string]decimal.Decimal, len(fields))
	for name, raw := range fields {
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, xhttp.FieldError("ERR_NUMERIC", name, name+" must be a number")
		}
		out[name] = d
	}
	return out, nil
}

func observe(endpoint string, start time.Time) {
	apimetrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}
