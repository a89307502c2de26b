package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VolEdge/internal/domain/models"
	rcache "VolEdge/internal/service/cache"
	"VolEdge/internal/service/ratelimit"
	"VolEdge/internal/services/guardrail"
	"VolEdge/internal/services/liquidity"
	"VolEdge/internal/services/scoring"
	"VolEdge/internal/services/sizing"
	"VolEdge/internal/services/vrp"
	"VolEdge/internal/usecase"
)

type stubHistory map[string][]float64

func (s stubHistory) GetMoves(_ context.Context, ticker string) ([]models.HistoricalMoveSample, error) {
	out := make([]models.HistoricalMoveSample, 0, len(s[ticker]))
	for i, m := range s[ticker] {
		out = append(out, models.HistoricalMoveSample{
			Ticker:       ticker,
			EarningsDate: time.Date(2023, time.Month(1+3*i), 28, 0, 0, 0, 0, time.UTC),
			MovePct:      m,
		})
	}
	return out, nil
}

type stubMarket struct{ err error }

func (s stubMarket) GetSnapshot(_ context.Context, ticker, exp string) (models.MarketSnapshot, error) {
	if s.err != nil {
		return models.MarketSnapshot{}, s.err
	}
	return models.MarketSnapshot{Ticker: ticker, Expiration: exp, ImpliedMovePct: 8, OpenInterest: 500, SpreadPct: 6}, nil
}

func newTestServer(t *testing.T, market stubMarket, budget ratelimit.BudgetConfig) *echo.Echo {
	t.Helper()
	eval := usecase.NewEvaluator(
		vrp.NewClassifier(vrp.DefaultProfile()),
		liquidity.NewClassifier(liquidity.DefaultThresholds()),
		scoring.NewScorer(scoring.DefaultConfig()),
		sizing.NewSizer(sizing.DefaultConfig()),
		guardrail.NewEngine(guardrail.DefaultConfig()),
		nil, nil,
	)
	rc := rcache.New(rcache.Config{MaxEntries: 10, HistoryTTL: time.Hour, MarketTTL: time.Hour, SentimentTTL: time.Hour},
		ratelimit.NewBudgetLedger(budget), nil)
	pipe := usecase.NewPipeline(eval, rc, stubHistory{"AAPL": {4, -5, 3, -4}, "THIN": {2}}, market)

	e := echo.New()
	NewEngineEchoHandler(nil, eval, pipe).RegisterRoutes(e)
	return e
}

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func do(t *testing.T, e *echo.Echo, method, path, body string) (int, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestEvaluateEndpoint(t *testing.T) {
	e := newTestServer(t, stubMarket{}, ratelimit.BudgetConfig{})
	code, env := do(t, e, http.MethodPost, "/api/evaluate",
		`{"ticker":"msft","implied_move_pct":14,"historical_moves":[2,2,2,2],"open_interest":5,"spread_pct":4,"position_size":10}`)

	require.Equal(t, http.StatusOK, code)
	var ev models.Evaluation
	require.NoError(t, json.Unmarshal(env.Data, &ev))
	assert.Equal(t, "MSFT", ev.Ticker)
	assert.Equal(t, models.VRPExcellent, ev.VRP.Tier)
	assert.Equal(t, models.RecommendDoNotTrade, ev.Guardrail.Recommendation)
}

func TestEvaluateEndpointInsufficientDataIs422(t *testing.T) {
	e := newTestServer(t, stubMarket{}, ratelimit.BudgetConfig{})
	code, env := do(t, e, http.MethodPost, "/api/evaluate",
		`{"ticker":"MSFT","implied_move_pct":8,"historical_moves":[4,5],"open_interest":500,"spread_pct":4,"position_size":10}`)

	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, string(env.Data), "ERR_INSUFFICIENT_DATA")
}

func TestEvaluateEndpointValidation(t *testing.T) {
	e := newTestServer(t, stubMarket{}, ratelimit.BudgetConfig{})
	code, env := do(t, e, http.MethodPost, "/api/evaluate", `{"implied_move_pct":8}`)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, string(env.Data), "ticker is required")
}

func TestSizeEndpoint(t *testing.T) {
	e := newTestServer(t, stubMarket{}, ratelimit.BudgetConfig{})
	code, env := do(t, e, http.MethodPost, "/api/size",
		`{"strategy_type":"vertical_spread","max_profit":"150","max_loss":"350","probability_of_profit":0.8,"capital":"10000"}`)

	require.Equal(t, http.StatusOK, code)
	var res models.PositionSizeResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 2, res.Contracts)
}

func TestStrategyEndpoint(t *testing.T) {
	e := newTestServer(t, stubMarket{}, ratelimit.BudgetConfig{})
	code, env := do(t, e, http.MethodPost, "/api/strategies/vertical_spread",
		`{"credit":"1.5","width":"5","short_delta":-0.25,"capital":"10000"}`)

	require.Equal(t, http.StatusOK, code)
	var res StrategyResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, "350", res.Candidate.MaxLoss.String())
	assert.InDelta(t, 0.75, res.Candidate.ProbabilityOfProfit, 1e-9)
}

func TestStrategyEndpointBadGeometry(t *testing.T) {
	e := newTestServer(t, stubMarket{}, ratelimit.BudgetConfig{})
	code, env := do(t, e, http.MethodPost, "/api/strategies/vertical_spread",
		`{"credit":"6","width":"5","short_delta":0.25,"capital":"10000"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, string(env.Data), "ERR_INVALID_STRATEGY")
}

func TestTickerEvaluationEndpoint(t *testing.T) {
	e := newTestServer(t, stubMarket{}, ratelimit.BudgetConfig{})
	code, env := do(t, e, http.MethodGet, "/api/tickers/aapl/evaluation?expiration=2024-04-26&earnings_date=2024-04-25", "")

	require.Equal(t, http.StatusOK, code)
	var ev models.Evaluation
	require.NoError(t, json.Unmarshal(env.Data, &ev))
	assert.Equal(t, "AAPL", ev.Ticker)
	assert.Equal(t, 10, ev.Liquidity.PositionSize)
}

func TestTickerEvaluationErrorMapping(t *testing.T) {
	upstream := stubMarket{err: &models.UpstreamError{Provider: "market", Err: errors.New("down")}}
	e := newTestServer(t, upstream, ratelimit.BudgetConfig{})
	code, _ := do(t, e, http.MethodGet, "/api/tickers/AAPL/evaluation?expiration=2024-04-26&earnings_date=2024-04-25", "")
	assert.Equal(t, http.StatusBadGateway, code)

	e = newTestServer(t, stubMarket{}, ratelimit.BudgetConfig{DailyCalls: 1})
	code, env := do(t, e, http.MethodGet, "/api/tickers/AAPL/evaluation?expiration=2024-04-26&earnings_date=2024-04-25", "")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Contains(t, string(env.Data), "ERR_BUDGET_EXHAUSTED")
}

func TestBatchEndpoint(t *testing.T) {
	e := newTestServer(t, stubMarket{}, ratelimit.BudgetConfig{})
	code, env := do(t, e, http.MethodPost, "/api/batch", `{"items":[
		{"ticker":"THIN","expiration":"2024-04-26","earnings_date":"2024-04-25"},
		{"ticker":"AAPL","expiration":"2024-04-26","earnings_date":"2024-04-25"}]}`)

	require.Equal(t, http.StatusOK, code)
	var res BatchResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, 1, res.Evaluated)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "AAPL", res.Results[0].Ticker)
	assert.Equal(t, models.StatusInsufficientData, res.Results[1].Status)
}

func TestBudgetAndCacheStatsEndpoints(t *testing.T) {
	e := newTestServer(t, stubMarket{}, ratelimit.BudgetConfig{DailyCalls: 100})
	_, _ = do(t, e, http.MethodGet, "/api/tickers/AAPL/evaluation?expiration=2024-04-26&earnings_date=2024-04-25", "")

	code, env := do(t, e, http.MethodGet, "/api/budget", "")
	require.Equal(t, http.StatusOK, code)
	var snap ratelimit.BudgetSnapshot
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, 2, snap.DailyCalls)
	assert.Equal(t, 100, snap.DailyCallLimit)

	code, env = do(t, e, http.MethodGet, "/api/cache/stats", "")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"history"`)
}

func TestToAppError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&models.InvalidInputError{Field: "spread_pct"}, http.StatusUnprocessableEntity},
		{ratelimit.ErrMonthlyBudgetExhausted, http.StatusTooManyRequests},
		{rcache.ErrInvalidResponse, http.StatusBadGateway},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToAppError(tt.err).Status, tt.err.Error())
	}
}
