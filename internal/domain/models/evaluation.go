package models

import "time"

// EvaluationInput is everything a single-ticker evaluation needs. Moves are magnitudes in percent.
type EvaluationInput struct {
	Ticker          string    `json:"ticker" validate:"required"`
	ImpliedMovePct  float64   `json:"implied_move_pct"`
	HistoricalMoves []float64 `json:"historical_moves" validate:"required"`
	OpenInterest    int       `json:"open_interest"`
	SpreadPct       float64   `json:"spread_pct"`
	PositionSize    int       `json:"position_size"`
	Sentiment       Sentiment `json:"sentiment"`
	CacheAgeHours   float64   `json:"cache_age_hours"`
	DaysToEarnings  int       `json:"days_to_earnings"`
}

// Evaluation is the combined, immutable result of one evaluate call.
type Evaluation struct {
	Ticker    string          `json:"ticker"`
	VRP       VRPResult       `json:"vrp"`
	Liquidity LiquidityResult `json:"liquidity"`
	Score     ScoreResult     `json:"score"`
	Guardrail AnomalyReport   `json:"guardrail"`
}

// TickerRequest asks the pipeline to gather inputs for a ticker and evaluate it.
type TickerRequest struct {
	Ticker       string
	Expiration   string
	EarningsDate time.Time
	PositionSize int
}

type BatchStatus string

const (
	StatusEvaluated        BatchStatus = "evaluated"
	StatusInsufficientData BatchStatus = "insufficient_data"
	StatusInvalidInput     BatchStatus = "invalid_input"
	StatusBudgetExhausted  BatchStatus = "budget_exhausted"
	StatusUpstreamError    BatchStatus = "upstream_error"
	StatusCancelled        BatchStatus = "cancelled"
)

// BatchResult is one ticker's outcome inside a batch run.
type BatchResult struct {
	Ticker     string      `json:"ticker"`
	Status     BatchStatus `json:"status"`
	Evaluation *Evaluation `json:"evaluation,omitempty"`
	Error      string      `json:"error,omitempty"`
}
