package models

// Requests for the HTTP API. Defined in domain for consistency and reuse.

type TickerEvaluationRequest struct {
	Ticker       string `param:"ticker" validate:"required,max=10"`
	Expiration   string `query:"expiration" json:"expiration" validate:"required,datetime=2006-01-02"`
	EarningsDate string `query:"earnings_date" json:"earnings_date" validate:"required,datetime=2006-01-02"`
	PositionSize int    `query:"position_size" json:"position_size" default:"10" validate:"gte=1,lte=10000"`
}

type BatchItemRequest struct {
	Ticker       string `json:"ticker" validate:"required,max=10"`
	Expiration   string `json:"expiration" validate:"required,datetime=2006-01-02"`
	EarningsDate string `json:"earnings_date" validate:"required,datetime=2006-01-02"`
	PositionSize int    `json:"position_size" validate:"omitempty,gte=1,lte=10000"`
}

type BatchRequest struct {
	Items []BatchItemRequest `json:"items" validate:"required,min=1,max=200,dive"`
}

type SizeRequest struct {
	StrategyType        string  `json:"strategy_type" validate:"required,oneof=naked vertical_spread iron_condor iron_butterfly"`
	MaxProfit           string  `json:"max_profit" validate:"required,numeric"`
	MaxLoss             string  `json:"max_loss" validate:"required,numeric"`
	ProbabilityOfProfit float64 `json:"probability_of_profit" validate:"gt=0,lt=1"`
	Capital             string  `json:"capital" validate:"required,numeric"`
}

// StrategyLegsRequest carries Greeks-derived leg inputs for the payoff adapters.
// Which fields are used depends on the strategy type in the path.
type StrategyLegsRequest struct {
	StrategyType        string  `param:"type" validate:"required,oneof=naked vertical_spread iron_condor iron_butterfly"`
	Credit              string  `json:"credit" validate:"required,numeric"`
	Spot                string  `json:"spot" validate:"omitempty,numeric"`
	StressMovePct       float64 `json:"stress_move_pct" default:"20" validate:"gt=0,lte=100"`
	Width               string  `json:"width" validate:"omitempty,numeric"`
	PutWidth            string  `json:"put_width" validate:"omitempty,numeric"`
	CallWidth           string  `json:"call_width" validate:"omitempty,numeric"`
	ShortDelta          float64 `json:"short_delta" validate:"gte=-1,lte=1"`
	ShortPutDelta       float64 `json:"short_put_delta" validate:"gte=-1,lte=1"`
	ShortCallDelta      float64 `json:"short_call_delta" validate:"gte=-1,lte=1"`
	LowerBreakevenDelta float64 `json:"lower_breakeven_delta" validate:"gte=-1,lte=1"`
	UpperBreakevenDelta float64 `json:"upper_breakeven_delta" validate:"gte=-1,lte=1"`
	Capital             string  `json:"capital" validate:"required,numeric"`
}
