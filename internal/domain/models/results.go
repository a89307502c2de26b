package models

// VRPResult is the output of the volatility risk classifier.
type VRPResult struct {
	ImpliedMovePct    float64 `json:"implied_move_pct"`
	HistoricalMeanPct float64 `json:"historical_mean_pct"`
	Ratio             float64 `json:"ratio"`
	Tier              VRPTier `json:"tier"`
	Profile           string  `json:"profile"`
	Consistency       float64 `json:"consistency"` // MAD / median, higher is less predictable
	SampleSize        int     `json:"sample_size"`
}

// LiquidityResult is the output of the liquidity classifier.
type LiquidityResult struct {
	OpenInterest int           `json:"open_interest"`
	SpreadPct    float64       `json:"spread_pct"`
	PositionSize int           `json:"position_size"`
	OIRatio      float64       `json:"oi_ratio"`
	OITier       LiquidityTier `json:"oi_tier"`
	SpreadTier   LiquidityTier `json:"spread_tier"`
	FinalTier    LiquidityTier `json:"final_tier"`
}

// ScoreResult carries the composite score before and after sentiment.
type ScoreResult struct {
	BaseScore          float64            `json:"base_score"`
	VRPScore           float64            `json:"vrp_score"`
	MoveScore          float64            `json:"move_score"`
	LiquidityScore     float64            `json:"liquidity_score"`
	SentimentDirection SentimentDirection `json:"sentiment_direction"`
	SentimentScore     float64            `json:"sentiment_score"`
	SentimentModifier  float64            `json:"sentiment_modifier"`
	AdjustedScore      float64            `json:"adjusted_score"`
}
