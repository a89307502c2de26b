package models

import "time"

// HistoricalMoveSample is one recorded earnings reaction. Signed: negative for a down move.
type HistoricalMoveSample struct {
	Ticker       string    `json:"ticker"`
	EarningsDate time.Time `json:"earnings_date"`
	MovePct      float64   `json:"move_pct"`
}

// MarketSnapshot holds the option-chain derived figures for one ticker/expiration.
type MarketSnapshot struct {
	Ticker         string  `json:"ticker"`
	Expiration     string  `json:"expiration"`
	ImpliedMovePct float64 `json:"implied_move_pct"` // from the ATM straddle
	OpenInterest   int     `json:"open_interest"`
	SpreadPct      float64 `json:"spread_pct"`
}

type SentimentDirection string

const (
	SentimentBullish SentimentDirection = "bullish"
	SentimentBearish SentimentDirection = "bearish"
	SentimentNeutral SentimentDirection = "neutral"
)

// Sentiment is the structured output of the sentiment provider.
// The zero value behaves exactly like NeutralSentiment.
type Sentiment struct {
	Direction        SentimentDirection `json:"direction,omitempty" validate:"omitempty,oneof=bullish bearish neutral"`
	Score            float64            `json:"score" validate:"gte=-1,lte=1"`
	SupportingPoints []string           `json:"supporting_points,omitempty"`
}

// NeutralSentiment is used whenever no sentiment is available.
func NeutralSentiment() Sentiment {
	return Sentiment{Direction: SentimentNeutral}
}
