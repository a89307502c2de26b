package service

import (
	"context"

	"VolEdge/internal/domain/models"
)

// HistoryProvider returns a ticker's recorded earnings moves, oldest first.
type HistoryProvider interface {
	GetMoves(ctx context.Context, ticker string) ([]models.HistoricalMoveSample, error)
}

// MarketDataProvider returns option-chain derived figures for a ticker/expiration.
type MarketDataProvider interface {
	GetSnapshot(ctx context.Context, ticker, expiration string) (models.MarketSnapshot, error)
}

// SentimentProvider returns structured sentiment. Optional: callers degrade to neutral.
type SentimentProvider interface {
	GetSentiment(ctx context.Context, ticker string) (models.Sentiment, error)
}
