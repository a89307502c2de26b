package upstream

import (
	"context"
	"net/url"

	"VolEdge/internal/domain/models"
	"VolEdge/pkg/util"
)

// SentimentClient implements service.SentimentProvider over HTTP.
// It does not retry; callers fall back to neutral sentiment.
type SentimentClient struct {
	base *HTTPServiceBase
}

func NewSentimentClient(base *HTTPServiceBase) *SentimentClient {
	return &SentimentClient{base: base}
}

func (c *SentimentClient) GetSentiment(ctx context.Context, ticker string) (models.Sentiment, error) {
	var s models.Sentiment
	if err := c.base.GetJSON(ctx, "/v1/sentiment/"+url.PathEscape(util.NormalizeTicker(ticker)), nil, &s); err != nil {
		return models.Sentiment{}, err
	}
	return s, nil
}
