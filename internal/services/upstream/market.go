package upstream

import (
	"context"
	"net/url"

	"VolEdge/internal/domain/models"
	"VolEdge/pkg/util"
)

type snapshotResponse struct {
	ImpliedMovePct float64 `json:"implied_move_pct"`
	OpenInterest   int     `json:"open_interest"`
	SpreadPct      float64 `json:"spread_pct"`
}

// MarketClient implements service.MarketDataProvider over HTTP.
type MarketClient struct {
	base *HTTPServiceBase
}

func NewMarketClient(base *HTTPServiceBase) *MarketClient {
	return &MarketClient{base: base}
}

func (c *MarketClient) GetSnapshot(ctx context.Context, ticker, expiration string) (models.MarketSnapshot, error) {
	ticker = util.NormalizeTicker(ticker)
	var resp snapshotResponse
	q := url.Values{"expiration": []string{expiration}}
	if err := c.base.GetJSONWithRetry(ctx, "/v1/options/"+url.PathEscape(ticker)+"/snapshot", q, &resp); err != nil {
		return models.MarketSnapshot{}, err
	}
	return models.MarketSnapshot{
		Ticker:         ticker,
		Expiration:     expiration,
		ImpliedMovePct: resp.ImpliedMovePct,
		OpenInterest:   resp.OpenInterest,
		SpreadPct:      resp.SpreadPct,
	}, nil
}
