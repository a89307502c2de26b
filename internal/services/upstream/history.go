package upstream

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"VolEdge/internal/domain/models"
	"VolEdge/pkg/util"
)

type movesResponse struct {
	Ticker string `json:"ticker"`
	Moves  []struct {
		EarningsDate string  `json:"earnings_date"`
		MovePct      float64 `json:"move_pct"`
	} `json:"moves"`
}

// HistoryClient implements service.HistoryProvider over HTTP.
type HistoryClient struct {
	base *HTTPServiceBase
}

func NewHistoryClient(base *HTTPServiceBase) *HistoryClient {
	return &HistoryClient{base: base}
}

// GetMoves returns recorded earnings moves, oldest first. An unknown ticker yields no samples.
func (c *HistoryClient) GetMoves(ctx context.Context, ticker string) ([]models.HistoricalMoveSample, error) {
	ticker = util.NormalizeTicker(ticker)
	var resp movesResponse
	err := c.base.GetJSONWithRetry(ctx, "/v1/earnings/"+url.PathEscape(ticker)+"/moves", nil, &resp)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]models.HistoricalMoveSample, 0, len(resp.Moves))
	for _, m := range resp.Moves {
		d, ok := util.ParseTime(m.EarningsDate)
		if !ok {
			return nil, &models.UpstreamError{Provider: c.base.Name(), Err: fmt.Errorf("bad earnings_date %q", m.EarningsDate)}
		}
		out = append(out, models.HistoricalMoveSample{Ticker: ticker, EarningsDate: d, MovePct: m.MovePct})
	}
	sortByDate(out)
	return out, nil
}

func sortByDate(s []models.HistoricalMoveSample) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].EarningsDate.Before(s[j].EarningsDate) })
}
