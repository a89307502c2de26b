package liquidity

import (
	"fmt"
	"math"

	"VolEdge/internal/domain/models"
)

// Thresholds bound the open-interest ratio (minimums) and spread percentage (maximums) per tier.
type Thresholds struct {
	OIExcellent     float64 `yaml:"oi_excellent" default:"5"`
	OIGood          float64 `yaml:"oi_good" default:"2"`
	OIWarning       float64 `yaml:"oi_warning" default:"1"`
	SpreadExcellent float64 `yaml:"spread_excellent" default:"8"`
	SpreadGood      float64 `yaml:"spread_good" default:"12"`
	SpreadWarning   float64 `yaml:"spread_warning" default:"15"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		OIExcellent:     5,
		OIGood:          2,
		OIWarning:       1,
		SpreadExcellent: 8,
		SpreadGood:      12,
		SpreadWarning:   15,
	}
}

func (t Thresholds) Validate() error {
	if !(t.OIExcellent > t.OIGood && t.OIGood > t.OIWarning && t.OIWarning > 0) {
		return fmt.Errorf("oi thresholds must be positive and descending: %g/%g/%g", t.OIExcellent, t.OIGood, t.OIWarning)
	}
	if !(t.SpreadExcellent < t.SpreadGood && t.SpreadGood < t.SpreadWarning && t.SpreadExcellent > 0) {
		return fmt.Errorf("spread thresholds must be positive and ascending: %g/%g/%g", t.SpreadExcellent, t.SpreadGood, t.SpreadWarning)
	}
	return nil
}

type Classifier struct {
	th Thresholds
}

func NewClassifier(th Thresholds) *Classifier {
	return &Classifier{th: th}
}

// Classify tiers open interest against position size and the bid/ask spread independently;
// the final tier is the worse of the two.
func (c *Classifier) Classify(openInterest int, spreadPct float64, positionSize int) (models.LiquidityResult, error) {
	if openInterest < 0 {
		return models.LiquidityResult{}, &models.InvalidInputError{Field: "open_interest", Value: float64(openInterest), Reason: "must be >= 0"}
	}
	if math.IsNaN(spreadPct) || math.IsInf(spreadPct, 0) || spreadPct < 0 {
		return models.LiquidityResult{}, &models.InvalidInputError{Field: "spread_pct", Value: spreadPct, Reason: "must be a finite value >= 0"}
	}
	if positionSize <= 0 {
		return models.LiquidityResult{}, &models.InvalidInputError{Field: "position_size", Value: float64(positionSize), Reason: "must be > 0"}
	}

	ratio := float64(openInterest) / float64(positionSize)
	oiTier := c.oiTier(ratio)
	spreadTier := c.spreadTier(spreadPct)

	return models.LiquidityResult{
		OpenInterest: openInterest,
		SpreadPct:    spreadPct,
		PositionSize: positionSize,
		OIRatio:      ratio,
		OITier:       oiTier,
		SpreadTier:   spreadTier,
		FinalTier:    models.WorseLiquidity(oiTier, spreadTier),
	}, nil
}

func (c *Classifier) oiTier(ratio float64) models.LiquidityTier {
	switch {
	case ratio >= c.th.OIExcellent:
		return models.LiquidityExcellent
	case ratio >= c.th.OIGood:
		return models.LiquidityGood
	case ratio >= c.th.OIWarning:
		return models.LiquidityWarning
	default:
		return models.LiquidityReject
	}
}

func (c *Classifier) spreadTier(pct float64) models.LiquidityTier {
	switch {
	case pct <= c.th.SpreadExcellent:
		return models.LiquidityExcellent
	case pct <= c.th.SpreadGood:
		return models.LiquidityGood
	case pct <= c.th.SpreadWarning:
		return models.LiquidityWarning
	default:
		return models.LiquidityReject
	}
}
