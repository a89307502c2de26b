package vrp

import (
	"math"

	"VolEdge/internal/domain/models"
	"VolEdge/internal/services/features"
)

// MinSamples is the fewest historical moves a ratio may be computed from.
const MinSamples = 4

// Classifier computes the VRP ratio and maps it onto a profile's tier ladder.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	profile Profile
}

func NewClassifier(p Profile) *Classifier {
	return &Classifier{profile: p}
}

// Profile returns the active profile.
func (c *Classifier) Profile() Profile { return c.profile }

// Classify returns the ratio of impliedMovePct to the mean historical move, its tier and dispersion.
func (c *Classifier) Classify(impliedMovePct float64, historicalMoves []float64) (models.VRPResult, error) {
	if len(historicalMoves) < MinSamples {
		return models.VRPResult{}, &models.InsufficientDataError{Have: len(historicalMoves), Need: MinSamples}
	}
	if math.IsNaN(impliedMovePct) || math.IsInf(impliedMovePct, 0) || impliedMovePct <= 0 {
		return models.VRPResult{}, &models.InvalidInputError{Field: "implied_move_pct", Value: impliedMovePct, Reason: "must be a finite value > 0"}
	}
	if !features.AllFinite(historicalMoves) {
		return models.VRPResult{}, &models.InvalidInputError{Field: "historical_moves", Value: math.NaN(), Reason: "must be finite"}
	}
	mean := features.Mean(historicalMoves)
	if mean <= 0 {
		return models.VRPResult{}, &models.InvalidInputError{Field: "historical_mean_pct", Value: mean, Reason: "must be > 0"}
	}

	ratio := impliedMovePct / mean
	return models.VRPResult{
		ImpliedMovePct:    impliedMovePct,
		HistoricalMeanPct: mean,
		Ratio:             ratio,
		Tier:              c.tierFor(ratio),
		Profile:           string(c.profile.Name),
		Consistency:       features.Dispersion(historicalMoves),
		SampleSize:        len(historicalMoves),
	}, nil
}

func (c *Classifier) tierFor(ratio float64) models.VRPTier {
	t := c.profile.Thresholds
	switch {
	case ratio >= t.Excellent:
		return models.VRPExcellent
	case ratio >= t.Good:
		return models.VRPGood
	case ratio >= t.Marginal:
		return models.VRPMarginal
	default:
		return models.VRPSkip
	}
}
