package scoring

import (
	"fmt"
	"math"

	"VolEdge/internal/domain/models"
)

type Weights struct {
	VRP       float64 `yaml:"vrp" default:"0.55"`
	Move      float64 `yaml:"move" default:"0.25"`
	Liquidity float64 `yaml:"liquidity" default:"0.20"`
}

type Config struct {
	Weights Weights `yaml:"weights"`
	// VRPTarget is the ratio that earns a full VRP sub-score.
	VRPTarget float64 `yaml:"vrp_target" default:"7.0"`
	// MoveReference is the implied move (percent) at which the move sub-score saturates.
	MoveReference float64 `yaml:"move_reference" default:"5.0"`
	CapAt100      bool    `yaml:"cap_at_100"`
}

func DefaultConfig() Config {
	return Config{
		Weights:       Weights{VRP: 0.55, Move: 0.25, Liquidity: 0.20},
		VRPTarget:     7.0,
		MoveReference: 5.0,
	}
}

func (c Config) Validate() error {
	w := c.Weights
	if w.VRP < 0 || w.Move < 0 || w.Liquidity < 0 {
		return fmt.Errorf("scoring weights must be non-negative: %+v", w)
	}
	if sum := w.VRP + w.Move + w.Liquidity; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("scoring weights must sum to 1, got %g", sum)
	}
	if c.VRPTarget <= 0 || c.MoveReference <= 0 {
		return fmt.Errorf("vrp_target and move_reference must be > 0")
	}
	return nil
}

var liquidityScores = map[models.LiquidityTier]float64{
	models.LiquidityExcellent: 100,
	models.LiquidityGood:      80,
	models.LiquidityWarning:   50,
	models.LiquidityReject:    20,
}

// Scorer blends VRP, move difficulty and liquidity into a 0-100 base score
// and applies a step sentiment modifier on top.
type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score returns the weighted base score.
func (s *Scorer) Score(vrp models.VRPResult, impliedMovePct float64, tier models.LiquidityTier) float64 {
	return s.breakdown(vrp, impliedMovePct, tier).BaseScore
}

// ApplySentiment scales base by the sentiment modifier. Only the base and sentiment fields are set.
func (s *Scorer) ApplySentiment(base float64, sentiment models.Sentiment) models.ScoreResult {
	score := sentiment.Score
	if math.IsNaN(score) {
		score = 0
	}
	score = math.Max(-1, math.Min(1, score))

	direction := sentiment.Direction
	if direction == "" {
		direction = DirectionFor(score)
	}

	mod := Modifier(score)
	adjusted := base * (1 + mod)
	if s.cfg.CapAt100 && adjusted > 100 {
		adjusted = 100
	}

	return models.ScoreResult{
		BaseScore:          base,
		SentimentDirection: direction,
		SentimentScore:     score,
		SentimentModifier:  mod,
		AdjustedScore:      round1(adjusted),
	}
}

// Evaluate runs Score and ApplySentiment and keeps the sub-scores.
func (s *Scorer) Evaluate(vrp models.VRPResult, impliedMovePct float64, tier models.LiquidityTier, sentiment models.Sentiment) models.ScoreResult {
	b := s.breakdown(vrp, impliedMovePct, tier)
	res := s.ApplySentiment(b.BaseScore, sentiment)
	res.VRPScore = b.VRPScore
	res.MoveScore = b.MoveScore
	res.LiquidityScore = b.LiquidityScore
	return res
}

func (s *Scorer) breakdown(vrp models.VRPResult, impliedMovePct float64, tier models.LiquidityTier) models.ScoreResult {
	vrpScore := math.Min(100, vrp.Ratio/s.cfg.VRPTarget*100)
	moveScore := math.Min(100, s.cfg.MoveReference/math.Max(impliedMovePct, 1.0)*100)
	liqScore := liquidityScores[tier]

	w := s.cfg.Weights
	return models.ScoreResult{
		BaseScore:      w.VRP*vrpScore + w.Move*moveScore + w.Liquidity*liqScore,
		VRPScore:       vrpScore,
		MoveScore:      moveScore,
		LiquidityScore: liqScore,
	}
}

// Modifier is the step function applied to a sentiment score in [-1, 1].
func Modifier(score float64) float64 {
	switch {
	case score >= 0.6:
		return 0.12
	case score >= 0.2:
		return 0.07
	case score <= -0.6:
		return -0.12
	case score <= -0.2:
		return -0.07
	default:
		return 0
	}
}

// DirectionFor derives a direction when the provider did not supply one.
func DirectionFor(score float64) models.SentimentDirection {
	switch {
	case score >= 0.2:
		return models.SentimentBullish
	case score <= -0.2:
		return models.SentimentBearish
	default:
		return models.SentimentNeutral
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
