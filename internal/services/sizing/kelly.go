package sizing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"VolEdge/internal/domain/models"
)

type Config struct {
	KellyFraction float64 `yaml:"kelly_fraction" default:"0.25"`
	MinEdge       float64 `yaml:"min_edge" default:"0.05"`
	MinContracts  int     `yaml:"min_contracts" default:"1"`
	MaxContracts  int     `yaml:"max_contracts" default:"10"`
}

func DefaultConfig() Config {
	return Config{KellyFraction: 0.25, MinEdge: 0.05, MinContracts: 1, MaxContracts: 10}
}

func (c Config) Validate() error {
	if c.KellyFraction <= 0 || c.KellyFraction > 1 {
		return fmt.Errorf("kelly_fraction must be in (0, 1], got %g", c.KellyFraction)
	}
	if c.MinContracts < 1 {
		return fmt.Errorf("min_contracts must be >= 1, got %d", c.MinContracts)
	}
	if c.MaxContracts < c.MinContracts {
		return fmt.Errorf("max_contracts (%d) must be >= min_contracts (%d)", c.MaxContracts, c.MinContracts)
	}
	return nil
}

// Sizer turns a payoff profile into a contract count with fractional Kelly.
// Edges below MinEdge are sized to the floor instead of being skipped.
type Sizer struct {
	cfg Config
}

func NewSizer(cfg Config) *Sizer {
	return &Sizer{cfg: cfg}
}

// SizeCandidate sizes a strategy produced by the payoff adapters or an external generator.
func (s *Sizer) SizeCandidate(c models.StrategyCandidate, capital decimal.Decimal) (models.PositionSizeResult, error) {
	if c.Type != "" && !c.Type.Valid() {
		return models.PositionSizeResult{}, &models.InvalidStrategyError{Field: "strategy_type", Value: string(c.Type), Reason: "unknown strategy"}
	}
	res, err := s.Size(c.MaxProfit, c.MaxLoss, capital, c.ProbabilityOfProfit)
	if err != nil {
		return res, err
	}
	res.Strategy = c.Type
	return res, nil
}

// Size computes the Kelly fraction for a binary payoff of maxProfit vs maxLoss per contract.
func (s *Sizer) Size(maxProfit, maxLoss, capital decimal.Decimal, pop float64) (models.PositionSizeResult, error) {
	if !maxProfit.IsPositive() {
		return models.PositionSizeResult{}, &models.InvalidStrategyError{Field: "max_profit", Value: maxProfit.String(), Reason: "must be > 0"}
	}
	if !maxLoss.IsPositive() {
		return models.PositionSizeResult{}, &models.InvalidStrategyError{Field: "max_loss", Value: maxLoss.String(), Reason: "must be > 0"}
	}
	if math.IsNaN(pop) || pop <= 0 || pop >= 1 {
		return models.PositionSizeResult{}, &models.InvalidInputError{Field: "probability_of_profit", Value: pop, Reason: "must be in (0, 1)"}
	}
	if !capital.IsPositive() {
		return models.PositionSizeResult{}, &models.InvalidInputError{Field: "capital", Value: capital.InexactFloat64(), Reason: "must be > 0"}
	}

	b := maxProfit.Div(maxLoss).InexactFloat64()
	edge := pop*b - (1 - pop)
	full := edge / b
	applied := full * s.cfg.KellyFraction

	res := models.PositionSizeResult{
		WinLossRatio:      b,
		Edge:              edge,
		KellyFractionFull: full,
		KellyFractionUsed: applied,
	}

	if edge < s.cfg.MinEdge {
		res.Contracts = s.cfg.MinContracts
		res.FloorApplied = true
		res.Reason = fmt.Sprintf("edge %.4f below minimum %.4f", edge, s.cfg.MinEdge)
		return res, nil
	}

	raw := decimal.NewFromFloat(applied).Mul(capital).Div(maxLoss).Floor().IntPart()
	switch {
	case raw < int64(s.cfg.MinContracts):
		res.Contracts = s.cfg.MinContracts
		res.FloorApplied = true
		res.Reason = "kelly size below minimum contracts"
	case raw > int64(s.cfg.MaxContracts):
		res.Contracts = s.cfg.MaxContracts
		res.Reason = "kelly size capped at maximum contracts"
	default:
		res.Contracts = int(raw)
	}
	return res, nil
}
