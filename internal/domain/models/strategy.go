package models

import "github.com/shopspring/decimal"

type StrategyType string

const (
	StrategyNaked          StrategyType = "naked"
	StrategyVerticalSpread StrategyType = "vertical_spread"
	StrategyIronCondor     StrategyType = "iron_condor"
	StrategyIronButterfly  StrategyType = "iron_butterfly"
)

// Valid reports whether t is a known strategy type.
func (t StrategyType) Valid() bool {
	switch t {
	case StrategyNaked, StrategyVerticalSpread, StrategyIronCondor, StrategyIronButterfly:
		return true
	default:
		return false
	}
}

// StrategyCandidate is a payoff profile per contract, in dollars.
type StrategyCandidate struct {
	Type                StrategyType    `json:"strategy_type"`
	MaxProfit           decimal.Decimal `json:"max_profit"`
	MaxLoss             decimal.Decimal `json:"max_loss"`
	ProbabilityOfProfit float64         `json:"probability_of_profit"`
}

// PositionSizeResult is the output of the Kelly sizer.
type PositionSizeResult struct {
	Strategy          StrategyType `json:"strategy_type,omitempty"`
	WinLossRatio      float64      `json:"win_loss_ratio"`
	Edge              float64      `json:"edge"`
	KellyFractionFull float64      `json:"kelly_fraction_full"`
	KellyFractionUsed float64      `json:"kelly_fraction_applied"`
	Contracts         int          `json:"contracts"`
	FloorApplied      bool         `json:"floor_applied"`
	Reason            string       `json:"reason,omitempty"`
}
