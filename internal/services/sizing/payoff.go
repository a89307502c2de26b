package sizing

import (
	"math"

	"github.com/shopspring/decimal"

	"VolEdge/internal/domain/models"
)

// ContractMultiplier converts per-share option prices to per-contract dollars.
var ContractMultiplier = decimal.NewFromInt(100)

// NakedCandidate models a short option whose loss is taken at a stressed move of the underlying.
func NakedCandidate(credit, spot decimal.Decimal, stressMovePct, shortDelta float64) (models.StrategyCandidate, error) {
	if err := positive("credit", credit); err != nil {
		return models.StrategyCandidate{}, err
	}
	if err := positive("spot", spot); err != nil {
		return models.StrategyCandidate{}, err
	}
	if math.IsNaN(stressMovePct) || stressMovePct <= 0 {
		return models.StrategyCandidate{}, &models.InvalidStrategyError{Field: "stress_move_pct", Value: decimal.NewFromFloat(stressMovePct).String(), Reason: "must be > 0"}
	}
	stressed := spot.Mul(decimal.NewFromFloat(stressMovePct)).Div(decimal.NewFromInt(100))
	if stressed.LessThanOrEqual(credit) {
		return models.StrategyCandidate{}, &models.InvalidStrategyError{Field: "credit", Value: credit.String(), Reason: "credit covers the stressed move"}
	}
	return build(models.StrategyNaked, credit, stressed.Sub(credit), 1-math.Abs(shortDelta))
}

// VerticalSpreadCandidate models a credit spread of the given strike width.
func VerticalSpreadCandidate(width, credit decimal.Decimal, shortDelta float64) (models.StrategyCandidate, error) {
	if err := spreadGeometry("width", width, credit); err != nil {
		return models.StrategyCandidate{}, err
	}
	return build(models.StrategyVerticalSpread, credit, width.Sub(credit), 1-math.Abs(shortDelta))
}

// IronCondorCandidate risks the wider of the two wings; only one side can finish in the money.
func IronCondorCandidate(putWidth, callWidth, credit decimal.Decimal, shortPutDelta, shortCallDelta float64) (models.StrategyCandidate, error) {
	if err := positive("put_width", putWidth); err != nil {
		return models.StrategyCandidate{}, err
	}
	if err := positive("call_width", callWidth); err != nil {
		return models.StrategyCandidate{}, err
	}
	wide := decimal.Max(putWidth, callWidth)
	if err := spreadGeometry("width", wide, credit); err != nil {
		return models.StrategyCandidate{}, err
	}
	pop := 1 - math.Abs(shortPutDelta) - math.Abs(shortCallDelta)
	return build(models.StrategyIronCondor, credit, wide.Sub(credit), pop)
}

// IronButterflyCandidate profits between the breakevens; POP is read off the deltas at those strikes.
func IronButterflyCandidate(wingWidth, credit decimal.Decimal, lowerBreakevenDelta, upperBreakevenDelta float64) (models.StrategyCandidate, error) {
	if err := spreadGeometry("wing_width", wingWidth, credit); err != nil {
		return models.StrategyCandidate{}, err
	}
	pop := 1 - math.Abs(lowerBreakevenDelta) - math.Abs(upperBreakevenDelta)
	return build(models.StrategyIronButterfly, credit, wingWidth.Sub(credit), pop)
}

func build(t models.StrategyType, profit, loss decimal.Decimal, pop float64) (models.StrategyCandidate, error) {
	if math.IsNaN(pop) || pop <= 0 || pop >= 1 {
		return models.StrategyCandidate{}, &models.InvalidStrategyError{Field: "probability_of_profit", Value: decimal.NewFromFloat(pop).String(), Reason: "must be in (0, 1)"}
	}
	return models.StrategyCandidate{
		Type:                t,
		MaxProfit:           profit.Mul(ContractMultiplier),
		MaxLoss:             loss.Mul(ContractMultiplier),
		ProbabilityOfProfit: pop,
	}, nil
}

func positive(field string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return &models.InvalidStrategyError{Field: field, Value: v.String(), Reason: "must be > 0"}
	}
	return nil
}

func spreadGeometry(field string, width, credit decimal.Decimal) error {
	if err := positive(field, width); err != nil {
		return err
	}
	if err := positive("credit", credit); err != nil {
		return err
	}
	if credit.GreaterThanOrEqual(width) {
		return &models.InvalidStrategyError{Field: "credit", Value: credit.String(), Reason: "must be less than " + field}
	}
	return nil
}
