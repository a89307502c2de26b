package liquidity

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"VolEdge/internal/domain/models"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	tests := []struct {
		name   string
		oi     int
		spread float64
		size   int
		oiT    models.LiquidityTier
		sprT   models.LiquidityTier
		final  models.LiquidityTier
	}{
		{"all excellent", 1000, 5.0, 100, models.LiquidityExcellent, models.LiquidityExcellent, models.LiquidityExcellent},
		{"spread dominates", 1000, 13.0, 100, models.LiquidityExcellent, models.LiquidityWarning, models.LiquidityWarning},
		{"oi dominates", 150, 2.0, 100, models.LiquidityWarning, models.LiquidityExcellent, models.LiquidityWarning},
		{"oi reject", 50, 2.0, 100, models.LiquidityReject, models.LiquidityExcellent, models.LiquidityReject},
		{"spread reject", 1000, 15.01, 100, models.LiquidityExcellent, models.LiquidityReject, models.LiquidityReject},
		{"boundaries inclusive", 200, 12.0, 100, models.LiquidityGood, models.LiquidityGood, models.LiquidityGood},
		{"zero oi", 0, 1.0, 10, models.LiquidityReject, models.LiquidityExcellent, models.LiquidityReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := c.Classify(tt.oi, tt.spread, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.oiT, res.OITier)
			assert.Equal(t, tt.sprT, res.SpreadTier)
			assert.Equal(t, tt.final, res.FinalTier)
			assert.InDelta(t, float64(tt.oi)/float64(tt.size), res.OIRatio, 1e-12)
		})
	}
}

func TestClassifyFinalIsNeverBetterThanEither(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	for oi := 0; oi <= 800; oi += 25 {
		for spread := 0.0; spread <= 20; spread += 0.5 {
			res, err := c.Classify(oi, spread, 100)
			require.NoError(t, err)
			assert.LessOrEqual(t, int(res.FinalTier), int(res.OITier))
			assert.LessOrEqual(t, int(res.FinalTier), int(res.SpreadTier))
			assert.True(t, res.FinalTier == res.OITier || res.FinalTier == res.SpreadTier)
		}
	}
}

func TestClassifyRejectsBadInput(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	_, err := c.Classify(-1, 5, 10)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = c.Classify(10, -0.1, 10)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = c.Classify(10, math.NaN(), 10)
	assert.True(t, errors.Is(err, models.ErrInvalidInput))

	_, err = c.Classify(10, 5, 0)
	var iie *models.InvalidInputError
	require.True(t, errors.As(err, &iie))
	assert.Equal(t, "position_size", iie.Field)
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())

	bad := DefaultThresholds()
	bad.OIGood = 6
	assert.Error(t, bad.Validate())

	bad = DefaultThresholds()
	bad.SpreadWarning = 10
	assert.Error(t, bad.Validate())
}
