package models

import (
	"fmt"
	"strings"
)

// VRPTier buckets the implied/historical move ratio.
type VRPTier int

const (
	VRPSkip VRPTier = iota
	VRPMarginal
	VRPGood
	VRPExcellent
)

var vrpTierNames = map[VRPTier]string{
	VRPSkip:      "SKIP",
	VRPMarginal:  "MARGINAL",
	VRPGood:      "GOOD",
	VRPExcellent: "EXCELLENT",
}

func (t VRPTier) String() string {
	if s, ok := vrpTierNames[t]; ok {
		return s
	}
	return fmt.Sprintf("VRPTier(%d)", int(t))
}

func (t VRPTier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *VRPTier) UnmarshalText(b []byte) error {
	s := strings.ToUpper(strings.TrimSpace(string(b)))
	for k, v := range vrpTierNames {
		if v == s {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown vrp tier %q", string(b))
}

// LiquidityTier is totally ordered: REJECT < WARNING < GOOD < EXCELLENT.
type LiquidityTier int

const (
	LiquidityReject LiquidityTier = iota
	LiquidityWarning
	LiquidityGood
	LiquidityExcellent
)

var liquidityTierNames = map[LiquidityTier]string{
	LiquidityReject:    "REJECT",
	LiquidityWarning:   "WARNING",
	LiquidityGood:      "GOOD",
	LiquidityExcellent: "EXCELLENT",
}

func (t LiquidityTier) String() string {
	if s, ok := liquidityTierNames[t]; ok {
		return s
	}
	return fmt.Sprintf("LiquidityTier(%d)", int(t))
}

func (t LiquidityTier) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *LiquidityTier) UnmarshalText(b []byte) error {
	s := strings.ToUpper(strings.TrimSpace(string(b)))
	for k, v := range liquidityTierNames {
		if v == s {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown liquidity tier %q", string(b))
}

// WorseLiquidity returns the lower of two tiers.
func WorseLiquidity(a, b LiquidityTier) LiquidityTier {
	if a < b {
		return a
	}
	return b
}
