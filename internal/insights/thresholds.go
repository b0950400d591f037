package insights

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Sensitivity selects how eagerly stress indicators fire.
type Sensitivity string

const (
	SensitivityLow    Sensitivity = "low"
	SensitivityMedium Sensitivity = "medium"
	SensitivityHigh   Sensitivity = "high"
)

// ThresholdSet holds the tunable limits used by the stress detectors.
// Values are copied, never shared, so a set is safe to pass around.
type ThresholdSet struct {
	SmallWithdrawalCeiling    decimal.Decimal
	SmallWithdrawalMinCount   int
	SmallWithdrawalWindowDays int
	BalanceDeclinePct         float64
	HighFeeThreshold          decimal.Decimal
}

func baseThresholds() ThresholdSet {
	return ThresholdSet{
		SmallWithdrawalCeiling:    decimal.NewFromInt(60),
		SmallWithdrawalMinCount:   6,
		SmallWithdrawalWindowDays: 14,
		BalanceDeclinePct:         20,
		HighFeeThreshold:          decimal.NewFromInt(50),
	}
}

// ThresholdsFor returns the threshold set for a sensitivity level.
// Unknown levels get the medium set.
func ThresholdsFor(s Sensitivity) ThresholdSet {
	t := baseThresholds()
	switch s {
	case SensitivityHigh:
		t.SmallWithdrawalMinCount = 4
		t.BalanceDeclinePct = 15
	case SensitivityLow:
		t.SmallWithdrawalMinCount = 8
		t.BalanceDeclinePct = 30
	}
	return t
}

// ParseSensitivity maps a user-supplied string to a Sensitivity, falling back
// to medium for anything unrecognised.
func ParseSensitivity(s string) Sensitivity {
	switch Sensitivity(strings.ToLower(strings.TrimSpace(s))) {
	case SensitivityLow:
		return SensitivityLow
	case SensitivityHigh:
		return SensitivityHigh
	default:
		return SensitivityMedium
	}
}

// Valid reports whether s is one of the three known levels.
func (s Sensitivity) Valid() bool {
	return s == SensitivityLow || s == SensitivityMedium || s == SensitivityHigh
}
