package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Severity grades a stress indicator.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// IndicatorKind names a financial-stress indicator.
type IndicatorKind string

const (
	IndicatorLatePaymentFees          IndicatorKind = "late_payment_fees"
	IndicatorFrequentSmallWithdrawals IndicatorKind = "frequent_small_withdrawals"
	IndicatorPaydayLoan               IndicatorKind = "payday_loan"
	IndicatorDecliningBalance         IndicatorKind = "declining_balance"
)

// EventKind names a detected life event.
type EventKind string

const (
	EventJobChange  EventKind = "job_change"
	EventRelocation EventKind = "relocation"
	EventTravel     EventKind = "travel"
)

// Details holds the named facts attached to an indicator or event.
// Values are ints, strings, time.Time, decimal.Decimal, float64, slices of
// those, or nil for a fact that could not be computed.
type Details map[string]any

// Indicator is a financial-stress signal covering an inclusive date range.
type Indicator struct {
	Kind           IndicatorKind `json:"kind"`
	Severity       Severity      `json:"severity"`
	Start          time.Time     `json:"start"`
	End            time.Time     `json:"end"`
	Details        Details       `json:"details"`
	Message        string        `json:"message"`
	Recommendation string        `json:"recommendation"`
}

// Event is a detected life event with a confidence in [0, 1].
type Event struct {
	Kind       EventKind `json:"kind"`
	Confidence float64   `json:"confidence"`
	Date       time.Time `json:"date"`
	Details    Details   `json:"details"`
	Message    string    `json:"message"`
}

// FeeLine is one fee transaction listed in a late_payment_fees indicator.
type FeeLine struct {
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// InsightKey identifies the ordinal-th finding of a kind within one
// analysis run. Ordinals start at 1 and follow result order, so the key is
// stable for a given result.
func InsightKey(analysisID, kind string, ordinal int) string {
	return fmt.Sprintf("%s/%s/%d", analysisID, kind, ordinal)
}
