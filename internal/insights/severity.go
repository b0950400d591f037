package insights

import (
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	highFeeCount        = 3
	highWithdrawalCount = 10
	highDeclinePct      = 40.0
	lowDeclinePct       = 25.0
)

// FeeSeverity grades the fee indicator. The rules apply in order, so a high
// count overrides a large total.
func FeeSeverity(total decimal.Decimal, count int, th ThresholdSet) domain.Severity {
	sev := domain.SeverityLow
	if total.GreaterThan(th.HighFeeThreshold) {
		sev = domain.SeverityMedium
	}
	if count >= highFeeCount {
		sev = domain.SeverityHigh
	}
	return sev
}

// WithdrawalSeverity grades a small-withdrawal cluster.
func WithdrawalSeverity(count int) domain.Severity {
	if count >= highWithdrawalCount {
		return domain.SeverityHigh
	}
	return domain.SeverityMedium
}

// DeclineSeverity grades a balance decline percentage.
func DeclineSeverity(pct float64) domain.Severity {
	switch {
	case pct > highDeclinePct:
		return domain.SeverityHigh
	case pct < lowDeclinePct:
		return domain.SeverityLow
	default:
		return domain.SeverityMedium
	}
}

// SeverityRank orders severities high first. Unknown values sort last.
func SeverityRank(s domain.Severity) int {
	switch s {
	case domain.SeverityHigh:
		return 0
	case domain.SeverityMedium:
		return 1
	case domain.SeverityLow:
		return 2
	default:
		return 3
	}
}

// severityWeight is the risk score contribution of one indicator.
func severityWeight(s domain.Severity) int {
	switch s {
	case domain.SeverityHigh:
		return 30
	case domain.SeverityMedium:
		return 15
	case domain.SeverityLow:
		return 5
	default:
		return 0
	}
}
