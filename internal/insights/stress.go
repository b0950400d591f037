package insights

import (
	"fmt"
	"math"
	"strings"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	recommendFees        = "Consider setting up automatic payments to avoid late fees."
	recommendWithdrawals = "Multiple small withdrawals may indicate cash flow difficulties. Consider reviewing your budget."
	recommendPayday      = "Payday loans often have very high interest rates. Explore alternatives like credit union loans or payment plans."
	recommendDecline     = "Your account balance is declining. Review your spending and consider ways to increase income or reduce expenses."
)

var (
	isFee = AnyOf(TypeIs(domain.TypeFee), DescriptionMatches(feeKeywords))
	// Withdrawal candidates include card purchases at ATMs that are not
	// typed as withdrawals.
	isWithdrawal = AnyOf(TypeIs(domain.TypeWithdrawal), DescriptionMatches(atmKeywords))
	isPayday     = AnyOf(DescriptionMatches(paydayKeywords), CategoryIs("Loan"))
)

// DetectFees aggregates every fee-like transaction into a single indicator.
func DetectFees(txns []domain.Transaction, th ThresholdSet) []domain.Indicator {
	fees := Filter(txns, isFee)
	if len(fees) == 0 {
		return nil
	}

	var sum decimal.Decimal
	var overdraft, late int
	lines := make([]domain.FeeLine, 0, len(fees))
	for _, f := range fees {
		sum = sum.Add(f.Amount)
		desc := strings.ToLower(f.Description)
		if strings.Contains(desc, "overdraft") {
			overdraft++
		}
		if strings.Contains(desc, "late") {
			late++
		}
		lines = append(lines, domain.FeeLine{Date: f.Date, Description: f.Description, Amount: f.Amount})
	}
	total := sum.Abs()

	return []domain.Indicator{{
		Kind:     domain.IndicatorLatePaymentFees,
		Severity: FeeSeverity(total, len(fees), th),
		Start:    fees[0].Date,
		End:      fees[len(fees)-1].Date,
		Details: domain.Details{
			"total_fees":        total,
			"num_fees":          len(fees),
			"overdraft_fees":    overdraft,
			"late_payment_fees": late,
			"fee_list":          lines,
		},
		Message:        fmt.Sprintf("%d late payment/overdraft fee(s) detected ($%s total)", len(fees), total.StringFixed(2)),
		Recommendation: recommendFees,
	}}
}

// DetectSmallWithdrawals reports the first window in which small
// withdrawals reach the configured count.
func DetectSmallWithdrawals(txns []domain.Transaction, th ThresholdSet) []domain.Indicator {
	small := Filter(Filter(txns, isWithdrawal), func(t domain.Transaction) bool {
		return t.Amount.Abs().LessThan(th.SmallWithdrawalCeiling)
	})

	w, ok := FirstWindow(small, th.SmallWithdrawalWindowDays, th.SmallWithdrawalMinCount)
	if !ok {
		return nil
	}

	var sum decimal.Decimal
	for _, t := range w.Members {
		sum = sum.Add(t.Amount.Abs())
	}
	n := len(w.Members)

	return []domain.Indicator{{
		Kind:     domain.IndicatorFrequentSmallWithdrawals,
		Severity: WithdrawalSeverity(n),
		Start:    w.Start,
		End:      w.End,
		Details: domain.Details{
			"num_withdrawals": n,
			"total_amount":    sum,
			"avg_withdrawal":  sum.Div(decimal.NewFromInt(int64(n))).Round(2),
			"days":            th.SmallWithdrawalWindowDays,
		},
		Message:        fmt.Sprintf("%d small ATM withdrawals in %d days (potential cash flow issue)", n, th.SmallWithdrawalWindowDays),
		Recommendation: recommendWithdrawals,
	}}
}

// DetectPaydayLoans emits one high-severity indicator per payday-style
// transaction.
func DetectPaydayLoans(txns []domain.Transaction) []domain.Indicator {
	var out []domain.Indicator
	for _, t := range Filter(txns, isPayday) {
		amt := t.Amount.Abs()
		out = append(out, domain.Indicator{
			Kind:     domain.IndicatorPaydayLoan,
			Severity: domain.SeverityHigh,
			Start:    t.Date,
			End:      t.Date,
			Details: domain.Details{
				"merchant": t.Merchant,
				"amount":   amt,
				"date":     t.Date,
			},
			Message:        fmt.Sprintf("Potential payday loan detected: $%s", amt.StringFixed(2)),
			Recommendation: recommendPayday,
		})
	}
	return out
}

// DetectDecliningBalance compares early and late mean balances and reports
// a decline beyond the configured percentage.
func DetectDecliningBalance(txns []domain.Transaction, th ThresholdSet, start decimal.Decimal) []domain.Indicator {
	trend, ok := AnalyzeTrend(txns, start)
	if !ok || trend.DeclinePct <= th.BalanceDeclinePct {
		return nil
	}
	pct := math.Round(trend.DeclinePct*100) / 100

	return []domain.Indicator{{
		Kind:     domain.IndicatorDecliningBalance,
		Severity: DeclineSeverity(trend.DeclinePct),
		Start:    trend.Start,
		End:      trend.End,
		Details: domain.Details{
			"early_avg_balance":  trend.EarlyMean.Round(2),
			"recent_avg_balance": trend.LateMean.Round(2),
			"decline_percentage": pct,
			"current_balance":    trend.Current,
		},
		Message:        fmt.Sprintf("Account balance declining by %.1f%% over time", trend.DeclinePct),
		Recommendation: recommendDecline,
	}}
}
