package insights

import (
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	// minTrendRecords is the record count the trend analysis must exceed.
	minTrendRecords = 30
	// minTrendSpanDays is the shortest span of history worth splitting.
	minTrendSpanDays = 60
)

// DefaultStartingBalance seeds the running balance when none is configured.
var DefaultStartingBalance = decimal.NewFromInt(5000)

// RunningBalance returns start plus the cumulative sum of amounts, one value
// per transaction in the order given.
func RunningBalance(txns []domain.Transaction, start decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(txns))
	bal := start
	for i, t := range txns {
		bal = bal.Add(t.Amount)
		out[i] = bal
	}
	return out
}

// Trend compares the mean running balance of the early and late halves of
// a transaction history.
type Trend struct {
	Start      time.Time
	End        time.Time
	Midpoint   time.Time
	EarlyMean  decimal.Decimal
	LateMean   decimal.Decimal
	DeclinePct float64
	Current    decimal.Decimal
}

// AnalyzeTrend splits txns (sorted ascending by date) at the day midpoint of
// their span. It reports false when the history is too short or the early
// mean is not positive, in which case no decline can be computed.
func AnalyzeTrend(txns []domain.Transaction, start decimal.Decimal) (Trend, bool) {
	if len(txns) <= minTrendRecords {
		return Trend{}, false
	}
	first, last := txns[0].Date, txns[len(txns)-1].Date
	span := daysBetween(first, last)
	if span < minTrendSpanDays {
		return Trend{}, false
	}

	mid := addDays(first, span/2)
	balances := RunningBalance(txns, start)

	var earlySum, lateSum decimal.Decimal
	var earlyN, lateN int64
	for i, t := range txns {
		if t.Date.After(mid) {
			lateSum = lateSum.Add(balances[i])
			lateN++
		} else {
			earlySum = earlySum.Add(balances[i])
			earlyN++
		}
	}
	if earlyN == 0 || lateN == 0 {
		return Trend{}, false
	}

	early := earlySum.Div(decimal.NewFromInt(earlyN))
	late := lateSum.Div(decimal.NewFromInt(lateN))
	if !early.IsPositive() {
		return Trend{}, false
	}
	pct := early.Sub(late).Div(early).Mul(decimal.NewFromInt(100)).InexactFloat64()

	return Trend{
		Start:      first,
		End:        last,
		Midpoint:   mid,
		EarlyMean:  early,
		LateMean:   late,
		DeclinePct: pct,
		Current:    balances[len(balances)-1],
	}, true
}
