package insights

import (
	"testing"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunningBalance(t *testing.T) {
	txns := normalize(t, groceries(0, -100), payroll(1, "ACME Corp", 2500), groceries(2, -50.25))

	got := RunningBalance(txns, decimal.NewFromInt(1000))
	require.Len(t, got, 3)
	assert.Equal(t, "900", got[0].String())
	assert.Equal(t, "3400", got[1].String())
	assert.Equal(t, "3349.75", got[2].String())
}

func TestRunningBalance_DoesNotMutateInput(t *testing.T) {
	txns := normalize(t, groceries(0, -100))
	before := txns[0]
	RunningBalance(txns, DefaultStartingBalance)
	assert.Equal(t, before, txns[0])
}

func TestAnalyzeTrend(t *testing.T) {
	txns := normalize(t, decliningHistory()...)

	trend, ok := AnalyzeTrend(txns, DefaultStartingBalance)
	require.True(t, ok)
	assert.Equal(t, dayN(40), trend.Midpoint)
	assert.Equal(t, "3900", trend.EarlyMean.String())
	assert.Equal(t, "1850", trend.LateMean.String())
	assert.Equal(t, "900", trend.Current.String())
	assert.InDelta(t, 52.5641, trend.DeclinePct, 0.001)
}

func TestAnalyzeTrend_SpanTooShort(t *testing.T) {
	rs := make([]domain.RawTransaction, 0, 40)
	for i := 0; i < 40; i++ {
		rs = append(rs, groceries(i, -10))
	}
	_, ok := AnalyzeTrend(normalize(t, rs...), DefaultStartingBalance)
	assert.False(t, ok, "39-day span is below the 60-day minimum")
}

func TestAnalyzeTrend_OddSpanMidpointFloors(t *testing.T) {
	rs := decliningHistory()
	rs = append(rs, groceries(81, -10))
	trend, ok := AnalyzeTrend(normalize(t, rs...), DefaultStartingBalance)
	require.True(t, ok)
	assert.Equal(t, dayN(40), trend.Midpoint)
}

func TestAnalyzeTrend_RisingBalance(t *testing.T) {
	rs := make([]domain.RawTransaction, 0, 41)
	for i := 0; i <= 40; i++ {
		rs = append(rs, payroll(i*2, "ACME Corp", 100))
	}
	trend, ok := AnalyzeTrend(normalize(t, rs...), DefaultStartingBalance)
	require.True(t, ok)
	assert.Less(t, trend.DeclinePct, 0.0)
}
