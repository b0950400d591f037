package insights

import (
	"testing"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestConfidenceFormula_Score(t *testing.T) {
	assert.Equal(t, 0.6, relocationConfidence.Score())
	assert.Equal(t, 0.95, relocationConfidence.Score(
		Bonus{Points: relocationDepositBoost, When: true},
		Bonus{Points: relocationUtilityBoost, When: true},
	))
	assert.Equal(t, 0.9, travelConfidence.Score(Bonus{Points: travelDestinationBoost, When: true}))
	assert.Equal(t, 0.95, travelConfidence.Score(
		Bonus{Points: travelDestinationBoost, When: true},
		Bonus{Points: travelHighSpendBoost, When: true},
	))
	assert.Equal(t, 0.7, travelConfidence.Score(Bonus{Points: travelHighSpendBoost, When: false}))
	assert.Equal(t, 0.0, ConfidenceFormula{Base: 10, Cap: 100}.Score(Bonus{Points: -50, When: true}))
}

func TestFeeSeverity(t *testing.T) {
	th := ThresholdsFor(SensitivityMedium)
	tests := []struct {
		total string
		count int
		want  domain.Severity
	}{
		{"10", 1, domain.SeverityLow},
		{"50", 2, domain.SeverityLow},
		{"50.01", 2, domain.SeverityMedium},
		{"20", 3, domain.SeverityHigh},
		{"500", 5, domain.SeverityHigh},
	}
	for _, tt := range tests {
		got := FeeSeverity(decimal.RequireFromString(tt.total), tt.count, th)
		assert.Equal(t, tt.want, got, "total=%s count=%d", tt.total, tt.count)
	}
}

func TestWithdrawalSeverity(t *testing.T) {
	assert.Equal(t, domain.SeverityMedium, WithdrawalSeverity(6))
	assert.Equal(t, domain.SeverityMedium, WithdrawalSeverity(9))
	assert.Equal(t, domain.SeverityHigh, WithdrawalSeverity(10))
}

func TestDeclineSeverity(t *testing.T) {
	tests := []struct {
		pct  float64
		want domain.Severity
	}{
		{20.5, domain.SeverityLow},
		{25, domain.SeverityMedium},
		{40, domain.SeverityMedium},
		{40.01, domain.SeverityHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeclineSeverity(tt.pct), "pct=%v", tt.pct)
	}
}

func TestRiskScore(t *testing.T) {
	ind := func(s domain.Severity) domain.Indicator { return domain.Indicator{Severity: s} }

	tests := []struct {
		name string
		in   []domain.Indicator
		want int
	}{
		{"empty", nil, 0},
		{"mixed", []domain.Indicator{ind(domain.SeverityHigh), ind(domain.SeverityMedium), ind(domain.SeverityLow)}, 50},
		{"capped", []domain.Indicator{
			ind(domain.SeverityHigh), ind(domain.SeverityHigh), ind(domain.SeverityHigh), ind(domain.SeverityHigh),
		}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RiskScore(tt.in))
		})
	}
}

func TestSortIndicators_Stable(t *testing.T) {
	in := []domain.Indicator{
		{Kind: "a", Severity: domain.SeverityLow},
		{Kind: "b", Severity: domain.SeverityHigh},
		{Kind: "c", Severity: domain.SeverityMedium},
		{Kind: "d", Severity: domain.SeverityHigh},
	}
	SortIndicators(in)

	var kinds []domain.IndicatorKind
	for _, i := range in {
		kinds = append(kinds, i.Kind)
	}
	assert.Equal(t, []domain.IndicatorKind{"b", "d", "c", "a"}, kinds)
}

func TestSortEvents_StableByDate(t *testing.T) {
	in := []domain.Event{
		{Kind: domain.EventTravel, Date: dayN(5)},
		{Kind: domain.EventJobChange, Date: dayN(1)},
		{Kind: domain.EventRelocation, Date: dayN(5)},
	}
	SortEvents(in)
	assert.Equal(t, domain.EventJobChange, in[0].Kind)
	assert.Equal(t, domain.EventTravel, in[1].Kind)
	assert.Equal(t, domain.EventRelocation, in[2].Kind)
}
