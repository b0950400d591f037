package metrics

import (
	"testing"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveResult(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveResult(&insights.Result{
		Sensitivity: insights.SensitivityLow,
		Indicators: []domain.Indicator{
			{Kind: domain.IndicatorPaydayLoan},
			{Kind: domain.IndicatorPaydayLoan},
		},
		Events:    []domain.Event{{Kind: domain.EventTravel}},
		RiskScore: 60,
	})
	m.ObserveResult(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Analyses.WithLabelValues("low")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Findings.WithLabelValues("payday_loan")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Findings.WithLabelValues("travel")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RiskScore))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveResult(&insights.Result{}) })
}
