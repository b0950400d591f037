package metrics

import (
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "finance_insights"

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Analyses  *prometheus.CounterVec
	RiskScore prometheus.Histogram
	Findings  *prometheus.CounterVec
}

// New registers the collectors with reg. Use prometheus.NewRegistry in tests
// to avoid clashing with the default registry.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		Analyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Completed analyses by sensitivity.",
		}, []string{"sensitivity"}),
		RiskScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_score",
			Help:      "Distribution of financial stress risk scores.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		Findings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "findings_total",
			Help:      "Detected stress indicators and life events by kind.",
		}, []string{"kind"}),
	}
}

// ObserveResult records one finished analysis. Nil receivers and results are ignored.
func (m *Metrics) ObserveResult(res *insights.Result) {
	if m == nil || res == nil {
		return
	}
	m.Analyses.WithLabelValues(string(res.Sensitivity)).Inc()
	m.RiskScore.Observe(float64(res.RiskScore))
	for _, ind := range res.Indicators {
		m.Findings.WithLabelValues(string(ind.Kind)).Inc()
	}
	for _, ev := range res.Events {
		m.Findings.WithLabelValues(string(ev.Kind)).Inc()
	}
}
