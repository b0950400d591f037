package insights

import (
	"sort"

	"github.com/dvloznov/finance-insights/internal/domain"
)

const maxRiskScore = 100

// SortIndicators orders indicators high severity first, keeping detector
// order within a severity.
func SortIndicators(in []domain.Indicator) {
	sort.SliceStable(in, func(i, j int) bool {
		return SeverityRank(in[i].Severity) < SeverityRank(in[j].Severity)
	})
}

// SortEvents orders events by date, keeping detector order on ties.
func SortEvents(in []domain.Event) {
	sort.SliceStable(in, func(i, j int) bool { return in[i].Date.Before(in[j].Date) })
}

// RiskScore sums 30/15/5 points per high/medium/low indicator, capped at 100.
func RiskScore(indicators []domain.Indicator) int {
	score := 0
	for _, ind := range indicators {
		score += severityWeight(ind.Severity)
	}
	if score > maxRiskScore {
		return maxRiskScore
	}
	return score
}
