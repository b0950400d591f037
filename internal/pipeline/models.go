package pipeline

import (
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
)

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	AnalysisID   string
	Transactions []domain.RawTransaction
	Result       *insights.Result

	// Published counts the sinks that accepted the result.
	Published int
}
