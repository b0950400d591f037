package pipeline

import (
	"context"

	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/google/uuid"
)

// RunAnalysis loads transactions from source, analyzes them with engine and
// publishes the result to sinks under a fresh analysis id.
//
// The result is returned whenever analysis succeeded, even if a sink failed,
// so callers can still report it.
func RunAnalysis(ctx context.Context, source TransactionSource, engine *insights.Engine, sinks ...InsightSink) (*insights.Result, error) {
	state := &PipelineState{AnalysisID: uuid.NewString()}
	return RunAnalysisWithState(ctx, state, source, engine, sinks...)
}

// RunAnalysisWithState is RunAnalysis with a caller-provided state, letting
// callers choose the analysis id and inspect the loaded transactions.
func RunAnalysisWithState(ctx context.Context, state *PipelineState, source TransactionSource, engine *insights.Engine, sinks ...InsightSink) (*insights.Result, error) {
	if state.AnalysisID == "" {
		state.AnalysisID = uuid.NewString()
	}
	log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{"analysis_id": state.AnalysisID})
	ctx = logger.WithContext(ctx, log)

	err := NewAnalysisPipeline(source, engine, sinks...).Execute(ctx, state)
	return state.Result, err
}
