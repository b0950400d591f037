package jobs

import (
	"context"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/dvloznov/finance-insights/internal/pipeline"
	"github.com/shopspring/decimal"
)

// SourceResolver chooses the transaction source for a job.
type SourceResolver func(job *AnalysisJob) (pipeline.TransactionSource, error)

// InlineSource serves the job's inline transactions.
func InlineSource(job *AnalysisJob) (pipeline.TransactionSource, error) {
	if job.StartDate != nil || job.EndDate != nil {
		return nil, fmt.Errorf("InlineSource: date-range jobs need a transaction store")
	}
	return pipeline.StaticSource(job.Transactions), nil
}

// NewAnalysisHandler returns a handler that runs the analysis pipeline for
// each job. The job's sensitivity and starting balance override base.
// Invalid input is reported as a Permanent error.
func NewAnalysisHandler(resolve SourceResolver, base []insights.Option, sinks ...pipeline.InsightSink) JobHandler {
	return func(ctx context.Context, job *AnalysisJob) error {
		source, err := resolve(job)
		if err != nil {
			return Permanent(err)
		}

		opts := append([]insights.Option{}, base...)
		if job.Sensitivity != "" {
			opts = append(opts, insights.WithSensitivity(insights.ParseSensitivity(job.Sensitivity)))
		}
		if job.StartingBalance != "" {
			bal, err := decimal.NewFromString(job.StartingBalance)
			if err != nil {
				return Permanent(fmt.Errorf("invalid starting balance %q: %w", job.StartingBalance, err))
			}
			opts = append(opts, insights.WithStartingBalance(bal))
		}

		state := &pipeline.PipelineState{AnalysisID: job.AnalysisID}
		res, err := pipeline.RunAnalysisWithState(ctx, state, source, insights.NewEngine(opts...), sinks...)
		job.AnalysisID = state.AnalysisID
		job.Result = res
		if err != nil && insights.IsInputError(err) {
			return Permanent(err)
		}
		return err
	}
}
