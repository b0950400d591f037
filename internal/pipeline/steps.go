package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/dvloznov/finance-insights/internal/logger"
)

// PipelineStep represents a single step in the analysis pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// Step 1: LoadTransactionsStep reads the transaction log from a source.
type LoadTransactionsStep struct {
	Source TransactionSource
}

func (s *LoadTransactionsStep) Execute(ctx context.Context, state *PipelineState) error {
	if s.Source == nil {
		return fmt.Errorf("LoadTransactionsStep: no source configured")
	}
	txns, err := s.Source.LoadTransactions(ctx)
	if err != nil {
		return fmt.Errorf("LoadTransactionsStep: %w", err)
	}
	state.Transactions = txns
	return nil
}

// Step 2: AnalyzeStep runs the engine over the loaded log.
type AnalyzeStep struct {
	Engine *insights.Engine
}

func (s *AnalyzeStep) Execute(ctx context.Context, state *PipelineState) error {
	res, err := s.Engine.Analyze(state.Transactions)
	if err != nil {
		return fmt.Errorf("AnalyzeStep: %w", err)
	}
	state.Result = res

	log := logger.FromContext(ctx)
	log.Info().
		Int("transactions", res.TransactionCount).
		Int("indicators", len(res.Indicators)).
		Int("events", len(res.Events)).
		Int("risk_score", res.RiskScore).
		Msg("analysis complete")
	return nil
}

// Step 3: PublishStep hands the result to every sink. All sinks are tried;
// the errors of those that failed are joined.
type PublishStep struct {
	Sinks []InsightSink
}

func (s *PublishStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Result == nil {
		return fmt.Errorf("PublishStep: no result to publish")
	}

	log := logger.FromContext(ctx)
	var errs []error
	for i, sink := range s.Sinks {
		if err := sink.PublishInsights(ctx, state.AnalysisID, state.Result); err != nil {
			log.Error().Err(err).Int("sink", i).Msg("publish failed")
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
			continue
		}
		state.Published++
	}
	if len(errs) > 0 {
		return fmt.Errorf("PublishStep: %w", errors.Join(errs...))
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially, stopping at the first failure.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}

// NewAnalysisPipeline creates the standard load, analyze, publish pipeline.
// The publish step is omitted when there are no sinks.
func NewAnalysisPipeline(source TransactionSource, engine *insights.Engine, sinks ...InsightSink) *Pipeline {
	steps := []PipelineStep{
		&LoadTransactionsStep{Source: source},
		&AnalyzeStep{Engine: engine},
	}
	if len(sinks) > 0 {
		steps = append(steps, &PublishStep{Sinks: sinks})
	}
	return NewPipeline(steps...)
}
