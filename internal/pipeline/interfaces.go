package pipeline

import (
	"context"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
)

// TransactionSource supplies the raw transaction log for one analysis.
// Implementations include CSV files, GCS exports, BigQuery date ranges and
// data-lake accounts.
type TransactionSource interface {
	LoadTransactions(ctx context.Context) ([]domain.RawTransaction, error)
}

// InsightSink receives the result of a finished analysis.
type InsightSink interface {
	PublishInsights(ctx context.Context, analysisID string, res *insights.Result) error
}

// SourceFunc adapts a function to TransactionSource.
type SourceFunc func(ctx context.Context) ([]domain.RawTransaction, error)

// LoadTransactions calls f.
func (f SourceFunc) LoadTransactions(ctx context.Context) ([]domain.RawTransaction, error) {
	return f(ctx)
}

// StaticSource serves a fixed transaction log.
type StaticSource []domain.RawTransaction

// LoadTransactions returns the log itself.
func (s StaticSource) LoadTransactions(context.Context) ([]domain.RawTransaction, error) {
	return s, nil
}

// SinkFunc adapts a function to InsightSink.
type SinkFunc func(ctx context.Context, analysisID string, res *insights.Result) error

// PublishInsights calls f.
func (f SinkFunc) PublishInsights(ctx context.Context, analysisID string, res *insights.Result) error {
	return f(ctx, analysisID, res)
}
