package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	bq "github.com/dvloznov/finance-insights/internal/bigquery"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
)

// Re-export row types and interfaces from the shared package.
type (
	TransactionRow        = bq.TransactionRow
	InsightRow            = bq.InsightRow
	AnalysisRunRow        = bq.AnalysisRunRow
	TransactionRepository = bq.TransactionRepository
	InsightRepository     = bq.InsightRepository
)

// BigQueryInsightsRepository reads transactions from and writes analysis
// results to one dataset. It holds a shared client to avoid creating a new
// connection for each operation.
type BigQueryInsightsRepository struct {
	client  *bigquery.Client
	dataset string
	now     func() time.Time
}

var (
	_ TransactionRepository = (*BigQueryInsightsRepository)(nil)
	_ InsightRepository     = (*BigQueryInsightsRepository)(nil)
)

// NewBigQueryInsightsRepository creates a repository with a new BigQuery client.
func NewBigQueryInsightsRepository(ctx context.Context, projectID, dataset string) (*BigQueryInsightsRepository, error) {
	if projectID == "" {
		return nil, fmt.Errorf("NewBigQueryInsightsRepository: project id is required")
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewBigQueryInsightsRepository: creating client: %w", err)
	}
	return &BigQueryInsightsRepository{client: client, dataset: dataset, now: time.Now}, nil
}

// Close closes the BigQuery client connection.
func (r *BigQueryInsightsRepository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// QueryTransactionsByDateRange delegates to QueryTransactionsByDateRangeWithClient.
func (r *BigQueryInsightsRepository) QueryTransactionsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*TransactionRow, error) {
	return QueryTransactionsByDateRangeWithClient(ctx, r.client, r.dataset, startDate, endDate)
}

// StartAnalysisRun delegates to StartAnalysisRunWithClient.
func (r *BigQueryInsightsRepository) StartAnalysisRun(ctx context.Context, analysisID, sensitivity string, transactionCount int) (string, error) {
	return StartAnalysisRunWithClient(ctx, r.client, r.dataset, analysisID, sensitivity, transactionCount)
}

// MarkAnalysisRunSucceeded delegates to MarkAnalysisRunSucceededWithClient.
func (r *BigQueryInsightsRepository) MarkAnalysisRunSucceeded(ctx context.Context, analysisID string, riskScore int) error {
	return MarkAnalysisRunSucceededWithClient(ctx, r.client, r.dataset, analysisID, riskScore)
}

// MarkAnalysisRunFailed delegates to MarkAnalysisRunFailedWithClient.
func (r *BigQueryInsightsRepository) MarkAnalysisRunFailed(ctx context.Context, analysisID string, runErr error) {
	MarkAnalysisRunFailedWithClient(ctx, r.client, r.dataset, analysisID, runErr)
}

// InsertInsights delegates to InsertInsightsWithClient.
func (r *BigQueryInsightsRepository) InsertInsights(ctx context.Context, rows []*InsightRow) error {
	return InsertInsightsWithClient(ctx, r.client, r.dataset, rows)
}

// ListInsightsByAnalysis delegates to ListInsightsByAnalysisWithClient.
func (r *BigQueryInsightsRepository) ListInsightsByAnalysis(ctx context.Context, analysisID string) ([]*InsightRow, error) {
	return ListInsightsByAnalysisWithClient(ctx, r.client, r.dataset, analysisID)
}

// DeleteAnalysis delegates to DeleteAnalysisWithClient.
func (r *BigQueryInsightsRepository) DeleteAnalysis(ctx context.Context, analysisID string) error {
	return DeleteAnalysisWithClient(ctx, r.client, r.dataset, analysisID)
}

// PublishInsights stores a finished analysis: it records the run and
// inserts one row per finding.
func (r *BigQueryInsightsRepository) PublishInsights(ctx context.Context, analysisID string, res *insights.Result) error {
	return PublishInsights(ctx, r, analysisID, res, r.now())
}

// PublishInsights writes res through repo as a run record plus insight rows.
// A failed insert marks the run FAILED.
func PublishInsights(ctx context.Context, repo InsightRepository, analysisID string, res *insights.Result, now time.Time) error {
	if res == nil {
		return fmt.Errorf("PublishInsights: nil result")
	}

	runID, err := repo.StartAnalysisRun(ctx, analysisID, string(res.Sensitivity), res.TransactionCount)
	if err != nil {
		return fmt.Errorf("PublishInsights: %w", err)
	}

	rows, err := NewInsightRows(runID, res, now)
	if err == nil {
		err = repo.InsertInsights(ctx, rows)
	}
	if err != nil {
		repo.MarkAnalysisRunFailed(ctx, runID, err)
		return fmt.Errorf("PublishInsights: %w", err)
	}

	if err := repo.MarkAnalysisRunSucceeded(ctx, runID, res.RiskScore); err != nil {
		return fmt.Errorf("PublishInsights: %w", err)
	}
	return nil
}

// DateRangeSource loads the transactions of a date range for analysis.
type DateRangeSource struct {
	Repo  TransactionRepository
	Start time.Time
	End   time.Time
}

// LoadTransactions queries the range and converts the rows to engine input.
func (s DateRangeSource) LoadTransactions(ctx context.Context) ([]domain.RawTransaction, error) {
	rows, err := s.Repo.QueryTransactionsByDateRange(ctx, s.Start, s.End)
	if err != nil {
		return nil, fmt.Errorf("DateRangeSource.LoadTransactions: %w", err)
	}
	return ToRawTransactions(rows), nil
}
