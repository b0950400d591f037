package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/google/uuid"
)

const (
	analysisRunsTable = "analysis_runs"

	runStatusRunning = "RUNNING"
	runStatusSuccess = "SUCCESS"
	runStatusFailed  = "FAILED"

	maxErrorMessageLen = 2000
)

// StartAnalysisRunWithClient inserts a new row into analysis_runs with status=RUNNING
// and returns the analysis_id, generating one when analysisID is empty.
func StartAnalysisRunWithClient(ctx context.Context, client *bigquery.Client, dataset, analysisID, sensitivity string, transactionCount int) (string, error) {
	if analysisID == "" {
		analysisID = uuid.NewString()
	}

	q := client.Query(fmt.Sprintf(`
		INSERT %s.%s (
			analysis_id,
			started_ts,
			sensitivity,
			transaction_count,
			status
		)
		VALUES (
			@analysis_id,
			@started_ts,
			@sensitivity,
			@transaction_count,
			@status
		)
	`, dataset, analysisRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "analysis_id", Value: analysisID},
		{Name: "started_ts", Value: time.Now()},
		{Name: "sensitivity", Value: sensitivity},
		{Name: "transaction_count", Value: transactionCount},
		{Name: "status", Value: runStatusRunning},
	}

	if err := runAndWait(ctx, q); err != nil {
		return "", fmt.Errorf("StartAnalysisRun: %w", err)
	}
	return analysisID, nil
}

// MarkAnalysisRunFailedWithClient sets status=FAILED, finished_ts and error_message.
// Errors are logged because the caller is already handling a failure.
func MarkAnalysisRunFailedWithClient(ctx context.Context, client *bigquery.Client, dataset, analysisID string, runErr error) {
	log := logger.FromContext(ctx)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
		if len(errMsg) > maxErrorMessageLen {
			errMsg = errMsg[:maxErrorMessageLen]
		}
	}

	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE analysis_id = @analysis_id
	`, dataset, analysisRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: runStatusFailed},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: errMsg},
		{Name: "analysis_id", Value: analysisID},
	}

	if err := runAndWait(ctx, q); err != nil {
		log.Error().
			Err(err).
			Str("analysis_id", analysisID).
			Msg("MarkAnalysisRunFailed: update failed")
	}
}

// MarkAnalysisRunSucceededWithClient sets status=SUCCESS, finished_ts and risk_score.
func MarkAnalysisRunSucceededWithClient(ctx context.Context, client *bigquery.Client, dataset, analysisID string, riskScore int) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s.%s
		SET status = @status,
		    finished_ts = @finished_ts,
		    risk_score = @risk_score,
		    error_message = ""
		WHERE analysis_id = @analysis_id
	`, dataset, analysisRunsTable))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: runStatusSuccess},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "risk_score", Value: riskScore},
		{Name: "analysis_id", Value: analysisID},
	}

	if err := runAndWait(ctx, q); err != nil {
		return fmt.Errorf("MarkAnalysisRunSucceeded: %w", err)
	}
	return nil
}

// DeleteAnalysisWithClient removes an analysis run and its insights.
func DeleteAnalysisWithClient(ctx context.Context, client *bigquery.Client, dataset, analysisID string) error {
	for _, table := range []string{insightsTable, analysisRunsTable} {
		q := client.Query(fmt.Sprintf("DELETE FROM %s.%s WHERE analysis_id = @analysis_id", dataset, table))
		q.Parameters = []bigquery.QueryParameter{
			{Name: "analysis_id", Value: analysisID},
		}
		if err := runAndWait(ctx, q); err != nil {
			return fmt.Errorf("DeleteAnalysis: deleting from %s: %w", table, err)
		}
	}
	return nil
}

func runAndWait(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("wait for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}
