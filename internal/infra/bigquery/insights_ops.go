package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const insightsTable = "insights"

// InsertInsightsWithClient inserts a batch of InsightRow using the provided client.
// The insight_id is used as the streaming insert ID so retried batches are deduplicated.
func InsertInsightsWithClient(ctx context.Context, client *bigquery.Client, dataset string, rows []*InsightRow) error {
	if len(rows) == 0 {
		return nil
	}

	savers := make([]*bigquery.StructSaver, 0, len(rows))
	for _, r := range rows {
		savers = append(savers, &bigquery.StructSaver{Struct: r, InsertID: r.InsightID})
	}

	inserter := client.Dataset(dataset).Table(insightsTable).Inserter()
	if err := inserter.Put(ctx, savers); err != nil {
		return fmt.Errorf("InsertInsights: inserting rows: %w", err)
	}
	return nil
}

// ListInsightsByAnalysisWithClient returns the insights of one analysis run
// in insertion order.
func ListInsightsByAnalysisWithClient(ctx context.Context, client *bigquery.Client, dataset, analysisID string) ([]*InsightRow, error) {
	q := client.Query(fmt.Sprintf(`
		SELECT
			insight_id,
			analysis_id,
			record_type,
			kind,
			severity,
			confidence,
			start_date,
			end_date,
			message,
			recommendation,
			details,
			created_ts
		FROM %s.%s
		WHERE analysis_id = @analysis_id
		ORDER BY created_ts, insight_id
	`, dataset, insightsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "analysis_id", Value: analysisID},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListInsightsByAnalysis: query read: %w", err)
	}

	var rows []*InsightRow
	for {
		var r InsightRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListInsightsByAnalysis: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}
