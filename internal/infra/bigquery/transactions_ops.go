package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	transactionsTable = "transactions"
	dateFormat        = "2006-01-02"
)

// QueryTransactionsByDateRangeWithClient queries transactions within the specified
// date range using the provided BigQuery client, ordered by date then insertion time.
func QueryTransactionsByDateRangeWithClient(ctx context.Context, client *bigquery.Client, dataset string, startDate, endDate time.Time) ([]*TransactionRow, error) {
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: end date %s before start date %s",
			endDate.Format(dateFormat), startDate.Format(dateFormat))
	}

	q := client.Query(fmt.Sprintf(`
		SELECT
			t.transaction_id,
			t.account_id,
			t.transaction_date,
			t.amount,
			t.currency,
			t.direction,
			t.transaction_type,
			t.raw_description,
			t.normalized_description,
			t.category_name,
			t.merchant_name,
			t.location,
			t.created_ts
		FROM %s.%s t
		WHERE t.transaction_date >= @start_date
		  AND t.transaction_date <= @end_date
		ORDER BY t.transaction_date, t.created_ts
	`, dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: startDate.Format(dateFormat)},
		{Name: "end_date", Value: endDate.Format(dateFormat)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsByDateRange: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
