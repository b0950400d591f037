package bigquery

import (
	"context"
	"encoding/json"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// TransactionRepository provides read access to stored transactions.
type TransactionRepository interface {
	// QueryTransactionsByDateRange returns transactions dated within [startDate, endDate].
	QueryTransactionsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*TransactionRow, error)
}

// InsightRepository persists analysis runs and the insights they produced.
type InsightRepository interface {
	// StartAnalysisRun inserts a run with status=RUNNING and returns its analysis_id.
	// An empty analysisID is replaced with a generated one.
	StartAnalysisRun(ctx context.Context, analysisID, sensitivity string, transactionCount int) (string, error)

	// MarkAnalysisRunSucceeded sets status=SUCCESS and stores the risk score.
	MarkAnalysisRunSucceeded(ctx context.Context, analysisID string, riskScore int) error

	// MarkAnalysisRunFailed sets status=FAILED with the error message. Failures are logged, not returned.
	MarkAnalysisRunFailed(ctx context.Context, analysisID string, runErr error)

	// InsertInsights inserts a batch of InsightRow.
	InsertInsights(ctx context.Context, rows []*InsightRow) error

	// ListInsightsByAnalysis returns the insights of one analysis run.
	ListInsightsByAnalysis(ctx context.Context, analysisID string) ([]*InsightRow, error)
}

// TransactionRow represents a transaction record in BigQuery.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id" json:"transaction_id"`
	AccountID     string `bigquery:"account_id" json:"account_id"`

	TransactionDate civil.Date `bigquery:"transaction_date" json:"transaction_date"`

	Amount   *big.Rat `bigquery:"amount" json:"-"`
	Currency string   `bigquery:"currency" json:"currency"`

	Direction bigquery.NullString `bigquery:"direction" json:"direction,omitempty"`

	TransactionType bigquery.NullString `bigquery:"transaction_type" json:"transaction_type,omitempty"`

	RawDescription        string              `bigquery:"raw_description" json:"raw_description"`
	NormalizedDescription bigquery.NullString `bigquery:"normalized_description" json:"normalized_description,omitempty"`

	CategoryName bigquery.NullString `bigquery:"category_name" json:"category_name,omitempty"`
	MerchantName bigquery.NullString `bigquery:"merchant_name" json:"merchant_name,omitempty"`
	Location     bigquery.NullString `bigquery:"location" json:"location,omitempty"`

	CreatedTS time.Time `bigquery:"created_ts" json:"created_ts"`
}

// MarshalJSON renders the NUMERIC amount with two decimals.
func (t TransactionRow) MarshalJSON() ([]byte, error) {
	type Alias TransactionRow
	amount := decimal.Zero
	if t.Amount != nil {
		amount = decimal.NewFromBigRat(t.Amount, 2)
	}
	return json.Marshal(&struct {
		Amount string `json:"amount"`
		Alias
	}{
		Amount: amount.StringFixed(2),
		Alias:  Alias(t),
	})
}

// AnalysisRunRow represents one execution of the analysis engine.
type AnalysisRunRow struct {
	AnalysisID string `bigquery:"analysis_id"`

	StartedTS  time.Time              `bigquery:"started_ts"`
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"`

	Sensitivity      string `bigquery:"sensitivity"`
	TransactionCount int64  `bigquery:"transaction_count"`

	Status       string             `bigquery:"status"`
	ErrorMessage string             `bigquery:"error_message"`
	RiskScore    bigquery.NullInt64 `bigquery:"risk_score"`
}

// InsightRow is one stress indicator or life event of an analysis run.
type InsightRow struct {
	InsightID  string `bigquery:"insight_id" json:"insight_id"`
	AnalysisID string `bigquery:"analysis_id" json:"analysis_id"`

	// RecordType is "indicator" or "event".
	RecordType string `bigquery:"record_type" json:"record_type"`
	Kind       string `bigquery:"kind" json:"kind"`

	Severity   bigquery.NullString  `bigquery:"severity" json:"severity,omitempty"`
	Confidence bigquery.NullFloat64 `bigquery:"confidence" json:"confidence,omitempty"`

	StartDate civil.Date        `bigquery:"start_date" json:"start_date"`
	EndDate   bigquery.NullDate `bigquery:"end_date" json:"end_date,omitempty"`

	Message        string              `bigquery:"message" json:"message"`
	Recommendation bigquery.NullString `bigquery:"recommendation" json:"recommendation,omitempty"`

	Details bigquery.NullJSON `bigquery:"details" json:"details,omitempty"`

	CreatedTS time.Time `bigquery:"created_ts" json:"created_ts"`
}
