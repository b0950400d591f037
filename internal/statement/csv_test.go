package statement

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `Date,Description,Amount,Category,Merchant,Type,Location,Notes
2024-01-02,Payroll Deposit - ACME Corp,2500.00,Income,ACME Corp,deposit,,ignored
2024-01-03,"Hotel, Paris","$1,200.50",Travel,Le Marais,purchase,"Paris, France",
2024-01-04,ATM Withdrawal,-40,Cash,ATM,withdrawal,,
`

func TestReadCSV(t *testing.T) {
	got, err := ReadCSV(context.Background(), strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "2024-01-02", got[0].Date)
	assert.Equal(t, "2500", got[0].Amount.String())
	assert.Nil(t, got[0].Location)

	assert.Equal(t, "Hotel, Paris", got[1].Description)
	assert.Equal(t, "1200.5", got[1].Amount.String())
	require.NotNil(t, got[1].Location)
	assert.Equal(t, "Paris, France", *got[1].Location)

	assert.Equal(t, "withdrawal", got[2].Type)
}

func TestReadCSV_FeedsEngine(t *testing.T) {
	raw, err := ReadCSV(context.Background(), strings.NewReader(sample))
	require.NoError(t, err)

	res, err := insights.NewEngine().Analyze(raw)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TransactionCount)
	require.Len(t, res.Events, 1)
	assert.Equal(t, domain.EventTravel, res.Events[0].Kind)
}

func TestReadCSV_Empty(t *testing.T) {
	got, err := ReadCSV(context.Background(), strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReadCSV_MissingColumn(t *testing.T) {
	_, err := ReadCSV(context.Background(), strings.NewReader("date,description,amount,category,type\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), "merchant")
}

func TestReadCSV_InvalidAmount(t *testing.T) {
	in := "date,description,amount,category,merchant,type\n2024-01-01,Coffee,abc,Dining,Cafe,purchase\n"
	_, err := ReadCSV(context.Background(), strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAmount))
	assert.Contains(t, err.Error(), "row 2")
}

func TestReadCSV_EmptyAmountLeftForValidation(t *testing.T) {
	in := "date,description,amount,category,merchant,type\n2024-01-01,Coffee,,Dining,Cafe,purchase\n"
	raw, err := ReadCSV(context.Background(), strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Nil(t, raw[0].Amount)

	_, err = insights.Normalize(raw)
	assert.True(t, errors.Is(err, insights.ErrMissingField))
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	loc := "Lisbon"
	txns := []domain.Transaction{
		{ID: 1, Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Description: "Hotel", Amount: decimal.RequireFromString("-320.5"),
			Category: "Travel", Merchant: "Hotel Lx", Type: domain.TypePurchase, Location: &loc},
		{ID: 2, Date: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), Description: "Coffee", Amount: decimal.RequireFromString("-3"),
			Category: "Dining", Merchant: "Cafe", Type: domain.TypePurchase},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txns))
	assert.Contains(t, buf.String(), "1,2024-02-01,Hotel,-320.50,Travel,Hotel Lx,purchase,Lisbon")

	back, err := ReadCSV(context.Background(), &buf)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "-320.5", back[0].Amount.String())
	assert.Nil(t, back[1].Location)
}

func TestWriteIndicatorsAndEventsCSV(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	var ind bytes.Buffer
	require.NoError(t, WriteIndicatorsCSV(&ind, []domain.Indicator{{
		Kind: domain.IndicatorPaydayLoan, Severity: domain.SeverityHigh, Start: day, End: day,
		Message: "Potential payday loan detected: $400.00", Recommendation: "Explore alternatives",
	}}))
	assert.Contains(t, ind.String(), "payday_loan,high,2024-03-01,2024-03-01")

	var ev bytes.Buffer
	require.NoError(t, WriteEventsCSV(&ev, []domain.Event{{
		Kind: domain.EventRelocation, Date: day, Confidence: 0.95, Message: "Potential relocation detected on 2024-03-01",
	}}))
	assert.Contains(t, ev.String(), "relocation,2024-03-01,0.95,")
}
