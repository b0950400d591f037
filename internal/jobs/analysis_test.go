package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/dvloznov/finance-insights/internal/pipeline"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loanLog() []domain.RawTransaction {
	amt := decimal.RequireFromString("-400")
	return []domain.RawTransaction{
		{Date: "2024-01-05", Description: "Payday advance", Amount: &amt, Category: "Loan", Merchant: "QuickCash", Type: "withdrawal"},
	}
}

func TestPermanent(t *testing.T) {
	assert.Nil(t, Permanent(nil))

	base := errors.New("bad input")
	err := fmt.Errorf("wrapped: %w", Permanent(base))
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, base)
	assert.False(t, IsPermanent(base))
}

func TestAnalysisHandler_Success(t *testing.T) {
	var published string
	sink := pipeline.SinkFunc(func(_ context.Context, id string, _ *insights.Result) error {
		published = id
		return nil
	})
	handler := NewAnalysisHandler(InlineSource, nil, sink)

	job := &AnalysisJob{JobID: "j1", Sensitivity: "high", StartingBalance: "1000", Transactions: loanLog()}
	require.NoError(t, handler(context.Background(), job))

	require.NotNil(t, job.Result)
	assert.Equal(t, insights.SensitivityHigh, job.Result.Sensitivity)
	assert.NotEmpty(t, job.AnalysisID)
	assert.Equal(t, job.AnalysisID, published)
}

func TestAnalysisHandler_KeepsAnalysisIDAcrossRetries(t *testing.T) {
	calls := 0
	sink := pipeline.SinkFunc(func(context.Context, string, *insights.Result) error {
		calls++
		return errors.New("sink down")
	})
	handler := NewAnalysisHandler(InlineSource, nil, sink)

	job := &AnalysisJob{Transactions: loanLog()}
	err := handler(context.Background(), job)
	require.Error(t, err)
	assert.False(t, IsPermanent(err), "sink failures are retried")
	first := job.AnalysisID

	_ = handler(context.Background(), job)
	assert.Equal(t, first, job.AnalysisID)
	assert.Equal(t, 2, calls)
}

func TestAnalysisHandler_InputErrorsArePermanent(t *testing.T) {
	handler := NewAnalysisHandler(InlineSource, nil)

	err := handler(context.Background(), &AnalysisJob{Transactions: []domain.RawTransaction{{Date: "2024-01-01"}}})
	assert.True(t, IsPermanent(err))

	amt := decimal.NewFromInt(-1)
	err = handler(context.Background(), &AnalysisJob{Transactions: []domain.RawTransaction{
		{Date: "yesterday", Description: "x", Amount: &amt, Category: "c", Merchant: "m", Type: "purchase"},
	}})
	assert.True(t, IsPermanent(err))
	assert.ErrorIs(t, err, insights.ErrInvalidDate)

	err = handler(context.Background(), &AnalysisJob{StartingBalance: "lots", Transactions: loanLog()})
	assert.True(t, IsPermanent(err))

	now := time.Now()
	err = handler(context.Background(), &AnalysisJob{StartDate: &now})
	assert.True(t, IsPermanent(err))
}
