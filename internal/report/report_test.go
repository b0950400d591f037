package report

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
	"google.golang.org/genai"
)

var day = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func sampleResult() *insights.Result {
	return &insights.Result{
		Sensitivity:      insights.SensitivityMedium,
		TransactionCount: 42,
		Indicators: []domain.Indicator{
			{Kind: domain.IndicatorPaydayLoan, Severity: domain.SeverityHigh, Start: day, End: day,
				Message: "Potential payday loan detected: $400.00", Recommendation: "Explore alternatives."},
			{Kind: domain.IndicatorLatePaymentFees, Severity: domain.SeverityLow, Start: day, End: day,
				Message: "1 late payment/overdraft fee(s) detected ($10.00 total)", Recommendation: "Automate payments."},
		},
		Events: []domain.Event{
			{Kind: domain.EventJobChange, Confidence: 0.85, Date: day,
				Details: domain.Details{
					"new_employer":       "Globex",
					"previous_employer":  "ACME Corp",
					"first_payment_date": day,
					"income_change":      nil,
				},
				Message: "Potential job change detected: New income source from Globex"},
		},
		RiskScore: 35,
	}
}

func TestStressSummary(t *testing.T) {
	out := StressSummary(sampleResult().Indicators)

	assert.Contains(t, out, "FINANCIAL HEALTH INSIGHTS")
	assert.Contains(t, out, "We've identified 2 area(s) that may need attention.")
	assert.Contains(t, out, "HIGH PRIORITY (1 item(s)):")
	assert.Contains(t, out, "LOW PRIORITY (1 item(s)):")
	assert.NotContains(t, out, "MEDIUM PRIORITY")
	assert.Less(t, strings.Index(out, "payday"), strings.Index(out, "overdraft"))
}

func TestStressSummary_Empty(t *testing.T) {
	assert.Equal(t, "\n"+NoStressMessage, StressSummary(nil))
}

func TestLifeEventSummary(t *testing.T) {
	out := LifeEventSummary(sampleResult().Events)

	assert.Contains(t, out, "Total events detected: 1")
	assert.Contains(t, out, "1. JOB CHANGE")
	assert.Contains(t, out, "Date: 2024-03-10")
	assert.Contains(t, out, "Confidence: 85.0%")
	assert.Contains(t, out, "- New Employer: Globex")
	assert.Contains(t, out, "- First Payment Date: 2024-03-10")
	assert.NotContains(t, out, "Income Change", "nil details are skipped")
}

func TestLifeEventSummary_Empty(t *testing.T) {
	assert.Equal(t, NoEventsMessage, LifeEventSummary(nil))
}

func TestRiskBand(t *testing.T) {
	assert.Equal(t, "Financial health looks good!", RiskBand(0))
	assert.Equal(t, "Financial health looks good!", RiskBand(29))
	assert.Equal(t, "Some areas need attention", RiskBand(30))
	assert.Equal(t, "Some areas need attention", RiskBand(59))
	assert.Equal(t, "Significant financial stress detected - support recommended", RiskBand(60))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "2024-03-10", FormatValue(day))
	assert.Equal(t, "12.50", FormatValue(decimal.RequireFromString("12.5")))
	assert.Equal(t, "20.00", FormatValue(20.0))
	assert.Equal(t, "a, b", FormatValue([]string{"a", "b"}))
	assert.Equal(t, "3", FormatValue(3))
	assert.Equal(t, "", FormatValue(nil))
}

func TestTables(t *testing.T) {
	res := sampleResult()

	var buf bytes.Buffer
	WriteIndicatorTable(&buf, res.Indicators)
	assert.Contains(t, buf.String(), "SEVERITY")
	assert.Contains(t, buf.String(), "payday_loan")

	buf.Reset()
	WriteEventTable(&buf, res.Events)
	assert.Contains(t, buf.String(), "job_change")
	assert.Contains(t, buf.String(), "85%")

	buf.Reset()
	txns := []domain.Transaction{
		{ID: 1, Date: day, Description: "Coffee", Amount: decimal.RequireFromString("-3.5"), Category: "Dining", Merchant: "Cafe", Type: domain.TypePurchase},
		{ID: 2, Date: day, Description: "Tea", Amount: decimal.RequireFromString("-2"), Category: "Dining", Merchant: "Cafe", Type: domain.TypePurchase},
	}
	WriteTransactionTable(&buf, txns, 1)
	assert.Contains(t, buf.String(), "-3.50")
	assert.NotContains(t, buf.String(), "Tea")
}

func TestTemplateNarrator(t *testing.T) {
	out, err := TemplateNarrator{}.Narrate(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Contains(t, out, "LIFE EVENT DETECTION SUMMARY")
	assert.Contains(t, out, "Financial Stress Risk Score: 35/100")
	assert.Contains(t, out, "Some areas need attention")

	_, err = TemplateNarrator{}.Narrate(context.Background(), nil)
	assert.Error(t, err)
}

type mockGenerator struct {
	gotModel  string
	gotPrompt string
	reply     string
	err       error
}

func (m *mockGenerator) GenerateContent(_ context.Context, model string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.gotModel = model
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		m.gotPrompt = contents[0].Parts[0].Text
	}
	if m.err != nil {
		return nil, m.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.reply}}},
		}},
	}, nil
}

func TestGeminiNarrator(t *testing.T) {
	gen := &mockGenerator{reply: "  You took out a payday loan recently.  "}
	n := &GeminiNarrator{Models: gen, Model: "test-model"}

	out, err := n.Narrate(context.Background(), sampleResult())
	require.NoError(t, err)
	assert.Equal(t, "You took out a payday loan recently.", out)
	assert.Equal(t, "test-model", gen.gotModel)
	assert.Contains(t, gen.gotPrompt, `"risk_score": 35`)
	assert.Contains(t, gen.gotPrompt, "payday_loan")
}

func TestGeminiNarrator_Errors(t *testing.T) {
	n := &GeminiNarrator{Models: &mockGenerator{err: errors.New("quota")}, Model: "m"}
	_, err := n.Narrate(context.Background(), sampleResult())
	assert.ErrorContains(t, err, "quota")

	n = &GeminiNarrator{Models: &mockGenerator{reply: "   "}, Model: "m"}
	_, err = n.Narrate(context.Background(), sampleResult())
	assert.ErrorContains(t, err, "empty response")
}
