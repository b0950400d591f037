package notionsync

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storedPage struct {
	analysisID string
	page       notionapi.Page
	archived   bool
}

// mockNotion keeps created pages in memory and pages query results
// perPage at a time.
type mockNotion struct {
	pages     []*storedPage
	perPage   int
	queries   int
	createErr func(key string) error
}

func (m *mockNotion) CreatePage(_ context.Context, _ string, props notionapi.Properties) (*notionapi.Page, error) {
	title := props[PropInsightID].(notionapi.TitleProperty)
	key := title.Title[0].Text.Content
	if m.createErr != nil {
		if err := m.createErr(key); err != nil {
			return nil, err
		}
	}
	analysis := props[PropAnalysisID].(notionapi.RichTextProperty).RichText[0].Text.Content

	page := notionapi.Page{
		ID: notionapi.ObjectID("page-" + strconv.Itoa(len(m.pages)+1)),
		Properties: notionapi.Properties{
			PropInsightID: &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: key}},
			},
		},
	}
	m.pages = append(m.pages, &storedPage{analysisID: analysis, page: page})
	return &page, nil
}

func (m *mockNotion) QueryDatabase(_ context.Context, _ string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	m.queries++
	filter, ok := req.Filter.(notionapi.PropertyFilter)
	if !ok || filter.Property != PropAnalysisID || filter.RichText == nil {
		return nil, fmt.Errorf("unexpected filter %#v", req.Filter)
	}

	var matching []notionapi.Page
	for _, p := range m.pages {
		if p.analysisID == filter.RichText.Equals && !p.archived {
			matching = append(matching, p.page)
		}
	}

	start := 0
	if req.StartCursor != "" {
		start, _ = strconv.Atoi(string(req.StartCursor))
	}
	end := len(matching)
	if m.perPage > 0 && start+m.perPage < end {
		end = start + m.perPage
	}
	resp := &notionapi.DatabaseQueryResponse{Results: matching[start:end]}
	if end < len(matching) {
		resp.HasMore = true
		resp.NextCursor = notionapi.Cursor(strconv.Itoa(end))
	}
	return resp, nil
}

func (m *mockNotion) ArchivePage(_ context.Context, pageID string) error {
	for _, p := range m.pages {
		if string(p.page.ID) == pageID {
			p.archived = true
			return nil
		}
	}
	return errors.New("no such page")
}

var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func sampleResult() *insights.Result {
	return &insights.Result{
		Sensitivity: insights.SensitivityMedium,
		Indicators: []domain.Indicator{
			{Kind: domain.IndicatorPaydayLoan, Severity: domain.SeverityHigh, Start: day, End: day, Message: "loan", Recommendation: "avoid"},
			{Kind: domain.IndicatorPaydayLoan, Severity: domain.SeverityHigh, Start: day, End: day.AddDate(0, 0, 2), Message: "loan again"},
		},
		Events: []domain.Event{
			{Kind: domain.EventTravel, Confidence: 0.8, Date: day, Message: "trip", Details: domain.Details{"destination": "Rome"}},
		},
		RiskScore: 60,
	}
}

func TestPublishInsights_CreatesThenSkips(t *testing.T) {
	m := &mockNotion{perPage: 2}
	ctx := context.Background()

	stats, err := PublishInsights(ctx, m, "db", "run-1", sampleResult(), false)
	require.NoError(t, err)
	assert.Equal(t, PublishStats{Created: 3}, stats)
	require.Len(t, m.pages, 3)
	assert.Equal(t, "run-1/payday_loan/2", extractInsightID(m.pages[1].page))

	stats, err = PublishInsights(ctx, m, "db", "run-1", sampleResult(), false)
	require.NoError(t, err)
	assert.Equal(t, PublishStats{Skipped: 3}, stats)
	assert.Len(t, m.pages, 3)

	// Another analysis does not see run-1's pages.
	stats, err = PublishInsights(ctx, m, "db", "run-2", sampleResult(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Created)
}

func TestPublishInsights_DryRun(t *testing.T) {
	m := &mockNotion{}
	stats, err := PublishInsights(context.Background(), m, "db", "run-1", sampleResult(), true)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Created)
	assert.Empty(t, m.pages)
}

func TestPublishInsights_PartialFailure(t *testing.T) {
	m := &mockNotion{createErr: func(key string) error {
		if key == "run-1/travel/1" {
			return errors.New("rate limited")
		}
		return nil
	}}

	stats, err := PublishInsights(context.Background(), m, "db", "run-1", sampleResult(), false)
	assert.ErrorContains(t, err, "1 of 3 pages failed")
	assert.Equal(t, PublishStats{Created: 2, Failed: 1}, stats)

	// A retry only creates what is missing.
	m.createErr = nil
	stats, err = PublishInsights(context.Background(), m, "db", "run-1", sampleResult(), false)
	require.NoError(t, err)
	assert.Equal(t, PublishStats{Created: 1, Skipped: 2}, stats)
}

func TestArchiveAnalysis(t *testing.T) {
	m := &mockNotion{perPage: 1}
	ctx := context.Background()
	_, err := PublishInsights(ctx, m, "db", "run-1", sampleResult(), false)
	require.NoError(t, err)

	n, err := ArchiveAnalysis(ctx, m, "db", "run-1", true)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = ArchiveAnalysis(ctx, m, "db", "run-1", false)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	stats, err := PublishInsights(ctx, m, "db", "run-1", sampleResult(), true)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Created)
}

func TestIndicatorToNotionProperties(t *testing.T) {
	ind := sampleResult().Indicators[1]
	props := IndicatorToNotionProperties("run-1", 2, ind)

	title := props[PropInsightID].(notionapi.TitleProperty)
	assert.Equal(t, "run-1/payday_loan/2", title.Title[0].Text.Content)
	assert.Equal(t, "high", props[PropSeverity].(notionapi.SelectProperty).Select.Name)
	assert.Equal(t, recordTypeIndicator, props[PropRecordType].(notionapi.SelectProperty).Select.Name)

	period := props[PropPeriod].(notionapi.DateProperty)
	require.NotNil(t, period.Date.End)
	assert.Equal(t, day.AddDate(0, 0, 2), time.Time(*period.Date.End))

	_, hasRec := props[PropRecommendation]
	assert.False(t, hasRec)
	_, hasDetails := props[PropDetails]
	assert.False(t, hasDetails)
}

func TestEventToNotionProperties(t *testing.T) {
	ev := sampleResult().Events[0]
	props := EventToNotionProperties("run-1", 1, ev)

	assert.InDelta(t, 0.8, props[PropConfidence].(notionapi.NumberProperty).Number, 1e-9)
	assert.Nil(t, props[PropPeriod].(notionapi.DateProperty).Date.End)
	details := props[PropDetails].(notionapi.RichTextProperty).RichText[0].Text.Content
	assert.JSONEq(t, `{"destination":"Rome"}`, details)
}

func TestSinkPublishes(t *testing.T) {
	m := &mockNotion{}
	sink := &Sink{Service: m, DatabaseID: "db"}
	require.NoError(t, sink.PublishInsights(context.Background(), "run-3", sampleResult()))
	assert.Len(t, m.pages, 3)
}
