package bigquery

import (
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
)

const (
	recordTypeIndicator = "indicator"
	recordTypeEvent     = "event"
)

// NewInsightRows flattens a result into one row per indicator and event.
// Insight IDs are derived from the analysis id, so re-inserting the same
// result yields the same keys.
func NewInsightRows(analysisID string, res *insights.Result, now time.Time) ([]*InsightRow, error) {
	if res == nil {
		return nil, fmt.Errorf("NewInsightRows: nil result")
	}

	rows := make([]*InsightRow, 0, len(res.Indicators)+len(res.Events))
	ordinals := map[string]int{}

	for _, ind := range res.Indicators {
		kind := string(ind.Kind)
		ordinals[kind]++
		details, err := detailsJSON(ind.Details)
		if err != nil {
			return nil, fmt.Errorf("NewInsightRows: %s: %w", kind, err)
		}
		rows = append(rows, &InsightRow{
			InsightID:      domain.InsightKey(analysisID, kind, ordinals[kind]),
			AnalysisID:     analysisID,
			RecordType:     recordTypeIndicator,
			Kind:           kind,
			Severity:       bigquery.NullString{StringVal: string(ind.Severity), Valid: true},
			StartDate:      civil.DateOf(ind.Start),
			EndDate:        bigquery.NullDate{Date: civil.DateOf(ind.End), Valid: true},
			Message:        ind.Message,
			Recommendation: bigquery.NullString{StringVal: ind.Recommendation, Valid: ind.Recommendation != ""},
			Details:        details,
			CreatedTS:      now,
		})
	}

	for _, ev := range res.Events {
		kind := string(ev.Kind)
		ordinals[kind]++
		details, err := detailsJSON(ev.Details)
		if err != nil {
			return nil, fmt.Errorf("NewInsightRows: %s: %w", kind, err)
		}
		rows = append(rows, &InsightRow{
			InsightID:  domain.InsightKey(analysisID, kind, ordinals[kind]),
			AnalysisID: analysisID,
			RecordType: recordTypeEvent,
			Kind:       kind,
			Confidence: bigquery.NullFloat64{Float64: ev.Confidence, Valid: true},
			StartDate:  civil.DateOf(ev.Date),
			Message:    ev.Message,
			Details:    details,
			CreatedTS:  now,
		})
	}

	return rows, nil
}

func detailsJSON(d domain.Details) (bigquery.NullJSON, error) {
	if len(d) == 0 {
		return bigquery.NullJSON{}, nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return bigquery.NullJSON{}, fmt.Errorf("marshal details: %w", err)
	}
	return bigquery.NullJSON{JSONVal: string(b), Valid: true}, nil
}
