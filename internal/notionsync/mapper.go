package notionsync

import (
	"encoding/json"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/jomei/notionapi"
)

// Property names of the insights database.
const (
	PropInsightID      = "Insight ID"
	PropAnalysisID     = "Analysis ID"
	PropRecordType     = "Record Type"
	PropKind           = "Kind"
	PropSeverity       = "Severity"
	PropConfidence     = "Confidence"
	PropPeriod         = "Period"
	PropMessage        = "Message"
	PropRecommendation = "Recommendation"
	PropDetails        = "Details"
)

const (
	recordTypeIndicator = "Indicator"
	recordTypeEvent     = "Life Event"

	// Notion rejects rich text content longer than this.
	maxRichTextLen = 2000
)

// IndicatorToNotionProperties converts the ordinal-th indicator of its kind
// to page properties keyed by its insight ID.
func IndicatorToNotionProperties(analysisID string, ordinal int, ind domain.Indicator) notionapi.Properties {
	props := baseProperties(analysisID, string(ind.Kind), ordinal, recordTypeIndicator, ind.Message, ind.Details)

	props[PropSeverity] = notionapi.SelectProperty{
		Select: notionapi.Option{Name: string(ind.Severity)},
	}
	props[PropPeriod] = dateRange(ind.Start, ind.End)

	if ind.Recommendation != "" {
		props[PropRecommendation] = richText(ind.Recommendation)
	}
	return props
}

// EventToNotionProperties converts the ordinal-th event of its kind.
func EventToNotionProperties(analysisID string, ordinal int, ev domain.Event) notionapi.Properties {
	props := baseProperties(analysisID, string(ev.Kind), ordinal, recordTypeEvent, ev.Message, ev.Details)

	props[PropConfidence] = notionapi.NumberProperty{Number: ev.Confidence}
	props[PropPeriod] = dateRange(ev.Date, ev.Date)
	return props
}

func baseProperties(analysisID, kind string, ordinal int, recordType, message string, details domain.Details) notionapi.Properties {
	props := notionapi.Properties{
		PropInsightID: notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: domain.InsightKey(analysisID, kind, ordinal),
					},
				},
			},
		},
		PropAnalysisID: richText(analysisID),
		PropRecordType: notionapi.SelectProperty{
			Select: notionapi.Option{Name: recordType},
		},
		PropKind: notionapi.SelectProperty{
			Select: notionapi.Option{Name: kind},
		},
		PropMessage: richText(message),
	}

	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			props[PropDetails] = richText(string(b))
		}
	}
	return props
}

func richText(s string) notionapi.RichTextProperty {
	if len(s) > maxRichTextLen {
		s = s[:maxRichTextLen]
	}
	return notionapi.RichTextProperty{
		RichText: []notionapi.RichText{
			{
				Type: notionapi.ObjectTypeText,
				Text: &notionapi.Text{Content: s},
			},
		},
	}
}

// dateRange renders a calendar-date span; single days have no end.
func dateRange(start, end time.Time) notionapi.DateProperty {
	s := notionapi.Date(civilDay(start))
	obj := &notionapi.DateObject{Start: &s}
	if !end.IsZero() && !civilDay(end).Equal(civilDay(start)) {
		e := notionapi.Date(civilDay(end))
		obj.End = &e
	}
	return notionapi.DateProperty{Date: obj}
}

func civilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
