package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"
	rule       = "============================================================"
)

// NoStressMessage is printed when an analysis found no stress indicators.
const NoStressMessage = "No significant financial stress indicators detected. Keep up the good work!"

// NoEventsMessage is printed when an analysis found no life events.
const NoEventsMessage = "No life events detected."

// StressSummary renders indicators grouped by priority, high first.
func StressSummary(indicators []domain.Indicator) string {
	if len(indicators) == 0 {
		return "\n" + NoStressMessage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nFINANCIAL HEALTH INSIGHTS\n%s\n", rule, rule)
	fmt.Fprintf(&b, "We've identified %d area(s) that may need attention.\n", len(indicators))

	groups := []struct {
		sev   domain.Severity
		label string
	}{
		{domain.SeverityHigh, "HIGH PRIORITY"},
		{domain.SeverityMedium, "MEDIUM PRIORITY"},
		{domain.SeverityLow, "LOW PRIORITY"},
	}
	for _, g := range groups {
		var items []domain.Indicator
		for _, ind := range indicators {
			if ind.Severity == g.sev {
				items = append(items, ind)
			}
		}
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s (%d item(s)):\n", g.label, len(items))
		for _, ind := range items {
			fmt.Fprintf(&b, "\n   %s\n", ind.Message)
			fmt.Fprintf(&b, "    %s\n", ind.Recommendation)
		}
	}
	fmt.Fprintf(&b, "\n%s\n", rule)
	return b.String()
}

// LifeEventSummary renders events in order with their details.
func LifeEventSummary(events []domain.Event) string {
	if len(events) == 0 {
		return NoEventsMessage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\nLIFE EVENT DETECTION SUMMARY\n%s\n", rule, rule)
	fmt.Fprintf(&b, "Total events detected: %d\n\n", len(events))

	for i, ev := range events {
		fmt.Fprintf(&b, "%d. %s\n", i+1, humanize(string(ev.Kind), strings.ToUpper))
		fmt.Fprintf(&b, "   Date: %s\n", ev.Date.Format(dateLayout))
		fmt.Fprintf(&b, "   Confidence: %.1f%%\n", ev.Confidence*100)
		fmt.Fprintf(&b, "   %s\n", ev.Message)

		if len(ev.Details) > 0 {
			b.WriteString("   Details:\n")
			for _, key := range sortedKeys(ev.Details) {
				v := ev.Details[key]
				if v == nil {
					continue
				}
				fmt.Fprintf(&b, "   - %s: %s\n", humanize(key, titleCase), FormatValue(v))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RiskBand describes a risk score in one sentence.
func RiskBand(score int) string {
	switch {
	case score < 30:
		return "Financial health looks good!"
	case score < 60:
		return "Some areas need attention"
	default:
		return "Significant financial stress detected - support recommended"
	}
}

// Overview is the closing block printed after both summaries.
func Overview(res *insights.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Life Events Detected: %d\n", len(res.Events))
	fmt.Fprintf(&b, "Financial Stress Indicators: %d\n", len(res.Indicators))
	fmt.Fprintf(&b, "Financial Stress Risk Score: %d/100\n", res.RiskScore)
	fmt.Fprintf(&b, "\n%s\n", RiskBand(res.RiskScore))
	return b.String()
}

// FormatValue renders a detail value for display.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(dateLayout)
	case decimal.Decimal:
		return x.StringFixed(2)
	case float64:
		return fmt.Sprintf("%.2f", x)
	case []string:
		return strings.Join(x, ", ")
	case []domain.FeeLine:
		parts := make([]string, 0, len(x))
		for _, f := range x {
			parts = append(parts, fmt.Sprintf("%s %s %s", f.Date.Format(dateLayout), f.Description, f.Amount.StringFixed(2)))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprint(x)
	}
}

func sortedKeys(d domain.Details) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func humanize(s string, caser func(string) string) string {
	return caser(strings.ReplaceAll(s, "_", " "))
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
