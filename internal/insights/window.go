package insights

import (
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
)

const day = 24 * time.Hour

// daysBetween returns the whole number of days from a to b. Both are
// day-granular UTC timestamps.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a) / day)
}

func addDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// Window is a run of transactions inside an inclusive date range.
type Window struct {
	Start   time.Time
	End     time.Time
	Members []domain.Transaction
}

// FirstWindow scans txns (sorted ascending by date) anchoring a window of
// [anchor, anchor+days] on each member in turn and returns the first window
// holding at least minCount transactions. Later clusters are not reported.
func FirstWindow(txns []domain.Transaction, days, minCount int) (Window, bool) {
	if len(txns) == 0 || len(txns) < minCount {
		return Window{}, false
	}
	for _, anchor := range txns {
		end := addDays(anchor.Date, days)
		var members []domain.Transaction
		for _, t := range txns {
			if !t.Date.Before(anchor.Date) && !t.Date.After(end) {
				members = append(members, t)
			}
		}
		if len(members) >= minCount {
			return Window{Start: anchor.Date, End: end, Members: members}, true
		}
	}
	return Window{}, false
}

// GroupByGap splits txns (sorted ascending by date) into groups; a new group
// starts whenever the gap from the previous member exceeds maxGapDays.
func GroupByGap(txns []domain.Transaction, maxGapDays int) [][]domain.Transaction {
	var groups [][]domain.Transaction
	var cur []domain.Transaction
	for _, t := range txns {
		if len(cur) > 0 && daysBetween(cur[len(cur)-1].Date, t.Date) > maxGapDays {
			groups = append(groups, cur)
			cur = nil
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		groups = append(groups, cur)
	}
	return groups
}
