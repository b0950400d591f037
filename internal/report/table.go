package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// WriteIndicatorTable renders indicators as an aligned table.
func WriteIndicatorTable(w io.Writer, indicators []domain.Indicator) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Severity", "Indicator", "From", "To", "Message"})
	table.SetAutoWrapText(false)
	for _, ind := range indicators {
		table.Append([]string{
			string(ind.Severity),
			string(ind.Kind),
			ind.Start.Format(dateLayout),
			ind.End.Format(dateLayout),
			ind.Message,
		})
	}
	table.Render()
}

// WriteEventTable renders life events as an aligned table.
func WriteEventTable(w io.Writer, events []domain.Event) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Date", "Event", "Confidence", "Message"})
	table.SetAutoWrapText(false)
	for _, ev := range events {
		table.Append([]string{
			ev.Date.Format(dateLayout),
			string(ev.Kind),
			fmt.Sprintf("%.0f%%", ev.Confidence*100),
			ev.Message,
		})
	}
	table.Render()
}

// WriteTransactionTable renders the first limit transactions, or all of
// them when limit is not positive.
func WriteTransactionTable(w io.Writer, txns []domain.Transaction, limit int) {
	if limit > 0 && len(txns) > limit {
		txns = txns[:limit]
	}
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Date", "Description", "Amount", "Category", "Merchant", "Type"})
	table.SetAutoWrapText(false)
	for _, t := range txns {
		table.Append([]string{
			strconv.Itoa(t.ID),
			t.Date.Format(dateLayout),
			t.Description,
			t.Amount.StringFixed(2),
			t.Category,
			t.Merchant,
			string(t.Type),
		})
	}
	table.Render()
}
