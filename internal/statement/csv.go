package statement

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	// ErrMissingColumn is returned when the header lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrInvalidAmount is returned when an amount cell is not a number.
	ErrInvalidAmount = errors.New("invalid amount")
)

var requiredColumns = []string{"date", "description", "amount", "category", "merchant", "type"}

// TransactionHeader is the column order written by WriteCSV.
var TransactionHeader = []string{"transaction_id", "date", "description", "amount", "category", "merchant", "type", "location"}

// ReadCSV parses a transaction export. Columns are matched by header name,
// case-insensitively; extra columns are ignored. Empty cells are passed
// through so validation can name the missing field.
func ReadCSV(ctx context.Context, r io.Reader) ([]domain.RawTransaction, error) {
	log := logger.FromContext(ctx)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("ReadCSV: reading header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("ReadCSV: %w: %s", ErrMissingColumn, col)
		}
	}
	locIdx, hasLocation := colIndex["location"]

	var out []domain.RawTransaction
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("ReadCSV: reading row %d: %w", row, err)
		}

		txn := domain.RawTransaction{
			Date:        cell(record, colIndex["date"]),
			Description: cell(record, colIndex["description"]),
			Category:    cell(record, colIndex["category"]),
			Merchant:    cell(record, colIndex["merchant"]),
			Type:        cell(record, colIndex["type"]),
		}
		if raw := cell(record, colIndex["amount"]); raw != "" {
			amt, err := parseAmount(raw)
			if err != nil {
				return nil, fmt.Errorf("ReadCSV: row %d: %w %q", row, ErrInvalidAmount, raw)
			}
			txn.Amount = &amt
		}
		if hasLocation {
			if loc := cell(record, locIdx); loc != "" {
				txn.Location = &loc
			}
		}
		out = append(out, txn)
	}

	log.Debug().Int("rows", len(out)).Msg("Parsed transaction CSV")
	return out, nil
}

// parseAmount accepts plain decimals plus the "$1,234.56" style some exports use.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	return decimal.NewFromString(s)
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// WriteCSV writes normalized transactions in TransactionHeader order.
func WriteCSV(w io.Writer, txns []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TransactionHeader); err != nil {
		return fmt.Errorf("WriteCSV: writing header: %w", err)
	}
	for _, t := range txns {
		loc := ""
		if t.Location != nil {
			loc = *t.Location
		}
		rec := []string{
			strconv.Itoa(t.ID),
			t.Date.Format(dateLayout),
			t.Description,
			t.Amount.StringFixed(2),
			t.Category,
			t.Merchant,
			string(t.Type),
			loc,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("WriteCSV: writing transaction %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteCSV: flushing: %w", err)
	}
	return nil
}

// WriteRawCSV writes caller-supplied records, e.g. generated data, with the
// same column layout ReadCSV expects.
func WriteRawCSV(w io.Writer, txns []domain.RawTransaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TransactionHeader); err != nil {
		return fmt.Errorf("WriteRawCSV: writing header: %w", err)
	}
	for i, t := range txns {
		amount, loc := "", ""
		if t.Amount != nil {
			amount = t.Amount.StringFixed(2)
		}
		if t.Location != nil {
			loc = *t.Location
		}
		rec := []string{strconv.Itoa(i + 1), t.Date, t.Description, amount, t.Category, t.Merchant, t.Type, loc}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("WriteRawCSV: writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteRawCSV: flushing: %w", err)
	}
	return nil
}

// WriteIndicatorsCSV writes one row per stress indicator.
func WriteIndicatorsCSV(w io.Writer, indicators []domain.Indicator) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"kind", "severity", "start", "end", "message", "recommendation"}); err != nil {
		return fmt.Errorf("WriteIndicatorsCSV: writing header: %w", err)
	}
	for _, ind := range indicators {
		rec := []string{
			string(ind.Kind),
			string(ind.Severity),
			ind.Start.Format(dateLayout),
			ind.End.Format(dateLayout),
			ind.Message,
			ind.Recommendation,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("WriteIndicatorsCSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEventsCSV writes one row per life event.
func WriteEventsCSV(w io.Writer, events []domain.Event) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"kind", "date", "confidence", "message"}); err != nil {
		return fmt.Errorf("WriteEventsCSV: writing header: %w", err)
	}
	for _, ev := range events {
		rec := []string{
			string(ev.Kind),
			ev.Date.Format(dateLayout),
			strconv.FormatFloat(ev.Confidence, 'f', 2, 64),
			ev.Message,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("WriteEventsCSV: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
