package bigquery

import (
	"strings"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

// ToRawTransaction converts a stored row into an engine input record.
// The normalized description is preferred over the raw one, and the
// transaction type falls back to the row's direction when unset.
func ToRawTransaction(row *TransactionRow) domain.RawTransaction {
	raw := domain.RawTransaction{
		Date:        row.TransactionDate.String(),
		Description: row.RawDescription,
		Category:    row.CategoryName.StringVal,
		Merchant:    row.MerchantName.StringVal,
		Type:        rowType(row),
	}
	if row.NormalizedDescription.Valid && row.NormalizedDescription.StringVal != "" {
		raw.Description = row.NormalizedDescription.StringVal
	}
	if row.Amount != nil {
		amt := decimal.NewFromBigRat(row.Amount, 2)
		raw.Amount = &amt
	}
	if row.Location.Valid && row.Location.StringVal != "" {
		loc := row.Location.StringVal
		raw.Location = &loc
	}
	return raw
}

// ToRawTransactions converts a batch of rows, preserving order.
func ToRawTransactions(rows []*TransactionRow) []domain.RawTransaction {
	out := make([]domain.RawTransaction, 0, len(rows))
	for _, r := range rows {
		out = append(out, ToRawTransaction(r))
	}
	return out
}

func rowType(row *TransactionRow) string {
	if row.TransactionType.Valid && row.TransactionType.StringVal != "" {
		return strings.ToLower(row.TransactionType.StringVal)
	}
	switch strings.ToUpper(row.Direction.StringVal) {
	case "CREDIT":
		return string(domain.TypeDeposit)
	case "DEBIT":
		return string(domain.TypePurchase)
	}
	if row.Amount != nil && row.Amount.Sign() > 0 {
		return string(domain.TypeDeposit)
	}
	return string(domain.TypePurchase)
}
