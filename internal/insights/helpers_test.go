package insights

import (
	"testing"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var baseDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func dayN(n int) time.Time { return baseDate.AddDate(0, 0, n) }

func raw(d int, desc string, amount float64, category, merchant, typ string) domain.RawTransaction {
	amt := decimal.NewFromFloat(amount)
	return domain.RawTransaction{
		Date:        dayN(d).Format("2006-01-02"),
		Description: desc,
		Amount:      &amt,
		Category:    category,
		Merchant:    merchant,
		Type:        typ,
	}
}

func withLocation(r domain.RawTransaction, loc string) domain.RawTransaction {
	r.Location = &loc
	return r
}

func normalize(t *testing.T, rs ...domain.RawTransaction) []domain.Transaction {
	t.Helper()
	txns, err := Normalize(rs)
	require.NoError(t, err)
	return txns
}

func fee(d int, desc string, amount float64) domain.RawTransaction {
	return raw(d, desc, amount, "Fees", "Bank", "fee")
}

func atm(d int, amount float64) domain.RawTransaction {
	return raw(d, "ATM Withdrawal", amount, "Cash", "ATM", "withdrawal")
}

func groceries(d int, amount float64) domain.RawTransaction {
	return raw(d, "Grocery Store", amount, "Groceries", "FreshMart", "purchase")
}

func decString(t *testing.T, v any) string {
	t.Helper()
	d, ok := v.(decimal.Decimal)
	require.True(t, ok, "expected decimal.Decimal, got %T", v)
	return d.String()
}
