package insights

import (
	"strings"

	"github.com/dvloznov/finance-insights/internal/domain"
)

// KeywordSet matches descriptions by case-insensitive literal substring.
// Keywords are lower-cased once at construction.
type KeywordSet struct {
	words []string
}

// NewKeywordSet builds a set from the given keywords.
func NewKeywordSet(words ...string) KeywordSet {
	lower := make([]string, 0, len(words))
	for _, w := range words {
		lower = append(lower, strings.ToLower(w))
	}
	return KeywordSet{words: lower}
}

// Matches reports whether s contains any keyword of the set.
func (k KeywordSet) Matches(s string) bool {
	if len(k.words) == 0 {
		return false
	}
	s = strings.ToLower(s)
	for _, w := range k.words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Predicate selects transactions.
type Predicate func(domain.Transaction) bool

// DescriptionMatches selects transactions whose description matches k.
func DescriptionMatches(k KeywordSet) Predicate {
	return func(t domain.Transaction) bool { return k.Matches(t.Description) }
}

// CategoryIs selects transactions whose category equals c exactly.
func CategoryIs(c string) Predicate {
	return func(t domain.Transaction) bool { return t.Category == c }
}

// TypeIs selects transactions of the given type.
func TypeIs(tt domain.TransactionType) Predicate {
	return func(t domain.Transaction) bool { return t.Type == tt }
}

// AnyOf is the OR of the given predicates.
func AnyOf(preds ...Predicate) Predicate {
	return func(t domain.Transaction) bool {
		for _, p := range preds {
			if p(t) {
				return true
			}
		}
		return false
	}
}

// AllOf is the AND of the given predicates.
func AllOf(preds ...Predicate) Predicate {
	return func(t domain.Transaction) bool {
		for _, p := range preds {
			if !p(t) {
				return false
			}
		}
		return true
	}
}

// Filter returns the transactions selected by p, preserving order.
func Filter(txns []domain.Transaction, p Predicate) []domain.Transaction {
	var out []domain.Transaction
	for _, t := range txns {
		if p(t) {
			out = append(out, t)
		}
	}
	return out
}

var (
	feeKeywords = NewKeywordSet(
		"late payment", "late fee", "overdraft", "nsf",
		"insufficient funds", "returned payment",
	)
	paydayKeywords = NewKeywordSet(
		"cash advance", "payday", "quickcash", "fastcash",
		"advance america", "check into cash",
	)
	atmKeywords    = NewKeywordSet("atm")
	movingKeywords = NewKeywordSet(
		"mover", "moving", "relocation", "truck rental", "u-haul", "pods",
	)
	depositKeywords = NewKeywordSet("deposit")
	utilityKeywords = NewKeywordSet(
		"setup", "activation", "new service", "installation",
	)
	travelKeywords = NewKeywordSet(
		"airline", "flight", "hotel", "resort", "hostel", "airbnb",
		"booking.com", "expedia", "travel insurance",
	)
)
