package insights

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var (
	// ErrMissingField is wrapped by a ValidationError when a required field is absent.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidField is wrapped by a ValidationError when a field fails validation.
	ErrInvalidField = errors.New("invalid field")
	// ErrInvalidDate is returned when a transaction date cannot be parsed.
	ErrInvalidDate = errors.New("invalid transaction date")
)

// ValidationError identifies the record and field that failed validation.
type ValidationError struct {
	Index int
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("transaction %d: %v: %s", e.Index, e.Err, e.Field)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsInputError reports whether err was caused by a malformed transaction
// log rather than by infrastructure.
func IsInputError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) || errors.Is(err, ErrInvalidDate)
}

var dateLayouts = []string{dateLayout, time.RFC3339, "01/02/2006", "2006-01-02 15:04:05"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ParseDate parses a transaction date and truncates it to the day in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Normalize validates every record, parses dates, assigns insertion-order
// IDs starting at 1 and returns the records stably sorted by date. The first
// invalid record aborts the whole batch.
func Normalize(raw []domain.RawTransaction) ([]domain.Transaction, error) {
	out := make([]domain.Transaction, 0, len(raw))
	for i, r := range raw {
		if err := validateRecord(i, r); err != nil {
			return nil, err
		}
		date, err := ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("Normalize: transaction %d: %w", i, err)
		}
		var loc *string
		if r.Location != nil && strings.TrimSpace(*r.Location) != "" {
			l := *r.Location
			loc = &l
		}
		out = append(out, domain.Transaction{
			ID:          i + 1,
			Date:        date,
			Description: r.Description,
			Amount:      *r.Amount,
			Category:    r.Category,
			Merchant:    r.Merchant,
			Type:        domain.TransactionType(r.Type),
			Location:    loc,
		})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Date.Before(out[b].Date) })
	return out, nil
}

func validateRecord(i int, r domain.RawTransaction) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validateRecord: transaction %d: %w", i, err)
	}
	fe := verrs[0]
	kind := ErrInvalidField
	if fe.Tag() == "required" {
		kind = ErrMissingField
	}
	return &ValidationError{Index: i, Field: fe.Field(), Err: kind}
}
