package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// TransformDocument converts a {"transactions": [...]} document into engine input.
func TransformDocument(raw map[string]interface{}) ([]domain.RawTransaction, error) {
	txAny, ok := raw[RecordsKey]
	if !ok {
		return nil, fmt.Errorf("TransformDocument: missing %q key", RecordsKey)
	}

	txSlice, ok := txAny.([]interface{})
	if !ok {
		return nil, fmt.Errorf("TransformDocument: %q is %T, want []interface{}", RecordsKey, txAny)
	}

	records := make([]map[string]interface{}, 0, len(txSlice))
	for i, item := range txSlice {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("TransformDocument: element %d is %T, want object", i, item)
		}
		records = append(records, obj)
	}
	return TransformRecords(records)
}

// TransformRecords converts generic records, such as decoded JSON objects or
// data-lake documents, into engine input. Only type mismatches are reported
// here; absent fields are left empty for the engine's validation to name.
func TransformRecords(records []map[string]interface{}) ([]domain.RawTransaction, error) {
	result := make([]domain.RawTransaction, 0, len(records))
	for i, obj := range records {
		raw, err := TransformRecord(obj)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		result = append(result, raw)
	}
	return result, nil
}

// TransformRecord converts a single generic record.
func TransformRecord(obj map[string]interface{}) (domain.RawTransaction, error) {
	var raw domain.RawTransaction
	var err error

	if raw.Date, err = getDateField(obj, FieldDate); err != nil {
		return raw, err
	}
	if raw.Description, err = getStringField(obj, FieldDescription); err != nil {
		return raw, err
	}
	if raw.Amount, err = getDecimalField(obj, FieldAmount); err != nil {
		return raw, err
	}
	if raw.Category, err = getStringField(obj, FieldCategory); err != nil {
		return raw, err
	}
	if raw.Merchant, err = getStringField(obj, FieldMerchant); err != nil {
		return raw, err
	}
	if raw.Type, err = getStringField(obj, FieldType); err != nil {
		return raw, err
	}
	if raw.Location, err = getOptionalStringField(obj, FieldLocation); err != nil {
		return raw, err
	}
	return raw, nil
}

func getStringField(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	switch val := v.(type) {
	case string:
		return val, nil
	default:
		return "", fmt.Errorf("field %q has type %T, want string", key, v)
	}
}

func getOptionalStringField(m map[string]interface{}, key string) (*string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return nil, nil
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("field %q has type %T, want string or null", key, v)
	}
}

// getDateField accepts strings as-is and renders timestamps, including
// driver types exposing Time(), as UTC calendar dates.
func getDateField(m map[string]interface{}, key string) (string, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", nil
	}
	switch val := v.(type) {
	case string:
		return val, nil
	case time.Time:
		return val.UTC().Format(dateLayout), nil
	case interface{ Time() time.Time }:
		return val.Time().UTC().Format(dateLayout), nil
	default:
		return "", fmt.Errorf("field %q has type %T, want date string or timestamp", key, v)
	}
}

// getDecimalField reads a number, numeric string or decimal-like value.
// A missing or null field yields nil.
func getDecimalField(m map[string]interface{}, key string) (*decimal.Decimal, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}

	var d decimal.Decimal
	switch val := v.(type) {
	case decimal.Decimal:
		d = val
	case float64:
		d = decimal.NewFromFloat(val)
	case float32:
		d = decimal.NewFromFloat32(val)
	case int:
		d = decimal.NewFromInt(int64(val))
	case int32:
		d = decimal.NewFromInt32(val)
	case int64:
		d = decimal.NewFromInt(val)
	case json.Number:
		parsed, err := decimal.NewFromString(val.String())
		if err != nil {
			return nil, fmt.Errorf("field %q: invalid number %q: %w", key, val, err)
		}
		d = parsed
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return nil, fmt.Errorf("field %q: invalid number %q: %w", key, val, err)
		}
		d = parsed
	case fmt.Stringer:
		// Driver decimal types such as BSON Decimal128.
		parsed, err := decimal.NewFromString(val.String())
		if err != nil {
			return nil, fmt.Errorf("field %q has type %T, want number", key, v)
		}
		d = parsed
	default:
		return nil, fmt.Errorf("field %q has type %T, want number", key, v)
	}
	return &d, nil
}
