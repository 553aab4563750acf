package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

func PriceRow(r contractx.PriceRecord) Row {
	return Row{
		contractx.FieldPrice:     r.Price,
		contractx.FieldTimestamp: r.Timestamp,
	}
}

func NewsRow(r contractx.NewsRecord) Row {
	return Row{
		contractx.FieldFinanceInfo: r.FinanceInfo,
		contractx.FieldTimestamp:   r.Timestamp,
	}
}

// RowError describes one stored row that could not be decoded.
type RowError struct {
	Index int
	Field string
	Err   error
}

func (e RowError) Error() string {
	return fmt.Sprintf("%v: row %d %s: %v", contractx.ErrStore, e.Index, e.Field, e.Err)
}

func (e RowError) Unwrap() []error {
	return []error{contractx.ErrStore, e.Err}
}

// DecodePrices converts rows from any backend into price records. Rows
// with an unreadable price are skipped; the error joins one RowError per
// skipped row and the records are valid alongside it.
func DecodePrices(rows []Row) ([]contractx.PriceRecord, error) {
	out := make([]contractx.PriceRecord, 0, len(rows))
	var errs []error
	for i, r := range rows {
		price, err := decimalValue(r[contractx.FieldPrice])
		if err != nil {
			errs = append(errs, RowError{Index: i, Field: contractx.FieldPrice, Err: err})
			continue
		}
		out = append(out, contractx.PriceRecord{
			Price:     price,
			Timestamp: timestampValue(r[contractx.FieldTimestamp]),
		})
	}
	return out, errors.Join(errs...)
}

// DecodeNews converts rows into news records, skipping rows without
// finance_info the same way DecodePrices does. A finance_info value that
// is not a string (e.g. a JSON column) is kept as its JSON encoding.
func DecodeNews(rows []Row) ([]contractx.NewsRecord, error) {
	out := make([]contractx.NewsRecord, 0, len(rows))
	var errs []error
	for i, r := range rows {
		info, err := textValue(r[contractx.FieldFinanceInfo])
		if err != nil {
			errs = append(errs, RowError{Index: i, Field: contractx.FieldFinanceInfo, Err: err})
			continue
		}
		out = append(out, contractx.NewsRecord{
			FinanceInfo: info,
			Timestamp:   timestampValue(r[contractx.FieldTimestamp]),
		})
	}
	return out, errors.Join(errs...)
}

func decimalValue(v any) (decimal.Decimal, error) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, nil
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case float32:
		return decimal.NewFromFloat32(n), nil
	case int64:
		return decimal.NewFromInt(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case string:
		return decimal.NewFromString(strings.TrimSpace(n))
	case []byte:
		return decimal.NewFromString(strings.TrimSpace(string(n)))
	case nil:
		return decimal.Zero, fmt.Errorf("missing value")
	default:
		return decimal.Zero, fmt.Errorf("unsupported type %T", v)
	}
}

func textValue(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case nil:
		return "", fmt.Errorf("missing value")
	default:
		raw, err := json.Marshal(s)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
}

func timestampValue(v any) string {
	switch t := v.(type) {
	case time.Time:
		return contractx.FormatTimestamp(t)
	case string:
		return t
	case []byte:
		return string(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
