package store

import (
	"context"
	"fmt"
	"regexp"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

// Row is one stored record. The value returned by Insert doubles as the
// record handle.
type Row map[string]any

type Query struct {
	OrderBy    string
	Descending bool
	Limit      int
}

// Gateway is the thin contract over the remote row store. It performs no
// schema validation; callers own the shape of each record.
type Gateway interface {
	Insert(ctx context.Context, table string, record Row) (Row, error)
	Select(ctx context.Context, table string, q Query) ([]Row, error)
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateIdent(kind, name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("%w: invalid %s name %q", contractx.ErrStore, kind, name)
	}
	return nil
}

func validateQuery(table string, q Query) error {
	if err := validateIdent("table", table); err != nil {
		return err
	}
	if q.OrderBy != "" {
		if err := validateIdent("order column", q.OrderBy); err != nil {
			return err
		}
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", contractx.ErrStore, q.Limit)
	}
	return nil
}

func storeErr(op, table string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", contractx.ErrStore, op, table, err)
}
