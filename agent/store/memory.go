package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// MemoryStore keeps rows in process. It backs dry runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][]Row
	nextID int64
}

var _ Gateway = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: map[string][]Row{}}
}

func (m *MemoryStore) Insert(ctx context.Context, table string, record Row) (Row, error) {
	if err := validateIdent("table", table); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, storeErr("insert", table, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	row := cloneRow(record)
	if _, ok := row["id"]; !ok {
		row["id"] = m.nextID
	}
	m.tables[table] = append(m.tables[table], row)
	return cloneRow(row), nil
}

func (m *MemoryStore) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	if err := validateQuery(table, q); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, storeErr("select", table, err)
	}

	m.mu.RLock()
	rows := make([]Row, 0, len(m.tables[table]))
	for _, r := range m.tables[table] {
		rows = append(rows, cloneRow(r))
	}
	m.mu.RUnlock()

	if q.OrderBy != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			c := compareValues(rows[i][q.OrderBy], rows[j][q.OrderBy])
			if q.Descending {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

// Len reports how many rows a table holds.
func (m *MemoryStore) Len(table string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables[table])
}

func cloneRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func compareValues(a, b any) int {
	if da, ok := toDecimal(a); ok {
		if db, ok := toDecimal(b); ok {
			return da.Cmp(db)
		}
	}
	sa, sb := fmt.Sprint(a), fmt.Sprint(b)
	switch {
	case sa < sb:
		return -1
	case sa > sb:
		return 1
	default:
		return 0
	}
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	default:
		return decimal.Zero, false
	}
}
