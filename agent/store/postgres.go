package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

type PostgresConfig struct {
	DSN     string        `envconfig:"DSN" required:"true"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// PostgresStore writes the same two tables straight into Postgres.
type PostgresStore struct {
	db *bun.DB
}

var _ Gateway = (*PostgresStore)(nil)

type priceModel struct {
	bun.BaseModel `bun:"table:btc_price"`

	ID        int64           `bun:"id,pk,autoincrement"`
	Price     decimal.Decimal `bun:"price,type:numeric,notnull"`
	Timestamp time.Time       `bun:"timestamp,type:timestamptz,notnull"`
}

type newsModel struct {
	bun.BaseModel `bun:"table:eco_info"`

	ID          int64     `bun:"id,pk,autoincrement"`
	FinanceInfo string    `bun:"finance_info,type:text,notnull"`
	Timestamp   time.Time `bun:"timestamp,type:timestamptz,notnull"`
}

func NewPostgresStore(cfg PostgresConfig) (*PostgresStore, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(dsn),
		pgdriver.WithTimeout(timeout),
	))
	return NewPostgresStoreFromDB(bun.NewDB(sqldb, pgdialect.New())), nil
}

func NewPostgresStoreFromDB(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates btc_price and eco_info with a timestamp index when
// they do not exist yet.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	models := []struct {
		model any
		index string
	}{
		{(*priceModel)(nil), contractx.TablePrice + "_timestamp_idx"},
		{(*newsModel)(nil), contractx.TableNews + "_timestamp_idx"},
	}

	for _, m := range models {
		if _, err := p.db.NewCreateTable().Model(m.model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("%w: create table: %v", contractx.ErrStore, err)
		}
		if _, err := p.db.NewCreateIndex().
			Model(m.model).
			Index(m.index).
			Column(contractx.FieldTimestamp).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("%w: create index %s: %v", contractx.ErrStore, m.index, err)
		}
	}
	return nil
}

func (p *PostgresStore) Insert(ctx context.Context, table string, record Row) (Row, error) {
	if err := validateIdent("table", table); err != nil {
		return nil, err
	}
	if len(record) == 0 {
		return nil, fmt.Errorf("%w: empty record for %s", contractx.ErrStore, table)
	}

	values := map[string]interface{}(cloneRow(record))
	if _, err := p.db.NewInsert().
		Model(&values).
		TableExpr("?", bun.Ident(table)).
		Returning("*").
		Exec(ctx); err != nil {
		return nil, storeErr("insert", table, err)
	}
	return Row(values), nil
}

func (p *PostgresStore) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	if err := validateQuery(table, q); err != nil {
		return nil, err
	}

	query := p.db.NewSelect().
		TableExpr("?", bun.Ident(table)).
		ColumnExpr("*")
	if q.OrderBy != "" {
		if q.Descending {
			query = query.OrderExpr("? DESC", bun.Ident(q.OrderBy))
		} else {
			query = query.OrderExpr("? ASC", bun.Ident(q.OrderBy))
		}
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var scanned []map[string]interface{}
	if err := query.Scan(ctx, &scanned); err != nil {
		return nil, storeErr("select", table, err)
	}

	rows := make([]Row, 0, len(scanned))
	for _, r := range scanned {
		rows = append(rows, Row(r))
	}
	return rows, nil
}

func (p *PostgresStore) Close() error {
	return p.db.Close()
}
