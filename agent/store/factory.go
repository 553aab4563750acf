package store

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
	configx "github.com/tanpawarit/market-digest-agents/pkg/config"
)

const (
	DriverSupabase = "supabase"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Driver      string `default:"supabase"`
	AutoMigrate bool   `split_words:"true" default:"false"`
}

// Open builds the gateway selected by STORE_DRIVER and returns a closer
// for the resources it holds.
func Open(ctx context.Context, cfg Config) (Gateway, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverSupabase:
		sbCfg, err := configx.New[SupabaseConfig]("SUPABASE")
		if err != nil {
			return nil, noop, err
		}
		gw, err := NewSupabaseStore(*sbCfg, WithSchema(sbCfg.Schema))
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %v", contractx.ErrConfiguration, err)
		}
		return gw, noop, nil

	case DriverPostgres:
		pgCfg, err := configx.New[PostgresConfig]("POSTGRES")
		if err != nil {
			return nil, noop, err
		}
		gw, err := NewPostgresStore(*pgCfg)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %v", contractx.ErrConfiguration, err)
		}
		if cfg.AutoMigrate {
			if err := gw.EnsureSchema(ctx); err != nil {
				_ = gw.Close()
				return nil, noop, err
			}
		}
		return gw, gw.Close, nil

	case DriverMemory:
		return NewMemoryStore(), noop, nil

	default:
		return nil, noop, fmt.Errorf("%w: unknown store driver %q", contractx.ErrConfiguration, cfg.Driver)
	}
}
