package price

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
	storex "github.com/tanpawarit/market-digest-agents/agent/store"
)

type QuoteSource interface {
	SpotPrice(ctx context.Context) (decimal.Decimal, error)
}

type Collector struct {
	quotes QuoteSource
	store  storex.Gateway
	now    func() time.Time
}

var _ contractx.PriceCollector = (*Collector)(nil)

type Option func(*Collector)

// WithClock overrides the clock used to timestamp observations.
func WithClock(now func() time.Time) Option {
	return func(c *Collector) {
		if now != nil {
			c.now = now
		}
	}
}

func New(quotes QuoteSource, store storex.Gateway, opts ...Option) (*Collector, error) {
	if quotes == nil {
		return nil, errors.New("price collector: quote source is required")
	}
	if store == nil {
		return nil, errors.New("price collector: store gateway is required")
	}

	c := &Collector{
		quotes: quotes,
		store:  store,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Collect fetches one quote and appends it to the price table. When the
// insert fails the observed record is still returned with an ErrStore error.
func (c *Collector) Collect(ctx context.Context) (contractx.PriceRecord, error) {
	logger := zerolog.Ctx(ctx)

	value, err := c.quotes.SpotPrice(ctx)
	if err != nil {
		return contractx.PriceRecord{}, fmt.Errorf("%w: %v", contractx.ErrQuoteFetch, err)
	}

	record := contractx.PriceRecord{
		Price:     value,
		Timestamp: contractx.FormatTimestamp(c.now()),
	}

	if _, err := c.store.Insert(ctx, contractx.TablePrice, storex.PriceRow(record)); err != nil {
		logger.Error().Err(err).Str("price", record.Price.String()).Msg("price insert failed")
		if !errors.Is(err, contractx.ErrStore) {
			err = fmt.Errorf("%w: %v", contractx.ErrStore, err)
		}
		return record, err
	}

	logger.Info().
		Str("price", record.Price.String()).
		Str("timestamp", record.Timestamp).
		Msg("price stored")
	return record, nil
}
