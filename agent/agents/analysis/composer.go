package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
	promptx "github.com/tanpawarit/market-digest-agents/agent/prompt"
	storex "github.com/tanpawarit/market-digest-agents/agent/store"
)

type Config struct {
	PriceLimit      int    `split_words:"true" default:"5"`
	NewsLimit       int    `split_words:"true" default:"10"`
	Subject         string `split_words:"true" default:"Financial Update - BTC and Market Analysis"`
	FallbackSubject string `split_words:"true" default:"Financial Update"`
	MaxWords        int    `split_words:"true" default:"300"`
	Signature       string `split_words:"true" default:"Financial AI Agent"`
}

func (c Config) withDefaults() Config {
	if c.PriceLimit <= 0 {
		c.PriceLimit = 5
	}
	if c.NewsLimit <= 0 {
		c.NewsLimit = 10
	}
	if strings.TrimSpace(c.Subject) == "" {
		c.Subject = "Financial Update - BTC and Market Analysis"
	}
	if strings.TrimSpace(c.FallbackSubject) == "" {
		c.FallbackSubject = "Financial Update"
	}
	if c.MaxWords <= 0 {
		c.MaxWords = 300
	}
	if strings.TrimSpace(c.Signature) == "" {
		c.Signature = "Financial AI Agent"
	}
	return c
}

type Composer struct {
	cfg    Config
	store  storex.Gateway
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.AnalysisComposer = (*Composer)(nil)

func New(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	store storex.Gateway,
	prompts promptx.PromptSet,
	cfg Config,
) (*Composer, error) {
	if chatModel == nil {
		return nil, errors.New("analysis composer: chat model is required")
	}
	if store == nil {
		return nil, errors.New("analysis composer: store gateway is required")
	}
	if strings.TrimSpace(prompts.Analyst) == "" || strings.TrimSpace(prompts.Analysis) == "" {
		return nil, fmt.Errorf("%w: analyst prompts", contractx.ErrPromptMissing)
	}

	runner, err := compileAnalysisGraph(ctx, chatModel, prompts.Analyst, prompts.Analysis)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrGeneration, err)
	}

	return &Composer{
		cfg:    cfg.withDefaults(),
		store:  store,
		runner: runner,
	}, nil
}

// Compose reads the latest observations and asks the model for one email
// draft. The response text is returned as is.
func (c *Composer) Compose(ctx context.Context) (contractx.AnalysisDocument, error) {
	logger := zerolog.Ctx(ctx)

	prices, news, err := c.loadInputs(ctx)
	if err != nil {
		return "", err
	}
	if len(prices) == 0 || len(news) == 0 {
		return "", fmt.Errorf("%w: prices=%d news=%d", contractx.ErrInsufficientData, len(prices), len(news))
	}

	vars, err := c.promptVariables(prices, news)
	if err != nil {
		return "", err
	}

	msg, err := c.runner.Invoke(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("%w: analysis invoke: %v", contractx.ErrGeneration, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: analysis response is empty", contractx.ErrGeneration)
	}

	logger.Info().
		Int("prices", len(prices)).
		Int("news", len(news)).
		Int("chars", len(msg.Content)).
		Msg("analysis composed")
	return contractx.AnalysisDocument(msg.Content), nil
}

// FallbackSubject is the subject the dispatcher uses when the document
// carries no subject line.
func (c *Composer) FallbackSubject() string {
	return c.cfg.FallbackSubject
}

func (c *Composer) loadInputs(ctx context.Context) ([]contractx.PriceRecord, []contractx.NewsRecord, error) {
	priceRows, err := c.store.Select(ctx, contractx.TablePrice, storex.Query{
		OrderBy:    contractx.FieldTimestamp,
		Descending: true,
		Limit:      c.cfg.PriceLimit,
	})
	if err != nil {
		return nil, nil, wrapStore(err)
	}
	newsRows, err := c.store.Select(ctx, contractx.TableNews, storex.Query{
		OrderBy:    contractx.FieldTimestamp,
		Descending: true,
		Limit:      c.cfg.NewsLimit,
	})
	if err != nil {
		return nil, nil, wrapStore(err)
	}

	logger := zerolog.Ctx(ctx)
	prices, err := storex.DecodePrices(priceRows)
	if err != nil {
		logger.Warn().Err(err).
			Str("table", contractx.TablePrice).
			Int("skipped", len(priceRows)-len(prices)).
			Msg("skipping undecodable rows")
	}
	news, err := storex.DecodeNews(newsRows)
	if err != nil {
		logger.Warn().Err(err).
			Str("table", contractx.TableNews).
			Int("skipped", len(newsRows)-len(news)).
			Msg("skipping undecodable rows")
	}
	return prices, news, nil
}

type pricePoint struct {
	Price     json.Number `json:"price"`
	Timestamp string      `json:"timestamp"`
}

func (c *Composer) promptVariables(prices []contractx.PriceRecord, news []contractx.NewsRecord) (map[string]any, error) {
	points := make([]pricePoint, 0, len(prices))
	for _, p := range prices {
		points = append(points, pricePoint{Price: json.Number(p.Price.String()), Timestamp: p.Timestamp})
	}
	items := make([]string, 0, len(news))
	for _, n := range news {
		items = append(items, n.FinanceInfo)
	}

	pricesJSON, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal prices: %v", contractx.ErrValidation, err)
	}
	newsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal news: %v", contractx.ErrValidation, err)
	}

	return map[string]any{
		"prices":    string(pricesJSON),
		"news":      string(newsJSON),
		"subject":   c.cfg.Subject,
		"max_words": c.cfg.MaxWords,
		"signature": c.cfg.Signature,
	}, nil
}

func wrapStore(err error) error {
	if errors.Is(err, contractx.ErrStore) {
		return err
	}
	return fmt.Errorf("%w: %v", contractx.ErrStore, err)
}
