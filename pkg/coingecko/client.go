package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const maxResponseSizeBytes = 1 << 20

var (
	ErrBadStatus    = errors.New("coingecko: unexpected status")
	ErrMissingQuote = errors.New("coingecko: quote missing from response")
)

type Config struct {
	BaseURL  string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.coingecko.com/api/v3"`
	APIKey   string        `envconfig:"API_KEY" split_words:"true"`
	Asset    string        `split_words:"true" default:"bitcoin"`
	Currency string        `split_words:"true" default:"usd"`
	Timeout  time.Duration `split_words:"true" default:"10s"`
}

type Client struct {
	baseURL    string
	apiKey     string
	asset      string
	currency   string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewClient(cfg Config, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("coingecko base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid coingecko url: %w", err)
	}

	asset := strings.ToLower(strings.TrimSpace(cfg.Asset))
	currency := strings.ToLower(strings.TrimSpace(cfg.Currency))
	if asset == "" || currency == "" {
		return nil, errors.New("coingecko asset and currency are required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		asset:      asset,
		currency:   currency,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

func (c *Client) Pair() string {
	return c.asset + "/" + c.currency
}

// SpotPrice returns the single numeric field of
// {"<asset>": {"<currency>": <decimal>}}.
func (c *Client) SpotPrice(ctx context.Context) (decimal.Decimal, error) {
	q := url.Values{}
	q.Set("ids", c.asset)
	q.Set("vs_currencies", c.currency)
	endpoint := c.baseURL + "/simple/price?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("execute quote request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return decimal.Zero, fmt.Errorf("read quote response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return decimal.Zero, fmt.Errorf("%w: status=%d body=%s", ErrBadStatus, resp.StatusCode, string(raw))
	}

	var parsed map[string]map[string]json.RawMessage
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return decimal.Zero, fmt.Errorf("decode quote response: %w", err)
	}

	field, ok := parsed[c.asset][c.currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrMissingQuote, c.Pair())
	}

	var num json.Number
	if err := json.Unmarshal(field, &num); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s is not numeric: %s", ErrMissingQuote, c.Pair(), string(field))
	}
	price, err := decimal.NewFromString(num.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s is not numeric: %v", ErrMissingQuote, c.Pair(), err)
	}

	return price, nil
}
