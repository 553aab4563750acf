package brave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxResponseSizeBytes = 4 << 20

var ErrBadStatus = errors.New("brave: unexpected status")

type Config struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.search.brave.com/res/v1"`
	APIKey  string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Count   int           `split_words:"true" default:"5"`
	Timeout time.Duration `split_words:"true" default:"15s"`
}

type SearchResults struct {
	Query struct {
		Original string `json:"original"`
	} `json:"query"`
	Web struct {
		Results []WebResult `json:"results"`
	} `json:"web"`
}

type WebResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Age         string `json:"age,omitempty"`
}

type Client struct {
	baseURL    string
	apiKey     string
	count      int
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
		return nil, errors.New("brave base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid brave url: %w", err)
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("brave api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		count:      cfg.Count,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Search runs a web search and returns the first page of results.
func (c *Client) Search(ctx context.Context, query string) (SearchResults, error) {
	q := url.Values{}
	q.Set("q", query)
	if c.count > 0 {
		q.Set("count", strconv.Itoa(c.count))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/web/search?"+q.Encode(), nil)
	if err != nil {
		return SearchResults{}, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return SearchResults{}, fmt.Errorf("execute search request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return SearchResults{}, fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return SearchResults{}, fmt.Errorf("%w: status=%d body=%s", ErrBadStatus, resp.StatusCode, string(raw))
	}

	var parsed SearchResults
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return SearchResults{}, fmt.Errorf("decode search response: %w", err)
	}
	return parsed, nil
}
