package store

import (
	"bytes"
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

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

const maxResponseSizeBytes = 2 << 20

type SupabaseConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Key     string        `envconfig:"KEY" split_words:"true" required:"true"`
	Schema  string        `split_words:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// SupabaseOption customizes SupabaseStore.
type SupabaseOption func(*SupabaseStore)

func WithHTTPClient(client *http.Client) SupabaseOption {
	return func(s *SupabaseStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// WithSchema targets a non-public Postgres schema through the
// Accept-Profile/Content-Profile headers.
func WithSchema(schema string) SupabaseOption {
	return func(s *SupabaseStore) {
		s.schema = strings.TrimSpace(schema)
	}
}

// SupabaseStore talks to the PostgREST endpoint of a Supabase project.
type SupabaseStore struct {
	restURL    string
	key        string
	schema     string
	httpClient *http.Client
}

var _ Gateway = (*SupabaseStore)(nil)

func NewSupabaseStore(cfg SupabaseConfig, opts ...SupabaseOption) (*SupabaseStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("supabase url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid supabase url: %w", err)
	}

	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		return nil, errors.New("supabase key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	restURL := baseURL
	if !strings.HasSuffix(restURL, "/rest/v1") {
		restURL += "/rest/v1"
	}

	store := &SupabaseStore{
		restURL: restURL,
		key:     key,
		schema:  strings.TrimSpace(cfg.Schema),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	return store, nil
}

func (s *SupabaseStore) Insert(ctx context.Context, table string, record Row) (Row, error) {
	if err := validateIdent("table", table); err != nil {
		return nil, err
	}
	if len(record) == 0 {
		return nil, fmt.Errorf("%w: empty record for %s", contractx.ErrStore, table)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return nil, storeErr("marshal", table, err)
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")
	header.Set("Prefer", "return=representation")
	if s.schema != "" {
		header.Set("Content-Profile", s.schema)
	}

	raw, err := s.do(ctx, http.MethodPost, s.restURL+"/"+table, header, payload)
	if err != nil {
		return nil, storeErr("insert", table, err)
	}

	var rows []Row
	if err := decodeRows(raw, &rows); err != nil {
		return nil, storeErr("decode insert", table, err)
	}
	if len(rows) == 0 {
		return record, nil
	}
	return rows[0], nil
}

func (s *SupabaseStore) Select(ctx context.Context, table string, q Query) ([]Row, error) {
	if err := validateQuery(table, q); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("select", "*")
	if q.OrderBy != "" {
		dir := "asc"
		if q.Descending {
			dir = "desc"
		}
		params.Set("order", q.OrderBy+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	header := http.Header{}
	if s.schema != "" {
		header.Set("Accept-Profile", s.schema)
	}

	raw, err := s.do(ctx, http.MethodGet, s.restURL+"/"+table+"?"+params.Encode(), header, nil)
	if err != nil {
		return nil, storeErr("select", table, err)
	}

	rows := []Row{}
	if err := decodeRows(raw, &rows); err != nil {
		return nil, storeErr("decode select", table, err)
	}
	return rows, nil
}

func (s *SupabaseStore) do(ctx context.Context, method, endpoint string, header http.Header, body []byte) ([]byte, error) {
	if s == nil {
		return nil, errors.New("nil store")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("http status=%d body=%s", resp.StatusCode, string(raw))
	}
	return raw, nil
}

func decodeRows(raw []byte, out *[]Row) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(out)
}
