package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	contractx "github.com/tanpawarit/market-digest-agents/agent/contract"
)

func newTestSupabase(t *testing.T, handler http.HandlerFunc, opts ...SupabaseOption) *SupabaseStore {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]SupabaseOption{WithHTTPClient(server.Client())}, opts...)
	store, err := NewSupabaseStore(SupabaseConfig{URL: server.URL, Key: "service-key"}, opts...)
	if err != nil {
		t.Fatalf("NewSupabaseStore() error = %v", err)
	}
	return store
}

func TestSupabaseStoreInsert(t *testing.T) {
	t.Parallel()

	var (
		gotMethod, gotPath, gotPrefer, gotKey string
		gotBody                               map[string]any
	)
	store := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotPrefer = r.Header.Get("Prefer")
		gotKey = r.Header.Get("apikey")
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `[{"id":7,"price":67123.45,"timestamp":"2026-10-18T08:00:00.000000+00:00"}]`)
	})

	handle, err := store.Insert(context.Background(), contractx.TablePrice, PriceRow(contractx.PriceRecord{
		Price:     decimal.RequireFromString("67123.45"),
		Timestamp: "2026-10-18T08:00:00.000000+00:00",
	}))
	if err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/rest/v1/btc_price" {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if gotPrefer != "return=representation" {
		t.Fatalf("Prefer = %q", gotPrefer)
	}
	if gotKey != "service-key" {
		t.Fatalf("apikey = %q", gotKey)
	}
	if gotBody["price"] != "67123.45" {
		t.Fatalf("body price = %#v", gotBody["price"])
	}
	if fmt.Sprint(handle["id"]) != "7" {
		t.Fatalf("handle id = %v", handle["id"])
	}
}

func TestSupabaseStoreSelectBuildsOrderAndLimit(t *testing.T) {
	t.Parallel()

	var gotQuery map[string][]string
	store := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		fmt.Fprint(w, `[{"finance_info":"b","timestamp":"2"},{"finance_info":"a","timestamp":"1"}]`)
	})

	rows, err := store.Select(context.Background(), contractx.TableNews, Query{
		OrderBy:    contractx.FieldTimestamp,
		Descending: true,
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	if gotQuery["order"][0] != "timestamp.desc" {
		t.Fatalf("order = %v", gotQuery["order"])
	}
	if gotQuery["limit"][0] != "10" {
		t.Fatalf("limit = %v", gotQuery["limit"])
	}
	if gotQuery["select"][0] != "*" {
		t.Fatalf("select = %v", gotQuery["select"])
	}
}

func TestSupabaseStoreSchemaHeaders(t *testing.T) {
	t.Parallel()

	var gotProfile string
	store := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		gotProfile = r.Header.Get("Accept-Profile")
		fmt.Fprint(w, `[]`)
	}, WithSchema("market"))

	if _, err := store.Select(context.Background(), contractx.TablePrice, Query{Limit: 1}); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if gotProfile != "market" {
		t.Fatalf("Accept-Profile = %q, want market", gotProfile)
	}
}

func TestSupabaseStoreErrorsWrapErrStore(t *testing.T) {
	t.Parallel()

	store := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusUnauthorized)
	})

	_, err := store.Insert(context.Background(), contractx.TableNews, Row{"finance_info": "x"})
	if !errors.Is(err, contractx.ErrStore) {
		t.Fatalf("Insert() error = %v, want ErrStore", err)
	}
	_, err = store.Select(context.Background(), contractx.TableNews, Query{})
	if !errors.Is(err, contractx.ErrStore) {
		t.Fatalf("Select() error = %v, want ErrStore", err)
	}
}

func TestSupabaseStoreRejectsBadIdentifiers(t *testing.T) {
	t.Parallel()

	calls := 0
	store := newTestSupabase(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `[]`)
	})

	if _, err := store.Select(context.Background(), "eco_info;drop", Query{}); !errors.Is(err, contractx.ErrStore) {
		t.Fatalf("Select() error = %v, want ErrStore", err)
	}
	if _, err := store.Select(context.Background(), contractx.TableNews, Query{OrderBy: "timestamp desc"}); !errors.Is(err, contractx.ErrStore) {
		t.Fatalf("Select() error = %v, want ErrStore", err)
	}
	if calls != 0 {
		t.Fatalf("expected no http calls, got %d", calls)
	}
}

func TestNewSupabaseStoreValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewSupabaseStore(SupabaseConfig{URL: "", Key: "k"}); err == nil {
		t.Fatal("expected error for empty url")
	}
	if _, err := NewSupabaseStore(SupabaseConfig{URL: "https://x.supabase.co", Key: " "}); err == nil {
		t.Fatal("expected error for empty key")
	}
}
