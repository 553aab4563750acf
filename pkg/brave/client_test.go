package brave

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearch(t *testing.T) {
	t.Parallel()

	var gotToken, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Subscription-Token")
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, `{"query":{"original":"fed rates"},"web":{"results":[{"title":"Fed holds","url":"https://example.com/fed","description":"The Fed held rates steady."},{"title":"Other","description":"second"}]}}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "brave-key", Count: 3}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	results, err := client.Search(context.Background(), "fed rates")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if gotToken != "brave-key" {
		t.Fatalf("X-Subscription-Token = %q", gotToken)
	}
	if gotQuery != "fed rates" {
		t.Fatalf("q = %q", gotQuery)
	}
	if len(results.Web.Results) == 0 {
		t.Fatal("Search() returned no results")
	}
	if got := results.Web.Results[0].Description; got != "The Fed held rates steady." {
		t.Fatalf("Results[0].Description = %q", got)
	}
}

func TestSearchNoResults(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"query":{"original":"nothing"}}`)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "k"}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	results, err := client.Search(context.Background(), "nothing")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results.Web.Results) != 0 {
		t.Fatalf("expected no results, got %d", len(results.Web.Results))
	}
}

func TestSearchBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL, APIKey: "k"}, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	if _, err := client.Search(context.Background(), "q"); !errors.Is(err, ErrBadStatus) {
		t.Fatalf("Search() error = %v, want ErrBadStatus", err)
	}
}
