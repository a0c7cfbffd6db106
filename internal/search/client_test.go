package search_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vietvoyage/trip-agent/internal/search"
)

func TestSearchRanksAndTruncates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "Huế travel" {
			t.Errorf("query = %q", got)
		}
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"query": "Huế travel",
			"number_of_results": 3,
			"results": [
				{"title": "low", "url": "https://a", "content": "c1", "score": 0.2},
				{"title": "high", "url": "https://b", "content": "c2", "score": 1.9},
				{"title": "mid", "url": "https://c", "content": "c3", "score": 0.8}
			]
		}`))
	}))
	defer srv.Close()

	c := search.NewClient(srv.URL, 5*time.Second)
	results, err := c.Search(context.Background(), "Huế travel", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "high" || results[1].Title != "mid" {
		t.Fatalf("results not ranked by score: %q, %q", results[0].Title, results[1].Title)
	}
	if results[0].Snippet != "c2" {
		t.Fatalf("snippet not mapped from content field: %q", results[0].Snippet)
	}
}

func TestSearchNonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := search.NewClient(srv.URL, 5*time.Second)
	if _, err := c.Search(context.Background(), "anything", 5); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestSearchRespectsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := search.NewClient(srv.URL, 5*time.Second)
	if _, err := c.Search(ctx, "slow", 5); err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestHealthCheck(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	}))
	defer ok.Close()

	c := search.NewClient(ok.URL, 5*time.Second)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer down.Close()

	c = search.NewClient(down.URL, 5*time.Second)
	if err := c.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected error for 5xx backend")
	}
}
