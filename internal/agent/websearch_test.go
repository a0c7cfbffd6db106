package agent_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vietvoyage/trip-agent/internal/agent"
	"github.com/vietvoyage/trip-agent/internal/search"
)

func TestWebSearchFormatsRankedResults(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Huế travel guide", URL: "https://example.com/hue", Snippet: "Imperial city on the Perfume River"},
		{Title: "Huế weather", URL: "https://example.com/weather", Snippet: "Rainy season runs Sep-Dec"},
	}}
	tool := agent.NewWebSearchTool(searcher, 3)

	result := tool.Execute(context.Background(), agent.ToolContext{}, map[string]any{"query": "Huế travel"})
	if result.IsError {
		t.Fatalf("unexpected failure: %q", result.Content)
	}
	if searcher.lastQuery != "Huế travel" || searcher.lastMax != 3 {
		t.Fatalf("searcher called with query=%q max=%d", searcher.lastQuery, searcher.lastMax)
	}
	if !strings.Contains(result.Content, "1. Huế travel guide") || !strings.Contains(result.Content, "2. Huế weather") {
		t.Fatalf("results not numbered in rank order:\n%s", result.Content)
	}
	if !strings.Contains(result.Content, "https://example.com/hue") {
		t.Fatalf("result URLs missing:\n%s", result.Content)
	}
}

func TestWebSearchEmptyQueryIsFailure(t *testing.T) {
	tool := agent.NewWebSearchTool(&fakeSearcher{}, 0)

	for _, args := range []map[string]any{{}, {"query": "   "}, {"query": 42}} {
		result := tool.Execute(context.Background(), agent.ToolContext{}, args)
		if !result.IsError {
			t.Fatalf("args %v accepted without a query", args)
		}
	}
}

func TestWebSearchBackendFailureIsResult(t *testing.T) {
	tool := agent.NewWebSearchTool(&fakeSearcher{err: errors.New("searxng unreachable")}, 5)

	result := tool.Execute(context.Background(), agent.ToolContext{}, map[string]any{"query": "đà lạt"})
	if !result.IsError {
		t.Fatal("backend failure must be a failure-flagged result")
	}
	if !strings.Contains(result.Content, "searxng unreachable") {
		t.Fatalf("result should carry the failure reason: %q", result.Content)
	}
}

func TestWebSearchNoResults(t *testing.T) {
	tool := agent.NewWebSearchTool(&fakeSearcher{}, 5)

	result := tool.Execute(context.Background(), agent.ToolContext{}, map[string]any{"query": "xyzzy"})
	if result.IsError {
		t.Fatalf("empty result set is not a failure: %q", result.Content)
	}
	if !strings.Contains(result.Content, "No results") {
		t.Fatalf("expected no-results message, got %q", result.Content)
	}
}
