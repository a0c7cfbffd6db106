package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/vietvoyage/trip-agent/internal/search"
)

// defaultSearchResults bounds the snippet list handed back to the generator.
const defaultSearchResults = 5

// Searcher is the web-search collaborator.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]search.Result, error)
}

// WebSearchTool exposes live web search to the generator.
type WebSearchTool struct {
	searcher   Searcher
	maxResults int
}

// NewWebSearchTool creates the web_search tool.
func NewWebSearchTool(searcher Searcher, maxResults int) *WebSearchTool {
	if maxResults <= 0 {
		maxResults = defaultSearchResults
	}
	return &WebSearchTool{searcher: searcher, maxResults: maxResults}
}

func (t *WebSearchTool) Name() string {
	return "web_search"
}

func (t *WebSearchTool) Description() string {
	return "Search the web for current information: prices, availability, schedules, weather, events. " +
		"Returns a short ranked list of results with snippets."
}

func (t *WebSearchTool) Schema() *Schema {
	return &Schema{
		Type: "object",
		Properties: map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "Free-text search query",
			},
		},
		Required: []string{"query"},
	}
}

// Execute runs the search and formats the ranked snippets.
func (t *WebSearchTool) Execute(ctx context.Context, tctx ToolContext, args map[string]any) Result {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return Result{Content: "web_search: query must not be empty", IsError: true}
	}

	results, err := t.searcher.Search(ctx, query, t.maxResults)
	if err != nil {
		return Result{Content: fmt.Sprintf("web_search failed: %v", err), IsError: true}
	}

	if len(results) == 0 {
		return Result{Content: "No results found for: " + query}
	}

	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", i+1, r.Title, r.URL, r.Snippet)
	}
	return Result{Content: strings.TrimSpace(b.String())}
}
