package agent_test

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/vietvoyage/trip-agent/internal/llm"
	"github.com/vietvoyage/trip-agent/internal/search"
)

// fakeLLM replays a scripted sequence of completions. When the script runs
// out, the last step repeats.
type fakeLLM struct {
	mu     sync.Mutex
	script []func(req *llm.CompletionRequest) (*llm.CompletionResponse, error)
	calls  []*llm.CompletionRequest
}

func (f *fakeLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, req)
	if len(f.script) == 0 {
		return &llm.CompletionResponse{Content: "", Model: "fake"}, nil
	}
	idx := len(f.calls) - 1
	if idx >= len(f.script) {
		idx = len(f.script) - 1
	}
	return f.script[idx](req)
}

func (f *fakeLLM) Name() string     { return "fake" }
func (f *fakeLLM) Models() []string { return []string{"fake"} }

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func scriptOf(steps ...func(*llm.CompletionRequest) (*llm.CompletionResponse, error)) []func(*llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return steps
}

func textStep(content string) func(*llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return func(*llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return &llm.CompletionResponse{
			Content:    content,
			Model:      "fake",
			StopReason: "stop",
		}, nil
	}
}

func toolStep(calls ...llm.ToolCallRequest) func(*llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return func(*llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return &llm.CompletionResponse{
			ToolCalls:  calls,
			Model:      "fake",
			StopReason: "tool_use",
		}, nil
	}
}

func errStep(err error) func(*llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return func(*llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return nil, err
	}
}

func rawArgs(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// fakeSearcher returns canned search results.
type fakeSearcher struct {
	results []search.Result
	err     error

	lastQuery string
	lastMax   int
}

func (f *fakeSearcher) Search(ctx context.Context, query string, maxResults int) ([]search.Result, error) {
	f.lastQuery = query
	f.lastMax = maxResults
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}
