package agent_test

import (
	"context"
	"strings"
	"testing"

	"github.com/vietvoyage/trip-agent/internal/agent"
	"github.com/vietvoyage/trip-agent/internal/model"
)

// echoTool is a minimal tool for registry tests.
type echoTool struct {
	name   string
	schema *agent.Schema
	result agent.Result
}

func (t *echoTool) Name() string          { return t.name }
func (t *echoTool) Description() string   { return "echoes back" }
func (t *echoTool) Schema() *agent.Schema { return t.schema }
func (t *echoTool) Execute(ctx context.Context, tctx agent.ToolContext, args map[string]any) agent.Result {
	return t.result
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := agent.NewRegistry()
	if err := r.Register(&echoTool{name: "echo"}); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	if err := r.Register(&echoTool{name: "echo"}); err == nil {
		t.Fatal("duplicate registration accepted")
	}
	if err := r.Register(nil); err == nil {
		t.Fatal("nil tool accepted")
	}
	if err := r.Register(&echoTool{name: ""}); err == nil {
		t.Fatal("unnamed tool accepted")
	}
}

func TestRegistryDefinitionsKeepRegistrationOrder(t *testing.T) {
	r := agent.NewRegistry()
	for _, name := range []string{"web_search", "save_itinerary"} {
		if err := r.Register(&echoTool{name: name}); err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}

	defs := r.Definitions()
	if len(defs) != 2 {
		t.Fatalf("expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Name != "web_search" || defs[1].Name != "save_itinerary" {
		t.Fatalf("definitions out of order: %s, %s", defs[0].Name, defs[1].Name)
	}
	if defs[0].Parameters == nil {
		t.Fatal("nil-schema tool must still declare an object schema")
	}
}

func TestRegistryExecuteUnknownToolIsFailureResult(t *testing.T) {
	r := agent.NewRegistry()

	result := r.Execute(context.Background(), agent.ToolContext{}, model.ToolCall{ID: "c1", Name: "nope"})
	if !result.IsError {
		t.Fatal("unknown tool must produce a failure-flagged result")
	}
	if !strings.Contains(result.Content, "nope") {
		t.Fatalf("result should name the missing tool: %q", result.Content)
	}
}

func TestRegistryExecuteMalformedArguments(t *testing.T) {
	r := agent.NewRegistry()
	if err := r.Register(&echoTool{name: "echo"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result := r.Execute(context.Background(), agent.ToolContext{}, model.ToolCall{
		ID:        "c1",
		Name:      "echo",
		Arguments: []byte(`{not json`),
	})
	if !result.IsError {
		t.Fatal("malformed JSON arguments must produce a failure-flagged result")
	}
}

func TestRegistryExecuteValidatesSchema(t *testing.T) {
	r := agent.NewRegistry()
	tool := &echoTool{
		name: "echo",
		schema: &agent.Schema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{"type": "string"},
				"count": map[string]any{"type": "integer"},
			},
			Required: []string{"query"},
		},
		result: agent.Result{Content: "ok"},
	}
	if err := r.Register(tool); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	missing := r.Execute(context.Background(), agent.ToolContext{}, model.ToolCall{
		ID: "c1", Name: "echo", Arguments: rawArgs(map[string]any{"count": 2}),
	})
	if !missing.IsError || !strings.Contains(missing.Content, "query") {
		t.Fatalf("missing required field not rejected: %+v", missing)
	}

	badType := r.Execute(context.Background(), agent.ToolContext{}, model.ToolCall{
		ID: "c2", Name: "echo", Arguments: rawArgs(map[string]any{"query": "huế", "count": "three"}),
	})
	if !badType.IsError {
		t.Fatalf("wrong field type not rejected: %+v", badType)
	}

	ok := r.Execute(context.Background(), agent.ToolContext{}, model.ToolCall{
		ID: "c3", Name: "echo", Arguments: rawArgs(map[string]any{"query": "huế", "count": 3}),
	})
	if ok.IsError || ok.Content != "ok" {
		t.Fatalf("valid arguments rejected: %+v", ok)
	}
}
