package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/vietvoyage/trip-agent/internal/llm"
	"github.com/vietvoyage/trip-agent/internal/model"
)

// Schema captures the subset of JSON Schema used for tool argument
// validation.
type Schema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required"`
}

// ToolContext carries call metadata into a tool.
type ToolContext struct {
	UserID   string
	ThreadID string
}

// Result is the outcome of one tool invocation. Failures are data, not
// errors: IsError is set and Content explains what went wrong, so the
// generator can see the failure and explain it to the user.
type Result struct {
	Content string
	IsError bool
}

// Tool is an external capability the generator may invoke mid-turn.
type Tool interface {
	Name() string
	Description() string
	Schema() *Schema
	Execute(ctx context.Context, tctx ToolContext, args map[string]any) Result
}

// Registry keeps the mapping between tool names and implementations, in
// registration order.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	order []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register inserts a tool when its name is not in use.
func (r *Registry) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = tool
	r.order = append(r.order, name)
	return nil
}

// Get fetches a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Definitions produces the tool declarations handed to the LLM, in
// registration order.
func (r *Registry) Definitions() []llm.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		defs = append(defs, llm.ToolDefinition{
			Name:        tool.Name(),
			Description: tool.Description(),
			Parameters:  schemaToMap(tool.Schema()),
		})
	}
	return defs
}

// Execute runs one requested tool call after schema validation. It always
// returns a Result: unknown tools, malformed arguments and tool failures all
// become failure-flagged results, never errors.
func (r *Registry) Execute(ctx context.Context, tctx ToolContext, call model.ToolCall) Result {
	tool, ok := r.Get(call.Name)
	if !ok {
		return Result{Content: fmt.Sprintf("unknown tool %q", call.Name), IsError: true}
	}

	args := map[string]any{}
	if len(call.Arguments) > 0 {
		if err := json.Unmarshal(call.Arguments, &args); err != nil {
			return Result{Content: fmt.Sprintf("invalid arguments for %s: %v", call.Name, err), IsError: true}
		}
	}

	if schema := tool.Schema(); schema != nil {
		if err := validateArgs(args, schema); err != nil {
			return Result{Content: fmt.Sprintf("invalid arguments for %s: %v", call.Name, err), IsError: true}
		}
	}

	return tool.Execute(ctx, tctx, args)
}

func schemaToMap(schema *Schema) map[string]any {
	if schema == nil {
		return map[string]any{"type": "object", "properties": map[string]any{}}
	}
	out := map[string]any{
		"type":       schema.Type,
		"properties": schema.Properties,
	}
	if len(schema.Required) > 0 {
		out["required"] = schema.Required
	}
	return out
}
