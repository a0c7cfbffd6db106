// Package model defines data structures for the trip-planning agent.
package model

import (
	"encoding/json"
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a request emitted by the assistant to invoke a named tool.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Message represents one turn in a conversation thread. Messages are
// immutable once appended; a thread is a strictly ordered, append-only
// sequence of them.
type Message struct {
	// Identity
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	UserID   string `json:"user_id"`

	// Content
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls is non-empty on assistant messages that request tool
	// invocations instead of answering. Such a message is not terminal.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// Tool-result linkage, set on RoleTool messages only.
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
	IsError    bool   `json:"is_error,omitempty"`

	// Intent classified for this message (user messages only). The most
	// recent value in history is the fallback context for vague follow-ups.
	Intent Intent `json:"intent,omitempty"`

	// LLM metadata (assistant messages only)
	Model      *string `json:"model,omitempty"`
	TokensIn   *int    `json:"tokens_in,omitempty"`
	TokensOut  *int    `json:"tokens_out,omitempty"`
	LatencyMs  *int64  `json:"latency_ms,omitempty"`
	StopReason *string `json:"stop_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`

	// Stream sequence, populated by the store on append/read.
	Sequence uint64 `json:"sequence,omitempty"`
}

// SendMessageRequest is the request to send a new user message. ThreadID may
// be empty, in which case a thread is created lazily for the caller.
type SendMessageRequest struct {
	ThreadID string `json:"thread_id,omitempty"`
	Content  string `json:"content"`
	Model    string `json:"model,omitempty"`
}

// SendMessageResponse is the response after a completed turn.
type SendMessageResponse struct {
	ThreadID string    `json:"thread_id"`
	Intent   Intent    `json:"intent"`
	Messages []Message `json:"messages"`
}

// ListMessagesResponse is the response for listing thread messages.
type ListMessagesResponse struct {
	Messages     []Message `json:"messages"`
	HasMore      bool      `json:"has_more"`
	LastSequence uint64    `json:"last_sequence"`
}
