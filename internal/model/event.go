package model

import (
	"time"
)

// TurnEventType identifies a stage event emitted while a turn is running.
type TurnEventType string

const (
	TurnEventIntent     TurnEventType = "intent"
	TurnEventToolCall   TurnEventType = "tool_call"
	TurnEventToolResult TurnEventType = "tool_result"
	TurnEventMessage    TurnEventType = "message"
	TurnEventError      TurnEventType = "error"
)

// TurnEvent is pushed to SSE clients as the agent works through a turn.
type TurnEvent struct {
	Type     TurnEventType `json:"type"`
	ThreadID string        `json:"thread_id"`
	Intent   Intent        `json:"intent,omitempty"`
	ToolCall *ToolCall     `json:"tool_call,omitempty"`
	Message  *Message      `json:"message,omitempty"`
	Reason   string        `json:"reason,omitempty"`
}

// ErrorEvent represents a terminal SSE error event.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HeartbeatEvent keeps idle SSE connections alive.
type HeartbeatEvent struct {
	Timestamp time.Time `json:"timestamp"`
}
