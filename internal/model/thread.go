package model

import (
	"time"
)

// Thread represents a persisted conversation thread. Threads are owned by
// exactly one user, mutated only by appending messages, and deleted only by
// explicit user action (hard delete).
type Thread struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count,omitempty"`
}

// CreateThreadRequest is the request to create a new thread.
type CreateThreadRequest struct {
	Title string `json:"title"`
}

// ListThreadsResponse is the response for listing a user's threads.
type ListThreadsResponse struct {
	Threads []Thread `json:"threads"`
	Total   int      `json:"total"`
	HasMore bool     `json:"has_more"`
}
