// Package store defines persistence interfaces for threads and itineraries.
package store

import (
	"context"
	"errors"

	"github.com/vietvoyage/trip-agent/internal/model"
)

// ErrThreadNotFound is returned when a thread does not exist or does not
// belong to the calling user. Both cases look identical to the caller.
var ErrThreadNotFound = errors.New("thread not found")

// ThreadStore persists conversation threads and their append-only message
// sequences.
type ThreadStore interface {
	CreateThread(ctx context.Context, thread *model.Thread) error
	GetThread(ctx context.Context, userID, threadID string) (*model.Thread, error)
	ListThreads(ctx context.Context, userID string, limit, offset int) ([]model.Thread, int, error)

	// DeleteThread removes the thread and all of its messages. Hard delete,
	// no tombstone.
	DeleteThread(ctx context.Context, userID, threadID string) error

	// AppendMessage appends one message and returns its sequence number.
	// Sequences within a thread are strictly increasing.
	AppendMessage(ctx context.Context, msg *model.Message) (uint64, error)

	// GetMessages returns messages with sequence > afterSequence, in append
	// order, up to limit.
	GetMessages(ctx context.Context, userID, threadID string, afterSequence uint64, limit int) ([]model.Message, error)
}

// ItineraryStore persists saved itineraries.
type ItineraryStore interface {
	Insert(ctx context.Context, it *model.Itinerary) error
	ListByUser(ctx context.Context, userID string) ([]model.Itinerary, error)
}
