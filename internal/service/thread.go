// Package service provides business logic for the trip-planning agent API.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vietvoyage/trip-agent/internal/model"
	"github.com/vietvoyage/trip-agent/internal/store"
	"github.com/vietvoyage/trip-agent/pkg/logger"
	"github.com/vietvoyage/trip-agent/pkg/metrics"
)

// ThreadService handles conversation-thread operations.
type ThreadService struct {
	store  store.ThreadStore
	logger *logger.Logger
}

// NewThreadService creates a new thread service.
func NewThreadService(threads store.ThreadStore, log *logger.Logger) *ThreadService {
	return &ThreadService{
		store:  threads,
		logger: log,
	}
}

// Create creates a new thread for the user. Each call yields a distinct
// thread; there is no implicit reuse.
func (s *ThreadService) Create(ctx context.Context, userID, title string) (*model.Thread, error) {
	now := time.Now()

	thread := &model.Thread{
		ID:        uuid.Must(uuid.NewV7()).String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateThread(ctx, thread); err != nil {
		return nil, fmt.Errorf("failed to create thread: %w", err)
	}

	metrics.ThreadsTotal.Inc()
	s.logger.Info("thread created", "thread_id", thread.ID, "user_id", userID)
	return thread, nil
}

// Get retrieves a thread owned by the user.
func (s *ThreadService) Get(ctx context.Context, userID, threadID string) (*model.Thread, error) {
	return s.store.GetThread(ctx, userID, threadID)
}

// List retrieves the user's threads.
func (s *ThreadService) List(ctx context.Context, userID string, limit, offset int) (*model.ListThreadsResponse, error) {
	threads, total, err := s.store.ListThreads(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}

	return &model.ListThreadsResponse{
		Threads: threads,
		Total:   total,
		HasMore: offset+len(threads) < total,
	}, nil
}

// Delete hard-deletes a thread and all of its messages.
func (s *ThreadService) Delete(ctx context.Context, userID, threadID string) error {
	if err := s.store.DeleteThread(ctx, userID, threadID); err != nil {
		return err
	}
	s.logger.Info("thread deleted", "thread_id", threadID, "user_id", userID)
	return nil
}

// Messages retrieves a thread's messages after the given sequence.
func (s *ThreadService) Messages(ctx context.Context, userID, threadID string, afterSequence uint64, limit int) (*model.ListMessagesResponse, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}

	messages, err := s.store.GetMessages(ctx, userID, threadID, afterSequence, limit)
	if err != nil {
		return nil, err
	}

	var lastSeq uint64
	if len(messages) > 0 {
		lastSeq = messages[len(messages)-1].Sequence
	}

	return &model.ListMessagesResponse{
		Messages:     messages,
		HasMore:      len(messages) == limit,
		LastSequence: lastSeq,
	}, nil
}
