package store

import (
	"context"
	"sort"
	"sync"

	"github.com/vietvoyage/trip-agent/internal/model"
)

// MemoryThreadStore is an in-memory ThreadStore, used in tests and local
// development.
type MemoryThreadStore struct {
	mu       sync.RWMutex
	threads  map[string]*model.Thread
	messages map[string][]model.Message
	seq      map[string]uint64
}

// NewMemoryThreadStore creates an empty in-memory thread store.
func NewMemoryThreadStore() *MemoryThreadStore {
	return &MemoryThreadStore{
		threads:  make(map[string]*model.Thread),
		messages: make(map[string][]model.Message),
		seq:      make(map[string]uint64),
	}
}

// CreateThread stores a new thread.
func (s *MemoryThreadStore) CreateThread(ctx context.Context, thread *model.Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *thread
	s.threads[thread.ID] = &cp
	return nil
}

// GetThread returns the thread if it exists and is owned by userID.
func (s *MemoryThreadStore) GetThread(ctx context.Context, userID, threadID string) (*model.Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread, ok := s.threads[threadID]
	if !ok || thread.UserID != userID {
		return nil, ErrThreadNotFound
	}
	cp := *thread
	cp.MessageCount = len(s.messages[threadID])
	return &cp, nil
}

// ListThreads returns the user's threads, newest first.
func (s *MemoryThreadStore) ListThreads(ctx context.Context, userID string, limit, offset int) ([]model.Thread, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var threads []model.Thread
	for _, thread := range s.threads {
		if thread.UserID == userID {
			cp := *thread
			cp.MessageCount = len(s.messages[thread.ID])
			threads = append(threads, cp)
		}
	}

	sort.Slice(threads, func(i, j int) bool {
		return threads[i].CreatedAt.After(threads[j].CreatedAt)
	})

	total := len(threads)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return threads[start:end], total, nil
}

// DeleteThread removes the thread and its messages.
func (s *MemoryThreadStore) DeleteThread(ctx context.Context, userID, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread, ok := s.threads[threadID]
	if !ok || thread.UserID != userID {
		return ErrThreadNotFound
	}

	delete(s.threads, threadID)
	delete(s.messages, threadID)
	delete(s.seq, threadID)
	return nil
}

// AppendMessage appends a message to its thread and assigns the sequence.
func (s *MemoryThreadStore) AppendMessage(ctx context.Context, msg *model.Message) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	thread, ok := s.threads[msg.ThreadID]
	if !ok || thread.UserID != msg.UserID {
		return 0, ErrThreadNotFound
	}

	s.seq[msg.ThreadID]++
	seq := s.seq[msg.ThreadID]

	cp := *msg
	cp.Sequence = seq
	s.messages[msg.ThreadID] = append(s.messages[msg.ThreadID], cp)
	thread.UpdatedAt = cp.CreatedAt
	return seq, nil
}

// GetMessages returns the thread's messages after the given sequence.
func (s *MemoryThreadStore) GetMessages(ctx context.Context, userID, threadID string, afterSequence uint64, limit int) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread, ok := s.threads[threadID]
	if !ok || thread.UserID != userID {
		return nil, ErrThreadNotFound
	}

	var out []model.Message
	for _, msg := range s.messages[threadID] {
		if msg.Sequence <= afterSequence {
			continue
		}
		out = append(out, msg)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// MemoryItineraryStore is an in-memory ItineraryStore.
type MemoryItineraryStore struct {
	mu          sync.RWMutex
	itineraries map[string][]model.Itinerary

	// FailWith, when set, makes Insert fail. Used to exercise tool failure
	// handling in tests.
	FailWith error
}

// NewMemoryItineraryStore creates an empty in-memory itinerary store.
func NewMemoryItineraryStore() *MemoryItineraryStore {
	return &MemoryItineraryStore{
		itineraries: make(map[string][]model.Itinerary),
	}
}

// Insert stores an itinerary for its user.
func (s *MemoryItineraryStore) Insert(ctx context.Context, it *model.Itinerary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}
	s.itineraries[it.UserID] = append(s.itineraries[it.UserID], *it)
	return nil
}

// ListByUser returns the user's saved itineraries in insertion order.
func (s *MemoryItineraryStore) ListByUser(ctx context.Context, userID string) ([]model.Itinerary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Itinerary, len(s.itineraries[userID]))
	copy(out, s.itineraries[userID])
	return out, nil
}
