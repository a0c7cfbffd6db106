package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vietvoyage/trip-agent/internal/agent"
	"github.com/vietvoyage/trip-agent/internal/model"
	"github.com/vietvoyage/trip-agent/internal/store"
	"github.com/vietvoyage/trip-agent/pkg/logger"
	"github.com/vietvoyage/trip-agent/pkg/metrics"
)

// historyLimit bounds how much history one turn loads.
const historyLimit = 100

// ChatService runs agent turns against conversation threads. Turns on the
// same thread are serialized so concurrent sends cannot interleave appends.
type ChatService struct {
	threads     *ThreadService
	store       store.ThreadStore
	itineraries store.ItineraryStore
	runner      *agent.Runner
	logger      *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewChatService creates a new chat service.
func NewChatService(
	threads *ThreadService,
	threadStore store.ThreadStore,
	itineraries store.ItineraryStore,
	runner *agent.Runner,
	log *logger.Logger,
) *ChatService {
	return &ChatService{
		threads:     threads,
		store:       threadStore,
		itineraries: itineraries,
		runner:      runner,
		logger:      log,
		locks:       make(map[string]*sync.Mutex),
	}
}

// threadLock returns the mutex serializing turns for one thread.
func (s *ChatService) threadLock(threadID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[threadID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[threadID] = lock
	}
	return lock
}

// Send runs one complete turn: it resolves (or lazily creates) the thread,
// appends the user message, executes the agent, and appends every message
// the turn produced, in order. It returns the thread and all appended
// messages including the user message.
func (s *ChatService) Send(ctx context.Context, userID string, req *model.SendMessageRequest) (*model.SendMessageResponse, error) {
	return s.send(ctx, userID, req, nil)
}

// SendStream behaves like Send but pushes stage events to emit as the turn
// progresses.
func (s *ChatService) SendStream(ctx context.Context, userID string, req *model.SendMessageRequest, emit agent.EmitFunc) (*model.SendMessageResponse, error) {
	return s.send(ctx, userID, req, emit)
}

func (s *ChatService) send(ctx context.Context, userID string, req *model.SendMessageRequest, emit agent.EmitFunc) (*model.SendMessageResponse, error) {
	thread, err := s.resolveThread(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	lock := s.threadLock(thread.ID)
	lock.Lock()
	defer lock.Unlock()

	history, err := s.loadHistory(ctx, userID, thread.ID)
	if err != nil {
		return nil, err
	}

	tctx := agent.ToolContext{UserID: userID, ThreadID: thread.ID}
	result := s.runner.RunTurn(ctx, tctx, agent.TurnRequest{
		History: history,
		Content: req.Content,
		Model:   req.Model,
	}, emit)

	userMsg := model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		ThreadID:  thread.ID,
		UserID:    userID,
		Role:      model.RoleUser,
		Content:   req.Content,
		Intent:    result.Intent,
		CreatedAt: time.Now(),
	}

	appended := make([]model.Message, 0, len(result.Messages)+1)
	for _, msg := range append([]model.Message{userMsg}, result.Messages...) {
		seq, err := s.store.AppendMessage(ctx, &msg)
		if err != nil {
			return nil, err
		}
		msg.Sequence = seq
		metrics.MessagesTotal.WithLabelValues(string(msg.Role)).Inc()
		appended = append(appended, msg)
	}

	return &model.SendMessageResponse{
		ThreadID: thread.ID,
		Intent:   result.Intent,
		Messages: appended,
	}, nil
}

// loadHistory returns the most recent historyLimit messages of the thread,
// in append order. It pages forward and keeps only the tail, so the latest
// stamped intent stays visible to the classifier on long threads.
func (s *ChatService) loadHistory(ctx context.Context, userID, threadID string) ([]model.Message, error) {
	var history []model.Message
	var after uint64
	for {
		batch, err := s.store.GetMessages(ctx, userID, threadID, after, historyLimit)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return history, nil
		}
		history = append(history, batch...)
		if len(history) > historyLimit {
			history = history[len(history)-historyLimit:]
		}
		after = batch[len(batch)-1].Sequence
		if len(batch) < historyLimit {
			return history, nil
		}
	}
}

// resolveThread returns the referenced thread, or lazily creates one when
// the request names none.
func (s *ChatService) resolveThread(ctx context.Context, userID string, req *model.SendMessageRequest) (*model.Thread, error) {
	if req.ThreadID != "" {
		return s.threads.Get(ctx, userID, req.ThreadID)
	}
	return s.threads.Create(ctx, userID, titleFromContent(req.Content))
}

// Itineraries returns the user's saved itineraries.
func (s *ChatService) Itineraries(ctx context.Context, userID string) (*model.ListItinerariesResponse, error) {
	itineraries, err := s.itineraries.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.ListItinerariesResponse{
		Itineraries: itineraries,
		Total:       len(itineraries),
	}, nil
}

// titleFromContent derives a short thread title from the first message.
func titleFromContent(content string) string {
	title := strings.TrimSpace(content)
	const maxTitle = 60
	runes := []rune(title)
	if len(runes) > maxTitle {
		title = strings.TrimRight(string(runes[:maxTitle]), " ") + "…"
	}
	return title
}
