package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vietvoyage/trip-agent/internal/middleware"
	"github.com/vietvoyage/trip-agent/internal/model"
	"github.com/vietvoyage/trip-agent/internal/service"
	"github.com/vietvoyage/trip-agent/internal/store"
	"github.com/vietvoyage/trip-agent/pkg/logger"
)

// MessageHandler handles message and itinerary endpoints.
type MessageHandler struct {
	chatService   *service.ChatService
	threadService *service.ThreadService
	logger        *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(
	chatSvc *service.ChatService,
	threadSvc *service.ThreadService,
	log *logger.Logger,
) *MessageHandler {
	return &MessageHandler{
		chatService:   chatSvc,
		threadService: threadSvc,
		logger:        log,
	}
}

// List handles GET /api/v1/threads/:id/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	threadID := chi.URLParam(r, "id")

	if err := middleware.ValidateThreadID(threadID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	afterSequence := uint64(0)
	limit := 50

	if seq := r.URL.Query().Get("after_sequence"); seq != "" {
		if parsed, err := strconv.ParseUint(seq, 10, 64); err == nil {
			afterSequence = parsed
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	resp, err := h.threadService.Messages(ctx, userID, threadID, afterSequence, limit)
	if err != nil {
		if errors.Is(err, store.ErrThreadNotFound) {
			writeError(w, http.StatusNotFound, "thread not found")
			return
		}
		h.logger.Error("failed to get messages", "error", err, "thread_id", threadID)
		writeError(w, http.StatusInternalServerError, "failed to get messages")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Send handles POST /api/v1/messages. The thread ID in the body may be empty
// to lazily create a new thread.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ThreadID != "" {
		if err := middleware.ValidateThreadID(req.ThreadID); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.chatService.Send(ctx, userID, &req)
	if err != nil {
		if errors.Is(err, store.ErrThreadNotFound) {
			writeError(w, http.StatusNotFound, "thread not found")
			return
		}
		h.logger.Error("failed to process message", "error", err, "thread_id", req.ThreadID)
		writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Itineraries handles GET /api/v1/itineraries
func (h *MessageHandler) Itineraries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	resp, err := h.chatService.Itineraries(ctx, userID)
	if err != nil {
		h.logger.Error("failed to list itineraries", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list itineraries")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
