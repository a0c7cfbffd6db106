package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vietvoyage/trip-agent/internal/middleware"
	"github.com/vietvoyage/trip-agent/internal/model"
	"github.com/vietvoyage/trip-agent/internal/service"
	"github.com/vietvoyage/trip-agent/pkg/logger"
	"github.com/vietvoyage/trip-agent/pkg/metrics"
)

// heartbeatInterval is how often the stream emits a keep-alive event
// while a turn is in flight. It is a var so tests can shorten it.
var heartbeatInterval = 30 * time.Second

// StreamHandler handles SSE streaming endpoints.
type StreamHandler struct {
	chatService *service.ChatService
	logger      *logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(chatSvc *service.ChatService, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		chatService: chatSvc,
		logger:      log,
	}
}

// Stream handles POST /api/v1/messages/stream. It accepts a message, runs
// the turn, and pushes stage events (intent, tool_call, tool_result,
// message) as the agent works.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
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

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	// Turns can sit in an LLM call for up to a minute, so a heartbeat
	// keeps intermediaries from dropping the connection while the agent
	// works. Writes are serialized because the ticker goroutine shares
	// the response writer with the turn events below.
	var writeMu sync.Mutex
	send := func(event string, data interface{}) {
		writeMu.Lock()
		defer writeMu.Unlock()
		sendSSEEvent(w, flusher, event, data)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-heartbeat.C:
				send("heartbeat", &model.HeartbeatEvent{Timestamp: time.Now()})
			}
		}
	}()

	resp, err := h.chatService.SendStream(ctx, userID, &req, func(event model.TurnEvent) {
		select {
		case <-ctx.Done():
			return
		default:
		}
		send(string(event.Type), event)
	})
	if err != nil {
		send("error", &model.ErrorEvent{
			Code:    "turn_error",
			Message: err.Error(),
		})
		return
	}

	send("done", map[string]any{
		"thread_id": resp.ThreadID,
		"intent":    resp.Intent,
	})
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
