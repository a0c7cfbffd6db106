package agent

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vietvoyage/trip-agent/internal/llm"
	"github.com/vietvoyage/trip-agent/internal/model"
	"github.com/vietvoyage/trip-agent/pkg/logger"
	"github.com/vietvoyage/trip-agent/pkg/metrics"
)

// apologyMessage is the terminal user-visible message for unrecoverable
// failures within a turn.
const apologyMessage = "Xin lỗi, đã có lỗi xảy ra khi xử lý yêu cầu của bạn. Vui lòng thử lại sau."

// turnState is one state of the per-turn machine.
type turnState int

const (
	stateClassifying turnState = iota
	stateGenerating
	stateExecutingTools
	stateTerminal
)

// EmitFunc receives stage events while a turn runs. May be nil.
type EmitFunc func(model.TurnEvent)

// TurnResult is the outcome of one complete turn. Messages holds every new
// message produced after the user message, in append order: assistant
// tool-call messages, their tool results (one per call, in request order),
// and the terminal assistant message.
type TurnResult struct {
	Intent   model.Intent
	Messages []model.Message

	// Failed is set when generation failed and the terminal message is the
	// generic apology.
	Failed bool
}

// Runner drives one conversation turn through the state machine
// Classifying -> Generating -> (ExecutingTools <-> Generating) -> Terminal.
type Runner struct {
	classifier    *Classifier
	llm           llm.Client
	registry      *Registry
	model         string
	temperature   float64
	maxTokens     int
	maxToolRounds int
	callTimeout   time.Duration
	logger        *logger.Logger
	tracer        trace.Tracer
}

// RunnerConfig holds turn-runner tuning.
type RunnerConfig struct {
	Model         string
	Temperature   float64
	MaxTokens     int
	MaxToolRounds int
	CallTimeout   time.Duration
}

// NewRunner creates a turn runner.
func NewRunner(classifier *Classifier, client llm.Client, registry *Registry, cfg RunnerConfig, log *logger.Logger) *Runner {
	if cfg.MaxToolRounds <= 0 {
		cfg.MaxToolRounds = 5
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	return &Runner{
		classifier:    classifier,
		llm:           client,
		registry:      registry,
		model:         cfg.Model,
		temperature:   cfg.Temperature,
		maxTokens:     cfg.MaxTokens,
		maxToolRounds: cfg.MaxToolRounds,
		callTimeout:   cfg.CallTimeout,
		logger:        log,
		tracer:        otel.Tracer("trip-agent/agent"),
	}
}

// TurnRequest is the input to one turn.
type TurnRequest struct {
	History []model.Message
	Content string

	// Model optionally overrides the configured generator model for this
	// turn only.
	Model string
}

// RunTurn executes one turn for the latest user message. It never returns an
// error: classification failures fall back to the general intent, tool
// failures become failure-flagged results, and generation failures terminate
// the turn with the apology message. The returned message list never
// contains a tool call without its matching result.
func (r *Runner) RunTurn(ctx context.Context, tctx ToolContext, turn TurnRequest, emit EmitFunc) TurnResult {
	start := time.Now()

	history := turn.History
	genModel := r.model
	if turn.Model != "" {
		genModel = turn.Model
	}

	ctx, span := r.tracer.Start(ctx, "agent.turn", trace.WithAttributes(
		attribute.String("thread.id", tctx.ThreadID),
	))
	defer span.End()

	log := r.logger.With("thread_id", tctx.ThreadID, "user_id", tctx.UserID)

	chat := historyToChat(history)
	chat = append(chat, llm.ChatMessage{Role: string(model.RoleUser), Content: turn.Content})

	var (
		res          TurnResult
		pendingCalls []model.ToolCall
		rounds       int
	)

	state := stateClassifying
	for state != stateTerminal {
		switch state {
		case stateClassifying:
			res.Intent = r.classify(ctx, history, turn.Content, log)
			span.SetAttributes(attribute.String("turn.intent", string(res.Intent)))
			r.emit(emit, model.TurnEvent{Type: model.TurnEventIntent, ThreadID: tctx.ThreadID, Intent: res.Intent})
			state = stateGenerating

		case stateGenerating:
			req := &llm.CompletionRequest{
				Model:        genModel,
				SystemPrompt: SystemPrompt(res.Intent),
				Messages:     chat,
				MaxTokens:    r.maxTokens,
				Temperature:  r.temperature,
			}
			// Past the round budget the model gets no tools, forcing a
			// terminal answer.
			if rounds < r.maxToolRounds {
				req.Tools = r.registry.Definitions()
			}

			resp, err := r.generate(ctx, req)
			if err != nil {
				genErr := &GenerationError{Err: err}
				log.Error("generation failed, terminating turn", "error", genErr)
				span.RecordError(genErr)

				msg := r.newAssistantMessage(tctx, apologyMessage, nil, nil)
				res.Messages = append(res.Messages, msg)
				res.Failed = true
				r.emit(emit, model.TurnEvent{Type: model.TurnEventError, ThreadID: tctx.ThreadID, Reason: "generation failed"})
				r.emit(emit, model.TurnEvent{Type: model.TurnEventMessage, ThreadID: tctx.ThreadID, Message: &msg})
				state = stateTerminal
				break
			}

			if len(resp.ToolCalls) > 0 {
				pendingCalls = toModelCalls(resp.ToolCalls)
				msg := r.newAssistantMessage(tctx, resp.Content, pendingCalls, resp)
				res.Messages = append(res.Messages, msg)
				chat = append(chat, llm.ChatMessage{
					Role:      string(model.RoleAssistant),
					Content:   resp.Content,
					ToolCalls: resp.ToolCalls,
				})
				for i := range pendingCalls {
					r.emit(emit, model.TurnEvent{Type: model.TurnEventToolCall, ThreadID: tctx.ThreadID, ToolCall: &pendingCalls[i]})
				}
				state = stateExecutingTools
				break
			}

			msg := r.newAssistantMessage(tctx, resp.Content, nil, resp)
			res.Messages = append(res.Messages, msg)
			r.emit(emit, model.TurnEvent{Type: model.TurnEventMessage, ThreadID: tctx.ThreadID, Message: &msg})
			state = stateTerminal

		case stateExecutingTools:
			rounds++
			// One result per call, in request order, before the generator
			// runs again.
			for _, call := range pendingCalls {
				toolMsg := r.executeTool(ctx, tctx, call, log)
				res.Messages = append(res.Messages, toolMsg)
				chat = append(chat, llm.ChatMessage{
					Role:       string(model.RoleTool),
					Content:    toolMsg.Content,
					ToolCallID: call.ID,
					IsError:    toolMsg.IsError,
				})
				r.emit(emit, model.TurnEvent{Type: model.TurnEventToolResult, ThreadID: tctx.ThreadID, Message: &toolMsg})
			}
			pendingCalls = nil
			state = stateGenerating
		}
	}

	status := "success"
	if res.Failed {
		status = "error"
	}
	metrics.RecordTurn(string(res.Intent), status, time.Since(start).Seconds())
	span.SetAttributes(attribute.Int("turn.tool_rounds", rounds))

	log.Info("turn completed",
		"intent", res.Intent,
		"tool_rounds", rounds,
		"new_messages", len(res.Messages),
		"status", status,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return res
}

func (r *Runner) classify(ctx context.Context, history []model.Message, latest string, log *logger.Logger) model.Intent {
	ctx, span := r.tracer.Start(ctx, "agent.classify")
	defer span.End()

	intent, err := r.classifier.Classify(ctx, history, latest, LastIntent(history))
	if err != nil {
		// Recovered locally; the conversation proceeds with the safe default.
		log.Warn("classification failed, falling back to general", "error", err)
		metrics.ClassifierFallbacks.Inc()
		intent = model.IntentGeneral
	}
	metrics.IntentClassifications.WithLabelValues(string(intent)).Inc()
	return intent
}

func (r *Runner) generate(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	ctx, span := r.tracer.Start(ctx, "agent.generate")
	defer span.End()

	if r.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
	}

	resp, err := r.llm.Complete(ctx, req)
	if err != nil {
		metrics.RecordLLMCall(req.Model, "error", 0, 0, 0)
		return nil, err
	}
	metrics.RecordLLMCall(resp.Model, "success", float64(resp.LatencyMs)/1000.0, resp.TokensIn, resp.TokensOut)
	return resp, nil
}

func (r *Runner) executeTool(ctx context.Context, tctx ToolContext, call model.ToolCall, log *logger.Logger) model.Message {
	ctx, span := r.tracer.Start(ctx, "agent.tool", trace.WithAttributes(
		attribute.String("tool.name", call.Name),
	))
	defer span.End()

	if r.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.callTimeout)
		defer cancel()
	}

	start := time.Now()
	result := r.registry.Execute(ctx, tctx, call)
	elapsed := time.Since(start)

	status := "success"
	if result.IsError {
		status = "error"
		log.Warn("tool execution failed", "tool", call.Name, "result", result.Content)
	}
	metrics.RecordToolExecution(call.Name, status, elapsed.Seconds())

	return model.Message{
		ID:         uuid.Must(uuid.NewV7()).String(),
		ThreadID:   tctx.ThreadID,
		UserID:     tctx.UserID,
		Role:       model.RoleTool,
		Content:    result.Content,
		ToolCallID: call.ID,
		ToolName:   call.Name,
		IsError:    result.IsError,
		CreatedAt:  time.Now(),
	}
}

func (r *Runner) newAssistantMessage(tctx ToolContext, content string, calls []model.ToolCall, resp *llm.CompletionResponse) model.Message {
	msg := model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		ThreadID:  tctx.ThreadID,
		UserID:    tctx.UserID,
		Role:      model.RoleAssistant,
		Content:   content,
		ToolCalls: calls,
		CreatedAt: time.Now(),
	}
	if resp != nil {
		msg.Model = &resp.Model
		msg.TokensIn = &resp.TokensIn
		msg.TokensOut = &resp.TokensOut
		msg.LatencyMs = &resp.LatencyMs
		msg.StopReason = &resp.StopReason
	}
	return msg
}

func (r *Runner) emit(emit EmitFunc, event model.TurnEvent) {
	if emit != nil {
		emit(event)
	}
}

func historyToChat(history []model.Message) []llm.ChatMessage {
	chat := make([]llm.ChatMessage, 0, len(history))
	for _, msg := range history {
		cm := llm.ChatMessage{
			Role:       string(msg.Role),
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
			IsError:    msg.IsError,
		}
		for _, call := range msg.ToolCalls {
			cm.ToolCalls = append(cm.ToolCalls, llm.ToolCallRequest{
				ID:        call.ID,
				Name:      call.Name,
				Arguments: call.Arguments,
			})
		}
		chat = append(chat, cm)
	}
	return chat
}

func toModelCalls(calls []llm.ToolCallRequest) []model.ToolCall {
	out := make([]model.ToolCall, len(calls))
	for i, call := range calls {
		out[i] = model.ToolCall{
			ID:        call.ID,
			Name:      call.Name,
			Arguments: call.Arguments,
		}
	}
	return out
}
