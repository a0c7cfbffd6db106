// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// TurnsTotal tracks completed agent turns.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_turns_total",
			Help: "Total agent turns processed",
		},
		[]string{"intent", "status"},
	)

	// TurnDuration tracks end-to-end turn duration.
	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_turn_duration_seconds",
			Help:    "Agent turn duration in seconds",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"intent"},
	)

	// IntentClassifications tracks classifier outcomes.
	IntentClassifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_intent_classifications_total",
			Help: "Total intent classifications by resolved intent",
		},
		[]string{"intent"},
	)

	// ClassifierFallbacks tracks classifications that fell back to general.
	ClassifierFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_classifier_fallbacks_total",
			Help: "Classifications that fell back to the general intent",
		},
	)

	// ToolExecutionsTotal tracks tool invocations.
	ToolExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_tool_executions_total",
			Help: "Total tool executions",
		},
		[]string{"tool", "status"},
	)

	// ToolExecutionDuration tracks tool execution duration.
	ToolExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agent_tool_execution_duration_seconds",
			Help:    "Tool execution duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10, 20},
		},
		[]string{"tool"},
	)

	// LLMCallDuration tracks LLM call duration.
	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_call_duration_seconds",
			Help:    "LLM call duration in seconds",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60, 90},
		},
		[]string{"model", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// ThreadsTotal tracks threads created.
	ThreadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threads_total",
			Help: "Total conversation threads created",
		},
	)

	// MessagesTotal tracks messages appended.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total messages appended",
		},
		[]string{"role"},
	)

	// ItinerariesSavedTotal tracks saved itineraries.
	ItinerariesSavedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "itineraries_saved_total",
			Help: "Total itineraries saved via the persistence tool",
		},
		[]string{"status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordTurn records metrics for a completed agent turn.
func RecordTurn(intent, status string, duration float64) {
	TurnsTotal.WithLabelValues(intent, status).Inc()
	TurnDuration.WithLabelValues(intent).Observe(duration)
}

// RecordLLMCall records metrics for one LLM invocation.
func RecordLLMCall(model, status string, duration float64, tokensIn, tokensOut int) {
	LLMCallDuration.WithLabelValues(model, status).Observe(duration)
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}

// RecordToolExecution records metrics for one tool execution.
func RecordToolExecution(tool, status string, duration float64) {
	ToolExecutionsTotal.WithLabelValues(tool, status).Inc()
	ToolExecutionDuration.WithLabelValues(tool).Observe(duration)
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
