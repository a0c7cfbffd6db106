package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vietvoyage/trip-agent/internal/llm"
	"github.com/vietvoyage/trip-agent/internal/model"
	"github.com/vietvoyage/trip-agent/pkg/logger"
	"github.com/vietvoyage/trip-agent/pkg/metrics"
)

// vagueLabel is the classifier's escape hatch for elliptical follow-ups
// ("continue", "go ahead") that carry no intent of their own.
const vagueLabel = "vague"

// historyWindow bounds how much recent context the classifier sees.
const historyWindow = 6

// Classifier assigns exactly one Intent label to the latest user message.
type Classifier struct {
	llm     llm.Client
	model   string
	timeout time.Duration
	logger  *logger.Logger
}

// NewClassifier creates an intent classifier. model may be empty to use the
// provider default.
func NewClassifier(client llm.Client, model string, timeout time.Duration, log *logger.Logger) *Classifier {
	return &Classifier{
		llm:     client,
		model:   model,
		timeout: timeout,
		logger:  log,
	}
}

// Classify returns the intent of the latest user message. previous is the
// most recent prior classification, or empty when none exists.
//
// Out-of-enum model output is remapped to IntentGeneral. A "vague" verdict
// retains previous, defaulting to IntentGeneral when there is no previous
// intent. A failed model call returns a ClassificationError; callers must
// fall back to IntentGeneral rather than aborting the turn.
func (c *Classifier) Classify(ctx context.Context, history []model.Message, latest string, previous model.Intent) (model.Intent, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.llm.Complete(ctx, &llm.CompletionRequest{
		Model:        c.model,
		SystemPrompt: classifierSystemPrompt(),
		Messages: []llm.ChatMessage{{
			Role:    "user",
			Content: classifierUserPrompt(history, latest, previous),
		}},
		MaxTokens:   16,
		Temperature: 0,
	})
	if err != nil {
		return "", &ClassificationError{Err: err}
	}

	label := strings.ToLower(strings.TrimSpace(resp.Content))
	label = strings.Trim(label, `"'.`)

	if label == vagueLabel {
		if previous != "" {
			return previous, nil
		}
		return model.IntentGeneral, nil
	}

	intent, err := model.ParseIntent(label)
	if err != nil {
		c.logger.Warn("classifier returned out-of-enum label, using general", "label", label)
		metrics.ClassifierFallbacks.Inc()
		return model.IntentGeneral, nil
	}
	return intent, nil
}

func classifierSystemPrompt() string {
	labels := make([]string, 0, len(model.Intents())+1)
	for _, it := range model.Intents() {
		labels = append(labels, string(it))
	}
	labels = append(labels, vagueLabel)

	return "You classify travel-assistant user messages into exactly one label.\n" +
		"Answer with one label and nothing else. Valid labels: " + strings.Join(labels, ", ") + ".\n" +
		"Use \"" + vagueLabel + "\" only when the message is an elliptical continuation " +
		"(e.g. \"continue\", \"go ahead\", \"ok\") that cannot be classified on its own."
}

func classifierUserPrompt(history []model.Message, latest string, previous model.Intent) string {
	var b strings.Builder

	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	if len(recent) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, msg := range recent {
			if msg.Role == model.RoleTool || msg.Content == "" {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
		}
		b.WriteString("\n")
	}
	if previous != "" {
		fmt.Fprintf(&b, "Previous intent: %s\n\n", previous)
	}
	fmt.Fprintf(&b, "Latest user message: %s", latest)
	return b.String()
}

// LastIntent returns the most recent classified intent recorded in history,
// or empty when none exists.
func LastIntent(history []model.Message) model.Intent {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == model.RoleUser && history[i].Intent != "" {
			return history[i].Intent
		}
	}
	return ""
}
