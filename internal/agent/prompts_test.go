package agent_test

import (
	"strings"
	"testing"

	"github.com/vietvoyage/trip-agent/internal/agent"
	"github.com/vietvoyage/trip-agent/internal/model"
)

func TestSystemPromptCoversEveryIntent(t *testing.T) {
	seen := make(map[string]model.Intent)
	for _, intent := range model.Intents() {
		prompt := agent.SystemPrompt(intent)
		if prompt == "" {
			t.Fatalf("intent %q has no system prompt", intent)
		}
		if prior, dup := seen[prompt]; dup {
			t.Fatalf("intents %q and %q share a system prompt", prior, intent)
		}
		seen[prompt] = intent
	}
}

func TestSystemPromptUnknownIntentFallsBackToGeneral(t *testing.T) {
	if agent.SystemPrompt(model.Intent("bogus")) != agent.SystemPrompt(model.IntentGeneral) {
		t.Fatal("unknown intent must get the general prompt")
	}
}

func TestItineraryPromptsSeparateGenerationFromPersistence(t *testing.T) {
	gen := agent.SystemPrompt(model.IntentGenerateItinerary)
	save := agent.SystemPrompt(model.IntentSaveItinerary)

	// Drafting an itinerary must not trigger the persistence tool; only an
	// explicit save request does.
	if !strings.Contains(gen, "save_itinerary") || !strings.Contains(strings.ToLower(gen), "not") {
		t.Fatalf("generation prompt does not forbid the save tool:\n%s", gen)
	}
	if !strings.Contains(save, "save_itinerary") {
		t.Fatalf("save prompt does not direct the model to the save tool:\n%s", save)
	}
}
