package model_test

import (
	"testing"

	"github.com/vietvoyage/trip-agent/internal/model"
)

func TestParseIntentRoundTrip(t *testing.T) {
	for _, it := range model.Intents() {
		parsed, err := model.ParseIntent(string(it))
		if err != nil {
			t.Fatalf("ParseIntent(%q) failed: %v", it, err)
		}
		if parsed != it {
			t.Fatalf("ParseIntent(%q) = %q", it, parsed)
		}
	}
}

func TestParseIntentRejectsUnknownLabels(t *testing.T) {
	for _, label := range []string{"", "weather", "GENERAL", "itinerary"} {
		if _, err := model.ParseIntent(label); err == nil {
			t.Fatalf("ParseIntent(%q) accepted an out-of-enum label", label)
		}
	}
}

func TestIntentsIsStableAndCopied(t *testing.T) {
	a := model.Intents()
	b := model.Intents()
	if len(a) != len(b) {
		t.Fatalf("Intents length changed between calls: %d vs %d", len(a), len(b))
	}

	a[0] = model.Intent("mutated")
	if model.Intents()[0] != b[0] {
		t.Fatal("mutating the returned slice leaked into the enumeration")
	}
}
