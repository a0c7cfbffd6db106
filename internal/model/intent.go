package model

import "fmt"

// Intent is the closed-set classification of what a user message is asking
// for. It drives which system prompt the generator runs with.
type Intent string

const (
	IntentGeneral           Intent = "general"
	IntentSearch            Intent = "search"
	IntentGreeting          Intent = "greeting"
	IntentAccommodation     Intent = "accommodation"
	IntentDestination       Intent = "destination"
	IntentTransportation    Intent = "transportation"
	IntentActivities        Intent = "activities"
	IntentGenerateItinerary Intent = "generate_itinerary"
	IntentSaveItinerary     Intent = "save_itinerary"
)

var intents = []Intent{
	IntentGeneral,
	IntentSearch,
	IntentGreeting,
	IntentAccommodation,
	IntentDestination,
	IntentTransportation,
	IntentActivities,
	IntentGenerateItinerary,
	IntentSaveItinerary,
}

// Intents returns all values of the enumeration, in a stable order.
func Intents() []Intent {
	out := make([]Intent, len(intents))
	copy(out, intents)
	return out
}

// ParseIntent maps a raw label onto the enumeration. Out-of-enum labels are
// rejected; callers must remap rejected labels to IntentGeneral.
func ParseIntent(s string) (Intent, error) {
	for _, it := range intents {
		if string(it) == s {
			return it, nil
		}
	}
	return "", fmt.Errorf("unknown intent %q", s)
}
