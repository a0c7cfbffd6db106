package model

import (
	"time"
)

// Activity is one block of an itinerary day.
type Activity struct {
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
}

// ItineraryDay holds the morning/afternoon/evening blocks for one day.
type ItineraryDay struct {
	Day       int      `json:"day"`
	Morning   Activity `json:"morning"`
	Afternoon Activity `json:"afternoon"`
	Evening   Activity `json:"evening"`
}

// Itinerary is the persisted side effect of the save-itinerary tool. The day
// list is written wholesale on creation and never partially edited.
type Itinerary struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Destination  string         `json:"destination"`
	DurationDays int            `json:"duration_days"`
	Days         []ItineraryDay `json:"days"`
	CreatedAt    time.Time      `json:"created_at"`
}

// ListItinerariesResponse is the response for listing saved itineraries.
type ListItinerariesResponse struct {
	Itineraries []Itinerary `json:"itineraries"`
	Total       int         `json:"total"`
}
