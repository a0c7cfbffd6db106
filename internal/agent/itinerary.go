package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vietvoyage/trip-agent/internal/model"
	"github.com/vietvoyage/trip-agent/internal/store"
	"github.com/vietvoyage/trip-agent/pkg/metrics"
)

// SaveItineraryTool persists a day-by-day itinerary for the calling user.
// The generator gates invocation on explicit save language in the user
// message; the tool itself only validates and writes.
type SaveItineraryTool struct {
	store store.ItineraryStore
	now   func() time.Time
}

// NewSaveItineraryTool creates the save_itinerary tool.
func NewSaveItineraryTool(itineraries store.ItineraryStore) *SaveItineraryTool {
	return &SaveItineraryTool{
		store: itineraries,
		now:   time.Now,
	}
}

func (t *SaveItineraryTool) Name() string {
	return "save_itinerary"
}

func (t *SaveItineraryTool) Description() string {
	return "Save a finished day-by-day itinerary for the user. Only call this when the user " +
		"explicitly asked to save the itinerary."
}

func (t *SaveItineraryTool) Schema() *Schema {
	activity := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{"type": "string"},
			"cost":        map[string]any{"type": "number", "description": "Estimated cost in VND"},
		},
		"required": []string{"description"},
	}
	return &Schema{
		Type: "object",
		Properties: map[string]any{
			"destination": map[string]any{
				"type":        "string",
				"description": "Trip destination, e.g. \"Huế\"",
			},
			"duration": map[string]any{
				"type":        "integer",
				"description": "Trip length in days",
			},
			"days": map[string]any{
				"type":        "array",
				"description": "One entry per day with morning/afternoon/evening blocks",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"day":       map[string]any{"type": "integer"},
						"morning":   activity,
						"afternoon": activity,
						"evening":   activity,
					},
				},
			},
		},
		Required: []string{"destination", "duration", "days"},
	}
}

// Execute validates the arguments against the itinerary shape and inserts.
// Store failures come back as failure-flagged results so the generator can
// explain them, never as an error out of the executor.
func (t *SaveItineraryTool) Execute(ctx context.Context, tctx ToolContext, args map[string]any) Result {
	if tctx.UserID == "" {
		return Result{Content: "save_itinerary: missing user identity", IsError: true}
	}

	destination, _ := args["destination"].(string)
	if strings.TrimSpace(destination) == "" {
		return Result{Content: "save_itinerary: destination must not be empty", IsError: true}
	}

	duration := intArg(args["duration"])
	if duration <= 0 {
		return Result{Content: "save_itinerary: duration must be a positive number of days", IsError: true}
	}

	days := parseDays(args["days"])
	if len(days) == 0 {
		return Result{Content: "save_itinerary: days must contain at least one day entry", IsError: true}
	}

	it := &model.Itinerary{
		ID:           uuid.Must(uuid.NewV7()).String(),
		UserID:       tctx.UserID,
		Destination:  destination,
		DurationDays: duration,
		Days:         days,
		CreatedAt:    t.now(),
	}

	if err := t.store.Insert(ctx, it); err != nil {
		metrics.ItinerariesSavedTotal.WithLabelValues("error").Inc()
		return Result{
			Content: fmt.Sprintf("Không thể lưu lịch trình cho %s: %v", destination, err),
			IsError: true,
		}
	}

	metrics.ItinerariesSavedTotal.WithLabelValues("success").Inc()
	return Result{Content: fmt.Sprintf("Lịch trình cho %s đã được thêm thành công.", destination)}
}

func parseDays(raw any) []model.ItineraryDay {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}

	var days []model.ItineraryDay
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}

		day := model.ItineraryDay{
			Day:       intArg(obj["day"]),
			Morning:   parseActivity(obj["morning"]),
			Afternoon: parseActivity(obj["afternoon"]),
			Evening:   parseActivity(obj["evening"]),
		}
		if day.Day == 0 {
			day.Day = i + 1
		}
		days = append(days, day)
	}
	return days
}

func parseActivity(raw any) model.Activity {
	obj, ok := raw.(map[string]any)
	if !ok {
		return model.Activity{}
	}
	desc, _ := obj["description"].(string)
	return model.Activity{
		Description: desc,
		Cost:        floatArg(obj["cost"]),
	}
}

func intArg(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func floatArg(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}
