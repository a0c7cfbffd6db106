package agent_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/vietvoyage/trip-agent/internal/agent"
	"github.com/vietvoyage/trip-agent/internal/store"
)

func hueDays() []any {
	return []any{
		map[string]any{
			"day":       float64(1),
			"morning":   map[string]any{"description": "Thăm Đại Nội", "cost": float64(200000)},
			"afternoon": map[string]any{"description": "Chùa Thiên Mụ"},
			"evening":   map[string]any{"description": "Ăn tối bên sông Hương", "cost": float64(350000)},
		},
		map[string]any{
			"morning": map[string]any{"description": "Lăng Tự Đức"},
		},
	}
}

func TestSaveItineraryPersistsAndConfirms(t *testing.T) {
	s := store.NewMemoryItineraryStore()
	tool := agent.NewSaveItineraryTool(s)

	result := tool.Execute(context.Background(), agent.ToolContext{UserID: "u1", ThreadID: "t1"}, map[string]any{
		"destination": "Huế",
		"duration":    float64(3),
		"days":        hueDays(),
	})
	if result.IsError {
		t.Fatalf("unexpected failure: %q", result.Content)
	}
	if result.Content != "Lịch trình cho Huế đã được thêm thành công." {
		t.Fatalf("confirmation message = %q", result.Content)
	}

	saved, err := s.ListByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(saved) != 1 {
		t.Fatalf("expected 1 saved itinerary, got %d", len(saved))
	}
	it := saved[0]
	if it.Destination != "Huế" || it.DurationDays != 3 || it.UserID != "u1" {
		t.Fatalf("unexpected itinerary: %+v", it)
	}
	if len(it.Days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(it.Days))
	}
	if it.Days[0].Morning.Description != "Thăm Đại Nội" || it.Days[0].Morning.Cost != 200000 {
		t.Fatalf("day 1 morning wrong: %+v", it.Days[0].Morning)
	}
	// A missing day number falls back to the list position.
	if it.Days[1].Day != 2 {
		t.Fatalf("day number not defaulted: %+v", it.Days[1])
	}
	if it.ID == "" {
		t.Fatal("itinerary must get an id")
	}
}

func TestSaveItineraryRejectsIncompleteArguments(t *testing.T) {
	tool := agent.NewSaveItineraryTool(store.NewMemoryItineraryStore())
	tctx := agent.ToolContext{UserID: "u1"}

	cases := []struct {
		name string
		args map[string]any
	}{
		{"empty destination", map[string]any{"destination": "  ", "duration": float64(3), "days": hueDays()}},
		{"zero duration", map[string]any{"destination": "Huế", "duration": float64(0), "days": hueDays()}},
		{"no days", map[string]any{"destination": "Huế", "duration": float64(3), "days": []any{}}},
		{"days not a list", map[string]any{"destination": "Huế", "duration": float64(3), "days": "monday"}},
	}
	for _, tc := range cases {
		if result := tool.Execute(context.Background(), tctx, tc.args); !result.IsError {
			t.Fatalf("%s: accepted", tc.name)
		}
	}
}

func TestSaveItineraryRequiresUserIdentity(t *testing.T) {
	tool := agent.NewSaveItineraryTool(store.NewMemoryItineraryStore())

	result := tool.Execute(context.Background(), agent.ToolContext{}, map[string]any{
		"destination": "Huế", "duration": float64(3), "days": hueDays(),
	})
	if !result.IsError {
		t.Fatal("save without user identity accepted")
	}
}

func TestSaveItineraryStoreFailureIsResult(t *testing.T) {
	s := store.NewMemoryItineraryStore()
	s.FailWith = errors.New("kv put timeout")
	tool := agent.NewSaveItineraryTool(s)

	result := tool.Execute(context.Background(), agent.ToolContext{UserID: "u1"}, map[string]any{
		"destination": "Huế", "duration": float64(3), "days": hueDays(),
	})
	if !result.IsError {
		t.Fatal("store failure must be a failure-flagged result")
	}
	if !strings.Contains(result.Content, "Không thể lưu lịch trình cho Huế") {
		t.Fatalf("failure message = %q", result.Content)
	}
	if !strings.Contains(result.Content, "kv put timeout") {
		t.Fatalf("failure message should carry the cause: %q", result.Content)
	}
}
