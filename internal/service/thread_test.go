package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vietvoyage/trip-agent/internal/model"
	"github.com/vietvoyage/trip-agent/internal/service"
	"github.com/vietvoyage/trip-agent/internal/store"
	"github.com/vietvoyage/trip-agent/pkg/logger"
)

func TestCreateThreadAssignsDistinctIDs(t *testing.T) {
	ctx := context.Background()
	svc := service.NewThreadService(store.NewMemoryThreadStore(), logger.NewNop())

	a, err := svc.Create(ctx, "u1", "chuyến đi 1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	b, err := svc.Create(ctx, "u1", "chuyến đi 2")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("thread ids not distinct: %q vs %q", a.ID, b.ID)
	}
}

func TestDeleteThenGetReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := service.NewThreadService(store.NewMemoryThreadStore(), logger.NewNop())

	thread, err := svc.Create(ctx, "u1", "to delete")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Delete(ctx, "u1", thread.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, "u1", thread.ID); !errors.Is(err, store.ErrThreadNotFound) {
		t.Fatalf("Get after delete: got %v, want ErrThreadNotFound", err)
	}
}

func TestListThreadsPagination(t *testing.T) {
	ctx := context.Background()
	svc := service.NewThreadService(store.NewMemoryThreadStore(), logger.NewNop())

	for i := 0; i < 5; i++ {
		if _, err := svc.Create(ctx, "u1", "chuyến đi"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	page, err := svc.List(ctx, "u1", 2, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 5 || len(page.Threads) != 2 || !page.HasMore {
		t.Fatalf("first page wrong: total=%d len=%d hasMore=%v", page.Total, len(page.Threads), page.HasMore)
	}

	last, err := svc.List(ctx, "u1", 2, 4)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(last.Threads) != 1 || last.HasMore {
		t.Fatalf("last page wrong: len=%d hasMore=%v", len(last.Threads), last.HasMore)
	}
}

func TestMessagesCapsLimit(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryThreadStore()
	svc := service.NewThreadService(s, logger.NewNop())

	thread, err := svc.Create(ctx, "u1", "dài")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for i := 0; i < 120; i++ {
		msg := model.Message{ThreadID: thread.ID, UserID: "u1", Role: model.RoleUser, Content: "tin nhắn"}
		if _, err := s.AppendMessage(ctx, &msg); err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	page, err := svc.Messages(ctx, "u1", thread.ID, 0, 500)
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(page.Messages) != 100 {
		t.Fatalf("limit not capped at 100: got %d", len(page.Messages))
	}
	if !page.HasMore || page.LastSequence != 100 {
		t.Fatalf("pagination cursor wrong: hasMore=%v lastSeq=%d", page.HasMore, page.LastSequence)
	}

	rest, err := svc.Messages(ctx, "u1", thread.ID, page.LastSequence, 100)
	if err != nil {
		t.Fatalf("Messages failed: %v", err)
	}
	if len(rest.Messages) != 20 || rest.Messages[0].Sequence != 101 {
		t.Fatalf("cursor continuation wrong: len=%d first=%d", len(rest.Messages), rest.Messages[0].Sequence)
	}
}
