package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"streakpeaked-service/internal/domain"
)

func TestChatHistoryRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	h := NewChatHistory(newClient(mr), 50, time.Hour)
	ctx := context.Background()

	for i, text := range []string{"one", "two", "three"} {
		msg := domain.ChatMessage{
			ID:        string(rune('a' + i)),
			Room:      "general",
			UserID:    "u1",
			Sender:    "Alice",
			Text:      text,
			Timestamp: time.Now().UTC(),
		}
		if err := h.Append(ctx, msg); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	msgs, err := h.Recent(ctx, "general", 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Text != "two" || msgs[1].Text != "three" {
		t.Fatalf("expected last two messages oldest first, got %+v", msgs)
	}
}

func TestChatHistoryCapsPerRoom(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	h := NewChatHistory(newClient(mr), 2, 0)
	ctx := context.Background()
	for _, text := range []string{"one", "two", "three"} {
		if err := h.Append(ctx, domain.ChatMessage{Room: "general", Text: text}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	msgs, err := h.Recent(ctx, "general", 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Text != "two" {
		t.Fatalf("expected capped history, got %+v", msgs)
	}
}
