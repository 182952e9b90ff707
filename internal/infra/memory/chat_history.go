package memory

import (
	"context"
	"sync"

	"streakpeaked-service/internal/domain"
)

// ChatHistory is a capped in-memory message log per room.
type ChatHistory struct {
	cap int

	mu     sync.RWMutex
	byRoom map[string][]domain.ChatMessage
}

func NewChatHistory(capacity int) *ChatHistory {
	if capacity <= 0 {
		capacity = 100
	}
	return &ChatHistory{
		cap:    capacity,
		byRoom: make(map[string][]domain.ChatMessage),
	}
}

func (h *ChatHistory) Append(_ context.Context, msg domain.ChatMessage) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	msgs := append(h.byRoom[msg.Room], msg)
	if len(msgs) > h.cap {
		msgs = msgs[len(msgs)-h.cap:]
	}
	h.byRoom[msg.Room] = msgs
	return nil
}

func (h *ChatHistory) Recent(_ context.Context, room string, limit int) ([]domain.ChatMessage, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msgs := h.byRoom[room]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}
