package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"streakpeaked-service/internal/domain"
)

// ChatHistory keeps a capped per-room message log (RPUSH chat:history:{room})
// so late joiners receive a backlog.
type ChatHistory struct {
	client *redis.Client
	cap    int64
	ttl    time.Duration
}

func NewChatHistory(client *redis.Client, capacity int, ttl time.Duration) *ChatHistory {
	if capacity <= 0 {
		capacity = 100
	}
	return &ChatHistory{client: client, cap: int64(capacity), ttl: ttl}
}

func (h *ChatHistory) Append(ctx context.Context, msg domain.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	key := h.key(msg.Room)
	pipe := h.client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -h.cap, -1)
	if h.ttl > 0 {
		pipe.Expire(ctx, key, h.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (h *ChatHistory) Recent(ctx context.Context, room string, limit int) ([]domain.ChatMessage, error) {
	start := -h.cap
	if limit > 0 && int64(limit) < h.cap {
		start = -int64(limit)
	}
	raw, err := h.client.LRange(ctx, h.key(room), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	msgs := make([]domain.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (h *ChatHistory) key(room string) string {
	return "chat:history:" + room
}
