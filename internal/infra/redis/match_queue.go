package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"streakpeaked-service/internal/domain"
	"streakpeaked-service/internal/matchmaking"
)

// MatchQueue is a redis-backed matchmaking queue: one FIFO list per mode
// (mm:queue:{mode}) plus a JSON match record per pairing with TTL.
type MatchQueue struct {
	client *redis.Client
	ttl    time.Duration
	clock  func() time.Time
}

func NewMatchQueue(client *redis.Client, ttl time.Duration) *MatchQueue {
	return &MatchQueue{client: client, ttl: ttl, clock: time.Now}
}

func (q *MatchQueue) TryMatch(ctx context.Context, playerID, mode string) (domain.Match, bool, error) {
	queueKey := q.queueKey(mode)

	// Queues are a handful of entries; a scan keeps the no-double-queue
	// invariant without a script.
	waiting, err := q.client.LRange(ctx, queueKey, 0, -1).Result()
	if err != nil {
		return domain.Match{}, false, fmt.Errorf("scan queue: %w", err)
	}
	for _, uid := range waiting {
		if uid == playerID {
			return domain.Match{}, false, domain.ErrAlreadyQueued
		}
	}

	opponent, err := q.client.LPop(ctx, queueKey).Result()
	if err == redis.Nil {
		if err := q.client.RPush(ctx, queueKey, playerID).Err(); err != nil {
			return domain.Match{}, false, fmt.Errorf("enqueue: %w", err)
		}
		return domain.Match{}, false, nil
	}
	if err != nil {
		return domain.Match{}, false, fmt.Errorf("pop queue: %w", err)
	}

	match := matchmaking.NewMatch(opponent, playerID, mode, q.clock())
	data, err := json.Marshal(match)
	if err != nil {
		return domain.Match{}, false, fmt.Errorf("marshal match: %w", err)
	}
	if err := q.client.Set(ctx, q.matchKey(match.ID), data, q.ttl).Err(); err != nil {
		return domain.Match{}, false, fmt.Errorf("store match: %w", err)
	}
	return match, true, nil
}

func (q *MatchQueue) Leave(ctx context.Context, playerID, mode string) error {
	removed, err := q.client.LRem(ctx, q.queueKey(mode), 0, playerID).Result()
	if err != nil {
		return fmt.Errorf("leave queue: %w", err)
	}
	if removed == 0 {
		return domain.ErrNotQueued
	}
	return nil
}

func (q *MatchQueue) Match(ctx context.Context, matchID string) (domain.Match, bool, error) {
	data, err := q.client.Get(ctx, q.matchKey(matchID)).Bytes()
	if err == redis.Nil {
		return domain.Match{}, false, nil
	}
	if err != nil {
		return domain.Match{}, false, fmt.Errorf("load match: %w", err)
	}
	var match domain.Match
	if err := json.Unmarshal(data, &match); err != nil {
		return domain.Match{}, false, fmt.Errorf("unmarshal match: %w", err)
	}
	return match, true, nil
}

func (q *MatchQueue) queueKey(mode string) string {
	return "mm:queue:" + mode
}

func (q *MatchQueue) matchKey(matchID string) string {
	return "mm:match:" + matchID
}
