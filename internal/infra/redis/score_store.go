package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"streakpeaked-service/internal/domain"
)

// ScoreStore keeps a capped per-user list of recent score records
// (LPUSH scores:{userID}, newest first). It serves as both the sink and the
// history source when postgres is not configured.
type ScoreStore struct {
	client *redis.Client
	cap    int64
}

func NewScoreStore(client *redis.Client, capacity int) *ScoreStore {
	if capacity <= 0 {
		capacity = 200
	}
	return &ScoreStore{client: client, cap: int64(capacity)}
}

func (s *ScoreStore) Submit(ctx context.Context, rec domain.ScoreRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	key := s.key(rec.UserID)
	pipe := s.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, s.cap-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store score: %w", err)
	}
	return nil
}

func (s *ScoreStore) ListByUser(ctx context.Context, userID, exam string) ([]domain.ScoreRecord, error) {
	raw, err := s.client.LRange(ctx, s.key(userID), 0, s.cap-1).Result()
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	records := make([]domain.ScoreRecord, 0, len(raw))
	for _, item := range raw {
		var rec domain.ScoreRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue // skip unreadable entries rather than failing the listing
		}
		if exam == "" || rec.Exam == exam {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (s *ScoreStore) key(userID string) string {
	return "scores:" + userID
}
