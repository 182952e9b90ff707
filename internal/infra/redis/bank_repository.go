package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"streakpeaked-service/internal/domain"
)

// BankLoader fetches a question bank from a backing store (e.g., postgres).
type BankLoader interface {
	LoadBank(ctx context.Context, exam string) ([]domain.Question, error)
}

// BankRepository caches full question banks in Redis as JSON blobs
// (SET bank:{exam}) and falls back to a loader on cache miss. The engine
// needs complete question content for shuffling and display, so the whole
// bank is cached rather than just answer keys.
type BankRepository struct {
	client *redis.Client
	loader BankLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewBankRepository(client *redis.Client, loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, exam string) ([]domain.Question, error) {
	key := r.bankKey(exam)

	if cached, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var questions []domain.Question
		if err := json.Unmarshal(cached, &questions); err == nil {
			return questions, nil
		}
		// Corrupt cache entry: fall through to a fresh load.
	}

	result, err, _ := r.sf.Do(exam, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if cached, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var questions []domain.Question
			if err := json.Unmarshal(cached, &questions); err == nil {
				return questions, nil
			}
		}

		questions, err := r.loader.LoadBank(ctx, exam)
		if err != nil {
			return nil, err
		}
		questions = playableOnly(questions)

		data, err := json.Marshal(questions)
		if err != nil {
			return nil, fmt.Errorf("marshal bank: %w", err)
		}
		if err := r.client.Set(ctx, key, data, r.ttlWithJitter()).Err(); err != nil {
			// Cache write failures degrade to loader hits, nothing worse.
			return questions, nil
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (r *BankRepository) bankKey(exam string) string {
	return "bank:" + exam
}

// playableOnly drops image questions; the engine serves text MCQs only.
func playableOnly(questions []domain.Question) []domain.Question {
	playable := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if q.Image == "" {
			playable = append(playable, q)
		}
	}
	return playable
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
