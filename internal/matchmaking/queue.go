package matchmaking

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"streakpeaked-service/internal/domain"
)

// Queue pairs players waiting for a timed compete mode. Pairing is FIFO per
// mode and entirely independent of the quiz engine.
type Queue interface {
	// TryMatch pairs the player with the longest-waiting opponent in the
	// mode, or enqueues them when nobody is waiting (matched=false). A
	// player already waiting gets domain.ErrAlreadyQueued; a player never
	// matches themselves.
	TryMatch(ctx context.Context, playerID, mode string) (domain.Match, bool, error)
	// Leave removes a waiting player from the mode's queue.
	Leave(ctx context.Context, playerID, mode string) error
	// Match returns a previously created match by ID.
	Match(ctx context.Context, matchID string) (domain.Match, bool, error)
}

// NewMatch builds an active match between two players.
func NewMatch(a, b, mode string, now time.Time) domain.Match {
	return domain.Match{
		ID:        uuid.NewString(),
		Players:   [2]string{a, b},
		Mode:      mode,
		StartedAt: now,
		Status:    "active",
	}
}

// MemoryQueue is the in-process Queue used when redis is not configured.
type MemoryQueue struct {
	clock func() time.Time

	mu      sync.Mutex
	waiting map[string][]string // mode -> FIFO of player IDs
	matches map[string]domain.Match
}

func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{
		clock:   time.Now,
		waiting: make(map[string][]string),
		matches: make(map[string]domain.Match),
	}
}

func (q *MemoryQueue) TryMatch(_ context.Context, playerID, mode string) (domain.Match, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	queue := q.waiting[mode]
	for _, waiting := range queue {
		if waiting == playerID {
			return domain.Match{}, false, domain.ErrAlreadyQueued
		}
	}

	if len(queue) == 0 {
		q.waiting[mode] = append(queue, playerID)
		return domain.Match{}, false, nil
	}

	opponent := queue[0]
	q.waiting[mode] = queue[1:]
	match := NewMatch(opponent, playerID, mode, q.clock())
	q.matches[match.ID] = match
	return match, true, nil
}

func (q *MemoryQueue) Leave(_ context.Context, playerID, mode string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	queue := q.waiting[mode]
	for i, waiting := range queue {
		if waiting == playerID {
			q.waiting[mode] = append(queue[:i], queue[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotQueued
}

func (q *MemoryQueue) Match(_ context.Context, matchID string) (domain.Match, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	match, ok := q.matches[matchID]
	return match, ok, nil
}
