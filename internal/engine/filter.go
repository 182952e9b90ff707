package engine

import (
	"math/rand"
	"time"

	"streakpeaked-service/internal/domain"
)

// ActiveList filters the bank down to the questions matching f and returns
// them in a fresh uniformly shuffled order. A nil rng gets a time-seeded one;
// tests pass a seeded rng for deterministic order.
func ActiveList(bank []domain.Question, f domain.Filter, rng *rand.Rand) []domain.Question {
	active := make([]domain.Question, 0, len(bank))
	for _, q := range bank {
		if f.Matches(q) {
			active = append(active, q)
		}
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	rng.Shuffle(len(active), func(i, j int) {
		active[i], active[j] = active[j], active[i]
	})
	return active
}
