package memory

import (
	"context"
	"sync"

	"streakpeaked-service/internal/domain"
)

// ScoreStore keeps submitted score records in memory, newest first. It serves
// both as the demo score sink and the history source when no database is
// configured.
type ScoreStore struct {
	mu     sync.RWMutex
	byUser map[string][]domain.ScoreRecord
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{byUser: make(map[string][]domain.ScoreRecord)}
}

func (s *ScoreStore) Submit(_ context.Context, rec domain.ScoreRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[rec.UserID] = append([]domain.ScoreRecord{rec}, s.byUser[rec.UserID]...)
	return nil
}

func (s *ScoreStore) ListByUser(_ context.Context, userID, exam string) ([]domain.ScoreRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]domain.ScoreRecord, 0, len(s.byUser[userID]))
	for _, rec := range s.byUser[userID] {
		if exam == "" || rec.Exam == exam {
			records = append(records, rec)
		}
	}
	return records, nil
}
