package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"streakpeaked-service/internal/domain"
)

// ScoreStore persists terminal score records as JSONB rows.
type ScoreStore struct {
	pool *pgxpool.Pool
}

func NewScoreStore(pool *pgxpool.Pool) *ScoreStore {
	return &ScoreStore{pool: pool}
}

func (s *ScoreStore) Submit(ctx context.Context, rec domain.ScoreRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal score: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO scores (user_id, exam, data, created_at) VALUES ($1, $2, $3, $4)`,
		rec.UserID, rec.Exam, data, rec.Timestamp)
	if err != nil {
		return fmt.Errorf("insert score: %w", err)
	}
	return nil
}

func (s *ScoreStore) ListByUser(ctx context.Context, userID, exam string) ([]domain.ScoreRecord, error) {
	query := `SELECT data FROM scores WHERE user_id=$1 ORDER BY created_at DESC`
	args := []interface{}{userID}
	if exam != "" {
		query = `SELECT data FROM scores WHERE user_id=$1 AND exam=$2 ORDER BY created_at DESC`
		args = append(args, exam)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var records []domain.ScoreRecord
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		var rec domain.ScoreRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal score: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
