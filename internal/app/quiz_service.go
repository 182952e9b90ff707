package app

import (
	"context"
	"log"
	"time"

	"streakpeaked-service/internal/chat"
	"streakpeaked-service/internal/domain"
	"streakpeaked-service/internal/engine"
	"streakpeaked-service/internal/matchmaking"
)

// QuestionRepository loads question banks (from cache/backing store).
type QuestionRepository interface {
	GetBank(ctx context.Context, exam string) ([]domain.Question, error)
}

// ScoreSink receives one score record per terminal session.
type ScoreSink interface {
	Submit(ctx context.Context, rec domain.ScoreRecord) error
}

// ScoreHistory reads back persisted records for the performance tracker.
type ScoreHistory interface {
	ListByUser(ctx context.Context, userID, exam string) ([]domain.ScoreRecord, error)
}

// SessionStore tracks the live engine session per user.
type SessionStore interface {
	Put(userID string, session *engine.Session)
	Get(userID string) (*engine.Session, bool)
	// Release removes the entry only while it still holds session, so a
	// stale owner cannot evict a replacement.
	Release(userID string, session *engine.Session)
}

// QuizService contains the service use cases: streak-quiz sessions, score
// history, live chat, and matchmaking.
type QuizService struct {
	banks       QuestionRepository
	sink        ScoreSink
	history     ScoreHistory
	sessions    SessionStore
	hub         *chat.Hub
	matches     matchmaking.Queue
	settleDelay time.Duration
}

func NewQuizService(
	banks QuestionRepository,
	sink ScoreSink,
	history ScoreHistory,
	sessions SessionStore,
	hub *chat.Hub,
	matches matchmaking.Queue,
	settleDelay time.Duration,
) *QuizService {
	return &QuizService{
		banks:       banks,
		sink:        sink,
		history:     history,
		sessions:    sessions,
		hub:         hub,
		matches:     matches,
		settleDelay: settleDelay,
	}
}

// StartSession loads the exam's bank and creates a fresh engine session for
// the user, replacing any previous one. The caller's OnTerminal hook is
// preserved; score persistence is attached in front of it, fire-and-forget,
// so the engine never waits on the sink.
func (s *QuizService) StartSession(ctx context.Context, userID, exam string, f domain.Filter, cb engine.Callbacks) (*engine.Session, error) {
	bank, err := s.banks.GetBank(ctx, exam)
	if err != nil {
		return nil, err
	}

	wrapped := cb
	wrapped.OnTerminal = func(rec domain.ScoreRecord) {
		go s.submitScore(rec)
		if cb.OnTerminal != nil {
			cb.OnTerminal(rec)
		}
	}

	session := engine.NewSession(bank, f, engine.Config{
		UserID:      userID,
		Exam:        exam,
		SettleDelay: s.settleDelay,
	}, wrapped)
	s.sessions.Put(userID, session)
	return session, nil
}

func (s *QuizService) submitScore(rec domain.ScoreRecord) {
	if s.sink == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.sink.Submit(ctx, rec); err != nil {
		log.Printf("score submit failed for user %s: %v", rec.UserID, err)
	}
}

// Session returns the user's live session, if any.
func (s *QuizService) Session(userID string) (*engine.Session, bool) {
	return s.sessions.Get(userID)
}

// EndSession forgets the user's live session (connection closed). A second
// connection for the same user replaces the stored session, so the caller
// passes its own session and only that one is released.
func (s *QuizService) EndSession(userID string, session *engine.Session) {
	s.sessions.Release(userID, session)
}

// ScoreSummary is the performance-tracker view: full history plus the best
// streak across it.
type ScoreSummary struct {
	BestStreak int                  `json:"bestStreak"`
	Records    []domain.ScoreRecord `json:"records"`
}

// Scores lists a user's past runs, newest first, optionally narrowed to one
// exam.
func (s *QuizService) Scores(ctx context.Context, userID, exam string) (ScoreSummary, error) {
	if s.history == nil {
		return ScoreSummary{}, nil
	}
	records, err := s.history.ListByUser(ctx, userID, exam)
	if err != nil {
		return ScoreSummary{}, err
	}
	summary := ScoreSummary{Records: records}
	for _, rec := range records {
		if rec.Streak > summary.BestStreak {
			summary.BestStreak = rec.Streak
		}
	}
	return summary, nil
}

// Chat exposes the live-chat hub to the transport layer.
func (s *QuizService) Chat() *chat.Hub {
	return s.hub
}

// Matchmaking exposes the pairing queue to the transport layer.
func (s *QuizService) Matchmaking() matchmaking.Queue {
	return s.matches
}
