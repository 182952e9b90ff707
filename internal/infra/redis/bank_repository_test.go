package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"streakpeaked-service/internal/domain"
	"streakpeaked-service/internal/infra/memory"
)

func TestBankRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)

	loader := &countingLoader{
		BankLoader: memory.NewStaticBankLoader(map[string][]domain.Question{
			"ssc-cgl": sampleBank(),
		}),
	}
	repo := NewBankRepository(client, loader, time.Minute)

	bank, err := repo.GetBank(context.Background(), "ssc-cgl")
	if err != nil {
		t.Fatalf("get bank: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if len(bank) != 1 || bank[0].ID != "q1" {
		t.Fatalf("expected image question dropped, got %+v", bank)
	}
	if !mr.Exists("bank:ssc-cgl") {
		t.Fatalf("expected bank cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetBank(context.Background(), "ssc-cgl")
	if err != nil {
		t.Fatalf("get bank 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(cached) != 1 || cached[0].Question != bank[0].Question {
		t.Fatalf("cached bank differs: %+v", cached)
	}
}

func TestBankRepositoryUnknownExam(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewBankRepository(newClient(mr), memory.NewStaticBankLoader(nil), time.Minute)
	if _, err := repo.GetBank(context.Background(), "upsc"); err != domain.ErrBankNotFound {
		t.Fatalf("expected ErrBankNotFound, got %v", err)
	}
}

type countingLoader struct {
	memory.BankLoader
	calls int
}

func (l *countingLoader) LoadBank(ctx context.Context, exam string) ([]domain.Question, error) {
	l.calls++
	return l.BankLoader.LoadBank(ctx, exam)
}

func sampleBank() []domain.Question {
	return []domain.Question{
		{
			ID:       "q1",
			Section:  domain.SectionMaths,
			Level:    domain.LevelEasy,
			Question: "What is 2 + 2?",
			Options:  []string{"3", "4", "5", "6"},
			Answer:   "B",
		},
		{
			ID:      "q2",
			Section: domain.SectionGK,
			Level:   domain.LevelEasy,
			Options: []string{"a", "b"},
			Answer:  "A",
			Image:   "diagram.png",
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
