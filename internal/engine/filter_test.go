package engine

import (
	"math/rand"
	"testing"

	"streakpeaked-service/internal/domain"
)

func sampleBank() []domain.Question {
	bank := make([]domain.Question, 0, 12)
	for _, sec := range domain.Sections {
		for _, lvl := range domain.Levels {
			bank = append(bank, domain.Question{
				ID:       string(sec) + "-" + string(lvl),
				Section:  sec,
				Level:    lvl,
				Question: "placeholder",
				Options:  []string{"a1", "a2", "a3", "a4"},
				Answer:   "A",
			})
		}
	}
	return bank
}

func TestActiveListFiltersBothDimensions(t *testing.T) {
	bank := sampleBank()
	rng := rand.New(rand.NewSource(1))

	active := ActiveList(bank, domain.Filter{Section: "Maths", Difficulty: "Easy"}, rng)
	if len(active) != 1 {
		t.Fatalf("expected 1 question, got %d", len(active))
	}
	if active[0].Section != domain.SectionMaths || active[0].Level != domain.LevelEasy {
		t.Fatalf("wrong question selected: %+v", active[0])
	}

	active = ActiveList(bank, domain.Filter{Section: "All", Difficulty: "Hard"}, rng)
	if len(active) != 4 {
		t.Fatalf("expected 4 hard questions, got %d", len(active))
	}

	active = ActiveList(bank, domain.Filter{Section: "All", Difficulty: "All"}, rng)
	if len(active) != len(bank) {
		t.Fatalf("expected full bank, got %d", len(active))
	}
}

func TestActiveListEmptyFilterFieldsMeanAll(t *testing.T) {
	active := ActiveList(sampleBank(), domain.Filter{}, rand.New(rand.NewSource(1)))
	if len(active) != 12 {
		t.Fatalf("expected zero-value filter to match everything, got %d", len(active))
	}
}

func TestActiveListEmptyResult(t *testing.T) {
	bank := sampleBank()
	active := ActiveList(bank, domain.Filter{Section: "Physics"}, rand.New(rand.NewSource(1)))
	if len(active) != 0 {
		t.Fatalf("expected no matches, got %d", len(active))
	}
}

func TestActiveListShuffleIsSeeded(t *testing.T) {
	bank := sampleBank()
	a := ActiveList(bank, domain.Filter{}, rand.New(rand.NewSource(42)))
	b := ActiveList(bank, domain.Filter{}, rand.New(rand.NewSource(42)))
	for i := range a {
		if a[i].ID != b[i].ID {
			t.Fatalf("same seed produced different orders at %d: %s vs %s", i, a[i].ID, b[i].ID)
		}
	}
	if len(a) != len(bank) {
		t.Fatalf("shuffle changed length: %d", len(a))
	}
	// The original order must be untouched.
	if bank[0].ID != "GK-Easy" {
		t.Fatalf("input bank mutated: %s", bank[0].ID)
	}
}
