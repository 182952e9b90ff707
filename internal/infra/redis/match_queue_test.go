package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"streakpeaked-service/internal/domain"
)

func TestMatchQueuePairsFIFO(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	q := NewMatchQueue(newClient(mr), time.Minute)
	ctx := context.Background()

	_, matched, err := q.TryMatch(ctx, "u1", "compete-60")
	if err != nil || matched {
		t.Fatalf("expected u1 to wait, got matched=%v err=%v", matched, err)
	}

	match, matched, err := q.TryMatch(ctx, "u2", "compete-60")
	if err != nil || !matched {
		t.Fatalf("expected u2 matched, got matched=%v err=%v", matched, err)
	}
	if match.Players != [2]string{"u1", "u2"} {
		t.Fatalf("unexpected pairing: %+v", match.Players)
	}

	stored, ok, err := q.Match(ctx, match.ID)
	if err != nil || !ok || stored.Mode != "compete-60" {
		t.Fatalf("expected stored match, got ok=%v err=%v %+v", ok, err, stored)
	}

	// Queue drained: next joiner waits again.
	_, matched, err = q.TryMatch(ctx, "u3", "compete-60")
	if err != nil || matched {
		t.Fatalf("expected u3 to wait, got matched=%v err=%v", matched, err)
	}
}

func TestMatchQueueRejectsDoubleJoin(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	q := NewMatchQueue(newClient(mr), time.Minute)
	ctx := context.Background()

	q.TryMatch(ctx, "u1", "compete-60")
	if _, _, err := q.TryMatch(ctx, "u1", "compete-60"); err != domain.ErrAlreadyQueued {
		t.Fatalf("expected ErrAlreadyQueued, got %v", err)
	}
}

func TestMatchQueueLeave(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	q := NewMatchQueue(newClient(mr), time.Minute)
	ctx := context.Background()

	q.TryMatch(ctx, "u1", "compete-60")
	if err := q.Leave(ctx, "u1", "compete-60"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if err := q.Leave(ctx, "u1", "compete-60"); err != domain.ErrNotQueued {
		t.Fatalf("expected ErrNotQueued, got %v", err)
	}
}

func TestMatchLookupMissing(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	q := NewMatchQueue(newClient(mr), time.Minute)
	if _, ok, err := q.Match(context.Background(), "nope"); ok || err != nil {
		t.Fatalf("expected missing match, got ok=%v err=%v", ok, err)
	}
}
