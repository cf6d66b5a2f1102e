package warnings

import (
	"context"
	"sync"
	"testing"

	"mmbot/internal/storage"

	"go.uber.org/zap"
)

func newTestLadder(t *testing.T) *Ladder {
	t.Helper()
	store, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewLadder(store, zap.NewNop())
}

func TestLadderEscalationOrder(t *testing.T) {
	ladder := newTestLadder(t)
	ctx := context.Background()

	expected := []Action{ActionNotify, ActionTimeout, ActionBan}
	for i, want := range expected {
		count, action, err := ladder.Warn(ctx, "g1", "u1", "rule violation", "m1")
		if err != nil {
			t.Fatalf("warn %d: %v", i+1, err)
		}
		if count != i+1 {
			t.Fatalf("expected count %d, got %d", i+1, count)
		}
		if action != want {
			t.Fatalf("warn %d: expected %s, got %s", i+1, want, action)
		}
	}

	// a 4th warning stays at the ban tier
	count, action, err := ladder.Warn(ctx, "g1", "u1", "again", "m1")
	if err != nil {
		t.Fatalf("warn 4: %v", err)
	}
	if count != 4 || action != ActionBan {
		t.Fatalf("expected count 4 ban, got %d %s", count, action)
	}
}

func TestLadderConcurrentWarnsLoseNoUpdates(t *testing.T) {
	ladder := newTestLadder(t)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := ladder.Warn(ctx, "g1", "u1", "spam", "m1"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("warn: %v", err)
	}

	record, err := ladder.Record(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if record.Count != workers {
		t.Fatalf("lost updates: expected %d, got %d", workers, record.Count)
	}
	if record.Count != len(record.History) {
		t.Fatalf("count/history mismatch: %d vs %d", record.Count, len(record.History))
	}
}

func TestForCountMapping(t *testing.T) {
	cases := map[int]Action{0: ActionNone, 1: ActionNotify, 2: ActionTimeout, 3: ActionBan, 7: ActionBan}
	for count, want := range cases {
		if got := ForCount(count); got != want {
			t.Fatalf("count %d: expected %s, got %s", count, want, got)
		}
	}
}
