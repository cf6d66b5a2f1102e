package antispam

import (
	"context"
	"testing"
	"time"

	"mmbot/internal/config"
	"mmbot/internal/gateway"
	"mmbot/internal/gateway/gatewaytest"
	"mmbot/internal/moderation"
	"mmbot/internal/modules/audit"

	"go.uber.org/zap"
)

func newTestModule(fake *gatewaytest.Fake) *Module {
	auditLogger := audit.NewLogger(nil, zap.NewNop())
	dispatcher := moderation.NewDispatcher(fake, auditLogger, zap.NewNop(), 30*time.Second, time.Hour, 10, 3)
	cfg := config.SpamConfig{RepeatCount: 3, WindowSeconds: 30, TimeoutMinutes: 60, HistoryFetchSize: 10}
	return New(cfg, dispatcher, zap.NewNop())
}

func TestTripleRepeatTriggersOnce(t *testing.T) {
	fake := gatewaytest.New()
	module := newTestModule(fake)
	ctx := context.Background()
	now := time.Now()

	fake.History = []gateway.Message{
		{ID: "3", ChannelID: "c1", AuthorID: "u1", Content: "hi", Timestamp: now},
		{ID: "2", ChannelID: "c1", AuthorID: "u1", Content: "hi", Timestamp: now.Add(-2 * time.Second)},
		{ID: "1", ChannelID: "c1", AuthorID: "u1", Content: "hi", Timestamp: now.Add(-4 * time.Second)},
	}

	if module.HandleMessage(ctx, "g1", "c1", "u1", "hi", now.Add(-4*time.Second)) {
		t.Fatalf("first message must not trigger")
	}
	if module.HandleMessage(ctx, "g1", "c1", "u1", "hi", now.Add(-2*time.Second)) {
		t.Fatalf("second message must not trigger")
	}
	if !module.HandleMessage(ctx, "g1", "c1", "u1", "hi", now) {
		t.Fatalf("third identical message must trigger")
	}

	if len(fake.Deleted) != 3 {
		t.Fatalf("expected 3 deletions, got %v", fake.Deleted)
	}
	if len(fake.Timeouts) != 1 {
		t.Fatalf("expected 1 timeout, got %d", len(fake.Timeouts))
	}
	if got := module.TrackedUsers(); got != 0 {
		t.Fatalf("window must be cleared after violation, %d users tracked", got)
	}

	// the next identical message starts a fresh streak
	if module.HandleMessage(ctx, "g1", "c1", "u1", "hi", now.Add(time.Second)) {
		t.Fatalf("4th message after the window was cleared must not re-trigger")
	}
}

func TestInterruptedStreakDoesNotTrigger(t *testing.T) {
	fake := gatewaytest.New()
	module := newTestModule(fake)
	ctx := context.Background()
	now := time.Now()

	module.HandleMessage(ctx, "g1", "c1", "u1", "hi", now)
	module.HandleMessage(ctx, "g1", "c1", "u1", "hi", now.Add(time.Second))
	module.HandleMessage(ctx, "g1", "c1", "u1", "something else", now.Add(2*time.Second))
	if module.HandleMessage(ctx, "g1", "c1", "u1", "hi", now.Add(3*time.Second)) {
		t.Fatalf("interrupted streak must not trigger")
	}
	if len(fake.Timeouts) != 0 {
		t.Fatalf("no punishment expected, got %d timeouts", len(fake.Timeouts))
	}
}

func TestUsersTrackedIndependently(t *testing.T) {
	fake := gatewaytest.New()
	module := newTestModule(fake)
	ctx := context.Background()
	now := time.Now()

	module.HandleMessage(ctx, "g1", "c1", "u1", "hi", now)
	module.HandleMessage(ctx, "g1", "c1", "u2", "hi", now)
	module.HandleMessage(ctx, "g1", "c1", "u1", "hi", now.Add(time.Second))
	module.HandleMessage(ctx, "g1", "c1", "u2", "hi", now.Add(time.Second))
	if module.HandleMessage(ctx, "g1", "c1", "u2", "bye", now.Add(2*time.Second)) {
		t.Fatalf("u2 streak was interrupted")
	}
	if !module.HandleMessage(ctx, "g1", "c1", "u1", "hi", now.Add(2*time.Second)) {
		t.Fatalf("u1 streak must trigger despite u2 interleaving")
	}
}

func TestResetAllDropsLiveWindows(t *testing.T) {
	fake := gatewaytest.New()
	module := newTestModule(fake)
	ctx := context.Background()
	now := time.Now()

	module.HandleMessage(ctx, "g1", "c1", "u1", "hi", now)
	module.HandleMessage(ctx, "g1", "c1", "u1", "hi", now.Add(time.Second))
	module.HandleMessage(ctx, "g1", "c1", "u2", "hi", now.Add(time.Second))

	module.ResetAll()
	if got := module.TrackedUsers(); got != 0 {
		t.Fatalf("expected no tracked users after reset, got %d", got)
	}

	// the streak restarts from scratch after a reset
	if module.HandleMessage(ctx, "g1", "c1", "u1", "hi", now.Add(2*time.Second)) {
		t.Fatalf("message after reset must not trigger")
	}
	if len(fake.Timeouts) != 0 {
		t.Fatalf("no punishment expected, got %d timeouts", len(fake.Timeouts))
	}
}

func TestPrune(t *testing.T) {
	fake := gatewaytest.New()
	module := newTestModule(fake)
	ctx := context.Background()
	now := time.Now()

	module.HandleMessage(ctx, "g1", "c1", "u1", "hi", now)
	if got := module.TrackedUsers(); got != 1 {
		t.Fatalf("expected 1 tracked user, got %d", got)
	}
	module.Prune(now.Add(5 * time.Minute))
	if got := module.TrackedUsers(); got != 0 {
		t.Fatalf("expected stale window pruned, got %d", got)
	}
}
