package botguard

import (
	"context"
	"testing"
	"time"

	"mmbot/internal/gateway/gatewaytest"
	"mmbot/internal/moderation"
	"mmbot/internal/modules/audit"

	"go.uber.org/zap"
)

func newTestModule(fake *gatewaytest.Fake) *Module {
	auditLogger := audit.NewLogger(nil, zap.NewNop())
	dispatcher := moderation.NewDispatcher(fake, auditLogger, zap.NewNop(), 30*time.Second, time.Hour, 10, 3)
	return New(2, dispatcher, zap.NewNop())
}

func TestSecondConsecutiveAutomatedMessageBans(t *testing.T) {
	fake := gatewaytest.New()
	module := newTestModule(fake)
	ctx := context.Background()

	if module.HandleAutomated(ctx, "g1", "c1", "m1", "b1") {
		t.Fatalf("first automated message must not trigger")
	}
	if !module.HandleAutomated(ctx, "g1", "c1", "m2", "b1") {
		t.Fatalf("second consecutive automated message must trigger")
	}

	if len(fake.Deleted) != 1 || fake.Deleted[0] != "m2" {
		t.Fatalf("expected triggering message deleted, got %v", fake.Deleted)
	}
	if len(fake.Bans) != 1 || fake.Bans[0].UserID != "b1" {
		t.Fatalf("expected ban of b1, got %+v", fake.Bans)
	}
	if got := module.TrackedAuthors(); got != 0 {
		t.Fatalf("counter entry must be removed after violation, got %d", got)
	}
}

func TestResetAllClearsEveryCounter(t *testing.T) {
	fake := gatewaytest.New()
	module := newTestModule(fake)
	ctx := context.Background()

	module.HandleAutomated(ctx, "g1", "c1", "m1", "b1")
	module.HandleAutomated(ctx, "g1", "c1", "m2", "b2")

	module.ResetAll()
	if got := module.TrackedAuthors(); got != 0 {
		t.Fatalf("expected no tracked authors after reset, got %d", got)
	}

	if module.HandleAutomated(ctx, "g1", "c1", "m3", "b1") {
		t.Fatalf("b1 counter was cleared, must not trigger")
	}
	if module.HandleAutomated(ctx, "g1", "c1", "m4", "b2") {
		t.Fatalf("b2 counter was cleared, must not trigger")
	}
	if len(fake.Bans) != 0 {
		t.Fatalf("no ban expected after reset, got %+v", fake.Bans)
	}
}

func TestHumanMessageResetsOnlyThatAuthor(t *testing.T) {
	fake := gatewaytest.New()
	module := newTestModule(fake)
	ctx := context.Background()

	module.HandleAutomated(ctx, "g1", "c1", "m1", "b1")
	module.HandleAutomated(ctx, "g1", "c1", "m2", "b2")

	// a human message keyed by b1's id resets only b1
	module.HandleHuman("b1")

	if module.HandleAutomated(ctx, "g1", "c1", "m3", "b1") {
		t.Fatalf("b1 counter was reset, must not trigger")
	}
	if !module.HandleAutomated(ctx, "g1", "c1", "m4", "b2") {
		t.Fatalf("b2 counter was untouched, must trigger")
	}
}
