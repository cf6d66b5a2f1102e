package moderation

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mmbot/internal/gateway"
	"mmbot/internal/gateway/gatewaytest"
	"mmbot/internal/modules/audit"

	"go.uber.org/zap"
)

func newTestDispatcher(fake *gatewaytest.Fake) *Dispatcher {
	auditLogger := audit.NewLogger(nil, zap.NewNop())
	return NewDispatcher(fake, auditLogger, zap.NewNop(), 30*time.Second, time.Hour, 10, 3)
}

func burstHistory(now time.Time) []gateway.Message {
	// newest first, the way channel history arrives
	return []gateway.Message{
		{ID: "5", ChannelID: "c1", AuthorID: "u1", Content: "hi", Timestamp: now.Add(-1 * time.Second)},
		{ID: "4", ChannelID: "c1", AuthorID: "u1", Content: "hi", Timestamp: now.Add(-3 * time.Second)},
		{ID: "3", ChannelID: "c1", AuthorID: "u2", Content: "hi", Timestamp: now.Add(-4 * time.Second)},
		{ID: "2", ChannelID: "c1", AuthorID: "u1", Content: "hi", Timestamp: now.Add(-5 * time.Second)},
		{ID: "1", ChannelID: "c1", AuthorID: "u1", Content: "hi", Timestamp: now.Add(-50 * time.Second)},
	}
}

func TestPunishBurstDeletesThenTimesOut(t *testing.T) {
	fake := gatewaytest.New()
	now := time.Now()
	fake.History = burstHistory(now)
	dispatcher := newTestDispatcher(fake)

	dispatcher.PunishBurst(context.Background(), "g1", "c1", "u1", "hi", now)

	if len(fake.Deleted) != 3 {
		t.Fatalf("expected 3 deletions, got %v", fake.Deleted)
	}
	for _, id := range fake.Deleted {
		if id == "1" {
			t.Fatalf("message outside window must not be deleted")
		}
		if id == "3" {
			t.Fatalf("other author's message must not be deleted")
		}
	}
	if len(fake.Timeouts) != 1 {
		t.Fatalf("expected 1 timeout, got %d", len(fake.Timeouts))
	}
	timeout := fake.Timeouts[0]
	if timeout.UserID != "u1" || timeout.GuildID != "g1" {
		t.Fatalf("unexpected timeout target: %+v", timeout)
	}
	if got := timeout.Until.Sub(now); got != time.Hour {
		t.Fatalf("expected 1h timeout, got %s", got)
	}

	for i, kind := range fake.Order {
		if kind == "timeout" {
			for _, later := range fake.Order[i+1:] {
				if later == "delete" {
					t.Fatalf("deletion after timeout: %v", fake.Order)
				}
			}
		}
	}
}

func TestPunishBurstPermissionDeniedDoesNotNotify(t *testing.T) {
	fake := gatewaytest.New()
	now := time.Now()
	fake.History = burstHistory(now)
	fake.TimeoutErr = fmt.Errorf("timeout user: %w", gateway.ErrPermissionDenied)
	dispatcher := newTestDispatcher(fake)

	dispatcher.PunishBurst(context.Background(), "g1", "c1", "u1", "hi", now)

	if len(fake.Deleted) == 0 {
		t.Fatalf("deletion must still be attempted")
	}
	if len(fake.Notifies) != 0 {
		t.Fatalf("no success notice when the action was refused")
	}
}

func TestPunishBurstHistoryFailureStillTimesOut(t *testing.T) {
	fake := gatewaytest.New()
	fake.HistoryErr = fmt.Errorf("channel history: %w", gateway.ErrTransient)
	dispatcher := newTestDispatcher(fake)

	dispatcher.PunishBurst(context.Background(), "g1", "c1", "u1", "hi", time.Now())

	if len(fake.Timeouts) != 1 {
		t.Fatalf("timeout must still apply when history fetch fails")
	}
}

func TestPunishAutomatedBurstDeletesThenBans(t *testing.T) {
	fake := gatewaytest.New()
	dispatcher := newTestDispatcher(fake)

	dispatcher.PunishAutomatedBurst(context.Background(), "g1", "c1", "m2", "b1")

	if len(fake.Deleted) != 1 || fake.Deleted[0] != "m2" {
		t.Fatalf("expected triggering message deleted, got %v", fake.Deleted)
	}
	if len(fake.Bans) != 1 || fake.Bans[0].UserID != "b1" {
		t.Fatalf("expected ban of b1, got %+v", fake.Bans)
	}
	if len(fake.Notifies) != 1 {
		t.Fatalf("expected channel notice, got %d", len(fake.Notifies))
	}
	if fake.Order[0] != "delete" {
		t.Fatalf("delete must precede ban: %v", fake.Order)
	}
}

func TestPunishAutomatedBurstBanRefused(t *testing.T) {
	fake := gatewaytest.New()
	fake.BanErr = fmt.Errorf("ban user: %w", gateway.ErrPermissionDenied)
	dispatcher := newTestDispatcher(fake)

	dispatcher.PunishAutomatedBurst(context.Background(), "g1", "c1", "m2", "b1")

	if len(fake.Notifies) != 0 {
		t.Fatalf("no success notice when the ban was refused")
	}
}
