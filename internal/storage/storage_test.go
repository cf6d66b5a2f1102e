package storage

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestGuildSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.GetGuildSettings(ctx, "g1")
	if err != nil {
		t.Fatalf("get defaults: %v", err)
	}
	if settings.GuildID != "g1" || settings.QuoteIntervalSeconds != 0 {
		t.Fatalf("unexpected defaults: %+v", settings)
	}

	settings.QuoteChannel = "c1"
	settings.QuoteIntervalSeconds = 3600
	if err := store.UpsertGuildSettings(ctx, settings); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	loaded, err := store.GetGuildSettings(ctx, "g1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.QuoteChannel != "c1" || loaded.QuoteIntervalSeconds != 3600 {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestWarningsMissingRecordIsZero(t *testing.T) {
	store := newTestStore(t)
	record, err := store.Warnings(context.Background(), "g1", "u1")
	if err != nil {
		t.Fatalf("warnings: %v", err)
	}
	if record.Count != 0 || len(record.History) != 0 {
		t.Fatalf("expected empty record, got %+v", record)
	}
}

func TestAppendWarningCountMatchesHistory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		count, err := store.AppendWarning(ctx, "g1", "u1", "rule violation", "m1")
		if err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if count != i {
			t.Fatalf("expected count %d, got %d", i, count)
		}
	}

	record, err := store.Warnings(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("warnings: %v", err)
	}
	if record.Count != 3 || len(record.History) != 3 {
		t.Fatalf("count/history mismatch: %+v", record)
	}
	if record.History[0].ModeratorID != "m1" {
		t.Fatalf("history entry mismatch: %+v", record.History[0])
	}
}

func TestAppendWarningIsolatedPerPair(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.AppendWarning(ctx, "g1", "u1", "a", "m1"); err != nil {
		t.Fatalf("append: %v", err)
	}
	count, err := store.AppendWarning(ctx, "g2", "u1", "b", "m1")
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected per-guild isolation, got count %d", count)
	}
}

func TestLevelsRoundTripAndRanking(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, level := range []UserLevel{
		{GuildID: "g1", UserID: "u1", Level: 2, XP: 50, TotalXP: 150},
		{GuildID: "g1", UserID: "u2", Level: 4, XP: 10, TotalXP: 310},
		{GuildID: "g2", UserID: "u3", Level: 9, XP: 0, TotalXP: 800},
	} {
		if err := store.SaveLevel(ctx, level); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	loaded, err := store.GetLevel(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.TotalXP != 150 || loaded.Level != 2 {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}

	top, err := store.TopLevels(ctx, "g1", 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 || top[0].UserID != "u2" {
		t.Fatalf("unexpected ranking: %+v", top)
	}
}

func TestTicketLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.CreateTicket(ctx, "g1", "c1", "u1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ticket, err := store.TicketByChannel(ctx, "c1")
	if err != nil {
		t.Fatalf("by channel: %v", err)
	}
	if ticket.ID != id || ticket.Status != TicketOpen {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}

	if err := store.CloseTicket(ctx, id); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := store.CloseTicket(ctx, id); err != ErrTicketNotFound {
		t.Fatalf("expected not found on double close, got %v", err)
	}

	open, err := store.ListTickets(ctx, "g1", TicketOpen)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("expected no open tickets, got %d", len(open))
	}
}

func TestPollVoteReplacesPrevious(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	poll := Poll{ID: "p1", GuildID: "g1", ChannelID: "c1", CreatorID: "u1", Question: "q", Options: []string{"a", "b"}}
	if err := store.CreatePoll(ctx, poll); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Vote(ctx, "p1", "u2", 0); err != nil {
		t.Fatalf("vote: %v", err)
	}
	if err := store.Vote(ctx, "p1", "u2", 1); err != nil {
		t.Fatalf("revote: %v", err)
	}

	results, err := store.PollResults(ctx, "p1")
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results[0].Votes != 0 || results[1].Votes != 1 {
		t.Fatalf("revote not applied: %+v", results)
	}
}

func TestGiveawayEntrantsDeduplicated(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	giveaway := Giveaway{ID: "ga1", GuildID: "g1", ChannelID: "c1", Prize: "prize", EndsAt: time.Now().Add(time.Hour)}
	if err := store.CreateGiveaway(ctx, giveaway); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.JoinGiveaway(ctx, "ga1", "u1"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := store.JoinGiveaway(ctx, "ga1", "u1"); err != nil {
		t.Fatalf("rejoin: %v", err)
	}

	entrants, err := store.GiveawayEntrants(ctx, "ga1")
	if err != nil {
		t.Fatalf("entrants: %v", err)
	}
	if len(entrants) != 1 {
		t.Fatalf("expected 1 entrant, got %d", len(entrants))
	}
}
