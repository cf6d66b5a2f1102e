package audit

import (
	"context"
	"testing"

	"mmbot/internal/storage"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLogForwardsEntryToNotifier(t *testing.T) {
	logger := NewLogger(nil, zap.NewNop())

	var got storage.AuditLog
	logger.SetNotifier(func(_ context.Context, entry storage.AuditLog) {
		got = entry
	})

	logger.Log(context.Background(), LevelCrit, "g1", "u1", "bot_ban", "consecutive spam")

	if got.GuildID != "g1" || got.UserID != "u1" {
		t.Fatalf("notifier got wrong subject: %+v", got)
	}
	if got.Level != string(LevelCrit) || got.Event != "bot_ban" {
		t.Fatalf("notifier got wrong event: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("entry timestamp not set")
	}
}

func TestLogWithoutStoreOrNotifier(t *testing.T) {
	logger := NewLogger(nil, zap.NewNop())
	// must not panic with neither sink configured
	logger.Log(context.Background(), LevelInfo, "g1", "u1", "warn", "")
}

func TestLevelSeverityMapping(t *testing.T) {
	cases := []struct {
		level Level
		want  zapcore.Level
	}{
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelCrit, zapcore.ErrorLevel},
		{Level("bogus"), zapcore.InfoLevel},
	}
	for _, tc := range cases {
		if got := tc.level.zapLevel(); got != tc.want {
			t.Fatalf("level %q mapped to %v, want %v", tc.level, got, tc.want)
		}
	}
}
