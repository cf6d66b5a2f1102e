package audit

import (
	"context"
	"time"

	"mmbot/internal/storage"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level classifies an audit event's severity. It doubles as the stored label
// and picks the structured-log level the event is emitted at.
type Level string

const (
	LevelInfo Level = "INFO"
	LevelWarn Level = "WARN"
	LevelCrit Level = "CRIT"
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelCrit:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Notifier forwards an audit entry to a guild's configured log channel.
type Notifier func(context.Context, storage.AuditLog)

// Logger records moderation events. Every event goes to the structured log;
// persistence and channel forwarding are optional extras layered on top.
type Logger struct {
	store  *storage.Store
	logger *zap.Logger
	notify Notifier
}

func NewLogger(store *storage.Store, logger *zap.Logger) *Logger {
	return &Logger{store: store, logger: logger}
}

func (l *Logger) SetNotifier(notify Notifier) {
	l.notify = notify
}

func (l *Logger) Log(ctx context.Context, level Level, guildID, userID, event, details string) {
	l.emit(ctx, storage.AuditLog{
		GuildID:   guildID,
		UserID:    userID,
		Level:     string(level),
		Event:     event,
		Details:   details,
		CreatedAt: time.Now(),
	})
}

func (l *Logger) emit(ctx context.Context, entry storage.AuditLog) {
	if l.store != nil {
		_ = l.store.AddAuditLog(ctx, entry)
	}
	if l.notify != nil {
		l.notify(ctx, entry)
	}
	l.logger.Log(Level(entry.Level).zapLevel(), "audit",
		zap.String("guild_id", entry.GuildID),
		zap.String("user_id", entry.UserID),
		zap.String("event", entry.Event),
		zap.String("details", entry.Details))
}
