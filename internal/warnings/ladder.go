package warnings

import (
	"context"
	"sync"

	"mmbot/internal/storage"

	"go.uber.org/zap"
)

// Action is the punishment tier mapped from a warning count.
type Action int

const (
	ActionNone Action = iota
	ActionNotify
	ActionTimeout
	ActionBan
)

func (a Action) String() string {
	switch a {
	case ActionNotify:
		return "notify"
	case ActionTimeout:
		return "timeout"
	case ActionBan:
		return "ban"
	default:
		return "none"
	}
}

// ForCount maps a warning count to the action taken for that warning.
// Exactly one action per warn call; lower tiers are never re-applied.
func ForCount(count int) Action {
	switch {
	case count <= 0:
		return ActionNone
	case count == 1:
		return ActionNotify
	case count == 2:
		return ActionTimeout
	default:
		return ActionBan
	}
}

// Ladder issues warnings against the persistent store. Warn calls for the
// same (guild, user) pair are serialized with a keyed mutex so concurrent
// warns cannot lose updates; counts only ever grow.
type Ladder struct {
	store  storage.WarningStore
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLadder(store storage.WarningStore, logger *zap.Logger) *Ladder {
	return &Ladder{
		store:  store,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Warn appends a warning and returns the new count with its action.
// Precondition: the caller has already rejected administrator targets.
func (l *Ladder) Warn(ctx context.Context, guildID, userID, reason, moderatorID string) (int, Action, error) {
	lock := l.lockFor(guildID + ":" + userID)
	lock.Lock()
	defer lock.Unlock()

	count, err := l.store.AppendWarning(ctx, guildID, userID, reason, moderatorID)
	if err != nil {
		return 0, ActionNone, err
	}

	action := ForCount(count)
	l.logger.Info("warning issued",
		zap.String("guild_id", guildID),
		zap.String("user_id", userID),
		zap.String("moderator_id", moderatorID),
		zap.Int("count", count),
		zap.String("action", action.String()))
	return count, action, nil
}

// Record loads the warning history; a missing record has count 0.
func (l *Ladder) Record(ctx context.Context, guildID, userID string) (storage.WarningRecord, error) {
	return l.store.Warnings(ctx, guildID, userID)
}

func (l *Ladder) lockFor(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock := l.locks[key]
	if lock == nil {
		lock = &sync.Mutex{}
		l.locks[key] = lock
	}
	return lock
}
