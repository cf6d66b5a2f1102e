package leveling

import (
	"context"
	"sync"

	"mmbot/internal/storage"
)

// Engine accrues message XP and computes levels from total XP. Updates for
// the same (guild, user) pair are serialized with a keyed mutex so concurrent
// messages cannot lose XP in the load-modify-save cycle.
type Engine struct {
	store        *storage.Store
	xpPerMessage int
	xpPerLevel   int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(store *storage.Store, xpPerMessage, xpPerLevel int) *Engine {
	if xpPerLevel <= 0 {
		xpPerLevel = 100
	}
	return &Engine{
		store:        store,
		xpPerMessage: xpPerMessage,
		xpPerLevel:   xpPerLevel,
		locks:        make(map[string]*sync.Mutex),
	}
}

// AddMessageXP grants the per-message XP and returns the new level when the
// user leveled up, 0 otherwise.
func (e *Engine) AddMessageXP(ctx context.Context, guildID, userID string) (int, error) {
	lock := e.lockFor(guildID + ":" + userID)
	lock.Lock()
	defer lock.Unlock()

	level, err := e.store.GetLevel(ctx, guildID, userID)
	if err != nil {
		return 0, err
	}

	level.TotalXP += e.xpPerMessage
	newLevel := level.TotalXP/e.xpPerLevel + 1
	leveledUp := newLevel > level.Level
	level.Level = newLevel
	level.XP = level.TotalXP % e.xpPerLevel

	if err := e.store.SaveLevel(ctx, level); err != nil {
		return 0, err
	}
	if leveledUp {
		return newLevel, nil
	}
	return 0, nil
}

func (e *Engine) Level(ctx context.Context, guildID, userID string) (storage.UserLevel, error) {
	return e.store.GetLevel(ctx, guildID, userID)
}

func (e *Engine) Ranking(ctx context.Context, guildID string, limit int) ([]storage.UserLevel, error) {
	return e.store.TopLevels(ctx, guildID, limit)
}

// XPToNext reports the XP remaining before the next level.
func (e *Engine) XPToNext(level storage.UserLevel) int {
	return e.xpPerLevel - level.XP
}

func (e *Engine) XPPerLevel() int {
	return e.xpPerLevel
}

func (e *Engine) lockFor(key string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock := e.locks[key]
	if lock == nil {
		lock = &sync.Mutex{}
		e.locks[key] = lock
	}
	return lock
}
