package botguard

import (
	"context"

	"mmbot/internal/moderation"
	"mmbot/internal/utils"

	"go.uber.org/zap"
)

// Module applies the stricter consecutive-message rule to automated accounts.
type Module struct {
	counter    *utils.BurstCounter
	threshold  int
	dispatcher *moderation.Dispatcher
	logger     *zap.Logger
}

func New(threshold int, dispatcher *moderation.Dispatcher, logger *zap.Logger) *Module {
	return &Module{
		counter:    utils.NewBurstCounter(),
		threshold:  threshold,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleAutomated observes one message from an automated account. On reaching
// the threshold the counter entry is removed before the action is dispatched.
func (m *Module) HandleAutomated(ctx context.Context, guildID, channelID, messageID, authorID string) bool {
	if m.counter.Increment(authorID) < m.threshold {
		return false
	}

	m.counter.Reset(authorID)

	m.logger.Info("automated message burst detected",
		zap.String("guild_id", guildID),
		zap.String("author_id", authorID))
	m.dispatcher.PunishAutomatedBurst(ctx, guildID, channelID, messageID, authorID)
	return true
}

// HandleHuman resets the counter keyed by this author id only. Other
// automated authors' counters are deliberately untouched.
func (m *Module) HandleHuman(authorID string) {
	m.counter.Reset(authorID)
}

// TrackedAuthors reports how many automated authors have a live counter.
func (m *Module) TrackedAuthors() int {
	return m.counter.Size()
}

// ResetAll clears every author's counter, used by the admin reset command.
func (m *Module) ResetAll() {
	m.counter.Clear()
}
