package antispam

import (
	"context"
	"sync"
	"time"

	"mmbot/internal/config"
	"mmbot/internal/moderation"
	"mmbot/internal/utils"

	"go.uber.org/zap"
)

// Module tracks per-user message windows and hands detected bursts to the
// dispatcher. Windows live only in process memory; losing them on restart is
// acceptable since bursts are short-lived.
type Module struct {
	mu         sync.Mutex
	windows    map[string]*utils.MessageWindow
	cfg        config.SpamConfig
	dispatcher *moderation.Dispatcher
	logger     *zap.Logger
}

func New(cfg config.SpamConfig, dispatcher *moderation.Dispatcher, logger *zap.Logger) *Module {
	return &Module{
		windows:    make(map[string]*utils.MessageWindow),
		cfg:        cfg,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// HandleMessage observes one human message and returns whether it triggered
// a violation. The user's window is removed synchronously before any gateway
// call, so a duplicate event for the same burst observes an empty window and
// is a no-op.
func (m *Module) HandleMessage(ctx context.Context, guildID, channelID, userID, content string, now time.Time) bool {
	window := m.getWindow(userID)
	if !window.Observe(content, now, m.cfg.RepeatCount) {
		return false
	}

	m.clearWindow(userID)

	m.logger.Info("identical message burst detected",
		zap.String("guild_id", guildID),
		zap.String("user_id", userID))
	m.dispatcher.PunishBurst(ctx, guildID, channelID, userID, content, now)
	return true
}

// TrackedUsers reports how many users currently have a live window.
func (m *Module) TrackedUsers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

// ResetAll drops every live window, used by the admin reset command.
func (m *Module) ResetAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows = make(map[string]*utils.MessageWindow)
}

// Prune drops windows whose newest entry has aged out entirely.
func (m *Module) Prune(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	maxAge := time.Duration(m.cfg.WindowSeconds) * time.Second
	for userID, window := range m.windows {
		if window.Len() == 0 || window.OldestAge(now) > 2*maxAge {
			delete(m.windows, userID)
		}
	}
}

func (m *Module) getWindow(userID string) *utils.MessageWindow {
	m.mu.Lock()
	defer m.mu.Unlock()
	window := m.windows[userID]
	if window == nil {
		window = utils.NewMessageWindow(time.Duration(m.cfg.WindowSeconds) * time.Second)
		m.windows[userID] = window
	}
	return window
}

func (m *Module) clearWindow(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if window := m.windows[userID]; window != nil {
		window.Clear()
	}
	delete(m.windows, userID)
}
