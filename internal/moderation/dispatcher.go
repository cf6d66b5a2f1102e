package moderation

import (
	"context"
	"fmt"
	"time"

	"mmbot/internal/gateway"
	"mmbot/internal/modules/audit"

	"go.uber.org/zap"
)

// Dispatcher turns detected violations into exactly one corrective action.
// Every path is best-effort: permission and transient failures are logged and
// audited but never propagate into the ingestion loop.
type Dispatcher struct {
	gw       gateway.Gateway
	audit    *audit.Logger
	logger   *zap.Logger
	window   time.Duration
	timeout  time.Duration
	fetch    int
	maxMatch int
}

func NewDispatcher(gw gateway.Gateway, auditLogger *audit.Logger, logger *zap.Logger, window, timeout time.Duration, fetchSize, maxDeletes int) *Dispatcher {
	if fetchSize <= 0 {
		fetchSize = 10
	}
	if maxDeletes <= 0 {
		maxDeletes = 3
	}
	return &Dispatcher{
		gw:       gw,
		audit:    auditLogger,
		logger:   logger,
		window:   window,
		timeout:  timeout,
		fetch:    fetchSize,
		maxMatch: maxDeletes,
	}
}

// PunishBurst deletes the offending repeats and then times the user out.
// Deletion strictly precedes the timeout so the user cannot keep posting
// while unmuted. The caller has already cleared the user's window, so a
// duplicate event for the same burst never reaches this method.
func (d *Dispatcher) PunishBurst(ctx context.Context, guildID, channelID, userID, content string, now time.Time) {
	deleted := d.deleteMatching(ctx, channelID, userID, content, now)

	until := now.Add(d.timeout)
	if err := d.gw.TimeoutUser(ctx, guildID, userID, until, "repeated identical messages"); err != nil {
		d.reportFailure(ctx, guildID, userID, "spam_timeout", err)
		return
	}

	d.audit.Log(ctx, audit.LevelWarn, guildID, userID, "spam_timeout",
		fmt.Sprintf("deleted %d repeats, timed out until %s", deleted, until.UTC().Format(time.RFC3339)))
	d.notify(ctx, channelID, "Timeout applied",
		fmt.Sprintf("<@%s> was timed out for %s for repeating the same message.", userID, d.timeout))
}

// PunishAutomatedBurst deletes the triggering message and bans the automated
// account, then notifies the channel.
func (d *Dispatcher) PunishAutomatedBurst(ctx context.Context, guildID, channelID, messageID, userID string) {
	if err := d.gw.DeleteMessage(ctx, channelID, messageID); err != nil && !gateway.IsNotFound(err) {
		d.logger.Warn("bot burst delete failed",
			zap.String("guild_id", guildID), zap.String("message_id", messageID), zap.Error(err))
	}

	if err := d.gw.BanUser(ctx, guildID, userID, "consecutive automated message spam"); err != nil {
		d.reportFailure(ctx, guildID, userID, "bot_ban", err)
		return
	}

	d.audit.Log(ctx, audit.LevelCrit, guildID, userID, "bot_ban", "banned for consecutive automated messages")
	d.notify(ctx, channelID, "Bot banned",
		fmt.Sprintf("<@%s> was banned for consecutive message spam.", userID))
}

// deleteMatching removes up to maxMatch recent messages from userID whose
// content matches the triggering content within the detection window.
// Individual deletions fail silently; at least one attempt is always made
// when the history fetch succeeds.
func (d *Dispatcher) deleteMatching(ctx context.Context, channelID, userID, content string, now time.Time) int {
	history, err := d.gw.RecentMessages(ctx, channelID, d.fetch)
	if err != nil {
		d.logger.Warn("history fetch failed", zap.String("channel_id", channelID), zap.Error(err))
		return 0
	}

	deleted := 0
	for _, msg := range history {
		if deleted >= d.maxMatch {
			break
		}
		if msg.AuthorID != userID || msg.Content != content {
			continue
		}
		if now.Sub(msg.Timestamp) > d.window {
			continue
		}
		if err := d.gw.DeleteMessage(ctx, channelID, msg.ID); err != nil {
			if gateway.IsNotFound(err) {
				continue
			}
			d.logger.Debug("delete failed", zap.String("message_id", msg.ID), zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted
}

func (d *Dispatcher) reportFailure(ctx context.Context, guildID, userID, event string, err error) {
	switch {
	case gateway.IsPermissionDenied(err):
		d.logger.Warn("moderation action refused",
			zap.String("guild_id", guildID), zap.String("user_id", userID),
			zap.String("event", event), zap.Error(err))
		d.audit.Log(ctx, audit.LevelWarn, guildID, userID, event, "insufficient permissions")
	case gateway.IsNotFound(err):
		// target already gone, nothing to do
	default:
		d.logger.Warn("moderation action abandoned",
			zap.String("guild_id", guildID), zap.String("user_id", userID),
			zap.String("event", event), zap.Error(err))
	}
}

func (d *Dispatcher) notify(ctx context.Context, channelID, title, description string) {
	if err := d.gw.Notify(ctx, channelID, title, description); err != nil {
		d.logger.Debug("channel notify failed", zap.String("channel_id", channelID), zap.Error(err))
	}
}
