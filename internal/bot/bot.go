package bot

import (
	"context"
	"strconv"
	"time"

	"mmbot/internal/config"
	"mmbot/internal/gateway"
	"mmbot/internal/leveling"
	"mmbot/internal/moderation"
	"mmbot/internal/modules/antispam"
	"mmbot/internal/modules/audit"
	"mmbot/internal/modules/botguard"
	"mmbot/internal/quotes"
	"mmbot/internal/scheduler"
	"mmbot/internal/storage"
	"mmbot/internal/warnings"

	"github.com/bwmarrin/discordgo"
	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

type Bot struct {
	cfg        config.Config
	logger     *zap.Logger
	store      *storage.Store
	session    *discordgo.Session
	gw         gateway.Gateway
	dispatcher *moderation.Dispatcher
	antispam   *antispam.Module
	botguard   *botguard.Module
	ladder     *warnings.Ladder
	levels     *leveling.Engine
	audit      *audit.Logger
	tasks      *scheduler.Registry

	settingsCache *expirable.LRU[string, storage.GuildSettings]
	allowed       map[string]bool
}

func New(cfg config.Config, logger *zap.Logger, store *storage.Store, auditLogger *audit.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, err
	}

	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildBans |
		discordgo.IntentsMessageContent

	allowed := make(map[string]bool, len(cfg.AllowedGuilds))
	for _, guildID := range cfg.AllowedGuilds {
		allowed[guildID] = true
	}

	b := &Bot{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		session: session,
		audit:   auditLogger,
		tasks:   scheduler.NewRegistry(logger),
		allowed: allowed,
		settingsCache: expirable.NewLRU[string, storage.GuildSettings](
			cfg.SettingsCache.Size, nil, time.Duration(cfg.SettingsCache.TTLSeconds)*time.Second),
	}

	b.gw = gateway.NewDiscord(session, cfg.Notifications.EmbedColors.Warning)
	window := time.Duration(cfg.Spam.WindowSeconds) * time.Second
	timeout := time.Duration(cfg.Spam.TimeoutMinutes) * time.Minute
	b.dispatcher = moderation.NewDispatcher(b.gw, auditLogger, logger, window, timeout,
		cfg.Spam.HistoryFetchSize, cfg.Spam.RepeatCount)
	b.antispam = antispam.New(cfg.Spam, b.dispatcher, logger)
	b.botguard = botguard.New(cfg.Spam.BotBurstCount, b.dispatcher, logger)
	b.ladder = warnings.NewLadder(store, logger)
	b.levels = leveling.NewEngine(store, cfg.Leveling.XPPerMessage, cfg.Leveling.XPPerLevel)

	auditLogger.SetNotifier(b.notifyAudit)

	return b, nil
}

func (b *Bot) Start() error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.onInteractionCreate)

	if err := b.session.Open(); err != nil {
		return err
	}
	if err := b.registerCommands(); err != nil {
		return err
	}

	b.resumeQuoteBroadcasts()
	b.startWindowPruner()

	return nil
}

func (b *Bot) Close(ctx context.Context) {
	_ = ctx
	b.tasks.Close()
	if b.session != nil {
		_ = b.session.Close()
	}
}

func (b *Bot) onReady(session *discordgo.Session, event *discordgo.Ready) {
	b.logger.Info("discord ready", zap.String("user", session.State.User.Username))
}

// onMessageCreate is the single ingestion path. Automated senders go through
// the burst guard, humans through the spam tracker and leveling. Detection is
// computed synchronously; only the resulting actions touch the gateway.
func (b *Bot) onMessageCreate(session *discordgo.Session, msg *discordgo.MessageCreate) {
	if msg.Author == nil || msg.GuildID == "" {
		return
	}
	if session.State.User != nil && msg.Author.ID == session.State.User.ID {
		return
	}
	if !b.guildAllowed(msg.GuildID) {
		return
	}

	ctx := context.Background()
	now := time.Now()

	if msg.Author.Bot {
		b.botguard.HandleAutomated(ctx, msg.GuildID, msg.ChannelID, msg.ID, msg.Author.ID)
		return
	}

	b.botguard.HandleHuman(msg.Author.ID)

	if b.antispam.HandleMessage(ctx, msg.GuildID, msg.ChannelID, msg.Author.ID, msg.Content, now) {
		return
	}

	if len(msg.Content) > 0 && msg.Content[0] != '/' {
		newLevel, err := b.levels.AddMessageXP(ctx, msg.GuildID, msg.Author.ID)
		if err != nil {
			b.logger.Warn("xp update failed", zap.String("user_id", msg.Author.ID), zap.Error(err))
			return
		}
		if newLevel > 0 {
			b.announceLevelUp(ctx, msg.ChannelID, msg.Author.ID, newLevel)
		}
	}
}

func (b *Bot) guildAllowed(guildID string) bool {
	if len(b.allowed) == 0 {
		return true
	}
	return b.allowed[guildID]
}

func (b *Bot) guildSettings(ctx context.Context, guildID string) storage.GuildSettings {
	if settings, ok := b.settingsCache.Get(guildID); ok {
		return settings
	}
	settings, err := b.store.GetGuildSettings(ctx, guildID)
	if err != nil {
		b.logger.Warn("guild settings load failed", zap.String("guild_id", guildID), zap.Error(err))
		return storage.GuildSettings{GuildID: guildID}
	}
	b.settingsCache.Add(guildID, settings)
	return settings
}

func (b *Bot) saveGuildSettings(ctx context.Context, settings storage.GuildSettings) error {
	if err := b.store.UpsertGuildSettings(ctx, settings); err != nil {
		return err
	}
	b.settingsCache.Remove(settings.GuildID)
	return nil
}

func (b *Bot) notifyAudit(ctx context.Context, entry storage.AuditLog) {
	settings := b.guildSettings(ctx, entry.GuildID)
	if settings.LogChannel == "" {
		return
	}
	description := entry.Event + ": " + entry.Details
	if err := b.gw.Notify(ctx, settings.LogChannel, "["+entry.Level+"] moderation", description); err != nil {
		b.logger.Debug("audit notify failed", zap.String("guild_id", entry.GuildID), zap.Error(err))
	}
}

func (b *Bot) announceLevelUp(ctx context.Context, channelID, userID string, level int) {
	_ = ctx
	embed := &discordgo.MessageEmbed{
		Title:       "Level up!",
		Description: "<@" + userID + "> reached level " + strconv.Itoa(level) + "!",
		Color:       b.cfg.Notifications.EmbedColors.Success,
	}
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		b.logger.Debug("level up notice failed", zap.String("channel_id", channelID), zap.Error(err))
	}
}

func (b *Bot) resumeQuoteBroadcasts() {
	ctx := context.Background()
	configs, err := b.store.QuoteBroadcasts(ctx)
	if err != nil {
		b.logger.Warn("quote broadcast resume failed", zap.Error(err))
		return
	}
	for _, settings := range configs {
		b.startQuoteBroadcast(settings.GuildID, settings.QuoteChannel,
			time.Duration(settings.QuoteIntervalSeconds)*time.Second)
	}
}

// startQuoteBroadcast schedules the per-guild quote task. Transient send
// failures get a short bounded retry; anything else abandons this tick.
func (b *Bot) startQuoteBroadcast(guildID, channelID string, interval time.Duration) {
	b.tasks.Start("quotes:"+guildID, interval, func(ctx context.Context) error {
		quote := quotes.Random()
		send := func() error {
			err := b.gw.Notify(ctx, channelID, "今日の名言", quote)
			if err != nil && !gateway.IsTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
		return backoff.Retry(send, policy)
	})
}

func (b *Bot) startWindowPruner() {
	b.tasks.Start("antispam:prune", 5*time.Minute, func(ctx context.Context) error {
		b.antispam.Prune(time.Now())
		return nil
	})
}

