package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"mmbot/internal/gateway"
	"mmbot/internal/modules/audit"
	"mmbot/internal/quotes"
	"mmbot/internal/storage"
	"mmbot/internal/warnings"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (b *Bot) onInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if interaction.GuildID == "" || !b.guildAllowed(interaction.GuildID) {
		return
	}

	ctx := context.Background()
	switch interaction.Type {
	case discordgo.InteractionApplicationCommand:
		b.handleCommand(ctx, session, interaction)
	case discordgo.InteractionMessageComponent:
		b.handleComponent(ctx, session, interaction)
	}
}

func (b *Bot) handleCommand(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	data := interaction.ApplicationCommandData()
	switch data.Name {
	case "warn":
		b.handleWarn(ctx, session, interaction, data.Options)
	case "warnings":
		b.handleWarnings(ctx, session, interaction, data.Options)
	case "level":
		b.handleLevel(ctx, session, interaction, data.Options)
	case "ranking":
		b.handleRanking(ctx, session, interaction)
	case "poll":
		b.handlePoll(ctx, session, interaction, data.Options)
	case "poll-results":
		b.handlePollResults(ctx, session, interaction, data.Options)
	case "ticket-panel":
		b.handleTicketPanel(ctx, session, interaction)
	case "ticket-list":
		b.handleTicketList(ctx, session, interaction, data.Options)
	case "close-ticket":
		b.handleCloseTicket(ctx, session, interaction, data.Options)
	case "giveaway":
		b.handleGiveaway(ctx, session, interaction, data.Options)
	case "quote-setting":
		b.handleQuoteSetting(ctx, session, interaction, data.Options)
	case "quote-stop":
		b.handleQuoteStop(ctx, session, interaction)
	case "nuke":
		b.handleNuke(ctx, session, interaction)
	case "timenuke":
		b.handleTimenuke(ctx, session, interaction, data.Options)
	case "stop-timenuke":
		b.handleStopTimenuke(ctx, session, interaction)
	case "delete":
		b.handleDelete(ctx, session, interaction, data.Options)
	case "spam-status":
		b.handleSpamStatus(session, interaction)
	case "antispam-config":
		b.handleAntispamConfig(ctx, session, interaction, data.Options)
	case "logs":
		b.handleLogs(ctx, session, interaction, data.Options)
	}
}

func (b *Bot) handleWarn(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if !hasPermission(interaction, discordgo.PermissionManageMessages) {
		b.respondError(session, interaction, "メッセージ管理権限が必要です。")
		return
	}

	target := options[0].UserValue(session)
	if target == nil {
		b.respondError(session, interaction, "対象ユーザーを取得できませんでした。")
		return
	}
	reason := "規則違反"
	if len(options) > 1 {
		reason = options[1].StringValue()
	}

	// administrators are rejected before the record is touched; if the
	// target's permissions cannot be determined the warn is refused
	isAdmin, err := b.targetIsAdmin(session, interaction, target.ID)
	if err != nil {
		b.respondError(session, interaction, "対象ユーザーの権限を確認できませんでした。")
		return
	}
	if isAdmin {
		b.respondError(session, interaction, "管理者に警告を与えることはできません。")
		return
	}

	moderatorID := interaction.Member.User.ID
	count, action, err := b.ladder.Warn(ctx, interaction.GuildID, target.ID, reason, moderatorID)
	if err != nil {
		b.logger.Warn("warn failed", zap.String("user_id", target.ID), zap.Error(err))
		b.respondError(session, interaction, "警告の保存に失敗しました。")
		return
	}

	measure := "警告のみ"
	switch action {
	case warnings.ActionTimeout:
		until := time.Now().Add(time.Hour)
		if err := b.gw.TimeoutUser(ctx, interaction.GuildID, target.ID, until, "2回目の警告: "+reason); err != nil {
			b.reportActionFailure(ctx, interaction.GuildID, target.ID, "warn_timeout", err)
		}
		measure = "1時間タイムアウト"
	case warnings.ActionBan:
		if err := b.gw.BanUser(ctx, interaction.GuildID, target.ID, fmt.Sprintf("%d回目の警告: %s", count, reason)); err != nil {
			b.reportActionFailure(ctx, interaction.GuildID, target.ID, "warn_ban", err)
		}
		measure = "サーバーからBan"
	}

	b.audit.Log(ctx, audit.LevelWarn, interaction.GuildID, target.ID, "warn",
		fmt.Sprintf("count=%d action=%s by=%s", count, action, moderatorID))

	fields := []*discordgo.MessageEmbedField{
		{Name: "対象ユーザー", Value: "<@" + target.ID + ">", Inline: true},
		{Name: "警告回数", Value: fmt.Sprintf("%d/3", count), Inline: true},
		{Name: "理由", Value: reason, Inline: false},
		{Name: "措置", Value: measure, Inline: false},
	}
	b.respondEmbed(session, interaction, b.commandEmbed("⚠️ 警告システム", "", b.cfg.Notifications.EmbedColors.Action, fields), false)

	if b.cfg.Notifications.DMWarnEnabled {
		b.sendWarnDM(session, target.ID, interaction.GuildID, reason, count, measure)
	}
}

func (b *Bot) sendWarnDM(session *discordgo.Session, userID, guildID, reason string, count int, measure string) {
	channel, err := session.UserChannelCreate(userID)
	if err != nil {
		return
	}
	guildName := guildID
	if guild, err := session.State.Guild(guildID); err == nil {
		guildName = guild.Name
	}
	embed := &discordgo.MessageEmbed{
		Title:       "⚠️ " + guildName + "で警告を受けました",
		Description: fmt.Sprintf("**理由:** %s\n**警告回数:** %d/3\n**措置:** %s", reason, count, measure),
		Color:       b.cfg.Notifications.EmbedColors.Action,
	}
	_, _ = session.ChannelMessageSendEmbed(channel.ID, embed)
}

func (b *Bot) handleWarnings(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if !hasPermission(interaction, discordgo.PermissionManageMessages) {
		b.respondError(session, interaction, "メッセージ管理権限が必要です。")
		return
	}
	target := options[0].UserValue(session)
	if target == nil {
		b.respondError(session, interaction, "対象ユーザーを取得できませんでした。")
		return
	}

	record, err := b.ladder.Record(ctx, interaction.GuildID, target.ID)
	if err != nil {
		b.respondError(session, interaction, "警告履歴の取得に失敗しました。")
		return
	}
	if record.Count == 0 {
		b.respondError(session, interaction, "警告記録はありません。")
		return
	}

	history := record.History
	if len(history) > 5 {
		history = history[len(history)-5:]
	}
	fields := make([]*discordgo.MessageEmbedField, 0, len(history))
	for i, warning := range history {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: fmt.Sprintf("警告 #%d", i+1),
			Value: fmt.Sprintf("**理由:** %s\n**モデレーター:** <@%s>\n**日時:** %s",
				warning.Reason, warning.ModeratorID, warning.CreatedAt.Format("2006-01-02")),
			Inline: false,
		})
	}
	embed := b.commandEmbed("⚠️ 警告履歴", fmt.Sprintf("**警告回数:** %d/3", record.Count), b.cfg.Notifications.EmbedColors.Action, fields)
	b.respondEmbed(session, interaction, embed, true)
}

func (b *Bot) handleLevel(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	userID := interaction.Member.User.ID
	if len(options) > 0 {
		if target := options[0].UserValue(session); target != nil {
			userID = target.ID
		}
	}

	level, err := b.levels.Level(ctx, interaction.GuildID, userID)
	if err != nil {
		b.respondError(session, interaction, "レベルの取得に失敗しました。")
		return
	}

	perLevel := b.levels.XPPerLevel()
	bar := progressBar(level.XP, perLevel, 20)
	fields := []*discordgo.MessageEmbedField{
		{Name: "🎯 レベル", Value: fmt.Sprintf("%d", level.Level), Inline: true},
		{Name: "⭐ 経験値", Value: fmt.Sprintf("%d/%d XP", level.XP, perLevel), Inline: true},
		{Name: "📈 総経験値", Value: fmt.Sprintf("%d XP", level.TotalXP), Inline: true},
		{Name: "🚀 次のレベルまで", Value: fmt.Sprintf("%d XP", b.levels.XPToNext(level)), Inline: false},
		{Name: "📊 進行度", Value: fmt.Sprintf("`%s` %d%%", bar, level.XP*100/perLevel), Inline: false},
	}
	embed := b.commandEmbed("📊 レベル", "<@"+userID+">", b.cfg.Notifications.EmbedColors.Success, fields)
	b.respondEmbed(session, interaction, embed, false)
}

func (b *Bot) handleRanking(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	top, err := b.levels.Ranking(ctx, interaction.GuildID, 10)
	if err != nil || len(top) == 0 {
		b.respondError(session, interaction, "まだレベルデータがありません。")
		return
	}

	medals := []string{"🥇", "🥈", "🥉"}
	fields := make([]*discordgo.MessageEmbedField, 0, len(top))
	for i, entry := range top {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s #%d", rank, i+1),
			Value:  fmt.Sprintf("<@%s> — レベル %d | 総XP %d", entry.UserID, entry.Level, entry.TotalXP),
			Inline: false,
		})
	}
	embed := b.commandEmbed("🏆 レベルランキング", "サーバー内の上位ユーザー", 0xFFD700, fields)
	b.respondEmbed(session, interaction, embed, false)
}

func (b *Bot) handlePoll(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	question := options[0].StringValue()
	choices := splitList(options[1].StringValue())
	if len(choices) < 2 || len(choices) > 10 {
		b.respondError(session, interaction, "選択肢は2〜10個で指定してください。")
		return
	}

	poll := storage.Poll{
		ID:        uuid.NewString()[:8],
		GuildID:   interaction.GuildID,
		ChannelID: interaction.ChannelID,
		CreatorID: interaction.Member.User.ID,
		Question:  question,
		Options:   choices,
	}
	if err := b.store.CreatePoll(ctx, poll); err != nil {
		b.respondError(session, interaction, "投票の作成に失敗しました。")
		return
	}

	buttons := make([]discordgo.MessageComponent, 0, len(choices))
	for i, choice := range choices {
		buttons = append(buttons, discordgo.Button{
			Label:    choice,
			Style:    discordgo.PrimaryButton,
			CustomID: fmt.Sprintf("poll:%s:%d", poll.ID, i),
		})
	}
	embed := b.commandEmbed("📊 "+question, "ボタンを押して投票してください。\nID: `"+poll.ID+"`", b.cfg.Notifications.EmbedColors.Action, nil)
	_, err := session.ChannelMessageSendComplex(interaction.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: buttonRows(buttons),
	})
	if err != nil {
		b.respondError(session, interaction, "投票の送信に失敗しました。")
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("📊 投票を作成しました", "ID: `"+poll.ID+"`", b.cfg.Notifications.EmbedColors.Success, nil), true)
}

func (b *Bot) handlePollResults(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	pollID := options[0].StringValue()
	results, err := b.store.PollResults(ctx, pollID)
	if err != nil {
		b.respondError(session, interaction, "投票が見つかりません。")
		return
	}

	total := 0
	for _, result := range results {
		total += result.Votes
	}
	var lines []string
	for _, result := range results {
		lines = append(lines, fmt.Sprintf("**%s** — %d票 `%s`", result.Option, result.Votes, progressBar(result.Votes, max(total, 1), 10)))
	}
	embed := b.commandEmbed("📊 投票結果", strings.Join(lines, "\n"), b.cfg.Notifications.EmbedColors.Action, nil)
	b.respondEmbed(session, interaction, embed, false)
}

func (b *Bot) handleTicketPanel(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	_ = ctx
	embed := b.commandEmbed("🎫 サポートチケット", "下のボタンを押すと専用チャンネルが作成されます。", b.cfg.Notifications.EmbedColors.Action, nil)
	_, err := session.ChannelMessageSendComplex(interaction.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: buttonRows([]discordgo.MessageComponent{discordgo.Button{
			Label:    "🎫 チケット作成",
			Style:    discordgo.PrimaryButton,
			CustomID: "ticket:create",
		}}),
	})
	if err != nil {
		b.respondError(session, interaction, "パネルの設置に失敗しました。")
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("🎫 パネルを設置しました", "", b.cfg.Notifications.EmbedColors.Success, nil), true)
}

func (b *Bot) handleTicketList(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	status := "all"
	if len(options) > 0 {
		status = options[0].StringValue()
	}
	tickets, err := b.store.ListTickets(ctx, interaction.GuildID, status)
	if err != nil {
		b.respondError(session, interaction, "チケット一覧の取得に失敗しました。")
		return
	}
	if len(tickets) == 0 {
		b.respondError(session, interaction, "該当するチケットはありません。")
		return
	}

	var lines []string
	for _, ticket := range tickets {
		lines = append(lines, fmt.Sprintf("`#%d` <#%s> — %s (<@%s>)", ticket.ID, ticket.ChannelID, ticket.Status, ticket.CreatorID))
	}
	embed := b.commandEmbed("🎫 チケット一覧", strings.Join(lines, "\n"), b.cfg.Notifications.EmbedColors.Action, nil)
	b.respondEmbed(session, interaction, embed, true)
}

func (b *Bot) handleCloseTicket(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if !hasPermission(interaction, discordgo.PermissionManageMessages) {
		b.respondError(session, interaction, "メッセージ管理権限が必要です。")
		return
	}
	id := options[0].IntValue()
	ticket, err := b.store.GetTicket(ctx, id)
	if err != nil {
		b.respondError(session, interaction, "チケットが見つかりません。")
		return
	}
	if err := b.store.CloseTicket(ctx, id); err != nil {
		b.respondError(session, interaction, "チケットは既に閉じられています。")
		return
	}
	b.audit.Log(ctx, audit.LevelInfo, interaction.GuildID, ticket.CreatorID, "ticket_closed", fmt.Sprintf("ticket #%d", id))
	b.respondEmbed(session, interaction, b.commandEmbed("🔒 チケットを閉じました", fmt.Sprintf("`#%d`", id), b.cfg.Notifications.EmbedColors.Success, nil), true)

	// respond before the channel disappears; the delete may target the
	// channel the command was issued from
	if _, err := session.ChannelDelete(ticket.ChannelID); err != nil {
		b.logger.Debug("ticket channel delete failed", zap.String("channel_id", ticket.ChannelID), zap.Error(err))
	}
}

func (b *Bot) handleGiveaway(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	prize := options[0].StringValue()
	duration, err := quotes.ParseInterval(options[1].StringValue())
	if err != nil || duration < time.Minute {
		b.respondError(session, interaction, "期間の形式が正しくありません。例: 30m, 2h, 1d")
		return
	}

	giveaway := storage.Giveaway{
		ID:        uuid.NewString()[:8],
		GuildID:   interaction.GuildID,
		ChannelID: interaction.ChannelID,
		Prize:     prize,
		EndsAt:    time.Now().Add(duration),
	}

	embed := b.commandEmbed("🎉 Giveaway: "+prize,
		fmt.Sprintf("ボタンを押して参加！\n終了: <t:%d:R>", giveaway.EndsAt.Unix()),
		0xFFD700, nil)
	message, err := session.ChannelMessageSendComplex(interaction.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: buttonRows([]discordgo.MessageComponent{discordgo.Button{
			Label:    "🎉 参加する",
			Style:    discordgo.PrimaryButton,
			CustomID: "giveaway:" + giveaway.ID,
		}}),
	})
	if err != nil {
		b.respondError(session, interaction, "Giveawayの送信に失敗しました。")
		return
	}
	giveaway.MessageID = message.ID
	if err := b.store.CreateGiveaway(ctx, giveaway); err != nil {
		b.respondError(session, interaction, "Giveawayの作成に失敗しました。")
		return
	}

	giveawayID := giveaway.ID
	channelID := giveaway.ChannelID
	b.tasks.StartOnce("giveaway:"+giveawayID, duration, func(taskCtx context.Context) error {
		return b.finishGiveaway(taskCtx, giveawayID, channelID)
	})
	b.respondEmbed(session, interaction, b.commandEmbed("🎉 Giveawayを開始しました", "ID: `"+giveawayID+"`", b.cfg.Notifications.EmbedColors.Success, nil), true)
}

func (b *Bot) finishGiveaway(ctx context.Context, giveawayID, channelID string) error {
	giveaway, err := b.store.GetGiveaway(ctx, giveawayID)
	if err != nil || giveaway.Finished {
		return err
	}
	entrants, err := b.store.GiveawayEntrants(ctx, giveawayID)
	if err != nil {
		return err
	}
	if err := b.store.FinishGiveaway(ctx, giveawayID); err != nil {
		return err
	}

	if len(entrants) == 0 {
		return b.gw.Notify(ctx, channelID, "🎉 Giveaway終了", "参加者がいませんでした: "+giveaway.Prize)
	}
	winner := entrants[rand.Intn(len(entrants))]
	return b.gw.Notify(ctx, channelID, "🎉 Giveaway終了",
		fmt.Sprintf("**%s** の当選者: <@%s> おめでとうございます！", giveaway.Prize, winner))
}

func (b *Bot) handleQuoteSetting(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if !hasPermission(interaction, discordgo.PermissionManageServer) {
		b.respondError(session, interaction, "サーバー管理権限が必要です。")
		return
	}
	interval, err := quotes.ParseInterval(options[0].StringValue())
	if err != nil || int(interval.Seconds()) < b.cfg.Quotes.MinIntervalSeconds {
		b.respondError(session, interaction, "間隔の形式が正しくありません。例: 30m, 1h")
		return
	}

	settings := b.guildSettings(ctx, interaction.GuildID)
	settings.QuoteChannel = interaction.ChannelID
	settings.QuoteIntervalSeconds = int(interval.Seconds())
	if err := b.saveGuildSettings(ctx, settings); err != nil {
		b.respondError(session, interaction, "設定の保存に失敗しました。")
		return
	}

	b.startQuoteBroadcast(interaction.GuildID, interaction.ChannelID, interval)
	embed := b.commandEmbed("📜 名言配信を設定しました",
		fmt.Sprintf("<#%s> に %s 間隔で配信します。", interaction.ChannelID, quotes.FormatInterval(interval)),
		b.cfg.Notifications.EmbedColors.Success, nil)
	b.respondEmbed(session, interaction, embed, true)
}

func (b *Bot) handleQuoteStop(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if !hasPermission(interaction, discordgo.PermissionManageServer) {
		b.respondError(session, interaction, "サーバー管理権限が必要です。")
		return
	}
	if !b.tasks.Stop("quotes:" + interaction.GuildID) {
		b.respondError(session, interaction, "名言配信は設定されていません。")
		return
	}
	settings := b.guildSettings(ctx, interaction.GuildID)
	settings.QuoteChannel = ""
	settings.QuoteIntervalSeconds = 0
	if err := b.saveGuildSettings(ctx, settings); err != nil {
		b.logger.Warn("quote settings clear failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
	}
	b.respondEmbed(session, interaction, b.commandEmbed("📜 名言配信を停止しました", "", b.cfg.Notifications.EmbedColors.Success, nil), true)
}

func (b *Bot) handleNuke(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if !hasPermission(interaction, discordgo.PermissionManageChannels) {
		b.respondError(session, interaction, "チャンネル管理権限が必要です。")
		return
	}

	b.respondEmbed(session, interaction, b.commandEmbed("💥 チャンネルを再生成します", "", b.cfg.Notifications.EmbedColors.Action, nil), true)
	newID, err := b.recreateChannel(session, interaction.ChannelID)
	if err != nil {
		b.logger.Warn("nuke failed", zap.String("channel_id", interaction.ChannelID), zap.Error(err))
		return
	}
	b.audit.Log(ctx, audit.LevelInfo, interaction.GuildID, interaction.Member.User.ID, "nuke", "channel recreated")
	_ = b.gw.Notify(ctx, newID, "💥 チャンネルを再生成しました", "設定は引き継がれています。")
}

// recreateChannel clones the channel's settings into a fresh channel and
// removes the original, returning the replacement's id.
func (b *Bot) recreateChannel(session *discordgo.Session, channelID string) (string, error) {
	channel, err := session.Channel(channelID)
	if err != nil {
		return "", err
	}
	created, err := session.GuildChannelCreateComplex(channel.GuildID, discordgo.GuildChannelCreateData{
		Name:                 channel.Name,
		Type:                 channel.Type,
		Topic:                channel.Topic,
		NSFW:                 channel.NSFW,
		Position:             channel.Position,
		ParentID:             channel.ParentID,
		PermissionOverwrites: channel.PermissionOverwrites,
	})
	if err != nil {
		return "", err
	}
	if _, err := session.ChannelDelete(channelID); err != nil {
		return created.ID, err
	}
	return created.ID, nil
}

func (b *Bot) handleTimenuke(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if !hasPermission(interaction, discordgo.PermissionManageChannels) {
		b.respondError(session, interaction, "チャンネル管理権限が必要です。")
		return
	}
	interval, err := quotes.ParseInterval(options[0].StringValue())
	if err != nil || interval < time.Minute {
		b.respondError(session, interaction, "間隔の形式が正しくありません。例: 1h, 1d")
		return
	}

	// the channel id changes on every recreation, so the task tracks it
	currentID := interaction.ChannelID
	guildID := interaction.GuildID
	b.tasks.Start("nuke:"+guildID, interval, func(taskCtx context.Context) error {
		newID, err := b.recreateChannel(session, currentID)
		if err != nil {
			return err
		}
		currentID = newID
		return b.gw.Notify(taskCtx, newID, "💥 定期再生成", "このチャンネルは定期的に再生成されます。")
	})

	b.audit.Log(ctx, audit.LevelInfo, guildID, interaction.Member.User.ID, "timenuke",
		"interval "+quotes.FormatInterval(interval))
	embed := b.commandEmbed("💥 定期再生成を設定しました",
		fmt.Sprintf("%s 間隔でこのチャンネルを再生成します。", quotes.FormatInterval(interval)),
		b.cfg.Notifications.EmbedColors.Success, nil)
	b.respondEmbed(session, interaction, embed, true)
}

func (b *Bot) handleStopTimenuke(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	if !hasPermission(interaction, discordgo.PermissionManageChannels) {
		b.respondError(session, interaction, "チャンネル管理権限が必要です。")
		return
	}
	if !b.tasks.Stop("nuke:" + interaction.GuildID) {
		b.respondError(session, interaction, "定期再生成は設定されていません。")
		return
	}
	b.audit.Log(ctx, audit.LevelInfo, interaction.GuildID, interaction.Member.User.ID, "timenuke_stop", "")
	b.respondEmbed(session, interaction, b.commandEmbed("💥 定期再生成を停止しました", "", b.cfg.Notifications.EmbedColors.Success, nil), true)
}

func (b *Bot) handleDelete(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if !hasPermission(interaction, discordgo.PermissionManageMessages) {
		b.respondError(session, interaction, "メッセージ管理権限が必要です。")
		return
	}
	count := int(options[0].IntValue())
	if count < 1 || count > 100 {
		b.respondError(session, interaction, "件数は1〜100で指定してください。")
		return
	}
	var filterUser string
	if len(options) > 1 {
		if target := options[1].UserValue(session); target != nil {
			filterUser = target.ID
		}
	}

	messages, err := b.gw.RecentMessages(ctx, interaction.ChannelID, 100)
	if err != nil {
		b.respondError(session, interaction, "メッセージの取得に失敗しました。")
		return
	}
	var ids []string
	for _, msg := range messages {
		if len(ids) >= count {
			break
		}
		if filterUser != "" && msg.AuthorID != filterUser {
			continue
		}
		ids = append(ids, msg.ID)
	}
	if len(ids) == 0 {
		b.respondError(session, interaction, "削除対象のメッセージがありません。")
		return
	}
	if err := session.ChannelMessagesBulkDelete(interaction.ChannelID, ids); err != nil {
		b.respondError(session, interaction, "メッセージの削除に失敗しました。")
		return
	}
	b.audit.Log(ctx, audit.LevelInfo, interaction.GuildID, interaction.Member.User.ID, "bulk_delete",
		fmt.Sprintf("deleted %d messages", len(ids)))
	b.respondEmbed(session, interaction, b.commandEmbed("🗑️ 削除しました", fmt.Sprintf("%d件のメッセージを削除しました。", len(ids)), b.cfg.Notifications.EmbedColors.Success, nil), true)
}

func (b *Bot) handleSpamStatus(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	fields := []*discordgo.MessageEmbedField{
		{Name: "追跡中のユーザー", Value: fmt.Sprintf("%d", b.antispam.TrackedUsers()), Inline: true},
		{Name: "追跡中のBot", Value: fmt.Sprintf("%d", b.botguard.TrackedAuthors()), Inline: true},
		{Name: "しきい値", Value: fmt.Sprintf("%d回/%d秒", b.cfg.Spam.RepeatCount, b.cfg.Spam.WindowSeconds), Inline: true},
		{Name: "タイムアウト", Value: fmt.Sprintf("%d分", b.cfg.Spam.TimeoutMinutes), Inline: true},
	}
	embed := b.commandEmbed("🛡️ スパム検知状況", "", b.cfg.Notifications.EmbedColors.Action, fields)
	b.respondEmbed(session, interaction, embed, true)
}

func (b *Bot) handleAntispamConfig(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if !hasPermission(interaction, discordgo.PermissionManageMessages) {
		b.respondError(session, interaction, "メッセージ管理権限が必要です。")
		return
	}
	action := "show"
	if len(options) > 0 {
		action = options[0].StringValue()
	}

	if action == "reset" {
		b.antispam.ResetAll()
		b.botguard.ResetAll()
		b.audit.Log(ctx, audit.LevelInfo, interaction.GuildID, interaction.Member.User.ID, "antispam_reset", "tracking state cleared")
		b.respondEmbed(session, interaction, b.commandEmbed("✅ 荒らし対策データをリセットしました", "", b.cfg.Notifications.EmbedColors.Success, nil), true)
		return
	}

	fields := []*discordgo.MessageEmbedField{
		{
			Name: "同一メッセージ連投検知",
			Value: fmt.Sprintf("• %d秒以内に同じメッセージを%d回以上: 全て削除 + %d分タイムアウト",
				b.cfg.Spam.WindowSeconds, b.cfg.Spam.RepeatCount, b.cfg.Spam.TimeoutMinutes),
			Inline: false,
		},
		{
			Name:   "Bot対策",
			Value:  fmt.Sprintf("• %d連続以上のメッセージでBan", b.cfg.Spam.BotBurstCount),
			Inline: false,
		},
		{Name: "自動削除", Value: "• スパムメッセージは自動削除", Inline: false},
	}
	embed := b.commandEmbed("🛡️ 荒らし対策設定", "現在の荒らし対策設定:", b.cfg.Notifications.EmbedColors.Action, fields)
	b.respondEmbed(session, interaction, embed, true)
}

func (b *Bot) handleLogs(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	if !hasPermission(interaction, discordgo.PermissionManageServer) {
		b.respondError(session, interaction, "サーバー管理権限が必要です。")
		return
	}
	settings := b.guildSettings(ctx, interaction.GuildID)
	if len(options) == 0 {
		value := settings.LogChannel
		if value == "" {
			value = "未設定"
		} else {
			value = "<#" + value + ">"
		}
		b.respondEmbed(session, interaction, b.commandEmbed("📋 ログ設定", value, b.cfg.Notifications.EmbedColors.Action, nil), true)
		return
	}
	channel := options[0].ChannelValue(session)
	if channel == nil {
		b.respondError(session, interaction, "チャンネルを取得できませんでした。")
		return
	}
	settings.LogChannel = channel.ID
	if err := b.saveGuildSettings(ctx, settings); err != nil {
		b.respondError(session, interaction, "設定の保存に失敗しました。")
		return
	}
	b.respondEmbed(session, interaction, b.commandEmbed("📋 ログ設定を更新しました", "<#"+channel.ID+">", b.cfg.Notifications.EmbedColors.Success, nil), true)
}

func (b *Bot) reportActionFailure(ctx context.Context, guildID, userID, event string, err error) {
	if gateway.IsPermissionDenied(err) {
		b.audit.Log(ctx, audit.LevelWarn, guildID, userID, event, "insufficient permissions")
		return
	}
	if gateway.IsNotFound(err) {
		return
	}
	b.logger.Warn("moderation action failed",
		zap.String("guild_id", guildID), zap.String("user_id", userID),
		zap.String("event", event), zap.Error(err))
}

// targetIsAdmin prefers the interaction's resolved member data and falls back
// to a permission lookup when the target was not resolved.
func (b *Bot) targetIsAdmin(session *discordgo.Session, interaction *discordgo.InteractionCreate, targetID string) (bool, error) {
	data := interaction.ApplicationCommandData()
	if isAdmin, ok := resolvedAdmin(data.Resolved, targetID); ok {
		return isAdmin, nil
	}
	perms, err := session.UserChannelPermissions(targetID, interaction.ChannelID)
	if err != nil {
		return false, err
	}
	return perms&discordgo.PermissionAdministrator != 0, nil
}

// resolvedAdmin reports whether the resolved member data answers the admin
// question at all; ok is false when the target is absent from it.
func resolvedAdmin(resolved *discordgo.ApplicationCommandInteractionDataResolved, targetID string) (isAdmin, ok bool) {
	if resolved == nil {
		return false, false
	}
	member, present := resolved.Members[targetID]
	if !present {
		return false, false
	}
	return member.Permissions&discordgo.PermissionAdministrator != 0, true
}

func hasPermission(interaction *discordgo.InteractionCreate, permission int64) bool {
	return interaction.Member != nil && interaction.Member.Permissions&permission != 0
}

func progressBar(value, total, width int) string {
	if total <= 0 {
		total = 1
	}
	filled := value * width / total
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" && !strings.Contains(trimmed, "\n") {
			out = append(out, trimmed)
		}
	}
	return out
}
