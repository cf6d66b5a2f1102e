package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"mmbot/internal/modules/audit"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

func (b *Bot) handleComponent(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	customID := interaction.MessageComponentData().CustomID
	switch {
	case strings.HasPrefix(customID, "poll:"):
		b.handlePollVote(ctx, session, interaction, customID)
	case customID == "ticket:create":
		b.handleTicketCreate(ctx, session, interaction)
	case customID == "ticket:close":
		b.handleTicketClose(ctx, session, interaction)
	case strings.HasPrefix(customID, "giveaway:"):
		b.handleGiveawayJoin(ctx, session, interaction, customID)
	}
}

func (b *Bot) handlePollVote(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, customID string) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 {
		return
	}
	pollID := parts[1]
	optionIndex, err := strconv.Atoi(parts[2])
	if err != nil {
		return
	}

	poll, err := b.store.GetPoll(ctx, pollID)
	if err != nil || optionIndex < 0 || optionIndex >= len(poll.Options) {
		b.respondError(session, interaction, "この投票は無効です。")
		return
	}
	if err := b.store.Vote(ctx, pollID, interaction.Member.User.ID, optionIndex); err != nil {
		b.respondError(session, interaction, "投票に失敗しました。")
		return
	}
	embed := b.commandEmbed("✅ 投票しました", "**"+poll.Options[optionIndex]+"** に投票しました。", b.cfg.Notifications.EmbedColors.Success, nil)
	b.respondEmbed(session, interaction, embed, true)
}

func (b *Bot) handleTicketCreate(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	creator := interaction.Member.User

	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   interaction.GuildID, // @everyone role shares the guild id
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    creator.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionReadMessageHistory,
		},
		{
			ID:    session.State.User.ID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionManageChannels,
		},
	}
	channel, err := session.GuildChannelCreateComplex(interaction.GuildID, discordgo.GuildChannelCreateData{
		Name:                 "ticket-" + strings.ToLower(creator.Username),
		Type:                 discordgo.ChannelTypeGuildText,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		b.logger.Warn("ticket channel create failed", zap.String("guild_id", interaction.GuildID), zap.Error(err))
		b.respondError(session, interaction, "チケットチャンネルの作成に失敗しました。")
		return
	}

	id, err := b.store.CreateTicket(ctx, interaction.GuildID, channel.ID, creator.ID)
	if err != nil {
		b.respondError(session, interaction, "チケットの登録に失敗しました。")
		_, _ = session.ChannelDelete(channel.ID)
		return
	}

	embed := b.commandEmbed(fmt.Sprintf("🎫 チケット #%d", id),
		fmt.Sprintf("<@%s> さんのチケットです。対応完了後、下のボタンで閉じてください。", creator.ID),
		b.cfg.Notifications.EmbedColors.Action, nil)
	_, err = session.ChannelMessageSendComplex(channel.ID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: buttonRows([]discordgo.MessageComponent{discordgo.Button{
			Label:    "🔒 チケットを閉じる",
			Style:    discordgo.DangerButton,
			CustomID: "ticket:close",
		}}),
	})
	if err != nil {
		b.logger.Debug("ticket greeting failed", zap.String("channel_id", channel.ID), zap.Error(err))
	}

	b.audit.Log(ctx, audit.LevelInfo, interaction.GuildID, creator.ID, "ticket_opened", fmt.Sprintf("ticket #%d", id))
	b.respondEmbed(session, interaction,
		b.commandEmbed("🎫 チケットを作成しました", "<#"+channel.ID+">", b.cfg.Notifications.EmbedColors.Success, nil), true)
}

// handleTicketClose resolves the ticket from the channel the button lives in,
// so stale buttons in a recycled channel cannot close someone else's ticket.
func (b *Bot) handleTicketClose(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	ticket, err := b.store.TicketByChannel(ctx, interaction.ChannelID)
	if err != nil {
		b.respondError(session, interaction, "このチャンネルに対応する未対応チケットがありません。")
		return
	}
	if err := b.store.CloseTicket(ctx, ticket.ID); err != nil {
		b.respondError(session, interaction, "チケットは既に閉じられています。")
		return
	}
	b.audit.Log(ctx, audit.LevelInfo, interaction.GuildID, interaction.Member.User.ID, "ticket_closed", fmt.Sprintf("ticket #%d", ticket.ID))
	b.respondEmbed(session, interaction,
		b.commandEmbed("🔒 チケットを閉じました", fmt.Sprintf("`#%d`", ticket.ID), b.cfg.Notifications.EmbedColors.Success, nil), true)

	if _, err := session.ChannelDelete(ticket.ChannelID); err != nil {
		b.logger.Debug("ticket channel delete failed", zap.String("channel_id", ticket.ChannelID), zap.Error(err))
	}
}

func (b *Bot) handleGiveawayJoin(ctx context.Context, session *discordgo.Session, interaction *discordgo.InteractionCreate, customID string) {
	giveawayID := strings.TrimPrefix(customID, "giveaway:")
	giveaway, err := b.store.GetGiveaway(ctx, giveawayID)
	if err != nil || giveaway.Finished {
		b.respondError(session, interaction, "このGiveawayは終了しています。")
		return
	}
	if err := b.store.JoinGiveaway(ctx, giveawayID, interaction.Member.User.ID); err != nil {
		b.respondError(session, interaction, "参加に失敗しました。")
		return
	}
	embed := b.commandEmbed("🎉 参加しました", "**"+giveaway.Prize+"** の抽選に参加しました。", b.cfg.Notifications.EmbedColors.Success, nil)
	b.respondEmbed(session, interaction, embed, true)
}

func (b *Bot) commandEmbed(title, description string, color int, fields []*discordgo.MessageEmbedField) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Fields:      fields,
	}
}

func (b *Bot) respondEmbed(session *discordgo.Session, interaction *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := session.InteractionRespond(interaction.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		b.logger.Debug("interaction respond failed", zap.Error(err))
	}
}

func (b *Bot) respondError(session *discordgo.Session, interaction *discordgo.InteractionCreate, message string) {
	embed := b.commandEmbed("❌ エラー", message, b.cfg.Notifications.EmbedColors.Error, nil)
	b.respondEmbed(session, interaction, embed, true)
}

// buttonRows chunks buttons into action rows of at most five, the platform's
// per-row limit.
func buttonRows(buttons []discordgo.MessageComponent) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	for len(buttons) > 0 {
		size := len(buttons)
		if size > 5 {
			size = 5
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons[:size]})
		buttons = buttons[size:]
	}
	return rows
}
