package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Discord adapts a discordgo session to the Gateway interface, translating
// REST failures into the core error taxonomy.
type Discord struct {
	session    *discordgo.Session
	embedColor int
}

func NewDiscord(session *discordgo.Session, embedColor int) *Discord {
	return &Discord{session: session, embedColor: embedColor}
}

func (d *Discord) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	err := d.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
	return classify("delete message", err)
}

func (d *Discord) TimeoutUser(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	_ = reason // discord timeouts carry no reason field
	err := d.session.GuildMemberTimeout(guildID, userID, &until, discordgo.WithContext(ctx))
	return classify("timeout user", err)
}

func (d *Discord) BanUser(ctx context.Context, guildID, userID, reason string) error {
	err := d.session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx))
	return classify("ban user", err)
}

func (d *Discord) RecentMessages(ctx context.Context, channelID string, limit int) ([]Message, error) {
	messages, err := d.session.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, classify("channel history", err)
	}
	out := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg == nil || msg.Author == nil {
			continue
		}
		out = append(out, Message{
			ID:        msg.ID,
			ChannelID: msg.ChannelID,
			AuthorID:  msg.Author.ID,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}
	return out, nil
}

func (d *Discord) Notify(ctx context.Context, channelID, title, description string) error {
	embed := &discordgo.MessageEmbed{Title: title, Description: description, Color: d.embedColor}
	_, err := d.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	return classify("notify channel", err)
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusForbidden:
			return permissionDenied(op)
		case http.StatusNotFound:
			return notFound(op)
		}
	}
	return transient(op, err)
}
