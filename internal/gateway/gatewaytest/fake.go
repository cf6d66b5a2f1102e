// Package gatewaytest provides a recording Gateway fake for tests.
package gatewaytest

import (
	"context"
	"sync"
	"time"

	"mmbot/internal/gateway"
)

type TimeoutCall struct {
	GuildID string
	UserID  string
	Until   time.Time
	Reason  string
}

type BanCall struct {
	GuildID string
	UserID  string
	Reason  string
}

type NotifyCall struct {
	ChannelID   string
	Title       string
	Description string
}

// Fake records every call and returns configured errors.
type Fake struct {
	mu sync.Mutex

	History []gateway.Message

	DeleteErr  error
	TimeoutErr error
	BanErr     error
	HistoryErr error
	NotifyErr  error

	Deleted  []string
	Timeouts []TimeoutCall
	Bans     []BanCall
	Notifies []NotifyCall

	// Order records call kinds ("delete", "timeout", "ban", "notify") in
	// the sequence they succeeded.
	Order []string
}

func New() *Fake {
	return &Fake{}
}

func (f *Fake) DeleteMessage(_ context.Context, _, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Deleted = append(f.Deleted, messageID)
	f.Order = append(f.Order, "delete")
	return nil
}

func (f *Fake) TimeoutUser(_ context.Context, guildID, userID string, until time.Time, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.TimeoutErr != nil {
		return f.TimeoutErr
	}
	f.Timeouts = append(f.Timeouts, TimeoutCall{GuildID: guildID, UserID: userID, Until: until, Reason: reason})
	f.Order = append(f.Order, "timeout")
	return nil
}

func (f *Fake) BanUser(_ context.Context, guildID, userID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.BanErr != nil {
		return f.BanErr
	}
	f.Bans = append(f.Bans, BanCall{GuildID: guildID, UserID: userID, Reason: reason})
	f.Order = append(f.Order, "ban")
	return nil
}

func (f *Fake) RecentMessages(_ context.Context, _ string, _ int) ([]gateway.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.HistoryErr != nil {
		return nil, f.HistoryErr
	}
	out := make([]gateway.Message, len(f.History))
	copy(out, f.History)
	return out, nil
}

func (f *Fake) Notify(_ context.Context, channelID, title, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NotifyErr != nil {
		return f.NotifyErr
	}
	f.Notifies = append(f.Notifies, NotifyCall{ChannelID: channelID, Title: title, Description: description})
	f.Order = append(f.Order, "notify")
	return nil
}
