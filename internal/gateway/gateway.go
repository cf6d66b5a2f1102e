package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Outcome classification for moderation calls. Handlers treat all three as
// non-fatal: permission failures are surfaced, not-found is a benign no-op,
// transient failures abandon the action for this event.
var (
	ErrPermissionDenied = errors.New("gateway: permission denied")
	ErrNotFound         = errors.New("gateway: not found")
	ErrTransient        = errors.New("gateway: transient failure")
)

type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	Content   string
	Timestamp time.Time
}

// Gateway is the platform surface the moderation core needs. The bot wires a
// Discord-backed implementation; tests use fakes.
type Gateway interface {
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	TimeoutUser(ctx context.Context, guildID, userID string, until time.Time, reason string) error
	BanUser(ctx context.Context, guildID, userID, reason string) error
	RecentMessages(ctx context.Context, channelID string, limit int) ([]Message, error)
	Notify(ctx context.Context, channelID, title, description string) error
}

func IsPermissionDenied(err error) bool { return errors.Is(err, ErrPermissionDenied) }
func IsNotFound(err error) bool         { return errors.Is(err, ErrNotFound) }
func IsTransient(err error) bool        { return errors.Is(err, ErrTransient) }

func permissionDenied(op string) error {
	return fmt.Errorf("%s: %w", op, ErrPermissionDenied)
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, ErrNotFound)
}

func transient(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrTransient, err)
}
