package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Giveaway struct {
	ID        string
	GuildID   string
	ChannelID string
	MessageID string
	Prize     string
	EndsAt    time.Time
	Finished  bool
}

var ErrGiveawayNotFound = errors.New("giveaway not found")

func (s *Store) CreateGiveaway(ctx context.Context, giveaway Giveaway) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO giveaways (id, guild_id, channel_id, message_id, prize, ends_at, finished)
		VALUES (?, ?, ?, ?, ?, ?, 0)
	`, giveaway.ID, giveaway.GuildID, giveaway.ChannelID, giveaway.MessageID, giveaway.Prize, giveaway.EndsAt.Unix())
	return err
}

func (s *Store) GetGiveaway(ctx context.Context, id string) (Giveaway, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, guild_id, channel_id, message_id, prize, ends_at, finished
		FROM giveaways WHERE id = ?
	`, id)

	var giveaway Giveaway
	var ends int64
	var finished int
	err := row.Scan(&giveaway.ID, &giveaway.GuildID, &giveaway.ChannelID, &giveaway.MessageID, &giveaway.Prize, &ends, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Giveaway{}, ErrGiveawayNotFound
		}
		return Giveaway{}, err
	}
	giveaway.EndsAt = time.Unix(ends, 0)
	giveaway.Finished = finished == 1
	return giveaway, nil
}

// JoinGiveaway records an entrant; joining twice is a no-op.
func (s *Store) JoinGiveaway(ctx context.Context, giveawayID, userID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO giveaway_entries (giveaway_id, user_id, created_at)
		VALUES (?, ?, ?)
	`, giveawayID, userID, time.Now().Unix())
	return err
}

func (s *Store) GiveawayEntrants(ctx context.Context, giveawayID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM giveaway_entries WHERE giveaway_id = ? ORDER BY created_at
	`, giveawayID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entrants []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		entrants = append(entrants, userID)
	}
	return entrants, rows.Err()
}

func (s *Store) FinishGiveaway(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE giveaways SET finished = 1 WHERE id = ?`, id)
	return err
}
