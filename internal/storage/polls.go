package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type Poll struct {
	ID        string
	GuildID   string
	ChannelID string
	CreatorID string
	Question  string
	Options   []string
	CreatedAt time.Time
}

type PollResult struct {
	Option string
	Votes  int
}

var ErrPollNotFound = errors.New("poll not found")

// options are stored newline-joined; option text with newlines is rejected
// upstream by the command handler.
func (s *Store) CreatePoll(ctx context.Context, poll Poll) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO polls (id, guild_id, channel_id, creator_id, question, options, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, poll.ID, poll.GuildID, poll.ChannelID, poll.CreatorID, poll.Question,
		strings.Join(poll.Options, "\n"), time.Now().Unix())
	return err
}

func (s *Store) GetPoll(ctx context.Context, id string) (Poll, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, guild_id, channel_id, creator_id, question, options, created_at
		FROM polls WHERE id = ?
	`, id)

	var poll Poll
	var options string
	var created int64
	err := row.Scan(&poll.ID, &poll.GuildID, &poll.ChannelID, &poll.CreatorID, &poll.Question, &options, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Poll{}, ErrPollNotFound
		}
		return Poll{}, err
	}
	poll.Options = strings.Split(options, "\n")
	poll.CreatedAt = time.Unix(created, 0)
	return poll, nil
}

// Vote records a user's choice; a revote replaces the previous one.
func (s *Store) Vote(ctx context.Context, pollID, userID string, optionIndex int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO poll_votes (poll_id, user_id, option_index, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(poll_id, user_id) DO UPDATE SET
			option_index = excluded.option_index,
			created_at = excluded.created_at
	`, pollID, userID, optionIndex, time.Now().Unix())
	return err
}

func (s *Store) PollResults(ctx context.Context, pollID string) ([]PollResult, error) {
	poll, err := s.GetPoll(ctx, pollID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT option_index, COUNT(*) FROM poll_votes
		WHERE poll_id = ?
		GROUP BY option_index
	`, pollID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var index, votes int
		if err := rows.Scan(&index, &votes); err != nil {
			return nil, err
		}
		counts[index] = votes
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	results := make([]PollResult, len(poll.Options))
	for i, option := range poll.Options {
		results[i] = PollResult{Option: option, Votes: counts[i]}
	}
	return results, nil
}
