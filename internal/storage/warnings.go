package storage

import (
	"context"
	"time"
)

// Warning is one entry in a user's append-only warning history.
type Warning struct {
	Reason      string
	ModeratorID string
	CreatedAt   time.Time
}

// WarningRecord is the persisted warning state for one (guild, user) pair.
// Count always equals len(History); records are never deleted.
type WarningRecord struct {
	GuildID string
	UserID  string
	Count   int
	History []Warning
}

// WarningStore is the persistence contract the escalation ladder depends on.
// A missing record loads as a zero-count record.
type WarningStore interface {
	Warnings(ctx context.Context, guildID, userID string) (WarningRecord, error)
	AppendWarning(ctx context.Context, guildID, userID, reason, moderatorID string) (int, error)
}

func (s *Store) Warnings(ctx context.Context, guildID, userID string) (WarningRecord, error) {
	record := WarningRecord{GuildID: guildID, UserID: userID}

	rows, err := s.db.QueryContext(ctx, `
		SELECT reason, moderator_id, created_at
		FROM user_warnings
		WHERE guild_id = ? AND user_id = ?
		ORDER BY id ASC
	`, guildID, userID)
	if err != nil {
		return WarningRecord{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var warning Warning
		var created int64
		if err := rows.Scan(&warning.Reason, &warning.ModeratorID, &created); err != nil {
			return WarningRecord{}, err
		}
		warning.CreatedAt = time.Unix(created, 0)
		record.History = append(record.History, warning)
	}
	if err := rows.Err(); err != nil {
		return WarningRecord{}, err
	}
	record.Count = len(record.History)
	return record, nil
}

// AppendWarning inserts a history row and returns the new count, both inside
// one transaction so concurrent warns for the same pair cannot lose updates.
func (s *Store) AppendWarning(ctx context.Context, guildID, userID, reason, moderatorID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_warnings (guild_id, user_id, reason, moderator_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, guildID, userID, reason, moderatorID, time.Now().Unix())
	if err != nil {
		return 0, err
	}

	var count int
	row := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_warnings WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)
	if err = row.Scan(&count); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return count, nil
}
