package storage

import (
	"context"
	"database/sql"
	"errors"
)

type UserLevel struct {
	GuildID string
	UserID  string
	Level   int
	XP      int
	TotalXP int
}

func (s *Store) GetLevel(ctx context.Context, guildID, userID string) (UserLevel, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT level, xp, total_xp FROM user_levels
		WHERE guild_id = ? AND user_id = ?
	`, guildID, userID)

	result := UserLevel{GuildID: guildID, UserID: userID, Level: 1}
	err := row.Scan(&result.Level, &result.XP, &result.TotalXP)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		return UserLevel{}, err
	}
	return result, nil
}

// SaveLevel upserts a user's level row.
func (s *Store) SaveLevel(ctx context.Context, level UserLevel) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_levels (guild_id, user_id, level, xp, total_xp)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, user_id) DO UPDATE SET
			level = excluded.level,
			xp = excluded.xp,
			total_xp = excluded.total_xp
	`, level.GuildID, level.UserID, level.Level, level.XP, level.TotalXP)
	return err
}

func (s *Store) TopLevels(ctx context.Context, guildID string, limit int) ([]UserLevel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, level, xp, total_xp FROM user_levels
		WHERE guild_id = ?
		ORDER BY total_xp DESC
		LIMIT ?
	`, guildID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var levels []UserLevel
	for rows.Next() {
		level := UserLevel{GuildID: guildID}
		if err := rows.Scan(&level.UserID, &level.Level, &level.XP, &level.TotalXP); err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, rows.Err()
}
