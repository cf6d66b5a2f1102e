package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

type Store struct {
	db *sql.DB
}

type GuildSettings struct {
	GuildID              string
	LogChannel           string
	QuoteChannel         string
	QuoteIntervalSeconds int
}

type AuditLog struct {
	ID        int64
	GuildID   string
	UserID    string
	Level     string
	Event     string
	Details   string
	CreatedAt time.Time
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// sqlite allows one writer; the ladder already serializes per key, this
	// keeps the driver from tripping over itself under load.
	db.SetMaxOpenConns(1)
	return &Store{db: db}, nil
}

func (s *Store) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *Store) Migrate() error {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		return err
	}

	var files []string
	for _, entry := range entries {
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := migrations.ReadFile(path.Join("migrations", file))
		if err != nil {
			return err
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			if isIgnorableMigrationError(err) {
				continue
			}
			return fmt.Errorf("migration %s failed: %w", file, err)
		}
	}
	return nil
}

func isIgnorableMigrationError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate column")
}

func (s *Store) GetGuildSettings(ctx context.Context, guildID string) (GuildSettings, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT log_channel, quote_channel, quote_interval_seconds
		FROM guild_settings WHERE guild_id = ?`, guildID)

	result := GuildSettings{GuildID: guildID}
	err := row.Scan(&result.LogChannel, &result.QuoteChannel, &result.QuoteIntervalSeconds)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return result, nil
		}
		return GuildSettings{}, err
	}
	return result, nil
}

func (s *Store) UpsertGuildSettings(ctx context.Context, settings GuildSettings) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO guild_settings (guild_id, log_channel, quote_channel, quote_interval_seconds)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(guild_id) DO UPDATE SET
			log_channel = excluded.log_channel,
			quote_channel = excluded.quote_channel,
			quote_interval_seconds = excluded.quote_interval_seconds
	`, settings.GuildID, settings.LogChannel, settings.QuoteChannel, settings.QuoteIntervalSeconds)
	return err
}

// QuoteBroadcasts lists guilds with a configured quote interval, used to
// resume broadcast tasks after a restart.
func (s *Store) QuoteBroadcasts(ctx context.Context) ([]GuildSettings, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT guild_id, log_channel, quote_channel, quote_interval_seconds
		FROM guild_settings
		WHERE quote_channel != '' AND quote_interval_seconds > 0
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var settings []GuildSettings
	for rows.Next() {
		var item GuildSettings
		if err := rows.Scan(&item.GuildID, &item.LogChannel, &item.QuoteChannel, &item.QuoteIntervalSeconds); err != nil {
			return nil, err
		}
		settings = append(settings, item)
	}
	return settings, rows.Err()
}

func (s *Store) AddAuditLog(ctx context.Context, log AuditLog) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (guild_id, user_id, level, event, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, log.GuildID, log.UserID, log.Level, log.Event, log.Details, log.CreatedAt.Unix())
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, guildID string, since time.Time) ([]AuditLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, user_id, level, event, details, created_at
		FROM audit_logs
		WHERE guild_id = ? AND created_at >= ?
		ORDER BY created_at DESC
	`, guildID, since.Unix())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []AuditLog
	for rows.Next() {
		var log AuditLog
		var created int64
		if err := rows.Scan(&log.ID, &log.GuildID, &log.UserID, &log.Level, &log.Event, &log.Details, &created); err != nil {
			return nil, err
		}
		log.CreatedAt = time.Unix(created, 0)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
