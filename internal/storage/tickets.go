package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)

type Ticket struct {
	ID        int64
	GuildID   string
	ChannelID string
	CreatorID string
	Status    string
	CreatedAt time.Time
	ClosedAt  *time.Time
}

func (s *Store) CreateTicket(ctx context.Context, guildID, channelID, creatorID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO tickets (guild_id, channel_id, creator_id, status, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, guildID, channelID, creatorID, TicketOpen, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *Store) GetTicket(ctx context.Context, id int64) (Ticket, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, guild_id, channel_id, creator_id, status, created_at, closed_at
		FROM tickets WHERE id = ?
	`, id)
	return scanTicket(row)
}

func (s *Store) TicketByChannel(ctx context.Context, channelID string) (Ticket, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, guild_id, channel_id, creator_id, status, created_at, closed_at
		FROM tickets WHERE channel_id = ? AND status = ?
	`, channelID, TicketOpen)
	return scanTicket(row)
}

var ErrTicketNotFound = errors.New("ticket not found")

func scanTicket(row *sql.Row) (Ticket, error) {
	var ticket Ticket
	var created int64
	var closed sql.NullInt64
	err := row.Scan(&ticket.ID, &ticket.GuildID, &ticket.ChannelID, &ticket.CreatorID, &ticket.Status, &created, &closed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Ticket{}, ErrTicketNotFound
		}
		return Ticket{}, err
	}
	ticket.CreatedAt = time.Unix(created, 0)
	if closed.Valid {
		value := time.Unix(closed.Int64, 0)
		ticket.ClosedAt = &value
	}
	return ticket, nil
}

func (s *Store) CloseTicket(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tickets SET status = ?, closed_at = ? WHERE id = ? AND status = ?
	`, TicketClosed, time.Now().Unix(), id, TicketOpen)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTicketNotFound
	}
	return nil
}

func (s *Store) ListTickets(ctx context.Context, guildID, status string) ([]Ticket, error) {
	query := `
		SELECT id, guild_id, channel_id, creator_id, status, created_at, closed_at
		FROM tickets WHERE guild_id = ?`
	args := []any{guildID}
	if status != "" && status != "all" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []Ticket
	for rows.Next() {
		var ticket Ticket
		var created int64
		var closed sql.NullInt64
		if err := rows.Scan(&ticket.ID, &ticket.GuildID, &ticket.ChannelID, &ticket.CreatorID, &ticket.Status, &created, &closed); err != nil {
			return nil, err
		}
		ticket.CreatedAt = time.Unix(created, 0)
		if closed.Valid {
			value := time.Unix(closed.Int64, 0)
			ticket.ClosedAt = &value
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}
