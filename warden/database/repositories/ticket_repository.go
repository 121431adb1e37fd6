package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/wardenbot/warden/warden/database/models"
)

var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrTicketAlreadyClosed = errors.New("ticket already closed")
)

type TicketRepository interface {
	Create(ctx context.Context, ticket *models.Ticket) error
	GetOpenByOwner(ctx context.Context, ownerID, guildID string) (*models.Ticket, error)
	GetOpenByChannel(ctx context.Context, channelID string) (*models.Ticket, error)
	Close(ctx context.Context, ticketID, closedBy string) error
}

type ticketRepository struct {
	db *bun.DB
}

func NewTicketRepository(db *bun.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *models.Ticket) error {
	ticket.Status = models.TicketStatusOpen
	ticket.CreatedAt = time.Now()

	if _, err := r.db.NewInsert().Model(ticket).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}
	return nil
}

func (r *ticketRepository) GetOpenByOwner(ctx context.Context, ownerID, guildID string) (*models.Ticket, error) {
	ticket := new(models.Ticket)
	err := r.db.NewSelect().
		Model(ticket).
		Where("owner_id = ?", ownerID).
		Where("guild_id = ?", guildID).
		Where("status = ?", models.TicketStatusOpen).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open ticket: %w", err)
	}
	return ticket, nil
}

func (r *ticketRepository) GetOpenByChannel(ctx context.Context, channelID string) (*models.Ticket, error) {
	ticket := new(models.Ticket)
	err := r.db.NewSelect().
		Model(ticket).
		Where("channel_id = ?", channelID).
		Where("status = ?", models.TicketStatusOpen).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket by channel: %w", err)
	}
	return ticket, nil
}

// Close marks an open ticket closed. The status guard in the WHERE clause
// makes the transition atomic: a concurrent close loses and gets
// ErrTicketAlreadyClosed.
func (r *ticketRepository) Close(ctx context.Context, ticketID, closedBy string) error {
	result, err := r.db.NewUpdate().
		Model((*models.Ticket)(nil)).
		Set("status = ?", models.TicketStatusClosed).
		Set("closed_at = ?", time.Now()).
		Set("closed_by = ?", closedBy).
		Where("ticket_id = ?", ticketID).
		Where("status = ?", models.TicketStatusOpen).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to close ticket: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTicketAlreadyClosed
	}
	return nil
}
