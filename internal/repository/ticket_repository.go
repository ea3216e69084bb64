package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/contact-gateway/internal/domain"
)

// TicketRepository defines persistence access for tickets.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, operatorID *string) (*domain.Ticket, error)
	ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository returns a Postgres-backed implementation.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (contact_id, operator_id, status, last_message)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		ticket.ContactID,
		ticket.OperatorID,
		ticket.Status,
		ticket.LastMessage,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	const query = `
        SELECT id, contact_id, operator_id, status, last_message, created_at, updated_at
        FROM tickets WHERE id=$1`

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.ContactID,
		&ticket.OperatorID,
		&ticket.Status,
		&ticket.LastMessage,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, operatorID *string) (*domain.Ticket, error) {
	const query = `
        UPDATE tickets SET status=$1, operator_id=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING id, contact_id, operator_id, status, last_message, created_at, updated_at`

	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, status, operatorID, id).Scan(
		&ticket.ID,
		&ticket.ContactID,
		&ticket.OperatorID,
		&ticket.Status,
		&ticket.LastMessage,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	const query = `
        SELECT id, contact_id, operator_id, status, last_message, created_at, updated_at
        FROM tickets WHERE status=$1 ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []domain.Ticket{}
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.ContactID,
			&ticket.OperatorID,
			&ticket.Status,
			&ticket.LastMessage,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}
	return tickets, rows.Err()
}
