package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ericlong128/reimbursement-service/internal/domain"
)

// ErrVersionConflict is returned when a status write loses a concurrent
// transition race: the stored version no longer matches the one read.
var ErrVersionConflict = errors.New("ticket version conflict")

// TicketRepository encapsulates ticket persistence. Reads distinguish "no
// rows" (nil entity or empty slice, nil error) from infrastructure failure
// (non-nil error).
type TicketRepository interface {
	Put(ctx context.Context, ticket *domain.Ticket) error
	ListByAuthor(ctx context.Context, userID string) ([]domain.Ticket, error)
	ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error)
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus, expectedVersion int64) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

// Put upserts a ticket by its id with replace semantics.
func (r *ticketRepository) Put(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_id, user_id, description, amount, type, status, created, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        ON CONFLICT (ticket_id) DO UPDATE SET
            description=EXCLUDED.description, amount=EXCLUDED.amount, type=EXCLUDED.type,
            status=EXCLUDED.status, version=EXCLUDED.version`
	_, err := r.pool.Exec(ctx, query,
		ticket.TicketID,
		ticket.UserID,
		ticket.Description,
		ticket.Amount,
		ticket.Type,
		ticket.Status,
		ticket.Created,
		ticket.Version,
	)
	return err
}

func (r *ticketRepository) ListByAuthor(ctx context.Context, userID string) ([]domain.Ticket, error) {
	const query = `
        SELECT ticket_id, user_id, description, amount, type, status, created, version
        FROM tickets WHERE user_id=$1 ORDER BY created DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	const query = `
        SELECT ticket_id, user_id, description, amount, type, status, created, version
        FROM tickets WHERE status=$1 ORDER BY created DESC`
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	const query = `
        SELECT ticket_id, user_id, description, amount, type, status, created, version
        FROM tickets WHERE ticket_id=$1`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&ticket.TicketID,
		&ticket.UserID,
		&ticket.Description,
		&ticket.Amount,
		&ticket.Type,
		&ticket.Status,
		&ticket.Created,
		&ticket.Version,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}

// UpdateStatus writes the new status only when the stored version still
// matches expectedVersion, bumping the version on success.
func (r *ticketRepository) UpdateStatus(ctx context.Context, ticketID string, status domain.TicketStatus, expectedVersion int64) (*domain.Ticket, error) {
	const query = `
        UPDATE tickets SET status=$1, version=version+1
        WHERE ticket_id=$2 AND version=$3
        RETURNING ticket_id, user_id, description, amount, type, status, created, version`
	var ticket domain.Ticket
	if err := r.pool.QueryRow(ctx, query, status, ticketID, expectedVersion).Scan(
		&ticket.TicketID,
		&ticket.UserID,
		&ticket.Description,
		&ticket.Amount,
		&ticket.Type,
		&ticket.Status,
		&ticket.Created,
		&ticket.Version,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVersionConflict
		}
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.TicketID,
			&ticket.UserID,
			&ticket.Description,
			&ticket.Amount,
			&ticket.Type,
			&ticket.Status,
			&ticket.Created,
			&ticket.Version,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
