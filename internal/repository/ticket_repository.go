package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/queue-service/internal/domain"
)

// DefaultHistoryLimit caps history queries when the caller omits a limit.
const DefaultHistoryLimit = 10

// issueRetries bounds how often a ticket-number collision between concurrent
// issuances is retried before the insert is reported as failed.
const issueRetries = 5

// TicketRepository is the queue engine: it owns every write to the tickets
// table and guarantees unique, gap-free numbering and FIFO call order.
type TicketRepository interface {
	Issue(ctx context.Context) (*domain.Ticket, error)
	CallNext(ctx context.Context) (*domain.Ticket, error)
	Status(ctx context.Context) (domain.QueueStatus, error)
	CurrentlyCalled(ctx context.Context) (*domain.Ticket, error)
	History(ctx context.Context, limit int) ([]domain.Ticket, error)
	Reset(ctx context.Context) (int64, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

// Issue allocates the next ticket number and inserts the ticket atomically.
// The read-compute-insert runs as a single statement; the UNIQUE constraint
// on ticket_number turns a concurrent double-allocation into a violation,
// which is retried with a freshly computed number. Successful issuances
// therefore produce contiguous numbers with no duplicates and no gaps.
func (r *ticketRepository) Issue(ctx context.Context) (*domain.Ticket, error) {
	const query = `
        INSERT INTO tickets (ticket_number, issued_at)
        SELECT COALESCE(MAX(ticket_number), 0) + 1, NOW() FROM tickets
        RETURNING id, ticket_number, issued_at, attended`

	var lastErr error
	for attempt := 0; attempt < issueRetries; attempt++ {
		var ticket domain.Ticket
		err := r.pool.QueryRow(ctx, query).Scan(
			&ticket.ID,
			&ticket.TicketNumber,
			&ticket.IssuedAt,
			&ticket.Attended,
		)
		if err == nil {
			return &ticket, nil
		}
		if !isUniqueViolation(err) {
			return nil, fmt.Errorf("issue ticket: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("issue ticket: number contention persisted: %w", lastErr)
}

// CallNext flips the earliest waiting ticket to attended and returns it.
// The locking subquery and the update run as one statement, so two
// concurrent callers can never attend the same ticket; SKIP LOCKED lets the
// loser move on to the next waiting row instead of double-updating.
func (r *ticketRepository) CallNext(ctx context.Context) (*domain.Ticket, error) {
	const query = `
        UPDATE tickets SET attended = TRUE
        WHERE attended = FALSE AND id = (
            SELECT id FROM tickets
            WHERE attended = FALSE
            ORDER BY issued_at ASC, id ASC
            FOR UPDATE SKIP LOCKED
            LIMIT 1
        )
        RETURNING id, ticket_number, issued_at, attended`

	var ticket domain.Ticket
	err := r.pool.QueryRow(ctx, query).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.IssuedAt,
		&ticket.Attended,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQueueEmpty
		}
		return nil, fmt.Errorf("call next ticket: %w", err)
	}
	return &ticket, nil
}

// Status reports queue depth from a single point-in-time query.
func (r *ticketRepository) Status(ctx context.Context) (domain.QueueStatus, error) {
	const query = `
        SELECT COUNT(*) FILTER (WHERE attended = FALSE),
               COUNT(*),
               COALESCE(MAX(ticket_number), 0)
        FROM tickets`

	var status domain.QueueStatus
	err := r.pool.QueryRow(ctx, query).Scan(
		&status.WaitingTickets,
		&status.TotalIssued,
		&status.HighestTicket,
	)
	if err != nil {
		return domain.QueueStatus{}, fmt.Errorf("queue status: %w", err)
	}
	return status, nil
}

// CurrentlyCalled returns the most recently attended ticket, nil when no
// ticket has been attended yet.
func (r *ticketRepository) CurrentlyCalled(ctx context.Context) (*domain.Ticket, error) {
	const query = `
        SELECT id, ticket_number, issued_at, attended
        FROM tickets
        WHERE attended = TRUE
        ORDER BY id DESC
        LIMIT 1`

	var ticket domain.Ticket
	err := r.pool.QueryRow(ctx, query).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.IssuedAt,
		&ticket.Attended,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("currently called: %w", err)
	}
	return &ticket, nil
}

// History lists the most recently attended tickets, newest first.
func (r *ticketRepository) History(ctx context.Context, limit int) ([]domain.Ticket, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	const query = `
        SELECT id, ticket_number, issued_at, attended
        FROM tickets
        WHERE attended = TRUE
        ORDER BY id DESC
        LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ticket history: %w", err)
	}
	defer rows.Close()
	return scanTickets(rows)
}

// Reset marks every waiting ticket attended in one statement. History rows
// are untouched; a second call in a row affects zero rows.
func (r *ticketRepository) Reset(ctx context.Context) (int64, error) {
	const query = `UPDATE tickets SET attended = TRUE WHERE attended = FALSE`

	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("reset queue: %w", err)
	}
	return cmd.RowsAffected(), nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TicketNumber,
			&ticket.IssuedAt,
			&ticket.Attended,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
