package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minijira/issue-tracker/internal/domain"
)

// TicketChanges is a partial update. Nil pointers leave the column alone.
// AssigneeSet distinguishes "clear the assignee" (AssigneeSet with a nil
// AssigneeID) from "leave it unchanged".
type TicketChanges struct {
	Title       *string
	Description *string
	Priority    *domain.TicketPriority
	Status      *domain.TicketStatus
	AssigneeSet bool
	AssigneeID  *int64
	ProjectID   *int64
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	// Update applies changes in one statement and bumps updated_at to at,
	// or just past the previous value when at is not later.
	Update(ctx context.Context, id int64, changes TicketChanges, at time.Time) (*domain.Ticket, error)
	Delete(ctx context.Context, id int64) (*domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, project_id, assignee_id, priority, status, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, project_id, assignee_id, priority, status, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.ProjectID,
		ticket.AssigneeID,
		string(ticket.Priority),
		string(ticket.Status),
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Scan(&ticket.ID)
	return mapPgError(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses, args := filter.whereClauses()
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY updated_at DESC, id DESC`,
		ticketColumns, strings.Join(clauses, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) Update(ctx context.Context, id int64, changes TicketChanges, at time.Time) (*domain.Ticket, error) {
	sets, args := changes.setClauses()
	args = append(args, at)
	sets = append(sets, fmt.Sprintf("updated_at=GREATEST($%d, updated_at + INTERVAL '1 microsecond')", len(args)))
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumns)
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapPgError(err)
	}
	return ticket, nil
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := `DELETE FROM tickets WHERE id=$1 RETURNING ` + ticketColumns
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return ticket, nil
}

func (c TicketChanges) setClauses() ([]string, []any) {
	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	if c.Title != nil {
		add("title", *c.Title)
	}
	if c.Description != nil {
		add("description", *c.Description)
	}
	if c.Priority != nil {
		add("priority", string(*c.Priority))
	}
	if c.Status != nil {
		add("status", string(*c.Status))
	}
	if c.AssigneeSet {
		add("assignee_id", c.AssigneeID)
	}
	if c.ProjectID != nil {
		add("project_id", *c.ProjectID)
	}
	return sets, args
}

// Apply mutates t in place with the supplied changes.
func (c TicketChanges) Apply(t *domain.Ticket) {
	if c.Title != nil {
		t.Title = *c.Title
	}
	if c.Description != nil {
		t.Description = *c.Description
	}
	if c.Priority != nil {
		t.Priority = *c.Priority
	}
	if c.Status != nil {
		t.Status = *c.Status
	}
	if c.AssigneeSet {
		if c.AssigneeID == nil {
			t.AssigneeID = nil
		} else {
			id := *c.AssigneeID
			t.AssigneeID = &id
		}
	}
	if c.ProjectID != nil {
		t.ProjectID = *c.ProjectID
	}
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket   domain.Ticket
		priority string
		status   string
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.ProjectID,
		&ticket.AssigneeID,
		&priority,
		&status,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	ticket.Priority = domain.TicketPriority(priority)
	ticket.Status = domain.TicketStatus(status)
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
