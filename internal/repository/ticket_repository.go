package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/appdotbuilder/helpdesk-system/internal/domain"
)

// TicketFilter captures listing and reporting parameters. A zero Limit
// means no limit, which the reporting aggregator relies on.
type TicketFilter struct {
	CreatedBy    *int64
	AssignedTo   *int64
	AssignedTeam *domain.Role
	Assigned     *bool
	Statuses     []domain.TicketStatus
	Priorities   []domain.TicketPriority
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	Limit        int
	Offset       int
}

// TicketRepository encapsulates complaint ticket persistence. Lifecycle
// writes couple the ticket row and its history rows in one transaction.
type TicketRepository interface {
	CreateWithHistory(ctx context.Context, ticket *domain.ComplaintTicket, entry *domain.TicketHistory) error
	UpdateWithHistory(ctx context.Context, ticket *domain.ComplaintTicket, entries []domain.TicketHistory) error
	GetByID(ctx context.Context, id int64) (*domain.ComplaintTicket, error)
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.ComplaintTicket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, customer_id, customer_name, customer_address, customer_category,
               issue_description, issue_priority, status, created_by, assigned_to, assigned_team,
               resolution_notes, created_at, updated_at, resolved_at`

func (r *ticketRepository) CreateWithHistory(ctx context.Context, ticket *domain.ComplaintTicket, entry *domain.TicketHistory) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertTicket = `
        INSERT INTO complaint_tickets (customer_id, customer_name, customer_address, customer_category,
            issue_description, issue_priority, status, created_by, assigned_to, assigned_team, resolution_notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertTicket,
		ticket.CustomerID,
		ticket.CustomerName,
		ticket.CustomerAddress,
		ticket.CustomerCategory,
		ticket.IssueDescription,
		ticket.IssuePriority,
		ticket.Status,
		ticket.CreatedBy,
		ticket.AssignedTo,
		ticket.AssignedTeam,
		ticket.ResolutionNotes,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	entry.TicketID = ticket.ID
	if err := insertHistory(ctx, tx, entry); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) UpdateWithHistory(ctx context.Context, ticket *domain.ComplaintTicket, entries []domain.TicketHistory) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const updateTicket = `
        UPDATE complaint_tickets SET customer_id=$1, customer_name=$2, customer_address=$3, customer_category=$4,
            issue_description=$5, issue_priority=$6, status=$7, assigned_to=$8, assigned_team=$9,
            resolution_notes=$10, updated_at=$11, resolved_at=$12
        WHERE id=$13`
	cmd, err := tx.Exec(ctx, updateTicket,
		ticket.CustomerID,
		ticket.CustomerName,
		ticket.CustomerAddress,
		ticket.CustomerCategory,
		ticket.IssueDescription,
		ticket.IssuePriority,
		ticket.Status,
		ticket.AssignedTo,
		ticket.AssignedTeam,
		ticket.ResolutionNotes,
		ticket.UpdatedAt,
		ticket.ResolvedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	for i := range entries {
		entries[i].TicketID = ticket.ID
		if err := insertHistory(ctx, tx, &entries[i]); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.ComplaintTicket, error) {
	query := fmt.Sprintf(`SELECT %s FROM complaint_tickets WHERE id=$1`, ticketColumns)
	var ticket domain.ComplaintTicket
	if err := scanTicket(r.pool.QueryRow(ctx, query, id), &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.ComplaintTicket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CreatedBy != nil {
		args = append(args, *filter.CreatedBy)
		clauses = append(clauses, fmt.Sprintf("created_by=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("assigned_to=$%d", len(args)))
	}
	if filter.AssignedTeam != nil {
		args = append(args, *filter.AssignedTeam)
		clauses = append(clauses, fmt.Sprintf("assigned_team=$%d", len(args)))
	}
	if filter.Assigned != nil {
		if *filter.Assigned {
			clauses = append(clauses, "assigned_to IS NOT NULL")
		} else {
			clauses = append(clauses, "assigned_to IS NULL")
		}
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Priorities) > 0 {
		placeholders := make([]string, len(filter.Priorities))
		for i, pr := range filter.Priorities {
			args = append(args, pr)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("issue_priority IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM complaint_tickets WHERE %s ORDER BY created_at DESC`,
		ticketColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTicket(row pgx.Row, ticket *domain.ComplaintTicket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.CustomerID,
		&ticket.CustomerName,
		&ticket.CustomerAddress,
		&ticket.CustomerCategory,
		&ticket.IssueDescription,
		&ticket.IssuePriority,
		&ticket.Status,
		&ticket.CreatedBy,
		&ticket.AssignedTo,
		&ticket.AssignedTeam,
		&ticket.ResolutionNotes,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ResolvedAt,
	)
}

func scanTickets(rows pgx.Rows) ([]domain.ComplaintTicket, error) {
	var result []domain.ComplaintTicket
	for rows.Next() {
		var ticket domain.ComplaintTicket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
