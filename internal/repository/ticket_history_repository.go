package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/appdotbuilder/helpdesk-system/internal/domain"
)

// TicketHistoryRepository reads the append-only audit trail. Writes happen
// through insertHistory inside lifecycle transactions; entries are never
// updated or deleted.
type TicketHistoryRepository interface {
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error)
}

type ticketHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(pool *pgxpool.Pool) TicketHistoryRepository {
	return &ticketHistoryRepository{pool: pool}
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error) {
	const query = `
        SELECT h.id, h.ticket_id, h.action, h.previous_value, h.new_value, h.performed_by, h.notes, h.created_at,
               COALESCE(u.username, ''), COALESCE(u.full_name, '')
        FROM ticket_history h
        LEFT JOIN users u ON u.id = h.performed_by
        WHERE h.ticket_id=$1
        ORDER BY h.created_at DESC, h.id DESC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.HistoryEntry{}
	for rows.Next() {
		var entry domain.HistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.Action,
			&entry.PreviousValue,
			&entry.NewValue,
			&entry.PerformedBy,
			&entry.Notes,
			&entry.CreatedAt,
			&entry.PerformerUsername,
			&entry.PerformerFullName,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// insertHistory appends one audit entry within the caller's transaction.
func insertHistory(ctx context.Context, tx pgx.Tx, entry *domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (ticket_id, action, previous_value, new_value, performed_by, notes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return tx.QueryRow(ctx, query,
		entry.TicketID,
		entry.Action,
		entry.PreviousValue,
		entry.NewValue,
		entry.PerformedBy,
		entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt)
}
