package domain

import "time"

// History actions recorded by the lifecycle engine. Field-change actions
// follow the "<field display name>_changed" convention, e.g.
// "issue priority_changed".
const (
	HistoryActionCreated           = "created"
	HistoryActionAssignedToUser    = "assigned_to_user"
	HistoryActionAssignedToTeam    = "assigned_to_team"
	HistoryActionTransferredToTeam = "transferred_to_team"
)

// TicketHistory is an immutable audit trail entry. Previous and new values
// are stringified representations kept for human-readable display, not
// typed fields.
type TicketHistory struct {
	ID            int64
	TicketID      int64
	Action        string
	PreviousValue *string
	NewValue      *string
	PerformedBy   int64
	Notes         *string
	CreatedAt     time.Time
}

// HistoryEntry is a history row enriched with performer identity for
// display. Performer fields are empty when the join found no user.
type HistoryEntry struct {
	TicketHistory
	PerformerUsername string
	PerformerFullName string
}
