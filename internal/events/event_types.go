package events

import (
	"time"

	"github.com/appdotbuilder/helpdesk-system/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated     EventType = "ticket_created"
	EventTicketUpdated     EventType = "ticket_updated"
	EventTicketAssigned    EventType = "ticket_assigned"
	EventTicketTransferred EventType = "ticket_transferred"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	TicketID    int64       `json:"ticket_id"`
	PerformedBy int64       `json:"performed_by"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	CustomerID string                  `json:"customer_id"`
	Category   domain.CustomerCategory `json:"category"`
	Priority   domain.TicketPriority   `json:"priority"`
}

// TicketUpdatedPayload carries the fields that changed, keyed by display name.
type TicketUpdatedPayload struct {
	ChangedFields []string `json:"changed_fields"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssignedTo   *int64       `json:"assigned_to,omitempty"`
	AssignedTeam *domain.Role `json:"assigned_team,omitempty"`
}

// TicketTransferredPayload payload.
type TicketTransferredPayload struct {
	TargetTeam domain.Role `json:"target_team"`
}
