package dto

import (
	"time"

	"github.com/appdotbuilder/helpdesk-system/internal/domain"
)

// CreateTicketRequest payload. The creator comes from the authenticated
// actor, not the body.
type CreateTicketRequest struct {
	CustomerID       string `json:"customer_id"`
	CustomerName     string `json:"customer_name"`
	CustomerAddress  string `json:"customer_address"`
	CustomerCategory string `json:"customer_category"`
	IssueDescription string `json:"issue_description"`
	IssuePriority    string `json:"issue_priority"`
}

// UpdateTicketRequest payload; nil fields are left untouched.
type UpdateTicketRequest struct {
	CustomerID       *string `json:"customer_id"`
	CustomerName     *string `json:"customer_name"`
	CustomerAddress  *string `json:"customer_address"`
	CustomerCategory *string `json:"customer_category"`
	IssueDescription *string `json:"issue_description"`
	IssuePriority    *string `json:"issue_priority"`
	Status           *string `json:"status"`
	AssignedTo       *int64  `json:"assigned_to"`
	AssignedTeam     *string `json:"assigned_team"`
	ResolutionNotes  *string `json:"resolution_notes"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssignedTo   *int64 `json:"assigned_to"`
	AssignedTeam string `json:"assigned_team"`
}

// TransferTicketRequest payload.
type TransferTicketRequest struct {
	TargetTeam string `json:"target_team"`
}

// TicketResponse response shape.
type TicketResponse struct {
	ID               int64                   `json:"id"`
	CustomerID       string                  `json:"customer_id"`
	CustomerName     string                  `json:"customer_name"`
	CustomerAddress  string                  `json:"customer_address"`
	CustomerCategory domain.CustomerCategory `json:"customer_category"`
	IssueDescription string                  `json:"issue_description"`
	IssuePriority    domain.TicketPriority   `json:"issue_priority"`
	Status           domain.TicketStatus     `json:"status"`
	CreatedBy        int64                   `json:"created_by"`
	AssignedTo       *int64                  `json:"assigned_to"`
	AssignedTeam     *domain.Role            `json:"assigned_team"`
	ResolutionNotes  *string                 `json:"resolution_notes"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
	ResolvedAt       *time.Time              `json:"resolved_at"`
}

// TicketFromDomain maps a domain ticket to its response shape.
func TicketFromDomain(t *domain.ComplaintTicket) TicketResponse {
	return TicketResponse{
		ID:               t.ID,
		CustomerID:       t.CustomerID,
		CustomerName:     t.CustomerName,
		CustomerAddress:  t.CustomerAddress,
		CustomerCategory: t.CustomerCategory,
		IssueDescription: t.IssueDescription,
		IssuePriority:    t.IssuePriority,
		Status:           t.Status,
		CreatedBy:        t.CreatedBy,
		AssignedTo:       t.AssignedTo,
		AssignedTeam:     t.AssignedTeam,
		ResolutionNotes:  t.ResolutionNotes,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
		ResolvedAt:       t.ResolvedAt,
	}
}

// TicketsFromDomain maps a ticket slice.
func TicketsFromDomain(tickets []domain.ComplaintTicket) []TicketResponse {
	result := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, TicketFromDomain(&tickets[i]))
	}
	return result
}

// HistoryEntryResponse response shape for one audit entry.
type HistoryEntryResponse struct {
	ID                int64     `json:"id"`
	TicketID          int64     `json:"ticket_id"`
	Action            string    `json:"action"`
	PreviousValue     *string   `json:"previous_value"`
	NewValue          *string   `json:"new_value"`
	PerformedBy       int64     `json:"performed_by"`
	PerformerUsername string    `json:"performer_username,omitempty"`
	PerformerFullName string    `json:"performer_full_name,omitempty"`
	Notes             *string   `json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
}

// HistoryFromDomain maps enriched history entries.
func HistoryFromDomain(entries []domain.HistoryEntry) []HistoryEntryResponse {
	result := make([]HistoryEntryResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, HistoryEntryResponse{
			ID:                entry.ID,
			TicketID:          entry.TicketID,
			Action:            entry.Action,
			PreviousValue:     entry.PreviousValue,
			NewValue:          entry.NewValue,
			PerformedBy:       entry.PerformedBy,
			PerformerUsername: entry.PerformerUsername,
			PerformerFullName: entry.PerformerFullName,
			Notes:             entry.Notes,
			CreatedAt:         entry.CreatedAt,
		})
	}
	return result
}
