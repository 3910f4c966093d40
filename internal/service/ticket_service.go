package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/appdotbuilder/helpdesk-system/internal/domain"
	"github.com/appdotbuilder/helpdesk-system/internal/events"
	"github.com/appdotbuilder/helpdesk-system/internal/repository"
	apperrors "github.com/appdotbuilder/helpdesk-system/pkg/util"
)

// TicketService is the ticket lifecycle engine. Every mutation writes the
// ticket row and its audit entries in one transaction.
type TicketService struct {
	tickets    repository.TicketRepository
	history    repository.TicketHistoryRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the lifecycle engine.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	HistoryRepo repository.TicketHistoryRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		history:    deps.HistoryRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	CustomerID       string
	CustomerName     string
	CustomerAddress  string
	CustomerCategory domain.CustomerCategory
	IssueDescription string
	IssuePriority    domain.TicketPriority
	CreatedBy        int64
}

// TicketUpdateInput describes a partial ticket update. Nil fields are not
// touched. PerformedBy is the authenticated caller and is never defaulted.
type TicketUpdateInput struct {
	ID               int64
	CustomerID       *string
	CustomerName     *string
	CustomerAddress  *string
	CustomerCategory *domain.CustomerCategory
	IssueDescription *string
	IssuePriority    *domain.TicketPriority
	Status           *domain.TicketStatus
	AssignedTo       *int64
	AssignedTeam     *domain.Role
	ResolutionNotes  *string
	PerformedBy      int64
}

// CreateComplaintTicket validates the creator and inserts the ticket with
// its initial audit entry in one transaction.
func (s *TicketService) CreateComplaintTicket(ctx context.Context, input TicketCreateInput) (*domain.ComplaintTicket, error) {
	creator, err := s.users.GetByID(ctx, input.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": input.CreatedBy})
		}
		return nil, apperrors.MapError(err)
	}
	if !creator.IsActive {
		return nil, apperrors.NewInactiveActor("ticket creator is not active",
			map[string]any{"user_id": creator.ID})
	}

	ticket := &domain.ComplaintTicket{
		CustomerID:       input.CustomerID,
		CustomerName:     input.CustomerName,
		CustomerAddress:  input.CustomerAddress,
		CustomerCategory: input.CustomerCategory,
		IssueDescription: strings.TrimSpace(input.IssueDescription),
		IssuePriority:    input.IssuePriority,
		Status:           domain.TicketStatusNew,
		CreatedBy:        creator.ID,
	}

	notes := fmt.Sprintf("Ticket created by %s", creator.Username)
	entry := &domain.TicketHistory{
		Action:      domain.HistoryActionCreated,
		NewValue:    strPtr(string(domain.TicketStatusNew)),
		PerformedBy: creator.ID,
		Notes:       &notes,
	}

	if err := s.tickets.CreateWithHistory(ctx, ticket, entry); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket created",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("created_by", creator.ID),
		zap.String("priority", string(ticket.IssuePriority)))
	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketCreated,
		TicketID:    ticket.ID,
		PerformedBy: creator.ID,
		Payload: events.TicketCreatedPayload{
			CustomerID: ticket.CustomerID,
			Category:   ticket.CustomerCategory,
			Priority:   ticket.IssuePriority,
		},
	})
	return ticket, nil
}

// UpdateComplaintTicket applies a partial update. Each differing field
// yields exactly one audit entry; a no-op update writes nothing and leaves
// UpdatedAt untouched. ResolvedAt is set on transition into Solved and
// cleared on transition out.
func (s *TicketService) UpdateComplaintTicket(ctx context.Context, input TicketUpdateInput) (*domain.ComplaintTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": input.ID})
		}
		return nil, apperrors.MapError(err)
	}

	// Direct field edits require only an active assignee; role/team
	// coherence is enforced on the assignment path, not here.
	if input.AssignedTo != nil {
		assignee, err := s.users.GetByID(ctx, *input.AssignedTo)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewInvalidAssignment("assignee does not exist",
					map[string]any{"user_id": *input.AssignedTo})
			}
			return nil, apperrors.MapError(err)
		}
		if !assignee.IsActive {
			return nil, apperrors.NewInvalidAssignment("assignee is not active",
				map[string]any{"user_id": assignee.ID})
		}
	}

	wasSolved := ticket.Status == domain.TicketStatusSolved
	changes := diffTicketFields(ticket, input)
	if len(changes) == 0 {
		return ticket, nil
	}

	entries := make([]domain.TicketHistory, 0, len(changes))
	changedDisplays := make([]string, 0, len(changes))
	for _, change := range changes {
		change.apply()
		notes := titleWords(change.display) + " updated"
		entries = append(entries, domain.TicketHistory{
			Action:        change.display + "_changed",
			PreviousValue: change.prev,
			NewValue:      change.next,
			PerformedBy:   input.PerformedBy,
			Notes:         &notes,
		})
		changedDisplays = append(changedDisplays, change.display)
	}

	now := time.Now()
	nowSolved := ticket.Status == domain.TicketStatusSolved
	if nowSolved && !wasSolved {
		ticket.ResolvedAt = &now
	} else if !nowSolved && wasSolved {
		ticket.ResolvedAt = nil
	}
	ticket.UpdatedAt = now

	if err := s.tickets.UpdateWithHistory(ctx, ticket, entries); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": input.ID})
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket updated",
		zap.Int64("ticket_id", ticket.ID),
		zap.Int64("performed_by", input.PerformedBy),
		zap.Strings("fields", changedDisplays))
	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketUpdated,
		TicketID:    ticket.ID,
		PerformedBy: input.PerformedBy,
		Payload:     events.TicketUpdatedPayload{ChangedFields: changedDisplays},
	})
	return ticket, nil
}

// GetComplaintTicketByID returns the ticket or nil when absent.
func (s *TicketService) GetComplaintTicketByID(ctx context.Context, id int64) (*domain.ComplaintTicket, error) {
	if id <= 0 {
		return nil, nil
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListComplaintTickets returns tickets matching the filter.
func (s *TicketService) ListComplaintTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.ComplaintTicket, error) {
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// GetTicketHistory returns audit entries newest-first. A ticket with no
// history yields an empty slice, not an error.
func (s *TicketService) GetTicketHistory(ctx context.Context, ticketID int64) ([]domain.HistoryEntry, error) {
	entries, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// fieldChange stages one differing field for the row update plus its audit
// entry. Values are stringified for display.
type fieldChange struct {
	display string
	prev    *string
	next    *string
	apply   func()
}

// diffTicketFields compares supplied input against the stored ticket using
// one declarative field table, so every mutable field participates in
// diffing and audit logging uniformly.
func diffTicketFields(t *domain.ComplaintTicket, in TicketUpdateInput) []fieldChange {
	type fieldSpec struct {
		display  string
		supplied bool
		current  func() *string
		next     func() *string
		apply    func()
	}

	specs := []fieldSpec{
		{
			display:  "customer id",
			supplied: in.CustomerID != nil,
			current:  func() *string { return strPtr(t.CustomerID) },
			next:     func() *string { return in.CustomerID },
			apply:    func() { t.CustomerID = *in.CustomerID },
		},
		{
			display:  "customer name",
			supplied: in.CustomerName != nil,
			current:  func() *string { return strPtr(t.CustomerName) },
			next:     func() *string { return in.CustomerName },
			apply:    func() { t.CustomerName = *in.CustomerName },
		},
		{
			display:  "customer address",
			supplied: in.CustomerAddress != nil,
			current:  func() *string { return strPtr(t.CustomerAddress) },
			next:     func() *string { return in.CustomerAddress },
			apply:    func() { t.CustomerAddress = *in.CustomerAddress },
		},
		{
			display:  "customer category",
			supplied: in.CustomerCategory != nil,
			current:  func() *string { return strPtr(string(t.CustomerCategory)) },
			next:     func() *string { return strPtr(string(*in.CustomerCategory)) },
			apply:    func() { t.CustomerCategory = *in.CustomerCategory },
		},
		{
			display:  "issue description",
			supplied: in.IssueDescription != nil,
			current:  func() *string { return strPtr(t.IssueDescription) },
			next:     func() *string { return in.IssueDescription },
			apply:    func() { t.IssueDescription = *in.IssueDescription },
		},
		{
			display:  "issue priority",
			supplied: in.IssuePriority != nil,
			current:  func() *string { return strPtr(string(t.IssuePriority)) },
			next:     func() *string { return strPtr(string(*in.IssuePriority)) },
			apply:    func() { t.IssuePriority = *in.IssuePriority },
		},
		{
			display:  "status",
			supplied: in.Status != nil,
			current:  func() *string { return strPtr(string(t.Status)) },
			next:     func() *string { return strPtr(string(*in.Status)) },
			apply:    func() { t.Status = *in.Status },
		},
		{
			display:  "assigned to",
			supplied: in.AssignedTo != nil,
			current:  func() *string { return int64Ptr(t.AssignedTo) },
			next:     func() *string { return int64Ptr(in.AssignedTo) },
			apply:    func() { t.AssignedTo = in.AssignedTo },
		},
		{
			display:  "assigned team",
			supplied: in.AssignedTeam != nil,
			current:  func() *string { return rolePtr(t.AssignedTeam) },
			next:     func() *string { return rolePtr(in.AssignedTeam) },
			apply:    func() { t.AssignedTeam = in.AssignedTeam },
		},
		{
			display:  "resolution notes",
			supplied: in.ResolutionNotes != nil,
			current:  func() *string { return t.ResolutionNotes },
			next:     func() *string { return in.ResolutionNotes },
			apply:    func() { t.ResolutionNotes = in.ResolutionNotes },
		},
	}

	var changes []fieldChange
	for _, spec := range specs {
		if !spec.supplied {
			continue
		}
		prev, next := spec.current(), spec.next()
		if strPtrEqual(prev, next) {
			continue
		}
		changes = append(changes, fieldChange{
			display: spec.display,
			prev:    prev,
			next:    next,
			apply:   spec.apply,
		})
	}
	return changes
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func strPtr(s string) *string {
	return &s
}

func int64Ptr(v *int64) *string {
	if v == nil {
		return nil
	}
	return strPtr(strconv.FormatInt(*v, 10))
}

func rolePtr(r *domain.Role) *string {
	if r == nil {
		return nil
	}
	return strPtr(string(*r))
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func titleWords(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}
