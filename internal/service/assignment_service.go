package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/appdotbuilder/helpdesk-system/internal/domain"
	"github.com/appdotbuilder/helpdesk-system/internal/events"
	"github.com/appdotbuilder/helpdesk-system/internal/repository"
	apperrors "github.com/appdotbuilder/helpdesk-system/pkg/util"
)

// AssignmentService handles ticket assignment and team transfers.
type AssignmentService struct {
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// AssignTicketInput describes an assignment request. AssignedTo may be nil
// to assign to a team only.
type AssignTicketInput struct {
	TicketID     int64
	AssignedTo   *int64
	AssignedTeam domain.Role
	AssignedBy   int64
}

// TransferTicketInput describes a team transfer request.
type TransferTicketInput struct {
	TicketID      int64
	TargetTeam    string
	TransferredBy int64
}

// AssignTicket assigns a ticket to a user and/or team. A non-nil assignee
// must be active and belong to the requested team; this check is stricter
// than the plain update path.
func (s *AssignmentService) AssignTicket(ctx context.Context, input AssignTicketInput) (*domain.ComplaintTicket, error) {
	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": input.TicketID})
		}
		return nil, apperrors.MapError(err)
	}

	assigner, err := s.users.GetByID(ctx, input.AssignedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": input.AssignedBy})
		}
		return nil, apperrors.MapError(err)
	}

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
		if assignee.Role != input.AssignedTeam {
			return nil, apperrors.NewInvalidAssignment("assignee role does not match team",
				map[string]any{"user_id": assignee.ID, "role": assignee.Role, "team": input.AssignedTeam})
		}
	}

	previous := encodeAssignment(ticket.AssignedTo, ticket.AssignedTeam)

	team := input.AssignedTeam
	ticket.AssignedTo = input.AssignedTo
	ticket.AssignedTeam = &team
	ticket.UpdatedAt = time.Now()

	action := domain.HistoryActionAssignedToTeam
	if input.AssignedTo != nil {
		action = domain.HistoryActionAssignedToUser
	}
	notes := fmt.Sprintf("Assigned by %s", assigner.Username)
	entry := domain.TicketHistory{
		Action:        action,
		PreviousValue: previous,
		NewValue:      encodeAssignment(ticket.AssignedTo, ticket.AssignedTeam),
		PerformedBy:   assigner.ID,
		Notes:         &notes,
	}

	if err := s.tickets.UpdateWithHistory(ctx, ticket, []domain.TicketHistory{entry}); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket assigned",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("team", string(team)),
		zap.Int64("assigned_by", assigner.ID))
	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketAssigned,
		TicketID:    ticket.ID,
		PerformedBy: assigner.ID,
		Payload: events.TicketAssignedPayload{
			AssignedTo:   ticket.AssignedTo,
			AssignedTeam: ticket.AssignedTeam,
		},
	})
	return ticket, nil
}

// TransferTicketToTeam moves a ticket to another team, clearing any user
// assignment.
func (s *AssignmentService) TransferTicketToTeam(ctx context.Context, input TransferTicketInput) (*domain.ComplaintTicket, error) {
	team, ok := domain.ParseRole(input.TargetTeam)
	if !ok {
		return nil, apperrors.NewInvalidArgument("unknown team",
			map[string]any{"team": input.TargetTeam})
	}

	ticket, err := s.tickets.GetByID(ctx, input.TicketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": input.TicketID})
		}
		return nil, apperrors.MapError(err)
	}

	transferrer, err := s.users.GetByID(ctx, input.TransferredBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": input.TransferredBy})
		}
		return nil, apperrors.MapError(err)
	}

	previous := encodeAssignment(ticket.AssignedTo, ticket.AssignedTeam)
	if previous == nil {
		previous = strPtr("Unassigned")
	}

	ticket.AssignedTo = nil
	ticket.AssignedTeam = &team
	ticket.UpdatedAt = time.Now()

	notes := fmt.Sprintf("Transferred by %s", transferrer.Username)
	entry := domain.TicketHistory{
		Action:        domain.HistoryActionTransferredToTeam,
		PreviousValue: previous,
		NewValue:      strPtr(fmt.Sprintf("Team: %s", team)),
		PerformedBy:   transferrer.ID,
		Notes:         &notes,
	}

	if err := s.tickets.UpdateWithHistory(ctx, ticket, []domain.TicketHistory{entry}); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("ticket transferred",
		zap.Int64("ticket_id", ticket.ID),
		zap.String("team", string(team)),
		zap.Int64("transferred_by", transferrer.ID))
	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketTransferred,
		TicketID:    ticket.ID,
		PerformedBy: transferrer.ID,
		Payload:     events.TicketTransferredPayload{TargetTeam: team},
	})
	return ticket, nil
}

// encodeAssignment renders the ticket's assignment for audit display:
// "User ID: <id>, Team: <team>" when a user is assigned, "Team: <team>"
// when only a team is set, nil when unassigned.
func encodeAssignment(assignedTo *int64, assignedTeam *domain.Role) *string {
	switch {
	case assignedTo != nil && assignedTeam != nil:
		return strPtr(fmt.Sprintf("User ID: %d, Team: %s", *assignedTo, *assignedTeam))
	case assignedTeam != nil:
		return strPtr(fmt.Sprintf("Team: %s", *assignedTeam))
	default:
		return nil
	}
}

func (s *AssignmentService) publishEvent(ctx context.Context, event events.Event) {
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
