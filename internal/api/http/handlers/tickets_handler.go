package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/appdotbuilder/helpdesk-system/internal/api/dto"
	"github.com/appdotbuilder/helpdesk-system/internal/auth"
	"github.com/appdotbuilder/helpdesk-system/internal/domain"
	"github.com/appdotbuilder/helpdesk-system/internal/repository"
	"github.com/appdotbuilder/helpdesk-system/internal/service"
	apperrors "github.com/appdotbuilder/helpdesk-system/pkg/util"
)

// TicketsHandler exposes the ticket lifecycle engine.
type TicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, assignments *service.AssignmentService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, assignments: assignments}
}

// Create handles POST /tickets. The authenticated actor is the creator.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.CustomerID == "" || req.CustomerName == "" || req.IssueDescription == "" {
		return apperrors.NewValidationError("customer_id, customer_name, issue_description required", nil)
	}
	category, ok := domain.ParseCustomerCategory(req.CustomerCategory)
	if !ok {
		return apperrors.NewInvalidArgument("unknown customer category", fiber.Map{"customer_category": req.CustomerCategory})
	}
	priority, ok := domain.ParseTicketPriority(req.IssuePriority)
	if !ok {
		return apperrors.NewInvalidArgument("unknown priority", fiber.Map{"issue_priority": req.IssuePriority})
	}

	ticket, err := h.tickets.CreateComplaintTicket(c.UserContext(), service.TicketCreateInput{
		CustomerID:       req.CustomerID,
		CustomerName:     req.CustomerName,
		CustomerAddress:  req.CustomerAddress,
		CustomerCategory: category,
		IssueDescription: req.IssueDescription,
		IssuePriority:    priority,
		CreatedBy:        actor.ID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// List handles GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter, err := parseTicketFilter(c)
	if err != nil {
		return err
	}

	tickets, err := h.tickets.ListComplaintTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketsFromDomain(tickets)})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}

	ticket, err := h.tickets.GetComplaintTicketByID(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	if ticket == nil {
		return apperrors.NewNotFound("ticket", fiber.Map{"ticket_id": id})
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Update handles PATCH /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketUpdateInput{
		ID:               int64(id),
		CustomerID:       req.CustomerID,
		CustomerName:     req.CustomerName,
		CustomerAddress:  req.CustomerAddress,
		IssueDescription: req.IssueDescription,
		AssignedTo:       req.AssignedTo,
		ResolutionNotes:  req.ResolutionNotes,
		PerformedBy:      actor.ID,
	}
	if req.CustomerCategory != nil {
		category, ok := domain.ParseCustomerCategory(*req.CustomerCategory)
		if !ok {
			return apperrors.NewInvalidArgument("unknown customer category", fiber.Map{"customer_category": *req.CustomerCategory})
		}
		input.CustomerCategory = &category
	}
	if req.IssuePriority != nil {
		priority, ok := domain.ParseTicketPriority(*req.IssuePriority)
		if !ok {
			return apperrors.NewInvalidArgument("unknown priority", fiber.Map{"issue_priority": *req.IssuePriority})
		}
		input.IssuePriority = &priority
	}
	if req.Status != nil {
		status, ok := domain.ParseTicketStatus(*req.Status)
		if !ok {
			return apperrors.NewInvalidArgument("unknown status", fiber.Map{"status": *req.Status})
		}
		input.Status = &status
	}
	if req.AssignedTeam != nil {
		team, ok := domain.ParseRole(*req.AssignedTeam)
		if !ok {
			return apperrors.NewInvalidArgument("unknown team", fiber.Map{"assigned_team": *req.AssignedTeam})
		}
		input.AssignedTeam = &team
	}

	ticket, err := h.tickets.UpdateComplaintTicket(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Assign handles POST /tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}

	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	team, ok := domain.ParseRole(req.AssignedTeam)
	if !ok {
		return apperrors.NewInvalidArgument("unknown team", fiber.Map{"assigned_team": req.AssignedTeam})
	}

	ticket, err := h.assignments.AssignTicket(c.UserContext(), service.AssignTicketInput{
		TicketID:     int64(id),
		AssignedTo:   req.AssignedTo,
		AssignedTeam: team,
		AssignedBy:   actor.ID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// Transfer handles POST /tickets/:id/transfer.
func (h *TicketsHandler) Transfer(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}

	var req dto.TransferTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.assignments.TransferTicketToTeam(c.UserContext(), service.TransferTicketInput{
		TicketID:      int64(id),
		TargetTeam:    req.TargetTeam,
		TransferredBy: actor.ID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketFromDomain(ticket)})
}

// History handles GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}

	entries, err := h.tickets.GetTicketHistory(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.HistoryFromDomain(entries)})
}

func parseTicketFilter(c *fiber.Ctx) (repository.TicketFilter, error) {
	var filter repository.TicketFilter

	if raw := c.Query("status"); raw != "" {
		status, ok := domain.ParseTicketStatus(raw)
		if !ok {
			return filter, apperrors.NewInvalidArgument("unknown status", fiber.Map{"status": raw})
		}
		filter.Statuses = []domain.TicketStatus{status}
	}
	if raw := c.Query("priority"); raw != "" {
		priority, ok := domain.ParseTicketPriority(raw)
		if !ok {
			return filter, apperrors.NewInvalidArgument("unknown priority", fiber.Map{"priority": raw})
		}
		filter.Priorities = []domain.TicketPriority{priority}
	}
	if raw := c.Query("team"); raw != "" {
		team, ok := domain.ParseRole(raw)
		if !ok {
			return filter, apperrors.NewInvalidArgument("unknown team", fiber.Map{"team": raw})
		}
		filter.AssignedTeam = &team
	}
	if raw := c.Query("assigned_to"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid assigned_to", nil)
		}
		filter.AssignedTo = &id
	}
	if raw := c.Query("created_by"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid created_by", nil)
		}
		filter.CreatedBy = &id
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid from date, expected YYYY-MM-DD", nil)
		}
		filter.CreatedFrom = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid to date, expected YYYY-MM-DD", nil)
		}
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.CreatedTo = &end
	}
	filter.Limit = c.QueryInt("limit", 50)
	filter.Offset = c.QueryInt("offset", 0)
	return filter, nil
}
