package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/appdotbuilder/helpdesk-system/internal/api/dto"
	"github.com/appdotbuilder/helpdesk-system/internal/domain"
	"github.com/appdotbuilder/helpdesk-system/internal/service"
	apperrors "github.com/appdotbuilder/helpdesk-system/pkg/util"
)

// UsersHandler exposes the user directory.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// Create handles POST /users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Email == "" || req.FullName == "" {
		return apperrors.NewValidationError("username, email, full_name required", nil)
	}
	role, ok := domain.ParseRole(req.Role)
	if !ok {
		return apperrors.NewInvalidArgument("unknown role", fiber.Map{"role": req.Role})
	}

	user, err := h.users.CreateUser(c.UserContext(), service.UserCreateInput{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     role,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.UserFromDomain(user)})
}

// List handles GET /users. Only active users are listed.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	var roleFilter *domain.Role
	if raw := c.Query("role"); raw != "" {
		role, ok := domain.ParseRole(raw)
		if !ok {
			return apperrors.NewInvalidArgument("unknown role", fiber.Map{"role": raw})
		}
		roleFilter = &role
	}

	users, err := h.users.ListUsers(c.UserContext(), roleFilter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UsersFromDomain(users)})
}

// Get handles GET /users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid user id", nil)
	}

	user, err := h.users.GetUserByID(c.UserContext(), int64(id))
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.NewNotFound("user", fiber.Map{"user_id": id})
	}
	return c.JSON(fiber.Map{"data": dto.UserFromDomain(user)})
}

// Update handles PATCH /users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return apperrors.NewValidationError("invalid user id", nil)
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.UserUpdateInput{
		ID:       int64(id),
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		IsActive: req.IsActive,
	}
	if req.Role != nil {
		role, ok := domain.ParseRole(*req.Role)
		if !ok {
			return apperrors.NewInvalidArgument("unknown role", fiber.Map{"role": *req.Role})
		}
		input.Role = &role
	}

	user, err := h.users.UpdateUser(c.UserContext(), input)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.NewNotFound("user", fiber.Map{"user_id": id})
	}
	return c.JSON(fiber.Map{"data": dto.UserFromDomain(user)})
}
