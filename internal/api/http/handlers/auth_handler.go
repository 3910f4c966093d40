package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/appdotbuilder/helpdesk-system/internal/api/dto"
	"github.com/appdotbuilder/helpdesk-system/internal/auth"
	"github.com/appdotbuilder/helpdesk-system/internal/service"
	apperrors "github.com/appdotbuilder/helpdesk-system/pkg/util"
)

// AuthHandler mints actor tokens. Authentication policy beyond "is this
// user active" is out of scope; the caller is trusted to name the actor.
type AuthHandler struct {
	tokens *auth.TokenManager
	users  *service.UserService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(tokens *auth.TokenManager, users *service.UserService) *AuthHandler {
	return &AuthHandler{tokens: tokens, users: users}
}

// IssueToken handles POST /auth/token.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.UserID <= 0 {
		return apperrors.NewValidationError("user_id required", nil)
	}

	user, err := h.users.GetUserByID(c.UserContext(), req.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperrors.NewNotFound("user", fiber.Map{"user_id": req.UserID})
	}
	if !user.IsActive {
		return apperrors.NewForbidden("user is deactivated")
	}

	token, expiresAt, err := h.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
	})
}
