package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/appdotbuilder/helpdesk-system/internal/domain"
	"github.com/appdotbuilder/helpdesk-system/internal/repository"
	apperrors "github.com/appdotbuilder/helpdesk-system/pkg/util"
)

// UserService implements the user directory operations.
type UserService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

// UserCreateInput describes user creation payload.
type UserCreateInput struct {
	Username string
	Email    string
	FullName string
	Role     domain.Role
	IsActive *bool
}

// UserUpdateInput describes a partial user update; nil fields are left
// untouched.
type UserUpdateInput struct {
	ID       int64
	Username *string
	Email    *string
	FullName *string
	Role     *domain.Role
	IsActive *bool
}

// CreateUser inserts a user; IsActive defaults to true when omitted.
// Username/email collisions surface as UNIQUE_CONSTRAINT_VIOLATION from
// the database, not via pre-checks.
func (s *UserService) CreateUser(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}

	user := &domain.User{
		Username: input.Username,
		Email:    input.Email,
		FullName: input.FullName,
		Role:     input.Role,
		IsActive: active,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if constraint, ok := apperrors.IsUniqueViolation(err); ok {
			return nil, apperrors.NewUniqueViolation("username or email already exists",
				map[string]any{"constraint": constraint})
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("user created", zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// ListUsers returns active users, optionally filtered by role. Inactive
// users are never returned here; use GetUserByID for direct lookup.
func (s *UserService) ListUsers(ctx context.Context, role *domain.Role) ([]domain.User, error) {
	users, err := s.users.ListActive(ctx, role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// GetUserByID returns the user regardless of active state, or nil when
// absent. Never errors for a missing id, including id <= 0.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateUser applies a partial update. UpdatedAt advances only when at
// least one supplied field actually differs; a no-op update leaves the row
// untouched. Returns nil when the id is unknown.
func (s *UserService) UpdateUser(ctx context.Context, input UserUpdateInput) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	changed := false
	if input.Username != nil && *input.Username != user.Username {
		user.Username = *input.Username
		changed = true
	}
	if input.Email != nil && *input.Email != user.Email {
		user.Email = *input.Email
		changed = true
	}
	if input.FullName != nil && *input.FullName != user.FullName {
		user.FullName = *input.FullName
		changed = true
	}
	if input.Role != nil && *input.Role != user.Role {
		user.Role = *input.Role
		changed = true
	}
	if input.IsActive != nil && *input.IsActive != user.IsActive {
		user.IsActive = *input.IsActive
		changed = true
	}

	if !changed {
		return user, nil
	}

	user.UpdatedAt = time.Now()
	if err := s.users.Update(ctx, user); err != nil {
		if constraint, ok := apperrors.IsUniqueViolation(err); ok {
			return nil, apperrors.NewUniqueViolation("username or email already exists",
				map[string]any{"constraint": constraint})
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("user updated", zap.Int64("user_id", user.ID))
	return user, nil
}
