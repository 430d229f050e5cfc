package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/recruitportal/internal/app/auth"
	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/models/dto"
	"github.com/yigit/recruitportal/internal/app/registry"
	"github.com/yigit/recruitportal/internal/app/repositories"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
)

// UserService defines the interface for user operations
type UserService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]*models.User, int64, error)
	SetRole(ctx context.Context, actor *auth.Actor, id uuid.UUID, req *dto.UpdateUserRoleRequest) (*models.User, error)
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userRepo repositories.UserStore
	profiles EBProfileService
	registry *registry.Registry
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repositories.UserStore,
	profiles EBProfileService,
	reg *registry.Registry,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		profiles: profiles,
		registry: reg,
		logger:   logger,
	}
}

// GetByID retrieves a user by ID
func (s *userServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List returns one page of users
func (s *userServiceImpl) List(ctx context.Context, req *dto.UserListRequest) ([]*models.User, int64, error) {
	return s.userRepo.List(ctx, models.RoleType(req.Role), req.Page, req.PageSize)
}

// SetRole changes a user's role and EB position
func (s *userServiceImpl) SetRole(ctx context.Context, actor *auth.Actor, id uuid.UUID, req *dto.UpdateUserRoleRequest) (*models.User, error) {
	if !actor.IsSuperAdmin() {
		return nil, apperrors.NewForbiddenError("only super admins can change roles")
	}

	role := models.RoleType(req.Role)
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]interface{}{"role": req.Role})
	}
	if req.Position != "" {
		if _, ok := s.registry.Role(req.Position); !ok {
			return nil, apperrors.NewValidationError("position must be an executive board role", map[string]interface{}{"position": req.Position})
		}
		if !role.IsReviewer() {
			return nil, apperrors.NewValidationError("applicants cannot hold a position", map[string]interface{}{"position": req.Position})
		}
	}
	if id == actor.UserID && role != models.RoleSuperAdmin {
		return nil, apperrors.NewForbiddenError("super admins cannot demote themselves")
	}

	current, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.userRepo.UpdateRole(ctx, id, role, req.Position)
	if err != nil {
		return nil, err
	}

	if current.Position != "" && current.Position != updated.Position {
		s.profiles.InvalidatePosition(current.Position)
	}

	s.logger.Info().
		Str("userID", id.String()).
		Str("role", string(updated.Role)).
		Str("position", updated.Position).
		Str("actorID", actor.UserID.String()).
		Msg("User role updated")
	return updated, nil
}
