package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/recruitportal/internal/app/auth"
	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/models/dto"
	"github.com/yigit/recruitportal/internal/app/registry"
	"github.com/yigit/recruitportal/internal/app/repositories"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
	"github.com/yigit/recruitportal/internal/pkg/cache"
)

// EBProfileService defines the interface for EB profile operations
type EBProfileService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.EBProfile, error)
	GetByPosition(ctx context.Context, position string) (*models.EBProfile, error)
	// Mine returns the profile of the actor's EB position, cached per session
	Mine(ctx context.Context, actor *auth.Actor) (*models.EBProfile, error)
	Upsert(ctx context.Context, actor *auth.Actor, req *dto.UpsertEBProfileRequest) (*models.EBProfile, error)
	// InvalidatePosition drops every cached session profile for position
	InvalidatePosition(position string)
}

// ebProfileServiceImpl implements EBProfileService
type ebProfileServiceImpl struct {
	profileRepo repositories.EBProfileStore
	registry    *registry.Registry
	sessions    *cache.SessionCache[*models.EBProfile]
	logger      zerolog.Logger
}

// NewEBProfileService creates a new EBProfileService
func NewEBProfileService(
	profileRepo repositories.EBProfileStore,
	reg *registry.Registry,
	sessions *cache.SessionCache[*models.EBProfile],
	logger zerolog.Logger,
) EBProfileService {
	return &ebProfileServiceImpl{
		profileRepo: profileRepo,
		registry:    reg,
		sessions:    sessions,
		logger:      logger,
	}
}

// GetByID retrieves a profile by ID
func (s *ebProfileServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.EBProfile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

// GetByPosition retrieves the profile of a registry EB role
func (s *ebProfileServiceImpl) GetByPosition(ctx context.Context, position string) (*models.EBProfile, error) {
	if _, ok := s.registry.Role(position); !ok {
		return nil, apperrors.NewValidationError("unknown position", map[string]interface{}{"position": position})
	}
	return s.profileRepo.GetByPosition(ctx, position)
}

// Mine resolves the actor's own profile through the session cache
func (s *ebProfileServiceImpl) Mine(ctx context.Context, actor *auth.Actor) (*models.EBProfile, error) {
	if actor.Position == "" {
		return nil, apperrors.NewCustomError(apperrors.ErrEBProfileNotFound, "no executive board position is assigned to your account")
	}

	return s.sessions.Get(ctx, actor.SessionID, func(ctx context.Context) (*models.EBProfile, error) {
		s.logger.Debug().Str("session", actor.SessionID).Str("position", actor.Position).Msg("EB profile cache miss")
		return s.profileRepo.GetByPosition(ctx, actor.Position)
	})
}

// Upsert creates or replaces the profile of an EB position
func (s *ebProfileServiceImpl) Upsert(ctx context.Context, actor *auth.Actor, req *dto.UpsertEBProfileRequest) (*models.EBProfile, error) {
	if !actor.IsSuperAdmin() {
		return nil, apperrors.NewForbiddenError("only super admins can edit EB profiles")
	}
	if _, ok := s.registry.Role(req.Position); !ok {
		return nil, apperrors.NewValidationError("unknown position", map[string]interface{}{"position": req.Position})
	}

	profile, err := s.profileRepo.Upsert(ctx, &models.EBProfile{
		Position:    req.Position,
		Name:        req.Name,
		Email:       req.Email,
		MeetingLink: req.MeetingLink,
		ImageRef:    req.ImageRef,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.InvalidatePosition(profile.Position)
	s.logger.Info().Str("position", profile.Position).Str("actorID", actor.UserID.String()).Msg("EB profile updated")
	return profile, nil
}

// InvalidatePosition drops every cached session profile for position
func (s *ebProfileServiceImpl) InvalidatePosition(position string) {
	n := s.sessions.InvalidateMatching(func(p *models.EBProfile) bool {
		return p != nil && p.Position == position
	})
	if n > 0 {
		s.logger.Debug().Str("position", position).Int("sessions", n).Msg("Invalidated cached EB profiles")
	}
}
