package auth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/registry"
	"github.com/yigit/recruitportal/internal/app/repositories"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
	jwtauth "github.com/yigit/recruitportal/internal/pkg/auth"
	"github.com/yigit/recruitportal/internal/pkg/logger"
)

// Actor is the authenticated caller of a request. Role and Position come from the
// local user row, not from the token.
type Actor struct {
	UserID    uuid.UUID
	Email     string
	Name      string
	Role      models.RoleType
	Position  string
	SessionID string
}

// IsSuperAdmin reports whether the actor manages roles and profiles
func (a *Actor) IsSuperAdmin() bool {
	return a.Role == models.RoleSuperAdmin
}

// AuthorizationService handles authorization operations
type AuthorizationService struct {
	userRepo repositories.UserStore
	registry *registry.Registry
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo repositories.UserStore, reg *registry.Registry) *AuthorizationService {
	return &AuthorizationService{
		userRepo: userRepo,
		registry: reg,
	}
}

// ResolveActor maps verified token claims onto the local user, creating it on first sight
func (s *AuthorizationService) ResolveActor(ctx context.Context, claims *jwtauth.Claims) (*Actor, error) {
	var id uuid.UUID
	if claims.DBID != "" {
		parsed, err := uuid.Parse(claims.DBID)
		if err != nil {
			return nil, apperrors.ErrTokenInvalid
		}
		id = parsed
	}

	user, err := s.userRepo.EnsureUser(ctx, &models.User{
		ID:    id,
		Email: claims.Email,
		Name:  claims.Name,
	})
	if err != nil {
		logger.Error().Err(err).Str("email", claims.Email).Msg("Error resolving session user")
		return nil, fmt.Errorf("failed to resolve session user: %w", err)
	}

	return &Actor{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		Position:  user.Position,
		SessionID: claims.SessionID(),
	}, nil
}

// PurviewOf returns the committees and roles the actor may review
func (s *AuthorizationService) PurviewOf(actor *Actor) registry.Purview {
	return s.registry.PurviewFor(actor.Role, actor.Position)
}

// CanReview reports whether the actor may see and act on app
func (s *AuthorizationService) CanReview(actor *Actor, app *models.Application) bool {
	return s.CanSee(actor, app.Track, app.Positions())
}

// CanSee reports whether the actor may see an application of track touching
// positions. Member applications are visible to every reviewer.
func (s *AuthorizationService) CanSee(actor *Actor, track models.Track, positions []string) bool {
	if !actor.Role.IsReviewer() {
		return false
	}
	if track == models.TrackMember {
		return true
	}
	purview := s.PurviewOf(actor)
	if purview.All {
		return true
	}
	for _, p := range positions {
		if purview.Contains(p) {
			return true
		}
	}
	return false
}

// ValidateReviewer returns ErrPermissionDenied unless the actor may review app
func (s *AuthorizationService) ValidateReviewer(actor *Actor, app *models.Application) error {
	if !s.CanReview(actor, app) {
		return apperrors.NewForbiddenError("application is outside your review purview")
	}
	return nil
}

// ValidateOwnership returns ErrPermissionDenied unless the actor submitted app
func (s *AuthorizationService) ValidateOwnership(actor *Actor, app *models.Application) error {
	if app.ApplicantID != actor.UserID {
		return apperrors.NewForbiddenError("only the applicant can modify this application")
	}
	return nil
}
