package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appauth "github.com/yigit/recruitportal/internal/app/auth"
	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/models/dto"
	"github.com/yigit/recruitportal/internal/pkg/auth"
	"github.com/yigit/recruitportal/internal/pkg/logger"
)

const actorContextKey = "actor"

// ActorResolver maps verified claims onto the local user
type ActorResolver interface {
	ResolveActor(ctx context.Context, claims *auth.Claims) (*appauth.Actor, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	actors     ActorResolver
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, actors ActorResolver) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		actors:     actors,
	}
}

// authError is an authentication failure ready to be rendered
type authError struct {
	status int
	detail *dto.ErrorDetail
}

func (e *authError) Error() string { return e.detail.Message }

// Authenticate verifies the session token of the request and resolves the actor.
// Browsers cannot set headers on websocket upgrades, so a token query parameter
// is accepted as well.
func (m *AuthMiddleware) Authenticate(c *gin.Context) (*appauth.Actor, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		authHeader = c.Query("token")
	}
	if authHeader == "" {
		return nil, &authError{
			status: http.StatusUnauthorized,
			detail: dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").WithDetails("Authorization header missing"),
		}
	}

	tokenString, err := auth.ExtractBearerToken(authHeader)
	if err != nil {
		return nil, &authError{
			status: http.StatusUnauthorized,
			detail: dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication failed").WithDetails("Invalid token format"),
		}
	}

	claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication failed").WithDetails("Invalid token")
		if errors.Is(err, auth.ErrExpiredToken) {
			detail = dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Authentication failed").WithDetails("Token has expired")
		}
		return nil, &authError{status: http.StatusUnauthorized, detail: detail}
	}

	actor, err := m.actors.ResolveActor(c.Request.Context(), claims)
	if err != nil {
		logger.Error().Err(err).Str("email", claims.Email).Msg("Failed to resolve actor")
		return nil, &authError{
			status: http.StatusInternalServerError,
			detail: dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		}
	}
	return actor, nil
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := m.Authenticate(c)
		if err != nil {
			var ae *authError
			if errors.As(err, &ae) {
				c.AbortWithStatusJSON(ae.status, dto.NewErrorResponse(ae.detail))
				return
			}
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		SetActor(c, actor)
		c.Next()
	}
}

// RoleRequired middleware to check if user has one of the required roles
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").WithDetails("User role not found")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		for _, role := range roles {
			if actor.Role == role {
				c.Next()
				return
			}
		}

		errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
			WithDetails("You don't have sufficient permissions for this operation")
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
	}
}

// GetActor returns the actor stored by JWTAuth
func GetActor(c *gin.Context) (*appauth.Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return nil, false
	}
	actor, ok := v.(*appauth.Actor)
	return actor, ok && actor != nil
}

// SetActor stores actor on the context. Used by JWTAuth and by tests.
func SetActor(c *gin.Context, actor *appauth.Actor) {
	c.Set(actorContextKey, actor)
}
