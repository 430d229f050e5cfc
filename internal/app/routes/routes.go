package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/recruitportal/internal/app/auth"
	"github.com/yigit/recruitportal/internal/app/controllers"
	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/middleware"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
	"github.com/yigit/recruitportal/internal/pkg/logger"
	"github.com/yigit/recruitportal/internal/pkg/websocket"
)

// Controllers groups the HTTP handlers mounted by SetupRouter
type Controllers struct {
	Application *controllers.ApplicationController
	EBProfile   *controllers.EBProfileController
	User        *controllers.UserController
	Registry    *controllers.RegistryController
}

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	ctrl Controllers,
	authMiddleware *middleware.AuthMiddleware,
	limiter middleware.Limiter,
	liveFeed *websocket.Handler,
	ready func(ctx context.Context) error,
) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	// Readiness for the load balancer; /ping only reports liveness
	router.GET("/health", healthHandler(ready))

	// API version group
	v1 := router.Group("/api/v1")

	// --- Public registry routes ---
	reg := v1.Group("/registry")
	{
		reg.GET("/committees", ctrl.Registry.GetCommittees)
		reg.GET("/roles", ctrl.Registry.GetRoles)
	}

	// The live feed authenticates inside the handler since browsers pass the token as a query parameter
	v1.GET("/ws/applications", liveFeed.HandleConnection)

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	reviewers := authenticated.Group("")
	reviewers.Use(authMiddleware.RoleRequired(models.RoleAdmin, models.RoleSuperAdmin))

	superAdmins := authenticated.Group("")
	superAdmins.Use(authMiddleware.RoleRequired(models.RoleSuperAdmin))

	// Application routes
	{
		reviewers.GET("/applications", ctrl.Application.ListApplications)
		reviewers.GET("/applications/search", ctrl.Application.SearchApplications)
		reviewers.GET("/applications/:id", ctrl.Application.GetApplication)
		reviewers.PUT("/applications", middleware.RateLimit(limiter), ctrl.Application.ApplyAction)
		reviewers.PUT("/applications/:id/interview", middleware.RateLimit(limiter), ctrl.Application.ScheduleInterview)

		// Applicant routes; ownership is enforced by the service
		authenticated.POST("/applications", ctrl.Application.SubmitApplication)
		authenticated.DELETE("/applications/:id", ctrl.Application.ResetApplication)
		// Owner or reviewer in purview; documents are never served statically
		authenticated.GET("/applications/:id/documents/:kind", ctrl.Application.DownloadDocument)
	}

	// EB profile routes
	{
		reviewers.GET("/eb-profiles/me", ctrl.EBProfile.GetMyProfile)
		reviewers.GET("/eb-profiles/by-position", ctrl.EBProfile.GetProfileByPosition)
		reviewers.GET("/eb-profiles/:id", ctrl.EBProfile.GetProfileByID)
		superAdmins.PUT("/eb-profiles", ctrl.EBProfile.UpsertProfile)
	}

	// User routes
	{
		superAdmins.GET("/users", ctrl.User.ListUsers)
		superAdmins.GET("/users/:id", ctrl.User.GetUserByID)
		superAdmins.PUT("/users/:id/role", ctrl.User.UpdateUserRole)
	}
}

// healthHandler reports readiness without exposing why a dependency is down
func healthHandler(ready func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ready(ctx); err != nil {
			logger.Warn().Err(err).Msg("Readiness check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// ReviewerSubscriber authenticates live feed connections and scopes them to
// the reviewer's purview
func ReviewerSubscriber(authMiddleware *middleware.AuthMiddleware, authz *auth.AuthorizationService) websocket.SubscriberFunc {
	return func(c *gin.Context) (websocket.Subscriber, error) {
		actor, err := authMiddleware.Authenticate(c)
		if err != nil {
			return websocket.Subscriber{}, err
		}
		if !actor.Role.IsReviewer() {
			return websocket.Subscriber{}, apperrors.NewForbiddenError("live feed is limited to reviewers")
		}
		return websocket.Subscriber{
			UserID: actor.UserID,
			Visible: func(track models.Track, positions []string) bool {
				return authz.CanSee(actor, track, positions)
			},
		}, nil
	}
}
