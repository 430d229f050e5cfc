package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/recruitportal/internal/app/models/dto"
	"github.com/yigit/recruitportal/internal/app/services"
	"github.com/yigit/recruitportal/internal/middleware"
)

// EBProfileController serves Executive Board profiles
type EBProfileController struct {
	profileService services.EBProfileService
}

// NewEBProfileController creates a new EBProfileController
func NewEBProfileController(profileService services.EBProfileService) *EBProfileController {
	return &EBProfileController{profileService: profileService}
}

// GetMyProfile returns the profile of the caller's EB position
// @Summary Get own EB profile
// @Description Cached for the lifetime of the caller's session
// @Tags eb-profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.EBProfile} "Profile retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Caller holds no EB position"
// @Router /eb-profiles/me [get]
func (c *EBProfileController) GetMyProfile(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	profile, err := c.profileService.Mine(ctx, actor)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile, ""))
}

// GetProfileByID returns a profile by ID
// @Summary Get EB profile by ID
// @Tags eb-profiles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Profile ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=models.EBProfile} "Profile retrieved successfully"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /eb-profiles/{id} [get]
func (c *EBProfileController) GetProfileByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	profile, err := c.profileService.GetByID(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile, ""))
}

// GetProfileByPosition returns the profile of an EB role
// @Summary Get EB profile by position
// @Tags eb-profiles
// @Produce json
// @Security BearerAuth
// @Param position query string true "EB role ID"
// @Success 200 {object} dto.APIResponse{data=models.EBProfile} "Profile retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Unknown position"
// @Failure 404 {object} dto.ErrorResponse "Profile not found"
// @Router /eb-profiles/by-position [get]
func (c *EBProfileController) GetProfileByPosition(ctx *gin.Context) {
	var req dto.EBProfileByPositionRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}

	profile, err := c.profileService.GetByPosition(ctx, req.Position)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile, ""))
}

// UpsertProfile creates or replaces the profile of an EB position
// @Summary Upsert EB profile
// @Tags eb-profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpsertEBProfileRequest true "Profile"
// @Success 200 {object} dto.APIResponse{data=models.EBProfile} "Profile saved"
// @Failure 400 {object} dto.ErrorResponse "Invalid profile"
// @Failure 403 {object} dto.ErrorResponse "Super admin only"
// @Router /eb-profiles [put]
func (c *EBProfileController) UpsertProfile(ctx *gin.Context) {
	var req dto.UpsertEBProfileRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	profile, err := c.profileService.Upsert(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(profile, "Profile saved"))
}
