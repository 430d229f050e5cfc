package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/recruitportal/internal/app/models/dto"
	"github.com/yigit/recruitportal/internal/app/registry"
)

// RegistryController exposes the static committee and EB role tables
type RegistryController struct {
	registry *registry.Registry
}

// NewRegistryController creates a new RegistryController
func NewRegistryController(reg *registry.Registry) *RegistryController {
	return &RegistryController{registry: reg}
}

// GetCommittees lists committees
// @Summary List committees
// @Tags registry
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]registry.Entry} "Committees"
// @Router /registry/committees [get]
func (c *RegistryController) GetCommittees(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.registry.Committees(), ""))
}

// GetRoles lists Executive Board roles
// @Summary List EB roles
// @Tags registry
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]registry.Entry} "EB roles"
// @Router /registry/roles [get]
func (c *RegistryController) GetRoles(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(c.registry.Roles(), ""))
}
