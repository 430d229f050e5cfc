package controllers

import (
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yigit/recruitportal/internal/app/auth"
	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/models/dto"
	"github.com/yigit/recruitportal/internal/app/services"
	"github.com/yigit/recruitportal/internal/middleware"
	"github.com/yigit/recruitportal/internal/pkg/helpers"
)

// ApplicationController handles review and applicant operations on applications
type ApplicationController struct {
	applicationService services.ApplicationService
}

// NewApplicationController creates a new ApplicationController
func NewApplicationController(applicationService services.ApplicationService) *ApplicationController {
	return &ApplicationController{
		applicationService: applicationService,
	}
}

// parseIDParam reads a UUID path parameter, writing a 400 when it is malformed
func parseIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
			WithField(name).
			WithDetails("must be a valid UUID")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return uuid.Nil, false
	}
	return id, true
}

// currentActor fetches the actor set by JWTAuth. A missing actor is a wiring bug.
func currentActor(ctx *gin.Context) (*auth.Actor, bool) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, errors.New("actor missing from authenticated request"))
		return nil, false
	}
	return actor, true
}

func actionResponse(result *services.ActionResult) dto.ApplicationActionResponse {
	return dto.ApplicationActionResponse{
		Application: dto.NewApplicationResponse(result.Application),
		MailWarning: result.MailWarning,
	}
}

// ListApplications lists applications inside the caller's purview
// @Summary List applications
// @Description Lists applications of one track, filtered by status and the caller's purview
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param type query string false "Track (member, committee, ea)"
// @Param status query string false "Status filter"
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=dto.PaginatedResponse{items=[]dto.ApplicationResponse}} "Applications retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Not a reviewer"
// @Router /applications [get]
func (c *ApplicationController) ListApplications(ctx *gin.Context) {
	var req dto.ApplicationListRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	apps, total, err := c.applicationService.List(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      dto.NewApplicationResponses(apps),
		Pagination: helpers.NewPaginationInfo(total, req.Page, req.Limit),
	}, ""))
}

// SearchApplications runs a free-text search across all tracks
// @Summary Search applications
// @Description Matches applicant name, email or student number; results are partitioned by track
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param q query string true "Search text (min 2 characters)"
// @Param position query string false "Restrict to a committee or EB role (super admin only)"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationSearchResponse} "Search completed"
// @Failure 400 {object} dto.ErrorResponse "Invalid query"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /applications/search [get]
func (c *ApplicationController) SearchApplications(ctx *gin.Context) {
	var req dto.ApplicationSearchRequest
	if !middleware.BindQuery(ctx, &req) {
		return
	}
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	result, err := c.applicationService.Search(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ApplicationSearchResponse{
		Committee: dto.NewApplicationResponses(result.Committee),
		EA:        dto.NewApplicationResponses(result.EA),
		Member:    dto.NewApplicationResponses(result.Member),
	}, ""))
}

// GetApplication returns one application
// @Summary Get application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 403 {object} dto.ErrorResponse "Outside the caller's purview"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Router /applications/{id} [get]
func (c *ApplicationController) GetApplication(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	app, err := c.applicationService.Get(ctx, actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewApplicationResponse(app), ""))
}

// DownloadDocument streams an uploaded CV or portfolio
// @Summary Download application document
// @Tags applications
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Application ID" Format(uuid)
// @Param kind path string true "Document (cv, portfolio)"
// @Success 200 {file} file "Document content"
// @Failure 400 {object} dto.ErrorResponse "Invalid ID or document"
// @Failure 403 {object} dto.ErrorResponse "Neither the owner nor a reviewer of this application"
// @Failure 404 {object} dto.ErrorResponse "Application or document not found"
// @Router /applications/{id}/documents/{kind} [get]
func (c *ApplicationController) DownloadDocument(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	doc, err := c.applicationService.Document(ctx, actor, id, models.DocumentKind(ctx.Param("kind")))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer doc.Content.Close()

	ctx.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Name}))
	ctx.Header("Cache-Control", "private, no-store")
	http.ServeContent(ctx.Writer, ctx.Request, doc.Name, time.Time{}, doc.Content)
}

// ApplyAction performs a review action (evaluate, accept, reject, redirect)
// @Summary Apply review action
// @Description Moves an application through its status graph and notifies the applicant.
// @Description A failed notification does not undo the transition; it is reported in mailWarning.
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ApplicationActionRequest true "Action"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationActionResponse} "Action applied"
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 403 {object} dto.ErrorResponse "Outside the caller's purview"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Illegal transition or concurrent modification"
// @Failure 422 {object} dto.ErrorResponse "Invalid redirection target"
// @Failure 429 {object} dto.ErrorResponse "Too many requests"
// @Router /applications [put]
func (c *ApplicationController) ApplyAction(ctx *gin.Context) {
	var req dto.ApplicationActionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	result, err := c.applicationService.ApplyAction(ctx, actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(actionResponse(result), "Application updated"))
}

// ScheduleInterview assigns an interview slot and mails both parties
// @Summary Schedule interview
// @Tags applications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID" Format(uuid)
// @Param request body dto.ScheduleInterviewRequest true "Slot"
// @Success 200 {object} dto.APIResponse{data=dto.ApplicationActionResponse} "Interview scheduled"
// @Failure 400 {object} dto.ErrorResponse "Invalid slot"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Application already decided"
// @Router /applications/{id}/interview [put]
func (c *ApplicationController) ScheduleInterview(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.ScheduleInterviewRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	result, err := c.applicationService.ScheduleInterview(ctx, actor, id, req.ToSlot())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(actionResponse(result), "Interview scheduled"))
}

// SubmitApplication creates the caller's application for one track
// @Summary Submit application
// @Tags applications
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param type formData string true "Track (member, committee, ea)"
// @Param studentNumber formData string true "Student number"
// @Param section formData string true "Section"
// @Param firstChoice formData string false "First committee or EB role"
// @Param secondChoice formData string false "Second committee or EB role"
// @Param cv formData file false "CV (required for committee and ea)"
// @Param portfolio formData file false "Portfolio"
// @Success 201 {object} dto.APIResponse{data=dto.ApplicationResponse} "Application submitted"
// @Failure 400 {object} dto.ErrorResponse "Invalid submission"
// @Failure 409 {object} dto.ErrorResponse "Already applied for this track"
// @Router /applications [post]
func (c *ApplicationController) SubmitApplication(ctx *gin.Context) {
	var req dto.SubmitApplicationRequest
	if !middleware.BindForm(ctx, &req) {
		return
	}
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	// Both files are optional at this layer; the service knows which tracks need a CV
	cv, _ := ctx.FormFile("cv")
	portfolio, _ := ctx.FormFile("portfolio")

	app, err := c.applicationService.Submit(ctx, actor, &req, cv, portfolio)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewApplicationResponse(app), "Application submitted"))
}

// ResetApplication deletes the caller's application while no interview is scheduled
// @Summary Reset application
// @Tags applications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Application ID" Format(uuid)
// @Success 200 {object} dto.APIResponse "Application deleted"
// @Failure 403 {object} dto.ErrorResponse "Not the owner"
// @Failure 404 {object} dto.ErrorResponse "Application not found"
// @Failure 409 {object} dto.ErrorResponse "Interview already scheduled"
// @Router /applications/{id} [delete]
func (c *ApplicationController) ResetApplication(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	if err := c.applicationService.Reset(ctx, actor, id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Application deleted"))
}
