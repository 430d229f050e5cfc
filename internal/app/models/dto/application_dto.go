package dto

import (
	"github.com/google/uuid"

	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/workflow"
)

// ApplicationListRequest holds listing filters
type ApplicationListRequest struct {
	Type   string `form:"type" binding:"omitempty,oneof=member committee ea"`
	Status string `form:"status" binding:"omitempty,oneof=pending evaluating passed failed redirected"`
	Page   int    `form:"page,default=1" binding:"min=1"`
	Limit  int    `form:"limit,default=20" binding:"min=1,max=100"`
}

// ApplicationSearchRequest holds free-text search input
type ApplicationSearchRequest struct {
	Query    string `form:"q" binding:"required,min=2,max=100"`
	Position string `form:"position" binding:"omitempty,max=64"`
}

// ApplicationActionRequest is the body of PUT /applications
type ApplicationActionRequest struct {
	ApplicationID string `json:"applicationId" binding:"required,uuid"`
	Type          string `json:"type" binding:"required,oneof=member committee ea"`
	Action        string `json:"action" binding:"required,oneof=evaluate accept reject redirect"`
	Redirection   string `json:"redirection,omitempty" binding:"max=64"`
}

// ScheduleInterviewRequest assigns an interview slot
type ScheduleInterviewRequest struct {
	Day            string `json:"day" binding:"required,datetime=2006-01-02"`
	StartTime      string `json:"startTime" binding:"required,datetime=15:04"`
	EndTime        string `json:"endTime" binding:"required,datetime=15:04"`
	InterviewerRef string `json:"interviewerRef" binding:"required,max=64"`
}

// ToSlot converts the request into the model value
func (r ScheduleInterviewRequest) ToSlot() models.InterviewSlot {
	return models.InterviewSlot{
		Day:            r.Day,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		InterviewerRef: r.InterviewerRef,
	}
}

// SubmitApplicationRequest is the multipart form of POST /applications
type SubmitApplicationRequest struct {
	Type          string `form:"type" binding:"required,oneof=member committee ea"`
	StudentNumber string `form:"studentNumber" binding:"required"`
	Section       string `form:"section" binding:"required,max=32"`
	FirstChoice   string `form:"firstChoice" binding:"max=64"`
	SecondChoice  string `form:"secondChoice" binding:"max=64"`
}

// ApplicationResponse is an application as rendered to the review UI
type ApplicationResponse struct {
	*models.Application
	// HasAccepted is kept for Member clients that predate the unified status
	HasAccepted    *bool           `json:"hasAccepted,omitempty"`
	AllowedActions []models.Action `json:"allowedActions"`
	CanDelete      bool            `json:"canDelete"`
	// Documents maps each uploaded document to its authenticated download path
	Documents map[models.DocumentKind]string `json:"documents,omitempty"`
}

// DocumentPath is the API path an uploaded document is downloaded from
func DocumentPath(id uuid.UUID, kind models.DocumentKind) string {
	return "/api/v1/applications/" + id.String() + "/documents/" + string(kind)
}

// NewApplicationResponse decorates app with UI hints
func NewApplicationResponse(app *models.Application) ApplicationResponse {
	resp := ApplicationResponse{
		Application:    app,
		AllowedActions: workflow.AllowedActions(app.Track, app.Status),
		CanDelete:      app.CanDelete(),
	}
	if resp.AllowedActions == nil {
		resp.AllowedActions = []models.Action{}
	}
	if app.Track == models.TrackMember {
		accepted := app.HasAccepted()
		resp.HasAccepted = &accepted
	}
	for _, kind := range models.DocumentKinds {
		if app.DocumentRef(kind) == "" {
			continue
		}
		if resp.Documents == nil {
			resp.Documents = make(map[models.DocumentKind]string)
		}
		resp.Documents[kind] = DocumentPath(app.ID, kind)
	}
	return resp
}

// NewApplicationResponses converts a slice
func NewApplicationResponses(apps []*models.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, NewApplicationResponse(app))
	}
	return out
}

// ApplicationActionResponse reports a committed transition
type ApplicationActionResponse struct {
	Application ApplicationResponse `json:"application"`
	// MailWarning is set when the notification could not be delivered
	MailWarning string `json:"mailWarning,omitempty"`
}

// ApplicationSearchResponse partitions matches by track
type ApplicationSearchResponse struct {
	Committee []ApplicationResponse `json:"committee"`
	EA        []ApplicationResponse `json:"ea"`
	Member    []ApplicationResponse `json:"member"`
}
