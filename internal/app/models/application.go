package models

import (
	"time"

	"github.com/google/uuid"
)

// InterviewSlot is an assigned interview. Day is YYYY-MM-DD, times are HH:MM.
type InterviewSlot struct {
	Day            string `json:"day"`
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	InterviewerRef string `json:"interviewerRef"`
}

// Application is a submission to one of the three tracks
type Application struct {
	ID            uuid.UUID         `json:"id" db:"id"`
	Track         Track             `json:"track" db:"track"`
	ApplicantID   uuid.UUID         `json:"applicantId" db:"applicant_id"`
	StudentNumber string            `json:"studentNumber" db:"student_number"`
	Section       string            `json:"section" db:"section"`
	FirstChoice   string            `json:"firstChoice,omitempty" db:"first_choice"`
	SecondChoice  string            `json:"secondChoice,omitempty" db:"second_choice"`
	CVURL         string            `json:"cvUrl,omitempty" db:"cv_url"`
	PortfolioURL  string            `json:"portfolioUrl,omitempty" db:"portfolio_url"`
	Status        ApplicationStatus `json:"status" db:"status"`
	Redirection   *string           `json:"redirection" db:"redirection"`
	InterviewSlot *InterviewSlot    `json:"interviewSlot,omitempty"`
	Version       int64             `json:"version" db:"version"`
	CreatedAt     time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time         `json:"updatedAt" db:"updated_at"`

	// Joined from users for listings and search
	ApplicantName  string `json:"applicantName,omitempty"`
	ApplicantEmail string `json:"applicantEmail,omitempty"`
}

// DocumentKind names an uploaded applicant document
type DocumentKind string

const (
	DocumentCV        DocumentKind = "cv"
	DocumentPortfolio DocumentKind = "portfolio"
)

// DocumentKinds lists every downloadable document
var DocumentKinds = []DocumentKind{DocumentCV, DocumentPortfolio}

// DocumentRef returns the stored reference of kind, empty when none was uploaded
func (a *Application) DocumentRef(kind DocumentKind) string {
	switch kind {
	case DocumentCV:
		return a.CVURL
	case DocumentPortfolio:
		return a.PortfolioURL
	}
	return ""
}

// HasAccepted is the Member track's legacy acceptance flag
func (a *Application) HasAccepted() bool {
	return a.Status == StatusPassed
}

// CanDelete reports whether the applicant may still reset the application
func (a *Application) CanDelete() bool {
	return a.InterviewSlot == nil
}

// RedirectionValue returns the redirection target or an empty string
func (a *Application) RedirectionValue() string {
	if a.Redirection == nil {
		return ""
	}
	return *a.Redirection
}

// Positions returns the non-empty choices and redirection target
func (a *Application) Positions() []string {
	var out []string
	for _, p := range []string{a.FirstChoice, a.SecondChoice, a.RedirectionValue()} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ApplicationEvent is broadcast to connected reviewers after a committed change
type ApplicationEvent struct {
	Type          string            `json:"type"`
	ApplicationID uuid.UUID         `json:"applicationId"`
	Track         Track             `json:"track"`
	OldStatus     ApplicationStatus `json:"oldStatus,omitempty"`
	NewStatus     ApplicationStatus `json:"newStatus,omitempty"`
	Redirection   string            `json:"redirection,omitempty"`
	ActorID       uuid.UUID         `json:"actorId"`
	At            time.Time         `json:"at"`

	// Positions are the committee and role IDs the application touches, used to
	// route the event to reviewers whose purview covers them
	Positions []string `json:"-"`
}

// Event types
const (
	EventStatusChanged      = "status_changed"
	EventInterviewScheduled = "interview_scheduled"
	EventApplicationDeleted = "application_deleted"
	EventApplicationCreated = "application_created"
)
