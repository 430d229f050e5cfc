package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/registry"
	"github.com/yigit/recruitportal/internal/app/workflow"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
	"github.com/yigit/recruitportal/internal/pkg/email"
)

// InterviewNotice carries what both interview emails need
type InterviewNotice struct {
	Slot             models.InterviewSlot
	InterviewerTitle string
	InterviewerName  string
	InterviewerEmail string
	MeetingLink      string
}

// NotificationService defines the interface for review notifications.
// Every error it returns wraps apperrors.ErrMail.
type NotificationService interface {
	Notify(ctx context.Context, app *models.Application, outcome workflow.Outcome) error
	NotifyInterview(ctx context.Context, app *models.Application, notice InterviewNotice) error
}

// notificationServiceImpl implements NotificationService
type notificationServiceImpl struct {
	sender       email.Sender
	registry     *registry.Registry
	organization string
	portalURL    string
	logger       zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(
	sender email.Sender,
	reg *registry.Registry,
	organization string,
	portalURL string,
	logger zerolog.Logger,
) NotificationService {
	return &notificationServiceImpl{
		sender:       sender,
		registry:     reg,
		organization: organization,
		portalURL:    portalURL,
		logger:       logger,
	}
}

// render produces the subject and HTML body of a template
func render(id TemplateID, data mailData) (string, string, error) {
	subject, ok := templateSubjects[id]
	if !ok {
		return "", "", fmt.Errorf("unknown mail template %q", id)
	}
	var buf bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&buf, string(id), data); err != nil {
		return "", "", fmt.Errorf("render %s: %w", id, err)
	}
	return subject, buf.String(), nil
}

func (s *notificationServiceImpl) baseData(app *models.Application) mailData {
	data := mailData{
		Organization: s.organization,
		PortalURL:    s.portalURL,
		Name:         app.ApplicantName,
		Track:        app.Track.Title(),
		Applicant:    app.ApplicantName,
	}
	if data.Name == "" {
		data.Name = "applicant"
	}
	if app.FirstChoice != "" {
		data.Position = s.registry.Title(app.FirstChoice)
	}
	return data
}

// Notify mails the applicant about a committed transition
func (s *notificationServiceImpl) Notify(ctx context.Context, app *models.Application, outcome workflow.Outcome) error {
	id, ok := SelectTemplate(outcome.Track, outcome.NewStatus, outcome.TargetTrack)
	if !ok {
		// Redirects always owe the applicant an explanation
		if outcome.NewStatus == models.StatusRedirected {
			return fmt.Errorf("%w: no template for %s redirected to %s", apperrors.ErrMail, outcome.Track, outcome.TargetTrack)
		}
		return nil
	}

	data := s.baseData(app)
	if outcome.Redirection != "" {
		data.Target = s.registry.Title(outcome.Redirection)
	}

	return s.send(ctx, id, data, app.ApplicantEmail, app.ApplicantName)
}

// NotifyInterview mails the applicant and the EB interviewer. Both are attempted.
func (s *notificationServiceImpl) NotifyInterview(ctx context.Context, app *models.Application, notice InterviewNotice) error {
	data := s.baseData(app)
	data.Day = notice.Slot.Day
	data.StartTime = notice.Slot.StartTime
	data.EndTime = notice.Slot.EndTime
	data.MeetingLink = notice.MeetingLink
	data.Interviewer = notice.InterviewerTitle

	applicantErr := s.send(ctx, TemplateInterviewApplicant, data, app.ApplicantEmail, app.ApplicantName)

	data.Name = notice.InterviewerName
	if data.Name == "" {
		data.Name = notice.InterviewerTitle
	}
	interviewerErr := s.send(ctx, TemplateInterviewInterviewer, data, notice.InterviewerEmail, notice.InterviewerName)

	return errors.Join(applicantErr, interviewerErr)
}

func (s *notificationServiceImpl) send(ctx context.Context, id TemplateID, data mailData, to, toName string) error {
	if to == "" {
		return fmt.Errorf("%w: no recipient for %s", apperrors.ErrMail, id)
	}

	subject, body, err := render(id, data)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrMail, err)
	}

	messageID, err := s.sender.Send(ctx, email.Message{
		To:      to,
		ToName:  toName,
		Subject: subject,
		HTML:    body,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("template", string(id)).Str("to", to).Msg("Failed to send notification")
		return fmt.Errorf("%w: %v", apperrors.ErrMail, err)
	}

	s.logger.Info().Str("template", string(id)).Str("to", to).Str("messageID", messageID).Msg("Notification sent")
	return nil
}
