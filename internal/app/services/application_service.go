package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yigit/recruitportal/internal/app/auth"
	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/models/dto"
	"github.com/yigit/recruitportal/internal/app/registry"
	"github.com/yigit/recruitportal/internal/app/repositories"
	"github.com/yigit/recruitportal/internal/app/workflow"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
	"github.com/yigit/recruitportal/internal/pkg/filestorage"
	"github.com/yigit/recruitportal/internal/pkg/validation"
)

// Mail warnings returned alongside committed changes
const (
	WarningTransitionMail = "status updated, but the applicant could not be notified by email"
	WarningInterviewMail  = "interview scheduled, but not every notification email could be sent"
)

// EventPublisher receives committed application changes for live reviewers
type EventPublisher interface {
	Publish(event models.ApplicationEvent)
}

// ActionResult is a committed change plus an optional soft mail warning
type ActionResult struct {
	Application *models.Application
	MailWarning string
}

// Document is an uploaded applicant file opened for download
type Document struct {
	Name    string
	Content io.ReadSeekCloser
}

// ApplicationService defines the interface for application review operations
type ApplicationService interface {
	Get(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*models.Application, error)
	List(ctx context.Context, actor *auth.Actor, req *dto.ApplicationListRequest) ([]*models.Application, int64, error)
	Search(ctx context.Context, actor *auth.Actor, req *dto.ApplicationSearchRequest) (*repositories.SearchResult, error)
	ApplyAction(ctx context.Context, actor *auth.Actor, req *dto.ApplicationActionRequest) (*ActionResult, error)
	ScheduleInterview(ctx context.Context, actor *auth.Actor, id uuid.UUID, slot models.InterviewSlot) (*ActionResult, error)
	Submit(ctx context.Context, actor *auth.Actor, req *dto.SubmitApplicationRequest, cv, portfolio *multipart.FileHeader) (*models.Application, error)
	Reset(ctx context.Context, actor *auth.Actor, id uuid.UUID) error
	Document(ctx context.Context, actor *auth.Actor, id uuid.UUID, kind models.DocumentKind) (*Document, error)
}

// applicationServiceImpl implements ApplicationService
type applicationServiceImpl struct {
	appRepo     repositories.ApplicationStore
	profileRepo repositories.EBProfileStore
	authz       *auth.AuthorizationService
	registry    *registry.Registry
	notifier    NotificationService
	storage     filestorage.Storage
	events      EventPublisher
	now         func() time.Time
	logger      zerolog.Logger
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(
	appRepo repositories.ApplicationStore,
	profileRepo repositories.EBProfileStore,
	authz *auth.AuthorizationService,
	reg *registry.Registry,
	notifier NotificationService,
	storage filestorage.Storage,
	events EventPublisher,
	logger zerolog.Logger,
) ApplicationService {
	return &applicationServiceImpl{
		appRepo:     appRepo,
		profileRepo: profileRepo,
		authz:       authz,
		registry:    reg,
		notifier:    notifier,
		storage:     storage,
		events:      events,
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

// Get returns an application visible to the actor
func (s *applicationServiceImpl) Get(ctx context.Context, actor *auth.Actor, id uuid.UUID) (*models.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.ApplicantID == actor.UserID {
		return app, nil
	}
	if err := s.authz.ValidateReviewer(actor, app); err != nil {
		return nil, err
	}
	return app, nil
}

// List returns one page of applications inside the actor's purview
func (s *applicationServiceImpl) List(ctx context.Context, actor *auth.Actor, req *dto.ApplicationListRequest) ([]*models.Application, int64, error) {
	return s.appRepo.List(ctx, repositories.ApplicationFilter{
		Track:    models.Track(req.Type),
		Status:   models.ApplicationStatus(req.Status),
		Purview:  s.authz.PurviewOf(actor),
		Page:     req.Page,
		PageSize: req.Limit,
	})
}

// Search matches applications inside the actor's purview. Super-admins may narrow
// the search to the purview of a given position.
func (s *applicationServiceImpl) Search(ctx context.Context, actor *auth.Actor, req *dto.ApplicationSearchRequest) (*repositories.SearchResult, error) {
	query := strings.TrimSpace(req.Query)
	if len(query) < 2 {
		return nil, apperrors.NewValidationError("search query must be at least 2 characters", map[string]interface{}{"q": req.Query})
	}

	purview := s.authz.PurviewOf(actor)
	if req.Position != "" && actor.IsSuperAdmin() {
		if _, ok := s.registry.Role(req.Position); !ok {
			return nil, apperrors.NewValidationError("unknown position", map[string]interface{}{"position": req.Position})
		}
		purview = s.registry.PurviewFor(models.RoleAdmin, req.Position)
	}

	return s.appRepo.Search(ctx, query, purview)
}

// ApplyAction runs an admin decision through the state machine and commits it
// with a conditional write. Notification failures never undo the commit.
func (s *applicationServiceImpl) ApplyAction(ctx context.Context, actor *auth.Actor, req *dto.ApplicationActionRequest) (*ActionResult, error) {
	id, err := uuid.Parse(req.ApplicationID)
	if err != nil {
		return nil, apperrors.NewBadRequestError("applicationId must be a valid UUID")
	}

	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if string(app.Track) != req.Type {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("application %s is a %s application, not %s", id, app.Track, req.Type))
	}
	if err := s.authz.ValidateReviewer(actor, app); err != nil {
		return nil, err
	}

	next, outcome, err := workflow.Apply(*app, models.Action(req.Action), workflow.Params{RedirectTarget: req.Redirection}, s.registry, s.now())
	if err != nil {
		return nil, err
	}

	updated, err := s.appRepo.UpdateStatus(ctx, app.ID, app.Status, app.Version, &next)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.logger.Warn().
				Str("applicationID", app.ID.String()).
				Str("action", req.Action).
				Str("actorID", actor.UserID.String()).
				Msg("Concurrent review lost the conditional write")
		}
		return nil, err
	}

	s.logger.Info().
		Str("applicationID", updated.ID.String()).
		Str("track", string(updated.Track)).
		Str("from", string(outcome.OldStatus)).
		Str("to", string(outcome.NewStatus)).
		Str("redirection", outcome.Redirection).
		Str("actorID", actor.UserID.String()).
		Msg("Application status changed")

	result := &ActionResult{Application: updated}
	if err := s.notifier.Notify(ctx, updated, outcome); err != nil {
		s.logger.Warn().Err(err).Str("applicationID", updated.ID.String()).Msg("Transition committed without notification")
		result.MailWarning = WarningTransitionMail
	}

	s.events.Publish(models.ApplicationEvent{
		Type:          models.EventStatusChanged,
		ApplicationID: updated.ID,
		Track:         updated.Track,
		OldStatus:     outcome.OldStatus,
		NewStatus:     outcome.NewStatus,
		Redirection:   outcome.Redirection,
		ActorID:       actor.UserID,
		At:            updated.UpdatedAt,
		Positions:     updated.Positions(),
	})

	return result, nil
}

// ScheduleInterview assigns a slot with an EB interviewer and notifies both parties
func (s *applicationServiceImpl) ScheduleInterview(ctx context.Context, actor *auth.Actor, id uuid.UUID, slot models.InterviewSlot) (*ActionResult, error) {
	if !validation.ValidTimeRange(slot.StartTime, slot.EndTime) {
		return nil, apperrors.NewValidationError("interview must end after it starts", map[string]interface{}{
			"startTime": slot.StartTime,
			"endTime":   slot.EndTime,
		})
	}
	role, ok := s.registry.Role(slot.InterviewerRef)
	if !ok {
		return nil, apperrors.NewValidationError("interviewer must be an executive board role", map[string]interface{}{
			"interviewerRef": slot.InterviewerRef,
		})
	}

	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Track == models.TrackMember {
		return nil, apperrors.NewBadRequestError("member applications are not interviewed")
	}
	if err := s.authz.ValidateReviewer(actor, app); err != nil {
		return nil, err
	}
	if app.Status != models.StatusPending && app.Status != models.StatusEvaluating {
		return nil, apperrors.NewIllegalTransitionError(
			fmt.Sprintf("cannot schedule an interview for an application in status %s", app.Status),
			map[string]interface{}{"track": app.Track, "status": app.Status},
		)
	}

	updated, err := s.appRepo.SetInterviewSlot(ctx, id, app.Version, slot, s.now())
	if err != nil {
		return nil, err
	}

	notice := InterviewNotice{
		Slot:             slot,
		InterviewerTitle: role.Title,
		InterviewerEmail: s.registry.EmailFor(role.ID),
	}
	profile, err := s.profileRepo.GetByPosition(ctx, role.ID)
	switch {
	case err == nil:
		notice.InterviewerName = profile.Name
		notice.MeetingLink = profile.MeetingLink
		if profile.Email != "" {
			notice.InterviewerEmail = profile.Email
		}
	case errors.Is(err, apperrors.ErrEBProfileNotFound):
		s.logger.Warn().Str("position", role.ID).Msg("No EB profile for interviewer, sending without meeting link")
	default:
		s.logger.Error().Err(err).Str("position", role.ID).Msg("Error loading interviewer profile")
	}

	result := &ActionResult{Application: updated}
	if err := s.notifier.NotifyInterview(ctx, updated, notice); err != nil {
		s.logger.Warn().Err(err).Str("applicationID", updated.ID.String()).Msg("Interview scheduled without every notification")
		result.MailWarning = WarningInterviewMail
	}

	s.events.Publish(models.ApplicationEvent{
		Type:          models.EventInterviewScheduled,
		ApplicationID: updated.ID,
		Track:         updated.Track,
		OldStatus:     updated.Status,
		NewStatus:     updated.Status,
		ActorID:       actor.UserID,
		At:            updated.UpdatedAt,
		Positions:     updated.Positions(),
	})

	return result, nil
}

// validateSubmission checks the form against the registry
func (s *applicationServiceImpl) validateSubmission(track models.Track, req *dto.SubmitApplicationRequest, cv *multipart.FileHeader) error {
	fields := map[string]interface{}{}
	if !validation.ValidStudentNumber(req.StudentNumber) {
		fields["studentNumber"] = "must be 8 to 10 digits"
	}
	if !validation.ValidSection(req.Section) {
		fields["section"] = "is required"
	}

	first := strings.TrimSpace(req.FirstChoice)
	second := strings.TrimSpace(req.SecondChoice)
	if track == models.TrackMember {
		if first != "" || second != "" {
			fields["firstChoice"] = "member applications take no position choices"
		}
	} else {
		if !s.registry.ValidChoice(track, first) {
			fields["firstChoice"] = "must be a valid " + track.Title() + " position"
		}
		if second != "" {
			if !s.registry.ValidChoice(track, second) {
				fields["secondChoice"] = "must be a valid " + track.Title() + " position"
			} else if second == first {
				fields["secondChoice"] = "must differ from firstChoice"
			}
		}
		if cv == nil {
			fields["cv"] = "is required"
		}
	}

	if len(fields) > 0 {
		return apperrors.NewValidationError("invalid application", fields)
	}
	return nil
}

// Submit validates and stores a new application with its uploaded documents
func (s *applicationServiceImpl) Submit(ctx context.Context, actor *auth.Actor, req *dto.SubmitApplicationRequest, cv, portfolio *multipart.FileHeader) (*models.Application, error) {
	track := models.Track(req.Type)
	if !track.Valid() {
		return nil, apperrors.NewValidationError("invalid application", map[string]interface{}{"type": req.Type})
	}
	if err := s.validateSubmission(track, req, cv); err != nil {
		return nil, err
	}

	now := s.now()
	app := &models.Application{
		ID:             uuid.New(),
		Track:          track,
		ApplicantID:    actor.UserID,
		StudentNumber:  strings.TrimSpace(req.StudentNumber),
		Section:        strings.TrimSpace(req.Section),
		FirstChoice:    strings.TrimSpace(req.FirstChoice),
		SecondChoice:   strings.TrimSpace(req.SecondChoice),
		Status:         models.StatusPending,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
		ApplicantName:  actor.Name,
		ApplicantEmail: actor.Email,
	}

	if track != models.TrackMember {
		folder := "applications/" + string(track)
		var err error
		if app.CVURL, err = s.storage.Upload(ctx, cv, folder); err != nil {
			return nil, s.uploadError("cv", err)
		}
		if app.PortfolioURL, err = s.storage.Upload(ctx, portfolio, folder); err != nil {
			s.discardUploads(ctx, app)
			return nil, s.uploadError("portfolio", err)
		}
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		s.discardUploads(ctx, app)
		return nil, err
	}

	s.logger.Info().
		Str("applicationID", app.ID.String()).
		Str("track", string(track)).
		Str("applicantID", actor.UserID.String()).
		Msg("Application submitted")

	s.events.Publish(models.ApplicationEvent{
		Type:          models.EventApplicationCreated,
		ApplicationID: app.ID,
		Track:         app.Track,
		NewStatus:     app.Status,
		ActorID:       actor.UserID,
		At:            now,
		Positions:     app.Positions(),
	})
	return app, nil
}

func (s *applicationServiceImpl) uploadError(field string, err error) error {
	if errors.Is(err, filestorage.ErrFileRejected) {
		return apperrors.NewValidationError("invalid document", map[string]interface{}{field: err.Error()})
	}
	s.logger.Error().Err(err).Str("field", field).Msg("Error uploading application document")
	return fmt.Errorf("failed to store %s: %w", field, err)
}

func (s *applicationServiceImpl) discardUploads(ctx context.Context, app *models.Application) {
	for _, url := range []string{app.CVURL, app.PortfolioURL} {
		if url == "" {
			continue
		}
		if err := s.storage.Delete(ctx, url); err != nil {
			s.logger.Warn().Err(err).Str("url", url).Msg("Failed to remove uploaded document")
		}
	}
}

// Reset deletes the actor's own application while no interview is scheduled
func (s *applicationServiceImpl) Reset(ctx context.Context, actor *auth.Actor, id uuid.UUID) error {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.ValidateOwnership(actor, app); err != nil {
		return err
	}
	if !app.CanDelete() {
		return apperrors.ErrDeleteNotAllowed
	}

	if err := s.appRepo.DeleteUnscheduled(ctx, id); err != nil {
		return err
	}
	s.discardUploads(ctx, app)

	s.logger.Info().Str("applicationID", id.String()).Str("applicantID", actor.UserID.String()).Msg("Application reset by applicant")

	s.events.Publish(models.ApplicationEvent{
		Type:          models.EventApplicationDeleted,
		ApplicationID: app.ID,
		Track:         app.Track,
		OldStatus:     app.Status,
		ActorID:       actor.UserID,
		At:            s.now(),
		Positions:     app.Positions(),
	})
	return nil
}

// Document opens an uploaded CV or portfolio for the applicant or a reviewer
// whose purview covers the application
func (s *applicationServiceImpl) Document(ctx context.Context, actor *auth.Actor, id uuid.UUID, kind models.DocumentKind) (*Document, error) {
	if kind != models.DocumentCV && kind != models.DocumentPortfolio {
		return nil, apperrors.NewValidationError("unknown document", map[string]interface{}{"kind": string(kind)})
	}

	app, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	ref := app.DocumentRef(kind)
	if ref == "" {
		return nil, apperrors.NewCustomError(apperrors.ErrResourceNotFound, fmt.Sprintf("no %s was uploaded for this application", kind))
	}

	content, err := s.storage.Open(ctx, ref)
	if err != nil {
		if errors.Is(err, filestorage.ErrFileNotFound) {
			s.logger.Warn().Str("applicationID", id.String()).Str("kind", string(kind)).Msg("Stored document is missing")
			return nil, apperrors.NewCustomError(apperrors.ErrResourceNotFound, "document is no longer available")
		}
		return nil, err
	}

	return &Document{
		Name:    fmt.Sprintf("%s-%s%s", app.StudentNumber, kind, path.Ext(ref)),
		Content: content,
	}, nil
}
