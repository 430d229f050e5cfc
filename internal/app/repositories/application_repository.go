package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/registry"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
	"github.com/yigit/recruitportal/internal/pkg/dberrors"
	"github.com/yigit/recruitportal/internal/pkg/helpers"
	"github.com/yigit/recruitportal/internal/pkg/logger"
)

const (
	applicantTrackConstraint = "applications_applicant_track_key"

	// searchLimit caps each track bucket of a search
	searchLimit = 50
)

// ApplicationFilter narrows a listing
type ApplicationFilter struct {
	Track    models.Track
	Status   models.ApplicationStatus
	Purview  registry.Purview
	Page     int
	PageSize int
}

// SearchResult partitions search matches by track
type SearchResult struct {
	Committee []*models.Application
	EA        []*models.Application
	Member    []*models.Application
}

// ApplicationStore defines the persistence operations for applications.
// UpdateStatus is the only path that writes status or redirection.
type ApplicationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	List(ctx context.Context, filter ApplicationFilter) ([]*models.Application, int64, error)
	Search(ctx context.Context, query string, purview registry.Purview) (*SearchResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, expected models.ApplicationStatus, expectedVersion int64, next *models.Application) (*models.Application, error)
	SetInterviewSlot(ctx context.Context, id uuid.UUID, expectedVersion int64, slot models.InterviewSlot, at time.Time) (*models.Application, error)
	Create(ctx context.Context, app *models.Application) error
	DeleteUnscheduled(ctx context.Context, id uuid.UUID) error
}

// ApplicationRepository handles application database operations
type ApplicationRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewApplicationRepository creates a new ApplicationRepository
func NewApplicationRepository(db DBTX) *ApplicationRepository {
	return &ApplicationRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var applicationColumns = []string{
	"a.id", "a.track", "a.applicant_id", "a.student_number", "a.section",
	"a.first_choice", "a.second_choice", "a.cv_url", "a.portfolio_url",
	"a.status", "a.redirection",
	"a.interview_day", "a.interview_start", "a.interview_end", "a.interview_interviewer",
	"a.version", "a.created_at", "a.updated_at",
	"u.name", "u.email",
}

func (r *ApplicationRepository) selectApplications() squirrel.SelectBuilder {
	return r.sb.Select(applicationColumns...).
		From("applications a").
		Join("users u ON u.id = a.applicant_id")
}

// purviewCondition restricts committee and EA rows to those touching the purview.
// Member applications are visible to every reviewer.
func purviewCondition(p registry.Purview) squirrel.Sqlizer {
	if p.All {
		return nil
	}
	ids := p.IDs()
	if len(ids) == 0 {
		return squirrel.Eq{"a.track": models.TrackMember}
	}
	return squirrel.Or{
		squirrel.Eq{"a.track": models.TrackMember},
		squirrel.Eq{"a.first_choice": ids},
		squirrel.Eq{"a.second_choice": ids},
		squirrel.Eq{"a.redirection": ids},
	}
}

func applyFilter(b squirrel.SelectBuilder, filter ApplicationFilter) squirrel.SelectBuilder {
	if filter.Track != "" {
		b = b.Where(squirrel.Eq{"a.track": filter.Track})
	}
	if filter.Status != "" {
		b = b.Where(squirrel.Eq{"a.status": filter.Status})
	}
	if cond := purviewCondition(filter.Purview); cond != nil {
		b = b.Where(cond)
	}
	return b
}

func (r *ApplicationRepository) listQuery(filter ApplicationFilter) squirrel.SelectBuilder {
	offset, limit := helpers.CalculateOffsetLimit(filter.Page, filter.PageSize)
	return applyFilter(r.selectApplications(), filter).
		OrderBy("a.created_at DESC", "a.id").
		Limit(uint64(limit)).
		Offset(offset)
}

func (r *ApplicationRepository) countQuery(filter ApplicationFilter) squirrel.SelectBuilder {
	return applyFilter(r.sb.Select("COUNT(*)").From("applications a"), filter)
}

// escapeLike escapes LIKE metacharacters in user input
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *ApplicationRepository) searchQuery(query string, track models.Track, purview registry.Purview) squirrel.SelectBuilder {
	pattern := "%" + escapeLike(strings.TrimSpace(query)) + "%"
	return applyFilter(r.selectApplications(), ApplicationFilter{Track: track, Purview: purview}).
		Where(squirrel.Or{
			squirrel.ILike{"u.name": pattern},
			squirrel.ILike{"u.email": pattern},
			squirrel.ILike{"a.student_number": pattern},
			squirrel.ILike{"a.first_choice": pattern},
			squirrel.ILike{"a.second_choice": pattern},
		}).
		OrderBy("a.created_at DESC").
		Limit(searchLimit)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var app models.Application
	var firstChoice, secondChoice, cvURL, portfolio, redirection *string
	var day, start, end, interviewer *string

	err := row.Scan(
		&app.ID, &app.Track, &app.ApplicantID, &app.StudentNumber, &app.Section,
		&firstChoice, &secondChoice, &cvURL, &portfolio,
		&app.Status, &redirection,
		&day, &start, &end, &interviewer,
		&app.Version, &app.CreatedAt, &app.UpdatedAt,
		&app.ApplicantName, &app.ApplicantEmail,
	)
	if err != nil {
		return nil, err
	}

	app.FirstChoice = helpers.StringValue(firstChoice)
	app.SecondChoice = helpers.StringValue(secondChoice)
	app.CVURL = helpers.StringValue(cvURL)
	app.PortfolioURL = helpers.StringValue(portfolio)
	app.Redirection = redirection
	if day != nil {
		app.InterviewSlot = &models.InterviewSlot{
			Day:            *day,
			StartTime:      helpers.StringValue(start),
			EndTime:        helpers.StringValue(end),
			InterviewerRef: helpers.StringValue(interviewer),
		}
	}
	return &app, nil
}

func (r *ApplicationRepository) queryApplications(ctx context.Context, b squirrel.SelectBuilder) ([]*models.Application, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build application query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing application query")
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	apps := []*models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning application row: %w", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating application rows: %w", err)
	}
	return apps, nil
}

// GetByID retrieves an application by ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	sql, args, err := r.selectApplications().Where(squirrel.Eq{"a.id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get application query: %w", err)
	}

	app, err := scanApplication(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrApplicationNotFound
		}
		logger.Error().Err(err).Str("applicationID", id.String()).Msg("Error scanning application row")
		return nil, fmt.Errorf("error getting application by ID: %w", err)
	}
	return app, nil
}

// List returns one page of applications and the total matching count
func (r *ApplicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]*models.Application, int64, error) {
	countSQL, countArgs, err := r.countQuery(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error counting applications")
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	if total == 0 {
		return []*models.Application{}, 0, nil
	}

	apps, err := r.queryApplications(ctx, r.listQuery(filter))
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// Search matches name, email, student number and chosen positions, bucketed by track
func (r *ApplicationRepository) Search(ctx context.Context, query string, purview registry.Purview) (*SearchResult, error) {
	result := &SearchResult{}
	buckets := map[models.Track]*[]*models.Application{
		models.TrackCommittee: &result.Committee,
		models.TrackEA:        &result.EA,
		models.TrackMember:    &result.Member,
	}

	for _, track := range models.Tracks {
		apps, err := r.queryApplications(ctx, r.searchQuery(query, track, purview))
		if err != nil {
			return nil, err
		}
		*buckets[track] = apps
	}
	return result, nil
}

func (r *ApplicationRepository) updateStatusQuery(id uuid.UUID, expected models.ApplicationStatus, expectedVersion int64, next *models.Application) squirrel.UpdateBuilder {
	return r.sb.Update("applications").
		Set("status", next.Status).
		Set("redirection", next.Redirection).
		Set("updated_at", next.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": id, "status": expected, "version": expectedVersion})
}

// UpdateStatus writes next's status and redirection only if the row still has the
// expected status and version. A lost race yields ErrConflict.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, expected models.ApplicationStatus, expectedVersion int64, next *models.Application) (*models.Application, error) {
	sql, args, err := r.updateStatusQuery(id, expected, expectedVersion, next).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update status query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		if dberrors.IsCheckViolation(err) {
			return nil, apperrors.NewCustomError(apperrors.ErrIllegalTransition, "status and redirection are inconsistent")
		}
		logger.Error().Err(err).Str("applicationID", id.String()).Msg("Error updating application status")
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return nil, r.missOrConflict(ctx, id)
	}
	return r.GetByID(ctx, id)
}

func (r *ApplicationRepository) setInterviewSlotQuery(id uuid.UUID, expectedVersion int64, slot models.InterviewSlot, at time.Time) squirrel.UpdateBuilder {
	return r.sb.Update("applications").
		Set("interview_day", slot.Day).
		Set("interview_start", slot.StartTime).
		Set("interview_end", slot.EndTime).
		Set("interview_interviewer", slot.InterviewerRef).
		Set("updated_at", at).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{
			"id":      id,
			"version": expectedVersion,
			"status":  []models.ApplicationStatus{models.StatusPending, models.StatusEvaluating},
		})
}

// SetInterviewSlot assigns the slot while the application is still under review
func (r *ApplicationRepository) SetInterviewSlot(ctx context.Context, id uuid.UUID, expectedVersion int64, slot models.InterviewSlot, at time.Time) (*models.Application, error) {
	sql, args, err := r.setInterviewSlotQuery(id, expectedVersion, slot, at).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build set interview query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("applicationID", id.String()).Msg("Error setting interview slot")
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, r.missOrConflict(ctx, id)
	}
	return r.GetByID(ctx, id)
}

// Create inserts a new application. One application per applicant and track.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	sql, args, err := r.sb.Insert("applications").
		Columns("id", "track", "applicant_id", "student_number", "section",
			"first_choice", "second_choice", "cv_url", "portfolio_url",
			"status", "version", "created_at", "updated_at").
		Values(app.ID, app.Track, app.ApplicantID, app.StudentNumber, app.Section,
			helpers.NullableString(app.FirstChoice), helpers.NullableString(app.SecondChoice),
			helpers.NullableString(app.CVURL), helpers.NullableString(app.PortfolioURL),
			app.Status, app.Version, app.CreatedAt, app.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create application query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsDuplicateConstraintError(err, applicantTrackConstraint) {
			return apperrors.ErrApplicationExists
		}
		logger.Error().Err(err).Msg("Error creating application")
		return fmt.Errorf("error creating application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) deleteUnscheduledQuery(id uuid.UUID) squirrel.DeleteBuilder {
	return r.sb.Delete("applications").
		Where(squirrel.Eq{"id": id, "interview_day": nil})
}

// DeleteUnscheduled removes an application that has no interview slot yet
func (r *ApplicationRepository) DeleteUnscheduled(ctx context.Context, id uuid.UUID) error {
	sql, args, err := r.deleteUnscheduledQuery(id).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete application query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("applicationID", id.String()).Msg("Error deleting application")
		return fmt.Errorf("error executing query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperrors.ErrDeleteNotAllowed
	}
	return nil
}

// missOrConflict distinguishes a vanished row from a lost conditional write
func (r *ApplicationRepository) missOrConflict(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return apperrors.NewConflictError("application was modified by another reviewer, reload and retry")
}
