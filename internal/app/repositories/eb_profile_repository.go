package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
	"github.com/yigit/recruitportal/internal/pkg/logger"
)

// EBProfileStore defines the persistence operations for EB profiles
type EBProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.EBProfile, error)
	GetByPosition(ctx context.Context, position string) (*models.EBProfile, error)
	// Upsert creates or replaces the profile of profile.Position
	Upsert(ctx context.Context, profile *models.EBProfile) (*models.EBProfile, error)
}

// EBProfileRepository handles EB profile database operations
type EBProfileRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewEBProfileRepository creates a new EBProfileRepository
func NewEBProfileRepository(db DBTX) *EBProfileRepository {
	return &EBProfileRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var ebProfileColumns = []string{"id", "position", "name", "email", "meeting_link", "image_ref", "updated_at"}

func scanEBProfile(row rowScanner) (*models.EBProfile, error) {
	var p models.EBProfile
	if err := row.Scan(&p.ID, &p.Position, &p.Name, &p.Email, &p.MeetingLink, &p.ImageRef, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *EBProfileRepository) getOne(ctx context.Context, where squirrel.Eq) (*models.EBProfile, error) {
	sql, args, err := r.sb.Select(ebProfileColumns...).From("eb_profiles").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get eb profile query: %w", err)
	}

	p, err := scanEBProfile(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEBProfileNotFound
		}
		return nil, fmt.Errorf("error getting eb profile: %w", err)
	}
	return p, nil
}

// GetByID retrieves a profile by ID
func (r *EBProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.EBProfile, error) {
	return r.getOne(ctx, squirrel.Eq{"id": id})
}

// GetByPosition retrieves the profile of an EB role
func (r *EBProfileRepository) GetByPosition(ctx context.Context, position string) (*models.EBProfile, error) {
	return r.getOne(ctx, squirrel.Eq{"position": position})
}

// Upsert inserts or replaces by position
func (r *EBProfileRepository) Upsert(ctx context.Context, profile *models.EBProfile) (*models.EBProfile, error) {
	id := profile.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	sql, args, err := r.sb.Insert("eb_profiles").
		Columns("id", "position", "name", "email", "meeting_link", "image_ref", "updated_at").
		Values(id, profile.Position, profile.Name, profile.Email, profile.MeetingLink, profile.ImageRef, profile.UpdatedAt).
		Suffix(`ON CONFLICT (position) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			meeting_link = EXCLUDED.meeting_link,
			image_ref = EXCLUDED.image_ref,
			updated_at = EXCLUDED.updated_at
			RETURNING id, position, name, email, meeting_link, image_ref, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build upsert eb profile query: %w", err)
	}

	p, err := scanEBProfile(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		logger.Error().Err(err).Str("position", profile.Position).Msg("Error upserting eb profile")
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return p, nil
}
