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
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
	"github.com/yigit/recruitportal/internal/pkg/helpers"
	"github.com/yigit/recruitportal/internal/pkg/logger"
)

// UserStore defines the persistence operations for local user records
type UserStore interface {
	// EnsureUser inserts the session user or refreshes its name, keeping the stored role
	EnsureUser(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, role models.RoleType, page, pageSize int) ([]*models.User, int64, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.RoleType, position string) (*models.User, error)
	UpdateRoleByEmail(ctx context.Context, email string, role models.RoleType) (*models.User, error)
}

// UserRepository handles user database operations
type UserRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const userReturning = "RETURNING id, email, name, role, position, created_at, updated_at"

var userColumns = []string{"id", "email", "name", "role", "position", "created_at", "updated_at"}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var position *string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &position, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Position = helpers.StringValue(position)
	return &u, nil
}

// EnsureUser upserts by email
func (r *UserRepository) EnsureUser(ctx context.Context, user *models.User) (*models.User, error) {
	id := user.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := time.Now().UTC()

	sql, args, err := r.sb.Insert("users").
		Columns("id", "email", "name", "role", "created_at", "updated_at").
		Values(id, strings.ToLower(user.Email), user.Name, models.RoleApplicant, now, now).
		Suffix("ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = EXCLUDED.updated_at " + userReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build ensure user query: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		logger.Error().Err(err).Str("email", user.Email).Msg("Error upserting user")
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	sql, args, err := r.sb.Select(userColumns...).From("users").Where(squirrel.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get user query: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by ID: %w", err)
	}
	return u, nil
}

// List returns users ordered by name, optionally filtered by role
func (r *UserRepository) List(ctx context.Context, role models.RoleType, page, pageSize int) ([]*models.User, int64, error) {
	count := r.sb.Select("COUNT(*)").From("users")
	query := r.sb.Select(userColumns...).From("users")
	if role != "" {
		count = count.Where(squirrel.Eq{"role": role})
		query = query.Where(squirrel.Eq{"role": role})
	}

	countSQL, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count users query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}

	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)
	sql, args, err := query.OrderBy("name ASC", "email ASC").Limit(uint64(limit)).Offset(offset).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list users query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing users")
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating user rows: %w", err)
	}
	return users, total, nil
}

// UpdateRole sets role and EB position. An empty position clears it.
func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role models.RoleType, position string) (*models.User, error) {
	sql, args, err := r.sb.Update("users").
		Set("role", role).
		Set("position", helpers.NullableString(position)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		Suffix(userReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update role query: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Str("userID", id.String()).Msg("Error updating user role")
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return u, nil
}

// UpdateRoleByEmail sets the role of the user with the given email
func (r *UserRepository) UpdateRoleByEmail(ctx context.Context, email string, role models.RoleType) (*models.User, error) {
	sql, args, err := r.sb.Update("users").
		Set("role", role).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"email": strings.ToLower(email)}).
		Suffix(userReturning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build update role query: %w", err)
	}

	u, err := scanUser(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return u, nil
}
