package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	appModels "github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/registry"
	appRepos "github.com/yigit/recruitportal/internal/app/repositories"
	"github.com/yigit/recruitportal/internal/db"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
)

// CreateDefaultData creates a placeholder EB profile for every registry role
// that has none and promotes the configured super admin. Existing profiles are
// left untouched so edits made through the API survive restarts.
func CreateDefaultData(ctx context.Context, database *db.PostgresDB, reg *registry.Registry, superAdminEmail string, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (EB profiles)...")

	created := 0
	err := database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		profileRepo := appRepos.NewEBProfileRepository(tx)

		for _, role := range reg.Roles() {
			_, err := profileRepo.GetByPosition(ctx, role.ID)
			if err == nil {
				continue
			}
			if !errors.Is(err, apperrors.ErrEBProfileNotFound) {
				return err
			}

			if _, err := profileRepo.Upsert(ctx, &appModels.EBProfile{
				Position: role.ID,
				Name:     role.Title,
				Email:    reg.EmailFor(role.ID),
				ImageRef: role.ImageRef,
			}); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		lgr.Error().Err(err).Msg("Error creating default EB profiles")
		return err
	}
	lgr.Info().Int("created", created).Msg("Default EB profiles ensured")

	return promoteSuperAdmin(ctx, appRepos.NewUserRepository(database.Pool), superAdminEmail, lgr)
}

// promoteSuperAdmin makes sure the bootstrap account can manage roles before
// anyone else has been promoted
func promoteSuperAdmin(ctx context.Context, users appRepos.UserStore, email string, lgr zerolog.Logger) error {
	email = strings.TrimSpace(email)
	if email == "" {
		lgr.Warn().Msg("No super admin email configured; roles can only be changed in the database")
		return nil
	}

	_, err := users.UpdateRoleByEmail(ctx, email, appModels.RoleSuperAdmin)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		// First start: the account has never signed in, so create it
		name := email
		if at := strings.Index(email, "@"); at > 0 {
			name = email[:at]
		}
		if _, err = users.EnsureUser(ctx, &appModels.User{Email: email, Name: name}); err == nil {
			_, err = users.UpdateRoleByEmail(ctx, email, appModels.RoleSuperAdmin)
		}
	}
	if err != nil {
		lgr.Error().Err(err).Str("email", email).Msg("Error promoting super admin")
		return err
	}

	lgr.Info().Str("email", email).Msg("Super admin ensured")
	return nil
}
