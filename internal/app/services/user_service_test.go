package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/recruitportal/internal/app/models"
	"github.com/yigit/recruitportal/internal/app/models/dto"
	"github.com/yigit/recruitportal/internal/pkg/apperrors"
)

func TestSetRole(t *testing.T) {
	env := newTestEnv(t)
	root := superAdmin()
	target := models.User{ID: uuid.New(), Email: "bo@org.example", Name: "Bo", Role: models.RoleApplicant}
	env.users.users[root.UserID] = models.User{ID: root.UserID, Email: root.Email, Role: models.RoleSuperAdmin}
	env.users.users[target.ID] = target
	ctx := context.Background()

	u, err := env.userSvc.SetRole(ctx, root, target.ID, &dto.UpdateUserRoleRequest{Role: "admin", Position: "treasurer"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "treasurer", u.Position)

	_, err = env.userSvc.SetRole(ctx, root, target.ID, &dto.UpdateUserRoleRequest{Role: "admin", Position: "finance"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.userSvc.SetRole(ctx, root, target.ID, &dto.UpdateUserRoleRequest{Role: "applicant", Position: "treasurer"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = env.userSvc.SetRole(ctx, root, root.UserID, &dto.UpdateUserRoleRequest{Role: "admin"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = env.userSvc.SetRole(ctx, financeDirector(), target.ID, &dto.UpdateUserRoleRequest{Role: "super_admin"})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	_, err = env.userSvc.SetRole(ctx, root, uuid.New(), &dto.UpdateUserRoleRequest{Role: "admin"})
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestSetRoleDropsCachedProfileOfOldPosition(t *testing.T) {
	env := newTestEnv(t)
	root := superAdmin()
	dana := financeDirector()
	env.users.users[dana.UserID] = models.User{ID: dana.UserID, Email: dana.Email, Role: models.RoleAdmin, Position: "director-finance"}
	ctx := context.Background()

	_, err := env.profSvc.Mine(ctx, dana)
	require.NoError(t, err)
	require.Equal(t, 1, env.sessions.Len())

	_, err = env.userSvc.SetRole(ctx, root, dana.UserID, &dto.UpdateUserRoleRequest{Role: "admin", Position: "auditor"})
	require.NoError(t, err)
	assert.Zero(t, env.sessions.Len())
}

func TestListUsersFiltersByRole(t *testing.T) {
	env := newTestEnv(t)
	for _, role := range []models.RoleType{models.RoleAdmin, models.RoleAdmin, models.RoleApplicant} {
		id := uuid.New()
		env.users.users[id] = models.User{ID: id, Email: id.String() + "@x.example", Role: role}
	}

	users, total, err := env.userSvc.List(context.Background(), &dto.UserListRequest{Role: "admin", Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, users, 2)
}
