package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/communitysquad/eventhub/internal/auth"
	"github.com/communitysquad/eventhub/internal/model"
)

const testAuthSecret = "shared-secret"

func newAuthFixture(seedRoles ...model.Role) (*fakeUserStore, *fakeRoleStore, *AuthService) {
	users := newFakeUserStore()
	roles := newFakeRoleStore(seedRoles...)
	tokens := auth.NewTokenManager("test-signing-key", time.Hour, "eventhub")
	return users, roles, NewAuthService(users, roles, tokens, testAuthSecret, zerolog.Nop())
}

func defaultRoles() []model.Role {
	return []model.Role{
		{ID: 1, Title: model.RoleAdmin, Status: model.StatusActive},
		{ID: 2, Title: model.RoleViewer, Status: model.StatusActive},
	}
}

func TestRegisterBootstrapsDefaultRole(t *testing.T) {
	_, _, svc := newAuthFixture(defaultRoles()...)

	res, err := svc.Register(context.Background(), model.RegisterUserRequest{
		Email:    "Jamie@Example.com",
		Name:     "Jamie",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.NotEmpty(t, res.RefreshToken)
	require.Equal(t, "jamie@example.com", res.User.Email)
	require.Equal(t, "jamie", res.User.UserName)
	require.Len(t, res.User.Roles, 1)
	require.Equal(t, model.RoleViewer, res.User.Roles[0].RoleTitle)
	require.Equal(t, model.StatusActive, res.User.Roles[0].Status)
}

func TestRegisterMissingDefaultRole(t *testing.T) {
	_, _, svc := newAuthFixture(model.Role{ID: 1, Title: model.RoleAdmin, Status: model.StatusActive})

	_, err := svc.Register(context.Background(), model.RegisterUserRequest{
		Email:    "jamie@example.com",
		Password: "hunter22",
	})
	require.ErrorIs(t, err, ErrMissingDefaultRole)
}

func TestRegisterTakenUserNameFallsBackToLogin(t *testing.T) {
	users, _, svc := newAuthFixture(defaultRoles()...)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	users.add(model.User{
		ID:           "user-1",
		Email:        "jamie@example.com",
		UserName:     "jamie",
		PasswordHash: string(hash),
		Status:       model.StatusActive,
	})

	res, err := svc.Register(context.Background(), model.RegisterUserRequest{
		Email:    "jamie@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.Equal(t, "user-1", res.User.ID, "existing account is signed in, not duplicated")
	require.Len(t, users.users, 1)
}

func TestRegisterTakenUserNameWrongPassword(t *testing.T) {
	users, _, svc := newAuthFixture(defaultRoles()...)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	users.add(model.User{
		ID:           "user-1",
		Email:        "jamie@example.com",
		UserName:     "jamie",
		PasswordHash: string(hash),
		Status:       model.StatusActive,
	})

	_, err = svc.Register(context.Background(), model.RegisterUserRequest{
		Email:    "jamie@example.com",
		Password: "wrong",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsWrongSecret(t *testing.T) {
	_, _, svc := newAuthFixture(defaultRoles()...)

	_, err := svc.Login(context.Background(), model.LoginRequest{
		Email:     "jamie@example.com",
		AuthToken: "not-the-secret",
	})
	require.ErrorIs(t, err, ErrInvalidAuthToken)
}

func TestLoginProvisionsUnknownUser(t *testing.T) {
	users, _, svc := newAuthFixture(defaultRoles()...)

	res, err := svc.Login(context.Background(), model.LoginRequest{
		Email:     "new@example.com",
		Name:      "New Person",
		AuthToken: testAuthSecret,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	require.Equal(t, "new", res.User.UserName)
	require.Len(t, users.users, 1)
	require.Len(t, res.User.Roles, 1)
	require.Equal(t, model.RoleViewer, res.User.Roles[0].RoleTitle)
}

func TestLoginRejectsDeactivatedUser(t *testing.T) {
	users, _, svc := newAuthFixture(defaultRoles()...)
	users.add(model.User{
		ID:     "user-1",
		Email:  "jamie@example.com",
		Status: model.StatusInactive,
	})

	_, err := svc.Login(context.Background(), model.LoginRequest{
		Email:     "jamie@example.com",
		AuthToken: testAuthSecret,
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginReturnsOnlyActiveAssignments(t *testing.T) {
	users, roles, svc := newAuthFixture(defaultRoles()...)
	users.add(model.User{ID: "user-1", Email: "jamie@example.com", Status: model.StatusActive})
	roles.assignments = []model.UserRole{
		{ID: 1, UserID: "user-1", RoleID: 1, Status: model.StatusInactive},
		{ID: 2, UserID: "user-1", RoleID: 2, Status: model.StatusActive},
	}

	res, err := svc.Login(context.Background(), model.LoginRequest{
		Email:     "jamie@example.com",
		AuthToken: testAuthSecret,
	})
	require.NoError(t, err)
	require.Len(t, res.User.Roles, 1)
	require.Equal(t, int64(2), res.User.Roles[0].ID)
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	_, _, svc := newAuthFixture(defaultRoles()...)

	res, err := svc.Login(context.Background(), model.LoginRequest{
		Email:     "jamie@example.com",
		AuthToken: testAuthSecret,
	})
	require.NoError(t, err)

	token, err := svc.Refresh(res.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	_, err = svc.Refresh("not-a-token")
	require.Error(t, err)
}
