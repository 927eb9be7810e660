package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/communitysquad/eventhub/internal/model"
	"github.com/communitysquad/eventhub/internal/repository"
)

func newUserFixture() (*fakeUserStore, *fakeRoleStore, *UserService) {
	users := newFakeUserStore()
	roles := newFakeRoleStore(
		model.Role{ID: 1, Title: model.RoleAdmin, Status: model.StatusActive},
		model.Role{ID: 2, Title: model.RoleViewer, Status: model.StatusActive},
	)
	return users, roles, NewUserService(users, roles, zerolog.Nop())
}

func TestToggleRoleCreatesActiveAssignment(t *testing.T) {
	users, _, svc := newUserFixture()
	users.add(model.User{ID: "user-1", Status: model.StatusActive})

	assignment, err := svc.ToggleRole(context.Background(), model.UpdateUserRoleRequest{UserID: "user-1", RoleID: 1})
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, assignment.Status)
	require.Equal(t, model.RoleAdmin, assignment.RoleTitle)
	require.NotZero(t, assignment.ID)
}

func TestToggleRoleFlipsExistingAssignment(t *testing.T) {
	users, roles, svc := newUserFixture()
	users.add(model.User{ID: "user-1", Status: model.StatusActive})

	first, err := svc.ToggleRole(context.Background(), model.UpdateUserRoleRequest{UserID: "user-1", RoleID: 1})
	require.NoError(t, err)

	second, err := svc.ToggleRole(context.Background(), model.UpdateUserRoleRequest{UserID: "user-1", RoleID: 1})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID, "toggling must reuse the same row")
	require.Equal(t, model.StatusInactive, second.Status)

	// Toggling twice more restores the original status.
	third, err := svc.ToggleRole(context.Background(), model.UpdateUserRoleRequest{UserID: "user-1", RoleID: 1})
	require.NoError(t, err)
	require.Equal(t, model.StatusActive, third.Status)

	require.Len(t, roles.assignments, 1)
}

func TestToggleRoleRevokedRoleLeavesActiveSet(t *testing.T) {
	users, roles, svc := newUserFixture()
	users.add(model.User{ID: "user-1", Status: model.StatusActive})

	_, err := svc.ToggleRole(context.Background(), model.UpdateUserRoleRequest{UserID: "user-1", RoleID: 1})
	require.NoError(t, err)
	_, err = svc.ToggleRole(context.Background(), model.UpdateUserRoleRequest{UserID: "user-1", RoleID: 2})
	require.NoError(t, err)

	titles, err := roles.ActiveTitlesForUser(context.Background(), "user-1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{model.RoleAdmin, model.RoleViewer}, titles)

	// Revoke admin; only viewer remains active.
	_, err = svc.ToggleRole(context.Background(), model.UpdateUserRoleRequest{UserID: "user-1", RoleID: 1})
	require.NoError(t, err)

	titles, err = svc.ActiveRoles(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, []string{model.RoleViewer}, titles)
}

func TestToggleRoleUnknownRole(t *testing.T) {
	users, _, svc := newUserFixture()
	users.add(model.User{ID: "user-1", Status: model.StatusActive})

	_, err := svc.ToggleRole(context.Background(), model.UpdateUserRoleRequest{UserID: "user-1", RoleID: 42})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestToggleRoleUnknownUser(t *testing.T) {
	_, _, svc := newUserFixture()

	_, err := svc.ToggleRole(context.Background(), model.UpdateUserRoleRequest{UserID: "ghost", RoleID: 1})
	require.ErrorIs(t, err, repository.ErrNotFound)
}
