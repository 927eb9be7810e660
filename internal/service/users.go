package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/communitysquad/eventhub/internal/model"
)

// UserService owns the admin-facing user listing and the role assignment
// lifecycle.
type UserService struct {
	users  UserStore
	roles  RoleStore
	logger zerolog.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users UserStore, roles RoleStore, logger zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		roles:  roles,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// List returns active users with their Active role assignments, restricted
// to minimal identity fields.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.ListActiveWithRoles(ctx)
}

// ActiveRoles resolves the user's active role set.
func (s *UserService) ActiveRoles(ctx context.Context, userID string) ([]string, error) {
	return s.roles.ActiveTitlesForUser(ctx, userID)
}

// ToggleRole assigns or re-assigns a role to a user. An existing assignment
// row for the pair flips between Active and Inactive; a missing one is
// created Active. Toggling twice therefore restores the original status.
// Fails with the repository's not-found error when the role or user does
// not exist.
func (s *UserService) ToggleRole(ctx context.Context, req model.UpdateUserRoleRequest) (*model.UserRole, error) {
	role, err := s.roles.GetByID(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.roles.AssignmentsForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	for i := range assignments {
		if assignments[i].RoleID != role.ID {
			continue
		}
		assignment := assignments[i]
		assignment.Status = assignment.Status.Toggled()
		if err := s.roles.SaveAssignment(ctx, &assignment); err != nil {
			return nil, err
		}
		s.logger.Info().Str("user_id", user.ID).Str("role", role.Title).
			Str("status", string(assignment.Status)).Msg("role assignment toggled")
		assignment.RoleTitle = role.Title
		return &assignment, nil
	}

	assignment := &model.UserRole{
		UserID:    user.ID,
		RoleID:    role.ID,
		RoleTitle: role.Title,
		Status:    model.StatusActive,
	}
	// The unique constraint on (user_id, role_id) backstops a concurrent
	// assignment of the same pair.
	if err := s.roles.CreateAssignment(ctx, assignment); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID).Str("role", role.Title).Msg("role assigned")
	return assignment, nil
}
