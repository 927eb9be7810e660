package service

import (
	"errors"
	"slices"

	"github.com/communitysquad/eventhub/internal/model"
)

// Domain errors raised by the services in this package.
var (
	// ErrForbidden means the caller's active role set does not satisfy an
	// operation's required roles.
	ErrForbidden = errors.New("insufficient privileges")

	// ErrAlreadyEnrolled means the caller already holds an Active
	// enrollment for the event.
	ErrAlreadyEnrolled = errors.New("user is already registered for this event")

	// ErrInvalidCredentials means email/password authentication failed or
	// the account is not in Active status.
	ErrInvalidCredentials = errors.New("credentials are not valid")

	// ErrInvalidAuthToken means the shared-secret login exchange received a
	// wrong secret.
	ErrInvalidAuthToken = errors.New("a valid auth token is required")

	// ErrMissingDefaultRole means the role registry is missing the default
	// sign-up role. This is an operator configuration error, not a user
	// error.
	ErrMissingDefaultRole = errors.New("default role is not configured")
)

// Principal is the resolved caller identity threaded through every domain
// operation: the user id plus the active role set derived from Active role
// assignments.
type Principal struct {
	UserID string
	Name   string
	Roles  []string
}

// IsAdmin reports whether the principal holds the administrative role.
func (p Principal) IsAdmin() bool {
	return slices.Contains(p.Roles, model.RoleAdmin)
}

// Authorize decides whether a caller's active role set satisfies an
// operation's required roles. An empty requiredRoles means any
// authenticated caller passes; otherwise at least one role must match.
// Pure decision function, no side effects.
func Authorize(callerRoles, requiredRoles []string) error {
	if len(requiredRoles) == 0 {
		return nil
	}
	for _, required := range requiredRoles {
		if slices.Contains(callerRoles, required) {
			return nil
		}
	}
	return ErrForbidden
}
