// Package service implements the domain logic of the event registration
// system: role assignment, enrollment lifecycle, event visibility, document
// lifecycle and hours accrual. Services depend on narrow store interfaces
// so the logic is testable without a database; the repository package
// provides the pgx-backed implementations.
package service

import (
	"context"
	"time"

	"github.com/communitysquad/eventhub/internal/model"
)

// UserStore persists users.
type UserStore interface {
	CreateWithRole(ctx context.Context, user *model.User, roleID int64) (*model.UserRole, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	CountActiveByUserName(ctx context.Context, userName string) (int, error)
	ListActiveWithRoles(ctx context.Context) ([]model.User, error)
}

// RoleStore resolves roles and owns the user↔role assignment rows.
type RoleStore interface {
	GetByID(ctx context.Context, id int64) (*model.Role, error)
	GetByTitle(ctx context.Context, title string) (*model.Role, error)
	ActiveTitlesForUser(ctx context.Context, userID string) ([]string, error)
	AssignmentsForUser(ctx context.Context, userID string) ([]model.UserRole, error)
	CreateAssignment(ctx context.Context, a *model.UserRole) error
	SaveAssignment(ctx context.Context, a *model.UserRole) error
}

// CategoryStore persists categories.
type CategoryStore interface {
	Create(ctx context.Context, c *model.Category) error
	Save(ctx context.Context, c *model.Category) error
	GetByID(ctx context.Context, id int64) (*model.Category, error)
	ListActive(ctx context.Context) ([]model.Category, error)
	SummariesByIDs(ctx context.Context, ids []int64) (map[int64]model.CategorySummary, error)
}

// EventStore persists events and their document writes.
type EventStore interface {
	Create(ctx context.Context, event *model.Event, docs []model.EventDocument) error
	GetByID(ctx context.Context, id int64) (*model.Event, error)
	Save(ctx context.Context, event *model.Event) error
	SaveWithDocuments(ctx context.Context, event *model.Event, retainedNames []string, docs []model.EventDocument) error
	List(ctx context.Context, published *bool, limit, offset int) ([]model.Event, error)
}

// EnrollmentStore persists user↔event enrollments.
type EnrollmentStore interface {
	Get(ctx context.Context, eventID int64, userID string) (*model.Enrollment, error)
	Create(ctx context.Context, e *model.Enrollment) error
	Save(ctx context.Context, e *model.Enrollment) error
	CountActiveByEvents(ctx context.Context, eventIDs []int64) (map[int64]int, error)
	ActiveEventIDsForUser(ctx context.Context, userID string, eventIDs []int64) (map[int64]bool, error)
	ListActiveUsers(ctx context.Context, eventID int64) ([]model.EnrolledUser, error)
	ListAttendedEvents(ctx context.Context, userID string, asOf time.Time) ([]model.Event, error)
}

// DocumentStore reads event gallery documents.
type DocumentStore interface {
	ListActiveByEvent(ctx context.Context, eventID int64) ([]model.EventDocument, error)
	ListActiveByEvents(ctx context.Context, eventIDs []int64) (map[int64][]model.EventDocument, error)
}
