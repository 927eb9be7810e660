// Package model defines the core domain types for the event registration system.
package model

import "time"

// Status is the soft-delete flag carried by almost every record. Inactive
// rows are kept for audit and excluded from normal reads.
type Status string

const (
	StatusActive   Status = "A"
	StatusInactive Status = "I"
)

// Toggled returns the opposite status.
func (s Status) Toggled() Status {
	if s == StatusActive {
		return StatusInactive
	}
	return StatusActive
}

// IsActive reports whether the record is in active status.
func (s Status) IsActive() bool {
	return s == StatusActive
}

// Well-known role titles. Roles are static reference data seeded by
// migration; RoleViewer is the default assigned on sign-up.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// User is an account holder. Users are soft-deactivated, never hard-deleted.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email,omitempty"`
	UserName     string     `json:"userName,omitempty"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"`
	Status       Status     `json:"status,omitempty"`
	Roles        []UserRole `json:"userRoles,omitempty"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

// Role is a named capability tag ("admin", "viewer").
type Role struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"-"`
}

// UserRole is the user↔role junction. At most one row exists per
// (user, role) pair; re-assigning toggles the status instead of inserting
// a duplicate. A user's active role set is the titles of their rows with
// status Active.
type UserRole struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	RoleID    int64     `json:"-"`
	RoleTitle string    `json:"role"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Category groups events and is soft-deletable.
type Category struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Color     string    `json:"color"`
	Status    Status    `json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Event is the aggregate root for enrollments and documents.
//
// MainImage, when set, names one of the event's active documents; it is a
// display hint rather than a foreign key (see VisibilityPolicy gallery
// ordering).
type Event struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	MainImage    string    `json:"mainImage,omitempty"`
	Description  string    `json:"description,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
	CategoryID   int64     `json:"-"`
	OwnerID      string    `json:"-"`
	Date         time.Time `json:"date"`
	Time         string    `json:"time"`
	Duration     string    `json:"duration"`
	AllDay       bool      `json:"allDay"`
	Quota        int       `json:"quota"`
	Location     string    `json:"location"`
	Published    bool      `json:"published"`
	Status       Status    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// EventDocument is one image in an event's gallery, uploaded by a user and
// soft-retired when dropped by an edit.
type EventDocument struct {
	ID           int64     `json:"id"`
	EventID      int64     `json:"-"`
	UserID       string    `json:"-"`
	DocumentName string    `json:"documentName"`
	DocumentURL  string    `json:"documentUrl"`
	Status       Status    `json:"-"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// Enrollment is the user↔event junction. At most one row exists per
// (user, event) pair; cancelling flips status to Inactive and a later
// re-registration revives the same row.
type Enrollment struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	EventID   int64     `json:"-"`
	Status    Status    `json:"status,omitempty"`
	Attended  bool      `json:"attended"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// CategorySummary is the trimmed category shape embedded in event listings.
type CategorySummary struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Color string `json:"color"`
}

// EventSummary is an event as returned from listing/detail reads: the event
// fields plus per-caller derived counters and the ordered image gallery.
type EventSummary struct {
	Event
	Category      *CategorySummary `json:"category,omitempty"`
	UsersQuantity int              `json:"usersQuantity"`
	IsEnrolled    bool             `json:"isUserEnrolled"`
	Images        []EventDocument  `json:"images"`
}

// EnrolledUser is the minimal identity shape returned for event rosters.
type EnrolledUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// UploadedFile describes an already-stored upload handed to the document
// lifecycle; the domain layer never touches raw bytes.
type UploadedFile struct {
	Name string
	URL  string
}
