package model

// Request payloads, validated at the transport boundary with
// go-playground/validator tags.

// RegisterUserRequest is the payload for password sign-up.
type RegisterUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"omitempty,min=1,max=255"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the payload for the shared-secret login exchange.
type LoginRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Name      string `json:"name" validate:"omitempty,max=255"`
	AuthToken string `json:"authToken" validate:"required"`
}

// RefreshRequest carries a refresh token to exchange for a new access token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// UpdateUserRoleRequest toggles a role assignment for a user.
type UpdateUserRoleRequest struct {
	UserID string `json:"userId" validate:"required,uuid"`
	RoleID int64  `json:"roleId" validate:"required,min=1"`
}

// CreateCategoryRequest is the payload for creating or updating a category.
type CreateCategoryRequest struct {
	Title string `json:"title" validate:"required,min=1,max=255"`
	Color string `json:"color" validate:"required,min=1,max=255"`
}

// CreateEventRequest is the payload for creating an event. Date is a
// YYYY-MM-DD string, duration a decimal hour count kept as text.
type CreateEventRequest struct {
	Title        string `json:"title" validate:"required,min=3,max=255"`
	MainImage    string `json:"mainImage" validate:"omitempty,max=255"`
	Description  string `json:"description" validate:"omitempty"`
	Instructions string `json:"instructions" validate:"omitempty"`
	CategoryID   int64  `json:"categoryId" validate:"required,min=1"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string `json:"time" validate:"required"`
	Duration     string `json:"duration" validate:"required"`
	AllDay       bool   `json:"allDay"`
	Quota        int    `json:"quota" validate:"min=0"`
	Location     string `json:"location" validate:"required"`
	Published    bool   `json:"published"`
}

// UpdateEventRequest is the payload for editing an event. RetainedImages
// lists the document names the edit keeps; active documents not listed are
// retired when new files accompany the edit.
type UpdateEventRequest struct {
	CreateEventRequest
	RetainedImages []string `json:"currentImages" validate:"omitempty,dive,min=1"`
}

// EnrollRequest registers the caller for an event.
type EnrollRequest struct {
	EventID int64 `json:"eventId" validate:"required,min=1"`
}

// UpdateEnrollmentRequest patches the caller's enrollment. Both fields are
// optional; nil means "leave unchanged".
type UpdateEnrollmentRequest struct {
	Status *Status `json:"status" validate:"omitempty,oneof=A I"`
	Notes  *string `json:"notes" validate:"omitempty,max=1000"`
}

// MarkAttendanceRequest records whether a user showed up to an event.
type MarkAttendanceRequest struct {
	UserID   string `json:"userId" validate:"required,uuid"`
	Attended bool   `json:"attended"`
}

// ListEventsQuery carries the listing filters parsed from the query string.
// Published is tri-state: nil means no explicit filter.
type ListEventsQuery struct {
	Limit     int
	Offset    int
	Published *bool
}
