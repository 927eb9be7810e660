package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/communitysquad/eventhub/internal/model"
	"github.com/communitysquad/eventhub/internal/repository"
)

// allDayHours is the fixed contribution of an all-day event to a user's
// accrued hours.
const allDayHours = 8

const dateLayout = "2006-01-02"

// EventService owns the event lifecycle: CRUD, publishing, the enrollment
// state machine, event visibility, the document gallery and hours accrual.
type EventService struct {
	events       EventStore
	categories   CategoryStore
	enrollments  EnrollmentStore
	documents    DocumentStore
	defaultLimit int
	baseURL      string
	logger       zerolog.Logger
}

// NewEventService constructs an EventService. defaultLimit is the page size
// used when a listing request supplies none; baseURL prefixes stored
// document names to build public URLs.
func NewEventService(
	events EventStore,
	categories CategoryStore,
	enrollments EnrollmentStore,
	documents DocumentStore,
	defaultLimit int,
	baseURL string,
	logger zerolog.Logger,
) *EventService {
	return &EventService{
		events:       events,
		categories:   categories,
		enrollments:  enrollments,
		documents:    documents,
		defaultLimit: defaultLimit,
		baseURL:      baseURL,
		logger:       logger.With().Str("component", "events").Logger(),
	}
}

// Create inserts an event owned by the caller, with the uploaded files
// attached as its initial gallery, in one transaction.
func (s *EventService) Create(ctx context.Context, req model.CreateEventRequest, caller Principal, files []model.UploadedFile) (*model.Event, error) {
	if _, err := s.categories.GetByID(ctx, req.CategoryID); err != nil {
		return nil, fmt.Errorf("category: %w", err)
	}

	event, err := eventFromRequest(req)
	if err != nil {
		return nil, err
	}
	event.OwnerID = caller.UserID

	if err := s.events.Create(ctx, event, s.buildDocuments(caller.UserID, files)); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("event_id", event.ID).Str("owner", caller.UserID).Msg("event created")
	return event, nil
}

// Update edits an event. When new files are uploaded or a retained-image
// list is explicitly supplied, the gallery is replaced in the same
// transaction: active documents not named in req.RetainedImages are retired
// and the new files attached. With neither, the gallery is left untouched
// rather than mass-retired.
func (s *EventService) Update(ctx context.Context, id int64, req model.UpdateEventRequest, caller Principal, files []model.UploadedFile) (*model.Event, error) {
	if _, err := s.categories.GetByID(ctx, req.CategoryID); err != nil {
		return nil, fmt.Errorf("category: %w", err)
	}

	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patch, err := eventFromRequest(req.CreateEventRequest)
	if err != nil {
		return nil, err
	}
	patch.ID = event.ID
	patch.Status = event.Status
	patch.OwnerID = caller.UserID
	patch.CreatedAt = event.CreatedAt

	if len(files) == 0 && req.RetainedImages == nil {
		if err := s.events.Save(ctx, patch); err != nil {
			return nil, err
		}
		return patch, nil
	}

	if err := s.events.SaveWithDocuments(ctx, patch, req.RetainedImages, s.buildDocuments(caller.UserID, files)); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("event_id", event.ID).Int("new_documents", len(files)).
		Int("retained", len(req.RetainedImages)).Msg("event updated with gallery replacement")
	return patch, nil
}

// Remove soft-deletes an event.
func (s *EventService) Remove(ctx context.Context, id int64) error {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}
	event.Status = model.StatusInactive
	return s.events.Save(ctx, event)
}

// Publish flips the published flag of an event.
func (s *EventService) Publish(ctx context.Context, id int64) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Published = !event.Published
	if err := s.events.Save(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// List returns the events the caller may see, newest first. Non-privileged
// callers only ever see published events; an admin sees drafts too unless
// an explicit published filter narrows the listing. Soft-deleted events are
// always excluded.
func (s *EventService) List(ctx context.Context, caller Principal, q model.ListEventsQuery) ([]model.EventSummary, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	published := q.Published
	if !caller.IsAdmin() {
		t := true
		published = &t
	}

	events, err := s.events.List(ctx, published, limit, offset)
	if err != nil {
		return nil, err
	}

	eventIDs := make([]int64, len(events))
	categoryIDs := make([]int64, 0, len(events))
	seen := make(map[int64]bool)
	for i, e := range events {
		eventIDs[i] = e.ID
		if !seen[e.CategoryID] {
			seen[e.CategoryID] = true
			categoryIDs = append(categoryIDs, e.CategoryID)
		}
	}

	counts, err := s.enrollments.CountActiveByEvents(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	enrolled, err := s.enrollments.ActiveEventIDsForUser(ctx, caller.UserID, eventIDs)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListActiveByEvents(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.SummariesByIDs(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.EventSummary, len(events))
	for i, e := range events {
		summaries[i] = model.EventSummary{
			Event:         e,
			UsersQuantity: counts[e.ID],
			IsEnrolled:    enrolled[e.ID],
			Images:        orderGallery(docs[e.ID], e.MainImage),
		}
		if c, ok := categories[e.CategoryID]; ok {
			summaries[i].Category = &c
		}
	}
	return summaries, nil
}

// Get returns a single event with the same per-caller derivations as List.
// Soft-deleted events are reported as not found.
func (s *EventService) Get(ctx context.Context, id int64, caller Principal) (*model.EventSummary, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.Status.IsActive() {
		return nil, repository.ErrNotFound
	}

	counts, err := s.enrollments.CountActiveByEvents(ctx, []int64{event.ID})
	if err != nil {
		return nil, err
	}
	enrolled, err := s.enrollments.ActiveEventIDsForUser(ctx, caller.UserID, []int64{event.ID})
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.ListActiveByEvent(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.SummariesByIDs(ctx, []int64{event.CategoryID})
	if err != nil {
		return nil, err
	}

	summary := &model.EventSummary{
		Event:         *event,
		UsersQuantity: counts[event.ID],
		IsEnrolled:    enrolled[event.ID],
		Images:        orderGallery(docs, event.MainImage),
	}
	if c, ok := categories[event.CategoryID]; ok {
		summary.Category = &c
	}
	return summary, nil
}

// Enroll registers the caller for an event. An existing Active enrollment
// is a conflict; a cancelled one is revived in place with registration
// defaults, honoring the one-row-per-pair invariant.
func (s *EventService) Enroll(ctx context.Context, eventID int64, caller Principal) (*model.Enrollment, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	existing, err := s.enrollments.Get(ctx, eventID, caller.UserID)
	switch {
	case err == nil:
		if existing.Status.IsActive() {
			return nil, ErrAlreadyEnrolled
		}
		existing.Status = model.StatusActive
		existing.Attended = false
		existing.Notes = ""
		if err := s.enrollments.Save(ctx, existing); err != nil {
			return nil, err
		}
		s.logger.Info().Int64("event_id", eventID).Str("user_id", caller.UserID).Msg("enrollment revived")
		return existing, nil
	case errors.Is(err, repository.ErrNotFound):
		enrollment := &model.Enrollment{
			UserID:  caller.UserID,
			EventID: eventID,
			Status:  model.StatusActive,
		}
		if err := s.enrollments.Create(ctx, enrollment); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				// Lost the race against a concurrent registration; the
				// unique constraint is the authoritative guard.
				return nil, ErrAlreadyEnrolled
			}
			return nil, err
		}
		s.logger.Info().Int64("event_id", eventID).Str("user_id", caller.UserID).Msg("user enrolled")
		return enrollment, nil
	default:
		return nil, err
	}
}

// UpdateEnrollment upserts the caller's enrollment for an event. With no
// existing row, regardless of soft status history, a fresh row is created
// with registration defaults and the patch is ignored. With an existing row
// the patch's status and notes are applied. A cancelled user may therefore
// re-activate themselves through the patch.
func (s *EventService) UpdateEnrollment(ctx context.Context, eventID int64, caller Principal, patch model.UpdateEnrollmentRequest) (*model.Enrollment, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	existing, err := s.enrollments.Get(ctx, eventID, caller.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		enrollment := &model.Enrollment{
			UserID:  caller.UserID,
			EventID: eventID,
			Status:  model.StatusActive,
		}
		if err := s.enrollments.Create(ctx, enrollment); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, ErrAlreadyEnrolled
			}
			return nil, err
		}
		return enrollment, nil
	}
	if err != nil {
		return nil, err
	}

	if patch.Status != nil {
		existing.Status = *patch.Status
	}
	if patch.Notes != nil {
		existing.Notes = *patch.Notes
	}
	if err := s.enrollments.Save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// MarkAttendance records whether a user showed up. It requires an existing
// enrollment row and touches neither status nor notes.
func (s *EventService) MarkAttendance(ctx context.Context, eventID int64, userID string, attended bool) (*model.Enrollment, error) {
	enrollment, err := s.enrollments.Get(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	enrollment.Attended = attended
	if err := s.enrollments.Save(ctx, enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// EnrolledUsers returns the minimal identity of every actively enrolled
// user of an event.
func (s *EventService) EnrolledUsers(ctx context.Context, eventID int64) ([]model.EnrolledUser, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.enrollments.ListActiveUsers(ctx, eventID)
}

// AccruedHours sums the caller's attended hours over Active, attended
// enrollments whose event date is on or before asOf. All-day events count a
// fixed 8 hours; otherwise the event's duration field is parsed as decimal
// hours. An empty qualifying set yields 0.
func (s *EventService) AccruedHours(ctx context.Context, userID string, asOf time.Time) (float64, error) {
	events, err := s.enrollments.ListAttendedEvents(ctx, userID, asOf)
	if err != nil {
		return 0, err
	}

	var total float64
	for _, e := range events {
		if e.AllDay {
			total += allDayHours
			continue
		}
		hours, err := strconv.ParseFloat(strings.TrimSpace(e.Duration), 64)
		if err != nil {
			s.logger.Warn().Int64("event_id", e.ID).Str("duration", e.Duration).
				Msg("unparsable event duration, counting zero hours")
			continue
		}
		total += hours
	}
	return total, nil
}

func (s *EventService) buildDocuments(uploaderID string, files []model.UploadedFile) []model.EventDocument {
	docs := make([]model.EventDocument, 0, len(files))
	for _, f := range files {
		url := f.URL
		if url == "" {
			url = s.baseURL + f.Name
		}
		docs = append(docs, model.EventDocument{
			UserID:       uploaderID,
			DocumentName: f.Name,
			DocumentURL:  url,
		})
	}
	return docs
}

// orderGallery moves the document named by mainImage to the front of the
// gallery; when no document matches, the retrieval order is kept.
func orderGallery(docs []model.EventDocument, mainImage string) []model.EventDocument {
	if docs == nil {
		return []model.EventDocument{}
	}
	if mainImage == "" {
		return docs
	}
	for i, d := range docs {
		if d.DocumentName != mainImage {
			continue
		}
		ordered := make([]model.EventDocument, 0, len(docs))
		ordered = append(ordered, docs[i])
		ordered = append(ordered, docs[:i]...)
		return append(ordered, docs[i+1:]...)
	}
	return docs
}

func eventFromRequest(req model.CreateEventRequest) (*model.Event, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("parse event date: %w", err)
	}
	return &model.Event{
		Title:        req.Title,
		MainImage:    req.MainImage,
		Description:  req.Description,
		Instructions: req.Instructions,
		CategoryID:   req.CategoryID,
		Date:         date,
		Time:         req.Time,
		Duration:     req.Duration,
		AllDay:       req.AllDay,
		Quota:        req.Quota,
		Location:     req.Location,
		Published:    req.Published,
	}, nil
}
