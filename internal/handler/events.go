package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/communitysquad/eventhub/internal/model"
	"github.com/communitysquad/eventhub/internal/service"
)

// EventHandler exposes the event lifecycle: CRUD, publishing, enrollment,
// attendance, rosters and accrued hours.
type EventHandler struct {
	svc     *service.EventService
	uploads *UploadStore
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService, uploads *UploadStore) *EventHandler {
	return &EventHandler{svc: svc, uploads: uploads}
}

// Create handles POST /events: a multipart form carrying the event fields
// plus zero or more images.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	files, renamed, err := h.uploads.Save(r, principal.UserID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := eventRequestFromForm(r)
	// The client names its main image by original file name; swap in the
	// stored name.
	if stored, ok := renamed[req.MainImage]; ok {
		req.MainImage = stored
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.svc.Create(r.Context(), req, principal, files)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusCreated, "Event created", event)
}

// List handles GET /events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	events, err := h.svc.List(r.Context(), principal, listQueryFromRequest(r))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, "Events retrieved successfully", events)
}

// Get handles GET /events/{id}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	event, err := h.svc.Get(r.Context(), id, principal)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, "Event retrieved successfully", event)
}

// Update handles PATCH /events/{id}. The body is either a multipart form
// (fields + new images + retained-image list) or plain JSON when the
// gallery is untouched.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var (
		req   model.UpdateEventRequest
		files []model.UploadedFile
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
			return
		}
		var renamed map[string]string
		files, renamed, err = h.uploads.Save(r, principal.UserID)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		req.CreateEventRequest = eventRequestFromForm(r)
		req.RetainedImages = parseRetainedImages(r.FormValue("currentImages"))
		if stored, ok := renamed[req.MainImage]; ok {
			req.MainImage = stored
		}
	} else if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	event, err := h.svc.Update(r.Context(), id, req, principal, files)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, "Event updated", event)
}

// Remove handles DELETE /events/{id}.
func (h *EventHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	if err := h.svc.Remove(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, "Event removed", true)
}

// Publish handles PATCH /events/{id}/publish, toggling the published flag.
func (h *EventHandler) Publish(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	event, err := h.svc.Publish(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, "Event publish state toggled", event)
}

// Enroll handles POST /events/enroll, registering the caller.
func (h *EventHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	var req model.EnrollRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	enrollment, err := h.svc.Enroll(r.Context(), req.EventID, principal)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusCreated, "User registered for the event", enrollment)
}

// UpdateEnrollment handles PATCH /events/enroll/{id}, upserting the
// caller's enrollment for event {id}.
func (h *EventHandler) UpdateEnrollment(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req model.UpdateEnrollmentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	enrollment, err := h.svc.UpdateEnrollment(r.Context(), id, principal, req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, "Enrollment updated", enrollment)
}

// MarkAttendance handles PATCH /events/{id}/attendance.
func (h *EventHandler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var req model.MarkAttendanceRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	enrollment, err := h.svc.MarkAttendance(r.Context(), id, req.UserID, req.Attended)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, "Attendance updated", enrollment)
}

// EnrolledUsers handles GET /events/{id}/users.
func (h *EventHandler) EnrolledUsers(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	users, err := h.svc.EnrolledUsers(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if users == nil {
		users = []model.EnrolledUser{}
	}
	respond(w, http.StatusOK, "Users retrieved successfully", users)
}

// AccruedHours handles GET /events/hours, summing the caller's attended
// hours up to today.
func (h *EventHandler) AccruedHours(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFrom(r.Context())

	total, err := h.svc.AccruedHours(r.Context(), principal.UserID, time.Now().UTC())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, "Hours retrieved successfully", map[string]float64{"total": total})
}

// listQueryFromRequest reads the paging and published filters from the
// query string. An absent or malformed published parameter means no filter.
func listQueryFromRequest(r *http.Request) model.ListEventsQuery {
	var q model.ListEventsQuery
	q.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	q.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if raw := r.URL.Query().Get("published"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			q.Published = &b
		}
	}
	return q
}

func eventRequestFromForm(r *http.Request) model.CreateEventRequest {
	quota, _ := strconv.Atoi(r.FormValue("quota"))
	categoryID, _ := strconv.ParseInt(r.FormValue("categoryId"), 10, 64)
	return model.CreateEventRequest{
		Title:        r.FormValue("title"),
		MainImage:    r.FormValue("mainImage"),
		Description:  r.FormValue("description"),
		Instructions: r.FormValue("instructions"),
		CategoryID:   categoryID,
		Date:         r.FormValue("date"),
		Time:         r.FormValue("time"),
		Duration:     r.FormValue("duration"),
		AllDay:       formBool(r.FormValue("allDay")),
		Quota:        quota,
		Location:     r.FormValue("location"),
		Published:    formBool(r.FormValue("published")),
	}
}

func formBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

// parseRetainedImages accepts the retained-gallery field either as a JSON
// array of {"documentName": ...} objects or as a plain JSON string array.
// An absent field yields nil, which means "gallery untouched" for edits
// without new files.
func parseRetainedImages(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var objects []struct {
		DocumentName string `json:"documentName"`
	}
	if err := json.Unmarshal([]byte(raw), &objects); err == nil {
		names := make([]string, 0, len(objects))
		for _, o := range objects {
			if o.DocumentName != "" {
				names = append(names, o.DocumentName)
			}
		}
		return names
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err == nil {
		return names
	}
	return nil
}
