// Package handler contains the chi HTTP handlers that translate requests
// and responses to and from the service layer, plus the middleware stack.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/communitysquad/eventhub/internal/auth"
	"github.com/communitysquad/eventhub/internal/repository"
	"github.com/communitysquad/eventhub/internal/service"
)

// Response is the JSON envelope every endpoint returns.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data,omitempty"`
	Success    bool   `json:"success"`
}

var validate = validator.New()

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Response{
		StatusCode: status,
		Message:    message,
		Data:       data,
		Success:    true,
	})
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{
		StatusCode: status,
		Message:    msg,
		Success:    false,
	})
}

// respondDomainError maps the domain error taxonomy onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAlreadyEnrolled),
		errors.Is(err, repository.ErrDuplicate):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidAuthToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		respondError(w, http.StatusUnauthorized, err.Error())
	default:
		// Includes configuration errors such as a missing default role;
		// operator problems surface as 500s, never user errors.
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// decodeAndValidate decodes the JSON body into dst and runs the validator
// tags declared on it.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return validate.Struct(dst)
}

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
