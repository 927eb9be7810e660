package handler

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/communitysquad/eventhub/internal/auth"
	"github.com/communitysquad/eventhub/internal/service"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFrom returns the caller identity resolved by the authenticator.
func PrincipalFrom(ctx context.Context) (service.Principal, bool) {
	p, ok := ctx.Value(principalKey).(service.Principal)
	return p, ok
}

// Authenticator resolves the request principal from a bearer token. Roles
// are loaded fresh per request so assignment toggles apply immediately.
type Authenticator struct {
	tokens *auth.TokenManager
	users  service.UserStore
	roles  service.RoleStore
}

// NewAuthenticator constructs an Authenticator.
func NewAuthenticator(tokens *auth.TokenManager, users service.UserStore, roles service.RoleStore) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, roles: roles}
}

// Middleware rejects requests without a valid token or with a non-Active
// account, and stores the resolved principal in the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.TokenFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		userID, err := a.tokens.Validate(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		user, err := a.users.GetByID(r.Context(), userID)
		if err != nil || !user.Status.IsActive() {
			respondError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		roles, err := a.roles.ActiveTitlesForUser(r.Context(), user.ID)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		principal := service.Principal{UserID: user.ID, Name: user.Name, Roles: roles}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, principal)))
	})
}

// RequireRoles gates a route on the caller's active role set. It must run
// after the authenticator.
func RequireRoles(required ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				respondError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if err := service.Authorize(principal.Roles, required); err != nil {
				respondError(w, http.StatusForbidden, err.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger emits one structured access-log line per request.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}

// CORS is a permissive CORS policy suitable for a browser front end served
// from another origin.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
