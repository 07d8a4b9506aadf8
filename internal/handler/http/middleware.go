package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Bobby-coder/CodeNation/internal/domain"
	"github.com/Bobby-coder/CodeNation/internal/session"
	apperrors "github.com/Bobby-coder/CodeNation/pkg/errors"
)

type contextKey string

const principalContextKey contextKey = "principal"

// PrincipalFromContext returns the authenticated user attached by the
// Authenticated middleware.
func PrincipalFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(principalContextKey).(*domain.User)
	return user, ok
}

// Authenticated gates a route on a valid access token cookie backed by a live
// session record. A cryptographically valid token whose session has been
// deleted (logout, account removal) is rejected.
func Authenticated(sessions *session.Manager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(session.AccessCookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, r, apperrors.Unauthorized("Please login to access this resource"), logger)
				return
			}

			user, err := sessions.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				writeError(w, r, err, logger)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole admits the request only when the authenticated principal's role
// is in the allow-list. Must run after Authenticated.
func RequireRole(logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var role string
			if user, ok := PrincipalFromContext(r.Context()); ok {
				role = user.Role
			}

			if _, ok := allowed[role]; !ok {
				writeError(w, r, apperrors.Forbidden(fmt.Sprintf("Role %s is not allowed to access this resource", role)), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeJSON rejects mutating requests whose body is not JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				writeJSON(w, http.StatusUnsupportedMediaType, response{
					Success: false,
					Message: "Content-Type must be application/json",
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// CORSConfig holds configuration for the CORS middleware.
type CORSConfig struct {
	AllowedOrigins []string
	Environment    string
}

// CORS sets Cross-Origin Resource Sharing headers. Credentials (cookies) are
// always allowed, so the origin is echoed back rather than wildcarded outside
// development.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	allowAny := cfg.Environment == "development"
	originSet := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			allowAny = true
		}
		originSet[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" {
				_, listed := originSet[origin]
				if allowAny || listed {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")
					w.Header().Set("Vary", "Origin")
				}
			}

			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Correlation-ID")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
