package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/templui/filesmanager/internal/ctxkeys"
	"github.com/templui/filesmanager/internal/model"
)

// Authenticator resolves a token to its user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Token extracts the session token from "Authorization: Bearer <token>" or
// the X-Token header.
func Token(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Token"))
}

// RequireAuth rejects requests without a valid token with 401 and puts the
// user into the request context otherwise. Authenticator errors matching
// unauthorized are 401, anything else is 500.
func RequireAuth(auth Authenticator, unauthorized error) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, ok := authenticate(w, r, auth, unauthorized, Token(r))
			if !ok {
				return
			}
			next(w, r.WithContext(ctxkeys.WithUser(r.Context(), user)))
		}
	}
}

// OptionalAuth lets anonymous requests through. A token that is present but
// invalid is still rejected with 401.
func OptionalAuth(auth Authenticator, unauthorized error) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := Token(r)
			if token == "" {
				next(w, r)
				return
			}
			user, ok := authenticate(w, r, auth, unauthorized, token)
			if !ok {
				return
			}
			next(w, r.WithContext(ctxkeys.WithUser(r.Context(), user)))
		}
	}
}

func authenticate(w http.ResponseWriter, r *http.Request, auth Authenticator, unauthorized error, token string) (*model.User, bool) {
	user, err := auth.Authenticate(r.Context(), token)
	if err == nil {
		return user, true
	}

	if errors.Is(err, unauthorized) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	slog.Error("authentication failed", "error", err, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, "Server error")
	return nil, false
}
