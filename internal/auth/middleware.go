package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// contextKey is an unexported type used for context keys in this package.
// Only this package can create a key of this type, so nothing else can read
// or shadow the user id stored under it.
type contextKey string

const userIDKey contextKey = "userID"

// RequireAuth rejects requests without a live session with 401 and a JSON
// body. On success the user id is stored in the request context.
func RequireAuth(sessions *Sessions, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolveRequest(r, sessions)
			if err != nil {
				if !isAnonymous(err) {
					logger.Error("session lookup failed", slog.String("error", err.Error()))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}` + "\n"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// OptionalAuth attaches the user id when a live session is present and lets
// the request through either way.
//
// POST /api/explain works for anonymous visitors; only signed-in users get
// their streaks counted.
func OptionalAuth(sessions *Sessions, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := resolveRequest(r, sessions)
			switch {
			case err == nil:
				r = r.WithContext(WithUserID(r.Context(), userID))
			case !isAnonymous(err):
				logger.Error("session lookup failed", slog.String("error", err.Error()))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns ("", false) for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// SetSessionCookie writes the session cookie.
//
//   - HttpOnly: JavaScript can't read it (XSS can't steal it)
//   - SameSite=Lax: sent on top-level navigations, not on cross-site POSTs
//   - Secure: HTTPS only; enabled in production
func SetSessionCookie(w http.ResponseWriter, value string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie tells the browser to drop the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// resolveRequest reads the session cookie and resolves it.
func resolveRequest(r *http.Request, sessions *Sessions) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	return sessions.Resolve(r.Context(), cookie.Value)
}

// isAnonymous reports whether err just means "no usable session" as opposed
// to a store failure worth logging.
func isAnonymous(err error) bool {
	return errors.Is(err, http.ErrNoCookie) || errors.Is(err, ErrNoSession)
}
