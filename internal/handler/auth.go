package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/techmind/internal/apperror"
	"github.com/sakif/techmind/internal/auth"
	"github.com/sakif/techmind/internal/model"
	"github.com/sakif/techmind/internal/service"
)

const stateCookieName = "oauth_state"

// OAuthProvider is the GitHub side of the login; implemented by
// *auth.GitHubProvider.
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*auth.GitHubUser, string, error)
}

// Authenticator is the business side of the login; implemented by
// *service.AuthService.
type Authenticator interface {
	LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser, accessToken string) (*service.AuthResult, error)
	Logout(ctx context.Context, cookieValue string) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthHandler manages the GitHub OAuth login flow and the session cookie.
//
// HANDLER RESPONSIBILITIES:
//   - HandleGitHubLogin    → redirect the browser to GitHub's authorization page
//   - HandleGitHubCallback → finish the exchange, start a session, redirect home
//   - HandleLogout         → end the session server-side, clear the cookie
//   - HandleMe             → return the signed-in user's profile
//
// Every callback failure ends the same way: log it, no session, back to "/".
// The SPA then sees an anonymous /api/user and shows the sign-in button.
type AuthHandler struct {
	github       OAuthProvider
	auth         Authenticator
	sessionTTL   time.Duration
	secureCookie bool
	logger       *slog.Logger
}

// NewAuthHandler creates an AuthHandler. sessionTTL is the cookie lifetime
// and should match the session store's; secureCookie is on in production.
func NewAuthHandler(
	github OAuthProvider,
	authenticator Authenticator,
	sessionTTL time.Duration,
	secureCookie bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		github:       github,
		auth:         authenticator,
		sessionTTL:   sessionTTL,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// HandleGitHubLogin redirects the user to GitHub's authorization page.
//
// HTTP: GET /api/auth/github
//
// CSRF PROTECTION VIA STATE:
// A random state goes into a short-lived cookie and into the authorize URL.
// The callback only proceeds when both come back equal.
func (h *AuthHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.github.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGitHubCallback completes the OAuth login flow.
//
// HTTP: GET /api/auth/github/callback?code=xxx&state=yyy
//
// FLOW:
//  1. Validate the state parameter (CSRF check)
//  2. Exchange the code for a GitHub profile and access token
//  3. Upsert the user and start a session (AuthService)
//  4. Set the session cookie and redirect to the app
func (h *AuthHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	// --- Step 1: Validate CSRF state ---
	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		h.redirectHome(w, r)
		return
	}

	// Single use, whatever happens next.
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	if query.Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		h.redirectHome(w, r)
		return
	}

	if errParam := query.Get("error"); errParam != "" {
		h.logger.Info("auth callback: user denied authorization",
			slog.String("error", errParam),
		)
		h.redirectHome(w, r)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.logger.Warn("auth callback: missing code")
		h.redirectHome(w, r)
		return
	}

	// --- Step 2: Exchange code for GitHub profile ---
	ghUser, accessToken, err := h.github.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: GitHub exchange failed", slog.String("error", err.Error()))
		h.redirectHome(w, r)
		return
	}

	// --- Step 3: Upsert user and start session ---
	result, err := h.auth.LoginOrRegisterGitHub(r.Context(), ghUser, accessToken)
	if err != nil {
		h.logger.Error("auth callback: login failed",
			slog.Int64("githubID", ghUser.ID),
			slog.String("error", err.Error()),
		)
		h.redirectHome(w, r)
		return
	}

	// --- Step 4: Session cookie, then home ---
	auth.SetSessionCookie(w, result.Token, h.sessionTTL, h.secureCookie)
	h.redirectHome(w, r)
}

// HandleLogout ends the session and clears the cookie.
//
// HTTP: GET /api/auth/logout
//
// The session is expired in the store, so a copy of the cookie taken before
// logout stops working too. A store failure is logged; the browser cookie is
// cleared regardless.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(auth.CookieName); err == nil && c.Value != "" {
		if err := h.auth.Logout(r.Context(), c.Value); err != nil {
			h.logger.Error("logout: ending session failed", slog.String("error", err.Error()))
		}
	}

	auth.ClearSessionCookie(w, h.secureCookie)
	h.redirectHome(w, r)
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /api/user
// Auth: Required (RequireAuth middleware sets userID in context)
//
// The sealed GitHub credential never leaves the server; model.User does not
// serialize it.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("HandleMe: user lookup failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
