package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// fakeGitHub serves the three GitHub endpoints the login flow touches.
type fakeGitHub struct {
	user   map[string]any
	emails []githubEmail
	status int // status for /user; 200 when zero
}

func (f *fakeGitHub) start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad_verification_code"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "gho_testtoken",
			"token_type":   "bearer",
		})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer gho_testtoken", r.Header.Get("Authorization"))
		if f.status != 0 {
			w.WriteHeader(f.status)
			return
		}
		_ = json.NewEncoder(w).Encode(f.user)
	})
	mux.HandleFunc("/user/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(f.emails)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newFakeProvider(srv *httptest.Server) *GitHubProvider {
	return NewGitHubProvider("client-id", "client-secret", "http://localhost/api/auth/github/callback",
		WithGitHubEndpoint(oauth2.Endpoint{
			AuthURL:   srv.URL + "/login/oauth/authorize",
			TokenURL:  srv.URL + "/login/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		}),
		WithGitHubAPIBase(srv.URL),
	)
}

func TestAuthURL(t *testing.T) {
	p := NewGitHubProvider("client-id", "secret", "http://localhost:5001/api/auth/github/callback")

	u, err := url.Parse(p.AuthURL("state-123"))
	require.NoError(t, err)
	assert.Equal(t, "github.com", u.Host)

	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "read:user user:email", q.Get("scope"))
	assert.Equal(t, "http://localhost:5001/api/auth/github/callback", q.Get("redirect_uri"))
}

func TestExchange_PublicEmail(t *testing.T) {
	gh := &fakeGitHub{user: map[string]any{
		"id": 42, "login": "octocat", "email": "octo@example.com", "avatar_url": "https://a/x.png",
	}}
	p := newFakeProvider(gh.start(t))

	user, token, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "gho_testtoken", token)
	assert.Equal(t, &GitHubUser{ID: 42, Login: "octocat", Email: "octo@example.com", AvatarURL: "https://a/x.png"}, user)
}

func TestExchange_HiddenEmailFallsBackToPrimaryVerified(t *testing.T) {
	gh := &fakeGitHub{
		user: map[string]any{"id": 7, "login": "shy", "email": nil},
		emails: []githubEmail{
			{Email: "old@example.com", Primary: false, Verified: true},
			{Email: "unverified@example.com", Primary: true, Verified: false},
			{Email: "main@example.com", Primary: true, Verified: true},
		},
	}
	p := newFakeProvider(gh.start(t))

	user, _, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "main@example.com", user.Email)
}

func TestExchange_NoUsableEmail(t *testing.T) {
	gh := &fakeGitHub{
		user:   map[string]any{"id": 7, "login": "shy"},
		emails: []githubEmail{{Email: "x@example.com", Primary: false, Verified: true}},
	}
	p := newFakeProvider(gh.start(t))

	user, _, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Empty(t, user.Email)
}

func TestExchange_Failures(t *testing.T) {
	t.Run("bad code", func(t *testing.T) {
		p := newFakeProvider((&fakeGitHub{user: map[string]any{"id": 1}}).start(t))
		_, _, err := p.Exchange(context.Background(), "bad-code")
		assert.Error(t, err)
	})

	t.Run("profile error status", func(t *testing.T) {
		p := newFakeProvider((&fakeGitHub{status: http.StatusForbidden}).start(t))
		_, _, err := p.Exchange(context.Background(), "good-code")
		assert.Error(t, err)
	})

	t.Run("zero id", func(t *testing.T) {
		p := newFakeProvider((&fakeGitHub{user: map[string]any{"login": "ghost"}}).start(t))
		_, _, err := p.Exchange(context.Background(), "good-code")
		assert.Error(t, err)
	})
}
