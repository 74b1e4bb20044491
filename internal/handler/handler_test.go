package handler_test

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/sakif/techmind/internal/auth"
	"github.com/sakif/techmind/internal/model"
	"github.com/sakif/techmind/internal/prompt"
	"github.com/sakif/techmind/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// MockExplainer returns a fixed result and records what it was asked.
type MockExplainer struct {
	CapturedTerm string
	CapturedMode prompt.Mode
	Calls        int
	ReturnRes    []model.Explanation
	ReturnErr    error
}

func (m *MockExplainer) Explain(_ context.Context, term string, mode prompt.Mode) ([]model.Explanation, error) {
	m.Calls++
	m.CapturedTerm = term
	m.CapturedMode = mode
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnRes, nil
}

// MockStreaks keeps counts in memory, keyed by user and term.
type MockStreaks struct {
	mu        sync.Mutex
	Hits      map[string]int
	List      []model.Streak
	RecordErr error
	ListErr   error
}

func (m *MockStreaks) RecordHit(_ context.Context, userID, term string) (*model.Streak, error) {
	if m.RecordErr != nil {
		return nil, m.RecordErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Hits == nil {
		m.Hits = make(map[string]int)
	}
	m.Hits[userID+"/"+term]++
	return &model.Streak{UserID: userID, Term: term, Count: m.Hits[userID+"/"+term]}, nil
}

func (m *MockStreaks) ListStreaks(_ context.Context, _ string) ([]model.Streak, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.List, nil
}

// MockGitHub stands in for the OAuth provider.
type MockGitHub struct {
	CapturedState string
	CapturedCode  string
	ReturnUser    *auth.GitHubUser
	ReturnErr     error
}

func (m *MockGitHub) AuthURL(state string) string {
	m.CapturedState = state
	return "https://github.example/login/oauth/authorize?state=" + state
}

func (m *MockGitHub) Exchange(_ context.Context, code string) (*auth.GitHubUser, string, error) {
	m.CapturedCode = code
	if m.ReturnErr != nil {
		return nil, "", m.ReturnErr
	}
	return m.ReturnUser, "gho_token", nil
}

// MockAuth stands in for service.AuthService.
type MockAuth struct {
	LoginCalls   int
	LoggedOut    []string
	ReturnResult *service.AuthResult
	ReturnErr    error
	LogoutErr    error
	User         *model.User
	UserErr      error
}

func (m *MockAuth) LoginOrRegisterGitHub(_ context.Context, _ *auth.GitHubUser, _ string) (*service.AuthResult, error) {
	m.LoginCalls++
	if m.ReturnErr != nil {
		return nil, m.ReturnErr
	}
	return m.ReturnResult, nil
}

func (m *MockAuth) Logout(_ context.Context, cookieValue string) error {
	m.LoggedOut = append(m.LoggedOut, cookieValue)
	return m.LogoutErr
}

func (m *MockAuth) GetUserByID(_ context.Context, _ string) (*model.User, error) {
	if m.UserErr != nil {
		return nil, m.UserErr
	}
	return m.User, nil
}
