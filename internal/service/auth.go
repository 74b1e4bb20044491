package service

// AuthService is the business logic layer for authentication:
//
//	AuthHandler (HTTP) → AuthService → UserRepository (DB)
//	                               ↘ Sessions (session store + signed cookie)
//	                               ↘ Sealer (credential encryption)
//
// The handler owns everything HTTP (state cookie, redirects, Set-Cookie);
// this file owns the rules: which fields a login refreshes, that the GitHub
// credential is stored sealed, and that every login gets a fresh session.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/techmind/internal/auth"
	"github.com/sakif/techmind/internal/model"
	"github.com/sakif/techmind/internal/repository"
)

// AuthService handles the GitHub login outcome, session lifecycle and user
// lookups.
type AuthService struct {
	users    repository.UserRepository
	sessions *auth.Sessions
	sealer   *auth.Sealer
	logger   *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	sessions *auth.Sessions,
	sealer *auth.Sealer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		sealer:   sealer,
		logger:   logger,
	}
}

// AuthResult bundles the stored user and the session cookie value so the
// handler can set the cookie and redirect in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// LoginOrRegisterGitHub runs after a successful GitHub code exchange:
//
//  1. Seal the GitHub access token
//  2. Upsert the user by GitHub id (first login inserts, later logins
//     refresh username, email, avatar and credential on the same row)
//  3. Start a session bound to the user's internal id
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser, accessToken string) (*AuthResult, error) {
	if ghUser == nil || ghUser.ID == 0 {
		return nil, errors.New("service/auth: GitHub user must be set")
	}

	sealed, err := s.sealer.Seal(accessToken)
	if err != nil {
		return nil, fmt.Errorf("service/auth: sealing credential: %w", err)
	}

	username := strings.TrimSpace(ghUser.Login)
	if username == "" {
		username = fmt.Sprintf("github-%d", ghUser.ID)
	}

	user := &model.User{
		GitHubID:    ghUser.ID,
		Username:    username,
		Email:       ghUser.Email,
		AvatarURL:   ghUser.AvatarURL,
		AccessToken: sealed,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	token, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: creating session for user %s: %w", user.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Logout ends the session named by the cookie value.
func (s *AuthService) Logout(ctx context.Context, cookieValue string) error {
	if cookieValue == "" {
		return nil
	}
	if err := s.sessions.Destroy(ctx, cookieValue); err != nil {
		return fmt.Errorf("service/auth: %w", err)
	}
	return nil
}

// GetUserByID returns the user for the given internal id.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, errors.New("service/auth: user ID must not be empty")
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}
	return user, nil
}
