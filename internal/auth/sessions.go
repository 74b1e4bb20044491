package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/techmind/internal/session"
)

// ErrNoSession means the cookie did not resolve to a live session: it was
// missing, forged, expired, or the session was logged out.
var ErrNoSession = errors.New("auth: no session")

// Sessions ties the signed cookie to the server-side session store.
type Sessions struct {
	tokens *TokenService
	store  session.Store
	ttl    time.Duration
}

// NewSessions creates a Sessions manager. ttl bounds both the store entry and
// the token expiry.
func NewSessions(tokens *TokenService, store session.Store, ttl time.Duration) *Sessions {
	return &Sessions{tokens: tokens, store: store, ttl: ttl}
}

// TTL is the lifetime of newly created sessions.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Create starts a session for userID and returns the cookie value.
func (s *Sessions) Create(ctx context.Context, userID string) (string, error) {
	sid := xid.New().String()
	if err := s.store.Set(ctx, sid, userID, s.ttl); err != nil {
		return "", fmt.Errorf("auth: storing session: %w", err)
	}

	token, err := s.tokens.Issue(sid, s.ttl)
	if err != nil {
		_ = s.store.Expire(ctx, sid)
		return "", err
	}
	return token, nil
}

// Resolve returns the user id behind a cookie value. Any token problem or a
// missing store entry yields ErrNoSession; store failures are returned as-is.
func (s *Sessions) Resolve(ctx context.Context, cookieValue string) (string, error) {
	sid, err := s.tokens.Validate(cookieValue)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	userID, ok, err := s.store.Get(ctx, sid)
	if err != nil {
		return "", fmt.Errorf("auth: loading session: %w", err)
	}
	if !ok {
		return "", ErrNoSession
	}
	return userID, nil
}

// Destroy expires the session named by the cookie. An invalid cookie has no
// session to end, so it is not an error.
func (s *Sessions) Destroy(ctx context.Context, cookieValue string) error {
	sid, err := s.tokens.Validate(cookieValue)
	if err != nil {
		return nil
	}
	if err := s.store.Expire(ctx, sid); err != nil {
		return fmt.Errorf("auth: expiring session: %w", err)
	}
	return nil
}
