// Package session stores server-side login sessions: session id -> user id,
// each with its own expiry.
//
// The browser never sees the user id directly. It holds a signed cookie whose
// subject is the session id (see auth.Sessions), and every authenticated
// request resolves that id through a Store. Logging out expires the entry so
// a copied cookie stops working immediately, which a stateless JWT alone
// cannot do.
//
// Two implementations:
//   - MemoryStore: a mutex-guarded map; sessions vanish on restart.
//   - RedisStore: shared across instances and survives restarts.
package session

import (
	"context"
	"time"
)

// Store maps session ids to user ids.
type Store interface {
	// Get resolves a session. ok is false when the id is unknown or expired;
	// err is reserved for backend failures.
	Get(ctx context.Context, id string) (userID string, ok bool, err error)
	// Set creates or replaces a session that expires after ttl.
	Set(ctx context.Context, id, userID string, ttl time.Duration) error
	// Expire removes a session. Removing an unknown id is not an error.
	Expire(ctx context.Context, id string) error
}
