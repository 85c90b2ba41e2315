package session

import (
	"context"
	"time"
)

// Store persists sessions keyed by id.
//
// Get returns expired sessions as they are; the Manager decides what expiry
// means. Delete of an unknown id is not an error.
type Store interface {
	// Create stores a new session
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by id
	Get(ctx context.Context, id string) (*Session, error)

	// Update replaces an existing session
	Update(ctx context.Context, session *Session) error

	// Delete removes a session by id
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes sessions expired at now and reports how many
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Pinger is implemented by stores that depend on an external service.
type Pinger interface {
	Ping(ctx context.Context) error
}
