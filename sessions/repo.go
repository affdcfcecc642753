package sessions

import "context"

// Repo defines the interface for session storage operations.
type Repo interface {
	// Upsert creates or updates a session
	Upsert(ctx context.Context, session *Session) error

	// Get retrieves a session by ID, returning internal/errors.ErrNotFound when absent
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Delete removes a session by ID. Deleting an absent session is not an error.
	Delete(ctx context.Context, sessionID string) error
}
