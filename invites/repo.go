package invites

import "context"

// Repo stores invites. GetByURI returns internal/errors.ErrNotFound when no
// invite of kind has the uri.
type Repo interface {
	Upsert(ctx context.Context, invite *Invite) error
	GetByURI(ctx context.Context, kind Kind, uri string) (*Invite, error)
	// ListByReference returns the list invites that point at listID.
	ListByReference(ctx context.Context, listID string) ([]*Invite, error)
	Delete(ctx context.Context, id string) error
}

// JoinedRepo stores list memberships. Duplicate rows for the same user and
// uri are allowed.
type JoinedRepo interface {
	Insert(ctx context.Context, joined *JoinedList) error
	ListByUser(ctx context.Context, userID string) ([]*JoinedList, error)
	ListByUserAndURI(ctx context.Context, userID, uri string) ([]*JoinedList, error)
	Delete(ctx context.Context, id string) error
}
