package favorites

import "context"

// Repo stores favorites. Find returns internal/errors.ErrNotFound when the user
// has no favorite for the reference, and Upsert returns ErrFavoriteExists when
// a different favorite already holds it.
type Repo interface {
	Upsert(ctx context.Context, favorite *Favorite) error
	Find(ctx context.Context, userID string, ref AccessReference) (*Favorite, error)
	ListByUser(ctx context.Context, userID string) ([]*Favorite, error)
	Delete(ctx context.Context, id string) error
	DeleteByReference(ctx context.Context, userID string, ref AccessReference) error
}
