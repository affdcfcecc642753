package users

import "context"

// Repo stores users. Getters return internal/errors.ErrNotFound for a missing
// user; Delete of a missing user is not an error.
type Repo interface {
	Upsert(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
