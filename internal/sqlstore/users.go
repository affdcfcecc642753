package sqlstore

import (
	"context"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/users"
	"github.com/pkg/errors"
)

type userRepo struct {
	store *Store
}

const userColumns = `id, username, password_hash, password_salt, admin`

func (r *userRepo) Upsert(ctx context.Context, user *users.User) error {
	query := `INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			password_hash = excluded.password_hash,
			password_salt = excluded.password_salt,
			admin = excluded.admin`

	_, err := r.store.db.ExecContext(ctx, r.store.rebind(query),
		user.ID, user.Username, user.Password.Hashed, user.Password.Salt, user.Admin)
	if isUniqueViolation(err) {
		return apperrors.ErrUsernameTaken
	}
	if err != nil {
		return errors.Wrap(err, "[userRepo Upsert] db error")
	}
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	_, err := r.store.db.ExecContext(ctx, r.store.rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "[userRepo Delete] db error")
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return r.get(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *userRepo) get(ctx context.Context, query string, arg string) (*users.User, error) {
	var u users.User
	err := r.store.db.QueryRowContext(ctx, r.store.rebind(query), arg).
		Scan(&u.ID, &u.Username, &u.Password.Hashed, &u.Password.Salt, &u.Admin)
	if err != nil {
		return nil, dbError(err, "[userRepo get] db error")
	}
	return &u, nil
}
