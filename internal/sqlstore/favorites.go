package sqlstore

import (
	"context"

	"github.com/jrsteele09/lia-server/favorites"
	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/lists"
	"github.com/pkg/errors"
)

type favoriteRepo struct {
	store *Store
}

const favoriteColumns = `id, user_id, ref_type, reference`

func (r *favoriteRepo) Upsert(ctx context.Context, favorite *favorites.Favorite) error {
	query := `INSERT INTO favorites (` + favoriteColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			ref_type = excluded.ref_type,
			reference = excluded.reference`

	_, err := r.store.db.ExecContext(ctx, r.store.rebind(query),
		favorite.ID, favorite.UserID, string(favorite.Reference.Type), favorite.Reference.Reference, r.store.now())
	if isUniqueViolation(err) {
		return apperrors.ErrFavoriteExists
	}
	if err != nil {
		return errors.Wrap(err, "[favoriteRepo Upsert] db error")
	}
	return nil
}

func (r *favoriteRepo) Find(ctx context.Context, userID string, ref favorites.AccessReference) (*favorites.Favorite, error) {
	row := r.store.db.QueryRowContext(ctx,
		r.store.rebind(`SELECT `+favoriteColumns+` FROM favorites WHERE user_id = ? AND ref_type = ? AND reference = ?`),
		userID, string(ref.Type), ref.Reference)
	favorite, err := scanFavorite(row)
	if err != nil {
		return nil, dbError(err, "[favoriteRepo Find] db error")
	}
	return favorite, nil
}

func (r *favoriteRepo) ListByUser(ctx context.Context, userID string) ([]*favorites.Favorite, error) {
	rows, err := r.store.db.QueryContext(ctx,
		r.store.rebind(`SELECT `+favoriteColumns+` FROM favorites WHERE user_id = ? ORDER BY created_at, id`), userID)
	if err != nil {
		return nil, errors.Wrap(err, "[favoriteRepo ListByUser] db error")
	}
	defer rows.Close()

	result := make([]*favorites.Favorite, 0)
	for rows.Next() {
		favorite, err := scanFavorite(rows)
		if err != nil {
			return nil, errors.Wrap(err, "[favoriteRepo ListByUser] scan error")
		}
		result = append(result, favorite)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "[favoriteRepo ListByUser] rows error")
	}
	return result, nil
}

func (r *favoriteRepo) Delete(ctx context.Context, id string) error {
	_, err := r.store.db.ExecContext(ctx, r.store.rebind(`DELETE FROM favorites WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "[favoriteRepo Delete] db error")
	}
	return nil
}

func (r *favoriteRepo) DeleteByReference(ctx context.Context, userID string, ref favorites.AccessReference) error {
	_, err := r.store.db.ExecContext(ctx,
		r.store.rebind(`DELETE FROM favorites WHERE user_id = ? AND ref_type = ? AND reference = ?`),
		userID, string(ref.Type), ref.Reference)
	if err != nil {
		return errors.Wrap(err, "[favoriteRepo DeleteByReference] db error")
	}
	return nil
}

func scanFavorite(row rowScanner) (*favorites.Favorite, error) {
	var (
		f       favorites.Favorite
		refType string
	)
	if err := row.Scan(&f.ID, &f.UserID, &refType, &f.Reference.Reference); err != nil {
		return nil, err
	}
	f.Reference.Type = lists.AccessMethod(refType)
	return &f, nil
}
