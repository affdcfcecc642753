package favorites

import (
	"context"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/pkg/errors"
)

// Toggle removes the user's favorite for ref if one exists and returns nil,
// otherwise it creates and returns a new favorite. Two toggles in a row leave
// the user where they started.
func Toggle(ctx context.Context, repo Repo, userID string, ref AccessReference) (*Favorite, error) {
	existing, err := repo.Find(ctx, userID, ref)
	switch {
	case err == nil:
		if err := repo.Delete(ctx, existing.ID); err != nil {
			return nil, errors.Wrap(err, "[Toggle] failed to delete favorite")
		}
		return nil, nil
	case !apperrors.Is(err, apperrors.ErrNotFound):
		return nil, errors.Wrap(err, "[Toggle] failed to find favorite")
	}

	favorite := New(userID, ref)
	err = repo.Upsert(ctx, favorite)
	if apperrors.Is(err, apperrors.ErrFavoriteExists) {
		// A concurrent toggle created it first; both callers asked for it to exist.
		existing, err := repo.Find(ctx, userID, ref)
		if err != nil {
			return nil, errors.Wrap(err, "[Toggle] failed to find favorite")
		}
		return existing, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Toggle] failed to store favorite")
	}
	return favorite, nil
}
