package fakefavoriterepo

import (
	"context"
	"sort"
	"sync"

	"github.com/jrsteele09/lia-server/favorites"
	apperrors "github.com/jrsteele09/lia-server/internal/errors"
)

var _ favorites.Repo = (*FakeFavoriteRepo)(nil)

type FakeFavoriteRepo struct {
	favorites map[string]favorites.Favorite
	seq       map[string]int
	next      int
	lock      sync.RWMutex
}

func NewFakeFavoriteRepo() *FakeFavoriteRepo {
	return &FakeFavoriteRepo{
		favorites: make(map[string]favorites.Favorite),
		seq:       make(map[string]int),
	}
}

func (fr *FakeFavoriteRepo) Upsert(_ context.Context, favorite *favorites.Favorite) error {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	for id, f := range fr.favorites {
		if id != favorite.ID && f.UserID == favorite.UserID && f.Reference == favorite.Reference {
			return apperrors.ErrFavoriteExists
		}
	}
	if _, ok := fr.seq[favorite.ID]; !ok {
		fr.next++
		fr.seq[favorite.ID] = fr.next
	}
	fr.favorites[favorite.ID] = *favorite
	return nil
}

func (fr *FakeFavoriteRepo) Find(_ context.Context, userID string, ref favorites.AccessReference) (*favorites.Favorite, error) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()

	for _, f := range fr.favorites {
		if f.UserID == userID && f.Reference == ref {
			found := f
			return &found, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (fr *FakeFavoriteRepo) ListByUser(_ context.Context, userID string) ([]*favorites.Favorite, error) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()

	result := make([]*favorites.Favorite, 0)
	for _, f := range fr.favorites {
		if f.UserID == userID {
			found := f
			result = append(result, &found)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return fr.seq[result[i].ID] < fr.seq[result[j].ID]
	})
	return result, nil
}

func (fr *FakeFavoriteRepo) Delete(_ context.Context, id string) error {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	delete(fr.favorites, id)
	return nil
}

func (fr *FakeFavoriteRepo) DeleteByReference(_ context.Context, userID string, ref favorites.AccessReference) error {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	for id, f := range fr.favorites {
		if f.UserID == userID && f.Reference == ref {
			delete(fr.favorites, id)
		}
	}
	return nil
}
