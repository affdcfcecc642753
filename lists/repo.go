package lists

import "context"

// Repo stores grocery lists. Get returns internal/errors.ErrNotFound for a
// missing list; Delete of a missing list is not an error.
type Repo interface {
	Upsert(ctx context.Context, list *GroceryList) error
	Get(ctx context.Context, id string) (*GroceryList, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*GroceryList, error)
	Delete(ctx context.Context, id string) error
}

// ItemRepo stores list items.
type ItemRepo interface {
	Upsert(ctx context.Context, item *Item) error
	Get(ctx context.Context, id string) (*Item, error)
	ListByList(ctx context.Context, listID string) ([]*Item, error)
	// ListAlternatives returns the items of listID whose alternative points at itemID.
	ListAlternatives(ctx context.Context, listID, itemID string) ([]*Item, error)
	Delete(ctx context.Context, id string) error
	DeleteByList(ctx context.Context, listID string) error
}
