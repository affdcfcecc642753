package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jrsteele09/lia-server/internal/dbx"
	"github.com/jrsteele09/lia-server/lists"
	"github.com/pkg/errors"
)

type listRepo struct {
	store *Store
}

const listColumns = `id, name, owner_id, included_stores, list_type`

func (r *listRepo) Upsert(ctx context.Context, list *lists.GroceryList) error {
	stores, err := json.Marshal(nonNilStrings(list.IncludedStores))
	if err != nil {
		return errors.Wrap(err, "[listRepo Upsert] failed to encode stores")
	}

	query := `INSERT INTO grocery_lists (` + listColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			owner_id = excluded.owner_id,
			included_stores = excluded.included_stores,
			list_type = excluded.list_type`

	_, err = r.store.db.ExecContext(ctx, r.store.rebind(query),
		list.ID, list.Name, list.OwnerID, string(stores), string(list.Type), r.store.now())
	if err != nil {
		return errors.Wrap(err, "[listRepo Upsert] db error")
	}
	return nil
}

func (r *listRepo) Get(ctx context.Context, id string) (*lists.GroceryList, error) {
	row := r.store.db.QueryRowContext(ctx,
		r.store.rebind(`SELECT `+listColumns+` FROM grocery_lists WHERE id = ?`), id)
	list, err := scanList(row)
	if err != nil {
		return nil, dbError(err, "[listRepo Get] db error")
	}
	return list, nil
}

func (r *listRepo) ListByOwner(ctx context.Context, ownerID string) ([]*lists.GroceryList, error) {
	rows, err := r.store.db.QueryContext(ctx,
		r.store.rebind(`SELECT `+listColumns+` FROM grocery_lists WHERE owner_id = ? ORDER BY created_at, id`), ownerID)
	if err != nil {
		return nil, errors.Wrap(err, "[listRepo ListByOwner] db error")
	}
	defer rows.Close()

	result := make([]*lists.GroceryList, 0)
	for rows.Next() {
		list, err := scanList(rows)
		if err != nil {
			return nil, errors.Wrap(err, "[listRepo ListByOwner] scan error")
		}
		result = append(result, list)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "[listRepo ListByOwner] rows error")
	}
	return result, nil
}

// Delete removes the list and whatever items are still attached to it in
// one transaction.
func (r *listRepo) Delete(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, r.store.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, r.store.rebind(`DELETE FROM grocery_items WHERE list_id = ?`), id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, r.store.rebind(`DELETE FROM grocery_lists WHERE id = ?`), id)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "[listRepo Delete] db error")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanList(row rowScanner) (*lists.GroceryList, error) {
	var (
		list     lists.GroceryList
		stores   string
		listType string
	)
	if err := row.Scan(&list.ID, &list.Name, &list.OwnerID, &stores, &listType); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(stores), &list.IncludedStores); err != nil {
		return nil, errors.Wrap(err, "invalid stored stores")
	}
	list.Type = lists.ListType(listType)
	return &list, nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

var _ rowScanner = (*sql.Row)(nil)
var _ rowScanner = (*sql.Rows)(nil)
