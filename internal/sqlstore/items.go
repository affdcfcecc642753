package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jrsteele09/lia-server/lists"
	"github.com/pkg/errors"
)

type itemRepo struct {
	store *Store
}

const itemColumns = `id, list_id, name, added_by, checked, quantity_amount, quantity_unit,
	alternative_to, alternative_index, categories, price, location, linked_item, recipe`

func (r *itemRepo) Upsert(ctx context.Context, item *lists.Item) error {
	categories, err := json.Marshal(nonNilStrings(item.Categories))
	if err != nil {
		return errors.Wrap(err, "[itemRepo Upsert] failed to encode categories")
	}

	var (
		alternativeTo    sql.NullString
		alternativeIndex sql.NullInt64
		price            sql.NullFloat64
		linkedItem       sql.NullString
	)
	if item.Alternative != nil {
		alternativeTo = sql.NullString{String: item.Alternative.AlternativeTo, Valid: true}
		alternativeIndex = sql.NullInt64{Int64: int64(item.Alternative.Index), Valid: true}
	}
	if item.Price != nil {
		price = sql.NullFloat64{Float64: *item.Price, Valid: true}
	}
	if len(item.LinkedItem) > 0 && string(item.LinkedItem) != "null" {
		linkedItem = sql.NullString{String: string(item.LinkedItem), Valid: true}
	}

	query := `INSERT INTO grocery_items (` + itemColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			checked = excluded.checked,
			quantity_amount = excluded.quantity_amount,
			quantity_unit = excluded.quantity_unit,
			alternative_to = excluded.alternative_to,
			alternative_index = excluded.alternative_index,
			categories = excluded.categories,
			price = excluded.price,
			location = excluded.location,
			linked_item = excluded.linked_item,
			recipe = excluded.recipe`

	_, err = r.store.db.ExecContext(ctx, r.store.rebind(query),
		item.ID, item.ListID, item.Name, item.AddedBy, item.Checked,
		item.Quantity.Amount, nullString(item.Quantity.Unit),
		alternativeTo, alternativeIndex, string(categories), price,
		nullString(item.Location), linkedItem, nullString(item.Recipe), r.store.now())
	if err != nil {
		return errors.Wrap(err, "[itemRepo Upsert] db error")
	}
	return nil
}

func (r *itemRepo) Get(ctx context.Context, id string) (*lists.Item, error) {
	row := r.store.db.QueryRowContext(ctx,
		r.store.rebind(`SELECT `+itemColumns+` FROM grocery_items WHERE id = ?`), id)
	item, err := scanItem(row)
	if err != nil {
		return nil, dbError(err, "[itemRepo Get] db error")
	}
	return item, nil
}

func (r *itemRepo) ListByList(ctx context.Context, listID string) ([]*lists.Item, error) {
	return r.query(ctx, `SELECT `+itemColumns+` FROM grocery_items WHERE list_id = ? ORDER BY created_at, id`, listID)
}

func (r *itemRepo) ListAlternatives(ctx context.Context, listID, itemID string) ([]*lists.Item, error) {
	return r.query(ctx, `SELECT `+itemColumns+` FROM grocery_items WHERE list_id = ? AND alternative_to = ? ORDER BY alternative_index, created_at`, listID, itemID)
}

func (r *itemRepo) Delete(ctx context.Context, id string) error {
	_, err := r.store.db.ExecContext(ctx, r.store.rebind(`DELETE FROM grocery_items WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "[itemRepo Delete] db error")
	}
	return nil
}

func (r *itemRepo) DeleteByList(ctx context.Context, listID string) error {
	_, err := r.store.db.ExecContext(ctx, r.store.rebind(`DELETE FROM grocery_items WHERE list_id = ?`), listID)
	if err != nil {
		return errors.Wrap(err, "[itemRepo DeleteByList] db error")
	}
	return nil
}

func (r *itemRepo) query(ctx context.Context, query string, args ...any) ([]*lists.Item, error) {
	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(query), args...)
	if err != nil {
		return nil, errors.Wrap(err, "[itemRepo query] db error")
	}
	defer rows.Close()

	result := make([]*lists.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, errors.Wrap(err, "[itemRepo query] scan error")
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "[itemRepo query] rows error")
	}
	return result, nil
}

func scanItem(row rowScanner) (*lists.Item, error) {
	var (
		item             lists.Item
		unit             sql.NullString
		alternativeTo    sql.NullString
		alternativeIndex sql.NullInt64
		categories       string
		price            sql.NullFloat64
		location         sql.NullString
		linkedItem       sql.NullString
		recipe           sql.NullString
	)
	err := row.Scan(&item.ID, &item.ListID, &item.Name, &item.AddedBy, &item.Checked,
		&item.Quantity.Amount, &unit, &alternativeTo, &alternativeIndex, &categories,
		&price, &location, &linkedItem, &recipe)
	if err != nil {
		return nil, err
	}

	item.Quantity.Unit = stringPtr(unit)
	if alternativeTo.Valid {
		item.Alternative = &lists.Alternative{
			AlternativeTo: alternativeTo.String,
			Index:         int(alternativeIndex.Int64),
		}
	}
	if err := json.Unmarshal([]byte(categories), &item.Categories); err != nil {
		return nil, errors.Wrap(err, "invalid stored categories")
	}
	if price.Valid {
		item.Price = &price.Float64
	}
	item.Location = stringPtr(location)
	if linkedItem.Valid {
		item.LinkedItem = json.RawMessage(linkedItem.String)
	}
	item.Recipe = stringPtr(recipe)
	return &item, nil
}
