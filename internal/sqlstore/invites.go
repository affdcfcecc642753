package sqlstore

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/lia-server/invites"
	"github.com/pkg/errors"
)

type inviteRepo struct {
	store *Store
}

const inviteColumns = `id, kind, uri, uses_remaining, expires, reference`

func (r *inviteRepo) Upsert(ctx context.Context, invite *invites.Invite) error {
	if err := invite.Validate(); err != nil {
		return err
	}

	var (
		uses      sql.NullInt64
		expires   sql.NullString
		reference sql.NullString
	)
	switch invite.Kind {
	case invites.KindAccount:
		if invite.Account.UsesRemaining != nil {
			uses = sql.NullInt64{Int64: int64(*invite.Account.UsesRemaining), Valid: true}
		}
		if invite.Account.Expires != nil {
			expires = sql.NullString{String: formatTime(*invite.Account.Expires), Valid: true}
		}
	case invites.KindList:
		reference = sql.NullString{String: invite.List.Reference, Valid: true}
	}

	query := `INSERT INTO invites (` + inviteColumns + `, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			uses_remaining = excluded.uses_remaining,
			expires = excluded.expires,
			reference = excluded.reference`

	_, err := r.store.db.ExecContext(ctx, r.store.rebind(query),
		invite.ID, string(invite.Kind), invite.URI, uses, expires, reference, r.store.now())
	if err != nil {
		return errors.Wrap(err, "[inviteRepo Upsert] db error")
	}
	return nil
}

func (r *inviteRepo) GetByURI(ctx context.Context, kind invites.Kind, uri string) (*invites.Invite, error) {
	row := r.store.db.QueryRowContext(ctx,
		r.store.rebind(`SELECT `+inviteColumns+` FROM invites WHERE kind = ? AND uri = ?`), string(kind), uri)
	invite, err := scanInvite(row)
	if err != nil {
		return nil, dbError(err, "[inviteRepo GetByURI] db error")
	}
	return invite, nil
}

func (r *inviteRepo) ListByReference(ctx context.Context, listID string) ([]*invites.Invite, error) {
	rows, err := r.store.db.QueryContext(ctx,
		r.store.rebind(`SELECT `+inviteColumns+` FROM invites WHERE kind = ? AND reference = ? ORDER BY created_at, id`),
		string(invites.KindList), listID)
	if err != nil {
		return nil, errors.Wrap(err, "[inviteRepo ListByReference] db error")
	}
	defer rows.Close()

	result := make([]*invites.Invite, 0)
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, errors.Wrap(err, "[inviteRepo ListByReference] scan error")
		}
		result = append(result, invite)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "[inviteRepo ListByReference] rows error")
	}
	return result, nil
}

func (r *inviteRepo) Delete(ctx context.Context, id string) error {
	_, err := r.store.db.ExecContext(ctx, r.store.rebind(`DELETE FROM invites WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "[inviteRepo Delete] db error")
	}
	return nil
}

func scanInvite(row rowScanner) (*invites.Invite, error) {
	var (
		invite    invites.Invite
		kind      string
		uses      sql.NullInt64
		expires   sql.NullString
		reference sql.NullString
	)
	if err := row.Scan(&invite.ID, &kind, &invite.URI, &uses, &expires, &reference); err != nil {
		return nil, err
	}

	invite.Kind = invites.Kind(kind)
	switch invite.Kind {
	case invites.KindAccount:
		invite.Account = &invites.AccountPayload{}
		if uses.Valid {
			n := int(uses.Int64)
			invite.Account.UsesRemaining = &n
		}
		if expires.Valid {
			t, err := parseTime(expires.String)
			if err != nil {
				return nil, err
			}
			invite.Account.Expires = &t
		}
	case invites.KindList:
		invite.List = &invites.ListPayload{Reference: reference.String}
	default:
		return nil, errors.Errorf("unknown stored invite kind %q", kind)
	}
	return &invite, nil
}

type joinedRepo struct {
	store *Store
}

func (r *joinedRepo) Insert(ctx context.Context, joined *invites.JoinedList) error {
	_, err := r.store.db.ExecContext(ctx,
		r.store.rebind(`INSERT INTO joined_lists (id, user_id, invite_uri, created_at) VALUES (?, ?, ?, ?)`),
		joined.ID, joined.UserID, joined.InviteURI, r.store.now())
	if err != nil {
		return errors.Wrap(err, "[joinedRepo Insert] db error")
	}
	return nil
}

func (r *joinedRepo) ListByUser(ctx context.Context, userID string) ([]*invites.JoinedList, error) {
	return r.query(ctx, `SELECT id, user_id, invite_uri FROM joined_lists WHERE user_id = ? ORDER BY created_at, id`, userID)
}

func (r *joinedRepo) ListByUserAndURI(ctx context.Context, userID, uri string) ([]*invites.JoinedList, error) {
	return r.query(ctx, `SELECT id, user_id, invite_uri FROM joined_lists WHERE user_id = ? AND invite_uri = ? ORDER BY created_at, id`, userID, uri)
}

func (r *joinedRepo) Delete(ctx context.Context, id string) error {
	_, err := r.store.db.ExecContext(ctx, r.store.rebind(`DELETE FROM joined_lists WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "[joinedRepo Delete] db error")
	}
	return nil
}

func (r *joinedRepo) query(ctx context.Context, query string, args ...any) ([]*invites.JoinedList, error) {
	rows, err := r.store.db.QueryContext(ctx, r.store.rebind(query), args...)
	if err != nil {
		return nil, errors.Wrap(err, "[joinedRepo query] db error")
	}
	defer rows.Close()

	result := make([]*invites.JoinedList, 0)
	for rows.Next() {
		var j invites.JoinedList
		if err := rows.Scan(&j.ID, &j.UserID, &j.InviteURI); err != nil {
			return nil, errors.Wrap(err, "[joinedRepo query] scan error")
		}
		result = append(result, &j)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "[joinedRepo query] rows error")
	}
	return result, nil
}
