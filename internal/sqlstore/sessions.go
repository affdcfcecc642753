package sqlstore

import (
	"context"
	"database/sql"

	"github.com/jrsteele09/lia-server/sessions"
	"github.com/pkg/errors"
)

type sessionRepo struct {
	store *Store
}

func (r *sessionRepo) Upsert(ctx context.Context, session *sessions.Session) error {
	query := `INSERT INTO sessions (id, last_request, user_id)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			last_request = excluded.last_request,
			user_id = excluded.user_id`

	_, err := r.store.db.ExecContext(ctx, r.store.rebind(query),
		session.ID, formatTime(session.LastRequest), emptyNull(session.UserID))
	if err != nil {
		return errors.Wrap(err, "[sessionRepo Upsert] db error")
	}
	return nil
}

func (r *sessionRepo) Get(ctx context.Context, sessionID string) (*sessions.Session, error) {
	var (
		s           sessions.Session
		lastRequest string
		userID      sql.NullString
	)
	err := r.store.db.QueryRowContext(ctx,
		r.store.rebind(`SELECT id, last_request, user_id FROM sessions WHERE id = ?`), sessionID).
		Scan(&s.ID, &lastRequest, &userID)
	if err != nil {
		return nil, dbError(err, "[sessionRepo Get] db error")
	}

	if s.LastRequest, err = parseTime(lastRequest); err != nil {
		return nil, errors.Wrap(err, "[sessionRepo Get]")
	}
	s.UserID = userID.String
	return &s, nil
}

func (r *sessionRepo) Delete(ctx context.Context, sessionID string) error {
	_, err := r.store.db.ExecContext(ctx, r.store.rebind(`DELETE FROM sessions WHERE id = ?`), sessionID)
	if err != nil {
		return errors.Wrap(err, "[sessionRepo Delete] db error")
	}
	return nil
}
