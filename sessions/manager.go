package sessions

import (
	"context"
	"time"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/internal/utils"
	"github.com/jrsteele09/lia-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// tokenLength is the number of random bytes in a session token (128 bits).
const tokenLength = 16

// Manager owns the session lifecycle: issuing anonymous sessions, binding them
// to users and detecting expiry.
type Manager struct {
	sessions Repo
	users    users.Repo
	ttl      time.Duration
	nowTime  func() time.Time
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

func NewManager(sessionRepo Repo, userRepo users.Repo, ttl time.Duration, options ...ManagerOption) (*Manager, error) {
	if sessionRepo == nil {
		return nil, errors.New("[NewManager] Sessions repo is required")
	}
	if userRepo == nil {
		return nil, errors.New("[NewManager] Users repo is required")
	}
	if ttl <= 0 {
		return nil, errors.New("[NewManager] ttl must be positive")
	}

	m := &Manager{
		sessions: sessionRepo,
		users:    userRepo,
		ttl:      ttl,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Create issues and stores a new anonymous session.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	token, err := utils.RandomString(tokenLength)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager Create] failed to generate token")
	}

	session := &Session{ID: token, LastRequest: m.nowTime()}
	if err := m.sessions.Upsert(ctx, session); err != nil {
		return nil, errors.Wrap(err, "[Manager Create] failed to store session")
	}
	return session, nil
}

// Resolve looks up the session for token. It never creates one: a missing
// token or unknown session yields ErrNoSession and the caller decides whether
// to issue a fresh anonymous session.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, apperrors.ErrNoSession
	}

	session, err := m.sessions.Get(ctx, token)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrNoSession
		}
		return nil, errors.Wrap(err, "[Manager Resolve] failed to load session")
	}
	return session, nil
}

// Expired reports whether the session's sliding window has closed.
func (m *Manager) Expired(session *Session) bool {
	return session.LastRequest.Add(m.ttl).Before(m.nowTime())
}

// CheckExpiry deletes an expired session and returns ErrSessionExpired.
// A live session passes untouched.
func (m *Manager) CheckExpiry(ctx context.Context, session *Session) error {
	if !m.Expired(session) {
		return nil
	}

	if err := m.sessions.Delete(ctx, session.ID); err != nil {
		log.Warn().Err(err).Str("session_id", session.ID).Msg("failed to delete expired session")
	} else {
		log.Debug().Str("session_id", session.ID).Msg("deleted expired session")
	}
	return apperrors.ErrSessionExpired
}

// Touch advances LastRequest to now. It never moves it backwards.
func (m *Manager) Touch(ctx context.Context, session *Session) error {
	now := m.nowTime()
	if !now.After(session.LastRequest) {
		return nil
	}

	session.LastRequest = now
	if err := m.sessions.Upsert(ctx, session); err != nil {
		return errors.Wrap(err, "[Manager Touch] failed to store session")
	}
	return nil
}

// Authenticate binds the session to the user identified by username and
// password. Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (m *Manager) Authenticate(ctx context.Context, session *Session, username, password string) (*users.User, error) {
	user, err := m.users.GetByUsername(ctx, username)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "[Manager Authenticate] failed to load user")
	}

	if !user.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := m.Bind(ctx, session, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Bind sets the session's user without checking credentials, used right after
// an account is created.
func (m *Manager) Bind(ctx context.Context, session *Session, user *users.User) error {
	session.UserID = user.ID
	if err := m.sessions.Upsert(ctx, session); err != nil {
		return errors.Wrap(err, "[Manager Bind] failed to store session")
	}
	return nil
}

// Deauthenticate returns the session to the anonymous state. The session id
// stays valid so the client's cookie keeps working.
func (m *Manager) Deauthenticate(ctx context.Context, session *Session) error {
	session.UserID = ""
	if err := m.sessions.Upsert(ctx, session); err != nil {
		return errors.Wrap(err, "[Manager Deauthenticate] failed to store session")
	}
	return nil
}
