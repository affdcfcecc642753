package auth

import (
	"context"
	"strings"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/invites"
	"github.com/jrsteele09/lia-server/sessions"
	"github.com/jrsteele09/lia-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Service handles the session endpoints: issuing anonymous sessions, logging
// in and out, and creating accounts.
type Service struct {
	users                users.Repo
	sessions             *sessions.Manager
	registry             *invites.Registry
	allowAccountCreation bool
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithAccountCreation allows accounts to be created without an invite.
func WithAccountCreation(allow bool) ServiceOption {
	return func(s *Service) {
		s.allowAccountCreation = allow
	}
}

func NewService(userRepo users.Repo, sessionManager *sessions.Manager, registry *invites.Registry, options ...ServiceOption) (*Service, error) {
	if userRepo == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if sessionManager == nil {
		return nil, errors.New("[NewService] session manager is required")
	}
	if registry == nil {
		return nil, errors.New("[NewService] invite registry is required")
	}

	s := &Service{
		users:    userRepo,
		sessions: sessionManager,
		registry: registry,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Session returns the live session for token. A missing, unknown or expired
// token yields a fresh anonymous session instead of an error.
func (s *Service) Session(ctx context.Context, token string) (*sessions.Session, error) {
	session, err := s.sessions.Resolve(ctx, token)
	switch {
	case apperrors.Is(err, apperrors.ErrNoSession):
		return s.sessions.Create(ctx)
	case err != nil:
		return nil, err
	}

	if err := s.sessions.CheckExpiry(ctx, session); err != nil {
		return s.sessions.Create(ctx)
	}
	if err := s.sessions.Touch(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Login authenticates the session with the given credentials.
func (s *Service) Login(ctx context.Context, session *sessions.Session, req LoginRequest) (*users.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	// Usernames are stored trimmed.
	return s.sessions.Authenticate(ctx, session, strings.TrimSpace(req.Username), req.Password)
}

// Logout returns the session to the anonymous state.
func (s *Service) Logout(ctx context.Context, session *sessions.Session) error {
	return s.sessions.Deauthenticate(ctx, session)
}

// CreateAccount creates a non-admin user and logs the session in as them. An
// invite use is only spent once the username is known to be free.
func (s *Service) CreateAccount(ctx context.Context, session *sessions.Session, req CreateAccountRequest) (*users.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Invite == nil && !s.allowAccountCreation {
		return nil, ErrAccountCreationDisabled
	}

	user, err := users.New(req.Username, req.Password, false)
	if err != nil {
		return nil, err
	}

	_, err = s.users.GetByUsername(ctx, user.Username)
	switch {
	case err == nil:
		return nil, apperrors.ErrUsernameTaken
	case !apperrors.Is(err, apperrors.ErrNotFound):
		return nil, errors.Wrap(err, "[Service CreateAccount] failed to look up username")
	}

	if req.Invite != nil {
		if _, err := s.registry.UseAccountInvite(ctx, *req.Invite); err != nil {
			return nil, err
		}
	}

	if err := s.users.Upsert(ctx, user); err != nil {
		return nil, errors.Wrap(err, "[Service CreateAccount] failed to store user")
	}
	log.Info().Str("user_id", user.ID).Str("username", user.Username).Msg("account created")

	if err := s.sessions.Bind(ctx, session, user); err != nil {
		return nil, err
	}
	return user, nil
}
