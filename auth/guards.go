package auth

import (
	"context"

	"github.com/jrsteele09/lia-server/events"
	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/invites"
	"github.com/jrsteele09/lia-server/lists"
	"github.com/jrsteele09/lia-server/sessions"
	"github.com/jrsteele09/lia-server/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/jrsteele09/lia-server/auth"

// Access is the state a guard chain builds up for one request. The request
// fields are set by the caller; Session and User are filled in by the checks.
type Access struct {
	Token     string // Session cookie value
	Method    string // List access method, "id" or "alias"
	Reference string // List id or invite uri
	Channel   string // Event channel to observe

	Session *sessions.Session
	User    *users.User
}

// Check is one link of a guard chain. It either passes or fails with a
// classified error.
type Check func(ctx context.Context, access *Access) error

// GuardRepos holds the repositories the guards read from
type GuardRepos struct {
	Users   users.Repo
	Lists   lists.Repo
	Invites invites.Repo
}

// Guard implements the authorization checks run before request handlers.
type Guard struct {
	repos    GuardRepos
	sessions *sessions.Manager
	registry *invites.Registry
	denied   metric.Int64Counter
}

// GuardOption defines a function type to modify the Guard instance.
type GuardOption func(*guardOptions)

type guardOptions struct {
	meter metric.Meter
}

// WithMeter records denials on meter instead of the global meter provider.
func WithMeter(meter metric.Meter) GuardOption {
	return func(o *guardOptions) {
		o.meter = meter
	}
}

func NewGuard(repos GuardRepos, sessionManager *sessions.Manager, registry *invites.Registry, options ...GuardOption) (*Guard, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewGuard] Users repo is required")
	}
	if repos.Lists == nil {
		return nil, errors.New("[NewGuard] Lists repo is required")
	}
	if repos.Invites == nil {
		return nil, errors.New("[NewGuard] Invites repo is required")
	}
	if sessionManager == nil {
		return nil, errors.New("[NewGuard] session manager is required")
	}
	if registry == nil {
		return nil, errors.New("[NewGuard] invite registry is required")
	}

	opts := guardOptions{meter: otel.Meter(meterName)}
	for _, opt := range options {
		opt(&opts)
	}

	denied, err := opts.meter.Int64Counter("lia.auth.denied",
		metric.WithDescription("Number of requests rejected by a guard"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[NewGuard] denied counter")
	}

	return &Guard{
		repos:    repos,
		sessions: sessionManager,
		registry: registry,
		denied:   denied,
	}, nil
}

// Authorize runs checks in order and stops at the first failure.
func (g *Guard) Authorize(ctx context.Context, access *Access, checks ...Check) error {
	for _, check := range checks {
		if err := check(ctx, access); err != nil {
			g.denied.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", apperrors.Code(err))))
			return err
		}
	}
	return nil
}

// RequireSession resolves the session token, rejects expired sessions and
// extends the sliding window of live ones.
func (g *Guard) RequireSession(ctx context.Context, access *Access) error {
	session, err := g.sessions.Resolve(ctx, access.Token)
	if err != nil {
		return err
	}
	if err := g.sessions.CheckExpiry(ctx, session); err != nil {
		return err
	}
	if err := g.sessions.Touch(ctx, session); err != nil {
		return err
	}
	access.Session = session
	return nil
}

// RequireUser requires the session to belong to an existing user. A session
// whose user has been deleted is demoted to anonymous.
func (g *Guard) RequireUser(ctx context.Context, access *Access) error {
	if access.Session == nil {
		return apperrors.ErrNoSession
	}
	if !access.Session.Authenticated() {
		return apperrors.ErrNotLoggedIn
	}

	user, err := g.repos.Users.GetByID(ctx, access.Session.UserID)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		log.Debug().Str("session_id", access.Session.ID).Str("user_id", access.Session.UserID).Msg("demoting session of deleted user")
		if err := g.sessions.Deauthenticate(ctx, access.Session); err != nil {
			log.Warn().Err(err).Str("session_id", access.Session.ID).Msg("failed to demote session")
		}
		return apperrors.ErrNotLoggedIn
	}
	if err != nil {
		return errors.Wrap(err, "[Guard RequireUser] failed to load user")
	}

	access.User = user
	return nil
}

// RequireAdmin requires the logged in user to be an admin.
func (g *Guard) RequireAdmin(_ context.Context, access *Access) error {
	if access.User == nil {
		return apperrors.ErrNotLoggedIn
	}
	if !access.User.Admin {
		return apperrors.ErrNotAdmin
	}
	return nil
}

// RequireListAccess checks that the session may reach the list named by
// Method and Reference. By id the session's user must own the list. By alias
// the invite must exist and point at an existing list; an invite whose list
// is gone is deleted.
func (g *Guard) RequireListAccess(ctx context.Context, access *Access) error {
	if access.Session == nil {
		return apperrors.ErrNoSession
	}
	method, err := lists.ParseAccessMethod(access.Method)
	if err != nil {
		return err
	}

	switch method {
	case lists.AccessByID:
		list, err := g.repos.Lists.Get(ctx, access.Reference)
		if err != nil {
			return errors.Wrap(err, "[Guard RequireListAccess] list")
		}
		if !list.OwnedBy(access.Session.UserID) {
			return errors.Wrap(apperrors.ErrNotFound, "[Guard RequireListAccess] list")
		}
		return nil

	case lists.AccessByAlias:
		invite, err := g.repos.Invites.GetByURI(ctx, invites.KindList, access.Reference)
		if err != nil {
			return errors.Wrap(err, "[Guard RequireListAccess] invite")
		}
		_, err = g.repos.Lists.Get(ctx, invite.List.Reference)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			log.Debug().Str("uri", invite.URI).Str("list_id", invite.List.Reference).Msg("deleting invite of a deleted list")
			if err := g.repos.Invites.Delete(ctx, invite.ID); err != nil {
				log.Warn().Err(err).Str("uri", invite.URI).Msg("failed to delete orphaned invite")
			}
			return errors.Wrap(apperrors.ErrNotFound, "[Guard RequireListAccess] list")
		}
		if err != nil {
			return errors.Wrap(err, "[Guard RequireListAccess] list")
		}
		return nil
	}
	return apperrors.ErrInvalidMethod
}

// RequireObserver checks that the logged in user may subscribe to Channel:
// they own the list or joined it through one of its invites.
func (g *Guard) RequireObserver(ctx context.Context, access *Access) error {
	if access.User == nil {
		return apperrors.ErrNotLoggedIn
	}
	listID, _, ok := events.ParseChannel(access.Channel)
	if !ok {
		return ErrInvalidChannel
	}

	list, err := g.repos.Lists.Get(ctx, listID)
	if err != nil {
		return errors.Wrap(err, "[Guard RequireObserver] list")
	}
	if list.OwnedBy(access.User.ID) {
		return nil
	}

	member, err := g.registry.IsMember(ctx, access.User.ID, listID)
	if err != nil {
		return err
	}
	if !member {
		return errors.Wrap(apperrors.ErrNotFound, "[Guard RequireObserver] list")
	}
	return nil
}
