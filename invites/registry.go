package invites

import (
	"context"
	"time"

	"github.com/jrsteele09/lia-server/favorites"
	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/internal/utils"
	"github.com/jrsteele09/lia-server/lists"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Repos holds all repository dependencies for the Registry
type Repos struct {
	Invites   Repo
	Joined    JoinedRepo
	Favorites favorites.Repo
}

// ListAccess is a list together with the path the user reaches it by.
type ListAccess struct {
	Data            *lists.GroceryList `json:"data"`
	AccessType      lists.AccessMethod `json:"access_type"`
	AccessReference string             `json:"access_reference"`
	Favorited       bool               `json:"favorited"`
}

// Registry issues and redeems invites, records list memberships and keeps
// user favorites.
type Registry struct {
	repos   Repos
	lists   *lists.Service
	nowTime func() time.Time
}

// RegistryOption defines a function type to modify the Registry instance.
type RegistryOption func(*Registry)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.nowTime = nowFunc
	}
}

func NewRegistry(repos Repos, listService *lists.Service, options ...RegistryOption) (*Registry, error) {
	if repos.Invites == nil {
		return nil, errors.New("[NewRegistry] Invites repo is required")
	}
	if repos.Joined == nil {
		return nil, errors.New("[NewRegistry] Joined repo is required")
	}
	if repos.Favorites == nil {
		return nil, errors.New("[NewRegistry] Favorites repo is required")
	}
	if listService == nil {
		return nil, errors.New("[NewRegistry] list service is required")
	}

	r := &Registry{
		repos:   repos,
		lists:   listService,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// CreateAccountInvite issues an account creation invite. The caller must have
// checked that the requesting user is an admin.
func (r *Registry) CreateAccountInvite(ctx context.Context, uses *int, expires *time.Time) (*Invite, error) {
	invite, err := NewAccountInvite(uses, expires)
	if err != nil {
		return nil, err
	}
	if err := r.repos.Invites.Upsert(ctx, invite); err != nil {
		return nil, errors.Wrap(err, "[Registry CreateAccountInvite] failed to store invite")
	}
	return invite, nil
}

// CreateListInvite issues an invite for list. The caller must own the list.
func (r *Registry) CreateListInvite(ctx context.Context, list *lists.GroceryList) (*Invite, error) {
	invite, err := NewListInvite(list.ID)
	if err != nil {
		return nil, err
	}
	if err := r.repos.Invites.Upsert(ctx, invite); err != nil {
		return nil, errors.Wrap(err, "[Registry CreateListInvite] failed to store invite")
	}
	return invite, nil
}

// Redeem looks up an invite by kind and uri. It does not check or spend
// account invite limits; see UseAccountInvite.
func (r *Registry) Redeem(ctx context.Context, kind Kind, uri string) (*Invite, error) {
	invite, err := r.repos.Invites.GetByURI(ctx, kind, uri)
	if err != nil {
		return nil, errors.Wrapf(err, "[Registry Redeem] %s invite", kind)
	}
	return invite, nil
}

// UseAccountInvite redeems an account invite, rejects it as not found when it
// has expired or has no uses left, and spends one use.
func (r *Registry) UseAccountInvite(ctx context.Context, uri string) (*Invite, error) {
	invite, err := r.Redeem(ctx, KindAccount, uri)
	if err != nil {
		return nil, err
	}
	if !invite.Account.Usable(r.nowTime()) {
		return nil, errors.Wrap(apperrors.ErrNotFound, "[Registry UseAccountInvite] invite is no longer valid")
	}
	if invite.Account.UsesRemaining == nil {
		return invite, nil
	}

	invite.Account.Consume()
	if err := r.repos.Invites.Upsert(ctx, invite); err != nil {
		return nil, errors.Wrap(err, "[Registry UseAccountInvite] failed to store invite")
	}
	return invite, nil
}

// Join records a membership for userID through the list invite uri. Owners
// cannot join their own list. Joining twice stores two memberships.
func (r *Registry) Join(ctx context.Context, userID, uri string) (*JoinedList, error) {
	invite, err := r.Redeem(ctx, KindList, uri)
	if err != nil {
		return nil, err
	}
	list, err := r.lists.Get(ctx, invite.List.Reference)
	if err != nil {
		return nil, errors.Wrap(err, "[Registry Join] referenced list")
	}
	if list.OwnedBy(userID) {
		return nil, apperrors.ErrOwnListJoin
	}

	joined := &JoinedList{
		ID:        utils.NewID(),
		UserID:    userID,
		InviteURI: invite.URI,
	}
	if err := r.repos.Joined.Insert(ctx, joined); err != nil {
		return nil, errors.Wrap(err, "[Registry Join] failed to store membership")
	}
	return joined, nil
}

// IsMember reports whether userID joined listID through any of its invites.
func (r *Registry) IsMember(ctx context.Context, userID, listID string) (bool, error) {
	memberships, err := r.repos.Joined.ListByUser(ctx, userID)
	if err != nil {
		return false, errors.Wrap(err, "[Registry IsMember] failed to list memberships")
	}
	for _, m := range memberships {
		invite, err := r.repos.Invites.GetByURI(ctx, KindList, m.InviteURI)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return false, errors.Wrap(err, "[Registry IsMember] invite")
		}
		if invite.List.Reference == listID {
			return true, nil
		}
	}
	return false, nil
}

func (r *Registry) ToggleFavorite(ctx context.Context, userID string, ref favorites.AccessReference) (*favorites.Favorite, error) {
	if _, err := lists.ParseAccessMethod(string(ref.Type)); err != nil {
		return nil, err
	}
	if ref.Reference == "" {
		return nil, errors.Wrap(apperrors.ErrInvalidInput, "favorite reference is required")
	}
	return favorites.Toggle(ctx, r.repos.Favorites, userID, ref)
}

func (r *Registry) Favorites(ctx context.Context, userID string) ([]*favorites.Favorite, error) {
	result, err := r.repos.Favorites.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "[Registry Favorites] failed to list favorites")
	}
	return result, nil
}

// DeleteOrLeave deletes list when userID owns it. Otherwise the user leaves
// the list reached through the alias uri: their memberships for uri and their
// favorites for the alias are removed. A user with no membership gets
// ErrNotFound.
func (r *Registry) DeleteOrLeave(ctx context.Context, userID string, list *lists.GroceryList, method lists.AccessMethod, reference string) error {
	if list.OwnedBy(userID) {
		return r.lists.Delete(ctx, list)
	}
	if method != lists.AccessByAlias {
		return errors.Wrap(apperrors.ErrNotFound, "[Registry DeleteOrLeave] list")
	}

	memberships, err := r.repos.Joined.ListByUserAndURI(ctx, userID, reference)
	if err != nil {
		return errors.Wrap(err, "[Registry DeleteOrLeave] failed to list memberships")
	}
	if len(memberships) == 0 {
		return errors.Wrap(apperrors.ErrNotFound, "[Registry DeleteOrLeave] membership")
	}

	for _, m := range memberships {
		if err := r.repos.Joined.Delete(ctx, m.ID); err != nil {
			return errors.Wrap(err, "[Registry DeleteOrLeave] failed to delete membership")
		}
	}
	ref := favorites.AccessReference{Type: lists.AccessByAlias, Reference: reference}
	if err := r.repos.Favorites.DeleteByReference(ctx, userID, ref); err != nil {
		return errors.Wrap(err, "[Registry DeleteOrLeave] failed to delete favorites")
	}
	return nil
}

// AccessibleLists returns the lists userID owns, reached by id, followed by
// the lists they joined, reached by alias. Memberships whose invite or list
// has gone are skipped.
func (r *Registry) AccessibleLists(ctx context.Context, userID string) ([]ListAccess, error) {
	favs, err := r.Favorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	favorited := make(map[favorites.AccessReference]struct{}, len(favs))
	for _, f := range favs {
		favorited[f.Reference] = struct{}{}
	}
	access := func(list *lists.GroceryList, method lists.AccessMethod, reference string) ListAccess {
		_, fav := favorited[favorites.AccessReference{Type: method, Reference: reference}]
		return ListAccess{Data: list, AccessType: method, AccessReference: reference, Favorited: fav}
	}

	owned, err := r.lists.OwnedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]ListAccess, 0, len(owned))
	for _, list := range owned {
		result = append(result, access(list, lists.AccessByID, list.ID))
	}

	memberships, err := r.repos.Joined.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "[Registry AccessibleLists] failed to list memberships")
	}
	seen := make(map[string]struct{}, len(memberships))
	for _, m := range memberships {
		if _, dup := seen[m.InviteURI]; dup {
			continue
		}
		seen[m.InviteURI] = struct{}{}

		invite, err := r.repos.Invites.GetByURI(ctx, KindList, m.InviteURI)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "[Registry AccessibleLists] invite")
		}
		list, err := r.lists.Get(ctx, invite.List.Reference)
		if apperrors.Is(err, apperrors.ErrNotFound) {
			log.Debug().Str("uri", m.InviteURI).Msg("skipping membership of a deleted list")
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, access(list, lists.AccessByAlias, m.InviteURI))
	}
	return result, nil
}

// ListInvites returns the invites that point at list.
func (r *Registry) ListInvites(ctx context.Context, list *lists.GroceryList) ([]*Invite, error) {
	result, err := r.repos.Invites.ListByReference(ctx, list.ID)
	if err != nil {
		return nil, errors.Wrap(err, "[Registry ListInvites] failed to list invites")
	}
	return result, nil
}

// DeleteListInvite removes the list invite uri when userID owns the list it
// points at. Invites of other users' lists are reported as not found.
func (r *Registry) DeleteListInvite(ctx context.Context, userID, uri string) error {
	invite, err := r.Redeem(ctx, KindList, uri)
	if err != nil {
		return err
	}
	if _, err := r.lists.Owned(ctx, userID, invite.List.Reference); err != nil {
		return err
	}
	if err := r.repos.Invites.Delete(ctx, invite.ID); err != nil {
		return errors.Wrap(err, "[Registry DeleteListInvite] failed to delete invite")
	}
	return nil
}
