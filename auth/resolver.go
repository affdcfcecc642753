package auth

import (
	"context"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/invites"
	"github.com/jrsteele09/lia-server/lists"
	"github.com/pkg/errors"
)

// Resolver fetches the list behind an access method and reference that a
// guard has already approved. It never deletes anything.
type Resolver struct {
	lists   lists.Repo
	invites invites.Repo
}

func NewResolver(listRepo lists.Repo, inviteRepo invites.Repo) (*Resolver, error) {
	if listRepo == nil {
		return nil, errors.New("[NewResolver] Lists repo is required")
	}
	if inviteRepo == nil {
		return nil, errors.New("[NewResolver] Invites repo is required")
	}
	return &Resolver{lists: listRepo, invites: inviteRepo}, nil
}

func (r *Resolver) Resolve(ctx context.Context, method lists.AccessMethod, reference string) (*lists.GroceryList, error) {
	listID := reference
	switch method {
	case lists.AccessByID:
	case lists.AccessByAlias:
		invite, err := r.invites.GetByURI(ctx, invites.KindList, reference)
		if err != nil {
			return nil, errors.Wrap(err, "[Resolver Resolve] invite")
		}
		listID = invite.List.Reference
	default:
		return nil, apperrors.ErrInvalidMethod
	}

	list, err := r.lists.Get(ctx, listID)
	if err != nil {
		return nil, errors.Wrap(err, "[Resolver Resolve] list")
	}
	return list, nil
}
