package server

import (
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/jrsteele09/lia-server/invites"
	"github.com/pkg/errors"
)

// CreateAccountInviteHandler issues an account invite. The optional query
// parameters uses (positive integer) and expires (RFC 3339) limit it.
func (s *Server) CreateAccountInviteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uses, expires, err := parseInviteLimits(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		invite, err := s.registry.CreateAccountInvite(r.Context(), uses, expires)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, invite)
	}
}

func parseInviteLimits(r *http.Request) (*int, *time.Time, error) {
	query := r.URL.Query()

	var uses *int
	if raw := query.Get("uses"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, nil, errors.Wrap(apperrors.ErrInvalidInput, "uses must be an integer")
		}
		uses = &n
	}

	var expires *time.Time
	if raw := query.Get("expires"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, nil, errors.Wrap(apperrors.ErrInvalidInput, "expires must be an RFC 3339 timestamp")
		}
		expires = &t
	}
	return uses, expires, nil
}

func (s *Server) CreateListInviteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		access := accessFromContext(r.Context())
		list, err := s.lists.Owned(r.Context(), access.User.ID, r.PathValue("list_id"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		invite, err := s.registry.CreateListInvite(r.Context(), list)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, invite)
	}
}

func (s *Server) DeleteListInviteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		access := accessFromContext(r.Context())
		if err := s.registry.DeleteListInvite(r.Context(), access.User.ID, r.PathValue("uri")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// RedeemInviteHandler looks an invite up by its type and uri.
func (s *Server) RedeemInviteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kind, err := invites.ParseKind(r.PathValue("type"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		invite, err := s.registry.Redeem(r.Context(), kind, r.PathValue("uri"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, invite)
	}
}
