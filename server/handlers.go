package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/lia-server/auth"
	"github.com/jrsteele09/lia-server/favorites"
	"github.com/jrsteele09/lia-server/lists"
)

// RootHandler answers with the server time, useful as a liveness probe.
func (s *Server) RootHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, time.Now().UTC())
	}
}

func (s *Server) PreflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}
}

// NotFoundHandler answers paths and methods no route matches.
func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSONError(w, "not_found", "not found", http.StatusNotFound)
	}
}

// SessionHandler returns the caller's session, issuing a new anonymous one
// when the cookie is missing, unknown or expired.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.auth.Session(r.Context(), s.sessionToken(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.SetSessionCookie(w, r, session.ID)
		writeJSON(w, http.StatusOK, session)
	}
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.LoginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		user, err := s.auth.Login(r.Context(), accessFromContext(r.Context()).Session, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user.Redacted())
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.Logout(r.Context(), accessFromContext(r.Context()).Session); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) CreateAccountHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req auth.CreateAccountRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		user, err := s.auth.CreateAccount(r.Context(), accessFromContext(r.Context()).Session, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, user.Redacted())
	}
}

func (s *Server) UserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, accessFromContext(r.Context()).User.Redacted())
	}
}

func (s *Server) UserListsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		access := accessFromContext(r.Context())
		result, err := s.registry.AccessibleLists(r.Context(), access.User.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) FavoritesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		access := accessFromContext(r.Context())
		result, err := s.registry.Favorites(r.Context(), access.User.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// ToggleFavoriteHandler answers with the new favorite, or null when the
// favorite was removed.
func (s *Server) ToggleFavoriteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		access := accessFromContext(r.Context())
		ref := favorites.AccessReference{
			Type:      lists.AccessMethod(r.PathValue("type")),
			Reference: r.PathValue("reference"),
		}

		favorite, err := s.registry.ToggleFavorite(r.Context(), access.User.ID, ref)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, favorite)
	}
}

func (s *Server) JoinHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		access := accessFromContext(r.Context())
		joined, err := s.registry.Join(r.Context(), access.User.ID, r.PathValue("uri"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, joined)
	}
}
