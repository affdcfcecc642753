package server

import (
	"net/http"

	"github.com/jrsteele09/lia-server/lists"
)

func (s *Server) CreateListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lists.CreateRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		access := accessFromContext(r.Context())
		list, err := s.lists.Create(r.Context(), access.User.ID, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, list)
	}
}

func (s *Server) ListSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var settings lists.Settings
		if err := decodeJSON(w, r, &settings); err != nil {
			writeError(w, r, err)
			return
		}

		access := accessFromContext(r.Context())
		list, err := s.lists.UpdateSettings(r.Context(), access.User.ID, r.PathValue("id"), settings)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) ListInvitesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		access := accessFromContext(r.Context())
		list, err := s.lists.Owned(r.Context(), access.User.ID, r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}

		result, err := s.registry.ListInvites(r.Context(), list)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) GetListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, listFromContext(r.Context()))
	}
}

// DeleteListHandler deletes the list for its owner and removes the caller's
// membership for anyone else.
func (s *Server) DeleteListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		access := accessFromContext(r.Context())
		err := s.registry.DeleteOrLeave(r.Context(), access.User.ID, listFromContext(r.Context()),
			lists.AccessMethod(access.Method), access.Reference)
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ItemsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := s.lists.Items(r.Context(), listFromContext(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) AddItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req lists.NewItemRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		access := accessFromContext(r.Context())
		item, err := s.lists.AddItem(r.Context(), listFromContext(r.Context()), access.User.ID, req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func (s *Server) CheckItemHandler(checked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.lists.SetChecked(r.Context(), listFromContext(r.Context()), r.PathValue("item"), checked); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) UpdateItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch map[string]any
		if err := decodeJSON(w, r, &patch); err != nil {
			writeError(w, r, err)
			return
		}

		item, err := s.lists.UpdateItem(r.Context(), listFromContext(r.Context()), r.PathValue("item"), patch)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) DeleteItemHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.lists.DeleteItem(r.Context(), listFromContext(r.Context()), r.PathValue("item")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) AlternativesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := s.lists.Alternatives(r.Context(), listFromContext(r.Context()), r.PathValue("item"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}
