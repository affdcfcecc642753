package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/lia-server/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json"

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

// sessionToken returns the session cookie value, or "" when absent.
func (s *Server) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(s.config.GetSessionCookieName())
	if err != nil {
		return ""
	}
	return cookie.Value
}

// SetSessionCookie hands the session token to the client. The cookie lives as
// long as the session window; the server decides expiry, not the browser.
func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetSessionTTL().Seconds()),
	})
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	return "http"
}

// decodeJSON reads a JSON body into v. Malformed bodies are validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(apperrors.ErrInvalidInput, "malformed JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("failed to encode response")
	}
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

// writeError maps err onto the error taxonomy. Classified errors carry their
// message to the client; anything else is logged and reported as internal.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.Code(err)
	status := statusForCode(code)
	if status == http.StatusInternalServerError {
		log.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
		writeJSONError(w, code, "internal error", status)
		return
	}
	log.Debug().Err(err).Str("path", r.URL.Path).Str("code", code).Msg("request rejected")
	writeJSONError(w, code, describe(err), status)
}

func statusForCode(code string) int {
	switch code {
	case "invalid_request":
		return http.StatusBadRequest
	case "unauthorized":
		return http.StatusUnauthorized
	case "forbidden":
		return http.StatusForbidden
	case "not_found":
		return http.StatusNotFound
	case "conflict":
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// describe returns the client facing detail of a classified error. Not found
// errors never say what was missing.
func describe(err error) string {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidCredentials):
		return apperrors.ErrInvalidCredentials.Error()
	case apperrors.Is(err, apperrors.ErrNotFound):
		return apperrors.ErrNotFound.Error()
	case apperrors.Is(err, apperrors.ErrValidation):
		return err.Error()
	}
	return errors.Cause(err).Error()
}
