package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/inspect/internal/apperr"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Data    any      `json:"data,omitempty"`
	Count   *int     `json:"count,omitempty"`
	Error   string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	count := len(items)
	writeJSON(w, http.StatusOK, envelope{Success: true, Count: &count, Data: items})
}

// writeError renders err with the status of its kind. Internal failures keep
// their cause out of the body unless the server runs in dev mode.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	body := envelope{Error: http.StatusText(status)}

	var ae *apperr.Error
	if errors.As(err, &ae) {
		body.Error = ae.Message
		body.Details = ae.Details
	}

	switch kind {
	case apperr.KindInternal:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		body.Error = "Internal server error"
		body.Details = nil
		if s.cfg.Dev {
			body.Details = []string{err.Error()}
		}
	case apperr.KindTransient:
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Storage unavailable")
		w.Header().Set("Retry-After", "1")
	}

	writeJSON(w, status, body)
}

// decode reads a JSON body into v. Unknown fields are ignored.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("Request body too large")
		}
		return apperr.Validation("Invalid JSON body")
	}
	return nil
}

// idParam parses a UUID path parameter.
func idParam(r *http.Request, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Validation("Invalid " + label + " ID")
	}
	return id, nil
}
