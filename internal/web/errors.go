package web

// errors.go provides unified error response handling for the web layer.
// Every failure leaves as a JSON envelope whose "error" field carries a
// displayable message; clients must not read anything into the status
// code beyond non-2xx meaning failure.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akoval/fleetops/internal/fleet"
	"github.com/akoval/fleetops/internal/logging"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondError logs the technical error with request context and writes
// the JSON envelope.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int, code string) {
	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", code,
	)
	respondJSON(w, statusCode, ErrorResponse{Error: err.Error(), Code: code})
}

// respondStoreError maps store sentinel errors to status codes.
func (s *Server) respondStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, fleet.ErrNotFound):
		s.respondError(w, r, err, http.StatusNotFound, "not_found")
	case errors.Is(err, fleet.ErrDuplicateCase):
		s.respondError(w, r, err, http.StatusConflict, "duplicate")
	default:
		s.respondError(w, r, err, http.StatusBadRequest, "invalid_request")
	}
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// maxBodySize caps request bodies; invoice data URLs are the largest
// legitimate payload.
const maxBodySize = 16 << 20

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	return dec.Decode(v)
}
