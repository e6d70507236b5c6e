package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/snagao/tripcraft/backend/internal/domain"
)

// errorResponse is the uniform error envelope for every non-2xx body.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON serializes v with the given status. Encoding failures are logged;
// by then the status line is already on the wire, so nothing else can be done.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("handler: encode response", "error", err)
	}
}

// writeServiceError maps a service-layer error onto the HTTP surface:
// ErrNotFound → 404, ErrValidation → 422, ErrPermission → 403, anything
// else → 500 with the detail kept server-side.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{errorDetail{Code: "not_found", Message: "resource not found"}})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{errorDetail{Code: "validation_error", Message: userMessage(err, domain.ErrValidation)}})
	case errors.Is(err, domain.ErrPermission):
		writeJSON(w, http.StatusForbidden, errorResponse{errorDetail{Code: "permission_denied", Message: userMessage(err, domain.ErrPermission)}})
	default:
		slog.ErrorContext(r.Context(), "handler: internal error", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{errorDetail{Code: "internal_error", Message: "internal server error"}})
	}
}

// writeRequestError rejects a malformed request before it reaches the
// service layer (bad JSON, missing body, unparsable IDs).
func writeRequestError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{errorDetail{Code: "bad_request", Message: message}})
}

// userMessage extracts the human-readable tail of a wrapped sentinel error.
// e.g. "service.TripService.Create: validation error: title is required"
// → "title is required". Falls back to the sentinel's own text when the
// wrapping carries nothing after it.
func userMessage(err error, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}
