package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/neuranotes/neuranotes/pkg/apperr"
)

// errorBody matches the original API's error shape.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps any error to its HTTP status and {error, details?}
// body. Untyped errors become opaque 500s; the real cause only goes to
// the log.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	body := errorBody{Error: "Something went wrong!"}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		body.Error = appErr.Message
		body.Details = appErr.Details
	}

	status := apperr.HTTPStatus(err)
	if logger != nil && status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.Error(err), zap.Int("status", status))
	}

	respondJSON(w, status, body)
}
