package transport

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"booking-api/internal/apperr"
)

const internalMessage = "Internal Server Error"

type ErrorResponse struct {
	Error   bool              `json:"error"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func WriteError(w http.ResponseWriter, status int, message string, details map[string]string) {
	WriteJSON(w, status, ErrorResponse{
		Error:   true,
		Message: message,
		Details: details,
	})
}

func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// WriteAppError is the single place where failures become HTTP responses.
// Internal failures are logged with their cause and answered generically.
func WriteAppError(w http.ResponseWriter, log *slog.Logger, op string, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.KindInternal {
		if log != nil {
			log.Error(op+": internal error", slog.String("error", err.Error()))
		}
		WriteError(w, http.StatusInternalServerError, internalMessage, nil)
		return
	}

	if log != nil {
		log.Warn(op+": "+appErr.Kind.String(), slog.String("message", appErr.Message))
	}
	WriteError(w, StatusFor(appErr.Kind), appErr.Message, appErr.Details)
}
