package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"booking-api/internal/apperr"
	"booking-api/internal/validation"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// DecodeJSON decodes a single JSON object. Unknown fields are ignored so
// that a patch made only of unrecognized keys reaches the "no fields to
// update" rule instead of failing as malformed.
func DecodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("invalid json")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return apperr.Validation("body must contain a single JSON object")
	}
	return nil
}

// PathID returns the {id} URL parameter after checking it has the shape of
// a store identity reference.
func PathID(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" || !validation.IsObjectID(id) {
		return "", apperr.Validation("Invalid ID")
	}
	return id, nil
}

func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errors.New("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
