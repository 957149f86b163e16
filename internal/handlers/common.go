package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"photo-rating-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a plain acknowledgement
type MessageResponse struct {
	Message string `json:"message"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// decodeJSON reads a JSON request body into v
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeServiceError maps service errors to HTTP status codes.
// Unknown errors are logged and reported as a generic failure.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondError(w, capitalize(err.Error()), http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidScore):
		respondError(w, "Invalid score. Must be an integer between 1 and 5", http.StatusBadRequest)
	case errors.Is(err, services.ErrInsufficientPoints):
		respondError(w, "Not enough points", http.StatusBadRequest)
	case errors.Is(err, services.ErrDuplicateRating):
		respondError(w, "You have already rated this photo", http.StatusConflict)
	case errors.Is(err, services.ErrEmailTaken):
		respondError(w, "Email already registered", http.StatusConflict)
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(w, "Invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, services.ErrUnauthenticated):
		respondError(w, "Invalid token", http.StatusUnauthorized)
	case errors.Is(err, services.ErrInvalidResetToken):
		respondError(w, "Invalid or expired reset token", http.StatusBadRequest)
	case errors.Is(err, services.ErrInvalidInput):
		respondError(w, capitalize(strings.TrimPrefix(err.Error(), services.ErrInvalidInput.Error()+": ")), http.StatusBadRequest)
	default:
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg(fallback)
		respondError(w, fallback, http.StatusInternalServerError)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
