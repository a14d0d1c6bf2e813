package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"item-adoption-api/internal/services"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondServiceError translates a service failure into an HTTP response.
// Validation errors carry their own status code and are serialized verbatim;
// anything unexpected becomes a generic 500 so internals never leak.
func respondServiceError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		respondJSON(w, validationErr.Code, validationErr)
	case errors.Is(err, services.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, services.ErrOwnerZipMissing):
		http.Error(w, "Owner has no zipcode on file", http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// NotFoundHandler is the catch-all for unknown routes.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
}
