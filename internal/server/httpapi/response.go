package httpapi

import (
	"encoding/json"
	"net/http"
)

// M is a shorthand for ad hoc JSON objects.
type M map[string]any

func respondWithError(w http.ResponseWriter, code int, msg string) {
	respondWithJSON(w, code, M{"error": msg})
}

func respondWithJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
