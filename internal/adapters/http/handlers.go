package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write_json_failed", "error", err.Error())
	}
}

// writeError writes a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
// Used for staff write endpoints.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// lenientDecode decodes JSON from the request body, silently dropping
// unknown fields. Portal profile updates use it so stray fields are
// ignored instead of applied or rejected.
func lenientDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
