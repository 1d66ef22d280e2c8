package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rjosephs/daybook-backend/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeAppError maps a service error to its status code and JSON body,
// including the isPasswordProtected flag for entry-password failures.
func writeAppError(w http.ResponseWriter, err error) {
	body := map[string]any{"error": err.Error()}
	if apperr.IsPasswordProtected(err) {
		body["isPasswordProtected"] = true
	}
	writeJSON(w, apperr.Status(err), body)
}
