package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"possync/internal/storeconfig"
	"possync/pkg/tenants"
	"possync/pkg/vault"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, map[string]any{"error": msg}, status)
}

// readJSON decodes the request body into v with a 1 MiB cap.
func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		errorJSON(w, "invalid json body", http.StatusBadRequest)
		return false
	}
	return true
}

// storeErr maps data-layer errors onto HTTP statuses.
func storeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tenants.ErrNotFound), errors.Is(err, vault.ErrNotFound), errors.Is(err, storeconfig.ErrNotFound):
		errorJSON(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, tenants.ErrDuplicate):
		errorJSON(w, err.Error(), http.StatusConflict)
	default:
		errorJSON(w, "internal error", http.StatusInternalServerError)
	}
}
