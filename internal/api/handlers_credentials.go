package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"possync/pkg/vault"
)

func vaultName(tenantID string) string { return vault.TenantSecretName(tenantID) }

// getTenantCredentials returns the client id plus whether a secret exists.
// The secret value itself never leaves the vault through this route.
func (a *App) getTenantCredentials(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		errorJSON(w, "invalid tenant id", http.StatusBadRequest)
		return
	}
	t, err := a.tenants.Get(r.Context(), id)
	if err != nil {
		storeErr(w, err)
		return
	}
	hasSecret := true
	if _, err := a.secrets.Get(r.Context(), vaultName(id)); err != nil {
		hasSecret = false
	}
	writeJSON(w, map[string]any{
		"tenantId":  t.ID,
		"clientId":  t.ClientID,
		"hasSecret": hasSecret,
	}, http.StatusOK)
}

func (a *App) putTenantCredentials(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		errorJSON(w, "invalid tenant id", http.StatusBadRequest)
		return
	}
	if _, err := a.tenants.Get(r.Context(), id); err != nil {
		storeErr(w, err)
		return
	}
	var b struct {
		ClientSecret string `json:"clientSecret"`
	}
	if !readJSON(w, r, &b) {
		return
	}
	if strings.TrimSpace(b.ClientSecret) == "" {
		errorJSON(w, "clientSecret is required", http.StatusBadRequest)
		return
	}
	if err := a.secrets.Set(r.Context(), vaultName(id), b.ClientSecret); err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}

func (a *App) deleteTenantCredentials(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		errorJSON(w, "invalid tenant id", http.StatusBadRequest)
		return
	}
	if err := a.secrets.Delete(r.Context(), vaultName(id)); err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}
