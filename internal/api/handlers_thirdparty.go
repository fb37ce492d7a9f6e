package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"possync/pkg/tenants"
)

type apiBody struct {
	Name            string         `json:"name"`
	Provider        string         `json:"provider"`
	BaseURL         string         `json:"baseUrl"`
	AuthType        string         `json:"authType"`
	VaultSecretName string         `json:"vaultSecretName"`
	Configuration   map[string]any `json:"configuration"`
	IsActive        *bool          `json:"isActive,omitempty"`
}

func (b apiBody) validate() string {
	if strings.TrimSpace(b.Name) == "" {
		return "name is required"
	}
	if strings.TrimSpace(b.BaseURL) == "" {
		return "baseUrl is required"
	}
	return ""
}

func (a *App) listThirdPartyAPIs(w http.ResponseWriter, r *http.Request) {
	list, err := a.apis.ListAPIs(r.Context(), r.URL.Query().Get("active") == "true")
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, list, http.StatusOK)
}

func (a *App) createThirdPartyAPI(w http.ResponseWriter, r *http.Request) {
	var b apiBody
	if !readJSON(w, r, &b) {
		return
	}
	if msg := b.validate(); msg != "" {
		errorJSON(w, msg, http.StatusBadRequest)
		return
	}
	rec, err := a.apis.CreateAPI(r.Context(), tenants.ThirdPartyAPI{
		Name:            b.Name,
		Provider:        b.Provider,
		BaseURL:         b.BaseURL,
		AuthType:        b.AuthType,
		VaultSecretName: b.VaultSecretName,
		Configuration:   b.Configuration,
	})
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, rec, http.StatusCreated)
}

func (a *App) getThirdPartyAPI(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		errorJSON(w, "invalid id", http.StatusBadRequest)
		return
	}
	rec, err := a.apis.GetAPI(r.Context(), id)
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, rec, http.StatusOK)
}

func (a *App) updateThirdPartyAPI(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		errorJSON(w, "invalid id", http.StatusBadRequest)
		return
	}
	var b apiBody
	if !readJSON(w, r, &b) {
		return
	}
	if msg := b.validate(); msg != "" {
		errorJSON(w, msg, http.StatusBadRequest)
		return
	}
	cur, err := a.apis.GetAPI(r.Context(), id)
	if err != nil {
		storeErr(w, err)
		return
	}
	cur.Name = b.Name
	cur.Provider = b.Provider
	cur.BaseURL = b.BaseURL
	cur.AuthType = b.AuthType
	cur.VaultSecretName = b.VaultSecretName
	cur.Configuration = b.Configuration
	if b.IsActive != nil {
		cur.IsActive = *b.IsActive
	}
	rec, err := a.apis.UpdateAPI(r.Context(), cur)
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, rec, http.StatusOK)
}

func (a *App) deleteThirdPartyAPI(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		errorJSON(w, "invalid id", http.StatusBadRequest)
		return
	}
	if err := a.apis.DeleteAPI(r.Context(), id); err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}
