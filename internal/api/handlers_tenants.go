package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"possync/pkg/middleware"
	"possync/pkg/tenants"
)

// TenantBody is the create/update payload. ClientSecret, when present, is
// routed to the vault and never persisted on the tenant row.
type TenantBody struct {
	TenantName    string `json:"tenantName"`
	CompanyID     string `json:"companyId"`
	BaseURL       string `json:"baseUrl"`
	ClientID      string `json:"clientId"`
	ClientSecret  string `json:"clientSecret,omitempty"`
	Description   string `json:"description"`
	TokenEndpoint string `json:"tokenEndpoint"`
	APIVersion    string `json:"apiVersion"`
	Scope         string `json:"scope"`
	IsActive      *bool  `json:"isActive,omitempty"`
}

func (b TenantBody) validate() string {
	if strings.TrimSpace(b.TenantName) == "" {
		return "tenantName is required"
	}
	if strings.TrimSpace(b.CompanyID) == "" {
		return "companyId is required"
	}
	if strings.TrimSpace(b.ClientID) == "" {
		return "clientId is required"
	}
	return ""
}

func (a *App) listTenants(w http.ResponseWriter, r *http.Request) {
	list, err := a.tenants.List(r.Context(), tenants.ListFilter{})
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, list, http.StatusOK)
}

// listTenantsV2 adds paging and an active-only filter.
func (a *App) listTenantsV2(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	f := tenants.ListFilter{
		ActiveOnly: q.Get("active") == "true",
		Limit:      limit,
		Offset:     offset,
	}
	list, err := a.tenants.List(r.Context(), f)
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"items": list, "limit": limit, "offset": offset, "count": len(list)}, http.StatusOK)
}

func (a *App) createTenant(w http.ResponseWriter, r *http.Request) {
	var b TenantBody
	if !readJSON(w, r, &b) {
		return
	}
	if msg := b.validate(); msg != "" {
		errorJSON(w, msg, http.StatusBadRequest)
		return
	}
	t, err := a.tenants.Create(r.Context(), tenants.Tenant{
		TenantName:    b.TenantName,
		CompanyID:     b.CompanyID,
		BaseURL:       b.BaseURL,
		ClientID:      b.ClientID,
		Description:   b.Description,
		TokenEndpoint: b.TokenEndpoint,
		APIVersion:    b.APIVersion,
		Scope:         b.Scope,
	})
	if err != nil {
		storeErr(w, err)
		return
	}
	if b.ClientSecret != "" {
		if err := a.secrets.Set(r.Context(), vaultName(t.ID), b.ClientSecret); err != nil {
			a.log.Errorw("vault set failed after tenant create", "tenant", t.ID, "err", err)
			errorJSON(w, "tenant created but secret storage failed", http.StatusInternalServerError)
			return
		}
	}
	a.log.Infow("tenant created", "tenant", t.ID, "subject", middleware.SubjectFrom(r.Context()))
	writeJSON(w, t, http.StatusCreated)
}

func (a *App) getTenant(w http.ResponseWriter, r *http.Request) {
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
	writeJSON(w, t, http.StatusOK)
}

func (a *App) updateTenant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		errorJSON(w, "invalid tenant id", http.StatusBadRequest)
		return
	}
	var b TenantBody
	if !readJSON(w, r, &b) {
		return
	}
	if msg := b.validate(); msg != "" {
		errorJSON(w, msg, http.StatusBadRequest)
		return
	}
	cur, err := a.tenants.Get(r.Context(), id)
	if err != nil {
		storeErr(w, err)
		return
	}
	cur.TenantName = b.TenantName
	cur.CompanyID = b.CompanyID
	cur.BaseURL = b.BaseURL
	cur.ClientID = b.ClientID
	cur.Description = b.Description
	cur.TokenEndpoint = b.TokenEndpoint
	cur.APIVersion = b.APIVersion
	cur.Scope = b.Scope
	if b.IsActive != nil {
		cur.IsActive = *b.IsActive
	}
	t, err := a.tenants.Update(r.Context(), cur)
	if err != nil {
		storeErr(w, err)
		return
	}
	if b.ClientSecret != "" {
		if err := a.secrets.Set(r.Context(), vaultName(t.ID), b.ClientSecret); err != nil {
			a.log.Errorw("vault set failed on tenant update", "tenant", t.ID, "err", err)
			errorJSON(w, "tenant updated but secret storage failed", http.StatusInternalServerError)
			return
		}
	}
	a.log.Infow("tenant updated", "tenant", t.ID, "subject", middleware.SubjectFrom(r.Context()))
	writeJSON(w, t, http.StatusOK)
}

// deleteTenant soft-deletes: the row stays, is_active clears.
func (a *App) deleteTenant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		errorJSON(w, "invalid tenant id", http.StatusBadRequest)
		return
	}
	if err := a.tenants.Deactivate(r.Context(), id); err != nil {
		storeErr(w, err)
		return
	}
	a.log.Infow("tenant deactivated", "tenant", id, "subject", middleware.SubjectFrom(r.Context()))
	writeJSON(w, map[string]any{"ok": true}, http.StatusOK)
}
