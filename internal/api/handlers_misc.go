package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"possync/internal/ukg"
	"possync/pkg/vault"
)

// getHealth reports liveness plus dependency reachability. The service
// stays 200 on in-memory mode; a failing database ping degrades to 503.
func (a *App) getHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status": "ok",
		"env":    a.cfg.Env,
		"time":   time.Now().UTC().Format(time.RFC3339),
	}
	code := http.StatusOK
	if a.db == nil {
		resp["database"] = "memory"
	} else {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.db.Ping(ctx); err != nil {
			resp["status"] = "degraded"
			resp["database"] = "unreachable"
			code = http.StatusServiceUnavailable
		} else {
			resp["database"] = "ok"
		}
	}
	writeJSON(w, resp, code)
}

type ukgReadyRequest struct {
	TenantID  string           `json:"tenantId"`
	Employees []map[string]any `json:"employees,omitempty"`
}

// postUKGReady authenticates against the tenant's UKG Ready instance and,
// when employee records are supplied, pushes them in batches.
func (a *App) postUKGReady(w http.ResponseWriter, r *http.Request) {
	var body ukgReadyRequest
	if !readJSON(w, r, &body) {
		return
	}
	if _, err := uuid.Parse(body.TenantID); err != nil {
		errorJSON(w, "tenantId must be a valid uuid", http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	tenant, err := a.tenants.Get(ctx, body.TenantID)
	if err != nil {
		storeErr(w, err)
		return
	}
	secret, err := a.secrets.Get(ctx, vault.TenantSecretName(tenant.ID))
	if err != nil {
		if errors.Is(err, vault.ErrNotFound) {
			errorJSON(w, "tenant has no client secret on file", http.StatusConflict)
			return
		}
		a.log.Errorw("vault get failed", "tenant", tenant.ID, "err", err)
		errorJSON(w, "secret lookup failed", http.StatusInternalServerError)
		return
	}
	creds := ukg.Credentials{
		TokenEndpoint: tenant.TokenEndpoint,
		BaseURL:       tenant.BaseURL,
		ClientID:      tenant.ClientID,
		ClientSecret:  secret,
		CompanyID:     tenant.CompanyID,
		Scope:         tenant.Scope,
	}
	if creds.TokenEndpoint == "" {
		creds.TokenEndpoint = a.cfg.UKGTokenEndpoint
	}
	if creds.BaseURL == "" {
		creds.BaseURL = a.cfg.UKGBaseURL
	}

	start := time.Now()
	if len(body.Employees) == 0 {
		err = a.ukg.Ping(ctx, creds)
		a.observe("ukg", start)
		if err != nil {
			a.upstreamErr(w, err)
			return
		}
		writeJSON(w, map[string]any{"tenantId": tenant.ID, "connected": true}, http.StatusOK)
		return
	}
	result, err := a.ukg.UpsertEmployees(ctx, creds, body.Employees)
	a.observe("ukg", start)
	if err != nil {
		a.upstreamErr(w, err)
		return
	}
	writeJSON(w, map[string]any{"tenantId": tenant.ID, "result": result}, http.StatusOK)
}
