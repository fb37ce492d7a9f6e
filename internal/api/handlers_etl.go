package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"possync/internal/brink"
	"possync/internal/etl"
	"possync/internal/ukg"
	"possync/pkg/vault"
)

type etlRequest struct {
	TenantID       string             `json:"tenantId"`
	AccessToken    string             `json:"accessToken"`
	LocationToken  string             `json:"locationToken"`
	Load           bool               `json:"load"`
	IdempotencyKey string             `json:"idempotencyKey,omitempty"`
	Mappings       []etl.FieldMapping `json:"mappings,omitempty"`
}

// postETLBrinkToUKG extracts employees from PAR Brink, transforms them to
// UKG field names, and optionally loads the result. Loads require an
// idempotency key; repeating a key replays the recorded run instead of
// re-sending.
func (a *App) postETLBrinkToUKG(w http.ResponseWriter, r *http.Request) {
	var body etlRequest
	if !readJSON(w, r, &body) {
		return
	}
	if _, err := uuid.Parse(body.TenantID); err != nil {
		errorJSON(w, "tenantId must be a valid uuid", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(body.AccessToken) == "" || strings.TrimSpace(body.LocationToken) == "" {
		errorJSON(w, "accessToken and locationToken are required", http.StatusBadRequest)
		return
	}
	if body.Load && strings.TrimSpace(body.IdempotencyKey) == "" {
		errorJSON(w, "idempotencyKey is required when load=true", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tenant, err := a.tenants.Get(ctx, body.TenantID)
	if err != nil {
		storeErr(w, err)
		return
	}
	if !tenant.IsActive {
		errorJSON(w, "tenant is inactive", http.StatusConflict)
		return
	}

	creds := ukg.Credentials{
		TokenEndpoint: tenant.TokenEndpoint,
		BaseURL:       tenant.BaseURL,
		ClientID:      tenant.ClientID,
		CompanyID:     tenant.CompanyID,
		Scope:         tenant.Scope,
	}
	if creds.TokenEndpoint == "" {
		creds.TokenEndpoint = a.cfg.UKGTokenEndpoint
	}
	if creds.BaseURL == "" {
		creds.BaseURL = a.cfg.UKGBaseURL
	}
	if body.Load {
		secret, serr := a.secrets.Get(ctx, vault.TenantSecretName(tenant.ID))
		if serr != nil {
			if errors.Is(serr, vault.ErrNotFound) {
				errorJSON(w, "tenant has no client secret on file", http.StatusConflict)
				return
			}
			a.log.Errorw("vault get failed", "tenant", tenant.ID, "err", serr)
			errorJSON(w, "secret lookup failed", http.StatusInternalServerError)
			return
		}
		creds.ClientSecret = secret
	}

	ctx = brink.WithCredentials(ctx, brink.Credentials{
		AccessToken:   body.AccessToken,
		LocationToken: body.LocationToken,
	})

	start := time.Now()
	result, err := a.etl.Execute(ctx, etl.RunRequest{
		TenantID:       tenant.ID,
		IdempotencyKey: body.IdempotencyKey,
		Load:           body.Load,
		Mappings:       body.Mappings,
		UKGCreds:       creds,
	})
	a.observe("etl", start)
	if err != nil {
		a.metrics.etlRuns.WithLabelValues("FAILED").Inc()
		errorJSON(w, err.Error(), http.StatusBadGateway)
		return
	}
	status := result.Status
	if status == "" {
		status = "DRY_RUN"
	}
	a.metrics.etlRuns.WithLabelValues(status).Inc()
	writeJSON(w, result, http.StatusOK)
}
