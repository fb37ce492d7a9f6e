// pkg/tenants/postgres.go
package tenants

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgStore implements Store and APIStore backed by PostgreSQL.
type pgStore struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

// NewPostgresStore constructs a PostgreSQL-backed tenant store.
func NewPostgresStore(dbPool *pgxpool.Pool, log *zap.SugaredLogger) *pgStore {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates required tables if they do not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tenants (
  id uuid PRIMARY KEY,
  tenant_name text UNIQUE NOT NULL,
  company_id text NOT NULL DEFAULT '',
  base_url text NOT NULL DEFAULT '',
  client_id text NOT NULL DEFAULT '',
  description text NOT NULL DEFAULT '',
  is_active boolean NOT NULL DEFAULT true,
  token_endpoint text NOT NULL DEFAULT '',
  api_version text NOT NULL DEFAULT '',
  scope text NOT NULL DEFAULT '',
  created_at timestamptz NOT NULL DEFAULT NOW(),
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS third_party_apis (
  id uuid PRIMARY KEY,
  name text UNIQUE NOT NULL,
  provider text NOT NULL DEFAULT '',
  base_url text NOT NULL DEFAULT '',
  auth_type text NOT NULL DEFAULT '',
  vault_secret_name text NOT NULL DEFAULT '',
  configuration jsonb NOT NULL DEFAULT '{}'::jsonb,
  is_active boolean NOT NULL DEFAULT true
);
CREATE TABLE IF NOT EXISTS store_configs (
  location_token text PRIMARY KEY,
  name text NOT NULL DEFAULT '',
  store_id text NOT NULL DEFAULT '',
  timezone text NOT NULL DEFAULT '',
  state text NOT NULL DEFAULT '',
  address text NOT NULL DEFAULT '',
  hours jsonb NOT NULL DEFAULT '{}'::jsonb
);
CREATE TABLE IF NOT EXISTS vault_secrets (
  name text PRIMARY KEY,
  value bytea NOT NULL,
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS sync_runs (
  id uuid PRIMARY KEY,
  tenant_id uuid NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
  idempotency_key text NOT NULL,
  direction text NOT NULL,
  extracted int NOT NULL DEFAULT 0,
  transformed int NOT NULL DEFAULT 0,
  loaded int NOT NULL DEFAULT 0,
  status text NOT NULL,
  detail jsonb NOT NULL DEFAULT '{}'::jsonb,
  started_at timestamptz NOT NULL DEFAULT NOW(),
  finished_at timestamptz
);
CREATE UNIQUE INDEX IF NOT EXISTS sync_runs_tenant_idem_idx ON sync_runs(tenant_id, idempotency_key);
`)
	return err
}

const tenantCols = `id, tenant_name, company_id, base_url, client_id, description, is_active, token_endpoint, api_version, scope, created_at, updated_at`

func scanTenant(row pgx.Row) (Tenant, error) {
	var t Tenant
	err := row.Scan(&t.ID, &t.TenantName, &t.CompanyID, &t.BaseURL, &t.ClientID, &t.Description,
		&t.IsActive, &t.TokenEndpoint, &t.APIVersion, &t.Scope, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (p *pgStore) Create(ctx context.Context, t Tenant) (Tenant, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.IsActive = true
	now := time.Now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	_, err := p.dbPool.Exec(ctx, `INSERT INTO tenants(`+tenantCols+`)
	  VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		t.ID, t.TenantName, t.CompanyID, t.BaseURL, t.ClientID, t.Description,
		t.IsActive, t.TokenEndpoint, t.APIVersion, t.Scope, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return Tenant{}, ErrDuplicate
		}
		return Tenant{}, err
	}
	return t, nil
}

func (p *pgStore) Get(ctx context.Context, id string) (Tenant, error) {
	t, err := scanTenant(p.dbPool.QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrNotFound
		}
		return Tenant{}, err
	}
	return t, nil
}

func (p *pgStore) GetByName(ctx context.Context, name string) (Tenant, error) {
	t, err := scanTenant(p.dbPool.QueryRow(ctx, `SELECT `+tenantCols+` FROM tenants WHERE tenant_name=$1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Tenant{}, ErrNotFound
		}
		return Tenant{}, err
	}
	return t, nil
}

func (p *pgStore) List(ctx context.Context, f ListFilter) ([]Tenant, error) {
	q := `SELECT ` + tenantCols + ` FROM tenants`
	if f.ActiveOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY tenant_name`
	args := []any{}
	if f.Limit > 0 {
		q += ` LIMIT $1 OFFSET $2`
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := p.dbPool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *pgStore) Update(ctx context.Context, t Tenant) (Tenant, error) {
	t.UpdatedAt = time.Now().UTC()
	tag, err := p.dbPool.Exec(ctx, `UPDATE tenants
	  SET tenant_name=$2, company_id=$3, base_url=$4, client_id=$5, description=$6,
	      is_active=$7, token_endpoint=$8, api_version=$9, scope=$10, updated_at=$11
	  WHERE id=$1`,
		t.ID, t.TenantName, t.CompanyID, t.BaseURL, t.ClientID, t.Description,
		t.IsActive, t.TokenEndpoint, t.APIVersion, t.Scope, t.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return Tenant{}, ErrDuplicate
		}
		return Tenant{}, err
	}
	if tag.RowsAffected() == 0 {
		return Tenant{}, ErrNotFound
	}
	return p.Get(ctx, t.ID)
}

func (p *pgStore) Deactivate(ctx context.Context, id string) error {
	tag, err := p.dbPool.Exec(ctx, `UPDATE tenants SET is_active=false, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *pgStore) CreateAPI(ctx context.Context, a ThirdPartyAPI) (ThirdPartyAPI, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.IsActive = true
	cfg, _ := json.Marshal(orEmpty(a.Configuration))
	_, err := p.dbPool.Exec(ctx, `INSERT INTO third_party_apis(id,name,provider,base_url,auth_type,vault_secret_name,configuration,is_active)
	  VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.Name, a.Provider, a.BaseURL, a.AuthType, a.VaultSecretName, cfg, a.IsActive)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return ThirdPartyAPI{}, ErrDuplicate
		}
		return ThirdPartyAPI{}, err
	}
	return a, nil
}

func (p *pgStore) GetAPI(ctx context.Context, id string) (ThirdPartyAPI, error) {
	var a ThirdPartyAPI
	var cfg []byte
	err := p.dbPool.QueryRow(ctx, `SELECT id,name,provider,base_url,auth_type,vault_secret_name,configuration,is_active
	  FROM third_party_apis WHERE id=$1`, id).
		Scan(&a.ID, &a.Name, &a.Provider, &a.BaseURL, &a.AuthType, &a.VaultSecretName, &cfg, &a.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ThirdPartyAPI{}, ErrNotFound
		}
		return ThirdPartyAPI{}, err
	}
	_ = json.Unmarshal(cfg, &a.Configuration)
	return a, nil
}

func (p *pgStore) ListAPIs(ctx context.Context, activeOnly bool) ([]ThirdPartyAPI, error) {
	q := `SELECT id,name,provider,base_url,auth_type,vault_secret_name,configuration,is_active FROM third_party_apis`
	if activeOnly {
		q += ` WHERE is_active`
	}
	q += ` ORDER BY name`
	rows, err := p.dbPool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ThirdPartyAPI
	for rows.Next() {
		var a ThirdPartyAPI
		var cfg []byte
		if err := rows.Scan(&a.ID, &a.Name, &a.Provider, &a.BaseURL, &a.AuthType, &a.VaultSecretName, &cfg, &a.IsActive); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(cfg, &a.Configuration)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *pgStore) UpdateAPI(ctx context.Context, a ThirdPartyAPI) (ThirdPartyAPI, error) {
	cfg, _ := json.Marshal(orEmpty(a.Configuration))
	tag, err := p.dbPool.Exec(ctx, `UPDATE third_party_apis
	  SET name=$2, provider=$3, base_url=$4, auth_type=$5, vault_secret_name=$6, configuration=$7, is_active=$8
	  WHERE id=$1`,
		a.ID, a.Name, a.Provider, a.BaseURL, a.AuthType, a.VaultSecretName, cfg, a.IsActive)
	if err != nil {
		return ThirdPartyAPI{}, err
	}
	if tag.RowsAffected() == 0 {
		return ThirdPartyAPI{}, ErrNotFound
	}
	return p.GetAPI(ctx, a.ID)
}

func (p *pgStore) DeleteAPI(ctx context.Context, id string) error {
	tag, err := p.dbPool.Exec(ctx, `DELETE FROM third_party_apis WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
