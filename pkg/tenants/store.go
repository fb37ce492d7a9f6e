package tenants

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("tenant not found")
	ErrDuplicate = errors.New("tenant already exists")
)

// ListFilter narrows List results. Zero value returns every tenant.
type ListFilter struct {
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Store is the tenant configuration data-access layer. Postgres in
// production; memory for dev and tests.
type Store interface {
	Create(ctx context.Context, t Tenant) (Tenant, error)
	Get(ctx context.Context, id string) (Tenant, error)
	GetByName(ctx context.Context, name string) (Tenant, error)
	List(ctx context.Context, f ListFilter) ([]Tenant, error)
	Update(ctx context.Context, t Tenant) (Tenant, error)
	// Deactivate soft-deletes by clearing is_active.
	Deactivate(ctx context.Context, id string) error
}

// APIStore is the registry of external API endpoints.
type APIStore interface {
	CreateAPI(ctx context.Context, a ThirdPartyAPI) (ThirdPartyAPI, error)
	GetAPI(ctx context.Context, id string) (ThirdPartyAPI, error)
	ListAPIs(ctx context.Context, activeOnly bool) ([]ThirdPartyAPI, error)
	UpdateAPI(ctx context.Context, a ThirdPartyAPI) (ThirdPartyAPI, error)
	DeleteAPI(ctx context.Context, id string) error
}
