// Package vault is a thin secret store with at-rest encryption and an
// in-process TTL cache. Tenant client secrets are keyed by tenant id.
package vault

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("secret not found")

// Store gets, sets and deletes named secrets.
type Store interface {
	Get(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
}

// TenantSecretName returns the vault key for a tenant's client secret.
func TenantSecretName(tenantID string) string { return "tenant-" + tenantID + "-client-secret" }
