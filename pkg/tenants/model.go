package tenants

import "time"

// Tenant is one customer organization's integration configuration.
// The OAuth client secret is never stored on this row; it lives in the
// vault keyed by tenant id.
type Tenant struct {
	ID            string    `json:"id"` // uuid
	TenantName    string    `json:"tenantName"`
	CompanyID     string    `json:"companyId"`
	BaseURL       string    `json:"baseUrl"`
	ClientID      string    `json:"clientId"`
	Description   string    `json:"description,omitempty"`
	IsActive      bool      `json:"isActive"`
	TokenEndpoint string    `json:"tokenEndpoint,omitempty"`
	APIVersion    string    `json:"apiVersion,omitempty"`
	Scope         string    `json:"scope,omitempty"`
	CreatedAt     time.Time `json:"createdAt,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

// ThirdPartyAPI is a registry entry for an external API endpoint
// (e.g. the PAR Brink entry). Configuration is a free-form JSON blob.
type ThirdPartyAPI struct {
	ID              string         `json:"id"` // uuid
	Name            string         `json:"name"`
	Provider        string         `json:"provider"`
	BaseURL         string         `json:"baseUrl"`
	AuthType        string         `json:"authType"`
	VaultSecretName string         `json:"vaultSecretName,omitempty"`
	Configuration   map[string]any `json:"configuration,omitempty"`
	IsActive        bool           `json:"isActive"`
}
