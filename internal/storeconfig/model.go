// Package storeconfig serves per-location configuration through a
// read-through JSON-file cache in front of the store_configs table.
package storeconfig

// StoreConfig is static, slow-changing reference data for one restaurant
// location. Token is the opaque per-location credential PAR Brink issues.
type StoreConfig struct {
	Token    string            `json:"token" yaml:"token"`
	Name     string            `json:"name" yaml:"name"`
	ID       string            `json:"id" yaml:"id"`
	Timezone string            `json:"timezone" yaml:"timezone"`
	State    string            `json:"state" yaml:"state"`
	Address  string            `json:"address" yaml:"address"`
	Hours    map[string]string `json:"hours,omitempty" yaml:"hours,omitempty"`
}
