// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Postgres & Redis
	DatabaseURL string
	RedisURL    string

	// Secrets vault
	EncryptionKey string
	VaultCacheTTL time.Duration

	// PAR Brink SOAP endpoints
	BrinkSalesURL    string
	BrinkLaborURL    string
	BrinkSettingsURL string

	// UKG Ready defaults (tenant rows override per integration)
	UKGTokenEndpoint string
	UKGBaseURL       string
	UKGBatchSize     int
	UKGBatchDelay    time.Duration

	// OpenWeatherMap
	OpenWeatherAPIKey string

	// Admin bearer validation (dev passthrough when unset)
	AdminOIDCIssuer   string
	AdminOIDCAudience string
	AdminJWKSURL      string

	// Store configuration cache
	StoreConfigCachePath string
	StoreConfigTTL       time.Duration
	StoreConfigSeedDir   string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:                  env("POSSYNC_ENV", "dev"),
		HTTPAddr:             env("POSSYNC_HTTP_ADDR", ":8080"),
		DatabaseURL:          env("DATABASE_URL", ""),
		RedisURL:             env("REDIS_URL", ""),
		EncryptionKey:        env("ENCRYPTION_KEY", ""),
		VaultCacheTTL:        envDur("VAULT_CACHE_TTL_SEC", 300) * time.Second,
		BrinkSalesURL:        env("PAR_BRINK_SALES_URL", ""),
		BrinkLaborURL:        env("PAR_BRINK_LABOR_URL", ""),
		BrinkSettingsURL:     env("PAR_BRINK_SETTINGS_URL", ""),
		UKGTokenEndpoint:     env("UKG_TOKEN_ENDPOINT", ""),
		UKGBaseURL:           env("UKG_BASE_URL", ""),
		UKGBatchSize:         envInt("UKG_BATCH_SIZE", 50),
		UKGBatchDelay:        envDur("UKG_BATCH_DELAY_MS", 500) * time.Millisecond,
		OpenWeatherAPIKey:    env("OPENWEATHER_API_KEY", ""),
		AdminOIDCIssuer:      env("ADMIN_OIDC_ISSUER", ""),
		AdminOIDCAudience:    env("ADMIN_OIDC_AUDIENCE", "possync-admin"),
		AdminJWKSURL:         env("ADMIN_JWKS_URL", ""),
		StoreConfigCachePath: env("STORE_CONFIG_CACHE_PATH", "store-config-cache.json"),
		StoreConfigTTL:       envDur("STORE_CONFIG_TTL_SEC", 900) * time.Second,
		StoreConfigSeedDir:   env("STORE_CONFIG_SEED_DIR", ""),
	}
	if cfg.DatabaseURL == "" {
		log.Println("[WARN] DATABASE_URL not set; using in-memory stores for dev")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}
