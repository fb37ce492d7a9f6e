// cmd/api-service/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"possync/internal/api"
	"possync/internal/brink"
	"possync/internal/etl"
	"possync/internal/storeconfig"
	"possync/internal/ukg"
	"possync/internal/weather"
	"possync/pkg/config"
	"possync/pkg/db"
	"possync/pkg/logger"
	"possync/pkg/tenants"
	"possync/pkg/vault"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	pool := db.MustConnect(cfg, log)
	rdb := db.MustRedis(cfg, log)

	cipher := vault.NewCipher(cfg.EncryptionKey)

	var (
		tenantStore tenants.Store
		apiStore    tenants.APIStore
		secretStore vault.Store
		runStore    etl.RunStore
		storeSource storeconfig.Source
	)
	if pool != nil {
		if err := tenants.EnsureSchema(context.Background(), pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
		pg := tenants.NewPostgresStore(pool, log)
		tenantStore, apiStore = pg, pg
		secretStore = vault.NewPostgresVault(pool, cipher, log)
		runStore = etl.NewPostgresRunStore(pool)
		storeSource = storeconfig.NewPostgresSource(pool)
	} else {
		mem := tenants.NewMemoryStore()
		tenantStore, apiStore = mem, mem
		secretStore = vault.NewMemoryVault()
		runStore = etl.NewMemoryRunStore()
		storeSource = storeconfig.NewMemorySource()
	}
	secrets := vault.NewCached(secretStore, cfg.VaultCacheTTL, cipher, rdb)

	if cfg.StoreConfigSeedDir != "" {
		if err := storeconfig.ImportSeedDir(context.Background(), storeSource, log, cfg.StoreConfigSeedDir); err != nil {
			log.Warnw("store config seed", "err", err)
		}
	}
	stores := storeconfig.NewService(storeSource, cfg.StoreConfigCachePath, cfg.StoreConfigTTL, log)

	brinkClient := brink.NewClient(cfg.BrinkSalesURL, cfg.BrinkLaborURL, cfg.BrinkSettingsURL, log)
	ukgClient := ukg.NewClient(cfg.UKGBatchSize, cfg.UKGBatchDelay, log)
	etlService := etl.NewService(brinkClient, ukgClient, runStore, log)

	app := api.New(api.Deps{
		Log:     log,
		Cfg:     cfg,
		DB:      pool,
		Tenants: tenantStore,
		APIs:    apiStore,
		Secrets: secrets,
		Brink:   brinkClient,
		UKG:     ukgClient,
		ETL:     etlService,
		Stores:  stores,
		Weather: weather.NewClient(cfg.OpenWeatherAPIKey, log),
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: app.Handler()}
	go func() {
		log.Infow("api-service listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	fmt.Println("api-service stopped")
}
