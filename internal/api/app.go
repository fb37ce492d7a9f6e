package api

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"possync/internal/brink"
	"possync/internal/etl"
	"possync/internal/storeconfig"
	"possync/internal/ukg"
	"possync/internal/weather"
	"possync/pkg/config"
	"possync/pkg/tenants"
	"possync/pkg/vault"
)

// BrinkAPI is the slice of the PAR Brink client the handlers use.
// Credentials are bound to ctx via brink.WithCredentials.
type BrinkAPI interface {
	GetOrders(ctx context.Context, businessDate string) ([]brink.Order, error)
	GetTills(ctx context.Context, businessDate string) ([]brink.Till, error)
	GetShifts(ctx context.Context, businessDate string) ([]brink.Shift, error)
	GetEmployees(ctx context.Context) ([]brink.Employee, error)
	GetLocations(ctx context.Context) ([]brink.Location, error)
}

// UKGAPI is the slice of the UKG Ready client the handlers use.
type UKGAPI interface {
	Ping(ctx context.Context, creds ukg.Credentials) error
	UpsertEmployees(ctx context.Context, creds ukg.Credentials, records []map[string]any) (ukg.BatchResult, error)
}

// App is the HTTP application container: shared deps and config only.
// Request-scoped work uses context.
type App struct {
	log     *zap.SugaredLogger
	cfg     config.Config
	db      *pgxpool.Pool
	tenants tenants.Store
	apis    tenants.APIStore
	secrets vault.Store
	brink   BrinkAPI
	ukg     UKGAPI
	etl     *etl.Service
	stores  *storeconfig.Service
	weather *weather.Client
	metrics *metrics
}

// Deps carries everything New needs; db may be nil when running on
// in-memory stores.
type Deps struct {
	Log     *zap.SugaredLogger
	Cfg     config.Config
	DB      *pgxpool.Pool
	Tenants tenants.Store
	APIs    tenants.APIStore
	Secrets vault.Store
	Brink   BrinkAPI
	UKG     UKGAPI
	ETL     *etl.Service
	Stores  *storeconfig.Service
	Weather *weather.Client
}

func New(d Deps) *App {
	return &App{
		log:     d.Log,
		cfg:     d.Cfg,
		db:      d.DB,
		tenants: d.Tenants,
		apis:    d.APIs,
		secrets: d.Secrets,
		brink:   d.Brink,
		ukg:     d.UKG,
		etl:     d.ETL,
		stores:  d.Stores,
		weather: d.Weather,
		metrics: newMetrics(),
	}
}
