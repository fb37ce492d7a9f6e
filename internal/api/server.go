package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"possync/pkg/middleware"
)

// Handler builds the HTTP handler with routes and middleware.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(a.log))
	r.Use(middleware.Tracing(a.cfg))
	r.Use(a.metrics.middleware)

	allowed := []string{"*"}
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		parts := strings.Split(v, ",")
		tmp := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				tmp = append(tmp, s)
			}
		}
		if len(tmp) > 0 {
			allowed = tmp
		}
	}
	r.Use(middleware.CORS(allowed))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	r.Get("/metrics", a.metrics.handler().ServeHTTP)

	r.Route("/api", func(ar chi.Router) {
		ar.Get("/health", a.getHealth)

		// Tenant/API configuration CRUD sits behind admin bearer auth.
		ar.Group(func(admin chi.Router) {
			admin.Use(middleware.AdminAuth(a.cfg))
			admin.Get("/tenants", a.listTenants)
			admin.Post("/tenants", a.createTenant)
			admin.Get("/tenants/{id}", a.getTenant)
			admin.Put("/tenants/{id}", a.updateTenant)
			admin.Delete("/tenants/{id}", a.deleteTenant)
			admin.Get("/v2/tenants", a.listTenantsV2)
			admin.Get("/tenants/{id}/credentials", a.getTenantCredentials)
			admin.Put("/tenants/{id}/credentials", a.putTenantCredentials)
			admin.Delete("/tenants/{id}/credentials", a.deleteTenantCredentials)
			admin.Get("/third-party-apis", a.listThirdPartyAPIs)
			admin.Post("/third-party-apis", a.createThirdPartyAPI)
			admin.Get("/third-party-apis/{id}", a.getThirdPartyAPI)
			admin.Put("/third-party-apis/{id}", a.updateThirdPartyAPI)
			admin.Delete("/third-party-apis/{id}", a.deleteThirdPartyAPI)
		})

		ar.Route("/par-brink", func(pr chi.Router) {
			pr.Post("/sales", a.postSales)
			pr.Post("/tips", a.postTips)
			pr.Post("/tills", a.postTills)
			pr.Post("/labor-shifts", a.postLaborShifts)
			pr.Post("/employees", a.postEmployees)
			pr.Post("/dashboard", a.postDashboard)
			pr.Get("/configurations", a.listStoreConfigs)
			pr.Post("/configurations", a.upsertStoreConfig)
			pr.Put("/configurations", a.upsertStoreConfig)
			pr.Post("/configurations/import", a.importStoreConfig)
		})

		ar.Post("/ukg-ready", a.postUKGReady)
		ar.Post("/etl/par-brink-to-ukg", a.postETLBrinkToUKG)
	})

	return r
}
