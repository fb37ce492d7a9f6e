package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"possync/internal/brink"
	"possync/internal/etl"
	"possync/internal/storeconfig"
	"possync/internal/ukg"
	"possync/pkg/config"
	"possync/pkg/tenants"
	"possync/pkg/vault"
)

type fakeBrink struct {
	orders    []brink.Order
	tills     []brink.Till
	shifts    []brink.Shift
	employees []brink.Employee
	locations []brink.Location
	err       error
}

func (f *fakeBrink) GetOrders(context.Context, string) ([]brink.Order, error) {
	return f.orders, f.err
}
func (f *fakeBrink) GetTills(context.Context, string) ([]brink.Till, error) {
	return f.tills, f.err
}
func (f *fakeBrink) GetShifts(context.Context, string) ([]brink.Shift, error) {
	return f.shifts, f.err
}
func (f *fakeBrink) GetEmployees(context.Context) ([]brink.Employee, error) {
	return f.employees, f.err
}
func (f *fakeBrink) GetLocations(context.Context) ([]brink.Location, error) {
	return f.locations, f.err
}

type fakeUKG struct {
	pings   int
	upserts int
	result  ukg.BatchResult
	err     error
}

func (f *fakeUKG) Ping(context.Context, ukg.Credentials) error {
	f.pings++
	return f.err
}

func (f *fakeUKG) UpsertEmployees(_ context.Context, _ ukg.Credentials, records []map[string]any) (ukg.BatchResult, error) {
	f.upserts++
	if f.err != nil {
		return ukg.BatchResult{}, f.err
	}
	if f.result.Batches == 0 {
		return ukg.BatchResult{Batches: 1, Sent: len(records)}, nil
	}
	return f.result, f.err
}

type testEnv struct {
	app     *App
	brink   *fakeBrink
	ukg     *fakeUKG
	secrets vault.Store
	tenants tenants.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop().Sugar()
	mem := tenants.NewMemoryStore()
	secrets := vault.NewMemoryVault()
	fb := &fakeBrink{}
	fu := &fakeUKG{}
	etlSvc := etl.NewService(fb, fu, etl.NewMemoryRunStore(), log)
	stores := storeconfig.NewService(
		storeconfig.NewMemorySource(storeconfig.StoreConfig{
			Token: "LOC-1", Name: "Test Store", Timezone: "UTC", Address: "1 Test Way",
		}),
		"", time.Minute, log)

	app := New(Deps{
		Log:     log,
		Cfg:     config.Config{Env: "test"},
		Tenants: mem,
		APIs:    mem,
		Secrets: secrets,
		Brink:   fb,
		UKG:     fu,
		ETL:     etlSvc,
		Stores:  stores,
	})
	return &testEnv{app: app, brink: fb, ukg: fu, secrets: secrets, tenants: mem}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.app.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (e *testEnv) createTenant(t *testing.T, name string, extra map[string]any) map[string]any {
	t.Helper()
	body := map[string]any{"tenantName": name, "companyId": "c-1", "clientId": "cl-1"}
	for k, v := range extra {
		body[k] = v
	}
	rec := e.do(t, http.MethodPost, "/api/tenants", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]any](t, rec)
}

func TestTenantLifecycle(t *testing.T) {
	e := newTestEnv(t)

	created := e.createTenant(t, "acme", map[string]any{"clientSecret": "s3cret"})
	id := created["id"].(string)
	assert.Equal(t, true, created["isActive"])
	_, hasSecret := created["clientSecret"]
	assert.False(t, hasSecret, "secret must not echo back")

	// secret landed in the vault under the tenant key
	got, err := e.secrets.Get(context.Background(), vault.TenantSecretName(id))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)

	rec := e.do(t, http.MethodGet, "/api/tenants/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPut, "/api/tenants/"+id,
		map[string]any{"tenantName": "acme", "companyId": "c-2", "clientId": "cl-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c-2", decode[map[string]any](t, rec)["companyId"])

	rec = e.do(t, http.MethodDelete, "/api/tenants/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tn, err := e.tenants.Get(context.Background(), id)
	require.NoError(t, err)
	assert.False(t, tn.IsActive)
}

func TestTenantValidationAndErrors(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/tenants", map[string]any{"companyId": "c-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	e.createTenant(t, "acme", nil)
	rec = e.do(t, http.MethodPost, "/api/tenants", map[string]any{"tenantName": "acme", "companyId": "c-1", "clientId": "cl-1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/tenants/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/tenants/00000000-0000-0000-0000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTenantsV2Paging(t *testing.T) {
	e := newTestEnv(t)
	for i := 0; i < 5; i++ {
		e.createTenant(t, fmt.Sprintf("tenant-%d", i), nil)
	}

	rec := e.do(t, http.MethodGet, "/api/v2/tenants?limit=2&offset=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[map[string]any](t, rec)
	assert.Equal(t, float64(2), page["limit"])
	assert.Equal(t, float64(1), page["offset"])
	assert.Equal(t, float64(2), page["count"])
	items := page["items"].([]any)
	assert.Equal(t, "tenant-1", items[0].(map[string]any)["tenantName"])
}

type failingVault struct{ vault.Store }

func (failingVault) Set(context.Context, string, string) error {
	return fmt.Errorf("vault unavailable")
}

func TestTenantUpdateSurfacesVaultFailure(t *testing.T) {
	e := newTestEnv(t)
	created := e.createTenant(t, "acme", nil)
	id := created["id"].(string)

	e.app.secrets = failingVault{e.secrets}
	rec := e.do(t, http.MethodPut, "/api/tenants/"+id,
		map[string]any{"tenantName": "acme", "companyId": "c-1", "clientId": "cl-1", "clientSecret": "top"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "secret storage failed")
}

func TestCredentialsRoutes(t *testing.T) {
	e := newTestEnv(t)
	created := e.createTenant(t, "acme", nil)
	id := created["id"].(string)

	rec := e.do(t, http.MethodGet, "/api/tenants/"+id+"/credentials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["hasSecret"])

	rec = e.do(t, http.MethodPut, "/api/tenants/"+id+"/credentials", map[string]any{"clientSecret": "top"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/tenants/"+id+"/credentials", nil)
	assert.Equal(t, true, decode[map[string]any](t, rec)["hasSecret"])
	assert.NotContains(t, rec.Body.String(), "top", "secret value must never be returned")

	rec = e.do(t, http.MethodPut, "/api/tenants/"+id+"/credentials", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/tenants/"+id+"/credentials", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodGet, "/api/tenants/"+id+"/credentials", nil)
	assert.Equal(t, false, decode[map[string]any](t, rec)["hasSecret"])
}

func TestThirdPartyAPICRUD(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/third-party-apis",
		map[string]any{"name": "openweather", "baseUrl": "https://api.openweathermap.org"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	id := created["id"].(string)

	rec = e.do(t, http.MethodPost, "/api/third-party-apis", map[string]any{"name": "no-url"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/third-party-apis", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPut, "/api/third-party-apis/"+id,
		map[string]any{"name": "openweather", "baseUrl": "https://api.openweathermap.org/v3"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/third-party-apis/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = e.do(t, http.MethodGet, "/api/third-party-apis/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostSales(t *testing.T) {
	e := newTestEnv(t)
	e.brink.orders = []brink.Order{
		{ID: "o-1", NetSales: decimal.RequireFromString("20.00"), Tax: decimal.RequireFromString("1.60"), Total: decimal.RequireFromString("21.60"), GuestCount: 2},
		{ID: "o-2", NetSales: decimal.RequireFromString("99.00"), IsVoided: true},
	}

	rec := e.do(t, http.MethodPost, "/api/par-brink/sales",
		map[string]any{"accessToken": "at", "locationToken": "LOC-1", "businessDate": "2024-06-01"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, float64(1), body["orderCount"])
	assert.Equal(t, float64(1), body["voidedCount"])
	assert.Equal(t, "20", body["netSales"])
}

func TestPostSalesValidation(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/par-brink/sales", map[string]any{"locationToken": "LOC-1", "businessDate": "2024-06-01"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/par-brink/sales",
		map[string]any{"accessToken": "at", "locationToken": "LOC-1", "businessDate": "06/01/2024"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostSalesUpstreamFault(t *testing.T) {
	e := newTestEnv(t)
	e.brink.err = fmt.Errorf("soap fault s:Server: location offline")

	rec := e.do(t, http.MethodPost, "/api/par-brink/sales",
		map[string]any{"accessToken": "at", "locationToken": "LOC-1", "businessDate": "2024-06-01"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "location offline")
}

func TestPostTips(t *testing.T) {
	e := newTestEnv(t)
	e.brink.orders = []brink.Order{
		{ID: "o-1", EmployeeID: "e-1", Payments: []brink.Payment{{TipAmount: decimal.RequireFromString("4.00")}}},
	}
	e.brink.tills = []brink.Till{
		{PaidInOuts: []brink.PaidInOut{{EmployeeID: "e-1", IsPaidOut: true, Amount: decimal.RequireFromString("6.00")}}},
	}

	rec := e.do(t, http.MethodPost, "/api/par-brink/tips",
		map[string]any{"accessToken": "at", "locationToken": "LOC-1", "businessDate": "2024-06-01"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	tips := body["tips"].([]any)
	require.Len(t, tips, 1)
	assert.Equal(t, "10", tips[0].(map[string]any)["total"])
}

func TestPostTipsObservesBothUpstreams(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/par-brink/tips",
		map[string]any{"accessToken": "at", "locationToken": "LOC-1", "businessDate": "2024-06-01"})
	require.Equal(t, http.StatusOK, rec.Code)

	seen := map[string]bool{}
	families, err := e.app.metrics.registry.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != "possync_upstream_seconds" {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "upstream" {
					seen[l.GetValue()] = true
				}
			}
		}
	}
	assert.True(t, seen["brink_sales"])
	assert.True(t, seen["brink_tills"])
}

func TestPostLaborShifts(t *testing.T) {
	e := newTestEnv(t)
	e.brink.shifts = []brink.Shift{
		{ID: "s-1", TotalMinutes: 450, PayRate: decimal.RequireFromString("10.00")},
	}

	rec := e.do(t, http.MethodPost, "/api/par-brink/labor-shifts",
		map[string]any{"accessToken": "at", "locationToken": "LOC-1", "businessDate": "2024-06-01"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "7.5", body["laborHours"])
	assert.Equal(t, "75", body["laborCost"])
}

func TestPostEmployeesNoDateRequired(t *testing.T) {
	e := newTestEnv(t)
	e.brink.employees = []brink.Employee{{ID: "e-1", FirstName: "Ana", LastName: "Diaz"}}

	rec := e.do(t, http.MethodPost, "/api/par-brink/employees",
		map[string]any{"accessToken": "at", "locationToken": "LOC-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, rec)["employeeCount"])
}

func TestPostDashboard(t *testing.T) {
	e := newTestEnv(t)
	e.brink.orders = []brink.Order{
		{ID: "o-1", ClosedTime: "2024-06-01T11:30:00", NetSales: decimal.RequireFromString("100.00"), GuestCount: 3},
	}
	e.brink.shifts = []brink.Shift{
		{ID: "s-1", ClockInTime: "2024-06-01T11:00:00", ClockOutTime: "2024-06-01T12:00:00", PayRate: decimal.RequireFromString("20.00")},
	}

	rec := e.do(t, http.MethodPost, "/api/par-brink/dashboard",
		map[string]any{"accessToken": "at", "locationToken": "LOC-1", "businessDate": "2024-06-01"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "Test Store", body["store"])
	sum := body["summary"].(map[string]any)
	assert.Equal(t, "100", sum["netSales"])
	assert.Equal(t, "20", sum["laborPercent"])
}

func TestStoreConfigRoutes(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/par-brink/configurations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	configs := decode[[]map[string]any](t, rec)
	require.Len(t, configs, 1)
	assert.Equal(t, "LOC-1", configs[0]["token"])

	rec = e.do(t, http.MethodPost, "/api/par-brink/configurations",
		map[string]any{"token": "LOC-2", "name": "Second Store", "timezone": "America/Denver"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/api/par-brink/configurations", map[string]any{"name": "missing token"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/par-brink/configurations", nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)
}

func TestImportStoreConfig(t *testing.T) {
	e := newTestEnv(t)
	e.brink.locations = []brink.Location{
		{ID: "st-9", Name: "Imported Store", Timezone: "America/Chicago", State: "TX", Address: "9 Main St"},
	}

	rec := e.do(t, http.MethodPost, "/api/par-brink/configurations/import",
		map[string]any{"accessToken": "at", "locationToken": "LOC-9"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "LOC-9", body["token"])
	assert.Equal(t, "Imported Store", body["name"])
	assert.Equal(t, "America/Chicago", body["timezone"])

	cfg, err := e.app.stores.GetByToken(context.Background(), "LOC-9")
	require.NoError(t, err)
	assert.Equal(t, "Imported Store", cfg.Name)
}

func TestImportStoreConfigNoLocations(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/par-brink/configurations/import",
		map[string]any{"accessToken": "at", "locationToken": "LOC-9"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestPostETLDryRun(t *testing.T) {
	e := newTestEnv(t)
	created := e.createTenant(t, "acme", nil)
	id := created["id"].(string)
	e.brink.employees = []brink.Employee{
		{ID: "e-1", PayrollID: "PR-1", FirstName: "Ana", LastName: "Diaz", IsActive: true},
	}

	rec := e.do(t, http.MethodPost, "/api/etl/par-brink-to-ukg",
		map[string]any{"tenantId": id, "accessToken": "at", "locationToken": "LOC-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "DRY_RUN", body["status"])
	records := body["records"].([]any)
	require.Len(t, records, 1)
	assert.Equal(t, "PR-1", records[0].(map[string]any)["employee_id"])
	assert.Equal(t, 0, e.ukg.upserts)
}

func TestPostETLLoadAndReplay(t *testing.T) {
	e := newTestEnv(t)
	created := e.createTenant(t, "acme", map[string]any{"clientSecret": "s3cret"})
	id := created["id"].(string)
	e.brink.employees = []brink.Employee{
		{ID: "e-1", PayrollID: "PR-1", FirstName: "Ana", LastName: "Diaz", IsActive: true},
	}

	payload := map[string]any{
		"tenantId": id, "accessToken": "at", "locationToken": "LOC-1",
		"load": true, "idempotencyKey": "k-1",
	}
	rec := e.do(t, http.MethodPost, "/api/etl/par-brink-to-ukg", payload)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "SUCCEEDED", decode[map[string]any](t, rec)["status"])
	assert.Equal(t, 1, e.ukg.upserts)

	rec = e.do(t, http.MethodPost, "/api/etl/par-brink-to-ukg", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["replayed"])
	assert.Equal(t, 1, e.ukg.upserts)
}

func TestPostETLLoadRequirements(t *testing.T) {
	e := newTestEnv(t)
	created := e.createTenant(t, "acme", nil)
	id := created["id"].(string)

	// load without idempotency key
	rec := e.do(t, http.MethodPost, "/api/etl/par-brink-to-ukg",
		map[string]any{"tenantId": id, "accessToken": "at", "locationToken": "LOC-1", "load": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// load without a stored secret
	rec = e.do(t, http.MethodPost, "/api/etl/par-brink-to-ukg",
		map[string]any{"tenantId": id, "accessToken": "at", "locationToken": "LOC-1", "load": true, "idempotencyKey": "k-1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// inactive tenant
	require.NoError(t, e.tenants.Deactivate(context.Background(), id))
	rec = e.do(t, http.MethodPost, "/api/etl/par-brink-to-ukg",
		map[string]any{"tenantId": id, "accessToken": "at", "locationToken": "LOC-1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPostUKGReadyPing(t *testing.T) {
	e := newTestEnv(t)
	created := e.createTenant(t, "acme", map[string]any{"clientSecret": "s3cret"})
	id := created["id"].(string)

	rec := e.do(t, http.MethodPost, "/api/ukg-ready", map[string]any{"tenantId": id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode[map[string]any](t, rec)["connected"])
	assert.Equal(t, 1, e.ukg.pings)
}

func TestPostUKGReadyPush(t *testing.T) {
	e := newTestEnv(t)
	created := e.createTenant(t, "acme", map[string]any{"clientSecret": "s3cret"})
	id := created["id"].(string)

	rec := e.do(t, http.MethodPost, "/api/ukg-ready", map[string]any{
		"tenantId":  id,
		"employees": []map[string]any{{"employee_id": "PR-1"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, e.ukg.upserts)
}

func TestPostUKGReadyMissingSecret(t *testing.T) {
	e := newTestEnv(t)
	created := e.createTenant(t, "acme", nil)
	id := created["id"].(string)

	rec := e.do(t, http.MethodPost, "/api/ukg-ready", map[string]any{"tenantId": id})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "memory", body["database"])
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodGet, "/api/health", nil)

	rec := e.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "possync_http_requests_total")
}
