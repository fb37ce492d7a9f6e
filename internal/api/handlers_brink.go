package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"possync/internal/brink"
	"possync/internal/storeconfig"
)

// brinkRequest is the shared payload for the PAR Brink routes. The
// location token doubles as the store-config lookup key.
type brinkRequest struct {
	AccessToken   string `json:"accessToken"`
	LocationToken string `json:"locationToken"`
	BusinessDate  string `json:"businessDate,omitempty"`
}

func (b brinkRequest) validate(needDate bool) string {
	if strings.TrimSpace(b.AccessToken) == "" {
		return "accessToken is required"
	}
	if strings.TrimSpace(b.LocationToken) == "" {
		return "locationToken is required"
	}
	if needDate {
		if b.BusinessDate == "" {
			return "businessDate is required"
		}
		if _, err := time.Parse("2006-01-02", b.BusinessDate); err != nil {
			return "businessDate must be YYYY-MM-DD"
		}
	}
	return ""
}

func (b brinkRequest) bind(ctx context.Context) context.Context {
	return brink.WithCredentials(ctx, brink.Credentials{
		AccessToken:   b.AccessToken,
		LocationToken: b.LocationToken,
	})
}

// upstreamErr maps PAR Brink failures (including SOAP faults) to 502 with
// the fault string intact.
func (a *App) upstreamErr(w http.ResponseWriter, err error) {
	errorJSON(w, err.Error(), http.StatusBadGateway)
}

func (a *App) observe(upstream string, start time.Time) {
	a.metrics.upstreams.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
}

func (a *App) postSales(w http.ResponseWriter, r *http.Request) {
	var b brinkRequest
	if !readJSON(w, r, &b) {
		return
	}
	if msg := b.validate(true); msg != "" {
		errorJSON(w, msg, http.StatusBadRequest)
		return
	}
	ctx := b.bind(r.Context())
	start := time.Now()
	orders, err := a.brink.GetOrders(ctx, b.BusinessDate)
	a.observe("brink_sales", start)
	if err != nil {
		a.upstreamErr(w, err)
		return
	}
	var net, tax, total decimal.Decimal
	guests, voided := 0, 0
	for _, o := range orders {
		if o.IsVoided {
			voided++
			continue
		}
		net = net.Add(o.NetSales)
		tax = tax.Add(o.Tax)
		total = total.Add(o.Total)
		guests += o.GuestCount
	}
	writeJSON(w, map[string]any{
		"businessDate": b.BusinessDate,
		"orderCount":   len(orders) - voided,
		"voidedCount":  voided,
		"guestCount":   guests,
		"netSales":     net,
		"tax":          tax,
		"total":        total,
		"orders":       orders,
	}, http.StatusOK)
}

func (a *App) postTills(w http.ResponseWriter, r *http.Request) {
	var b brinkRequest
	if !readJSON(w, r, &b) {
		return
	}
	if msg := b.validate(true); msg != "" {
		errorJSON(w, msg, http.StatusBadRequest)
		return
	}
	ctx := b.bind(r.Context())
	start := time.Now()
	tills, err := a.brink.GetTills(ctx, b.BusinessDate)
	a.observe("brink_tills", start)
	if err != nil {
		a.upstreamErr(w, err)
		return
	}
	var cashTips decimal.Decimal
	for _, t := range tills {
		for _, pio := range t.PaidInOuts {
			if pio.IsPaidOut {
				cashTips = cashTips.Add(pio.Amount)
			}
		}
	}
	writeJSON(w, map[string]any{
		"businessDate": b.BusinessDate,
		"tillCount":    len(tills),
		"cashTips":     cashTips,
		"tills":        tills,
	}, http.StatusOK)
}

// postTips combines order card tips with till cash paid-outs into
// per-employee totals.
func (a *App) postTips(w http.ResponseWriter, r *http.Request) {
	var b brinkRequest
	if !readJSON(w, r, &b) {
		return
	}
	if msg := b.validate(true); msg != "" {
		errorJSON(w, msg, http.StatusBadRequest)
		return
	}
	ctx := b.bind(r.Context())
	start := time.Now()
	orders, err := a.brink.GetOrders(ctx, b.BusinessDate)
	a.observe("brink_sales", start)
	if err != nil {
		a.upstreamErr(w, err)
		return
	}
	start = time.Now()
	tills, err := a.brink.GetTills(ctx, b.BusinessDate)
	a.observe("brink_tills", start)
	if err != nil {
		a.upstreamErr(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"businessDate": b.BusinessDate,
		"tips":         brink.TipTotals(orders, tills),
	}, http.StatusOK)
}

func (a *App) postLaborShifts(w http.ResponseWriter, r *http.Request) {
	var b brinkRequest
	if !readJSON(w, r, &b) {
		return
	}
	if msg := b.validate(true); msg != "" {
		errorJSON(w, msg, http.StatusBadRequest)
		return
	}
	ctx := b.bind(r.Context())
	start := time.Now()
	shifts, err := a.brink.GetShifts(ctx, b.BusinessDate)
	a.observe("brink_labor", start)
	if err != nil {
		a.upstreamErr(w, err)
		return
	}
	var cost, hours decimal.Decimal
	for _, s := range shifts {
		h := brink.MinutesToHours(s.TotalMinutes)
		hours = hours.Add(h)
		cost = cost.Add(h.Mul(s.PayRate))
	}
	writeJSON(w, map[string]any{
		"businessDate": b.BusinessDate,
		"shiftCount":   len(shifts),
		"laborHours":   hours.Round(2),
		"laborCost":    cost.Round(2),
		"shifts":       shifts,
	}, http.StatusOK)
}

func (a *App) postEmployees(w http.ResponseWriter, r *http.Request) {
	var b brinkRequest
	if !readJSON(w, r, &b) {
		return
	}
	if msg := b.validate(false); msg != "" {
		errorJSON(w, msg, http.StatusBadRequest)
		return
	}
	ctx := b.bind(r.Context())
	start := time.Now()
	employees, err := a.brink.GetEmployees(ctx)
	a.observe("brink_settings", start)
	if err != nil {
		a.upstreamErr(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"employeeCount": len(employees),
		"employees":     employees,
	}, http.StatusOK)
}

func (a *App) listStoreConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := a.stores.GetAll(r.Context())
	if err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, configs, http.StatusOK)
}

// importStoreConfig bootstraps a store configuration from PAR Brink
// settings: the location token's own location record supplies name,
// timezone, state and address.
func (a *App) importStoreConfig(w http.ResponseWriter, r *http.Request) {
	var b brinkRequest
	if !readJSON(w, r, &b) {
		return
	}
	if msg := b.validate(false); msg != "" {
		errorJSON(w, msg, http.StatusBadRequest)
		return
	}
	ctx := b.bind(r.Context())
	start := time.Now()
	locations, err := a.brink.GetLocations(ctx)
	a.observe("brink_settings", start)
	if err != nil {
		a.upstreamErr(w, err)
		return
	}
	if len(locations) == 0 {
		errorJSON(w, "no locations returned for token", http.StatusBadGateway)
		return
	}
	loc := locations[0]
	c := storeconfig.StoreConfig{
		Token:    b.LocationToken,
		Name:     loc.Name,
		ID:       loc.ID,
		Timezone: loc.Timezone,
		State:    loc.State,
		Address:  loc.Address,
	}
	if err := a.stores.Upsert(r.Context(), c); err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, c, http.StatusCreated)
}

func (a *App) upsertStoreConfig(w http.ResponseWriter, r *http.Request) {
	var c storeconfig.StoreConfig
	if !readJSON(w, r, &c) {
		return
	}
	if strings.TrimSpace(c.Token) == "" {
		errorJSON(w, "token is required", http.StatusBadRequest)
		return
	}
	if err := a.stores.Upsert(r.Context(), c); err != nil {
		storeErr(w, err)
		return
	}
	writeJSON(w, c, http.StatusOK)
}
