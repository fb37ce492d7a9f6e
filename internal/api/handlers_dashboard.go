package api

import (
	"net/http"
	"time"

	"possync/internal/dashboard"
)

// postDashboard pulls a day of sales and labor from PAR Brink and returns
// the hourly breakdown with validation findings. Hours are bucketed in the
// store's local timezone from the configuration matching the location
// token; unknown tokens fall back to UTC.
func (a *App) postDashboard(w http.ResponseWriter, r *http.Request) {
	var b brinkRequest
	if !readJSON(w, r, &b) {
		return
	}
	if msg := b.validate(true); msg != "" {
		errorJSON(w, msg, http.StatusBadRequest)
		return
	}
	ctx := b.bind(r.Context())

	loc := time.UTC
	var storeName, storeAddress string
	if cfg, err := a.stores.GetByToken(ctx, b.LocationToken); err == nil {
		loc = cfg.Location()
		storeName = cfg.Name
		storeAddress = cfg.Address
	} else {
		a.log.Warnw("store config not found, using UTC", "token", b.LocationToken)
	}

	start := time.Now()
	orders, err := a.brink.GetOrders(ctx, b.BusinessDate)
	a.observe("brink_sales", start)
	if err != nil {
		a.upstreamErr(w, err)
		return
	}
	start = time.Now()
	shifts, err := a.brink.GetShifts(ctx, b.BusinessDate)
	a.observe("brink_labor", start)
	if err != nil {
		a.upstreamErr(w, err)
		return
	}

	sum := dashboard.Aggregate(b.BusinessDate, orders, shifts, loc)
	sum.Findings = dashboard.Validate(sum, orders, shifts)

	resp := map[string]any{
		"store":   storeName,
		"summary": sum,
	}
	if a.weather != nil && a.weather.Enabled() && storeAddress != "" {
		start = time.Now()
		snap, werr := a.weather.ForAddress(ctx, storeAddress)
		a.observe("openweather", start)
		if werr != nil {
			a.log.Warnw("weather lookup failed", "err", werr)
		} else {
			resp["weather"] = snap
		}
	}
	writeJSON(w, resp, http.StatusOK)
}
