package dashboard

import (
	"fmt"

	"github.com/shopspring/decimal"

	"possync/internal/brink"
)

// Finding is one data-quality observation from the validation pass.
type Finding struct {
	Severity string `json:"severity"` // warn | error
	Code     string `json:"code"`
	Message  string `json:"message"`
}

var (
	laborPercentThreshold = decimal.NewFromInt(40)
	voidRateThreshold     = decimal.NewFromFloat(0.05)
)

// Validate runs the heuristics over the raw records and the aggregated
// summary: open orders, open shifts, void rate, hours with sales but no
// labor, hourly labor percent over threshold.
func Validate(sum Summary, orders []brink.Order, shifts []brink.Shift) []Finding {
	var out []Finding

	openOrders := 0
	for _, o := range orders {
		if !o.IsVoided && o.ClosedTime == "" {
			openOrders++
		}
	}
	if openOrders > 0 {
		out = append(out, Finding{Severity: "warn", Code: "open_orders",
			Message: fmt.Sprintf("%d orders have no closed time; hourly buckets use opened time for them", openOrders)})
	}

	openShifts := 0
	for _, s := range shifts {
		if s.ClockOutTime == "" {
			openShifts++
		}
	}
	if openShifts > 0 {
		out = append(out, Finding{Severity: "warn", Code: "open_shifts",
			Message: fmt.Sprintf("%d shifts have no clock-out; labor cost for them is estimated from recorded minutes", openShifts)})
	}

	total := sum.OrderCount + sum.VoidedCount
	if total > 0 {
		rate := decimal.NewFromInt(int64(sum.VoidedCount)).Div(decimal.NewFromInt(int64(total)))
		if rate.GreaterThan(voidRateThreshold) {
			out = append(out, Finding{Severity: "error", Code: "void_rate",
				Message: fmt.Sprintf("voided orders are %s%% of the day (threshold %s%%)",
					rate.Mul(decimal.NewFromInt(100)).Round(1), voidRateThreshold.Mul(decimal.NewFromInt(100)).Round(0))})
		}
	}

	for _, h := range sum.Hours {
		if h.NetSales.IsPositive() && h.LaborHours.IsZero() {
			out = append(out, Finding{Severity: "warn", Code: "no_labor_hour",
				Message: fmt.Sprintf("hour %02d has sales but no labor recorded", h.Hour)})
		}
		if h.LaborPercent.GreaterThan(laborPercentThreshold) {
			out = append(out, Finding{Severity: "warn", Code: "labor_percent_hour",
				Message: fmt.Sprintf("hour %02d labor is %s%% of sales (threshold %s%%)", h.Hour, h.LaborPercent, laborPercentThreshold)})
		}
	}

	return out
}
