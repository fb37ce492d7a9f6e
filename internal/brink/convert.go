package brink

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

var sixty = decimal.NewFromInt(60)

// MinutesToHours converts POS shift minutes to fractional hours rounded to
// two places (payroll convention).
func MinutesToHours(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(sixty).Round(2)
}

// CentsToDollars converts an integer cents amount to dollars.
func CentsToDollars(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Shift(-2)
}

// DollarsToCents converts a dollar amount to integer cents, rounding half up.
func DollarsToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// ParseTime parses a POS timestamp in the store's timezone. Brink omits
// zone offsets; the location configuration supplies the zone.
func ParseTime(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04:05", value, loc)
}

// TipTotal is a per-employee tip summary for one business date.
type TipTotal struct {
	EmployeeID string          `json:"employeeId"`
	CardTips   decimal.Decimal `json:"cardTips"`
	CashTips   decimal.Decimal `json:"cashTips"`
	Total      decimal.Decimal `json:"total"`
}

// TipTotals folds card tips from order payments and cash tips from till
// paid-out entries into per-employee totals. Voided orders are skipped.
func TipTotals(orders []Order, tills []Till) []TipTotal {
	byEmployee := map[string]*TipTotal{}
	get := func(id string) *TipTotal {
		if t, ok := byEmployee[id]; ok {
			return t
		}
		t := &TipTotal{EmployeeID: id}
		byEmployee[id] = t
		return t
	}
	for _, o := range orders {
		if o.IsVoided || o.EmployeeID == "" {
			continue
		}
		for _, p := range o.Payments {
			if p.TipAmount.IsZero() {
				continue
			}
			t := get(o.EmployeeID)
			t.CardTips = t.CardTips.Add(p.TipAmount)
		}
	}
	for _, till := range tills {
		for _, pio := range till.PaidInOuts {
			if !pio.IsPaidOut || pio.EmployeeID == "" {
				continue
			}
			t := get(pio.EmployeeID)
			t.CashTips = t.CashTips.Add(pio.Amount)
		}
	}
	out := make([]TipTotal, 0, len(byEmployee))
	for _, t := range byEmployee {
		t.Total = t.CardTips.Add(t.CashTips)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out
}
