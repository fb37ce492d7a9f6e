// Package dashboard folds one business date of orders and shifts into
// hourly sales/labor buckets for the operations dashboard.
package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"possync/internal/brink"
)

var hundred = decimal.NewFromInt(100)

// HourBucket is one hour of the business day. The business date may extend
// past midnight local time, so Hour is the local clock hour the activity
// landed in, not an offset from opening.
type HourBucket struct {
	Hour         int             `json:"hour"`
	OrderCount   int             `json:"orderCount"`
	GuestCount   int             `json:"guestCount"`
	NetSales     decimal.Decimal `json:"netSales"`
	LaborHours   decimal.Decimal `json:"laborHours"`
	LaborCost    decimal.Decimal `json:"laborCost"`
	LaborPercent decimal.Decimal `json:"laborPercent"`
}

type Summary struct {
	BusinessDate string          `json:"businessDate"`
	Hours        []HourBucket    `json:"hours"`
	OrderCount   int             `json:"orderCount"`
	VoidedCount  int             `json:"voidedCount"`
	GuestCount   int             `json:"guestCount"`
	NetSales     decimal.Decimal `json:"netSales"`
	LaborHours   decimal.Decimal `json:"laborHours"`
	LaborCost    decimal.Decimal `json:"laborCost"`
	LaborPercent decimal.Decimal `json:"laborPercent"`
	Findings     []Finding       `json:"findings,omitempty"`
}

// Aggregate buckets orders and shifts by local clock hour and computes
// per-hour and whole-day labor percentages. Voided orders are counted but
// excluded from sales.
func Aggregate(businessDate string, orders []brink.Order, shifts []brink.Shift, loc *time.Location) Summary {
	if loc == nil {
		loc = time.UTC
	}
	buckets := map[int]*HourBucket{}
	get := func(hour int) *HourBucket {
		if b, ok := buckets[hour]; ok {
			return b
		}
		b := &HourBucket{Hour: hour}
		buckets[hour] = b
		return b
	}

	sum := Summary{BusinessDate: businessDate}
	for _, o := range orders {
		if o.IsVoided {
			sum.VoidedCount++
			continue
		}
		sum.OrderCount++
		sum.GuestCount += o.GuestCount
		sum.NetSales = sum.NetSales.Add(o.NetSales)

		stamp := o.ClosedTime
		if stamp == "" {
			stamp = o.OpenedTime
		}
		t, err := brink.ParseTime(stamp, loc)
		if err != nil {
			continue
		}
		b := get(t.Hour())
		b.OrderCount++
		b.GuestCount += o.GuestCount
		b.NetSales = b.NetSales.Add(o.NetSales)
	}

	for _, s := range shifts {
		start, err := brink.ParseTime(s.ClockInTime, loc)
		if err != nil {
			continue
		}
		end, err := brink.ParseTime(s.ClockOutTime, loc)
		if err != nil || !end.After(start) {
			// open shift: count it as running to the recorded total
			end = start.Add(time.Duration(s.TotalMinutes) * time.Minute)
			if !end.After(start) {
				continue
			}
		}
		costPerMinute := s.PayRate.Div(decimal.NewFromInt(60))
		// walk the shift span hour by hour so split shifts land in the
		// right buckets
		for cursor := start; cursor.Before(end); {
			hourEnd := cursor.Truncate(time.Hour).Add(time.Hour)
			if hourEnd.After(end) {
				hourEnd = end
			}
			minutes := decimal.NewFromFloat(hourEnd.Sub(cursor).Minutes())
			b := get(cursor.Hour())
			hours := minutes.Div(decimal.NewFromInt(60))
			b.LaborHours = b.LaborHours.Add(hours)
			b.LaborCost = b.LaborCost.Add(costPerMinute.Mul(minutes))
			sum.LaborHours = sum.LaborHours.Add(hours)
			sum.LaborCost = sum.LaborCost.Add(costPerMinute.Mul(minutes))
			cursor = hourEnd
		}
	}

	for _, b := range buckets {
		b.LaborHours = b.LaborHours.Round(2)
		b.LaborCost = b.LaborCost.Round(2)
		if b.NetSales.IsPositive() {
			b.LaborPercent = b.LaborCost.Div(b.NetSales).Mul(hundred).Round(1)
		}
		sum.Hours = append(sum.Hours, *b)
	}
	sortHours(sum.Hours)
	sum.LaborHours = sum.LaborHours.Round(2)
	sum.LaborCost = sum.LaborCost.Round(2)
	if sum.NetSales.IsPositive() {
		sum.LaborPercent = sum.LaborCost.Div(sum.NetSales).Mul(hundred).Round(1)
	}
	return sum
}

func sortHours(hs []HourBucket) {
	for i := 1; i < len(hs); i++ {
		for j := i; j > 0 && hs[j-1].Hour > hs[j].Hour; j-- {
			hs[j-1], hs[j] = hs[j], hs[j-1]
		}
	}
}
