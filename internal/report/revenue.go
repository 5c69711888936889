package report

import (
	"time"

	"venue-billing-backend/internal/model"
	"venue-billing-backend/internal/parse"
)

// RevenueBucket is the revenue of one period. Total is the sum of invoice
// totals; Sessions and Inventory split the line amounts before discount and tax.
type RevenueBucket struct {
	Total     int64 `json:"total"`
	Sessions  int64 `json:"sessions"`
	Inventory int64 `json:"inventory"`
}

func (b *RevenueBucket) add(inv *model.Invoice) {
	b.Total += inv.Total
	for _, l := range inv.LineItems {
		if parse.IsTimeCharge(l.Kind, l.Description) {
			b.Sessions += l.Amount
		} else {
			b.Inventory += l.Amount
		}
	}
}

// RevenueData compares the current periods with last month.
type RevenueData struct {
	Today         RevenueBucket `json:"today"`
	ThisWeek      RevenueBucket `json:"thisWeek"`
	ThisMonth     RevenueBucket `json:"thisMonth"`
	LastMonth     RevenueBucket `json:"lastMonth"`
	PercentChange float64       `json:"percentChange"`
}

// RevenuePoint is one day of the chart series.
type RevenuePoint struct {
	Date      string `json:"date"`
	Sessions  int64  `json:"sessions"`
	Inventory int64  `json:"inventory"`
	Total     int64  `json:"total"`
}

func countsAsRevenue(inv *model.Invoice) bool {
	if inv.InvoiceType != model.InvoiceSale && inv.InvoiceType != "" {
		return false
	}
	return inv.Status != model.InvoiceCancelled
}

// Revenue buckets sale invoices by creation date.
func Revenue(snap *Snapshot, now time.Time, opts Options) RevenueData {
	loc := opts.loc()
	today := startOfDay(now, loc)
	tomorrow := today.AddDate(0, 0, 1)
	week := startOfWeek(now, loc, opts.WeekStart)
	month := startOfMonth(now, loc)
	nextMonth := month.AddDate(0, 1, 0)
	lastMonth := month.AddDate(0, -1, 0)

	var data RevenueData
	for i := range snap.Invoices {
		inv := &snap.Invoices[i]
		if !countsAsRevenue(inv) {
			continue
		}
		at := inv.CreatedAt
		if within(at, today, tomorrow) {
			data.Today.add(inv)
		}
		if within(at, week, week.AddDate(0, 0, 7)) {
			data.ThisWeek.add(inv)
		}
		if within(at, month, nextMonth) {
			data.ThisMonth.add(inv)
		}
		if within(at, lastMonth, month) {
			data.LastMonth.add(inv)
		}
	}
	data.PercentChange = percent(float64(data.ThisMonth.Total-data.LastMonth.Total), float64(data.LastMonth.Total))
	return data
}

// DailySeries returns one point per day for the last days days, oldest first,
// ending with today.
func DailySeries(snap *Snapshot, now time.Time, days int, opts Options) []RevenuePoint {
	if days <= 0 {
		return nil
	}
	loc := opts.loc()
	first := startOfDay(now, loc).AddDate(0, 0, -(days - 1))

	points := make([]RevenuePoint, days)
	index := make(map[string]int, days)
	for i := range points {
		d := first.AddDate(0, 0, i).Format("2006-01-02")
		points[i].Date = d
		index[d] = i
	}

	for i := range snap.Invoices {
		inv := &snap.Invoices[i]
		if !countsAsRevenue(inv) {
			continue
		}
		idx, ok := index[inv.CreatedAt.In(loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		var b RevenueBucket
		b.add(inv)
		points[idx].Sessions += b.Sessions
		points[idx].Inventory += b.Inventory
		points[idx].Total += b.Total
	}
	return points
}
