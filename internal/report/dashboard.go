package report

import (
	"time"

	"venue-billing-backend/internal/billing"
)

// DashboardMetrics is the headline view.
type DashboardMetrics struct {
	TodayRevenue           int64   `json:"todayRevenue"`
	ActiveSessions         int     `json:"activeSessions"`
	NewCustomersToday      int     `json:"newCustomersToday"`
	TotalCustomers         int     `json:"totalCustomers"`
	ActiveSubscriptions    int     `json:"activeSubscriptions"`
	UtilizationRate        float64 `json:"utilizationRate"`
	LowStockCount          int     `json:"lowStockCount"`
	OutOfStockCount        int     `json:"outOfStockCount"`
	OutstandingReceivables int64   `json:"outstandingReceivables"`
}

// Dashboard computes the headline metrics. Today's revenue counts payments
// received today on sale invoices, whatever day the invoice was issued.
func Dashboard(snap *Snapshot, now time.Time, opts Options) DashboardMetrics {
	loc := opts.loc()
	today := startOfDay(now, loc)
	tomorrow := today.AddDate(0, 0, 1)

	m := DashboardMetrics{
		ActiveSessions:         len(snap.Sessions),
		TotalCustomers:         len(snap.Customers),
		LowStockCount:          len(LowStockAlerts(snap.Inventory)),
		OutOfStockCount:        len(OutOfStock(snap.Inventory)),
		OutstandingReceivables: billing.Outstanding(snap.Invoices),
	}

	for i := range snap.Invoices {
		inv := &snap.Invoices[i]
		if !countsAsRevenue(inv) {
			continue
		}
		for _, p := range inv.Payments {
			if within(p.Date, today, tomorrow) {
				m.TodayRevenue += p.Amount
			}
		}
	}
	for _, c := range snap.Customers {
		if within(c.CreatedAt, today, tomorrow) {
			m.NewCustomersToday++
		}
	}
	for i := range snap.Subscriptions {
		if snap.Subscriptions[i].CoversAt(now) {
			m.ActiveSubscriptions++
		}
	}

	occupied := 0
	for _, r := range snap.Resources {
		if !r.IsAvailable {
			occupied++
		}
	}
	m.UtilizationRate = percent(float64(occupied), float64(len(snap.Resources)))
	return m
}
