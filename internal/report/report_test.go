package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue-billing-backend/internal/model"
)

// Tuesday.
var now = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func saleInvoice(id, customer string, created time.Time, sessions, inventory, paid int64) model.Invoice {
	inv := model.Invoice{
		BaseModel:    model.BaseModel{ID: id, CreatedAt: created},
		CustomerID:   customer,
		CustomerName: "name-" + customer,
		InvoiceType:  model.InvoiceSale,
		Total:        sessions + inventory,
		PaidAmount:   paid,
		Status:       model.InvoiceUnpaid,
	}
	if paid == inv.Total {
		inv.Status = model.InvoicePaid
	}
	inv.LineItems = []model.LineItem{
		{Kind: model.LineSession, Description: "Session at Desk", Quantity: 1, Rate: sessions, Amount: sessions},
		{Kind: model.LineInventory, Description: "Cola", Quantity: 1, Rate: inventory, Amount: inventory},
	}
	return inv
}

func TestRevenue(t *testing.T) {
	cancelled := saleInvoice("x", "c1", now, 9999, 0, 0)
	cancelled.Status = model.InvoiceCancelled
	withdrawal := saleInvoice("w", "c1", now, 500, 0, 500)
	withdrawal.InvoiceType = model.InvoiceWithdrawal

	snap := &Snapshot{Invoices: []model.Invoice{
		saleInvoice("a", "c1", now.Add(-time.Hour), 3000, 1000, 0),       // today
		saleInvoice("b", "c1", now.AddDate(0, 0, -1), 2000, 0, 2000),     // Monday, this week
		saleInvoice("c", "c2", now.AddDate(0, 0, -8), 0, 700, 700),       // this month, last week
		saleInvoice("d", "c2", now.AddDate(0, -1, 0), 4000, 1000, 5000),  // last month
		saleInvoice("e", "c2", now.AddDate(0, -2, 0), 100000, 0, 100000), // out of range
		cancelled,
		withdrawal,
	}}

	data := Revenue(snap, now, DefaultOptions())
	assert.Equal(t, RevenueBucket{Total: 4000, Sessions: 3000, Inventory: 1000}, data.Today)
	assert.Equal(t, RevenueBucket{Total: 6000, Sessions: 5000, Inventory: 1000}, data.ThisWeek)
	assert.Equal(t, RevenueBucket{Total: 6700, Sessions: 5000, Inventory: 1700}, data.ThisMonth)
	assert.Equal(t, RevenueBucket{Total: 5000, Sessions: 4000, Inventory: 1000}, data.LastMonth)
	assert.Equal(t, 34.0, data.PercentChange)
}

func TestRevenue_PercentChangeWithEmptyLastMonth(t *testing.T) {
	snap := &Snapshot{Invoices: []model.Invoice{saleInvoice("a", "c1", now, 5000, 0, 0)}}
	data := Revenue(snap, now, DefaultOptions())
	assert.Equal(t, int64(5000), data.ThisMonth.Total)
	assert.Zero(t, data.PercentChange)
}

func TestRevenue_WeekStart(t *testing.T) {
	snap := &Snapshot{Invoices: []model.Invoice{
		saleInvoice("sat", "c1", time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC), 1000, 0, 0),
	}}
	opts := DefaultOptions()

	assert.Zero(t, Revenue(snap, now, opts).ThisWeek.Total)
	opts.WeekStart = time.Saturday
	assert.Equal(t, int64(1000), Revenue(snap, now, opts).ThisWeek.Total)
}

func TestDailySeries(t *testing.T) {
	snap := &Snapshot{Invoices: []model.Invoice{
		saleInvoice("a", "c1", now, 3000, 1000, 0),
		saleInvoice("b", "c1", now.Add(-2*time.Hour), 500, 0, 0),
		saleInvoice("c", "c1", now.AddDate(0, 0, -2), 0, 250, 0),
		saleInvoice("old", "c1", now.AddDate(0, 0, -30), 9000, 0, 0),
	}}

	points := DailySeries(snap, now, 3, DefaultOptions())
	require.Len(t, points, 3)
	assert.Equal(t, []RevenuePoint{
		{Date: "2026-03-08", Inventory: 250, Total: 250},
		{Date: "2026-03-09"},
		{Date: "2026-03-10", Sessions: 3500, Inventory: 1000, Total: 4500},
	}, points)

	assert.Equal(t, points, DailySeries(snap, now, 3, DefaultOptions()))
	assert.Nil(t, DailySeries(snap, now, 0, DefaultOptions()))
}

func TestUtilization(t *testing.T) {
	snap := &Snapshot{
		Resources: []model.Resource{
			{BaseModel: model.BaseModel{ID: "r1"}, Name: "Desk 1", IsAvailable: false},
			{BaseModel: model.BaseModel{ID: "r2"}, Name: "Desk 2", IsAvailable: true},
			{BaseModel: model.BaseModel{ID: "r3"}, Name: "Room", IsAvailable: true},
			{BaseModel: model.BaseModel{ID: "r4"}, Name: "PS5", IsAvailable: true},
		},
		Sessions: []model.Session{
			{ResourceID: "r1", StartedAt: now.Add(-6 * time.Hour)},
		},
		History: []model.SessionHistory{
			{ResourceID: "r2", StartedAt: now.Add(-28 * time.Hour), EndedAt: now.Add(-24 * time.Hour), DurationMinutes: 240},
			{ResourceID: "r2", StartedAt: time.Date(2026, 3, 10, 12, 10, 0, 0, time.UTC), EndedAt: time.Date(2026, 3, 10, 13, 10, 0, 0, time.UTC), DurationMinutes: 60},
		},
	}
	opts := DefaultOptions()
	opts.UtilizationWindow = 24 * time.Hour

	data := Utilization(snap, now, opts)
	assert.Equal(t, 25.0, data.OverallRate)
	require.Len(t, data.ByResource, 4)
	assert.True(t, data.ByResource[0].Occupied)
	assert.Equal(t, 25.0, data.ByResource[0].Rate)
	// Only the one hour session overlaps the last 24h.
	assert.InDelta(t, 4.17, data.ByResource[1].Rate, 0.01)
	assert.Zero(t, data.ByResource[2].Rate)

	require.Len(t, data.PeakHours, 24)
	assert.Equal(t, 1, data.PeakHours[9].Sessions)
	assert.InDelta(t, 33.33, data.PeakHours[9].Rate, 0.01)
	assert.Equal(t, 150.0, data.AverageSessionDuration)
}

func TestUtilization_Empty(t *testing.T) {
	data := Utilization(&Snapshot{}, now, DefaultOptions())
	assert.Zero(t, data.OverallRate)
	assert.Zero(t, data.AverageSessionDuration)
	assert.Len(t, data.PeakHours, 24)
}

func TestTopCustomers(t *testing.T) {
	snap := &Snapshot{
		Customers: []model.Customer{{BaseModel: model.BaseModel{ID: "c3"}, Name: "Renamed"}},
		Invoices: []model.Invoice{
			saleInvoice("1", "c1", now, 1000, 0, 1000),
			saleInvoice("2", "c1", now, 1000, 0, 500),
			saleInvoice("3", "c2", now, 5000, 0, 5000),
			saleInvoice("4", "c3", now, 1200, 0, 1200),
			saleInvoice("5", "c4", now, 1000, 0, 0),
		},
	}

	top := TopCustomers(snap, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "c2", top[0].CustomerID)
	assert.Equal(t, "c1", top[1].CustomerID)
	assert.Equal(t, int64(1500), top[1].TotalPaid)
	assert.Equal(t, 2, top[1].InvoiceCount)

	// Names come from the customer record when present.
	all := TopCustomers(snap, 5)
	require.Len(t, all, 3)
	assert.Equal(t, "Renamed", all[2].Name)
}

func TestLowStockAlerts(t *testing.T) {
	items := []model.InventoryItem{
		{BaseModel: model.BaseModel{ID: "a"}, Name: "Cola", Quantity: 2, MinStock: 5},
		{BaseModel: model.BaseModel{ID: "b"}, Name: "Water", Quantity: 0, MinStock: 5},
		{BaseModel: model.BaseModel{ID: "c"}, Name: "Chips", Quantity: 1, MinStock: 10},
		{BaseModel: model.BaseModel{ID: "d"}, Name: "Tea", Quantity: 9, MinStock: 5},
		{BaseModel: model.BaseModel{ID: "e"}, Name: "Biscuits", Quantity: 4, MinStock: 10},
		{BaseModel: model.BaseModel{ID: "f"}, Name: "Gum", Quantity: 5, MinStock: 5},
	}

	low := LowStockAlerts(items)
	var names []string
	for _, a := range low {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"Chips", "Biscuits", "Cola", "Gum"}, names)

	out := OutOfStock(items)
	require.Len(t, out, 1)
	assert.Equal(t, "Water", out[0].Name)
}

func TestDashboard(t *testing.T) {
	paidYesterday := saleInvoice("a", "c1", now.AddDate(0, 0, -1), 3000, 0, 3000)
	paidYesterday.Payments = []model.Payment{
		{Amount: 1000, Date: now.AddDate(0, 0, -1)},
		{Amount: 2000, Date: now.Add(-time.Hour)},
	}
	open := saleInvoice("b", "c1", now, 1000, 500, 0)

	snap := &Snapshot{
		Customers: []model.Customer{
			{BaseModel: model.BaseModel{ID: "c1", CreatedAt: now.Add(-2 * time.Hour)}},
			{BaseModel: model.BaseModel{ID: "c2", CreatedAt: now.AddDate(0, 0, -3)}},
		},
		Resources: []model.Resource{{IsAvailable: false}, {IsAvailable: true}},
		Sessions:  []model.Session{{ResourceID: "r1"}},
		Inventory: []model.InventoryItem{{Quantity: 1, MinStock: 2}, {Quantity: 0}},
		Invoices:  []model.Invoice{paidYesterday, open},
		Subscriptions: []model.Subscription{
			{Status: model.SubscriptionActive, StartDate: now.AddDate(0, 0, -1), EndDate: now.AddDate(0, 0, 6)},
			{Status: model.SubscriptionActive, StartDate: now.AddDate(0, 0, -10), EndDate: now.AddDate(0, 0, -3)},
		},
	}

	m := Dashboard(snap, now, DefaultOptions())
	assert.Equal(t, DashboardMetrics{
		TodayRevenue:           2000,
		ActiveSessions:         1,
		NewCustomersToday:      1,
		TotalCustomers:         2,
		ActiveSubscriptions:    1,
		UtilizationRate:        50,
		LowStockCount:          1,
		OutOfStockCount:        1,
		OutstandingReceivables: 1500,
	}, m)
}
