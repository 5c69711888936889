// Package report folds the full record history into dashboard views.
// Every function is a pure recompute over a Snapshot; nothing is cached or stored.
package report

import (
	"math"
	"time"

	"venue-billing-backend/internal/model"
)

// Snapshot is a consistent read of every collection the reports need.
// Invoices must carry their LineItems and Payments.
type Snapshot struct {
	Customers     []model.Customer
	Resources     []model.Resource
	Inventory     []model.InventoryItem
	Sessions      []model.Session
	History       []model.SessionHistory
	Invoices      []model.Invoice
	Subscriptions []model.Subscription
}

// Options tunes bucketing.
type Options struct {
	Location          *time.Location
	WeekStart         time.Weekday
	TopCustomers      int
	UtilizationWindow time.Duration
}

// DefaultOptions returns UTC, Monday weeks, top 5, a 7 day window.
func DefaultOptions() Options {
	return Options{
		Location:          time.UTC,
		WeekStart:         time.Monday,
		TopCustomers:      5,
		UtilizationWindow: 7 * 24 * time.Hour,
	}
}

func (o Options) loc() *time.Location {
	if o.Location == nil {
		return time.UTC
	}
	return o.Location
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func startOfWeek(t time.Time, loc *time.Location, weekStart time.Weekday) time.Time {
	day := startOfDay(t, loc)
	back := (int(day.Weekday()) - int(weekStart) + 7) % 7
	return day.AddDate(0, 0, -back)
}

func startOfMonth(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

func within(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}

// percent returns part/whole*100 rounded to two places, 0 when whole is 0.
func percent(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return math.Round(part/whole*100*100) / 100
}
