package model

import "time"

// PlanType is a subscription plan length.
type PlanType string

const (
	PlanWeekly      PlanType = "weekly"
	PlanHalfMonthly PlanType = "half-monthly"
	PlanMonthly     PlanType = "monthly"
)

// SubscriptionStatus is the plan lifecycle state.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription is a prepaid plan that covers resource time.
type Subscription struct {
	BaseModel
	CustomerID   string             `gorm:"size:36;not null;index" json:"customerId"`
	CustomerName string             `gorm:"size:256;not null" json:"customerName"`
	PlanType     PlanType           `gorm:"size:16;not null" json:"planType"`
	Price        int64              `gorm:"not null;check:price >= 0" json:"price"`
	StartDate    time.Time          `gorm:"not null" json:"startDate"`
	EndDate      time.Time          `gorm:"not null;index" json:"endDate"`
	Status       SubscriptionStatus `gorm:"size:16;not null;default:active;index" json:"status"`
	InvoiceID    *string            `gorm:"size:36" json:"invoiceId"`
}

// CoversAt reports whether the plan is active and in its date range at t.
func (s *Subscription) CoversAt(t time.Time) bool {
	return s.Status == SubscriptionActive && !t.Before(s.StartDate) && t.Before(s.EndDate)
}
