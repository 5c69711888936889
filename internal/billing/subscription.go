package billing

import (
	"time"

	"venue-billing-backend/internal/model"
)

// PlanDays returns the length of a plan in days.
func PlanDays(p model.PlanType) (int, bool) {
	switch p {
	case model.PlanWeekly:
		return 7, true
	case model.PlanHalfMonthly:
		return 15, true
	case model.PlanMonthly:
		return 30, true
	}
	return 0, false
}

// ProratedRefund returns the unused share of the plan price at now, counted in
// whole hours and floored. A plan that has not started refunds in full.
func ProratedRefund(sub *model.Subscription, now time.Time) int64 {
	if sub.Status != model.SubscriptionActive || !now.Before(sub.EndDate) {
		return 0
	}
	total := int64(sub.EndDate.Sub(sub.StartDate) / time.Hour)
	if total <= 0 {
		return 0
	}
	if now.Before(sub.StartDate) {
		return sub.Price
	}
	remaining := int64(sub.EndDate.Sub(now) / time.Hour)
	return sub.Price * remaining / total
}
