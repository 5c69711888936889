package billing

import (
	"time"

	"venue-billing-backend/internal/model"
	"venue-billing-backend/internal/money"
)

// Charge is the derived cost of a session at a point in time.
type Charge struct {
	Minutes           int64 `json:"minutes"`
	SessionCost       int64 `json:"sessionCost"`
	InventorySubtotal int64 `json:"inventorySubtotal"`
	Subtotal          int64 `json:"subtotal"`
	Discount          int64 `json:"discount"`
	Tax               int64 `json:"tax"`
	Total             int64 `json:"total"`
}

// SessionCost returns floor(minutes * ratePerHour / 60), capped at maxPrice when maxPrice > 0.
// Fractional piasters are always dropped.
func SessionCost(minutes, ratePerHour, maxPrice int64) int64 {
	if minutes <= 0 || ratePerHour <= 0 {
		return 0
	}
	cost := minutes * ratePerHour / 60
	if maxPrice > 0 && cost > maxPrice {
		cost = maxPrice
	}
	return cost
}

// InventorySubtotal sums quantity * snapshot price over the lines.
func InventorySubtotal(lines []model.InventoryConsumption) int64 {
	var sum int64
	for _, l := range lines {
		sum += int64(l.Quantity) * l.Price
	}
	return sum
}

// Adjust applies the percentage discount and then tax to subtotal, flooring at each stage.
func Adjust(subtotal int64, settings model.Settings) (discount, tax, total int64) {
	if subtotal < 0 {
		subtotal = 0
	}
	if settings.Discounts.Enabled && settings.Discounts.Value > 0 {
		discount = subtotal * settings.Discounts.Value / 100
		if discount > subtotal {
			discount = subtotal
		}
	}
	discounted := subtotal - discount
	if settings.Tax.Enabled && settings.Tax.Rate > 0 {
		tax = discounted * settings.Tax.Rate / 100
	}
	total = discounted + tax
	if total < 0 {
		total = 0
	}
	return discount, tax, total
}

// ComputeSessionCharge derives the charge for s at now. It never mutates s and
// returns the same result for the same (s, now).
func ComputeSessionCharge(s *model.Session, now time.Time, settings model.Settings) Charge {
	c := Charge{Minutes: money.ElapsedMinutes(s.StartedAt, now)}
	if !s.IsSubscribed {
		c.SessionCost = SessionCost(c.Minutes, s.ResourceRate, s.ResourceMaxPrice)
	}
	c.InventorySubtotal = InventorySubtotal(s.Consumptions)
	c.Subtotal = c.SessionCost + c.InventorySubtotal
	c.Discount, c.Tax, c.Total = Adjust(c.Subtotal, settings)
	return c
}
