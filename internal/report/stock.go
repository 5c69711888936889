package report

import (
	"sort"

	"venue-billing-backend/internal/model"
)

// StockAlert describes an item that needs restocking.
type StockAlert struct {
	ItemID   string `json:"itemId"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
	MinStock int    `json:"minStock"`
}

func alertFor(item *model.InventoryItem) StockAlert {
	return StockAlert{
		ItemID:   item.ID,
		Name:     item.Name,
		Category: item.Category,
		Quantity: item.Quantity,
		MinStock: item.MinStock,
	}
}

// IsLowStock reports 0 < quantity <= minStock. Zero stock is out of stock, not low.
func IsLowStock(item *model.InventoryItem) bool {
	return item.Quantity > 0 && item.Quantity <= item.MinStock
}

// LowStockAlerts lists low-stock items, most severe (lowest quantity/minStock) first,
// then by name.
func LowStockAlerts(items []model.InventoryItem) []StockAlert {
	alerts := []StockAlert{}
	for i := range items {
		if IsLowStock(&items[i]) {
			alerts = append(alerts, alertFor(&items[i]))
		}
	}
	sort.Slice(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		// a.q/a.min < b.q/b.min without division
		l, r := int64(a.Quantity)*int64(b.MinStock), int64(b.Quantity)*int64(a.MinStock)
		if l != r {
			return l < r
		}
		return a.Name < b.Name
	})
	return alerts
}

// OutOfStock lists items with nothing on hand, by name.
func OutOfStock(items []model.InventoryItem) []StockAlert {
	alerts := []StockAlert{}
	for i := range items {
		if items[i].Quantity == 0 {
			alerts = append(alerts, alertFor(&items[i]))
		}
	}
	sort.Slice(alerts, func(i, j int) bool { return alerts[i].Name < alerts[j].Name })
	return alerts
}
