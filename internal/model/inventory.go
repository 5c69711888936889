package model

import "time"

// InventoryItem is a sellable catalog item with stock on hand.
type InventoryItem struct {
	BaseModel
	Name     string `gorm:"size:256;not null" json:"name"`
	Category string `gorm:"size:64;not null" json:"category"` // beverage, snack, other
	Price    int64  `gorm:"not null;check:price >= 0" json:"price"`
	Quantity int    `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	MinStock int    `gorm:"not null;default:0;check:min_stock >= 0" json:"minStock"`
}

// MovementReason explains a stock change.
type MovementReason string

const (
	MovementSessionReserve MovementReason = "session_reserve"
	MovementSessionRelease MovementReason = "session_release"
	MovementAdjustment     MovementReason = "adjustment"
)

// StockMovement is the append-only audit of every quantity change.
type StockMovement struct {
	ID              string         `gorm:"primaryKey;size:36" json:"id"`
	InventoryItemID string         `gorm:"size:36;not null;index" json:"inventoryItemId"`
	SessionID       *string        `gorm:"size:36" json:"sessionId"`
	Delta           int            `gorm:"not null" json:"delta"`
	Reason          MovementReason `gorm:"size:32;not null" json:"reason"`
	Note            *string        `json:"note"`
	CreatedAt       time.Time      `gorm:"not null;index" json:"createdAt"`
}
