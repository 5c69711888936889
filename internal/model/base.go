package model

import "time"

// BaseModel carries the UUID key and timestamps shared by most tables.
type BaseModel struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

// All lists every table for AutoMigrate.
func All() []any {
	return []any{
		&Customer{},
		&Resource{},
		&InventoryItem{},
		&StockMovement{},
		&Session{},
		&InventoryConsumption{},
		&SessionHistory{},
		&Invoice{},
		&LineItem{},
		&Payment{},
		&BalanceEntry{},
		&Subscription{},
		&AppSettings{},
		&Operation{},
		&PushSubscription{},
	}
}
