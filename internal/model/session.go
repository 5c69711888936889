package model

import "time"

// Session is an open billing period (hot table). It never stores a computed cost;
// the charge is always derived from StartedAt and the current time.
type Session struct {
	BaseModel
	CustomerID   string `gorm:"size:36;not null;index" json:"customerId"`
	CustomerName string `gorm:"size:256;not null" json:"customerName"`
	// Unique: a resource is bound to at most one open session.
	ResourceID       string                 `gorm:"size:36;not null;uniqueIndex" json:"resourceId"`
	ResourceName     string                 `gorm:"size:256;not null" json:"resourceName"`
	ResourceRate     int64                  `gorm:"not null;default:0;check:resource_rate >= 0" json:"resourceRate"`
	ResourceMaxPrice int64                  `gorm:"not null;default:0" json:"resourceMaxPrice"`
	StartedAt        time.Time              `gorm:"not null" json:"startedAt"`
	IsSubscribed     bool                   `gorm:"not null;default:false" json:"isSubscribed"`
	Consumptions     []InventoryConsumption `gorm:"foreignKey:SessionID" json:"inventoryConsumptions"`
	InventoryTotal   int64                  `gorm:"not null;default:0" json:"inventoryTotal"`
}

// InventoryConsumption is one catalog item charged to an open session; a
// session holds at most one line per item. Price is the catalog price when
// the line was first added.
type InventoryConsumption struct {
	BaseModel
	SessionID       string    `gorm:"size:36;not null;uniqueIndex:idx_session_item" json:"sessionId"`
	InventoryItemID string    `gorm:"size:36;not null;uniqueIndex:idx_session_item" json:"inventoryItemId"`
	ItemName        string    `gorm:"size:256;not null" json:"itemName"`
	Quantity        int       `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price           int64     `gorm:"not null;check:price >= 0" json:"price"`
	AddedAt         time.Time `gorm:"not null" json:"addedAt"`
}

// SessionHistory is the archived record of an ended session (cold table).
type SessionHistory struct {
	ID              string    `gorm:"primaryKey;size:36" json:"id"`
	CustomerID      string    `gorm:"size:36;not null;index" json:"customerId"`
	CustomerName    string    `gorm:"size:256;not null" json:"customerName"`
	ResourceID      string    `gorm:"size:36;not null;index" json:"resourceId"`
	ResourceName    string    `gorm:"size:256;not null" json:"resourceName"`
	ResourceRate    int64     `gorm:"not null" json:"resourceRate"`
	IsSubscribed    bool      `gorm:"not null" json:"isSubscribed"`
	StartedAt       time.Time `gorm:"not null;index" json:"startedAt"`
	EndedAt         time.Time `gorm:"not null;index" json:"endedAt"`
	DurationMinutes int64     `gorm:"not null" json:"durationMinutes"`
	SessionCost     int64     `gorm:"not null" json:"sessionCost"`
	InventoryTotal  int64     `gorm:"not null" json:"inventoryTotal"`
	TotalAmount     int64     `gorm:"not null" json:"totalAmount"`
	InvoiceID       *string   `gorm:"size:36" json:"invoiceId"`
}
