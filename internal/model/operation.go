package model

import "time"

// OperationType names an event in the activity log.
type OperationType string

const (
	OpSessionStart          OperationType = "session_start"
	OpSessionEnd            OperationType = "session_end"
	OpInventoryAdd          OperationType = "inventory_add"
	OpInventoryUpdate       OperationType = "inventory_update"
	OpInventoryRemove       OperationType = "inventory_remove"
	OpStockAdjusted         OperationType = "stock_adjusted"
	OpInvoiceCreated        OperationType = "invoice_created"
	OpInvoiceCancelled      OperationType = "invoice_cancelled"
	OpPaymentReceived       OperationType = "payment_received"
	OpCustomerCreated       OperationType = "customer_created"
	OpCustomerUpdated       OperationType = "customer_updated"
	OpCustomerDeleted       OperationType = "customer_deleted"
	OpResourceUpdated       OperationType = "resource_updated"
	OpResourceDeleted       OperationType = "resource_deleted"
	OpItemUpdated           OperationType = "item_updated"
	OpItemDeleted           OperationType = "item_deleted"
	OpBalanceDeposit        OperationType = "balance_deposit"
	OpBalanceWithdrawal     OperationType = "balance_withdrawal"
	OpSubscriptionCreated   OperationType = "subscription_created"
	OpSubscriptionCancelled OperationType = "subscription_cancelled"
	OpSubscriptionChanged   OperationType = "subscription_changed"
	OpSubscriptionRenewed   OperationType = "subscription_renewed"
)

// Operation is an append-only activity record. Rows are never updated or deleted.
type Operation struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	Type        OperationType `gorm:"size:32;not null;index" json:"type"`
	Description string        `gorm:"not null" json:"description"`
	RefID       *string       `gorm:"size:36" json:"refId"`
	Timestamp   time.Time     `gorm:"not null;index" json:"timestamp"`
}
