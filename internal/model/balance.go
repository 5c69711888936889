package model

// BalanceEntryKind classifies a movement of customer credit.
type BalanceEntryKind string

const (
	EntryDeposit    BalanceEntryKind = "deposit"
	EntryWithdrawal BalanceEntryKind = "withdrawal"
	EntryRefund     BalanceEntryKind = "refund"
	EntryPayment    BalanceEntryKind = "payment"
)

// BalanceEntry is a signed change of a customer's credit.
// Deposits and refunds are positive; withdrawals and balance payments negative.
type BalanceEntry struct {
	BaseModel
	CustomerID string           `gorm:"size:36;not null;index" json:"customerId"`
	Kind       BalanceEntryKind `gorm:"size:16;not null" json:"kind"`
	Amount     int64            `gorm:"not null" json:"amount"`
	InvoiceID  *string          `gorm:"size:36" json:"invoiceId"`
	Notes      *string          `json:"notes"`
}
