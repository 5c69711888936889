package model

import "time"

// InvoiceStatus is the payment state. "pending" and "partially_paid" are legacy
// spellings of unpaid.
type InvoiceStatus string

const (
	InvoiceUnpaid    InvoiceStatus = "unpaid"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// InvoiceType separates sales from manual balance documents.
type InvoiceType string

const (
	InvoiceSale       InvoiceType = "sale"
	InvoiceWithdrawal InvoiceType = "withdrawal"
	InvoiceRefund     InvoiceType = "refund"
)

// LineKind is the semantic category used by revenue reports.
type LineKind string

const (
	LineSession      LineKind = "session"
	LineSubscription LineKind = "subscription"
	LineInventory    LineKind = "inventory"
	LineManual       LineKind = "manual"
)

// PaymentMethod is how a payment was tendered.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodCard     PaymentMethod = "card"
	MethodTransfer PaymentMethod = "transfer"
	MethodBalance  PaymentMethod = "balance"
)

// Invoice is a billing document. Total is fixed at creation;
// only PaidAmount, Status and PaidDate change afterwards.
type Invoice struct {
	BaseModel
	InvoiceNumber string        `gorm:"size:64;uniqueIndex;not null" json:"invoiceNumber"`
	CustomerID    string        `gorm:"size:36;not null;index" json:"customerId"`
	CustomerName  string        `gorm:"size:256;not null" json:"customerName"`
	CustomerPhone string        `gorm:"size:32" json:"customerPhone"`
	SessionID     *string       `gorm:"size:36" json:"sessionId"`
	InvoiceType   InvoiceType   `gorm:"size:16;not null;default:sale" json:"invoiceType"`
	Amount        int64         `gorm:"not null;default:0;check:amount >= 0" json:"amount"` // sum of line items
	Discount      int64         `gorm:"not null;default:0;check:discount >= 0" json:"discount"`
	Tax           int64         `gorm:"not null;default:0;check:tax >= 0" json:"tax"`
	Total         int64         `gorm:"not null;default:0;check:total >= 0" json:"total"`
	PaidAmount    int64         `gorm:"not null;default:0;check:paid_amount >= 0" json:"paidAmount"`
	Status        InvoiceStatus `gorm:"size:16;not null;default:unpaid;index" json:"status"`
	DueDate       time.Time     `gorm:"not null" json:"dueDate"`
	PaidDate      *time.Time    `json:"paidDate"`
	Notes         *string       `json:"notes"`
	LineItems     []LineItem    `gorm:"foreignKey:InvoiceID" json:"lineItems"`
	Payments      []Payment     `gorm:"foreignKey:InvoiceID" json:"payments"`
}

// Remaining is the amount still owed.
func (i *Invoice) Remaining() int64 {
	if i.Status == InvoiceCancelled {
		return 0
	}
	return i.Total - i.PaidAmount
}

// LineItem is one charged line on an invoice.
type LineItem struct {
	BaseModel
	InvoiceID   string   `gorm:"size:36;not null;index" json:"invoiceId"`
	Kind        LineKind `gorm:"size:16" json:"kind"`
	Description string   `gorm:"not null" json:"description"`
	Quantity    int      `gorm:"not null;default:1;check:quantity > 0" json:"quantity"`
	Rate        int64    `gorm:"not null;default:0;check:rate >= 0" json:"rate"`
	Amount      int64    `gorm:"not null;default:0;check:amount >= 0" json:"amount"`
}

// Payment is money received against one invoice.
type Payment struct {
	BaseModel
	InvoiceID string        `gorm:"size:36;not null;index" json:"invoiceId"`
	Amount    int64         `gorm:"not null;check:amount > 0" json:"amount"`
	Method    PaymentMethod `gorm:"size:16;not null" json:"method"`
	Date      time.Time     `gorm:"not null;index" json:"date"`
	Notes     *string       `json:"notes"`
}
