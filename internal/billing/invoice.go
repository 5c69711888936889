package billing

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"venue-billing-backend/internal/model"
)

// NewInvoiceNumber returns a display identifier such as INV-20261018-3FA2C1.
func NewInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), suffix)
}

// NewHumanID returns an 8 character customer reference.
func NewHumanID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// DueDate returns the due date for an invoice created at now.
func DueDate(now time.Time, settings model.Settings) time.Time {
	days := settings.Invoicing.DueDays
	if days < 0 {
		days = 0
	}
	return now.AddDate(0, 0, days)
}

// NormalizeStatus maps legacy spellings onto the three current states.
func NormalizeStatus(s model.InvoiceStatus) model.InvoiceStatus {
	switch s {
	case model.InvoicePaid, model.InvoiceCancelled:
		return s
	default:
		// "", "pending", "partially_paid"
		return model.InvoiceUnpaid
	}
}

// IsFinalized reports whether the invoice accepts no further transitions.
func IsFinalized(inv *model.Invoice) bool {
	return NormalizeStatus(inv.Status) != model.InvoiceUnpaid
}

func formatDuration(minutes int64) string {
	h, m := minutes/60, minutes%60
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}

// BuildSessionInvoice turns an ended session into an invoice: one session line
// plus one line per consumption. The charge is computed at now.
func BuildSessionInvoice(s *model.Session, customerPhone string, now time.Time, settings model.Settings) (*model.Invoice, Charge) {
	charge := ComputeSessionCharge(s, now, settings)
	sessionID := s.ID

	inv := &model.Invoice{
		BaseModel:     model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		InvoiceNumber: NewInvoiceNumber(now),
		CustomerID:    s.CustomerID,
		CustomerName:  s.CustomerName,
		CustomerPhone: customerPhone,
		SessionID:     &sessionID,
		InvoiceType:   model.InvoiceSale,
		Amount:        charge.Subtotal,
		Discount:      charge.Discount,
		Tax:           charge.Tax,
		Total:         charge.Total,
		Status:        model.InvoiceUnpaid,
		DueDate:       DueDate(now, settings),
	}

	desc := fmt.Sprintf("Session at %s (%s)", s.ResourceName, formatDuration(charge.Minutes))
	if s.IsSubscribed {
		desc += " - subscription"
	}
	inv.LineItems = append(inv.LineItems, newLine(inv.ID, model.LineSession, desc, 1, charge.SessionCost, now))
	for _, c := range s.Consumptions {
		inv.LineItems = append(inv.LineItems, newLine(inv.ID, model.LineInventory, c.ItemName, c.Quantity, c.Price, now))
	}

	if inv.Total == 0 {
		inv.Status = model.InvoicePaid
		inv.PaidDate = &now
	}
	return inv, charge
}

// NewManualInvoice builds a single-line invoice. Sale invoices start unpaid;
// withdrawal and refund invoices are records of money already moved and start paid.
func NewManualInvoice(customer *model.Customer, typ model.InvoiceType, kind model.LineKind, description string, amount int64, now time.Time, settings model.Settings) *model.Invoice {
	inv := &model.Invoice{
		BaseModel:     model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		InvoiceNumber: NewInvoiceNumber(now),
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		InvoiceType:   typ,
		Amount:        amount,
		Total:         amount,
		Status:        model.InvoiceUnpaid,
		DueDate:       DueDate(now, settings),
	}
	inv.LineItems = []model.LineItem{newLine(inv.ID, kind, description, 1, amount, now)}
	if typ != model.InvoiceSale || amount == 0 {
		inv.Status = model.InvoicePaid
		inv.PaidAmount = amount
		inv.PaidDate = &now
	}
	return inv
}

func newLine(invoiceID string, kind model.LineKind, desc string, qty int, rate int64, now time.Time) model.LineItem {
	return model.LineItem{
		BaseModel:   model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		InvoiceID:   invoiceID,
		Kind:        kind,
		Description: desc,
		Quantity:    qty,
		Rate:        rate,
		Amount:      int64(qty) * rate,
	}
}

// ValidMethod reports whether m is a known payment method.
func ValidMethod(m model.PaymentMethod) bool {
	switch m {
	case model.MethodCash, model.MethodCard, model.MethodTransfer, model.MethodBalance:
		return true
	}
	return false
}

// ApplyPayment records amount against inv. On error inv is left unchanged.
// The invoice becomes paid exactly when paidAmount reaches total.
func ApplyPayment(inv *model.Invoice, amount int64, method model.PaymentMethod, notes *string, now time.Time) (*model.Payment, error) {
	if IsFinalized(inv) {
		return nil, ErrInvoiceFinalized
	}
	if !ValidMethod(method) {
		return nil, ErrInvalidPaymentMethod
	}
	if amount <= 0 || amount > inv.Total-inv.PaidAmount {
		return nil, ErrInvalidAmount
	}

	inv.Status = model.InvoiceUnpaid
	inv.PaidAmount += amount
	inv.UpdatedAt = now
	if inv.PaidAmount == inv.Total {
		inv.Status = model.InvoicePaid
		inv.PaidDate = &now
	}
	return &model.Payment{
		BaseModel: model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		InvoiceID: inv.ID,
		Amount:    amount,
		Method:    method,
		Date:      now,
		Notes:     notes,
	}, nil
}

// Allocation is the share of a bulk payment assigned to one invoice.
type Allocation struct {
	Invoice *model.Invoice
	Amount  int64
}

// BulkAllocation is the result of splitting one payment across invoices.
type BulkAllocation struct {
	Allocations []Allocation
	Allocated   int64
	Unallocated int64
}

// AllocateBulkPayment splits amount across invoices, oldest due date first
// (ties by creation time, then id), settling each before moving on. Finalized
// invoices are skipped. Nothing is mutated.
func AllocateBulkPayment(invoices []*model.Invoice, amount int64) (BulkAllocation, error) {
	if amount <= 0 {
		return BulkAllocation{}, ErrInvalidAmount
	}

	open := make([]*model.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if !IsFinalized(inv) && inv.Total-inv.PaidAmount > 0 {
			open = append(open, inv)
		}
	}
	if len(open) == 0 {
		return BulkAllocation{}, ErrInvoiceFinalized
	}
	sort.SliceStable(open, func(i, j int) bool {
		a, b := open[i], open[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	result := BulkAllocation{Unallocated: amount}
	for _, inv := range open {
		if result.Unallocated == 0 {
			break
		}
		share := min(inv.Total-inv.PaidAmount, result.Unallocated)
		result.Allocations = append(result.Allocations, Allocation{Invoice: inv, Amount: share})
		result.Allocated += share
		result.Unallocated -= share
	}
	return result, nil
}

// CancelInvoice moves an unpaid invoice with no payments to cancelled.
func CancelInvoice(inv *model.Invoice, now time.Time) error {
	if IsFinalized(inv) {
		return ErrInvoiceFinalized
	}
	if inv.PaidAmount > 0 {
		return ErrInvoiceHasPayments
	}
	inv.Status = model.InvoiceCancelled
	inv.UpdatedAt = now
	return nil
}
