package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"venue-billing-backend/internal/billing"
	"venue-billing-backend/internal/model"
	"venue-billing-backend/internal/money"
)

func preloadInvoice(db *gorm.DB) *gorm.DB {
	return db.Preload("LineItems", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at, id")
	}).Preload("Payments", func(db *gorm.DB) *gorm.DB {
		return db.Order("date, id")
	})
}

func loadInvoice(tx *gorm.DB, id string) (*model.Invoice, error) {
	var inv model.Invoice
	if err := preloadInvoice(tx).First(&inv, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "invoice", id)
	}
	return &inv, nil
}

func (s *gormStore) GetInvoice(ctx context.Context, id string) (*model.Invoice, error) {
	return loadInvoice(s.db.WithContext(ctx), id)
}

func (s *gormStore) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, error) {
	q := preloadInvoice(s.db.WithContext(ctx))
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	q = q.Scopes(invoiceStatusScope(filter.Status))
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var list []model.Invoice
	if err := q.Order("created_at DESC, id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	for i := range list {
		list[i].Status = billing.NormalizeStatus(list[i].Status)
	}
	return list, nil
}

// invoiceStatusScope applies a status filter. Unpaid matches every open
// invoice, legacy spellings included.
func invoiceStatusScope(status model.InvoiceStatus) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		switch status {
		case "":
			return q
		case model.InvoiceUnpaid:
			return q.Where("status NOT IN ?", []model.InvoiceStatus{model.InvoicePaid, model.InvoiceCancelled})
		default:
			return q.Where("status = ?", status)
		}
	}
}

// GetInvoicesPaginated pages invoices newest first. Search matches the
// invoice number or customer name.
func (s *gormStore) GetInvoicesPaginated(ctx context.Context, q PageQuery, status model.InvoiceStatus) (*Page[model.Invoice], error) {
	q = q.normalize()
	query := s.db.WithContext(ctx).Model(&model.Invoice{}).Scopes(invoiceStatusScope(status))
	if term := strings.TrimSpace(q.Search); term != "" {
		like := "%" + term + "%"
		query = query.Where("invoice_number LIKE ? OR customer_name LIKE ?", like, like)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count invoices: %w", err)
	}
	var list []model.Invoice
	if err := preloadInvoice(query).Order("created_at DESC, id").Offset(q.offset()).Limit(q.PageSize).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to page invoices: %w", err)
	}
	for i := range list {
		list[i].Status = billing.NormalizeStatus(list[i].Status)
	}
	return newPage(list, total, q), nil
}

// applyPayment validates and persists one payment. The write is guarded on the
// paid amount read earlier in the transaction.
func applyPayment(tx *gorm.DB, inv *model.Invoice, in PaymentInput, now time.Time) error {
	prevPaid, prevStatus := inv.PaidAmount, inv.Status

	payment, err := billing.ApplyPayment(inv, in.Amount, in.Method, in.Notes, now)
	if err != nil {
		return err
	}
	if in.Method == model.MethodBalance {
		credit, err := availableCredit(tx, inv.CustomerID)
		if err != nil {
			return err
		}
		if err := billing.CheckCreditPayment(credit, in.Amount); err != nil {
			return err
		}
	}

	res := tx.Model(&model.Invoice{}).
		Where("id = ? AND paid_amount = ? AND status = ?", inv.ID, prevPaid, prevStatus).
		Updates(map[string]any{
			"paid_amount": inv.PaidAmount,
			"status":      inv.Status,
			"paid_date":   inv.PaidDate,
			"updated_at":  now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update invoice %s: %w", inv.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("invoice %s: %w", inv.ID, ErrConflict)
	}
	if err := tx.Create(payment).Error; err != nil {
		return fmt.Errorf("failed to record payment: %w", err)
	}
	inv.Payments = append(inv.Payments, *payment)

	if in.Method == model.MethodBalance {
		if err := tx.Create(&model.BalanceEntry{
			BaseModel:  model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
			CustomerID: inv.CustomerID,
			Kind:       model.EntryPayment,
			Amount:     -in.Amount,
			InvoiceID:  &inv.ID,
			Notes:      in.Notes,
		}).Error; err != nil {
			return fmt.Errorf("failed to debit balance: %w", err)
		}
	}
	return appendOp(tx, model.OpPaymentReceived, inv.ID, now, "Payment of %s (%s) on invoice %s", money.Format(in.Amount), in.Method, inv.InvoiceNumber)
}

// RecordPayment applies one payment to an invoice.
func (s *gormStore) RecordPayment(ctx context.Context, invoiceID string, in PaymentInput, now time.Time) (*model.Invoice, error) {
	var inv *model.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if inv, err = loadInvoice(tx, invoiceID); err != nil {
			return err
		}
		if err := applyPayment(tx, inv, in, now); err != nil {
			return err
		}
		_, err = refreshBalance(tx, inv.CustomerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// RecordBulkPayment splits one payment across invoices, oldest due date first.
// Money left over once every invoice is settled is reported, not kept.
func (s *gormStore) RecordBulkPayment(ctx context.Context, invoiceIDs []string, in PaymentInput, now time.Time) (*BulkPaymentResult, error) {
	if len(invoiceIDs) == 0 {
		return nil, invalid("no invoices given")
	}
	if !billing.ValidMethod(in.Method) {
		return nil, billing.ErrInvalidPaymentMethod
	}

	var result BulkPaymentResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoices []model.Invoice
		if err := preloadInvoice(tx).Where("id IN ?", invoiceIDs).Find(&invoices).Error; err != nil {
			return fmt.Errorf("failed to load invoices: %w", err)
		}
		found := make(map[string]bool, len(invoices))
		ptrs := make([]*model.Invoice, len(invoices))
		customers := make(map[string]bool)
		for i := range invoices {
			ptrs[i] = &invoices[i]
			found[invoices[i].ID] = true
			customers[invoices[i].CustomerID] = true
		}
		for _, id := range invoiceIDs {
			if !found[id] {
				return fmt.Errorf("invoice %s: %w", id, ErrNotFound)
			}
		}
		if in.Method == model.MethodBalance && len(customers) > 1 {
			return invalid("a balance payment must cover a single customer")
		}

		alloc, err := billing.AllocateBulkPayment(ptrs, in.Amount)
		if err != nil {
			return err
		}
		for _, a := range alloc.Allocations {
			share := in
			share.Amount = a.Amount
			if err := applyPayment(tx, a.Invoice, share, now); err != nil {
				return err
			}
			result.Invoices = append(result.Invoices, *a.Invoice)
		}

		ids := make([]string, 0, len(customers))
		for id := range customers {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if _, err := refreshBalance(tx, id); err != nil {
				return err
			}
		}
		result.Allocated, result.Unallocated = alloc.Allocated, alloc.Unallocated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelInvoice cancels an unpaid invoice that has no payments.
func (s *gormStore) CancelInvoice(ctx context.Context, id string, now time.Time) (*model.Invoice, error) {
	var inv *model.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if inv, err = loadInvoice(tx, id); err != nil {
			return err
		}
		prevStatus := inv.Status
		if err := billing.CancelInvoice(inv, now); err != nil {
			return err
		}
		res := tx.Model(&model.Invoice{}).
			Where("id = ? AND status = ? AND paid_amount = 0", inv.ID, prevStatus).
			Updates(map[string]any{"status": inv.Status, "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to cancel invoice %s: %w", inv.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("invoice %s: %w", inv.ID, ErrConflict)
		}
		if _, err := refreshBalance(tx, inv.CustomerID); err != nil {
			return err
		}
		return appendOp(tx, model.OpInvoiceCancelled, inv.ID, now, "Invoice %s cancelled", inv.InvoiceNumber)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}
