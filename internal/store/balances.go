package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"venue-billing-backend/internal/billing"
	"venue-billing-backend/internal/model"
	"venue-billing-backend/internal/money"
)

func newEntry(customerID string, kind model.BalanceEntryKind, amount int64, invoiceID *string, notes *string, now time.Time) *model.BalanceEntry {
	return &model.BalanceEntry{
		BaseModel:  model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		CustomerID: customerID,
		Kind:       kind,
		Amount:     amount,
		InvoiceID:  invoiceID,
		Notes:      notes,
	}
}

// DepositBalance credits the customer.
func (s *gormStore) DepositBalance(ctx context.Context, customerID string, amount int64, notes *string, now time.Time) (*model.Customer, error) {
	if amount <= 0 {
		return nil, billing.ErrInvalidAmount
	}
	var customer model.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&customer, "id = ?", customerID).Error; err != nil {
			return notFound(err, "customer", customerID)
		}
		if err := tx.Create(newEntry(customerID, model.EntryDeposit, amount, nil, notes, now)).Error; err != nil {
			return fmt.Errorf("failed to record deposit: %w", err)
		}
		if _, err := refreshBalance(tx, customerID); err != nil {
			return err
		}
		if err := tx.First(&customer, "id = ?", customerID).Error; err != nil {
			return fmt.Errorf("failed to reload customer %s: %w", customerID, err)
		}
		return appendOp(tx, model.OpBalanceDeposit, customerID, now, "Deposit of %s for %s", money.Format(amount), customer.Name)
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// WithdrawBalance pays credit out to the customer and issues a withdrawal invoice.
// It fails with billing.ErrInsufficientBalance only when a debt limit is configured.
func (s *gormStore) WithdrawBalance(ctx context.Context, customerID string, amount int64, notes *string, now time.Time) (*model.Invoice, error) {
	var inv *model.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		if err := tx.First(&customer, "id = ?", customerID).Error; err != nil {
			return notFound(err, "customer", customerID)
		}
		settings, err := s.loadSettings(tx)
		if err != nil {
			return err
		}
		balance, err := customerBalance(tx, customerID)
		if err != nil {
			return err
		}
		if err := billing.CheckWithdrawal(balance, amount, settings.Balance.DebtLimit); err != nil {
			return err
		}

		inv = billing.NewManualInvoice(&customer, model.InvoiceWithdrawal, model.LineManual, "Balance withdrawal", amount, now, settings)
		inv.Notes = notes
		if err := tx.Create(inv).Error; err != nil {
			return fmt.Errorf("failed to create withdrawal invoice: %w", err)
		}
		if err := tx.Create(newEntry(customerID, model.EntryWithdrawal, -amount, &inv.ID, notes, now)).Error; err != nil {
			return fmt.Errorf("failed to record withdrawal: %w", err)
		}
		if _, err := refreshBalance(tx, customerID); err != nil {
			return err
		}
		return appendOp(tx, model.OpBalanceWithdrawal, customerID, now, "Withdrawal of %s for %s", money.Format(amount), customer.Name)
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// RecomputeBalances re-derives every cached balance and returns how many
// changed. Running it twice in a row changes nothing the second time.
func (s *gormStore) RecomputeBalances(ctx context.Context) (int, error) {
	var changed int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&model.Customer{}).Order("id").Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to list customers: %w", err)
		}
		for _, id := range ids {
			ok, err := refreshBalance(tx, id)
			if err != nil {
				return err
			}
			if ok {
				changed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}
