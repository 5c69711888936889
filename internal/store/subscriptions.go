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

// CreateSubscription replaces the customer's active plan, issues its invoice
// and sets the customer type.
func (s *gormStore) CreateSubscription(ctx context.Context, in SubscriptionInput, now time.Time) (*model.Subscription, error) {
	now = now.UTC()
	days, ok := billing.PlanDays(in.PlanType)
	if !ok {
		return nil, invalid("unknown plan type %q", in.PlanType)
	}
	if in.Price < 0 {
		return nil, billing.ErrInvalidAmount
	}
	start := in.StartDate.UTC()
	if in.StartDate.IsZero() {
		start = now
	}

	var sub *model.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		if err := tx.First(&customer, "id = ?", in.CustomerID).Error; err != nil {
			return notFound(err, "customer", in.CustomerID)
		}
		settings, err := s.loadSettings(tx)
		if err != nil {
			return err
		}

		if err := tx.Model(&model.Subscription{}).
			Where("customer_id = ? AND status = ?", customer.ID, model.SubscriptionActive).
			Updates(map[string]any{"status": model.SubscriptionCancelled, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("failed to deactivate previous plans: %w", err)
		}

		inv := billing.NewManualInvoice(&customer, model.InvoiceSale, model.LineSubscription,
			fmt.Sprintf("Subscription: %s Plan", in.PlanType), in.Price, now, settings)
		if err := tx.Create(inv).Error; err != nil {
			return fmt.Errorf("failed to create subscription invoice: %w", err)
		}

		sub = &model.Subscription{
			BaseModel:    model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			PlanType:     in.PlanType,
			Price:        in.Price,
			StartDate:    start,
			EndDate:      start.AddDate(0, 0, days),
			Status:       model.SubscriptionActive,
			InvoiceID:    &inv.ID,
		}
		if err := tx.Create(sub).Error; err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}
		if err := tx.Model(&model.Customer{}).Where("id = ?", customer.ID).
			Update("customer_type", model.CustomerType(in.PlanType)).Error; err != nil {
			return fmt.Errorf("failed to update customer type: %w", err)
		}
		if _, err := refreshBalance(tx, customer.ID); err != nil {
			return err
		}
		if err := appendOp(tx, model.OpInvoiceCreated, inv.ID, now, "Invoice %s created for %s", inv.InvoiceNumber, customer.Name); err != nil {
			return err
		}
		return appendOp(tx, model.OpSubscriptionCreated, sub.ID, now, "%s subscribed to the %s plan", customer.Name, in.PlanType)
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// resetCustomerType sets the customer back to visitor when no active plan remains.
func resetCustomerType(tx *gorm.DB, customerID string) error {
	var active int64
	if err := tx.Model(&model.Subscription{}).
		Where("customer_id = ? AND status = ?", customerID, model.SubscriptionActive).
		Count(&active).Error; err != nil {
		return fmt.Errorf("failed to count active plans: %w", err)
	}
	if active > 0 {
		return nil
	}
	if err := tx.Model(&model.Customer{}).Where("id = ?", customerID).
		Update("customer_type", model.CustomerVisitor).Error; err != nil {
		return fmt.Errorf("failed to reset customer type: %w", err)
	}
	return nil
}

// CancelSubscription ends an active plan. If its invoice was never paid the
// invoice is cancelled instead of refunding. Otherwise the unused share, capped
// at what was paid, is refunded to the balance or in cash as requested.
func (s *gormStore) CancelSubscription(ctx context.Context, id string, refund RefundMethod, now time.Time) (*model.Subscription, error) {
	now = now.UTC()
	switch refund {
	case RefundNone, RefundBalance, RefundCash:
	default:
		return nil, invalid("unknown refund method %q", refund)
	}

	var sub model.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, "id = ?", id).Error; err != nil {
			return notFound(err, "subscription", id)
		}
		if sub.Status != model.SubscriptionActive {
			return invalid("subscription %s is %s", id, sub.Status)
		}
		amount := billing.ProratedRefund(&sub, now)

		res := tx.Model(&model.Subscription{}).
			Where("id = ? AND status = ?", sub.ID, model.SubscriptionActive).
			Updates(map[string]any{"status": model.SubscriptionCancelled, "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to cancel subscription %s: %w", sub.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("subscription %s: %w", sub.ID, ErrConflict)
		}
		sub.Status = model.SubscriptionCancelled
		sub.UpdatedAt = now

		if sub.InvoiceID != nil {
			inv, err := loadInvoice(tx, *sub.InvoiceID)
			if err != nil {
				return err
			}
			if !billing.IsFinalized(inv) && inv.PaidAmount == 0 {
				if err := billing.CancelInvoice(inv, now); err != nil {
					return err
				}
				if err := tx.Model(&model.Invoice{}).Where("id = ?", inv.ID).
					Updates(map[string]any{"status": inv.Status, "updated_at": now}).Error; err != nil {
					return fmt.Errorf("failed to cancel invoice %s: %w", inv.ID, err)
				}
				amount = 0
			} else if amount > inv.PaidAmount {
				amount = inv.PaidAmount
			}
		}

		if refund != RefundNone && amount > 0 {
			if err := s.refund(tx, &sub, refund, amount, now); err != nil {
				return err
			}
		}
		if err := resetCustomerType(tx, sub.CustomerID); err != nil {
			return err
		}
		if _, err := refreshBalance(tx, sub.CustomerID); err != nil {
			return err
		}
		return appendOp(tx, model.OpSubscriptionCancelled, sub.ID, now, "%s plan of %s cancelled", sub.PlanType, sub.CustomerName)
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) refund(tx *gorm.DB, sub *model.Subscription, method RefundMethod, amount int64, now time.Time) error {
	var customer model.Customer
	if err := tx.First(&customer, "id = ?", sub.CustomerID).Error; err != nil {
		return notFound(err, "customer", sub.CustomerID)
	}
	settings, err := s.loadSettings(tx)
	if err != nil {
		return err
	}
	inv := billing.NewManualInvoice(&customer, model.InvoiceRefund, model.LineManual,
		fmt.Sprintf("Refund: %s Plan (%s)", sub.PlanType, method), amount, now, settings)
	if err := tx.Create(inv).Error; err != nil {
		return fmt.Errorf("failed to create refund invoice: %w", err)
	}
	if method == RefundBalance {
		if err := tx.Create(newEntry(customer.ID, model.EntryRefund, amount, &inv.ID, nil, now)).Error; err != nil {
			return fmt.Errorf("failed to credit refund: %w", err)
		}
	}
	return appendOp(tx, model.OpInvoiceCreated, inv.ID, now, "Refund of %s issued to %s", money.Format(amount), customer.Name)
}

// ChangeSubscriptionPlan moves an active plan to another length. The end date
// is recomputed from the original start; the price and invoice are kept.
func (s *gormStore) ChangeSubscriptionPlan(ctx context.Context, id string, plan model.PlanType, now time.Time) (*model.Subscription, error) {
	now = now.UTC()
	days, ok := billing.PlanDays(plan)
	if !ok {
		return nil, invalid("unknown plan type %q", plan)
	}

	var sub model.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, "id = ?", id).Error; err != nil {
			return notFound(err, "subscription", id)
		}
		if sub.Status != model.SubscriptionActive {
			return invalid("subscription %s is %s", id, sub.Status)
		}
		if sub.PlanType == plan {
			return nil
		}
		prev := sub.PlanType
		end := sub.StartDate.AddDate(0, 0, days)

		res := tx.Model(&model.Subscription{}).
			Where("id = ? AND status = ? AND plan_type = ?", sub.ID, model.SubscriptionActive, prev).
			Updates(map[string]any{"plan_type": plan, "end_date": end, "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to change plan of subscription %s: %w", sub.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("subscription %s: %w", sub.ID, ErrConflict)
		}
		sub.PlanType, sub.EndDate, sub.UpdatedAt = plan, end, now

		if err := tx.Model(&model.Customer{}).Where("id = ?", sub.CustomerID).
			Update("customer_type", model.CustomerType(plan)).Error; err != nil {
			return fmt.Errorf("failed to update customer type: %w", err)
		}
		return appendOp(tx, model.OpSubscriptionChanged, sub.ID, now, "%s moved from the %s to the %s plan", sub.CustomerName, prev, plan)
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ReactivateSubscription renews an expired or cancelled plan from now for a
// full period and issues a renewal invoice at the plan's price. It fails when
// the customer already has another active plan.
func (s *gormStore) ReactivateSubscription(ctx context.Context, id string, now time.Time) (*model.Subscription, error) {
	now = now.UTC()
	var sub model.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&sub, "id = ?", id).Error; err != nil {
			return notFound(err, "subscription", id)
		}
		if sub.Status == model.SubscriptionActive {
			return invalid("subscription %s is already active", id)
		}
		days, ok := billing.PlanDays(sub.PlanType)
		if !ok {
			return invalid("unknown plan type %q", sub.PlanType)
		}
		var active int64
		if err := tx.Model(&model.Subscription{}).
			Where("customer_id = ? AND status = ?", sub.CustomerID, model.SubscriptionActive).
			Count(&active).Error; err != nil {
			return fmt.Errorf("failed to count active plans: %w", err)
		}
		if active > 0 {
			return invalid("customer %s already has an active plan", sub.CustomerID)
		}

		var customer model.Customer
		if err := tx.First(&customer, "id = ?", sub.CustomerID).Error; err != nil {
			return notFound(err, "customer", sub.CustomerID)
		}
		settings, err := s.loadSettings(tx)
		if err != nil {
			return err
		}
		inv := billing.NewManualInvoice(&customer, model.InvoiceSale, model.LineSubscription,
			fmt.Sprintf("Subscription Renewal: %s Plan", sub.PlanType), sub.Price, now, settings)
		if err := tx.Create(inv).Error; err != nil {
			return fmt.Errorf("failed to create renewal invoice: %w", err)
		}

		end := now.AddDate(0, 0, days)
		res := tx.Model(&model.Subscription{}).
			Where("id = ? AND status = ?", sub.ID, sub.Status).
			Updates(map[string]any{
				"status":     model.SubscriptionActive,
				"start_date": now,
				"end_date":   end,
				"invoice_id": inv.ID,
				"updated_at": now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to reactivate subscription %s: %w", sub.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("subscription %s: %w", sub.ID, ErrConflict)
		}
		sub.Status, sub.StartDate, sub.EndDate, sub.InvoiceID, sub.UpdatedAt = model.SubscriptionActive, now, end, &inv.ID, now

		if err := tx.Model(&model.Customer{}).Where("id = ?", customer.ID).
			Update("customer_type", model.CustomerType(sub.PlanType)).Error; err != nil {
			return fmt.Errorf("failed to update customer type: %w", err)
		}
		if _, err := refreshBalance(tx, customer.ID); err != nil {
			return err
		}
		if err := appendOp(tx, model.OpInvoiceCreated, inv.ID, now, "Invoice %s created for %s", inv.InvoiceNumber, customer.Name); err != nil {
			return err
		}
		return appendOp(tx, model.OpSubscriptionRenewed, sub.ID, now, "%s plan of %s renewed", sub.PlanType, customer.Name)
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) ListSubscriptions(ctx context.Context) ([]model.Subscription, error) {
	var list []model.Subscription
	if err := s.db.WithContext(ctx).Order("created_at DESC, id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return list, nil
}

// ExpireSubscriptions marks every active plan past its end date as expired.
// It is idempotent and safe to run concurrently with itself.
func (s *gormStore) ExpireSubscriptions(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	var expired int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var due []model.Subscription
		if err := tx.Where("status = ? AND end_date <= ?", model.SubscriptionActive, now).
			Find(&due).Error; err != nil {
			return fmt.Errorf("failed to find expiring subscriptions: %w", err)
		}
		for _, sub := range due {
			res := tx.Model(&model.Subscription{}).
				Where("id = ? AND status = ?", sub.ID, model.SubscriptionActive).
				Updates(map[string]any{"status": model.SubscriptionExpired, "updated_at": now})
			if res.Error != nil {
				return fmt.Errorf("failed to expire subscription %s: %w", sub.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				continue
			}
			expired++
			if err := resetCustomerType(tx, sub.CustomerID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}
