package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"venue-billing-backend/internal/billing"
	"venue-billing-backend/internal/model"
)

func orderConsumptions(db *gorm.DB) *gorm.DB {
	return db.Order("added_at, id")
}

// loadSession reads an open session with its lines.
func loadSession(tx *gorm.DB, id string) (*model.Session, error) {
	var session model.Session
	err := tx.Preload("Consumptions", orderConsumptions).First(&session, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session %s: %w", id, billing.ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return &session, nil
}

// lockSession loads an open session for a write. On postgres the row stays
// locked until the transaction ends, so edits to one session's lines run one
// after another. SQLite admits a single writer already.
func lockSession(tx *gorm.DB, id string) (*model.Session, error) {
	if tx.Dialector.Name() == "postgres" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return loadSession(tx, id)
}

// StartSession claims the resource and opens a session. The claim is a single
// conditional update, so of two concurrent starts on one resource only one commits.
func (s *gormStore) StartSession(ctx context.Context, customerID, resourceID string, now time.Time) (*model.Session, error) {
	now = now.UTC()
	var session *model.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var customer model.Customer
		if err := tx.First(&customer, "id = ?", customerID).Error; err != nil {
			return notFound(err, "customer", customerID)
		}

		res := tx.Model(&model.Resource{}).
			Where("id = ? AND is_available = ?", resourceID, true).
			Updates(map[string]any{"is_available": false, "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to claim resource %s: %w", resourceID, res.Error)
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&model.Resource{}).Where("id = ?", resourceID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to look up resource %s: %w", resourceID, err)
			}
			if count == 0 {
				return fmt.Errorf("resource %s: %w", resourceID, ErrNotFound)
			}
			return billing.ErrResourceUnavailable
		}

		var resource model.Resource
		if err := tx.First(&resource, "id = ?", resourceID).Error; err != nil {
			return notFound(err, "resource", resourceID)
		}

		var covered int64
		if err := tx.Model(&model.Subscription{}).
			Where("customer_id = ? AND status = ? AND start_date <= ? AND end_date > ?",
				customerID, model.SubscriptionActive, now, now).
			Count(&covered).Error; err != nil {
			return fmt.Errorf("failed to check subscriptions: %w", err)
		}

		session = &model.Session{
			BaseModel:        model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
			CustomerID:       customer.ID,
			CustomerName:     customer.Name,
			ResourceID:       resource.ID,
			ResourceName:     resource.Name,
			ResourceRate:     resource.RatePerHour,
			ResourceMaxPrice: resource.MaxPrice,
			StartedAt:        now,
			IsSubscribed:     covered > 0,
		}
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		return appendOp(tx, model.OpSessionStart, session.ID, now, "Session started: %s on %s", customer.Name, resource.Name)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *gormStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	return loadSession(s.db.WithContext(ctx), id)
}

func (s *gormStore) ListSessions(ctx context.Context) ([]model.Session, error) {
	var list []model.Session
	if err := s.db.WithContext(ctx).Preload("Consumptions", orderConsumptions).
		Order("started_at, id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return list, nil
}

// persistLedgerChange writes a line change, the matching stock delta and the session total.
func persistLedgerChange(tx *gorm.DB, session *model.Session, change billing.LedgerChange, now time.Time) error {
	reason := model.MovementSessionRelease
	if change.Stock.Delta < 0 {
		reason = model.MovementSessionReserve
	}
	if err := applyStockDelta(tx, change.Stock.ItemID, change.Stock.Delta, &session.ID, reason, nil, now); err != nil {
		return err
	}

	var err error
	switch {
	case change.Created:
		err = tx.Create(&change.Line).Error
	case change.Removed:
		err = tx.Delete(&model.InventoryConsumption{}, "id = ?", change.Line.ID).Error
	default:
		// Relative to the stored quantity, so the line moves by exactly what stock moved.
		res := tx.Model(&model.InventoryConsumption{}).
			Where("id = ? AND quantity - ? > 0", change.Line.ID, change.Stock.Delta).
			Updates(map[string]any{
				"quantity":   gorm.Expr("quantity - ?", change.Stock.Delta),
				"updated_at": now,
			})
		if err = res.Error; err == nil && res.RowsAffected == 0 {
			return fmt.Errorf("consumption %s: %w", change.Line.ID, ErrConflict)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to save consumption line: %w", err)
	}

	if err := tx.Model(&model.Session{}).Where("id = ?", session.ID).
		Updates(map[string]any{"inventory_total": session.InventoryTotal, "updated_at": now}).Error; err != nil {
		return fmt.Errorf("failed to update session total: %w", err)
	}
	return nil
}

// AddSessionItem reserves stock for an open session.
func (s *gormStore) AddSessionItem(ctx context.Context, sessionID, itemID string, quantity int, now time.Time) (*model.Session, error) {
	var session *model.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = lockSession(tx, sessionID); err != nil {
			return err
		}
		var item model.InventoryItem
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			return notFound(err, "inventory item", itemID)
		}
		change, err := billing.AddItem(session, &item, quantity, now)
		if err != nil {
			return err
		}
		if err := persistLedgerChange(tx, session, change, now); err != nil {
			return err
		}
		return appendOp(tx, model.OpInventoryAdd, session.ID, now, "%d x %s added to %s's session", quantity, item.Name, session.CustomerName)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// UpdateSessionItem sets a line's quantity; zero removes it.
func (s *gormStore) UpdateSessionItem(ctx context.Context, sessionID, consumptionID string, quantity int, now time.Time) (*model.Session, error) {
	var session *model.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = lockSession(tx, sessionID); err != nil {
			return err
		}
		change, err := billing.UpdateItem(session, consumptionID, quantity)
		if err != nil {
			return err
		}
		if err := persistLedgerChange(tx, session, change, now); err != nil {
			return err
		}
		if change.Removed {
			return appendOp(tx, model.OpInventoryRemove, session.ID, now, "%s removed from %s's session", change.Line.ItemName, session.CustomerName)
		}
		return appendOp(tx, model.OpInventoryUpdate, session.ID, now, "%s set to %d in %s's session", change.Line.ItemName, quantity, session.CustomerName)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// RemoveSessionItem deletes a line and releases its stock.
func (s *gormStore) RemoveSessionItem(ctx context.Context, sessionID, consumptionID string, now time.Time) (*model.Session, error) {
	var session *model.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = lockSession(tx, sessionID); err != nil {
			return err
		}
		change, err := billing.RemoveItem(session, consumptionID)
		if err != nil {
			return err
		}
		if err := persistLedgerChange(tx, session, change, now); err != nil {
			return err
		}
		return appendOp(tx, model.OpInventoryRemove, session.ID, now, "%s removed from %s's session", change.Line.ItemName, session.CustomerName)
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// EndSession converts the session into an invoice, archives it, frees the
// resource and deletes the open row, all in one transaction. A second call
// for the same session fails with billing.ErrSessionNotFound.
func (s *gormStore) EndSession(ctx context.Context, sessionID string, now time.Time) (*model.Invoice, error) {
	var invoice *model.Invoice
	now = now.UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := lockSession(tx, sessionID)
		if err != nil {
			return err
		}
		settings, err := s.loadSettings(tx)
		if err != nil {
			return err
		}
		var customer model.Customer
		if err := tx.Select("id", "phone").First(&customer, "id = ?", session.CustomerID).Error; err != nil {
			return notFound(err, "customer", session.CustomerID)
		}

		inv, charge := billing.BuildSessionInvoice(session, customer.Phone, now, settings)
		if err := tx.Create(inv).Error; err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		history := model.SessionHistory{
			ID:              session.ID,
			CustomerID:      session.CustomerID,
			CustomerName:    session.CustomerName,
			ResourceID:      session.ResourceID,
			ResourceName:    session.ResourceName,
			ResourceRate:    session.ResourceRate,
			IsSubscribed:    session.IsSubscribed,
			StartedAt:       session.StartedAt,
			EndedAt:         now,
			DurationMinutes: charge.Minutes,
			SessionCost:     charge.SessionCost,
			InventoryTotal:  charge.InventorySubtotal,
			TotalAmount:     charge.Total,
			InvoiceID:       &inv.ID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to archive session %s: %w", session.ID, err)
		}

		if err := tx.Where("session_id = ?", session.ID).Delete(&model.InventoryConsumption{}).Error; err != nil {
			return fmt.Errorf("failed to delete consumptions of session %s: %w", session.ID, err)
		}
		res := tx.Delete(&model.Session{}, "id = ?", session.ID)
		if res.Error != nil {
			return fmt.Errorf("failed to delete session %s: %w", session.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("session %s: %w", session.ID, billing.ErrSessionNotFound)
		}

		if err := tx.Model(&model.Resource{}).Where("id = ?", session.ResourceID).
			Updates(map[string]any{"is_available": true, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("failed to release resource %s: %w", session.ResourceID, err)
		}
		if _, err := refreshBalance(tx, session.CustomerID); err != nil {
			return err
		}

		if err := appendOp(tx, model.OpSessionEnd, session.ID, now, "Session ended: %s on %s (%d min)", session.CustomerName, session.ResourceName, charge.Minutes); err != nil {
			return err
		}
		invoice = inv
		return appendOp(tx, model.OpInvoiceCreated, inv.ID, now, "Invoice %s created for %s", inv.InvoiceNumber, inv.CustomerName)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}
