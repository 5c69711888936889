package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"venue-billing-backend/internal/billing"
	"venue-billing-backend/internal/model"
	"venue-billing-backend/internal/parse"
)

// CreateCustomer validates and registers a visitor.
func (s *gormStore) CreateCustomer(ctx context.Context, in CustomerInput, now time.Time) (*model.Customer, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("customer name is required")
	}
	phone, err := parse.Phone(in.Phone)
	if err != nil {
		return nil, invalid("%v", err)
	}

	c := &model.Customer{
		BaseModel:    model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		HumanID:      billing.NewHumanID(),
		Name:         name,
		Phone:        phone,
		Email:        in.Email,
		CustomerType: model.CustomerVisitor,
		Notes:        in.Notes,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return fmt.Errorf("failed to create customer: %w", err)
		}
		return appendOp(tx, model.OpCustomerCreated, c.ID, now, "New customer: %s", c.Name)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *gormStore) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "customer", id)
	}
	return &c, nil
}

func (s *gormStore) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	var list []model.Customer
	if err := s.db.WithContext(ctx).Order("name, id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return list, nil
}

// GetCustomersPaginated pages customers newest first. Search matches name,
// phone or human ID.
func (s *gormStore) GetCustomersPaginated(ctx context.Context, q PageQuery) (*Page[model.Customer], error) {
	q = q.normalize()
	query := s.db.WithContext(ctx).Model(&model.Customer{})
	if term := strings.TrimSpace(q.Search); term != "" {
		like := "%" + term + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR human_id LIKE ?", like, like, like)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	var list []model.Customer
	if err := query.Order("created_at DESC, id").Offset(q.offset()).Limit(q.PageSize).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to page customers: %w", err)
	}
	return newPage(list, total, q), nil
}

// UpdateCustomer edits contact details. Name and phone are validated like
// on registration.
func (s *gormStore) UpdateCustomer(ctx context.Context, id string, in CustomerUpdate, now time.Time) (*model.Customer, error) {
	now = now.UTC()
	updates := map[string]any{"updated_at": now}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("customer name is required")
		}
		updates["name"] = name
	}
	if in.Phone != nil {
		phone, err := parse.Phone(*in.Phone)
		if err != nil {
			return nil, invalid("%v", err)
		}
		updates["phone"] = phone
	}
	if in.Email != nil {
		updates["email"] = in.Email
	}
	if in.Notes != nil {
		updates["notes"] = in.Notes
	}

	var c model.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return notFound(err, "customer", id)
		}
		if err := tx.Model(&model.Customer{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update customer %s: %w", id, err)
		}
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to reload customer %s: %w", id, err)
		}
		return appendOp(tx, model.OpCustomerUpdated, c.ID, now, "Customer %s updated", c.Name)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCustomer removes a customer with nothing left to settle: no open
// session, no active plan, no unsettled invoice and a zero balance.
// Invoices and balance entries stay; invoices carry the customer's name.
func (s *gormStore) DeleteCustomer(ctx context.Context, id string, now time.Time) error {
	now = now.UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Customer
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			return notFound(err, "customer", id)
		}
		checks := []struct {
			what  string
			table any
			where string
			args  []any
		}{
			{"an open session", &model.Session{}, "customer_id = ?", []any{id}},
			{"an active plan", &model.Subscription{}, "customer_id = ? AND status = ?", []any{id, model.SubscriptionActive}},
			{"unsettled invoices", &model.Invoice{}, "customer_id = ? AND status NOT IN ?",
				[]any{id, []model.InvoiceStatus{model.InvoicePaid, model.InvoiceCancelled}}},
		}
		for _, chk := range checks {
			var n int64
			if err := tx.Model(chk.table).Where(chk.where, chk.args...).Count(&n).Error; err != nil {
				return fmt.Errorf("failed to check %s of customer %s: %w", chk.what, id, err)
			}
			if n > 0 {
				return fmt.Errorf("customer %s has %s: %w", id, chk.what, ErrInUse)
			}
		}
		balance, err := customerBalance(tx, id)
		if err != nil {
			return err
		}
		if balance != 0 {
			return fmt.Errorf("customer %s has a balance of %d: %w", id, balance, ErrInUse)
		}
		if err := tx.Delete(&model.Customer{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete customer %s: %w", id, err)
		}
		return appendOp(tx, model.OpCustomerDeleted, id, now, "Customer %s deleted", c.Name)
	})
}

// CheckCustomerDuplicate returns a customer with the same name or phone, or
// nil when there is none. An unparseable phone is matched by name only.
func (s *gormStore) CheckCustomerDuplicate(ctx context.Context, name, phone string) (*model.Customer, error) {
	name = strings.TrimSpace(name)
	q := s.db.WithContext(ctx).Model(&model.Customer{})
	normalized, err := parse.Phone(phone)
	switch {
	case name != "" && err == nil:
		q = q.Where("name = ? OR phone = ?", name, normalized)
	case name != "":
		q = q.Where("name = ?", name)
	case err == nil:
		q = q.Where("phone = ?", normalized)
	default:
		return nil, invalid("name or phone is required")
	}
	var list []model.Customer
	if err := q.Order("created_at, id").Limit(1).Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to check for duplicate customers: %w", err)
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

func (s *gormStore) CreateResource(ctx context.Context, in ResourceInput, now time.Time) (*model.Resource, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("resource name is required")
	}
	if in.RatePerHour < 0 || in.MaxPrice < 0 {
		return nil, invalid("rate and max price must not be negative")
	}
	r := &model.Resource{
		BaseModel:    model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:         name,
		ResourceType: strings.TrimSpace(in.ResourceType),
		RatePerHour:  in.RatePerHour,
		MaxPrice:     in.MaxPrice,
		IsAvailable:  true,
	}
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return r, nil
}

func (s *gormStore) ListResources(ctx context.Context) ([]model.Resource, error) {
	var list []model.Resource
	if err := s.db.WithContext(ctx).Order("name, id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	return list, nil
}

// UpdateResource changes a resource's catalog fields. Open sessions keep the
// name and rates they snapshotted when they started.
func (s *gormStore) UpdateResource(ctx context.Context, id string, in ResourceUpdate, now time.Time) (*model.Resource, error) {
	now = now.UTC()
	updates := map[string]any{"updated_at": now}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("resource name is required")
		}
		updates["name"] = name
	}
	if in.ResourceType != nil {
		updates["resource_type"] = strings.TrimSpace(*in.ResourceType)
	}
	if in.RatePerHour != nil {
		if *in.RatePerHour < 0 {
			return nil, invalid("rate must not be negative")
		}
		updates["rate_per_hour"] = *in.RatePerHour
	}
	if in.MaxPrice != nil {
		if *in.MaxPrice < 0 {
			return nil, invalid("max price must not be negative")
		}
		updates["max_price"] = *in.MaxPrice
	}

	var r model.Resource
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&r, "id = ?", id).Error; err != nil {
			return notFound(err, "resource", id)
		}
		if err := tx.Model(&model.Resource{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update resource %s: %w", id, err)
		}
		if err := tx.First(&r, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to reload resource %s: %w", id, err)
		}
		return appendOp(tx, model.OpResourceUpdated, r.ID, now, "Resource %s updated", r.Name)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteResource removes a free resource. The delete is guarded on
// is_available, the same flag StartSession claims, so a resource in use
// fails with billing.ErrResourceUnavailable.
func (s *gormStore) DeleteResource(ctx context.Context, id string, now time.Time) error {
	now = now.UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r model.Resource
		if err := tx.First(&r, "id = ?", id).Error; err != nil {
			return notFound(err, "resource", id)
		}
		var open int64
		if err := tx.Model(&model.Session{}).Where("resource_id = ?", id).Count(&open).Error; err != nil {
			return fmt.Errorf("failed to check sessions on resource %s: %w", id, err)
		}
		if open > 0 {
			return fmt.Errorf("resource %s: %w", id, billing.ErrResourceUnavailable)
		}
		res := tx.Where("id = ? AND is_available = ?", id, true).Delete(&model.Resource{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete resource %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("resource %s: %w", id, billing.ErrResourceUnavailable)
		}
		return appendOp(tx, model.OpResourceDeleted, id, now, "Resource %s deleted", r.Name)
	})
}

func (s *gormStore) CreateInventoryItem(ctx context.Context, in InventoryInput, now time.Time) (*model.InventoryItem, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("item name is required")
	}
	if in.Price < 0 || in.Quantity < 0 || in.MinStock < 0 {
		return nil, invalid("price, quantity and min stock must not be negative")
	}
	item := &model.InventoryItem{
		BaseModel: model.BaseModel{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now},
		Name:      name,
		Category:  strings.TrimSpace(in.Category),
		Price:     in.Price,
		Quantity:  in.Quantity,
		MinStock:  in.MinStock,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return fmt.Errorf("failed to create inventory item: %w", err)
		}
		if item.Quantity == 0 {
			return nil
		}
		note := "initial stock"
		return tx.Create(&model.StockMovement{
			ID:              uuid.NewString(),
			InventoryItemID: item.ID,
			Delta:           item.Quantity,
			Reason:          model.MovementAdjustment,
			Note:            &note,
			CreatedAt:       now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *gormStore) ListInventory(ctx context.Context) ([]model.InventoryItem, error) {
	var list []model.InventoryItem
	if err := s.db.WithContext(ctx).Order("name, id").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return list, nil
}

// UpdateInventory changes an item's catalog fields. Lines already on open
// sessions keep the price they were added at.
func (s *gormStore) UpdateInventory(ctx context.Context, id string, in InventoryUpdate, now time.Time) (*model.InventoryItem, error) {
	now = now.UTC()
	updates := map[string]any{"updated_at": now}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("item name is required")
		}
		updates["name"] = name
	}
	if in.Category != nil {
		updates["category"] = strings.TrimSpace(*in.Category)
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, invalid("price must not be negative")
		}
		updates["price"] = *in.Price
	}
	if in.MinStock != nil {
		if *in.MinStock < 0 {
			return nil, invalid("min stock must not be negative")
		}
		updates["min_stock"] = *in.MinStock
	}

	var item model.InventoryItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return notFound(err, "inventory item", id)
		}
		if err := tx.Model(&model.InventoryItem{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update inventory item %s: %w", id, err)
		}
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to reload inventory item %s: %w", id, err)
		}
		return appendOp(tx, model.OpItemUpdated, item.ID, now, "Item %s updated", item.Name)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteInventory removes a catalog item that no open session is consuming.
// Its stock movements stay as audit.
func (s *gormStore) DeleteInventory(ctx context.Context, id string, now time.Time) error {
	now = now.UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.InventoryItem
		if err := tx.First(&item, "id = ?", id).Error; err != nil {
			return notFound(err, "inventory item", id)
		}
		var lines int64
		if err := tx.Model(&model.InventoryConsumption{}).Where("inventory_item_id = ?", id).Count(&lines).Error; err != nil {
			return fmt.Errorf("failed to check sessions using item %s: %w", id, err)
		}
		if lines > 0 {
			return fmt.Errorf("inventory item %s is on an open session: %w", id, ErrInUse)
		}
		if err := tx.Delete(&model.InventoryItem{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete inventory item %s: %w", id, err)
		}
		return appendOp(tx, model.OpItemDeleted, id, now, "Item %s deleted", item.Name)
	})
}

// AdjustInventory restocks (delta > 0) or writes off (delta < 0) stock.
func (s *gormStore) AdjustInventory(ctx context.Context, itemID string, delta int, note *string, now time.Time) (*model.InventoryItem, error) {
	if delta == 0 {
		return nil, billing.ErrInvalidQuantity
	}
	var item model.InventoryItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			return notFound(err, "inventory item", itemID)
		}
		if err := applyStockDelta(tx, itemID, delta, nil, model.MovementAdjustment, note, now); err != nil {
			return err
		}
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			return fmt.Errorf("failed to reload inventory item %s: %w", itemID, err)
		}
		return appendOp(tx, model.OpStockAdjusted, itemID, now, "Stock of %s adjusted by %+d (now %d)", item.Name, delta, item.Quantity)
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// applyStockDelta changes an item's quantity in one guarded statement and
// records the movement. It never reads, computes, then writes the quantity.
func applyStockDelta(tx *gorm.DB, itemID string, delta int, sessionID *string, reason model.MovementReason, note *string, now time.Time) error {
	if delta == 0 {
		return nil
	}
	res := tx.Model(&model.InventoryItem{}).
		Where("id = ? AND quantity + ? >= 0", itemID, delta).
		Updates(map[string]any{
			"quantity":   gorm.Expr("quantity + ?", delta),
			"updated_at": now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update stock of %s: %w", itemID, res.Error)
	}
	if res.RowsAffected == 0 {
		return billing.ErrOutOfStock
	}
	if err := tx.Create(&model.StockMovement{
		ID:              uuid.NewString(),
		InventoryItemID: itemID,
		SessionID:       sessionID,
		Delta:           delta,
		Reason:          reason,
		Note:            note,
		CreatedAt:       now,
	}).Error; err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}
