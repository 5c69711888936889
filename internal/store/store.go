package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"venue-billing-backend/internal/billing"
	"venue-billing-backend/internal/model"
	"venue-billing-backend/internal/report"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("record was modified concurrently")
	ErrInvalidInput = errors.New("invalid input")
	ErrInUse        = errors.New("record is still in use")
)

// Store defines the interface for all database operations.
// Every compound operation runs in a single transaction.
type Store interface {
	CreateCustomer(ctx context.Context, in CustomerInput, now time.Time) (*model.Customer, error)
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	GetCustomersPaginated(ctx context.Context, q PageQuery) (*Page[model.Customer], error)
	UpdateCustomer(ctx context.Context, id string, in CustomerUpdate, now time.Time) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, id string, now time.Time) error
	CheckCustomerDuplicate(ctx context.Context, name, phone string) (*model.Customer, error)
	CreateResource(ctx context.Context, in ResourceInput, now time.Time) (*model.Resource, error)
	ListResources(ctx context.Context) ([]model.Resource, error)
	UpdateResource(ctx context.Context, id string, in ResourceUpdate, now time.Time) (*model.Resource, error)
	DeleteResource(ctx context.Context, id string, now time.Time) error
	CreateInventoryItem(ctx context.Context, in InventoryInput, now time.Time) (*model.InventoryItem, error)
	ListInventory(ctx context.Context) ([]model.InventoryItem, error)
	UpdateInventory(ctx context.Context, id string, in InventoryUpdate, now time.Time) (*model.InventoryItem, error)
	DeleteInventory(ctx context.Context, id string, now time.Time) error
	AdjustInventory(ctx context.Context, itemID string, delta int, note *string, now time.Time) (*model.InventoryItem, error)

	StartSession(ctx context.Context, customerID, resourceID string, now time.Time) (*model.Session, error)
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListSessions(ctx context.Context) ([]model.Session, error)
	AddSessionItem(ctx context.Context, sessionID, itemID string, quantity int, now time.Time) (*model.Session, error)
	UpdateSessionItem(ctx context.Context, sessionID, consumptionID string, quantity int, now time.Time) (*model.Session, error)
	RemoveSessionItem(ctx context.Context, sessionID, consumptionID string, now time.Time) (*model.Session, error)
	EndSession(ctx context.Context, sessionID string, now time.Time) (*model.Invoice, error)

	GetInvoice(ctx context.Context, id string) (*model.Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]model.Invoice, error)
	GetInvoicesPaginated(ctx context.Context, q PageQuery, status model.InvoiceStatus) (*Page[model.Invoice], error)
	RecordPayment(ctx context.Context, invoiceID string, in PaymentInput, now time.Time) (*model.Invoice, error)
	RecordBulkPayment(ctx context.Context, invoiceIDs []string, in PaymentInput, now time.Time) (*BulkPaymentResult, error)
	CancelInvoice(ctx context.Context, id string, now time.Time) (*model.Invoice, error)

	DepositBalance(ctx context.Context, customerID string, amount int64, notes *string, now time.Time) (*model.Customer, error)
	WithdrawBalance(ctx context.Context, customerID string, amount int64, notes *string, now time.Time) (*model.Invoice, error)
	RecomputeBalances(ctx context.Context) (int, error)

	CreateSubscription(ctx context.Context, in SubscriptionInput, now time.Time) (*model.Subscription, error)
	CancelSubscription(ctx context.Context, id string, refund RefundMethod, now time.Time) (*model.Subscription, error)
	ChangeSubscriptionPlan(ctx context.Context, id string, plan model.PlanType, now time.Time) (*model.Subscription, error)
	ReactivateSubscription(ctx context.Context, id string, now time.Time) (*model.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]model.Subscription, error)
	ExpireSubscriptions(ctx context.Context, now time.Time) (int, error)

	GetSettings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, settings model.Settings, now time.Time) error

	Snapshot(ctx context.Context) (*report.Snapshot, error)
	ListOperations(ctx context.Context, filter OperationFilter) ([]model.Operation, error)

	SavePushSubscription(ctx context.Context, sub *model.PushSubscription) error
	GetPushSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
	ListPushSubscriptions(ctx context.Context, topic string) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db       *gorm.DB
	defaults model.Settings
}

// NewGormStore creates a new GORM-backed store. defaults are returned by
// GetSettings until settings are first saved.
func NewGormStore(db *gorm.DB, defaults model.Settings) Store {
	return &gormStore{db: db, defaults: defaults}
}

// notFound translates gorm.ErrRecordNotFound into ErrNotFound.
func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %s: %w", what, id, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// appendOp writes one activity log row.
func appendOp(tx *gorm.DB, typ model.OperationType, refID string, now time.Time, format string, args ...any) error {
	op := model.Operation{
		ID:          uuid.NewString(),
		Type:        typ,
		Description: fmt.Sprintf(format, args...),
		Timestamp:   now,
	}
	if refID != "" {
		op.RefID = &refID
	}
	if err := tx.Create(&op).Error; err != nil {
		return fmt.Errorf("failed to append %s operation: %w", typ, err)
	}
	return nil
}

// loadSettings reads the stored settings or falls back to the defaults.
func (s *gormStore) loadSettings(tx *gorm.DB) (model.Settings, error) {
	var row model.AppSettings
	err := tx.Limit(1).Find(&row, "id = ?", 1).Error
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	if row.ID == 0 {
		return s.defaults, nil
	}
	return row.Data, nil
}

// customerBalance derives the balance from entries and invoices.
func customerBalance(tx *gorm.DB, customerID string) (int64, error) {
	var entries []model.BalanceEntry
	if err := tx.Select("amount").Where("customer_id = ?", customerID).Find(&entries).Error; err != nil {
		return 0, fmt.Errorf("failed to load balance entries: %w", err)
	}
	var invoices []model.Invoice
	if err := tx.Select("invoice_type", "total", "paid_amount", "status").
		Where("customer_id = ? AND status NOT IN ?", customerID, []model.InvoiceStatus{model.InvoicePaid, model.InvoiceCancelled}).
		Find(&invoices).Error; err != nil {
		return 0, fmt.Errorf("failed to load open invoices: %w", err)
	}
	return billing.CustomerBalance(entries, invoices), nil
}

// availableCredit is the customer's unspent credit.
func availableCredit(tx *gorm.DB, customerID string) (int64, error) {
	var entries []model.BalanceEntry
	if err := tx.Select("amount").Where("customer_id = ?", customerID).Find(&entries).Error; err != nil {
		return 0, fmt.Errorf("failed to load balance entries: %w", err)
	}
	return billing.AvailableCredit(entries), nil
}

// refreshBalance re-derives and caches the customer's balance. It reports
// whether the cached value changed.
func refreshBalance(tx *gorm.DB, customerID string) (bool, error) {
	balance, err := customerBalance(tx, customerID)
	if err != nil {
		return false, err
	}
	res := tx.Model(&model.Customer{}).
		Where("id = ? AND balance <> ?", customerID, balance).
		Update("balance", balance)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update balance for customer %s: %w", customerID, res.Error)
	}
	return res.RowsAffected > 0, nil
}
