package store

import (
	"time"

	"venue-billing-backend/internal/model"
)

// CustomerInput is the data needed to register a customer.
type CustomerInput struct {
	Name  string
	Phone string
	Email *string
	Notes *string
}

// CustomerUpdate changes the named fields of a customer. Nil fields are kept.
type CustomerUpdate struct {
	Name  *string
	Phone *string
	Email *string
	Notes *string
}

// ResourceInput describes a new bookable resource.
type ResourceInput struct {
	Name         string
	ResourceType string
	RatePerHour  int64
	MaxPrice     int64
}

// ResourceUpdate changes the named fields of a resource. Availability is
// owned by sessions and cannot be set here.
type ResourceUpdate struct {
	Name         *string
	ResourceType *string
	RatePerHour  *int64
	MaxPrice     *int64
}

// InventoryInput describes a new catalog item.
type InventoryInput struct {
	Name     string
	Category string
	Price    int64
	Quantity int
	MinStock int
}

// InventoryUpdate changes catalog fields. Quantity only moves through
// AdjustInventory and sessions so every change leaves a stock movement.
type InventoryUpdate struct {
	Name     *string
	Category *string
	Price    *int64
	MinStock *int
}

// PaymentInput is one tender.
type PaymentInput struct {
	Amount int64
	Method model.PaymentMethod
	Notes  *string
}

// BulkPaymentResult lists the invoices touched by a bulk payment.
type BulkPaymentResult struct {
	Invoices    []model.Invoice `json:"invoices"`
	Allocated   int64           `json:"allocated"`
	Unallocated int64           `json:"unallocated"`
}

// SubscriptionInput describes a new plan. A zero StartDate means now.
type SubscriptionInput struct {
	CustomerID string
	PlanType   model.PlanType
	Price      int64
	StartDate  time.Time
}

// RefundMethod selects how the unused part of a cancelled plan is returned.
type RefundMethod string

const (
	RefundNone    RefundMethod = ""
	RefundBalance RefundMethod = "balance"
	RefundCash    RefundMethod = "cash"
)

// InvoiceFilter narrows ListInvoices. Empty fields match everything.
type InvoiceFilter struct {
	CustomerID string
	Status     model.InvoiceStatus
	Limit      int
}

// OperationFilter narrows ListOperations.
type OperationFilter struct {
	Type  model.OperationType
	Since *time.Time
	Until *time.Time
	Limit int
}

// Default and largest page sizes for paginated listings.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageQuery selects one page of a listing. Search is a substring match.
type PageQuery struct {
	Page     int
	PageSize int
	Search   string
}

// normalize clamps the page to 1 and the size to (0, MaxPageSize].
func (q PageQuery) normalize() PageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		q.PageSize = DefaultPageSize
	}
	return q
}

func (q PageQuery) offset() int {
	return (q.Page - 1) * q.PageSize
}

// Page is one page of a listing together with the size of the whole result.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

func newPage[T any](items []T, total int64, q PageQuery) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := int(total) / q.PageSize
	if int(total)%q.PageSize > 0 {
		pages++
	}
	return &Page[T]{Items: items, Total: total, Page: q.Page, PageSize: q.PageSize, TotalPages: pages}
}
