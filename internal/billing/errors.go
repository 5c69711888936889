package billing

import "errors"

// Domain errors. All are recoverable: callers surface them and retry with corrected input.
var (
	ErrOutOfStock           = errors.New("insufficient stock")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrResourceUnavailable  = errors.New("resource is not available")
	ErrSessionNotFound      = errors.New("session not found")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrInvoiceFinalized     = errors.New("invoice is already paid or cancelled")
	ErrInvoiceHasPayments   = errors.New("invoice has payments and cannot be cancelled")
	ErrConsumptionNotFound  = errors.New("consumption line not found")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
)
