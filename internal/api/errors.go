package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"venue-billing-backend/internal/billing"
	"venue-billing-backend/internal/store"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{billing.ErrOutOfStock, http.StatusConflict, "out_of_stock"},
	{billing.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{billing.ErrResourceUnavailable, http.StatusConflict, "resource_unavailable"},
	{billing.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
	{billing.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{billing.ErrInsufficientBalance, http.StatusConflict, "insufficient_balance"},
	{billing.ErrInvoiceFinalized, http.StatusConflict, "invoice_finalized"},
	{billing.ErrInvoiceHasPayments, http.StatusConflict, "invoice_has_payments"},
	{billing.ErrConsumptionNotFound, http.StatusNotFound, "consumption_not_found"},
	{billing.ErrInvalidPaymentMethod, http.StatusBadRequest, "invalid_payment_method"},
	{store.ErrNotFound, http.StatusNotFound, "not_found"},
	{store.ErrConflict, http.StatusConflict, "conflict"},
	{store.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{store.ErrInUse, http.StatusConflict, "in_use"},
}

// respondError maps err onto a status code and a stable machine code.
func respondError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			c.AbortWithStatusJSON(m.status, gin.H{"error": err.Error(), "code": m.code})
			return
		}
	}
	log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": "internal_error"})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg, "code": "invalid_request"})
}
