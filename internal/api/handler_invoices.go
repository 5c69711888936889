package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"venue-billing-backend/internal/model"
	"venue-billing-backend/internal/money"
	"venue-billing-backend/internal/notification"
	"venue-billing-backend/internal/store"
)

type paymentRequest struct {
	Amount string  `json:"amount" binding:"required"`
	Method string  `json:"method" binding:"required"`
	Notes  *string `json:"notes"`
}

func (r paymentRequest) input() (store.PaymentInput, error) {
	amount, err := parseAmount("amount", r.Amount, true)
	if err != nil {
		return store.PaymentInput{}, err
	}
	return store.PaymentInput{Amount: amount, Method: model.PaymentMethod(r.Method), Notes: r.Notes}, nil
}

type bulkPaymentRequest struct {
	paymentRequest
	InvoiceIDs []string `json:"invoiceIds" binding:"required,min=1"`
}

// ListInvoices handles GET /api/invoices?customerId=&status=&limit=.
func (h *Handler) ListInvoices(c *gin.Context) {
	filter := store.InvoiceFilter{
		CustomerID: c.Query("customerId"),
		Status:     model.InvoiceStatus(c.Query("status")),
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			badRequest(c, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}
	list, err := h.store.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListInvoicesPaginated handles GET /api/invoices/paginated?page=&pageSize=&search=&status=.
func (h *Handler) ListInvoicesPaginated(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	page, err := h.store.GetInvoicesPaginated(c.Request.Context(), req.query(), model.InvoiceStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetInvoice(c *gin.Context) {
	inv, err := h.store.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// RecordPayment handles POST /api/invoices/:id/payments.
func (h *Handler) RecordPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	inv, err := h.store.RecordPayment(c.Request.Context(), c.Param("id"), in, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	h.notify(notification.TopicPayments, "%s paid %s (%s) on %s", inv.CustomerName, money.Format(in.Amount), in.Method, inv.InvoiceNumber)
	c.JSON(http.StatusOK, inv)
}

// RecordBulkPayment handles POST /api/invoices/bulk-payments.
func (h *Handler) RecordBulkPayment(c *gin.Context) {
	var req bulkPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	res, err := h.store.RecordBulkPayment(c.Request.Context(), req.InvoiceIDs, in, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	h.notify(notification.TopicPayments, "Bulk payment of %s (%s) across %d invoices", money.Format(res.Allocated), in.Method, len(res.Invoices))
	c.JSON(http.StatusOK, res)
}

func (h *Handler) CancelInvoice(c *gin.Context) {
	inv, err := h.store.CancelInvoice(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}
