package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"venue-billing-backend/internal/billing"
	"venue-billing-backend/internal/money"
	"venue-billing-backend/internal/notification"
)

type startSessionRequest struct {
	CustomerID string `json:"customerId" binding:"required"`
	ResourceID string `json:"resourceId" binding:"required"`
}

type addItemRequest struct {
	InventoryItemID string `json:"inventoryItemId" binding:"required"`
	Quantity        int    `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *Handler) ListSessions(c *gin.Context) {
	list, err := h.store.ListSessions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// StartSession handles POST /api/sessions.
func (h *Handler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.store.StartSession(c.Request.Context(), req.CustomerID, req.ResourceID, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	h.notify(notification.TopicSessions, "%s started on %s", session.CustomerName, session.ResourceName)
	c.JSON(http.StatusCreated, session)
}

// GetSessionCharge handles GET /api/sessions/:id/charge: the running bill if
// the session ended now.
func (h *Handler) GetSessionCharge(c *gin.Context) {
	ctx := c.Request.Context()
	session, err := h.store.GetSession(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	settings, err := h.store.GetSettings(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, billing.ComputeSessionCharge(session, h.now(), settings))
}

func (h *Handler) AddSessionItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.store.AddSessionItem(c.Request.Context(), c.Param("id"), req.InventoryItemID, req.Quantity, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) UpdateSessionItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	session, err := h.store.UpdateSessionItem(c.Request.Context(), c.Param("id"), c.Param("consumption_id"), *req.Quantity, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *Handler) RemoveSessionItem(c *gin.Context) {
	session, err := h.store.RemoveSessionItem(c.Request.Context(), c.Param("id"), c.Param("consumption_id"), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// EndSession handles POST /api/sessions/:id/end and answers with the invoice.
func (h *Handler) EndSession(c *gin.Context) {
	inv, err := h.store.EndSession(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	h.notify(notification.TopicSessions, "Session of %s ended, invoice %s for %s", inv.CustomerName, inv.InvoiceNumber, money.Format(inv.Total))
	c.JSON(http.StatusCreated, inv)
}
