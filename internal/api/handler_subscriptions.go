package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"venue-billing-backend/internal/parse"
	"venue-billing-backend/internal/store"
)

type createSubscriptionRequest struct {
	CustomerID string     `json:"customerId" binding:"required"`
	PlanType   string     `json:"planType" binding:"required"`
	Price      string     `json:"price" binding:"required"`
	StartDate  *time.Time `json:"startDate"`
}

func (h *Handler) ListSubscriptions(c *gin.Context) {
	list, err := h.store.ListSubscriptions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CreateSubscription handles POST /api/subscriptions.
func (h *Handler) CreateSubscription(c *gin.Context) {
	var req createSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	plan, err := parse.PlanType(req.PlanType)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	price, err := parseAmount("price", req.Price, true)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	in := store.SubscriptionInput{CustomerID: req.CustomerID, PlanType: plan, Price: price}
	if req.StartDate != nil {
		in.StartDate = req.StartDate.UTC()
	}
	sub, err := h.store.CreateSubscription(c.Request.Context(), in, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// CancelSubscription handles POST /api/subscriptions/:id/cancel?refund=balance|cash.
// Without refund the unused time is not returned.
func (h *Handler) CancelSubscription(c *gin.Context) {
	refund := store.RefundMethod(c.Query("refund"))
	sub, err := h.store.CancelSubscription(c.Request.Context(), c.Param("id"), refund, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

type changePlanRequest struct {
	PlanType string `json:"planType" binding:"required"`
}

// ChangeSubscriptionPlan handles POST /api/subscriptions/:id/change-plan.
func (h *Handler) ChangeSubscriptionPlan(c *gin.Context) {
	var req changePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	plan, err := parse.PlanType(req.PlanType)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	sub, err := h.store.ChangeSubscriptionPlan(c.Request.Context(), c.Param("id"), plan, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// ReactivateSubscription handles POST /api/subscriptions/:id/reactivate.
func (h *Handler) ReactivateSubscription(c *gin.Context) {
	sub, err := h.store.ReactivateSubscription(c.Request.Context(), c.Param("id"), h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
