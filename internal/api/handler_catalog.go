package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"venue-billing-backend/internal/store"
)

type createResourceRequest struct {
	Name         string `json:"name" binding:"required"`
	ResourceType string `json:"resourceType"`
	RatePerHour  string `json:"ratePerHour" binding:"required"`
	MaxPrice     string `json:"maxPrice"`
}

func (h *Handler) ListResources(c *gin.Context) {
	list, err := h.store.ListResources(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateResource(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	rate, err := parseAmount("ratePerHour", req.RatePerHour, true)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	maxPrice, err := parseAmount("maxPrice", req.MaxPrice, false)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	r, err := h.store.CreateResource(c.Request.Context(), store.ResourceInput{
		Name:         req.Name,
		ResourceType: req.ResourceType,
		RatePerHour:  rate,
		MaxPrice:     maxPrice,
	}, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

type updateResourceRequest struct {
	Name         *string `json:"name"`
	ResourceType *string `json:"resourceType"`
	RatePerHour  *string `json:"ratePerHour"`
	MaxPrice     *string `json:"maxPrice"`
}

// UpdateResource handles PATCH /api/resources/:id.
func (h *Handler) UpdateResource(c *gin.Context) {
	var req updateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	rate, err := parseOptionalAmount("ratePerHour", req.RatePerHour)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	maxPrice, err := parseOptionalAmount("maxPrice", req.MaxPrice)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	r, err := h.store.UpdateResource(c.Request.Context(), c.Param("id"), store.ResourceUpdate{
		Name:         req.Name,
		ResourceType: req.ResourceType,
		RatePerHour:  rate,
		MaxPrice:     maxPrice,
	}, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// DeleteResource handles DELETE /api/resources/:id. A resource with an open
// session answers 409 resource_unavailable.
func (h *Handler) DeleteResource(c *gin.Context) {
	if err := h.store.DeleteResource(c.Request.Context(), c.Param("id"), h.now()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type createInventoryRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
	Price    string `json:"price" binding:"required"`
	Quantity int    `json:"quantity" binding:"min=0"`
	MinStock int    `json:"minStock" binding:"min=0"`
}

func (h *Handler) ListInventory(c *gin.Context) {
	list, err := h.store.ListInventory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateInventoryItem(c *gin.Context) {
	var req createInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	price, err := parseAmount("price", req.Price, true)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	item, err := h.store.CreateInventoryItem(c.Request.Context(), store.InventoryInput{
		Name:     req.Name,
		Category: req.Category,
		Price:    price,
		Quantity: req.Quantity,
		MinStock: req.MinStock,
	}, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

type updateInventoryRequest struct {
	Name     *string `json:"name"`
	Category *string `json:"category"`
	Price    *string `json:"price"`
	MinStock *int    `json:"minStock" binding:"omitempty,min=0"`
}

// UpdateInventoryItem handles PATCH /api/inventory/:id. Quantity changes go
// through the adjust endpoint.
func (h *Handler) UpdateInventoryItem(c *gin.Context) {
	var req updateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	price, err := parseOptionalAmount("price", req.Price)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	item, err := h.store.UpdateInventory(c.Request.Context(), c.Param("id"), store.InventoryUpdate{
		Name:     req.Name,
		Category: req.Category,
		Price:    price,
		MinStock: req.MinStock,
	}, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteInventoryItem(c *gin.Context) {
	if err := h.store.DeleteInventory(c.Request.Context(), c.Param("id"), h.now()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type adjustInventoryRequest struct {
	Delta int     `json:"delta"`
	Note  *string `json:"note"`
}

// AdjustInventory handles POST /api/inventory/:id/adjust.
func (h *Handler) AdjustInventory(c *gin.Context) {
	var req adjustInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	item, err := h.store.AdjustInventory(c.Request.Context(), c.Param("id"), req.Delta, req.Note, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}
