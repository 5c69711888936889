package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"venue-billing-backend/internal/store"
)

type createCustomerRequest struct {
	Name  string  `json:"name" binding:"required"`
	Phone string  `json:"phone" binding:"required"`
	Email *string `json:"email"`
	Notes *string `json:"notes"`
}

type updateCustomerRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
	Notes *string `json:"notes"`
}

type pageRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
}

func (r pageRequest) query() store.PageQuery {
	return store.PageQuery{Page: r.Page, PageSize: r.PageSize, Search: r.Search}
}

type amountRequest struct {
	Amount string  `json:"amount" binding:"required"`
	Notes  *string `json:"notes"`
}

func (h *Handler) ListCustomers(c *gin.Context) {
	list, err := h.store.ListCustomers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListCustomersPaginated handles GET /api/customers/paginated?page=&pageSize=&search=.
func (h *Handler) ListCustomersPaginated(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	page, err := h.store.GetCustomersPaginated(c.Request.Context(), req.query())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CheckCustomerDuplicate handles GET /api/customers/duplicate?name=&phone=.
// duplicate is null when no customer shares the name or phone.
func (h *Handler) CheckCustomerDuplicate(c *gin.Context) {
	customer, err := h.store.CheckCustomerDuplicate(c.Request.Context(), c.Query("name"), c.Query("phone"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"duplicate": customer})
}

func (h *Handler) GetCustomer(c *gin.Context) {
	customer, err := h.store.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// CreateCustomer handles POST /api/customers.
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	customer, err := h.store.CreateCustomer(c.Request.Context(), store.CustomerInput{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		Notes: req.Notes,
	}, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer handles PATCH /api/customers/:id.
func (h *Handler) UpdateCustomer(c *gin.Context) {
	var req updateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	customer, err := h.store.UpdateCustomer(c.Request.Context(), c.Param("id"), store.CustomerUpdate{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		Notes: req.Notes,
	}, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer handles DELETE /api/customers/:id.
func (h *Handler) DeleteCustomer(c *gin.Context) {
	if err := h.store.DeleteCustomer(c.Request.Context(), c.Param("id"), h.now()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Deposit handles POST /api/customers/:id/deposit.
func (h *Handler) Deposit(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	amount, err := parseAmount("amount", req.Amount, true)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	customer, err := h.store.DepositBalance(c.Request.Context(), c.Param("id"), amount, req.Notes, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

// Withdraw handles POST /api/customers/:id/withdraw. It answers with the
// withdrawal invoice.
func (h *Handler) Withdraw(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	amount, err := parseAmount("amount", req.Amount, true)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	inv, err := h.store.WithdrawBalance(c.Request.Context(), c.Param("id"), amount, req.Notes, h.now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}
