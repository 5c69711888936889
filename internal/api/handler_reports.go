package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"venue-billing-backend/internal/model"
	"venue-billing-backend/internal/report"
	"venue-billing-backend/internal/store"
)

// snapshot loads the data every report folds over.
func (h *Handler) snapshot(c *gin.Context) (*report.Snapshot, bool) {
	snap, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return snap, true
}

// intQuery reads a positive integer query parameter, or def when absent.
func intQuery(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		badRequest(c, key+" must be a positive integer")
		return 0, false
	}
	return v, true
}

func (h *Handler) Dashboard(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report.Dashboard(snap, h.now(), h.reports))
}

func (h *Handler) Revenue(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report.Revenue(snap, h.now(), h.reports))
}

// DailyRevenue handles GET /api/reports/revenue/daily?days=N.
func (h *Handler) DailyRevenue(c *gin.Context) {
	days, ok := intQuery(c, "days", h.seriesDays)
	if !ok {
		return
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report.DailySeries(snap, h.now(), days, h.reports))
}

func (h *Handler) Utilization(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report.Utilization(snap, h.now(), h.reports))
}

// TopCustomers handles GET /api/reports/top-customers?limit=N.
func (h *Handler) TopCustomers(c *gin.Context) {
	n, ok := intQuery(c, "limit", h.reports.TopCustomers)
	if !ok {
		return
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report.TopCustomers(snap, n))
}

func (h *Handler) LowStock(c *gin.Context) {
	items, err := h.store.ListInventory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report.LowStockAlerts(items))
}

func (h *Handler) OutOfStock(c *gin.Context) {
	items, err := h.store.ListInventory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report.OutOfStock(items))
}

// Activity handles GET /api/reports/activity?type=&since=&until=&limit=.
// since and until are RFC3339 timestamps.
func (h *Handler) Activity(c *gin.Context) {
	filter := store.OperationFilter{Type: model.OperationType(c.Query("type")), Limit: 100}
	for key, dst := range map[string]**time.Time{"since": &filter.Since, "until": &filter.Until} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			badRequest(c, "Invalid '"+key+"' timestamp format. Use RFC3339.")
			return
		}
		*dst = &t
	}
	limit, ok := intQuery(c, "limit", filter.Limit)
	if !ok {
		return
	}
	filter.Limit = limit

	ops, err := h.store.ListOperations(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ops)
}
