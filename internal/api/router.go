package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"venue-billing-backend/config"
	"venue-billing-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router. reportCache may be nil,
// in which case the router owns a private one.
func NewRouter(handler *Handler, cfg config.ServerConfig, reportCache *mw.ReportCache) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	if reportCache == nil {
		reportCache = mw.NewReportCache(cfg.CacheTTL())
	}
	caching := reportCache.Cache()

	api := r.Group("/api")
	api.Use(rateLimiter, reportCache.Invalidate())
	{
		api.GET("/customers", handler.ListCustomers)
		api.POST("/customers", handler.CreateCustomer)
		api.GET("/customers/paginated", handler.ListCustomersPaginated)
		api.GET("/customers/duplicate", handler.CheckCustomerDuplicate)
		api.GET("/customers/:id", handler.GetCustomer)
		api.PATCH("/customers/:id", handler.UpdateCustomer)
		api.DELETE("/customers/:id", handler.DeleteCustomer)
		api.POST("/customers/:id/deposit", handler.Deposit)
		api.POST("/customers/:id/withdraw", handler.Withdraw)

		api.GET("/resources", handler.ListResources)
		api.POST("/resources", handler.CreateResource)
		api.PATCH("/resources/:id", handler.UpdateResource)
		api.DELETE("/resources/:id", handler.DeleteResource)

		api.GET("/inventory", handler.ListInventory)
		api.POST("/inventory", handler.CreateInventoryItem)
		api.PATCH("/inventory/:id", handler.UpdateInventoryItem)
		api.DELETE("/inventory/:id", handler.DeleteInventoryItem)
		api.POST("/inventory/:id/adjust", handler.AdjustInventory)

		api.GET("/sessions", handler.ListSessions)
		api.POST("/sessions", handler.StartSession)
		api.GET("/sessions/:id/charge", handler.GetSessionCharge)
		api.POST("/sessions/:id/items", handler.AddSessionItem)
		api.PATCH("/sessions/:id/items/:consumption_id", handler.UpdateSessionItem)
		api.DELETE("/sessions/:id/items/:consumption_id", handler.RemoveSessionItem)
		api.POST("/sessions/:id/end", handler.EndSession)

		api.GET("/invoices", handler.ListInvoices)
		api.GET("/invoices/paginated", handler.ListInvoicesPaginated)
		api.POST("/invoices/bulk-payments", handler.RecordBulkPayment)
		api.GET("/invoices/:id", handler.GetInvoice)
		api.POST("/invoices/:id/payments", handler.RecordPayment)
		api.POST("/invoices/:id/cancel", handler.CancelInvoice)

		api.GET("/subscriptions", handler.ListSubscriptions)
		api.POST("/subscriptions", handler.CreateSubscription)
		api.POST("/subscriptions/:id/cancel", handler.CancelSubscription)
		api.POST("/subscriptions/:id/change-plan", handler.ChangeSubscriptionPlan)
		api.POST("/subscriptions/:id/reactivate", handler.ReactivateSubscription)

		api.GET("/settings", handler.GetSettings)
		api.PUT("/settings", handler.PutSettings)

		reports := api.Group("/reports", caching)
		reports.GET("/dashboard", handler.Dashboard)
		reports.GET("/revenue", handler.Revenue)
		reports.GET("/revenue/daily", handler.DailyRevenue)
		reports.GET("/utilization", handler.Utilization)
		reports.GET("/top-customers", handler.TopCustomers)
		reports.GET("/low-stock", handler.LowStock)
		reports.GET("/out-of-stock", handler.OutOfStock)
		reports.GET("/activity", handler.Activity)

		api.GET("/push-subscriptions", handler.GetPushSubscription)
		api.PUT("/push-subscriptions", handler.PutPushSubscription)
		api.DELETE("/push-subscriptions", handler.DeletePushSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
