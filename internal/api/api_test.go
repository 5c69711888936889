package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"venue-billing-backend/config"
	"venue-billing-backend/internal/model"
	"venue-billing-backend/internal/notification"
	"venue-billing-backend/internal/report"
	"venue-billing-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recorder struct {
	events []notification.Event
}

func (r *recorder) Dispatch(ev notification.Event) {
	r.events = append(r.events, ev)
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	clock  time.Time
	events *recorder
}

func newTestAPI(t *testing.T) *testAPI {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, gdb.AutoMigrate(model.All()...))

	a := &testAPI{
		t:      t,
		clock:  time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		events: &recorder{},
	}
	s := store.NewGormStore(gdb, model.DefaultSettings("EGP", "EGP", 0))
	h := NewHandler(s, a.events, &webpush.Options{VAPIDPublicKey: "test-public-key"}, report.DefaultOptions(), 7)
	h.now = func() time.Time { return a.clock }
	a.router = NewRouter(h, config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 60}, nil)
	return a
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// create posts body and decodes the created record into out.
func (a *testAPI) create(path string, body, out any) {
	a.t.Helper()
	w := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), out))
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["code"]
}

func (a *testAPI) seed() (model.Customer, model.Resource, model.InventoryItem) {
	var customer model.Customer
	a.create("/api/customers", gin.H{"name": "Mona", "phone": "01012345678"}, &customer)
	var resource model.Resource
	a.create("/api/resources", gin.H{"name": "PS5 #2", "resourceType": "console", "ratePerHour": "60"}, &resource)
	var item model.InventoryItem
	a.create("/api/inventory", gin.H{"name": "Cola", "category": "beverage", "price": "5", "quantity": 4, "minStock": 2}, &item)
	return customer, resource, item
}

func TestCreateCustomer_Validation(t *testing.T) {
	a := newTestAPI(t)

	testCases := []struct {
		name     string
		body     any
		wantCode string
	}{
		{name: "missing phone", body: gin.H{"name": "Ali"}, wantCode: "invalid_request"},
		{name: "bad phone", body: gin.H{"name": "Ali", "phone": "call me"}, wantCode: "invalid_input"},
		{name: "blank name", body: gin.H{"name": "   ", "phone": "01012345678"}, wantCode: "invalid_input"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := a.do(http.MethodPost, "/api/customers", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.wantCode, errorCode(t, w))
		})
	}
}

func TestSessionLifecycle(t *testing.T) {
	a := newTestAPI(t)
	customer, resource, item := a.seed()
	assert.Equal(t, int64(6000), resource.RatePerHour)
	assert.Equal(t, int64(500), item.Price)

	var session model.Session
	a.create("/api/sessions", gin.H{"customerId": customer.ID, "resourceId": resource.ID}, &session)

	w := a.do(http.MethodPost, "/api/sessions", gin.H{"customerId": customer.ID, "resourceId": resource.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "resource_unavailable", errorCode(t, w))

	w = a.do(http.MethodPost, "/api/sessions/"+session.ID+"/items", gin.H{"inventoryItemId": item.ID, "quantity": 5})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "out_of_stock", errorCode(t, w))

	w = a.do(http.MethodPost, "/api/sessions/"+session.ID+"/items", gin.H{"inventoryItemId": item.ID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_quantity", errorCode(t, w))

	w = a.do(http.MethodPost, "/api/sessions/"+session.ID+"/items", gin.H{"inventoryItemId": item.ID, "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	session = decode[model.Session](t, w)
	require.Len(t, session.Consumptions, 1)

	w = a.do(http.MethodPatch, "/api/sessions/"+session.ID+"/items/"+session.Consumptions[0].ID, gin.H{"quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1000), decode[model.Session](t, w).InventoryTotal)

	a.clock = a.clock.Add(30 * time.Minute)
	w = a.do(http.MethodGet, "/api/sessions/"+session.ID+"/charge", nil)
	require.Equal(t, http.StatusOK, w.Code)
	charge := decode[map[string]int64](t, w)
	assert.Equal(t, int64(3000), charge["sessionCost"])
	assert.Equal(t, int64(4000), charge["total"])

	w = a.do(http.MethodPost, "/api/sessions/"+session.ID+"/end", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	inv := decode[model.Invoice](t, w)
	assert.Equal(t, int64(4000), inv.Total)
	assert.Equal(t, model.InvoiceUnpaid, inv.Status)

	w = a.do(http.MethodPost, "/api/sessions/"+session.ID+"/end", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "session_not_found", errorCode(t, w))

	w = a.do(http.MethodGet, "/api/inventory", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[[]model.InventoryItem](t, w)[0].Quantity)

	require.Len(t, a.events.events, 2)
	assert.Equal(t, notification.TopicSessions, a.events.events[1].Topic)
	assert.Contains(t, a.events.events[1].Message, "40.00")
}

func TestPayments(t *testing.T) {
	a := newTestAPI(t)
	customer, resource, _ := a.seed()

	var session model.Session
	a.create("/api/sessions", gin.H{"customerId": customer.ID, "resourceId": resource.ID}, &session)
	a.clock = a.clock.Add(40 * time.Minute)
	var inv model.Invoice
	a.create("/api/sessions/"+session.ID+"/end", nil, &inv)

	testCases := []struct {
		name       string
		body       any
		wantStatus int
		wantCode   string
	}{
		{name: "unparseable amount", body: gin.H{"amount": "ten", "method": "cash"}, wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "amount beyond int64", body: gin.H{"amount": "184467440737095616.16", "method": "cash"}, wantStatus: http.StatusBadRequest, wantCode: "invalid_request"},
		{name: "overpay", body: gin.H{"amount": "40.01", "method": "cash"}, wantStatus: http.StatusBadRequest, wantCode: "invalid_amount"},
		{name: "unknown method", body: gin.H{"amount": "10", "method": "cheque"}, wantStatus: http.StatusBadRequest, wantCode: "invalid_payment_method"},
		{name: "no credit", body: gin.H{"amount": "10", "method": "balance"}, wantStatus: http.StatusConflict, wantCode: "insufficient_balance"},
		{name: "partial", body: gin.H{"amount": "20", "method": "cash"}, wantStatus: http.StatusOK},
		{name: "rest", body: gin.H{"amount": "20.00", "method": "card"}, wantStatus: http.StatusOK},
		{name: "finalized", body: gin.H{"amount": "1", "method": "cash"}, wantStatus: http.StatusConflict, wantCode: "invoice_finalized"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := a.do(http.MethodPost, "/api/invoices/"+inv.ID+"/payments", tc.body)
			assert.Equal(t, tc.wantStatus, w.Code, w.Body.String())
			if tc.wantCode != "" {
				assert.Equal(t, tc.wantCode, errorCode(t, w))
			}
		})
	}

	w := a.do(http.MethodGet, "/api/invoices/"+inv.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[model.Invoice](t, w)
	assert.Equal(t, model.InvoicePaid, got.Status)
	assert.Len(t, got.Payments, 2)

	w = a.do(http.MethodGet, "/api/customers/"+customer.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[model.Customer](t, w).Balance)

	w = a.do(http.MethodPost, "/api/invoices/"+inv.ID+"/cancel", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invoice_finalized", errorCode(t, w))
}

func TestBalanceEndpoints(t *testing.T) {
	a := newTestAPI(t)
	customer, _, _ := a.seed()

	w := a.do(http.MethodPost, "/api/customers/"+customer.ID+"/deposit", gin.H{"amount": "100"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(10000), decode[model.Customer](t, w).Balance)

	w = a.do(http.MethodPost, "/api/customers/"+customer.ID+"/deposit", gin.H{"amount": "0"})
	assert.Equal(t, "invalid_amount", errorCode(t, w))

	var withdrawal model.Invoice
	a.create("/api/customers/"+customer.ID+"/withdraw", gin.H{"amount": "150"}, &withdrawal)
	assert.Equal(t, model.InvoiceWithdrawal, withdrawal.InvoiceType)

	w = a.do(http.MethodGet, "/api/customers/"+customer.ID, nil)
	assert.Equal(t, int64(-5000), decode[model.Customer](t, w).Balance)

	w = a.do(http.MethodGet, "/api/customers/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errorCode(t, w))
}

func TestSubscriptionsAndSettings(t *testing.T) {
	a := newTestAPI(t)
	customer, _, _ := a.seed()

	w := a.do(http.MethodPost, "/api/subscriptions", gin.H{"customerId": customer.ID, "planType": "yearly", "price": "100"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var sub model.Subscription
	a.create("/api/subscriptions", gin.H{"customerId": customer.ID, "planType": "Half Monthly", "price": "150"}, &sub)
	assert.Equal(t, model.PlanHalfMonthly, sub.PlanType)
	assert.Equal(t, a.clock.AddDate(0, 0, 15), sub.EndDate)

	w = a.do(http.MethodPost, "/api/subscriptions/"+sub.ID+"/cancel?refund=bank", nil)
	assert.Equal(t, "invalid_input", errorCode(t, w))
	w = a.do(http.MethodPost, "/api/subscriptions/"+sub.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.SubscriptionCancelled, decode[model.Subscription](t, w).Status)

	w = a.do(http.MethodGet, "/api/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	settings := decode[model.Settings](t, w)
	settings.Tax = model.TaxSettings{Enabled: true, Rate: 14}
	w = a.do(http.MethodPut, "/api/settings", settings)
	require.Equal(t, http.StatusOK, w.Code)

	settings.Tax.Rate = 140
	w = a.do(http.MethodPut, "/api/settings", settings)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/settings", nil)
	assert.Equal(t, int64(14), decode[model.Settings](t, w).Tax.Rate)
}

func TestCustomerEditing(t *testing.T) {
	a := newTestAPI(t)
	customer, resource, _ := a.seed()

	w := a.do(http.MethodGet, "/api/customers/duplicate?name=Someone&phone=010-1234-5678", nil)
	require.Equal(t, http.StatusOK, w.Code)
	dup := decode[map[string]*model.Customer](t, w)["duplicate"]
	require.NotNil(t, dup)
	assert.Equal(t, customer.ID, dup.ID)

	w = a.do(http.MethodGet, "/api/customers/duplicate?name=Ali&phone=01199999999", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[map[string]*model.Customer](t, w)["duplicate"])

	w = a.do(http.MethodPatch, "/api/customers/"+customer.ID, gin.H{"name": "Mona Adel"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[model.Customer](t, w)
	assert.Equal(t, "Mona Adel", updated.Name)
	assert.Equal(t, customer.Phone, updated.Phone)

	w = a.do(http.MethodPatch, "/api/customers/"+customer.ID, gin.H{"phone": "call me"})
	assert.Equal(t, "invalid_input", errorCode(t, w))

	var session model.Session
	a.create("/api/sessions", gin.H{"customerId": customer.ID, "resourceId": resource.ID}, &session)
	w = a.do(http.MethodDelete, "/api/customers/"+customer.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "in_use", errorCode(t, w))

	var ali model.Customer
	a.create("/api/customers", gin.H{"name": "Ali", "phone": "01112223334"}, &ali)
	w = a.do(http.MethodDelete, "/api/customers/"+ali.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodGet, "/api/customers/"+ali.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/api/customers/paginated?page=1&pageSize=1&search=mona", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[store.Page[model.Customer]](t, w)
	assert.Equal(t, int64(1), page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, customer.ID, page.Items[0].ID)

	w = a.do(http.MethodGet, "/api/customers/paginated?pageSize=1000", nil)
	assert.Equal(t, "invalid_request", errorCode(t, w))
}

func TestCatalogEditing(t *testing.T) {
	a := newTestAPI(t)
	customer, resource, item := a.seed()

	w := a.do(http.MethodPatch, "/api/resources/"+resource.ID, gin.H{"ratePerHour": "90", "maxPrice": "200"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	r := decode[model.Resource](t, w)
	assert.Equal(t, int64(9000), r.RatePerHour)
	assert.Equal(t, int64(20000), r.MaxPrice)
	assert.Equal(t, resource.Name, r.Name)

	w = a.do(http.MethodPatch, "/api/resources/"+resource.ID, gin.H{"ratePerHour": "-1"})
	assert.Equal(t, "invalid_request", errorCode(t, w))

	w = a.do(http.MethodPatch, "/api/inventory/"+item.ID, gin.H{"price": "7.25", "category": "drinks"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	it := decode[model.InventoryItem](t, w)
	assert.Equal(t, int64(725), it.Price)
	assert.Equal(t, "drinks", it.Category)
	assert.Equal(t, item.Quantity, it.Quantity)

	w = a.do(http.MethodPatch, "/api/inventory/"+item.ID, gin.H{"minStock": -1})
	assert.Equal(t, "invalid_request", errorCode(t, w))

	var session model.Session
	a.create("/api/sessions", gin.H{"customerId": customer.ID, "resourceId": resource.ID}, &session)
	w = a.do(http.MethodPost, "/api/sessions/"+session.ID+"/items", gin.H{"inventoryItemId": item.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodDelete, "/api/resources/"+resource.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "resource_unavailable", errorCode(t, w))
	w = a.do(http.MethodDelete, "/api/inventory/"+item.ID, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "in_use", errorCode(t, w))

	w = a.do(http.MethodPost, "/api/sessions/"+session.ID+"/end", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodDelete, "/api/resources/"+resource.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodDelete, "/api/inventory/"+item.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodDelete, "/api/inventory/"+item.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/api/invoices/paginated?status=unpaid", nil)
	require.Equal(t, http.StatusOK, w.Code)
	invoices := decode[store.Page[model.Invoice]](t, w)
	assert.Equal(t, int64(1), invoices.Total)
	assert.Equal(t, 20, invoices.PageSize)
}

func TestSubscriptionPlanChanges(t *testing.T) {
	a := newTestAPI(t)
	customer, _, _ := a.seed()

	var sub model.Subscription
	a.create("/api/subscriptions", gin.H{"customerId": customer.ID, "planType": "monthly", "price": "300"}, &sub)

	w := a.do(http.MethodPost, "/api/subscriptions/"+sub.ID+"/change-plan", gin.H{"planType": "yearly"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = a.do(http.MethodPost, "/api/subscriptions/"+sub.ID+"/change-plan", gin.H{"planType": "weekly"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	changed := decode[model.Subscription](t, w)
	assert.Equal(t, model.PlanWeekly, changed.PlanType)
	assert.True(t, a.clock.AddDate(0, 0, 7).Equal(changed.EndDate))

	w = a.do(http.MethodPost, "/api/subscriptions/"+sub.ID+"/reactivate", nil)
	assert.Equal(t, "invalid_input", errorCode(t, w))

	w = a.do(http.MethodPost, "/api/subscriptions/"+sub.ID+"/cancel", nil)
	require.Equal(t, http.StatusOK, w.Code)

	a.clock = a.clock.AddDate(0, 0, 3)
	w = a.do(http.MethodPost, "/api/subscriptions/"+sub.ID+"/reactivate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	renewed := decode[model.Subscription](t, w)
	assert.Equal(t, model.SubscriptionActive, renewed.Status)
	assert.True(t, a.clock.Equal(renewed.StartDate))
	assert.True(t, a.clock.AddDate(0, 0, 7).Equal(renewed.EndDate))

	w = a.do(http.MethodGet, "/api/customers/"+customer.ID, nil)
	assert.Equal(t, model.CustomerWeekly, decode[model.Customer](t, w).CustomerType)
}

func TestReportsAreCachedUntilWrite(t *testing.T) {
	a := newTestAPI(t)
	customer, resource, _ := a.seed()

	w := a.do(http.MethodGet, "/api/reports/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[report.DashboardMetrics](t, w).ActiveSessions)

	a.create("/api/sessions", gin.H{"customerId": customer.ID, "resourceId": resource.ID}, &model.Session{})

	w = a.do(http.MethodGet, "/api/reports/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.Equal(t, 1, decode[report.DashboardMetrics](t, w).ActiveSessions)

	w = a.do(http.MethodGet, "/api/reports/dashboard", nil)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	for _, path := range []string{
		"/api/reports/revenue",
		"/api/reports/revenue/daily?days=3",
		"/api/reports/utilization",
		"/api/reports/top-customers",
		"/api/reports/low-stock",
		"/api/reports/out-of-stock",
		"/api/reports/activity?since=2026-03-10T00:00:00Z",
	} {
		w := a.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w = a.do(http.MethodGet, "/api/reports/revenue/daily?days=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = a.do(http.MethodGet, "/api/reports/activity?since=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/reports/activity?type=session_start", nil)
	ops := decode[[]model.Operation](t, w)
	require.Len(t, ops, 1)
	assert.Equal(t, model.OpSessionStart, ops[0].Type)
}

func TestPushSubscriptions(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodPut, "/api/push-subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request","code":"invalid_request"}`, w.Body.String())

	w = a.do(http.MethodPut, "/api/push-subscriptions", gin.H{"endpoint": "https://push/a", "p256dh": "k", "auth": "x", "topics": []string{"weather"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPut, "/api/push-subscriptions", gin.H{"endpoint": "https://push/a", "p256dh": "k", "auth": "x", "topics": []string{"payments"}})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = a.do(http.MethodGet, "/api/push-subscriptions?endpoint=https://push/a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"topics":["payments"]}`, w.Body.String())

	w = a.do(http.MethodPut, "/api/push-subscriptions", gin.H{"endpoint": "https://push/a", "p256dh": "k", "auth": "x"})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = a.do(http.MethodGet, "/api/push-subscriptions?endpoint=https://push/a", nil)
	assert.JSONEq(t, `{"topics":["low_stock","payments","sessions"]}`, w.Body.String())

	w = a.do(http.MethodDelete, "/api/push-subscriptions", gin.H{"endpoint": "https://push/a"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodGet, "/api/push-subscriptions?endpoint=https://push/a", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/api/vapid_public_key", nil)
	assert.JSONEq(t, `{"public_key":"test-public-key"}`, w.Body.String())
}
