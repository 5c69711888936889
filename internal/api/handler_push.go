package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"venue-billing-backend/internal/model"
	"venue-billing-backend/internal/notification"
)

var knownTopics = map[string]bool{
	notification.TopicLowStock: true,
	notification.TopicPayments: true,
	notification.TopicSessions: true,
}

type putPushSubscriptionRequest struct {
	Endpoint string   `json:"endpoint" binding:"required"`
	P256DH   string   `json:"p256dh" binding:"required"`
	Auth     string   `json:"auth" binding:"required"`
	Topics   []string `json:"topics"`
}

// PutPushSubscription handles the creation or replacement of a subscription.
// An empty topic list subscribes to everything.
func (h *Handler) PutPushSubscription(c *gin.Context) {
	var req putPushSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	for _, t := range req.Topics {
		if !knownTopics[t] {
			badRequest(c, "unknown topic "+t)
			return
		}
	}

	sub := &model.PushSubscription{
		Endpoint:  req.Endpoint,
		P256DH:    req.P256DH,
		Auth:      req.Auth,
		Topics:    strings.Join(req.Topics, ","),
		CreatedAt: h.now(),
	}
	if err := h.store.SavePushSubscription(c.Request.Context(), sub); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

type deletePushSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeletePushSubscription handles the deletion of a subscription.
func (h *Handler) DeletePushSubscription(c *gin.Context) {
	var req deletePushSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request")
		return
	}
	if err := h.store.DeletePushSubscription(c.Request.Context(), req.Endpoint); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// rawQueryParam reads a query value without URL decoding; push endpoints
// are compared byte for byte.
func rawQueryParam(rawQuery, key string) (string, bool) {
	for _, kv := range strings.Split(rawQuery, "&") {
		if strings.HasPrefix(kv, key+"=") {
			return kv[len(key)+1:], true
		}
	}
	return "", false
}

// GetPushSubscription reports which topics an endpoint receives.
func (h *Handler) GetPushSubscription(c *gin.Context) {
	raw, ok := rawQueryParam(c.Request.URL.RawQuery, "endpoint")
	if !ok || raw == "" {
		badRequest(c, "endpoint is required")
		return
	}
	sub, err := h.store.GetPushSubscription(c.Request.Context(), raw)
	if err != nil {
		respondError(c, err)
		return
	}

	topics := []string{}
	for t := range knownTopics {
		if sub.Wants(t) {
			topics = append(topics, t)
		}
	}
	sort.Strings(topics)
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vapid keys are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
