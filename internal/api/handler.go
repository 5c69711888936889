package api

import (
	"fmt"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"venue-billing-backend/internal/notification"
	"venue-billing-backend/internal/report"
	"venue-billing-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	dispatcher notification.Dispatcher
	webpush    *webpush.Options
	reports    report.Options
	seriesDays int
	now        func() time.Time
}

// NewHandler creates a new API handler. dispatcher may be nil.
func NewHandler(s store.Store, dispatcher notification.Dispatcher, webpushOptions *webpush.Options, reports report.Options, seriesDays int) *Handler {
	if seriesDays <= 0 {
		seriesDays = 30
	}
	return &Handler{
		store:      s,
		dispatcher: dispatcher,
		webpush:    webpushOptions,
		reports:    reports,
		seriesDays: seriesDays,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// notify queues a push notification after a committed write.
func (h *Handler) notify(topic, format string, args ...any) {
	if h.dispatcher == nil {
		return
	}
	h.dispatcher.Dispatch(notification.Event{Topic: topic, Message: fmt.Sprintf(format, args...)})
}
