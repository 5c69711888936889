package notification

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"

	"venue-billing-backend/internal/model"
)

// Topics staff can subscribe to.
const (
	TopicLowStock = "low_stock"
	TopicPayments = "payments"
	TopicSessions = "sessions"
)

// queueDepth is how many events each worker may have waiting.
const queueDepth = 16

// Event is one notification to fan out to every subscription wanting Topic.
type Event struct {
	Topic   string `json:"topic"`
	Message string `json:"message"`
}

// Dispatcher accepts events without blocking the caller.
type Dispatcher interface {
	Dispatch(ev Event)
}

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender sends through webpush-go.
type WebPushSender struct{}

func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// SubscriptionStore is the part of the store the workers need.
type SubscriptionStore interface {
	ListPushSubscriptions(ctx context.Context, topic string) ([]model.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
}

// WorkerPool fans events out to push subscriptions on a fixed number of goroutines.
type WorkerPool struct {
	size    int
	queue   chan Event
	store   SubscriptionStore
	options *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a pool of size workers. Call Start before dispatching.
func NewWorkerPool(size int, store SubscriptionStore, options *webpush.Options) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		queue:   make(chan Event, size*queueDepth),
		store:   store,
		options: options,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines. They exit when ctx is done.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.run(ctx, i)
	}
}

func (wp *WorkerPool) run(ctx context.Context, id int) {
	log.Printf("Notification worker %d started", id)
	for {
		select {
		case <-ctx.Done():
			log.Printf("Notification worker %d shutting down", id)
			return
		case ev := <-wp.queue:
			wp.deliver(ctx, ev)
		}
	}
}

// Dispatch queues ev. When the queue is full the event is logged and dropped.
func (wp *WorkerPool) Dispatch(ev Event) {
	select {
	case wp.queue <- ev:
	default:
		log.Printf("Notification queue full, dropping %s event: %s", ev.Topic, ev.Message)
	}
}

func (wp *WorkerPool) deliver(ctx context.Context, ev Event) {
	subs, err := wp.store.ListPushSubscriptions(ctx, ev.Topic)
	if err != nil {
		log.Printf("Error fetching subscriptions for topic %s: %v", ev.Topic, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Error encoding %s event: %v", ev.Topic, err)
		return
	}
	log.Printf("Pushing %s event to %d subscriptions", ev.Topic, len(subs))
	for i := range subs {
		wp.push(ctx, &subs[i], payload)
	}
}

// push sends one notification and forgets subscriptions the push service reports gone.
func (wp *WorkerPool) push(ctx context.Context, sub *model.PushSubscription, payload []byte) {
	target := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys:     webpush.Keys{P256dh: sub.P256DH, Auth: sub.Auth},
	}
	resp, err := wp.sender.Send(payload, target, wp.options)
	if err != nil {
		log.Printf("Push to %s failed: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusGone {
		return
	}
	log.Printf("Push subscription %s is gone, deleting", sub.Endpoint)
	if err := wp.store.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
		log.Printf("Failed to delete push subscription %s: %v", sub.Endpoint, err)
	}
}
