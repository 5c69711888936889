package sweeper

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"venue-billing-backend/internal/model"
	"venue-billing-backend/internal/notification"
	"venue-billing-backend/internal/report"
)

// Store is the part of the store the sweeper maintains.
type Store interface {
	ExpireSubscriptions(ctx context.Context, now time.Time) (int, error)
	RecomputeBalances(ctx context.Context) (int, error)
	ListInventory(ctx context.Context) ([]model.InventoryItem, error)
}

type stockClass int

const (
	stockOK stockClass = iota
	stockLow
	stockOut
)

func classify(item *model.InventoryItem) stockClass {
	switch {
	case item.Quantity == 0:
		return stockOut
	case report.IsLowStock(item):
		return stockLow
	}
	return stockOK
}

// Service runs periodic maintenance: subscription expiry, balance
// re-derivation and low-stock alerts. Every step is idempotent.
type Service struct {
	store      Store
	dispatcher notification.Dispatcher
	interval   time.Duration
	onChange   func()

	mu    sync.Mutex
	stock map[string]stockClass
}

// NewService creates a sweeper. dispatcher may be nil.
func NewService(store Store, dispatcher notification.Dispatcher, interval time.Duration) *Service {
	return &Service{
		store:      store,
		dispatcher: dispatcher,
		interval:   interval,
		stock:      make(map[string]stockClass),
	}
}

// OnChange registers fn to run after a sweep that changed stored data.
func (s *Service) OnChange(fn func()) {
	s.onChange = fn
}

// Run sweeps once immediately and then every interval until ctx is done.
func (s *Service) Run(ctx context.Context) {
	log.Println("Starting sweeper service...")
	s.SweepOnce(ctx, time.Now().UTC())

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Sweeper service shutting down.")
			return
		case <-timer.C:
			s.SweepOnce(ctx, time.Now().UTC())
			timer.Reset(s.interval)
		}
	}
}

// SweepOnce performs one maintenance round. A failing step is logged and
// does not stop the others.
func (s *Service) SweepOnce(ctx context.Context, now time.Time) {
	expired, err := s.store.ExpireSubscriptions(ctx, now)
	if err != nil {
		log.Printf("Error expiring subscriptions: %v", err)
		expired = 0
	} else if expired > 0 {
		log.Printf("Expired %d subscriptions", expired)
	}

	fixed, err := s.store.RecomputeBalances(ctx)
	if err != nil {
		log.Printf("Error recomputing balances: %v", err)
		fixed = 0
	} else if fixed > 0 {
		log.Printf("Corrected %d cached customer balances", fixed)
	}

	if err := s.checkStock(ctx); err != nil {
		log.Printf("Error checking stock levels: %v", err)
	}

	if (expired > 0 || fixed > 0) && s.onChange != nil {
		s.onChange()
	}
}

// checkStock notifies once per item each time it moves into low or out of stock.
func (s *Service) checkStock(ctx context.Context) error {
	items, err := s.store.ListInventory(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(items))
	for i := range items {
		item := &items[i]
		seen[item.ID] = true
		class := classify(item)
		prev, known := s.stock[item.ID]
		s.stock[item.ID] = class
		if class == stockOK || (known && class == prev) {
			continue
		}
		s.notify(stockMessage(item, class))
	}
	for id := range s.stock {
		if !seen[id] {
			delete(s.stock, id)
		}
	}
	return nil
}

func stockMessage(item *model.InventoryItem, class stockClass) string {
	if class == stockOut {
		return fmt.Sprintf("%s is out of stock", item.Name)
	}
	return fmt.Sprintf("%s is running low (%d left, minimum %d)", item.Name, item.Quantity, item.MinStock)
}

func (s *Service) notify(message string) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Dispatch(notification.Event{Topic: notification.TopicLowStock, Message: message})
}
