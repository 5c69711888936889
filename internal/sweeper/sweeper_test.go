package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"venue-billing-backend/internal/model"
	"venue-billing-backend/internal/notification"
)

type mockStore struct {
	items      []model.InventoryItem
	expireErr  error
	expireNows []time.Time
	recomputes int
	expired    int
	fixed      int
}

func (m *mockStore) ExpireSubscriptions(_ context.Context, now time.Time) (int, error) {
	m.expireNows = append(m.expireNows, now)
	return m.expired, m.expireErr
}

func (m *mockStore) RecomputeBalances(context.Context) (int, error) {
	m.recomputes++
	return m.fixed, nil
}

func (m *mockStore) ListInventory(context.Context) ([]model.InventoryItem, error) {
	return m.items, nil
}

type recorder struct {
	events []notification.Event
}

func (r *recorder) Dispatch(ev notification.Event) {
	r.events = append(r.events, ev)
}

func item(id, name string, qty, min int) model.InventoryItem {
	return model.InventoryItem{BaseModel: model.BaseModel{ID: id}, Name: name, Quantity: qty, MinStock: min}
}

func TestSweepOnce_LowStockNotifiesOnce(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	store := &mockStore{items: []model.InventoryItem{
		item("1", "Cola", 10, 3),
		item("2", "Chips", 2, 5),
	}}
	rec := &recorder{}
	s := NewService(store, rec, time.Minute)

	testCases := []struct {
		name     string
		items    []model.InventoryItem
		messages []string
	}{
		{
			name:     "first sweep reports items already low",
			items:    store.items,
			messages: []string{"Chips is running low (2 left, minimum 5)"},
		},
		{
			name:  "unchanged classes stay quiet",
			items: []model.InventoryItem{item("1", "Cola", 9, 3), item("2", "Chips", 1, 5)},
		},
		{
			name:     "entering low and out of stock",
			items:    []model.InventoryItem{item("1", "Cola", 3, 3), item("2", "Chips", 0, 5)},
			messages: []string{"Cola is running low (3 left, minimum 3)", "Chips is out of stock"},
		},
		{
			name:  "restock clears the class",
			items: []model.InventoryItem{item("1", "Cola", 20, 3), item("2", "Chips", 20, 5)},
		},
		{
			name:     "dropping again notifies again",
			items:    []model.InventoryItem{item("1", "Cola", 1, 3), item("2", "Chips", 20, 5)},
			messages: []string{"Cola is running low (1 left, minimum 3)"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec.events = nil
			store.items = tc.items
			s.SweepOnce(context.Background(), now)

			var got []string
			for _, ev := range rec.events {
				assert.Equal(t, notification.TopicLowStock, ev.Topic)
				got = append(got, ev.Message)
			}
			assert.Equal(t, tc.messages, got)
		})
	}
	assert.Len(t, store.expireNows, len(testCases))
	assert.Equal(t, len(testCases), store.recomputes)
}

func TestSweepOnce_StepFailureDoesNotStopOthers(t *testing.T) {
	store := &mockStore{
		expireErr: errors.New("db down"),
		items:     []model.InventoryItem{item("1", "Gum", 0, 2)},
	}
	s := NewService(store, nil, time.Minute)

	assert.NotPanics(t, func() {
		s.SweepOnce(context.Background(), time.Now())
	})
	assert.Equal(t, 1, store.recomputes)
}

func TestSweepOnce_OnChange(t *testing.T) {
	testCases := []struct {
		name        string
		store       *mockStore
		expectCalls int
	}{
		{name: "nothing changed", store: &mockStore{}, expectCalls: 0},
		{name: "subscriptions expired", store: &mockStore{expired: 2}, expectCalls: 1},
		{name: "balances corrected", store: &mockStore{fixed: 1}, expectCalls: 1},
		{name: "expiry failed", store: &mockStore{expired: 3, expireErr: errors.New("db down")}, expectCalls: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			s := NewService(tc.store, nil, time.Minute)
			s.OnChange(func() { calls++ })

			s.SweepOnce(context.Background(), time.Now())
			assert.Equal(t, tc.expectCalls, calls)
		})
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	store := &mockStore{}
	s := NewService(store, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
	assert.Len(t, store.expireNows, 1)
}
