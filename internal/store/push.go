package store

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"venue-billing-backend/internal/model"
)

// SavePushSubscription creates or replaces a subscription keyed by endpoint.
func (s *gormStore) SavePushSubscription(ctx context.Context, sub *model.PushSubscription) error {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "topics"}),
	}).Create(sub).Error; err != nil {
		return fmt.Errorf("failed to save push subscription: %w", err)
	}
	return nil
}

func (s *gormStore) GetPushSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).First(&sub, "endpoint = ?", endpoint).Error; err != nil {
		return nil, notFound(err, "push subscription", endpoint)
	}
	return &sub, nil
}

func (s *gormStore) DeletePushSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{}, "endpoint = ?", endpoint).Error; err != nil {
		return fmt.Errorf("failed to delete push subscription: %w", err)
	}
	return nil
}

// ListPushSubscriptions returns the subscriptions that want topic.
func (s *gormStore) ListPushSubscriptions(ctx context.Context, topic string) ([]model.PushSubscription, error) {
	var all []model.PushSubscription
	if err := s.db.WithContext(ctx).Order("endpoint").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list push subscriptions: %w", err)
	}
	subs := all[:0]
	for _, sub := range all {
		if sub.Wants(topic) {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}
