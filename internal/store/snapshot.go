package store

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"venue-billing-backend/internal/model"
	"venue-billing-backend/internal/report"
)

// snapshotTxOptions picks the isolation for report reads. Postgres defaults to
// READ COMMITTED, where each statement sees its own snapshot; REPEATABLE READ
// pins one snapshot for the whole transaction. A SQLite read transaction
// already sees a single snapshot.
func snapshotTxOptions(dialect string) *sql.TxOptions {
	opts := &sql.TxOptions{ReadOnly: true}
	if dialect == "postgres" {
		opts.Isolation = sql.LevelRepeatableRead
	}
	return opts
}

// Snapshot reads every collection the reports need inside one read-only transaction.
func (s *gormStore) Snapshot(ctx context.Context) (*report.Snapshot, error) {
	var snap report.Snapshot
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			what string
			q    *gorm.DB
			dest any
		}{
			{"customers", tx, &snap.Customers},
			{"resources", tx, &snap.Resources},
			{"inventory", tx, &snap.Inventory},
			{"sessions", tx.Preload("Consumptions"), &snap.Sessions},
			{"session history", tx, &snap.History},
			{"invoices", preloadInvoice(tx), &snap.Invoices},
			{"subscriptions", tx, &snap.Subscriptions},
		}
		for _, step := range steps {
			if err := step.q.Order("id").Find(step.dest).Error; err != nil {
				return fmt.Errorf("failed to load %s: %w", step.what, err)
			}
		}
		return nil
	}, snapshotTxOptions(s.db.Dialector.Name()))
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// ListOperations replays the activity log, newest first.
func (s *gormStore) ListOperations(ctx context.Context, filter OperationFilter) ([]model.Operation, error) {
	q := s.db.WithContext(ctx).Model(&model.Operation{})
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.Since != nil {
		q = q.Where("timestamp >= ?", filter.Since.UTC())
	}
	if filter.Until != nil {
		q = q.Where("timestamp < ?", filter.Until.UTC())
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	var ops []model.Operation
	if err := q.Order("timestamp DESC, id").Find(&ops).Error; err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	return ops, nil
}
