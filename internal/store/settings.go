package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm/clause"

	"venue-billing-backend/internal/model"
)

func (s *gormStore) GetSettings(ctx context.Context) (model.Settings, error) {
	return s.loadSettings(s.db.WithContext(ctx))
}

func validateSettings(st model.Settings) error {
	if st.Tax.Rate < 0 || st.Tax.Rate > 100 {
		return invalid("tax rate must be between 0 and 100")
	}
	if st.Discounts.Value < 0 || st.Discounts.Value > 100 {
		return invalid("discount must be between 0 and 100 percent")
	}
	if st.Invoicing.DueDays < 0 {
		return invalid("due days must not be negative")
	}
	if st.Balance.DebtLimit != nil && *st.Balance.DebtLimit < 0 {
		return invalid("debt limit must not be negative")
	}
	if strings.TrimSpace(st.Regional.Currency) == "" {
		return invalid("currency is required")
	}
	return nil
}

// UpdateSettings replaces the stored settings document.
func (s *gormStore) UpdateSettings(ctx context.Context, st model.Settings, now time.Time) error {
	if err := validateSettings(st); err != nil {
		return err
	}
	row := model.AppSettings{ID: 1, Data: st, UpdatedAt: now}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
