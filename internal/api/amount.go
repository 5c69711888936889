package api

import (
	"fmt"

	"venue-billing-backend/internal/money"
)

// parseAmount converts a request amount in major units ("12.50") to piasters.
// An empty optional amount is zero.
func parseAmount(field, raw string, required bool) (int64, error) {
	if raw == "" && !required {
		return 0, nil
	}
	v, err := money.ToMinorUnits(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %v", field, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", field)
	}
	return v, nil
}

// parseOptionalAmount converts an amount that may be left out of a partial
// update. A nil raw means the field is not changing.
func parseOptionalAmount(field string, raw *string) (*int64, error) {
	if raw == nil {
		return nil, nil
	}
	v, err := parseAmount(field, *raw, true)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
