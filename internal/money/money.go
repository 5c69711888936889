// Package money holds the integer minor-unit (piaster) helpers shared by billing and reporting.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MinorPerMajor is the number of piasters in one major currency unit.
const MinorPerMajor = 100

const minorShift int32 = 2

// ErrOutOfRange is returned for amounts whose piaster value does not fit in an int64.
var ErrOutOfRange = errors.New("amount out of range")

var (
	maxMinor = decimal.NewFromInt(math.MaxInt64)
	minMinor = decimal.NewFromInt(math.MinInt64)
)

// toMinor shifts a major amount to piasters and rounds it, refusing values
// an int64 cannot hold.
func toMinor(d decimal.Decimal) (int64, error) {
	r := d.Shift(minorShift).Round(0)
	if r.GreaterThan(maxMinor) || r.LessThan(minMinor) {
		return 0, ErrOutOfRange
	}
	return r.IntPart(), nil
}

// ToMinorUnits converts a decimal major-currency amount ("12.345") to piasters.
// Fractions of a piaster are rounded half away from zero, so 0.005 becomes 1.
func ToMinorUnits(major string) (int64, error) {
	s := strings.TrimSpace(major)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", major, err)
	}
	v, err := toMinor(d)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", major, err)
	}
	return v, nil
}

// FromFloat converts a float major amount using the same rounding rule as ToMinorUnits.
// The float is formatted to its shortest decimal form first, so 0.29 stays 29.
func FromFloat(major float64) (int64, error) {
	if math.IsNaN(major) || math.IsInf(major, 0) {
		return 0, ErrOutOfRange
	}
	return toMinor(decimal.NewFromFloat(major))
}

// Format renders piasters as a fixed two-decimal major amount, e.g. 1250 -> "12.50".
func Format(minor int64) string {
	return decimal.New(minor, -minorShift).StringFixed(minorShift)
}

// FormatWithSymbol appends the currency symbol used in human-readable descriptions.
func FormatWithSymbol(minor int64, symbol string) string {
	if symbol == "" {
		return Format(minor)
	}
	return Format(minor) + " " + symbol
}

// ElapsedMinutes returns the whole minutes between startedAt and now.
// Clock skew (now before startedAt) yields 0.
func ElapsedMinutes(startedAt, now time.Time) int64 {
	if !now.After(startedAt) {
		return 0
	}
	return int64(now.Sub(startedAt) / time.Minute)
}
