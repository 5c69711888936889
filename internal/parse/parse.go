package parse

import (
	"fmt"
	"regexp"
	"strings"

	"venue-billing-backend/internal/model"
)

var (
	sessionLineRe = regexp.MustCompile(`(?i)^\s*(session|subscription)\b`)
	planSepRe     = regexp.MustCompile(`[\s_]+`)
	phoneJunkRe   = regexp.MustCompile(`[\s\-().]`)
	phoneRe       = regexp.MustCompile(`^\+?\d{6,15}$`)
)

// LineKind classifies an invoice line for revenue reports. Lines written before
// kinds were stored carry an empty kind and are classified by description.
func LineKind(kind model.LineKind, description string) model.LineKind {
	switch kind {
	case model.LineSession, model.LineSubscription, model.LineInventory, model.LineManual:
		return kind
	}
	if m := sessionLineRe.FindStringSubmatch(description); m != nil {
		if strings.EqualFold(m[1], "subscription") {
			return model.LineSubscription
		}
		return model.LineSession
	}
	return model.LineInventory
}

// IsTimeCharge reports whether a line counts toward "sessions" revenue.
func IsTimeCharge(kind model.LineKind, description string) bool {
	k := LineKind(kind, description)
	return k == model.LineSession || k == model.LineSubscription
}

// PlanType normalizes user input such as "Half Monthly" or "half_monthly".
func PlanType(raw string) (model.PlanType, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = planSepRe.ReplaceAllString(s, "-")
	switch model.PlanType(s) {
	case model.PlanWeekly, model.PlanHalfMonthly, model.PlanMonthly:
		return model.PlanType(s), nil
	case "halfmonthly":
		return model.PlanHalfMonthly, nil
	}
	return "", fmt.Errorf("unknown plan type: %q", raw)
}

// Phone strips separators and checks the result looks like a phone number.
func Phone(raw string) (string, error) {
	s := phoneJunkRe.ReplaceAllString(strings.TrimSpace(raw), "")
	if !phoneRe.MatchString(s) {
		return "", fmt.Errorf("unable to parse phone: %q", raw)
	}
	return s, nil
}
