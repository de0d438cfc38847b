package ingest

import "github.com/polkiloo/floristportal/internal/domain/model"

// AssignPartner returns the first partner in roster order whose first matching
// zone range contains the order's postal code. Orders without a resolved zone
// and postal codes that are not numeric never match. Inputs are not modified.
func AssignPartner(order *model.Order, partners []model.User) *model.User {
	if order == nil || order.Zone == "" {
		return nil
	}
	code, ok := ParsePostalCode(order.ShippingAddress.PostalCode)
	if !ok {
		return nil
	}
	for i := range partners {
		if partnerCovers(partners[i].ZoneRanges, code) {
			return &partners[i]
		}
	}
	return nil
}

func partnerCovers(ranges []string, code int) bool {
	for _, r := range ranges {
		rule, ok := ParsePostalRule(r)
		if ok && rule.Contains(code) {
			return true
		}
	}
	return false
}

// ValidZoneRange reports whether s is an exact numeric postal code or an
// ascending "start-end" range.
func ValidZoneRange(s string) bool {
	rule, ok := ParsePostalRule(s)
	return ok && rule.Low <= rule.High
}
