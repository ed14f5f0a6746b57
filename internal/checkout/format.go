package checkout

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// MinorUnits converts a major-unit amount to the integer string the gateway
// expects. Ties round away from zero: 12.345 becomes "1235".
func MinorUnits(amount decimal.Decimal) (string, error) {
	if amount.IsNegative() {
		return "", fmt.Errorf("%w: %s is negative", ErrInvalidAmount, amount.String())
	}
	return amount.Mul(hundred).Round(0).StringFixed(0), nil
}

// CustomerName joins given, middle and family names, skipping the middle name
// when it is blank.
func CustomerName(a Address) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{a.GivenName, a.AdditionalName, a.FamilyName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func StreetAddress(a Address) string {
	if a.AddressLine2 == "" {
		return a.AddressLine1
	}
	return a.AddressLine1 + ", " + a.AddressLine2
}
