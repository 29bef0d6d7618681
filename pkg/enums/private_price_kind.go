package enums

import "fmt"

// PrivatePriceKind tags a counterpart-specific price override as either a
// fixed price or a discount percentage. Exactly one of the two value columns
// is populated for a given kind.
type PrivatePriceKind string

const (
	PrivatePriceKindFixed    PrivatePriceKind = "fixed"
	PrivatePriceKindDiscount PrivatePriceKind = "discount"
)

var validPrivatePriceKinds = []PrivatePriceKind{
	PrivatePriceKindFixed,
	PrivatePriceKindDiscount,
}

// String implements fmt.Stringer.
func (k PrivatePriceKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known PrivatePriceKind.
func (k PrivatePriceKind) IsValid() bool {
	for _, candidate := range validPrivatePriceKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParsePrivatePriceKind converts raw input into a PrivatePriceKind.
func ParsePrivatePriceKind(value string) (PrivatePriceKind, error) {
	for _, candidate := range validPrivatePriceKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid private price kind %q", value)
}
