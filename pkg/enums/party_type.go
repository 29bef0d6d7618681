package enums

import "fmt"

// PartyType distinguishes buying companies from selling suppliers.
type PartyType string

const (
	PartyTypeCompany  PartyType = "company"
	PartyTypeSupplier PartyType = "supplier"
)

var validPartyTypes = []PartyType{
	PartyTypeCompany,
	PartyTypeSupplier,
}

// String implements fmt.Stringer.
func (p PartyType) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PartyType.
func (p PartyType) IsValid() bool {
	for _, candidate := range validPartyTypes {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePartyType converts raw input into a PartyType.
func ParsePartyType(value string) (PartyType, error) {
	for _, candidate := range validPartyTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid party type %q", value)
}
