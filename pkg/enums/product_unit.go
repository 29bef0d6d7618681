package enums

import "fmt"

// ProductUnit describes the unit a product is quoted in.
type ProductUnit string

const (
	ProductUnitPiece ProductUnit = "piece"
	ProductUnitKg    ProductUnit = "kg"
	ProductUnitGram  ProductUnit = "g"
	ProductUnitLiter ProductUnit = "l"
	ProductUnitMeter ProductUnit = "m"
	ProductUnitBox   ProductUnit = "box"
	ProductUnitHour  ProductUnit = "hour"
)

var validProductUnits = []ProductUnit{
	ProductUnitPiece,
	ProductUnitKg,
	ProductUnitGram,
	ProductUnitLiter,
	ProductUnitMeter,
	ProductUnitBox,
	ProductUnitHour,
}

// String implements fmt.Stringer.
func (u ProductUnit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known ProductUnit.
func (u ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw input into a ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
