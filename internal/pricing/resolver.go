package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

// Money pairs an amount with its currency.
type Money struct {
	Amount   decimal.Decimal
	Currency enums.Currency
}

// Override is the counterpart-specific price override applied on top of a
// product's default price. It is a closed sum: exactly FixedPrice or
// Discount, never both.
type Override interface {
	isOverride()
}

// FixedPrice replaces the default price outright. Its currency wins and may
// legitimately differ from the default's.
type FixedPrice struct {
	Amount   decimal.Decimal
	Currency enums.Currency
}

func (FixedPrice) isOverride() {}

// Discount applies a percentage off the default price. It has no currency of
// its own; the result always rides the default currency.
type Discount struct {
	Percent decimal.Decimal
}

func (Discount) isOverride() {}

// EffectivePrice is the price a specific viewer sees after resolution.
type EffectivePrice struct {
	Amount         decimal.Decimal  `json:"amount"`
	Currency       enums.Currency   `json:"currency"`
	IsSpecial      bool             `json:"isSpecial"`
	SavingsPercent *decimal.Decimal `json:"savingsPercent,omitempty"`
}

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

// Resolve computes the effective price for a viewer given the product's
// default price and an optional private override. It is a pure function: no
// I/O, identical inputs always produce identical output.
//
// Amounts round to 2 decimal places and percentages to 1, both half-up.
// Savings are never computed across currencies and never reported when the
// default amount is zero. Out-of-domain overrides (negative prices,
// discounts outside 0..100) are rejected at the write boundary that stores
// the override, not here.
func Resolve(def Money, override Override) EffectivePrice {
	switch o := override.(type) {
	case FixedPrice:
		return EffectivePrice{
			Amount:         o.Amount.Round(2),
			Currency:       o.Currency,
			IsSpecial:      true,
			SavingsPercent: fixedSavings(def, o),
		}
	case Discount:
		amount := def.Amount.Mul(one.Sub(o.Percent.Div(oneHundred))).Round(2)
		var savings *decimal.Decimal
		if def.Amount.IsPositive() {
			rounded := o.Percent.Round(1)
			savings = &rounded
		}
		return EffectivePrice{
			Amount:         amount,
			Currency:       def.Currency,
			IsSpecial:      true,
			SavingsPercent: savings,
		}
	default:
		return EffectivePrice{
			Amount:   def.Amount.Round(2),
			Currency: def.Currency,
		}
	}
}

// fixedSavings returns the savings percentage of a fixed override relative
// to the default price, or nil when a percentage would be meaningless:
// cross-currency comparison, zero default, or an override above the default.
func fixedSavings(def Money, o FixedPrice) *decimal.Decimal {
	if o.Currency != def.Currency {
		return nil
	}
	if !def.Amount.IsPositive() {
		return nil
	}
	savings := def.Amount.Sub(o.Amount).
		Div(def.Amount).
		Mul(oneHundred).
		Round(1)
	if savings.IsNegative() {
		return nil
	}
	return &savings
}
