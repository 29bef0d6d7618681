package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

// PrivatePrice is a counterpart-specific override of a product's default
// price. Exactly one override may exist per (product, party) pair; writes
// replace any previous row. The kind column tags which value columns are
// populated: fixed_amount/fixed_currency for "fixed", discount_percent for
// "discount". A check constraint in the migration backs the exclusivity.
type PrivatePrice struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID       uuid.UUID              `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_private_prices_product_party"`
	PartyID         uuid.UUID              `gorm:"column:party_id;type:uuid;not null;uniqueIndex:ux_private_prices_product_party"`
	Kind            enums.PrivatePriceKind `gorm:"column:kind;type:private_price_kind;not null"`
	FixedAmount     *decimal.Decimal       `gorm:"column:fixed_amount;type:numeric(12,2)"`
	FixedCurrency   *enums.Currency        `gorm:"column:fixed_currency;type:text"`
	DiscountPercent *decimal.Decimal       `gorm:"column:discount_percent;type:numeric(5,2)"`
	CreatedByUserID uuid.UUID              `gorm:"column:created_by_user_id;type:uuid;not null"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
