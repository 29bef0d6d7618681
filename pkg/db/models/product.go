package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

// Product represents a supplier's catalog listing. Its default price is the
// public price every viewer sees unless a private price override applies.
type Product struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SupplierPartyID uuid.UUID         `gorm:"column:supplier_party_id;type:uuid;not null;uniqueIndex:ux_products_supplier_sku"`
	SKU             string            `gorm:"column:sku;not null;uniqueIndex:ux_products_supplier_sku"`
	Name            string            `gorm:"column:name;not null"`
	Description     *string           `gorm:"column:description"`
	Categories      pq.StringArray    `gorm:"column:categories;type:text[];not null;default:ARRAY[]::text[]"`
	Unit            enums.ProductUnit `gorm:"column:unit;type:product_unit;not null;default:'piece'"`
	DefaultPrice    decimal.Decimal   `gorm:"column:default_price;type:numeric(12,2);not null"`
	DefaultCurrency enums.Currency    `gorm:"column:default_currency;type:text;not null;default:'USD'"`
	MinOrderQty     *decimal.Decimal  `gorm:"column:min_order_qty;type:numeric(12,3)"`
	IsActive        bool              `gorm:"column:is_active;not null;default:true"`
	PrivatePrices   []PrivatePrice    `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
