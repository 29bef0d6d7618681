package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

// ProductDTO exposes a catalog listing in API responses.
type ProductDTO struct {
	ID              uuid.UUID         `json:"id"`
	SupplierPartyID uuid.UUID         `json:"supplier_party_id"`
	SKU             string            `json:"sku"`
	Name            string            `json:"name"`
	Description     *string           `json:"description,omitempty"`
	Categories      []string          `json:"categories"`
	Unit            enums.ProductUnit `json:"unit"`
	DefaultPrice    decimal.Decimal   `json:"default_price"`
	DefaultCurrency enums.Currency    `json:"default_currency"`
	MinOrderQty     *decimal.Decimal  `json:"min_order_qty,omitempty"`
	IsActive        bool              `json:"is_active"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// NewProductDTO maps a persisted product into a DTO.
func NewProductDTO(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	categories := make([]string, len(m.Categories))
	copy(categories, m.Categories)
	return &ProductDTO{
		ID:              m.ID,
		SupplierPartyID: m.SupplierPartyID,
		SKU:             m.SKU,
		Name:            m.Name,
		Description:     m.Description,
		Categories:      categories,
		Unit:            m.Unit,
		DefaultPrice:    m.DefaultPrice,
		DefaultCurrency: m.DefaultCurrency,
		MinOrderQty:     m.MinOrderQty,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ProductListResult pairs a page of products with the next cursor.
type ProductListResult struct {
	Items  []ProductDTO `json:"items"`
	Cursor string       `json:"cursor"`
}
