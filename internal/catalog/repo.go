package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/pagination"
)

// Repository handles catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to catalog operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create persists a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// FindByID loads a product by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindBySupplierAndSKU loads a supplier's product by SKU.
func (r *Repository) FindBySupplierAndSKU(ctx context.Context, supplierPartyID uuid.UUID, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("supplier_party_id = ? AND sku = ?", supplierPartyID, sku).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update saves the provided product.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

type listProductsParams struct {
	SupplierPartyID *uuid.UUID
	Category        string
	ActiveOnly      bool
	Limit           int
	Cursor          *pagination.Cursor
}

// List returns a page of products ordered newest first.
func (r *Repository) List(ctx context.Context, params listProductsParams) ([]models.Product, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(params.Limit)
	normalized := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Product{})
	if params.SupplierPartyID != nil {
		query = query.Where("supplier_party_id = ?", *params.SupplierPartyID)
	}
	if params.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if params.Category != "" {
		query = query.Where("? = ANY(categories)", params.Category)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var products []models.Product
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&products).Error; err != nil {
		return nil, nil, err
	}

	if len(products) > normalized {
		next := products[normalized]
		products = products[:normalized]
		return products, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return products, nil, nil
}
