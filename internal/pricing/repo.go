package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/pkg/db/models"
)

// Repository exposes private-price persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByProductAndParty(ctx context.Context, productID, partyID uuid.UUID) (*models.PrivatePrice, error)
	Create(ctx context.Context, price *models.PrivatePrice) (*models.PrivatePrice, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, productID, partyID uuid.UUID) (int64, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.PrivatePrice, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a private-price repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByProductAndParty(ctx context.Context, productID, partyID uuid.UUID) (*models.PrivatePrice, error) {
	var price models.PrivatePrice
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND party_id = ?", productID, partyID).
		First(&price).Error
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *repository) Create(ctx context.Context, price *models.PrivatePrice) (*models.PrivatePrice, error) {
	if err := r.db.WithContext(ctx).Create(price).Error; err != nil {
		return nil, err
	}
	return price, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.PrivatePrice{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, productID, partyID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("product_id = ? AND party_id = ?", productID, partyID).
		Delete(&models.PrivatePrice{})
	return res.RowsAffected, res.Error
}

func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.PrivatePrice, error) {
	var prices []models.PrivatePrice
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at ASC").
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}
