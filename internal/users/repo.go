package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/internal/repo"
	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	dbtypes "github.com/dferrantino/quotehub-backend/pkg/db/types"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdatePasswordHash overwrites the user's stored credential hash.
func (r *Repository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password_hash", hash).Error
}

// UpdatePartyIDs overwrites the user's party_ids array.
func (r *Repository) UpdatePartyIDs(ctx context.Context, id uuid.UUID, partyIDs []uuid.UUID) error {
	return r.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("party_ids", dbtypes.UUIDArray(partyIDs)).Error
}
