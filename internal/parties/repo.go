package parties

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

// Repository handles party and membership persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to party operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new party row.
func (r *Repository) Create(ctx context.Context, dto CreatePartyDTO) (*models.Party, error) {
	party := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(party).Error; err != nil {
		return nil, err
	}
	return party, nil
}

// FindByID loads a party by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	var party models.Party
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&party).Error; err != nil {
		return nil, err
	}
	return &party, nil
}

// FindByOwner returns all parties owned by the provided user.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Party, error) {
	var parties []models.Party
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&parties).Error; err != nil {
		return nil, err
	}
	return parties, nil
}

// Update saves the provided party.
func (r *Repository) Update(ctx context.Context, party *models.Party) error {
	if party == nil {
		return fmt.Errorf("party is required")
	}
	return r.db.WithContext(ctx).Save(party).Error
}

// GetMembership retrieves a membership by user and party.
func (r *Repository) GetMembership(ctx context.Context, userID, partyID uuid.UUID) (*models.PartyMembership, error) {
	var membership models.PartyMembership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND party_id = ?", userID, partyID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// CreateMembership persists a new membership record.
func (r *Repository) CreateMembership(ctx context.Context, partyID, userID uuid.UUID, role enums.MemberRole) (*models.PartyMembership, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}

	membership := &models.PartyMembership{
		PartyID: partyID,
		UserID:  userID,
		Role:    role,
	}

	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// DeleteMembership removes a user's membership in a party.
func (r *Repository) DeleteMembership(ctx context.Context, partyID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("party_id = ? AND user_id = ?", partyID, userID).
		Delete(&models.PartyMembership{}).Error
}

// UserHasRole reports whether the user holds one of the provided roles in the party.
func (r *Repository) UserHasRole(ctx context.Context, userID, partyID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PartyMembership{}).
		Where("user_id = ? AND party_id = ? AND role IN ?", userID, partyID, roles).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountMembersWithRoles counts party members holding any of the roles.
func (r *Repository) CountMembersWithRoles(ctx context.Context, partyID uuid.UUID, roles ...enums.MemberRole) (int64, error) {
	if len(roles) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PartyMembership{}).
		Where("party_id = ? AND role IN ?", partyID, roles).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// ListMembers returns party members joined with their identity fields.
func (r *Repository) ListMembers(ctx context.Context, partyID uuid.UUID) ([]MemberDTO, error) {
	var rows []memberRow

	err := r.db.WithContext(ctx).
		Model(&models.PartyMembership{}).
		Select("party_memberships.*, users.email AS email, users.first_name AS first_name, users.last_name AS last_name").
		Joins("JOIN users ON users.id = party_memberships.user_id").
		Where("party_memberships.party_id = ?", partyID).
		Order("users.email").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return memberRowsToDTO(rows), nil
}

// ListUserParties returns the parties a user belongs to with membership metadata.
func (r *Repository) ListUserParties(ctx context.Context, userID uuid.UUID) ([]MembershipWithParty, error) {
	var rows []membershipWithPartyRow

	err := r.db.WithContext(ctx).
		Model(&models.PartyMembership{}).
		Select("party_memberships.*, parties.name AS party_name, parties.type AS party_type").
		Joins("JOIN parties ON parties.id = party_memberships.party_id").
		Where("party_memberships.user_id = ?", userID).
		Order("parties.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return membershipRowsToDTO(rows), nil
}
