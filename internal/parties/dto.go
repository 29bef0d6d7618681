package parties

import (
	"time"

	"github.com/google/uuid"

	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

// PartyDTO exposes safe party data in API responses.
type PartyDTO struct {
	ID          uuid.UUID       `json:"id"`
	Type        enums.PartyType `json:"type"`
	Name        string          `json:"name"`
	LegalName   *string         `json:"legal_name,omitempty"`
	Description *string         `json:"description,omitempty"`
	Email       *string         `json:"email,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	Country     *string         `json:"country,omitempty"`
	IsActive    bool            `json:"is_active"`
	OwnerID     uuid.UUID       `json:"owner_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CreatePartyDTO holds creation-time data for a new party.
type CreatePartyDTO struct {
	Type        enums.PartyType
	Name        string
	LegalName   *string
	Description *string
	Email       *string
	Phone       *string
	Country     *string
	OwnerID     uuid.UUID
}

// MemberDTO joins a membership row with the member's identity fields.
type MemberDTO struct {
	UserID    uuid.UUID        `json:"user_id"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	LastName  string           `json:"last_name"`
	Role      enums.MemberRole `json:"role"`
	JoinedAt  time.Time        `json:"joined_at"`
}

// MembershipWithParty pairs a membership with its party metadata for
// the session party picker.
type MembershipWithParty struct {
	PartyID   uuid.UUID        `json:"party_id"`
	PartyName string           `json:"party_name"`
	PartyType enums.PartyType  `json:"party_type"`
	Role      enums.MemberRole `json:"role"`
}

type memberRow struct {
	models.PartyMembership
	Email     string `gorm:"column:email"`
	FirstName string `gorm:"column:first_name"`
	LastName  string `gorm:"column:last_name"`
}

type membershipWithPartyRow struct {
	models.PartyMembership
	PartyName string          `gorm:"column:party_name"`
	PartyType enums.PartyType `gorm:"column:party_type"`
}

// FromModel maps the persisted party into a DTO.
func FromModel(m *models.Party) *PartyDTO {
	if m == nil {
		return nil
	}
	return &PartyDTO{
		ID:          m.ID,
		Type:        m.Type,
		Name:        m.Name,
		LegalName:   m.LegalName,
		Description: m.Description,
		Email:       m.Email,
		Phone:       m.Phone,
		Country:     m.Country,
		IsActive:    m.IsActive,
		OwnerID:     m.OwnerID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ToModel prepares the GORM model from creation data, supplying defaults.
func (c CreatePartyDTO) ToModel() *models.Party {
	return &models.Party{
		Type:        c.Type,
		Name:        c.Name,
		LegalName:   c.LegalName,
		Description: c.Description,
		Email:       c.Email,
		Phone:       c.Phone,
		Country:     c.Country,
		IsActive:    true,
		OwnerID:     c.OwnerID,
	}
}

func memberRowsToDTO(rows []memberRow) []MemberDTO {
	result := make([]MemberDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, MemberDTO{
			UserID:    row.UserID,
			Email:     row.Email,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Role:      row.Role,
			JoinedAt:  row.CreatedAt,
		})
	}
	return result
}

func membershipRowsToDTO(rows []membershipWithPartyRow) []MembershipWithParty {
	result := make([]MembershipWithParty, 0, len(rows))
	for _, row := range rows {
		result = append(result, MembershipWithParty{
			PartyID:   row.PartyID,
			PartyName: row.PartyName,
			PartyType: row.PartyType,
			Role:      row.Role,
		})
	}
	return result
}
