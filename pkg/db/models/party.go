package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

// Party represents a legal entity on the platform, either a buying company
// or a selling supplier.
type Party struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type        enums.PartyType   `gorm:"column:type;type:party_type;not null"`
	Name        string            `gorm:"column:name;not null"`
	LegalName   *string           `gorm:"column:legal_name"`
	Description *string           `gorm:"column:description"`
	Email       *string           `gorm:"column:email"`
	Phone       *string           `gorm:"column:phone"`
	Country     *string           `gorm:"column:country"`
	IsActive    bool              `gorm:"column:is_active;not null;default:true"`
	OwnerID     uuid.UUID         `gorm:"column:owner_id;type:uuid;not null"`
	Memberships []PartyMembership `gorm:"foreignKey:PartyID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
