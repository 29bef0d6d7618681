package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

// PartyMembership links a user to a party with a role.
type PartyMembership struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PartyID   uuid.UUID        `gorm:"column:party_id;type:uuid;not null;uniqueIndex:ux_party_memberships_party_user"`
	UserID    uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_party_memberships_party_user"`
	Role      enums.MemberRole `gorm:"column:role;type:member_role;not null;default:'member'"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
