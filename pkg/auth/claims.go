package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID        uuid.UUID
	ActivePartyID *uuid.UUID
	Role          enums.MemberRole
	PartyType     *enums.PartyType
	JTI           string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID        uuid.UUID        `json:"user_id"`
	ActivePartyID *uuid.UUID       `json:"active_party_id,omitempty"`
	Role          enums.MemberRole `json:"role"`
	PartyType     *enums.PartyType `json:"party_type,omitempty"`
	jwt.RegisteredClaims
}
