package auth

import (
	"github.com/google/uuid"

	"github.com/dferrantino/quotehub-backend/internal/users"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// PartySummary describes the party metadata returned after login.
type PartySummary struct {
	ID   uuid.UUID        `json:"id"`
	Name string           `json:"name"`
	Type enums.PartyType  `json:"type"`
	Role enums.MemberRole `json:"role"`
}

// LoginResponse contains the tokens, user, and party list produced by a successful login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	Parties      []PartySummary `json:"parties"`
	User         *users.UserDTO `json:"user"`
}
