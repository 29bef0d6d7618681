package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/internal/parties"
	"github.com/dferrantino/quotehub-backend/internal/users"
	"github.com/dferrantino/quotehub-backend/pkg/config"
	"github.com/dferrantino/quotehub-backend/pkg/db"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
	"github.com/dferrantino/quotehub-backend/pkg/security"
)

// RegisterRequest contains the payload required for onboarding a new party.
type RegisterRequest struct {
	FirstName string          `json:"first_name" validate:"required"`
	LastName  string          `json:"last_name" validate:"required"`
	Email     string          `json:"email" validate:"required,email"`
	Password  string          `json:"password" validate:"required,min=8"`
	Phone     *string         `json:"phone,omitempty"`
	PartyName string          `json:"party_name" validate:"required"`
	PartyType enums.PartyType `json:"party_type" validate:"required"`
	LegalName *string         `json:"legal_name,omitempty"`
	Country   *string         `json:"country,omitempty"`
	AcceptTOS bool            `json:"accept_tos"`
}

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(req.PartyName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "party_name is required")
	}
	if !req.PartyType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid party type")
	}
	if !req.AcceptTOS {
		return pkgerrors.New(pkgerrors.CodeValidation, "accept_tos must be true")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		partyRepo := parties.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Phone:        req.Phone,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		party, err := partyRepo.Create(ctx, parties.CreatePartyDTO{
			Type:      req.PartyType,
			Name:      strings.TrimSpace(req.PartyName),
			LegalName: req.LegalName,
			Country:   req.Country,
			OwnerID:   user.ID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create party")
		}

		if _, err := partyRepo.CreateMembership(ctx, party.ID, user.ID, enums.MemberRoleOwner); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create membership")
		}

		if err := userRepo.UpdatePartyIDs(ctx, user.ID, []uuid.UUID{party.ID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "associate party with user")
		}

		return nil
	})
}
