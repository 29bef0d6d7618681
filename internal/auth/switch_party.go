package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgAuth "github.com/dferrantino/quotehub-backend/pkg/auth"
	"github.com/dferrantino/quotehub-backend/pkg/auth/session"
	"github.com/dferrantino/quotehub-backend/pkg/config"
	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
)

// SwitchPartyInput captures the data required to switch the active party.
type SwitchPartyInput struct {
	UserID        uuid.UUID
	PartyID       uuid.UUID
	AccessTokenID string
	RefreshToken  string
}

// SwitchPartyResult returns the tokens issued after switching parties.
type SwitchPartyResult struct {
	AccessToken  string
	RefreshToken string
	Party        PartySummary
}

type switchMembershipLoader interface {
	GetMembership(ctx context.Context, userID, partyID uuid.UUID) (*models.PartyMembership, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Party, error)
}

type switchSessionRotator interface {
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
}

type switchPartyService struct {
	parties switchMembershipLoader
	session switchSessionRotator
	jwtCfg  config.JWTConfig
}

// SwitchPartyServiceParams bundles dependencies for the switch flow.
type SwitchPartyServiceParams struct {
	PartiesRepo    switchMembershipLoader
	SessionManager switchSessionRotator
	JWTConfig      config.JWTConfig
}

// SwitchPartyService is the interface exposed to the controller.
type SwitchPartyService interface {
	Switch(ctx context.Context, input SwitchPartyInput) (*SwitchPartyResult, error)
}

// NewSwitchPartyService constructs the service.
func NewSwitchPartyService(params SwitchPartyServiceParams) (SwitchPartyService, error) {
	if params.PartiesRepo == nil {
		return nil, errors.New("parties repository required")
	}
	if params.SessionManager == nil {
		return nil, errors.New("session manager required")
	}
	return &switchPartyService{
		parties: params.PartiesRepo,
		session: params.SessionManager,
		jwtCfg:  params.JWTConfig,
	}, nil
}

func (s *switchPartyService) Switch(ctx context.Context, input SwitchPartyInput) (*SwitchPartyResult, error) {
	membership, err := s.parties.GetMembership(ctx, input.UserID, input.PartyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party membership required")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup membership")
	}

	party, err := s.parties.FindByID(ctx, input.PartyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "party not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load party")
	}
	if !party.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "party is inactive")
	}

	newAccessID, newRefreshToken, err := s.session.Rotate(ctx, input.AccessTokenID, input.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	partyType := party.Type
	payload := pkgAuth.AccessTokenPayload{
		UserID:        input.UserID,
		ActivePartyID: &input.PartyID,
		Role:          membership.Role,
		PartyType:     &partyType,
		JTI:           newAccessID,
	}

	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, time.Now().UTC(), payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	return &SwitchPartyResult{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		Party: PartySummary{
			ID:   party.ID,
			Name: party.Name,
			Type: party.Type,
			Role: membership.Role,
		},
	}, nil
}
