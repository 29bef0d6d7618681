package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/internal/parties"
	"github.com/dferrantino/quotehub-backend/internal/users"
	pkgAuth "github.com/dferrantino/quotehub-backend/pkg/auth"
	"github.com/dferrantino/quotehub-backend/pkg/auth/session"
	"github.com/dferrantino/quotehub-backend/pkg/config"
	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
	"github.com/dferrantino/quotehub-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type service struct {
	users       userRepository
	memberships membershipsRepository
	session     sessionManager
	jwtCfg      config.JWTConfig
}

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type membershipsRepository interface {
	ListUserParties(ctx context.Context, userID uuid.UUID) ([]parties.MembershipWithParty, error)
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo        userRepository
	MembershipsRepo membershipsRepository
	SessionManager  sessionManager
	JWTConfig       config.JWTConfig
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.MembershipsRepo == nil {
		return nil, fmt.Errorf("memberships repository is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	return &service{
		users:       params.UserRepo,
		memberships: params.MembershipsRepo,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	memberships, err := s.memberships.ListUserParties(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list parties")
	}
	if len(memberships) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now, err := s.recordLogin(ctx, user)
	if err != nil {
		return nil, err
	}

	summaries := make([]PartySummary, 0, len(memberships))
	for _, m := range memberships {
		summaries = append(summaries, PartySummary{
			ID:   m.PartyID,
			Name: m.PartyName,
			Type: m.PartyType,
			Role: m.Role,
		})
	}

	primary := memberships[0]
	activePartyID := primary.PartyID
	partyType := primary.PartyType

	accessID := session.NewAccessID()
	tokenPayload := pkgAuth.AccessTokenPayload{
		UserID:        user.ID,
		ActivePartyID: &activePartyID,
		Role:          primary.Role,
		PartyType:     &partyType,
		JTI:           accessID,
	}
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, tokenPayload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	refreshToken, err := s.session.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Parties:      summaries,
		User:         users.FromModel(user),
	}, nil
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access id required")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	input := strings.TrimSpace(email)
	if input == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	user, err := s.users.FindByEmail(ctx, strings.ToLower(input))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *service) recordLogin(ctx context.Context, user *models.User) (time.Time, error) {
	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLoginAt = &now
	return now, nil
}
