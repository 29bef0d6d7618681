package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/internal/parties"
	"github.com/dferrantino/quotehub-backend/pkg/config"
	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
	"github.com/dferrantino/quotehub-backend/pkg/security"
)

type fakeUserRepo struct {
	user      *models.User
	lastLogin *time.Time
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.user == nil || f.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return f.user, nil
}

func (f *fakeUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	f.lastLogin = &at
	return nil
}

type fakeMembershipsRepo struct {
	memberships []parties.MembershipWithParty
}

func (f *fakeMembershipsRepo) ListUserParties(ctx context.Context, userID uuid.UUID) ([]parties.MembershipWithParty, error) {
	return f.memberships, nil
}

type fakeSessionManager struct {
	generated string
	revokedID string
}

func (f *fakeSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	f.generated = accessID
	return "refresh-token", nil
}

func (f *fakeSessionManager) Revoke(ctx context.Context, accessID string) error {
	f.revokedID = accessID
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "quotehub-test",
		ExpirationMinutes: 15,
	}
}

func testUser(t *testing.T, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{BcryptCost: 4})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    "Dana",
		LastName:     "Buyer",
		IsActive:     true,
	}
}

func supplierMembership() parties.MembershipWithParty {
	return parties.MembershipWithParty{
		PartyID:   uuid.New(),
		PartyName: "Acme Wholesale",
		PartyType: enums.PartyTypeSupplier,
		Role:      enums.MemberRoleOwner,
	}
}

func newAuthService(t *testing.T, userRepo *fakeUserRepo, membershipRepo *fakeMembershipsRepo, sessions *fakeSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:        userRepo,
		MembershipsRepo: membershipRepo,
		SessionManager:  sessions,
		JWTConfig:       testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestLoginSuccess(t *testing.T) {
	userRepo := &fakeUserRepo{user: testUser(t, "dana@example.com", "correct-horse")}
	membershipRepo := &fakeMembershipsRepo{memberships: []parties.MembershipWithParty{supplierMembership()}}
	sessions := &fakeSessionManager{}
	svc := newAuthService(t, userRepo, membershipRepo, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "Dana@Example.com ", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected tokens to be issued")
	}
	if len(resp.Parties) != 1 {
		t.Fatalf("expected one party summary, got %d", len(resp.Parties))
	}
	if resp.User == nil || resp.User.Email != "dana@example.com" {
		t.Fatalf("expected sanitized user in response")
	}
	if userRepo.lastLogin == nil {
		t.Fatalf("expected last login to be recorded")
	}
	if sessions.generated == "" {
		t.Fatalf("expected session to be stored under access id")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := &fakeUserRepo{user: testUser(t, "dana@example.com", "correct-horse")}
	svc := newAuthService(t, userRepo, &fakeMembershipsRepo{}, &fakeSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "dana@example.com", Password: "battery-staple"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newAuthService(t, &fakeUserRepo{}, &fakeMembershipsRepo{}, &fakeSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	user := testUser(t, "dana@example.com", "correct-horse")
	user.IsActive = false
	svc := newAuthService(t, &fakeUserRepo{user: user}, &fakeMembershipsRepo{}, &fakeSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "dana@example.com", Password: "correct-horse"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginWithoutMemberships(t *testing.T) {
	userRepo := &fakeUserRepo{user: testUser(t, "dana@example.com", "correct-horse")}
	svc := newAuthService(t, userRepo, &fakeMembershipsRepo{}, &fakeSessionManager{})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "dana@example.com", Password: "correct-horse"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &fakeSessionManager{}
	svc := newAuthService(t, &fakeUserRepo{}, &fakeMembershipsRepo{}, sessions)

	if err := svc.Logout(context.Background(), "access-123"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if sessions.revokedID != "access-123" {
		t.Fatalf("expected session revocation, got %q", sessions.revokedID)
	}

	if err := svc.Logout(context.Background(), "  "); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank access id, got %v", err)
	}
}
