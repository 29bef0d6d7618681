package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/pkg/auth/session"
	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
)

type fakeSwitchRepo struct {
	membership *models.PartyMembership
	party      *models.Party
}

func (f *fakeSwitchRepo) GetMembership(ctx context.Context, userID, partyID uuid.UUID) (*models.PartyMembership, error) {
	if f.membership == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.membership, nil
}

func (f *fakeSwitchRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Party, error) {
	if f.party == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.party, nil
}

type fakeRotator struct {
	err error
}

func (f *fakeRotator) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return "new-access-id", "new-refresh-token", nil
}

func newSwitchService(t *testing.T, repo *fakeSwitchRepo, rotator *fakeRotator) SwitchPartyService {
	t.Helper()
	svc, err := NewSwitchPartyService(SwitchPartyServiceParams{
		PartiesRepo:    repo,
		SessionManager: rotator,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func activeSupplier() *models.Party {
	return &models.Party{
		ID:       uuid.New(),
		Type:     enums.PartyTypeSupplier,
		Name:     "Acme Wholesale",
		IsActive: true,
	}
}

func TestSwitchPartySuccess(t *testing.T) {
	party := activeSupplier()
	repo := &fakeSwitchRepo{
		membership: &models.PartyMembership{PartyID: party.ID, Role: enums.MemberRoleAdmin},
		party:      party,
	}
	svc := newSwitchService(t, repo, &fakeRotator{})

	result, err := svc.Switch(context.Background(), SwitchPartyInput{
		UserID:        uuid.New(),
		PartyID:       party.ID,
		AccessTokenID: "old-access-id",
		RefreshToken:  "old-refresh-token",
	})
	if err != nil {
		t.Fatalf("switch party: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatalf("expected fresh access token")
	}
	if result.RefreshToken != "new-refresh-token" {
		t.Fatalf("expected rotated refresh token, got %q", result.RefreshToken)
	}
	if result.Party.ID != party.ID || result.Party.Role != enums.MemberRoleAdmin {
		t.Fatalf("unexpected party summary %+v", result.Party)
	}
}

func TestSwitchPartyWithoutMembership(t *testing.T) {
	svc := newSwitchService(t, &fakeSwitchRepo{}, &fakeRotator{})

	_, err := svc.Switch(context.Background(), SwitchPartyInput{UserID: uuid.New(), PartyID: uuid.New()})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSwitchPartyInactiveParty(t *testing.T) {
	party := activeSupplier()
	party.IsActive = false
	repo := &fakeSwitchRepo{
		membership: &models.PartyMembership{PartyID: party.ID, Role: enums.MemberRoleMember},
		party:      party,
	}
	svc := newSwitchService(t, repo, &fakeRotator{})

	_, err := svc.Switch(context.Background(), SwitchPartyInput{UserID: uuid.New(), PartyID: party.ID})
	if !pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestSwitchPartyInvalidRefreshToken(t *testing.T) {
	party := activeSupplier()
	repo := &fakeSwitchRepo{
		membership: &models.PartyMembership{PartyID: party.ID, Role: enums.MemberRoleMember},
		party:      party,
	}
	svc := newSwitchService(t, repo, &fakeRotator{err: session.ErrInvalidRefreshToken})

	_, err := svc.Switch(context.Background(), SwitchPartyInput{UserID: uuid.New(), PartyID: party.ID})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
