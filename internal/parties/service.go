package parties

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/pkg/db/models"
	"github.com/dferrantino/quotehub-backend/pkg/enums"
	pkgerrors "github.com/dferrantino/quotehub-backend/pkg/errors"
)

type partyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Party, error)
	Update(ctx context.Context, party *models.Party) error
	GetMembership(ctx context.Context, userID, partyID uuid.UUID) (*models.PartyMembership, error)
	CreateMembership(ctx context.Context, partyID, userID uuid.UUID, role enums.MemberRole) (*models.PartyMembership, error)
	DeleteMembership(ctx context.Context, partyID, userID uuid.UUID) error
	UserHasRole(ctx context.Context, userID, partyID uuid.UUID, roles ...enums.MemberRole) (bool, error)
	CountMembersWithRoles(ctx context.Context, partyID uuid.UUID, roles ...enums.MemberRole) (int64, error)
	ListMembers(ctx context.Context, partyID uuid.UUID) ([]MemberDTO, error)
	ListUserParties(ctx context.Context, userID uuid.UUID) ([]MembershipWithParty, error)
}

// Service exposes party operations.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*PartyDTO, error)
	Update(ctx context.Context, userID, partyID uuid.UUID, input UpdatePartyInput) (*PartyDTO, error)
	ListMembers(ctx context.Context, userID, partyID uuid.UUID) ([]MemberDTO, error)
	AddMember(ctx context.Context, actorID, partyID, targetUserID uuid.UUID, role enums.MemberRole) (*models.PartyMembership, error)
	RemoveMember(ctx context.Context, actorID, partyID, targetUserID uuid.UUID) error
	ListUserParties(ctx context.Context, userID uuid.UUID) ([]MembershipWithParty, error)
}

type service struct {
	repo partyRepository
}

// NewService builds a party service with the provided repository.
func NewService(repo partyRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("party repository required")
	}
	return &service{repo: repo}, nil
}

// UpdatePartyInput captures the allowed party fields for mutation.
type UpdatePartyInput struct {
	Name        *string
	LegalName   *string
	Description *string
	Email       *string
	Phone       *string
	Country     *string
	IsActive    *bool
}

var adminRoles = []enums.MemberRole{enums.MemberRoleOwner, enums.MemberRoleAdmin}

func (s *service) requireAdmin(ctx context.Context, userID, partyID uuid.UUID) error {
	ok, err := s.repo.UserHasRole(ctx, userID, partyID, adminRoles...)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient party role")
	}
	return nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*PartyDTO, error) {
	party, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "party not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party")
	}
	return FromModel(party), nil
}

func (s *service) Update(ctx context.Context, userID, partyID uuid.UUID, input UpdatePartyInput) (*PartyDTO, error) {
	if err := s.requireAdmin(ctx, userID, partyID); err != nil {
		return nil, err
	}

	party, err := s.repo.FindByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "party not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load party")
	}

	if input.Name != nil {
		party.Name = *input.Name
	}
	if input.LegalName != nil {
		party.LegalName = cloneStringPtr(input.LegalName)
	}
	if input.Description != nil {
		party.Description = cloneStringPtr(input.Description)
	}
	if input.Email != nil {
		party.Email = cloneStringPtr(input.Email)
	}
	if input.Phone != nil {
		party.Phone = cloneStringPtr(input.Phone)
	}
	if input.Country != nil {
		party.Country = cloneStringPtr(input.Country)
	}
	if input.IsActive != nil {
		party.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, party); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update party")
	}
	return FromModel(party), nil
}

func (s *service) ListMembers(ctx context.Context, userID, partyID uuid.UUID) ([]MemberDTO, error) {
	if err := s.requireAdmin(ctx, userID, partyID); err != nil {
		return nil, err
	}

	members, err := s.repo.ListMembers(ctx, partyID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list party members")
	}
	return members, nil
}

func (s *service) AddMember(ctx context.Context, actorID, partyID, targetUserID uuid.UUID, role enums.MemberRole) (*models.PartyMembership, error) {
	if err := s.requireAdmin(ctx, actorID, partyID); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	existing, err := s.repo.GetMembership(ctx, targetUserID, partyID)
	if err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already a member")
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}

	membership, err := s.repo.CreateMembership(ctx, partyID, targetUserID, role)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
	}
	return membership, nil
}

func (s *service) RemoveMember(ctx context.Context, actorID, partyID, targetUserID uuid.UUID) error {
	if err := s.requireAdmin(ctx, actorID, partyID); err != nil {
		return err
	}

	membership, err := s.repo.GetMembership(ctx, targetUserID, partyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}

	if membership.Role == enums.MemberRoleOwner {
		count, err := s.repo.CountMembersWithRoles(ctx, partyID, enums.MemberRoleOwner)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count owners")
		}
		if count <= 1 {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot remove last owner")
		}
	}

	if err := s.repo.DeleteMembership(ctx, partyID, targetUserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete membership")
	}

	return nil
}

func (s *service) ListUserParties(ctx context.Context, userID uuid.UUID) ([]MembershipWithParty, error) {
	rows, err := s.repo.ListUserParties(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list user parties")
	}
	return rows, nil
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
