package parties

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/dferrantino/quotehub-backend/pkg/enums"
)

func newPartyTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS parties (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		name TEXT NOT NULL,
		legal_name TEXT,
		description TEXT,
		email TEXT,
		phone TEXT,
		country TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		owner_id TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS party_memberships (
		id TEXT PRIMARY KEY,
		party_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	require.NoError(t, db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_party_memberships_party_user
		ON party_memberships (party_id, user_id)`).Error)

	return db
}

func createTestParty(t *testing.T, repo *Repository, owner uuid.UUID) uuid.UUID {
	t.Helper()
	party, err := repo.Create(context.Background(), CreatePartyDTO{
		Type:    enums.PartyTypeSupplier,
		Name:    "Acme Wholesale " + uuid.NewString()[:8],
		OwnerID: owner,
	})
	require.NoError(t, err)
	return party.ID
}

func TestRepositoryCreateAndFindParty(t *testing.T) {
	db := newPartyTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	id := createTestParty(t, repo, owner)

	found, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, owner, found.OwnerID)
	require.True(t, found.IsActive)

	_, err = repo.FindByID(ctx, uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryFindByOwner(t *testing.T) {
	db := newPartyTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	owner := uuid.New()
	createTestParty(t, repo, owner)
	createTestParty(t, repo, owner)
	createTestParty(t, repo, uuid.New())

	owned, err := repo.FindByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, owned, 2)
}

func TestRepositoryMembershipRoles(t *testing.T) {
	db := newPartyTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	partyID := createTestParty(t, repo, uuid.New())
	userID := uuid.New()

	_, err := repo.CreateMembership(ctx, partyID, userID, enums.MemberRoleAdmin)
	require.NoError(t, err)

	hasAdmin, err := repo.UserHasRole(ctx, userID, partyID, enums.MemberRoleOwner, enums.MemberRoleAdmin)
	require.NoError(t, err)
	require.True(t, hasAdmin)

	hasOwner, err := repo.UserHasRole(ctx, userID, partyID, enums.MemberRoleOwner)
	require.NoError(t, err)
	require.False(t, hasOwner)

	none, err := repo.UserHasRole(ctx, userID, partyID)
	require.NoError(t, err)
	require.False(t, none)
}

func TestRepositoryMembershipLifecycle(t *testing.T) {
	db := newPartyTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	partyID := createTestParty(t, repo, uuid.New())
	userID := uuid.New()

	_, err := repo.GetMembership(ctx, userID, partyID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.CreateMembership(ctx, partyID, userID, enums.MemberRoleMember)
	require.NoError(t, err)

	membership, err := repo.GetMembership(ctx, userID, partyID)
	require.NoError(t, err)
	require.Equal(t, enums.MemberRoleMember, membership.Role)

	_, err = repo.CreateMembership(ctx, partyID, userID, "janitor")
	require.Error(t, err)

	require.NoError(t, repo.DeleteMembership(ctx, partyID, userID))
	_, err = repo.GetMembership(ctx, userID, partyID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryCountMembersWithRoles(t *testing.T) {
	db := newPartyTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	partyID := createTestParty(t, repo, uuid.New())
	_, err := repo.CreateMembership(ctx, partyID, uuid.New(), enums.MemberRoleOwner)
	require.NoError(t, err)
	_, err = repo.CreateMembership(ctx, partyID, uuid.New(), enums.MemberRoleMember)
	require.NoError(t, err)

	owners, err := repo.CountMembersWithRoles(ctx, partyID, enums.MemberRoleOwner)
	require.NoError(t, err)
	require.EqualValues(t, 1, owners)
}

func TestRepositoryListUserParties(t *testing.T) {
	db := newPartyTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	firstParty := createTestParty(t, repo, userID)
	secondParty := createTestParty(t, repo, userID)

	_, err := repo.CreateMembership(ctx, firstParty, userID, enums.MemberRoleOwner)
	require.NoError(t, err)
	_, err = repo.CreateMembership(ctx, secondParty, userID, enums.MemberRoleMember)
	require.NoError(t, err)

	rows, err := repo.ListUserParties(ctx, userID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		require.NotEmpty(t, row.PartyName)
		require.Equal(t, enums.PartyTypeSupplier, row.PartyType)
	}
}
