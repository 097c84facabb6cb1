package listings

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/campuspool/campuspool-backend/pkg/db/models"
	"github.com/campuspool/campuspool-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupListingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  owner_id TEXT NOT NULL,
  owner_name TEXT NOT NULL,
  owner_verified INTEGER NOT NULL DEFAULT 0,
  scheduled_at DATETIME NOT NULL,
  source TEXT,
  destination TEXT,
  seats INTEGER NOT NULL DEFAULT 0,
  available_seats INTEGER NOT NULL DEFAULT 0,
  restaurant TEXT,
  delivery_location TEXT,
  max_people INTEGER,
  cost TEXT NOT NULL DEFAULT '0',
  members TEXT NOT NULL DEFAULT '[]',
  contributions TEXT NOT NULL DEFAULT '[]',
  version INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func createRide(t *testing.T, repo Repository, owner uuid.UUID, createdAt time.Time) *models.Listing {
	t.Helper()

	l := newRide(owner, 3)
	l.ID = uuid.New()
	l.CreatedAt = createdAt
	require.NoError(t, repo.Create(context.Background(), l))
	return l
}

func TestRepoCreateAndFindByID(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)

	owner := uuid.New()
	l := createRide(t, repo, owner, time.Now().UTC())

	got, err := repo.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, l.ID, got.ID)
	assert.Equal(t, enums.ListingKindRide, got.Kind)
	assert.Equal(t, owner, got.OwnerID)
	assert.Equal(t, 3, got.AvailableSeats)
	assert.Empty(t, got.Members)
	assert.Equal(t, int64(1), got.Version)
}

func TestRepoFindByIDMissing(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoConditionalUpdatePersistsMembershipState(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)

	l := createRide(t, repo, uuid.New(), time.Now().UTC())

	m := member("Alex")
	require.NoError(t, Join(l, m, nil))
	require.NoError(t, repo.ConditionalUpdate(context.Background(), l))
	assert.Equal(t, int64(2), l.Version)

	got, err := repo.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version)
	assert.Equal(t, 2, got.AvailableSeats)
	require.Len(t, got.Members, 1)
	assert.Equal(t, m.UserID, got.Members[0].UserID)
	assert.Equal(t, "Alex", got.Members[0].Name)
}

func TestRepoConditionalUpdateStaleVersion(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)

	l := createRide(t, repo, uuid.New(), time.Now().UTC())

	fresh, err := repo.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	stale, err := repo.FindByID(context.Background(), l.ID)
	require.NoError(t, err)

	require.NoError(t, Join(fresh, member("Alex"), nil))
	require.NoError(t, repo.ConditionalUpdate(context.Background(), fresh))

	require.NoError(t, Join(stale, member("Blake"), nil))
	err = repo.ConditionalUpdate(context.Background(), stale)
	require.ErrorIs(t, err, ErrVersionConflict)
}

func TestRepoConditionalUpdateMissingRow(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)

	l := newRide(uuid.New(), 2)
	l.ID = uuid.New()

	err := repo.ConditionalUpdate(context.Background(), l)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoConditionalUpdateCarriesOwnerHandoff(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)

	owner := uuid.New()
	l := createRide(t, repo, owner, time.Now().UTC())

	first := member("Alex")
	first.Verified = true
	require.NoError(t, Join(l, first, nil))
	require.NoError(t, repo.ConditionalUpdate(context.Background(), l))

	require.NoError(t, PromoteOwner(l, owner))
	require.NoError(t, repo.ConditionalUpdate(context.Background(), l))

	got, err := repo.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, first.UserID, got.OwnerID)
	assert.Equal(t, "Alex", got.OwnerName)
	assert.True(t, got.OwnerVerified)
	assert.Empty(t, got.Members)
	assert.Equal(t, 2, got.AvailableSeats)
}

func TestRepoDelete(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)

	l := createRide(t, repo, uuid.New(), time.Now().UTC())

	require.NoError(t, repo.Delete(context.Background(), l.ID))

	_, err := repo.FindByID(context.Background(), l.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.ErrorIs(t, repo.Delete(context.Background(), l.ID), gorm.ErrRecordNotFound)
}

func TestRepoFindByOwner(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)

	owner := uuid.New()
	mine := createRide(t, repo, owner, time.Now().UTC())
	createRide(t, repo, uuid.New(), time.Now().UTC())

	got, err := repo.FindByOwner(context.Background(), owner, enums.ListingKindRide, uuid.New())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mine.ID, got.ID)

	// Excluding the only owned listing yields nothing.
	got, err = repo.FindByOwner(context.Background(), owner, enums.ListingKindRide, mine.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Kind filter applies.
	got, err = repo.FindByOwner(context.Background(), owner, enums.ListingKindFood, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRepoListByKindOrdersNewestFirst(t *testing.T) {
	db := setupListingsTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	older := createRide(t, repo, uuid.New(), now.Add(-time.Hour))
	newer := createRide(t, repo, uuid.New(), now)

	food := newFood(uuid.New(), nil)
	food.ID = uuid.New()
	require.NoError(t, repo.Create(context.Background(), food))

	rides, err := repo.ListByKind(context.Background(), enums.ListingKindRide)
	require.NoError(t, err)
	require.Len(t, rides, 2)
	assert.Equal(t, newer.ID, rides[0].ID)
	assert.Equal(t, older.ID, rides[1].ID)

	foods, err := repo.ListByKind(context.Background(), enums.ListingKindFood)
	require.NoError(t, err)
	require.Len(t, foods, 1)
	require.Len(t, foods[0].Contributions, 1)
	assert.Equal(t, "noodles", foods[0].Contributions[0].Items)
}
