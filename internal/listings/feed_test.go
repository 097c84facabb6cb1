package listings

import (
	"testing"
	"time"

	"github.com/campuspool/campuspool-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(seq func(yield func(DisplayListing) bool)) []DisplayListing {
	var out []DisplayListing
	seq(func(d DisplayListing) bool {
		out = append(out, d)
		return true
	})
	return out
}

func TestVisible(t *testing.T) {
	now := time.Now().UTC()
	grace := time.Hour

	ride := newRide(uuid.New(), 2)

	ride.ScheduledAt = now.Add(-30 * time.Minute)
	assert.True(t, Visible(ride, now, grace))

	ride.ScheduledAt = now.Add(-90 * time.Minute)
	assert.False(t, Visible(ride, now, grace))

	food := newFood(uuid.New(), nil)

	food.ScheduledAt = now
	assert.True(t, Visible(food, now, grace))

	food.ScheduledAt = now.Add(-time.Second)
	assert.False(t, Visible(food, now, grace))
}

func TestProjectFiltersAndPreservesOrder(t *testing.T) {
	now := time.Now().UTC()
	caller := uuid.New()

	fresh := newRide(uuid.New(), 2)
	fresh.ScheduledAt = now.Add(3 * time.Hour)
	fresh.CreatedAt = now

	stale := newRide(uuid.New(), 2)
	stale.ScheduledAt = now.Add(-2 * time.Hour)

	older := newRide(uuid.New(), 2)
	older.ScheduledAt = now.Add(time.Hour)
	older.CreatedAt = now.Add(-time.Hour)

	// Input comes pre-sorted created_at DESC; the projector keeps it.
	views := collect(Project([]*models.Listing{fresh, stale, older}, now, caller, time.Hour))

	require.Len(t, views, 2)
	assert.Equal(t, fresh.ID, views[0].ID)
	assert.Equal(t, older.ID, views[1].ID)
}

func TestProjectIsRestartable(t *testing.T) {
	now := time.Now().UTC()
	l := newRide(uuid.New(), 2)
	l.ScheduledAt = now.Add(time.Hour)

	seq := Project([]*models.Listing{l}, now, uuid.New(), time.Hour)

	first := collect(seq)
	second := collect(seq)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestProjectStopsWhenYieldReturnsFalse(t *testing.T) {
	now := time.Now().UTC()
	a := newRide(uuid.New(), 2)
	a.ScheduledAt = now.Add(time.Hour)
	b := newRide(uuid.New(), 2)
	b.ScheduledAt = now.Add(time.Hour)

	var seen int
	Project([]*models.Listing{a, b}, now, uuid.New(), time.Hour)(func(DisplayListing) bool {
		seen++
		return false
	})
	assert.Equal(t, 1, seen)
}

func TestProjectCallerFlags(t *testing.T) {
	now := time.Now().UTC()
	owner := uuid.New()

	l := newRide(owner, 2)
	l.ScheduledAt = now.Add(time.Hour)
	m := member("Alex")
	require.NoError(t, Join(l, m, nil))

	ownerView := collect(Project([]*models.Listing{l}, now, owner, time.Hour))[0]
	assert.True(t, ownerView.IsOwner)
	assert.False(t, ownerView.IsMember)
	assert.False(t, ownerView.CanJoin)

	memberView := collect(Project([]*models.Listing{l}, now, m.UserID, time.Hour))[0]
	assert.False(t, memberView.IsOwner)
	assert.True(t, memberView.IsMember)
	assert.False(t, memberView.CanJoin)

	strangerView := collect(Project([]*models.Listing{l}, now, uuid.New(), time.Hour))[0]
	assert.True(t, strangerView.CanJoin)
	assert.Equal(t, 2, strangerView.TotalParticipants)
}

func TestProjectFullRideBlocksJoin(t *testing.T) {
	now := time.Now().UTC()
	l := newRide(uuid.New(), 1)
	l.ScheduledAt = now.Add(time.Hour)
	require.NoError(t, Join(l, member("Alex"), nil))

	view := collect(Project([]*models.Listing{l}, now, uuid.New(), time.Hour))[0]
	assert.False(t, view.CanJoin)
	assert.Zero(t, view.AvailableSeats)
}

func TestProjectFoodSpotsLeft(t *testing.T) {
	now := time.Now().UTC()

	limited := newFood(uuid.New(), intPtr(4))
	limited.ScheduledAt = now.Add(time.Hour)
	require.NoError(t, Join(limited, member("Alex"), nil))

	view := collect(Project([]*models.Listing{limited}, now, uuid.New(), time.Hour))[0]
	require.NotNil(t, view.SpotsLeft)
	assert.Equal(t, 2, *view.SpotsLeft)

	unlimited := newFood(uuid.New(), nil)
	unlimited.ScheduledAt = now.Add(time.Hour)
	view = collect(Project([]*models.Listing{unlimited}, now, uuid.New(), time.Hour))[0]
	assert.Nil(t, view.SpotsLeft)
	assert.True(t, view.CanJoin)
}

func TestProjectCostPerPerson(t *testing.T) {
	now := time.Now().UTC()
	l := newRide(uuid.New(), 3)
	l.ScheduledAt = now.Add(time.Hour)
	l.Cost = decimal.NewFromInt(250)
	require.NoError(t, Join(l, member("Alex"), nil))

	view := collect(Project([]*models.Listing{l}, now, uuid.New(), time.Hour))[0]
	assert.True(t, view.CostPerPerson.Equal(decimal.NewFromInt(125)))
}
