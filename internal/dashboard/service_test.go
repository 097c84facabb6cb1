package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/campuspool/campuspool-backend/pkg/config"
	"github.com/campuspool/campuspool-backend/pkg/db/models"
	"github.com/campuspool/campuspool-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLister struct {
	byKind map[enums.ListingKind][]*models.Listing
}

func (s stubLister) ListByKind(_ context.Context, kind enums.ListingKind) ([]*models.Listing, error) {
	return s.byKind[kind], nil
}

type stubCounter struct {
	total int64
}

func (s stubCounter) Count(context.Context) (int64, error) {
	return s.total, nil
}

func listing(kind enums.ListingKind, scheduledAt time.Time) *models.Listing {
	return &models.Listing{
		ID:          uuid.New(),
		Kind:        kind,
		OwnerID:     uuid.New(),
		ScheduledAt: scheduledAt,
	}
}

func TestStatsCountsOnlyVisibleListings(t *testing.T) {
	now := time.Now().UTC()

	lister := stubLister{byKind: map[enums.ListingKind][]*models.Listing{
		enums.ListingKindRide: {
			listing(enums.ListingKindRide, now.Add(2*time.Hour)),
			listing(enums.ListingKindRide, now.Add(-30*time.Minute)),
			listing(enums.ListingKindRide, now.Add(-2*time.Hour)),
		},
		enums.ListingKindFood: {
			listing(enums.ListingKindFood, now.Add(time.Hour)),
			listing(enums.ListingKindFood, now.Add(-time.Minute)),
		},
	}}

	svc, err := NewService(ServiceParams{
		Listings: lister,
		Users:    stubCounter{total: 42},
		Config:   config.ListingsConfig{RideGraceWindow: time.Hour},
	})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	// Rides within the grace window still count; stale food orders do not.
	assert.Equal(t, 2, stats.ActiveRides)
	assert.Equal(t, 1, stats.ActiveFoodOrders)
	assert.Equal(t, int64(42), stats.TotalUsers)
}

func TestStatsEmpty(t *testing.T) {
	svc, err := NewService(ServiceParams{
		Listings: stubLister{},
		Users:    stubCounter{},
		Config:   config.ListingsConfig{},
	})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.ActiveRides)
	assert.Zero(t, stats.ActiveFoodOrders)
	assert.Zero(t, stats.TotalUsers)
}
