package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/campuspool/campuspool-backend/internal/listings"
	"github.com/campuspool/campuspool-backend/pkg/config"
	"github.com/campuspool/campuspool-backend/pkg/db/models"
	"github.com/campuspool/campuspool-backend/pkg/enums"
	pkgerrors "github.com/campuspool/campuspool-backend/pkg/errors"
)

// Stats is the aggregate snapshot shown on the landing dashboard.
type Stats struct {
	ActiveRides      int   `json:"active_rides"`
	ActiveFoodOrders int   `json:"active_food_orders"`
	TotalUsers       int64 `json:"total_users"`
}

type listingLister interface {
	ListByKind(ctx context.Context, kind enums.ListingKind) ([]*models.Listing, error)
}

type userCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Service computes dashboard statistics.
type Service struct {
	listings listingLister
	users    userCounter
	grace    time.Duration
	now      func() time.Time
}

// ServiceParams bundles the dependencies for the dashboard service.
type ServiceParams struct {
	Listings listingLister
	Users    userCounter
	Config   config.ListingsConfig
}

// NewService constructs the dashboard service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Listings == nil {
		return nil, fmt.Errorf("listings repository is required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	grace := params.Config.RideGraceWindow
	if grace <= 0 {
		grace = time.Hour
	}
	return &Service{
		listings: params.Listings,
		users:    params.Users,
		grace:    grace,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Stats counts listings still visible in each feed plus the registered user
// total. A listing past its window is excluded even if the row still exists.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := s.now()

	rides, err := s.countActive(ctx, enums.ListingKindRide, now)
	if err != nil {
		return nil, err
	}
	food, err := s.countActive(ctx, enums.ListingKindFood, now)
	if err != nil {
		return nil, err
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count users")
	}

	return &Stats{
		ActiveRides:      rides,
		ActiveFoodOrders: food,
		TotalUsers:       total,
	}, nil
}

func (s *Service) countActive(ctx context.Context, kind enums.ListingKind, now time.Time) (int, error) {
	rows, err := s.listings.ListByKind(ctx, kind)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list listings")
	}
	active := 0
	for _, l := range rows {
		if listings.Visible(l, now, s.grace) {
			active++
		}
	}
	return active, nil
}
