package listings

import (
	"time"

	"github.com/campuspool/campuspool-backend/pkg/db/models"
	"github.com/campuspool/campuspool-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor identifies the authenticated caller together with the display
// snapshot carried in their token.
type Actor struct {
	ID       uuid.UUID
	Name     string
	Verified bool
}

// CreateRideRequest is the payload for posting a new ride.
type CreateRideRequest struct {
	Source      string          `json:"source" validate:"required"`
	Destination string          `json:"destination" validate:"required"`
	ScheduledAt time.Time       `json:"scheduled_at" validate:"required"`
	Seats       int             `json:"seats" validate:"required,min=1"`
	Cost        decimal.Decimal `json:"cost"`
}

func (r CreateRideRequest) toModel(actor Actor) *models.Listing {
	source := r.Source
	destination := r.Destination
	return &models.Listing{
		Kind:          enums.ListingKindRide,
		OwnerID:       actor.ID,
		OwnerName:     actor.Name,
		OwnerVerified: actor.Verified,
		ScheduledAt:   r.ScheduledAt,
		Source:        &source,
		Destination:   &destination,
		Seats:         r.Seats,
		Cost:          r.Cost,
	}
}

// CreateFoodRequest is the payload for opening a group food order.
type CreateFoodRequest struct {
	Restaurant       string          `json:"restaurant" validate:"required"`
	DeliveryLocation *string         `json:"delivery_location,omitempty"`
	ScheduledAt      time.Time       `json:"scheduled_at" validate:"required"`
	MaxPeople        *int            `json:"max_people,omitempty" validate:"omitempty,min=1"`
	Cost             decimal.Decimal `json:"cost"`
	Items            string          `json:"items"`
}

func (r CreateFoodRequest) toModel(actor Actor) *models.Listing {
	restaurant := r.Restaurant
	return &models.Listing{
		Kind:             enums.ListingKindFood,
		OwnerID:          actor.ID,
		OwnerName:        actor.Name,
		OwnerVerified:    actor.Verified,
		ScheduledAt:      r.ScheduledAt,
		Restaurant:       &restaurant,
		DeliveryLocation: r.DeliveryLocation,
		MaxPeople:        r.MaxPeople,
		Cost:             r.Cost,
	}
}

// JoinRequest carries the optional food items plus the confirmation flag for
// replacing a listing the caller already owns.
type JoinRequest struct {
	Items   string `json:"items"`
	Confirm bool   `json:"confirm"`
}

// OwnedListingDetails is attached to the OwnedListingExists rejection so the
// client can prompt before retrying with confirm set.
type OwnedListingDetails struct {
	ListingID  uuid.UUID `json:"listing_id"`
	Restaurant *string   `json:"restaurant,omitempty"`
	Merge      bool      `json:"merge"`
}
