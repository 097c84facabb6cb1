package listings

import (
	"iter"
	"time"

	"github.com/campuspool/campuspool-backend/pkg/db/models"
	"github.com/campuspool/campuspool-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DisplayListing is the caller-personalized projection served by the feed.
type DisplayListing struct {
	ID            uuid.UUID         `json:"id"`
	Kind          enums.ListingKind `json:"kind"`
	OwnerID       uuid.UUID         `json:"owner_id"`
	OwnerName     string            `json:"owner_name"`
	OwnerVerified bool              `json:"owner_verified"`
	ScheduledAt   time.Time         `json:"scheduled_at"`
	CreatedAt     time.Time         `json:"created_at"`

	Source         *string `json:"source,omitempty"`
	Destination    *string `json:"destination,omitempty"`
	Seats          int     `json:"seats,omitempty"`
	AvailableSeats int     `json:"available_seats,omitempty"`

	Restaurant       *string `json:"restaurant,omitempty"`
	DeliveryLocation *string `json:"delivery_location,omitempty"`
	MaxPeople        *int    `json:"max_people,omitempty"`
	SpotsLeft        *int    `json:"spots_left,omitempty"`

	Cost              decimal.Decimal `json:"cost"`
	CostPerPerson     decimal.Decimal `json:"cost_per_person"`
	TotalParticipants int             `json:"total_participants"`

	IsOwner  bool `json:"is_owner"`
	IsMember bool `json:"is_member"`
	CanJoin  bool `json:"can_join"`

	Members       []DisplayMember       `json:"members"`
	Contributions []DisplayContribution `json:"contributions,omitempty"`

	Version int64 `json:"version"`
}

// DisplayMember is a member entry as shown in the feed.
type DisplayMember struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Verified bool      `json:"verified"`
	JoinedAt time.Time `json:"joined_at"`
}

// DisplayContribution is one food-order line as shown in the feed.
type DisplayContribution struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Verified bool      `json:"verified"`
	Items    string    `json:"items"`
}

// Visible reports whether the listing still belongs in the feed at now.
// Rides keep a grace window after departure so riders can coordinate a
// slightly late pickup; food orders disappear the moment their time passes.
func Visible(l *models.Listing, now time.Time, grace time.Duration) bool {
	switch l.Kind {
	case enums.ListingKindRide:
		return !l.ScheduledAt.Before(now.Add(-grace))
	case enums.ListingKindFood:
		return !l.ScheduledAt.Before(now)
	}
	return false
}

// Project lazily maps listings into the caller's view, dropping the ones no
// longer visible. Input order is preserved, so feeding it created_at DESC
// keeps the feed newest-first. The sequence is restartable.
func Project(source []*models.Listing, now time.Time, caller uuid.UUID, grace time.Duration) iter.Seq[DisplayListing] {
	return func(yield func(DisplayListing) bool) {
		for _, l := range source {
			if !Visible(l, now, grace) {
				continue
			}
			if !yield(project(l, caller)) {
				return
			}
		}
	}
}

func project(l *models.Listing, caller uuid.UUID) DisplayListing {
	isOwner := l.OwnerID == caller
	isMember := l.Members.Contains(caller)

	d := DisplayListing{
		ID:                l.ID,
		Kind:              l.Kind,
		OwnerID:           l.OwnerID,
		OwnerName:         l.OwnerName,
		OwnerVerified:     l.OwnerVerified,
		ScheduledAt:       l.ScheduledAt,
		CreatedAt:         l.CreatedAt,
		Source:            l.Source,
		Destination:       l.Destination,
		Seats:             l.Seats,
		AvailableSeats:    l.AvailableSeats,
		Restaurant:        l.Restaurant,
		DeliveryLocation:  l.DeliveryLocation,
		MaxPeople:         l.MaxPeople,
		Cost:              l.Cost,
		CostPerPerson:     CostPerPerson(l),
		TotalParticipants: l.TotalParticipants(),
		IsOwner:           isOwner,
		IsMember:          isMember,
		CanJoin:           !isOwner && !isMember && hasCapacity(l),
		Version:           l.Version,
	}

	d.Members = make([]DisplayMember, 0, len(l.Members))
	for _, m := range l.Members {
		d.Members = append(d.Members, DisplayMember{UserID: m.UserID, Name: m.Name, Verified: m.Verified, JoinedAt: m.JoinedAt})
	}

	if l.Kind == enums.ListingKindFood {
		if l.MaxPeople != nil {
			left := *l.MaxPeople - l.TotalParticipants()
			if left < 0 {
				left = 0
			}
			d.SpotsLeft = &left
		}
		d.Contributions = make([]DisplayContribution, 0, len(l.Contributions))
		for _, c := range l.Contributions {
			d.Contributions = append(d.Contributions, DisplayContribution{UserID: c.UserID, Name: c.Name, Verified: c.Verified, Items: c.Items})
		}
	}

	return d
}
