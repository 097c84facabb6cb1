package listings

import (
	"strings"
	"time"

	"github.com/campuspool/campuspool-backend/pkg/db/models"
	"github.com/campuspool/campuspool-backend/pkg/enums"
	pkgerrors "github.com/campuspool/campuspool-backend/pkg/errors"
	"github.com/campuspool/campuspool-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// The engine is the pure membership core: every function mutates the given
// listing in memory and returns a rejection sentinel when the transition is
// disallowed. Persistence and retries live in the service.

// ValidateNew checks a listing before its first insert. Rides tolerate a
// departure up to grace in the past; food orders must be scheduled at or
// after now.
func ValidateNew(l *models.Listing, now time.Time, grace time.Duration) error {
	if !l.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid listing kind")
	}
	if l.Cost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cost cannot be negative")
	}
	if l.ScheduledAt.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "scheduled time is required")
	}

	switch l.Kind {
	case enums.ListingKindRide:
		if l.Source == nil || strings.TrimSpace(*l.Source) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "source is required")
		}
		if l.Destination == nil || strings.TrimSpace(*l.Destination) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "destination is required")
		}
		if l.Seats < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "seats must be at least 1")
		}
		if l.ScheduledAt.Before(now.Add(-grace)) {
			return pkgerrors.New(pkgerrors.CodeValidation, "departure is in the past")
		}
	case enums.ListingKindFood:
		if l.Restaurant == nil || strings.TrimSpace(*l.Restaurant) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "restaurant is required")
		}
		if l.MaxPeople != nil && *l.MaxPeople < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "max_people must be at least 1")
		}
		if l.ScheduledAt.Before(now) {
			return pkgerrors.New(pkgerrors.CodeValidation, "order time is in the past")
		}
	}
	return nil
}

// NormalizeNew fills the derived columns before the first insert.
func NormalizeNew(l *models.Listing) {
	if l.Members == nil {
		l.Members = types.Participants{}
	}
	if l.Contributions == nil {
		l.Contributions = types.Contributions{}
	}
	switch l.Kind {
	case enums.ListingKindRide:
		l.AvailableSeats = l.Seats
		l.Restaurant = nil
		l.DeliveryLocation = nil
		l.MaxPeople = nil
		l.Contributions = types.Contributions{}
	case enums.ListingKindFood:
		l.Seats = 0
		l.AvailableSeats = 0
		l.Source = nil
		l.Destination = nil
	}
	l.Version = 1
}

// Join adds the participant, updating seat or contribution bookkeeping.
// The owner never appears in Members, so an owner self-join reads as
// already being part of the listing.
func Join(l *models.Listing, member types.Participant, contribution *types.Contribution) error {
	if l.OwnerID == member.UserID {
		return ErrAlreadyMember
	}
	if l.Members.Contains(member.UserID) {
		return ErrAlreadyMember
	}
	if !hasCapacity(l) {
		return ErrCapacityExceeded
	}

	l.Members = append(l.Members, member)
	switch l.Kind {
	case enums.ListingKindRide:
		l.AvailableSeats--
	case enums.ListingKindFood:
		entry := types.Contribution{UserID: member.UserID, Name: member.Name, Verified: member.Verified}
		if contribution != nil {
			entry.Items = contribution.Items
		}
		l.Contributions = l.Contributions.Upsert(entry)
	}
	return nil
}

// LeaveAsMember removes the caller from the member list and releases their
// seat or contribution entry.
func LeaveAsMember(l *models.Listing, userID uuid.UUID) error {
	if l.OwnerID == userID {
		return ErrNotAMember
	}
	if !l.Members.Contains(userID) {
		return ErrNotAMember
	}

	l.Members = l.Members.Remove(userID)
	switch l.Kind {
	case enums.ListingKindRide:
		if l.AvailableSeats < l.Seats {
			l.AvailableSeats++
		}
	case enums.ListingKindFood:
		l.Contributions = l.Contributions.Remove(userID)
	}
	return nil
}

// PromoteOwner hands the listing to the longest-waiting member, copying the
// identity fields from their stored member entry. The promoted member keeps
// the seat they joined with, so AvailableSeats does not change.
func PromoteOwner(l *models.Listing, caller uuid.UUID) error {
	if l.OwnerID != caller {
		return ErrNotOwner
	}
	if len(l.Members) == 0 {
		return ErrEmptyOwnerLeave
	}

	next := l.Members[0]
	l.Members = l.Members[1:]
	l.OwnerID = next.UserID
	l.OwnerName = next.Name
	l.OwnerVerified = next.Verified

	if l.Kind == enums.ListingKindFood {
		// The departing owner's contribution leaves with them; the promoted
		// owner's entry stays in place.
		l.Contributions = l.Contributions.Remove(caller)
	}
	return nil
}

// CanDelete checks the delete preconditions without mutating the listing.
func CanDelete(l *models.Listing, caller uuid.UUID) error {
	if l.OwnerID != caller {
		return ErrNotOwner
	}
	if len(l.Members) > 0 {
		return ErrNonEmptyListing
	}
	return nil
}

// SameRestaurant compares two food listings' restaurants, case-insensitive
// and whitespace-trimmed.
func SameRestaurant(a, b *models.Listing) bool {
	if a == nil || b == nil || a.Restaurant == nil || b.Restaurant == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(*a.Restaurant), strings.TrimSpace(*b.Restaurant))
}

// CostPerPerson splits the cost across the owner and all members. Rides
// round to whole currency units, food orders to cents.
func CostPerPerson(l *models.Listing) decimal.Decimal {
	participants := decimal.NewFromInt(int64(l.TotalParticipants()))
	share := l.Cost.Div(participants)
	if l.Kind == enums.ListingKindRide {
		return share.Round(0)
	}
	return share.Round(2)
}

func hasCapacity(l *models.Listing) bool {
	switch l.Kind {
	case enums.ListingKindRide:
		return l.AvailableSeats > 0
	case enums.ListingKindFood:
		if l.MaxPeople == nil {
			return true
		}
		return l.TotalParticipants() < *l.MaxPeople
	}
	return false
}
