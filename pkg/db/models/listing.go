package models

import (
	"time"

	"github.com/campuspool/campuspool-backend/pkg/enums"
	"github.com/campuspool/campuspool-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Listing is the single row shape shared by rides and food orders. Kind
// decides which of the optional columns are meaningful. The owner is never
// part of Members; Version backs the conditional-update protocol.
type Listing struct {
	ID            uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Kind          enums.ListingKind `gorm:"type:text;not null;index:idx_listings_kind_created"`
	OwnerID       uuid.UUID         `gorm:"column:owner_id;type:uuid;not null;index"`
	OwnerName     string            `gorm:"column:owner_name;not null"`
	OwnerVerified bool              `gorm:"column:owner_verified;not null;default:false"`

	ScheduledAt time.Time `gorm:"column:scheduled_at;not null"`

	// Ride fields.
	Source         *string `gorm:"column:source"`
	Destination    *string `gorm:"column:destination"`
	Seats          int     `gorm:"column:seats;not null;default:0"`
	AvailableSeats int     `gorm:"column:available_seats;not null;default:0"`

	// Food-order fields. MaxPeople nil means unlimited.
	Restaurant       *string `gorm:"column:restaurant"`
	DeliveryLocation *string `gorm:"column:delivery_location"`
	MaxPeople        *int    `gorm:"column:max_people"`

	Cost decimal.Decimal `gorm:"column:cost;type:numeric(12,2);not null"`

	Members       types.Participants  `gorm:"column:members;type:jsonb;serializer:json"`
	Contributions types.Contributions `gorm:"column:contributions;type:jsonb;serializer:json"`

	Version   int64     `gorm:"column:version;not null;default:1"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_listings_kind_created,sort:desc"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TotalParticipants counts the owner plus all joined members.
func (l *Listing) TotalParticipants() int {
	return len(l.Members) + 1
}
