package types

import (
	"time"

	"github.com/google/uuid"
)

// Participant is a denormalized member entry stored inside a listing document.
// Order is significant: the first entry is next in line for ownership.
type Participant struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Verified bool      `json:"verified"`
	JoinedAt time.Time `json:"joined_at"`
}

// Participants preserves join order when serialized to the listing row.
type Participants []Participant

// Contains reports whether the user already appears in the member list.
func (p Participants) Contains(userID uuid.UUID) bool {
	return p.IndexOf(userID) >= 0
}

// IndexOf returns the position of the user in join order, or -1.
func (p Participants) IndexOf(userID uuid.UUID) int {
	for i, member := range p {
		if member.UserID == userID {
			return i
		}
	}
	return -1
}

// Remove returns a copy of the list without the given user.
func (p Participants) Remove(userID uuid.UUID) Participants {
	out := make(Participants, 0, len(p))
	for _, member := range p {
		if member.UserID == userID {
			continue
		}
		out = append(out, member)
	}
	return out
}

// Contribution records what a participant is adding to a group food order.
type Contribution struct {
	UserID   uuid.UUID `json:"user_id"`
	Name     string    `json:"name"`
	Verified bool      `json:"verified"`
	Items    string    `json:"items"`
}

// Contributions is keyed by participant; one entry per user.
type Contributions []Contribution

// ByUser returns the contribution entry for the user, if present.
func (c Contributions) ByUser(userID uuid.UUID) (Contribution, bool) {
	for _, entry := range c {
		if entry.UserID == userID {
			return entry, true
		}
	}
	return Contribution{}, false
}

// Remove returns a copy of the list without the given user's entry.
func (c Contributions) Remove(userID uuid.UUID) Contributions {
	out := make(Contributions, 0, len(c))
	for _, entry := range c {
		if entry.UserID == userID {
			continue
		}
		out = append(out, entry)
	}
	return out
}

// Upsert replaces the user's entry or appends a new one.
func (c Contributions) Upsert(entry Contribution) Contributions {
	for i, existing := range c {
		if existing.UserID == entry.UserID {
			out := make(Contributions, len(c))
			copy(out, c)
			out[i] = entry
			return out
		}
	}
	return append(c.Remove(entry.UserID), entry)
}
