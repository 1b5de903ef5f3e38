package seats

import (
	"time"

	"github.com/google/uuid"
)

type Class string

const (
	ClassEconomy  Class = "ECONOMY"
	ClassBusiness Class = "BUSINESS"
	ClassFirst    Class = "FIRST"
)

// IsValid checks if the seat class is valid
func (c Class) IsValid() bool {
	switch c {
	case ClassEconomy, ClassBusiness, ClassFirst:
		return true
	}
	return false
}

// String returns the string representation of Class
func (c Class) String() string {
	return string(c)
}

// Seat defines the structure for individual flight seats.
// HoldUntil/HeldByUserID are meaningful only while IsBooked is false;
// both are cleared in the same statement that sets IsBooked.
type Seat struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FlightID     uuid.UUID  `gorm:"type:uuid;index;not null;uniqueIndex:idx_flight_seat" json:"flight_id"`
	SeatNumber   string     `gorm:"not null;uniqueIndex:idx_flight_seat" json:"seat_number"`
	Class        Class      `gorm:"type:varchar(10);check:class IN ('ECONOMY', 'BUSINESS', 'FIRST');default:'ECONOMY'" json:"class"`
	IsBooked     bool       `gorm:"not null;default:false;index" json:"is_booked"`
	HoldUntil    *time.Time `json:"hold_until,omitempty"`
	HeldByUserID *uuid.UUID `gorm:"type:uuid" json:"held_by_user_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName sets the table name for Seat
func (Seat) TableName() string {
	return "seats"
}

// HasActiveHold reports whether the seat carries a non-expired hold.
func (s *Seat) HasActiveHold(now time.Time) bool {
	return !s.IsBooked && s.HoldUntil != nil && s.HeldByUserID != nil && s.HoldUntil.After(now)
}

// IsHeldBy reports whether userID owns a non-expired hold on this seat.
func (s *Seat) IsHeldBy(userID uuid.UUID, now time.Time) bool {
	return s.HasActiveHold(now) && *s.HeldByUserID == userID
}

// IsHeldByOther is the advisory predicate the seat-map UI uses to render
// "taken by someone else". It must never be used as proof of availability;
// the booking transaction rechecks against storage.
func (s *Seat) IsHeldByOther(userID uuid.UUID, now time.Time) bool {
	return s.HasActiveHold(now) && *s.HeldByUserID != userID
}

// EffectiveStatus returns the seat state for rendering: BOOKED, HELD or
// AVAILABLE. Expired holds count as available; expiry is evaluated lazily,
// there is no background sweeper.
func (s *Seat) EffectiveStatus(now time.Time) string {
	if s.IsBooked {
		return "BOOKED"
	}
	if s.HasActiveHold(now) {
		return "HELD"
	}
	return "AVAILABLE"
}
