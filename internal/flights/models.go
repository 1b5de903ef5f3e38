package flights

import (
	"time"

	"aviato/internal/seats"

	"github.com/google/uuid"
)

type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusDelayed   Status = "DELAYED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the flight status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusDelayed, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsBookable reports whether tickets may still be sold for this status
func (s Status) IsBookable() bool {
	return s != StatusCancelled
}

// Flight owns a collection of seats. BasePrice is in integer currency
// units; per-class overrides are optional and take precedence over the
// multiplier-derived defaults.
type Flight struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FlightNumber  string    `gorm:"unique;not null" json:"flight_number"`
	Origin        string    `gorm:"type:varchar(3);not null;index:idx_route" json:"origin"`
	Destination   string    `gorm:"type:varchar(3);not null;index:idx_route" json:"destination"`
	DepartureTime time.Time `gorm:"not null;index" json:"departure_time"`
	ArrivalTime   time.Time `gorm:"not null" json:"arrival_time"`
	BasePrice     int64     `gorm:"not null" json:"base_price"`
	EconomyPrice  *int64    `json:"economy_price,omitempty"`
	BusinessPrice *int64    `json:"business_price,omitempty"`
	FirstPrice    *int64    `json:"first_price,omitempty"`
	Status        Status    `gorm:"type:varchar(20);check:status IN ('SCHEDULED', 'DELAYED', 'CANCELLED');default:'SCHEDULED'" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Relationships
	Seats []seats.Seat `json:"seats,omitempty" gorm:"foreignKey:FlightID;constraint:OnDelete:CASCADE;"`
}

// TableName sets the table name for Flight
func (Flight) TableName() string {
	return "flights"
}

// ClassOverride returns the explicit per-class price if one is configured
func (f *Flight) ClassOverride(class seats.Class) *int64 {
	switch class {
	case seats.ClassEconomy:
		return f.EconomyPrice
	case seats.ClassBusiness:
		return f.BusinessPrice
	case seats.ClassFirst:
		return f.FirstPrice
	}
	return nil
}

// HasDeparted reports whether the flight's departure time has passed
func (f *Flight) HasDeparted(now time.Time) bool {
	return !f.DepartureTime.After(now)
}
