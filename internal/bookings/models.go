package bookings

import (
	"time"

	"aviato/internal/flights"
	"aviato/internal/seats"
	"aviato/internal/users"

	"github.com/google/uuid"
)

// Ticket is the unit of sale: one seat on one flight for one passenger.
// A booking that spans several seats, or both legs of a round trip, shares
// one GroupID; the group commits or fails as a whole.
type Ticket struct {
	ID                uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Code              string        `gorm:"unique;not null" json:"code"`
	GroupID           uuid.UUID     `gorm:"type:uuid;not null;index" json:"group_id"`
	UserID            uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	FlightID          uuid.UUID     `gorm:"type:uuid;not null;index" json:"flight_id"`
	SeatID            uuid.UUID     `gorm:"type:uuid;not null;index" json:"seat_id"`
	FlashSaleID       *uuid.UUID    `gorm:"type:uuid" json:"flash_sale_id,omitempty"`
	PassengerName     string        `gorm:"type:varchar(100);not null" json:"passenger_name"`
	PassengerDocument string        `gorm:"type:varchar(50)" json:"passenger_document,omitempty"`
	Channel           Channel       `gorm:"type:varchar(20);not null;check:channel IN ('ONLINE', 'COUNTER', 'FLASH_SALE')" json:"channel"`
	PaymentMethod     PaymentMethod `gorm:"type:varchar(20);not null;check:payment_method IN ('CARD', 'CASH', 'VOUCHER')" json:"payment_method"`
	Status            Status        `gorm:"type:varchar(20);not null;default:'SUCCESS';check:status IN ('PENDING', 'SUCCESS', 'FAILED')" json:"status"`
	Price             int64         `gorm:"not null" json:"price"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`

	// Relationships
	User   *users.User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Flight *flights.Flight `json:"flight,omitempty" gorm:"foreignKey:FlightID"`
	Seat   *seats.Seat     `json:"seat,omitempty" gorm:"foreignKey:SeatID"`
}

// TableName sets the table name for Ticket
func (Ticket) TableName() string {
	return "tickets"
}

// BelongsTo reports whether the ticket was issued to the given user
func (t *Ticket) BelongsTo(userID uuid.UUID) bool {
	return t.UserID == userID
}
