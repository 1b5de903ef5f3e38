package refunds

import (
	"time"

	"aviato/internal/bookings"
	"aviato/internal/users"

	"github.com/google/uuid"
)

// RefundRequest tracks one customer's ask to undo a ticket. It starts
// PENDING and ends APPROVED (as a refund or a reschedule) or REJECTED;
// both outcomes are terminal. The refund figures on the row are the ones
// actually granted, recomputed at approval time.
type RefundRequest struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TicketID uuid.UUID `gorm:"type:uuid;not null;index" json:"ticket_id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Status   Status    `gorm:"type:varchar(20);not null;default:'PENDING';check:status IN ('PENDING', 'APPROVED', 'REJECTED')" json:"status"`
	Reason   string    `gorm:"type:text;not null" json:"reason"`

	// Set on approval.
	RefundPercent *int       `json:"refund_percent,omitempty"`
	RefundAmount  *int64     `json:"refund_amount,omitempty"`
	NewFlightID   *uuid.UUID `gorm:"type:uuid" json:"new_flight_id,omitempty"`
	NewSeatID     *uuid.UUID `gorm:"type:uuid" json:"new_seat_id,omitempty"`

	// Set on resolution either way.
	AdminNotes *string    `gorm:"type:text" json:"admin_notes,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Ticket *bookings.Ticket `json:"ticket,omitempty" gorm:"foreignKey:TicketID"`
	User   *users.User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// TableName sets the table name for RefundRequest
func (RefundRequest) TableName() string {
	return "refund_requests"
}

// IsReschedule reports whether the approved request moved the ticket
// instead of refunding it
func (r *RefundRequest) IsReschedule() bool {
	return r.NewSeatID != nil
}
