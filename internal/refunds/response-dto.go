package refunds

import "time"

// RefundPreviewResponse is the side-effect-free quote: what the customer
// would get back if the refund were approved right now.
type RefundPreviewResponse struct {
	TicketCode     string    `json:"ticket_code"`
	OriginalAmount int64     `json:"original_amount"`
	RefundPercent  int       `json:"refund_percent"`
	RefundAmount   int64     `json:"refund_amount"`
	DepartureTime  time.Time `json:"departure_time"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
}

// RefundRequestResponse is the public view of a refund request.
type RefundRequestResponse struct {
	ID            string     `json:"id"`
	TicketID      string     `json:"ticket_id"`
	TicketCode    string     `json:"ticket_code,omitempty"`
	Status        string     `json:"status"`
	Reason        string     `json:"reason"`
	RefundPercent *int       `json:"refund_percent,omitempty"`
	RefundAmount  *int64     `json:"refund_amount,omitempty"`
	NewFlightID   *string    `json:"new_flight_id,omitempty"`
	NewSeatID     *string    `json:"new_seat_id,omitempty"`
	AdminNotes    *string    `json:"admin_notes,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
