package bookings

import "time"

// TicketResponse is the public view of one issued ticket.
type TicketResponse struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	FlightID      string    `json:"flight_id"`
	FlightNumber  string    `json:"flight_number,omitempty"`
	SeatNumber    string    `json:"seat_number,omitempty"`
	Class         string    `json:"class,omitempty"`
	PassengerName string    `json:"passenger_name"`
	Channel       string    `json:"channel"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	Price         int64     `json:"price"`
	CreatedAt     time.Time `json:"created_at"`
}

// BookingResponse groups the tickets issued by one booking request.
// TotalAmount is the sum of the per-ticket prices after any flash-sale or
// round-trip discount.
type BookingResponse struct {
	GroupID       string           `json:"group_id"`
	Channel       string           `json:"channel"`
	PaymentMethod string           `json:"payment_method"`
	RoundTrip     bool             `json:"round_trip"`
	TotalAmount   int64            `json:"total_amount"`
	Tickets       []TicketResponse `json:"tickets"`
}
