package bookings

// PassengerRecord names the person who will occupy one seat. Tickets are
// owned by the booking customer; the passenger is whoever flies.
type PassengerRecord struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Document string `json:"document" binding:"omitempty,max=50"`
}

// CreateBookingRequest books one or more seats in a single atomic group.
// Passengers pair with seat_ids by index; on a round trip the same
// passengers fly both legs, so return_seat_ids must match seat_ids in
// count. Return fields turn the booking into a round trip; both legs then
// succeed or fail together. CustomerID is only honoured on the COUNTER
// channel, where staff book on a passenger's behalf.
type CreateBookingRequest struct {
	Channel        string            `json:"channel" binding:"required,oneof=ONLINE COUNTER FLASH_SALE"`
	FlightID       string            `json:"flight_id" binding:"required,uuid"`
	SeatIDs        []string          `json:"seat_ids" binding:"required,min=1,max=6,dive,uuid"`
	Passengers     []PassengerRecord `json:"passengers" binding:"required,min=1,max=6,dive"`
	PaymentMethod  string            `json:"payment_method" binding:"required,oneof=CARD CASH VOUCHER"`
	ReturnFlightID string            `json:"return_flight_id" binding:"omitempty,uuid"`
	ReturnSeatIDs  []string          `json:"return_seat_ids" binding:"omitempty,max=6,dive,uuid"`
	FlashSaleID    string            `json:"flash_sale_id" binding:"omitempty,uuid"`
	CustomerID     string            `json:"customer_id" binding:"omitempty,uuid"`
}
