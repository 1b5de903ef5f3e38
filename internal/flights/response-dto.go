package flights

import "time"

// FlightResponse is the public view of a flight, with the resolved fare per
// class so clients never re-derive multiplier math.
type FlightResponse struct {
	ID            string    `json:"id"`
	FlightNumber  string    `json:"flight_number"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	DepartureTime time.Time `json:"departure_time"`
	ArrivalTime   time.Time `json:"arrival_time"`
	Status        string    `json:"status"`
	EconomyPrice  int64     `json:"economy_price"`
	BusinessPrice int64     `json:"business_price"`
	FirstPrice    int64     `json:"first_price"`
}

// FlightListResponse wraps search results.
type FlightListResponse struct {
	Flights []FlightResponse `json:"flights"`
	Count   int              `json:"count"`
}
