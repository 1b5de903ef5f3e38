package flights

// SearchQuery carries the optional filters for flight search. Date is a
// calendar day in YYYY-MM-DD; empty fields are ignored.
type SearchQuery struct {
	Origin      string `form:"origin" binding:"omitempty,len=3,alpha"`
	Destination string `form:"destination" binding:"omitempty,len=3,alpha"`
	Date        string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// CreateFlightRequest is the admin payload for scheduling a flight. Seat
// rows are generated from the per-class counts; per-class prices are
// optional overrides in integer currency units.
type CreateFlightRequest struct {
	FlightNumber  string `json:"flight_number" binding:"required,min=3,max=10"`
	Origin        string `json:"origin" binding:"required,len=3,alpha"`
	Destination   string `json:"destination" binding:"required,len=3,alpha"`
	DepartureTime string `json:"departure_time" binding:"required"`
	ArrivalTime   string `json:"arrival_time" binding:"required"`
	BasePrice     int64  `json:"base_price" binding:"required,gt=0"`
	EconomyPrice  *int64 `json:"economy_price" binding:"omitempty,gt=0"`
	BusinessPrice *int64 `json:"business_price" binding:"omitempty,gt=0"`
	FirstPrice    *int64 `json:"first_price" binding:"omitempty,gt=0"`
	EconomySeats  int    `json:"economy_seats" binding:"required,gte=0,lte=300"`
	BusinessSeats int    `json:"business_seats" binding:"gte=0,lte=100"`
	FirstSeats    int    `json:"first_seats" binding:"gte=0,lte=50"`
}

// UpdateStatusRequest is the admin payload for flight status changes.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=SCHEDULED DELAYED CANCELLED"`
}
