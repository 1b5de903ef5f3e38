package seats

import "time"

// HoldResponse is returned after a successful hold acquisition.
type HoldResponse struct {
	SeatID     string    `json:"seat_id"`
	FlightID   string    `json:"flight_id"`
	SeatNumber string    `json:"seat_number"`
	ExpiresAt  time.Time `json:"expires_at"`
	TTL        int       `json:"ttl_seconds"`
}

// HoldMetricsResponse reports hold hygiene for operators. Expiry is lazy,
// so a count here is stale holds waiting to be reaped by the next booking
// or hold attempt, not leaked inventory.
type HoldMetricsResponse struct {
	ExpiredHolds int64     `json:"expired_holds"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}

// SeatMapEntry is the per-seat rendering model for the selection UI.
// Status is advisory: AVAILABLE, HELD or BOOKED as of the read.
type SeatMapEntry struct {
	SeatID     string `json:"seat_id"`
	SeatNumber string `json:"seat_number"`
	Class      string `json:"class"`
	Status     string `json:"status"`
	HeldByMe   bool   `json:"held_by_me"`
}
