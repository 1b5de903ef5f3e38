package refunds

// CreateRefundRequest opens a PENDING request against one of the caller's
// tickets.
type CreateRefundRequest struct {
	TicketCode string `json:"ticket_code" binding:"required"`
	Reason     string `json:"reason" binding:"required,min=5,max=500"`
}

// ApproveRequest carries optional reviewer notes for a refund approval.
type ApproveRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=500"`
}

// RescheduleRequest approves a request by moving the ticket instead of
// paying out.
type RescheduleRequest struct {
	NewFlightID string `json:"new_flight_id" binding:"required,uuid"`
	NewSeatID   string `json:"new_seat_id" binding:"required,uuid"`
	Notes       string `json:"notes" binding:"omitempty,max=500"`
}

// RejectRequest closes a request without refunding; the reason is
// mandatory and shown to the customer.
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}
