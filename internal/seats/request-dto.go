package seats

// HoldRequest carries an interactive hold acquisition or release.
type HoldRequest struct {
	SeatID string `json:"seat_id" binding:"required,uuid"`
}
