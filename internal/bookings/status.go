package bookings

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsActive reports whether the ticket still occupies its seat
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusSuccess
}

// CanBeRefunded reports whether a refund request may target this ticket
func (s Status) CanBeRefunded() bool {
	return s == StatusSuccess
}
