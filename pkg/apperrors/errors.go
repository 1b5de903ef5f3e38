package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the booking engine. Controllers map these to HTTP
// status codes; services never return raw storage errors across the
// module boundary.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrUnauthorized  = errors.New("operation not permitted for this user")
	ErrQuotaExceeded = errors.New("flash sale quota exceeded")
	ErrStateConflict = errors.New("request is not in a state that allows this action")
	ErrTransient     = errors.New("temporary storage failure, please retry")
)

// SeatUnavailableError reports which seats blocked an operation: already
// booked, or held by another user whose hold has not expired.
type SeatUnavailableError struct {
	SeatNumbers []string
}

func (e *SeatUnavailableError) Error() string {
	if len(e.SeatNumbers) == 0 {
		return "seat unavailable"
	}
	return fmt.Sprintf("seats unavailable: %s", strings.Join(e.SeatNumbers, ", "))
}

// NewSeatUnavailable builds a SeatUnavailableError for the given seat numbers.
func NewSeatUnavailable(seatNumbers ...string) *SeatUnavailableError {
	return &SeatUnavailableError{SeatNumbers: seatNumbers}
}

// IsSeatUnavailable reports whether err is (or wraps) a SeatUnavailableError.
func IsSeatUnavailable(err error) bool {
	var target *SeatUnavailableError
	return errors.As(err, &target)
}

// ValidationError carries a field-level message for malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation builds a ValidationError for a specific field.
func NewValidation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
