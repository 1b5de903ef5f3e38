package response

import (
	"errors"
	"net/http"

	"aviato/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errs interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errs,
	})
}

// RespondError maps a domain error to its HTTP status and renders the
// standard envelope. Unknown errors become a 500 with a generic message so
// storage details never leak to clients.
func RespondError(c *gin.Context, err error) {
	var seatErr *apperrors.SeatUnavailableError
	var valErr *apperrors.ValidationError

	switch {
	case errors.As(err, &seatErr):
		RespondJSON(c, "error", http.StatusConflict, seatErr.Error(), nil, gin.H{"seat_numbers": seatErr.SeatNumbers})
	case errors.Is(err, apperrors.ErrQuotaExceeded):
		RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
	case errors.Is(err, apperrors.ErrStateConflict):
		RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, nil)
	case errors.As(err, &valErr):
		RespondJSON(c, "error", http.StatusBadRequest, "Invalid request", nil, gin.H{"field": valErr.Field, "message": valErr.Message})
	case errors.Is(err, apperrors.ErrNotFound):
		RespondJSON(c, "error", http.StatusNotFound, err.Error(), nil, nil)
	case errors.Is(err, apperrors.ErrUnauthorized):
		RespondJSON(c, "error", http.StatusForbidden, err.Error(), nil, nil)
	case errors.Is(err, apperrors.ErrTransient):
		RespondJSON(c, "error", http.StatusServiceUnavailable, err.Error(), nil, nil)
	default:
		RespondJSON(c, "error", http.StatusInternalServerError, "Internal server error", nil, nil)
	}
}
