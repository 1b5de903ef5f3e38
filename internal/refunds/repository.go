package refunds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aviato/internal/bookings"
	"aviato/internal/seats"
	"aviato/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateRequest(ctx context.Context, request *RefundRequest) error
	GetRequestByID(ctx context.Context, id uuid.UUID) (*RefundRequest, error)
	GetRequestsByUserID(ctx context.Context, userID uuid.UUID) ([]RefundRequest, error)
	GetPendingRequests(ctx context.Context) ([]RefundRequest, error)
	HasPendingForTicket(ctx context.Context, ticketID uuid.UUID) (bool, error)

	// Resolution workflows. Each runs in one transaction with the request
	// row locked; PENDING is verified under the lock so two admins cannot
	// both resolve the same request.
	ApproveRefundTx(ctx context.Context, requestID uuid.UUID, percent int, amount int64, notes *string, now time.Time) error
	ApproveRescheduleTx(ctx context.Context, requestID, newFlightID, newSeatID uuid.UUID, notes *string, now time.Time) error
	RejectTx(ctx context.Context, requestID uuid.UUID, reason string, now time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateRequest(ctx context.Context, request *RefundRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) GetRequestByID(ctx context.Context, id uuid.UUID) (*RefundRequest, error) {
	var request RefundRequest
	err := r.db.WithContext(ctx).
		Preload("Ticket").
		Preload("Ticket.Flight").
		Preload("Ticket.Seat").
		First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) GetRequestsByUserID(ctx context.Context, userID uuid.UUID) ([]RefundRequest, error) {
	var requests []RefundRequest
	err := r.db.WithContext(ctx).
		Preload("Ticket").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) GetPendingRequests(ctx context.Context) ([]RefundRequest, error) {
	var requests []RefundRequest
	err := r.db.WithContext(ctx).
		Preload("Ticket").
		Preload("Ticket.Flight").
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) HasPendingForTicket(ctx context.Context, ticketID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&RefundRequest{}).
		Where("ticket_id = ? AND status = ?", ticketID, StatusPending).
		Count(&count).Error
	return count > 0, err
}

// lockPendingRequest fetches the request FOR UPDATE and verifies it is
// still PENDING under the lock.
func lockPendingRequest(tx *gorm.DB, requestID uuid.UUID) (*RefundRequest, error) {
	var request RefundRequest
	err := tx.
		Set("gorm:query_option", "FOR UPDATE").
		First(&request, "id = ?", requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock refund request: %w", err)
	}
	if request.Status != StatusPending {
		return nil, apperrors.ErrStateConflict
	}
	return &request, nil
}

// ApproveRefundTx marks the request approved with the given figures, fails
// the ticket and frees its seat, all atomically.
func (r *repository) ApproveRefundTx(ctx context.Context, requestID uuid.UUID, percent int, amount int64, notes *string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := lockPendingRequest(tx, requestID)
		if err != nil {
			return err
		}

		var ticket bookings.Ticket
		err = tx.
			Set("gorm:query_option", "FOR UPDATE").
			First(&ticket, "id = ?", request.TicketID).Error
		if err != nil {
			return fmt.Errorf("failed to lock ticket: %w", err)
		}

		err = tx.Model(&bookings.Ticket{}).
			Where("id = ?", ticket.ID).
			Updates(map[string]interface{}{
				"status":     bookings.StatusFailed,
				"updated_at": now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to fail ticket: %w", err)
		}

		err = tx.Model(&seats.Seat{}).
			Where("id = ?", ticket.SeatID).
			Updates(map[string]interface{}{
				"is_booked":       false,
				"hold_until":      nil,
				"held_by_user_id": nil,
				"updated_at":      now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to release seat: %w", err)
		}

		err = tx.Model(&RefundRequest{}).
			Where("id = ?", requestID).
			Updates(map[string]interface{}{
				"status":         StatusApproved,
				"refund_percent": percent,
				"refund_amount":  amount,
				"admin_notes":    notes,
				"resolved_at":    now,
				"updated_at":     now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to approve refund request: %w", err)
		}

		return nil
	})
}

// ApproveRescheduleTx moves the ticket to the new seat instead of refunding:
// the new seat is claimed under lock, the old one freed, and the ticket
// repointed, atomically with the request resolution.
func (r *repository) ApproveRescheduleTx(ctx context.Context, requestID, newFlightID, newSeatID uuid.UUID, notes *string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		request, err := lockPendingRequest(tx, requestID)
		if err != nil {
			return err
		}

		var ticket bookings.Ticket
		err = tx.
			Set("gorm:query_option", "FOR UPDATE").
			First(&ticket, "id = ?", request.TicketID).Error
		if err != nil {
			return fmt.Errorf("failed to lock ticket: %w", err)
		}

		var newSeat seats.Seat
		err = tx.
			Set("gorm:query_option", "FOR UPDATE").
			First(&newSeat, "id = ?", newSeatID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("failed to lock new seat: %w", err)
		}
		if newSeat.FlightID != newFlightID {
			return apperrors.NewValidation("new_seat_id", "seat does not belong to the new flight")
		}
		if newSeat.IsBooked || newSeat.IsHeldByOther(ticket.UserID, now) {
			return apperrors.NewSeatUnavailable(newSeat.SeatNumber)
		}

		err = tx.Model(&seats.Seat{}).
			Where("id = ?", ticket.SeatID).
			Updates(map[string]interface{}{
				"is_booked":       false,
				"hold_until":      nil,
				"held_by_user_id": nil,
				"updated_at":      now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to release old seat: %w", err)
		}

		err = tx.Model(&seats.Seat{}).
			Where("id = ?", newSeatID).
			Updates(map[string]interface{}{
				"is_booked":       true,
				"hold_until":      nil,
				"held_by_user_id": nil,
				"updated_at":      now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to book new seat: %w", err)
		}

		err = tx.Model(&bookings.Ticket{}).
			Where("id = ?", ticket.ID).
			Updates(map[string]interface{}{
				"flight_id":  newFlightID,
				"seat_id":    newSeatID,
				"updated_at": now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to repoint ticket: %w", err)
		}

		err = tx.Model(&RefundRequest{}).
			Where("id = ?", requestID).
			Updates(map[string]interface{}{
				"status":        StatusApproved,
				"new_flight_id": newFlightID,
				"new_seat_id":   newSeatID,
				"admin_notes":   notes,
				"resolved_at":   now,
				"updated_at":    now,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to approve reschedule request: %w", err)
		}

		return nil
	})
}

// RejectTx closes the request without touching the ticket or seat. The
// guarded UPDATE carries the PENDING check; zero rows means the request is
// gone or already resolved.
func (r *repository) RejectTx(ctx context.Context, requestID uuid.UUID, reason string, now time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&RefundRequest{}).
		Where("id = ? AND status = ?", requestID, StatusPending).
		Updates(map[string]interface{}{
			"status":      StatusRejected,
			"admin_notes": reason,
			"resolved_at": now,
			"updated_at":  now,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to reject refund request: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var request RefundRequest
		err := r.db.WithContext(ctx).First(&request, "id = ?", requestID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound
		}
		return apperrors.ErrStateConflict
	}
	return nil
}
