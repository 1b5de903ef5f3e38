package bookings

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"aviato/internal/flashsales"
	"aviato/internal/flights"
	"aviato/internal/seats"
	"aviato/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrCodeCollision signals that a proposed ticket code already exists. The
// service retries with fresh codes; it never reaches callers.
var ErrCodeCollision = errors.New("ticket code collision")

// QuotaClaim asks the booking transaction to consume flash-sale quota
// atomically with the seat writes.
type QuotaClaim struct {
	SaleID uuid.UUID
	Count  int
}

// CreateTicketsParams carries one booking group into the transaction:
// pre-built tickets (codes and prices already resolved) plus the seats they
// claim. For a round trip both legs' seats and tickets are present and
// commit together.
type CreateTicketsParams struct {
	Tickets []*Ticket
	SeatIDs []uuid.UUID
	Quota   *QuotaClaim
	Now     time.Time
}

type Repository interface {
	// CreateTicketsWithSeatCheck is the authoritative booking step: every
	// availability fact is rechecked under row locks inside one
	// transaction, regardless of what holds or cached seat maps said.
	CreateTicketsWithSeatCheck(ctx context.Context, params CreateTicketsParams) error

	GetTicketByID(ctx context.Context, id uuid.UUID) (*Ticket, error)
	GetTicketByCode(ctx context.Context, code string) (*Ticket, error)
	GetTicketsByGroupID(ctx context.Context, groupID uuid.UUID) ([]Ticket, error)
	GetUserTickets(ctx context.Context, userID uuid.UUID) ([]Ticket, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreateTicketsWithSeatCheck books every seat in the group or none of them:
//  1. Lock the seat rows FOR UPDATE in stable ID order (stable order keeps
//     concurrent bookings that overlap from deadlocking).
//  2. Recheck availability on the locked rows; report every conflicting
//     seat number, not just the first.
//  3. Flights must still be sellable.
//  4. Flash-sale quota is consumed by a conditional UPDATE whose guard
//     covers ceiling and window in one statement.
//  5. Tickets are inserted and seats flipped to booked, holds cleared.
func (r *repository) CreateTicketsWithSeatCheck(ctx context.Context, params CreateTicketsParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seatIDs := make([]uuid.UUID, len(params.SeatIDs))
		copy(seatIDs, params.SeatIDs)
		sort.Slice(seatIDs, func(i, j int) bool {
			return bytes.Compare(seatIDs[i][:], seatIDs[j][:]) < 0
		})

		var locked []seats.Seat
		err := tx.Model(&seats.Seat{}).
			Where("id IN ?", seatIDs).
			Order("id ASC").
			Set("gorm:query_option", "FOR UPDATE").
			Find(&locked).Error
		if err != nil {
			return fmt.Errorf("failed to lock seats: %w", err)
		}
		if len(locked) != len(seatIDs) {
			return apperrors.ErrNotFound
		}

		userID := params.Tickets[0].UserID
		var conflicts []string
		for i := range locked {
			seat := &locked[i]
			if seat.IsBooked || seat.IsHeldByOther(userID, params.Now) {
				conflicts = append(conflicts, seat.SeatNumber)
			}
		}
		if len(conflicts) > 0 {
			return apperrors.NewSeatUnavailable(conflicts...)
		}

		flightIDs := make([]uuid.UUID, 0, 2)
		seen := make(map[uuid.UUID]bool, 2)
		for _, t := range params.Tickets {
			if !seen[t.FlightID] {
				seen[t.FlightID] = true
				flightIDs = append(flightIDs, t.FlightID)
			}
		}
		var flightRows []struct {
			ID     uuid.UUID `gorm:"column:id"`
			Status string    `gorm:"column:status"`
		}
		err = tx.Table("flights").
			Select("id, status").
			Where("id IN ?", flightIDs).
			Find(&flightRows).Error
		if err != nil {
			return fmt.Errorf("failed to check flights: %w", err)
		}
		if len(flightRows) != len(flightIDs) {
			return apperrors.ErrNotFound
		}
		for _, f := range flightRows {
			if !flights.Status(f.Status).IsBookable() {
				return apperrors.ErrStateConflict
			}
		}

		if params.Quota != nil {
			ok, err := flashsales.ConsumeQuota(tx, params.Quota.SaleID, params.Quota.Count, params.Now)
			if err != nil {
				return fmt.Errorf("failed to consume flash sale quota: %w", err)
			}
			if !ok {
				return apperrors.ErrQuotaExceeded
			}
		}

		codes := make([]string, len(params.Tickets))
		for i, t := range params.Tickets {
			codes[i] = t.Code
		}
		var codeCount int64
		if err := tx.Model(&Ticket{}).Where("code IN ?", codes).Count(&codeCount).Error; err != nil {
			return fmt.Errorf("failed to check ticket codes: %w", err)
		}
		if codeCount > 0 {
			return ErrCodeCollision
		}

		if err := tx.Create(params.Tickets).Error; err != nil {
			return fmt.Errorf("failed to create tickets: %w", err)
		}

		res := tx.Model(&seats.Seat{}).
			Where("id IN ? AND is_booked = ?", seatIDs, false).
			Updates(map[string]interface{}{
				"is_booked":       true,
				"hold_until":      nil,
				"held_by_user_id": nil,
				"updated_at":      params.Now,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to book seats: %w", res.Error)
		}
		if res.RowsAffected != int64(len(seatIDs)) {
			return fmt.Errorf("booked %d of %d seats", res.RowsAffected, len(seatIDs))
		}

		return nil
	})
}

func (r *repository) GetTicketByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).
		Preload("Flight").
		Preload("Seat").
		First(&ticket, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetTicketByCode(ctx context.Context, code string) (*Ticket, error) {
	var ticket Ticket
	err := r.db.WithContext(ctx).
		Preload("Flight").
		Preload("Seat").
		First(&ticket, "code = ?", code).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) GetTicketsByGroupID(ctx context.Context, groupID uuid.UUID) ([]Ticket, error) {
	var tickets []Ticket
	err := r.db.WithContext(ctx).
		Preload("Flight").
		Preload("Seat").
		Where("group_id = ?", groupID).
		Order("created_at ASC").
		Find(&tickets).Error
	return tickets, err
}

func (r *repository) GetUserTickets(ctx context.Context, userID uuid.UUID) ([]Ticket, error) {
	var tickets []Ticket
	err := r.db.WithContext(ctx).
		Preload("Flight").
		Preload("Seat").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tickets).Error
	return tickets, err
}
