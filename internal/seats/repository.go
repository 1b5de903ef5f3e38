package seats

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateSeats(ctx context.Context, seats []Seat) error
	GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error)
	GetSeatsByFlightID(ctx context.Context, flightID uuid.UUID) ([]Seat, error)
	GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error)

	// Conditional hold mutations. Both are single guarded UPDATEs so the
	// availability check and the write cannot be split by a concurrent
	// request; callers inspect the bool to learn whether the guard matched.
	AcquireHold(ctx context.Context, seatID, userID uuid.UUID, until, now time.Time) (bool, error)
	ReleaseHold(ctx context.Context, seatID, userID uuid.UUID) (bool, error)

	// ExpiredHoldCount is a maintenance metric, not part of the hold
	// protocol: expiry itself is lazy.
	ExpiredHoldCount(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateSeats(ctx context.Context, seats []Seat) error {
	return r.db.WithContext(ctx).Create(&seats).Error
}

func (r *repository) GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error) {
	var seat Seat
	err := r.db.WithContext(ctx).First(&seat, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *repository) GetSeatsByFlightID(ctx context.Context, flightID uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("flight_id = ?", flightID).
		Order("seat_number ASC").
		Find(&seats).Error
	return seats, err
}

func (r *repository) GetSeatsByIDs(ctx context.Context, seatIDs []uuid.UUID) ([]Seat, error) {
	var seats []Seat
	err := r.db.WithContext(ctx).
		Where("id IN ?", seatIDs).
		Find(&seats).Error
	return seats, err
}

// AcquireHold claims the seat for userID until the given deadline. The WHERE
// clause admits three cases in one round trip: seat free of holds, hold
// already owned by this user (extend), or hold expired (steal). A booked
// seat never matches.
func (r *repository) AcquireHold(ctx context.Context, seatID, userID uuid.UUID, until, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Seat{}).
		Where("id = ? AND is_booked = ?", seatID, false).
		Where("held_by_user_id IS NULL OR held_by_user_id = ? OR hold_until <= ?", userID, now).
		Updates(map[string]interface{}{
			"hold_until":      until,
			"held_by_user_id": userID,
			"updated_at":      now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ReleaseHold clears the hold only when userID owns it; releasing another
// user's hold or a booked seat is a silent no-op.
func (r *repository) ReleaseHold(ctx context.Context, seatID, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Seat{}).
		Where("id = ? AND is_booked = ? AND held_by_user_id = ?", seatID, false, userID).
		Updates(map[string]interface{}{
			"hold_until":      nil,
			"held_by_user_id": nil,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ExpiredHoldCount(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Seat{}).
		Where("is_booked = ? AND hold_until IS NOT NULL AND hold_until <= ?", false, now).
		Count(&count).Error
	return count, err
}
