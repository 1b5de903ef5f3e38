package seats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aviato/internal/shared/config"
	"aviato/internal/shared/constants"
	"aviato/pkg/apperrors"
	"aviato/pkg/cache"
	"aviato/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the seat hold manager: a time-boxed, advisory claim on a seat
// during interactive selection. It improves UX but is never the authority
// that prevents double-booking; that is the booking transaction's recheck.
type Service interface {
	AcquireHold(ctx context.Context, seatID string, userID uuid.UUID) (*HoldResponse, error)
	ReleaseHold(ctx context.Context, seatID string, userID uuid.UUID) error
	GetSeatMap(ctx context.Context, flightID string, userID uuid.UUID) ([]SeatMapEntry, error)
	GetSeatByID(ctx context.Context, id string) (*Seat, error)
	HoldMetrics(ctx context.Context) (*HoldMetricsResponse, error)
}

type service struct {
	repo         Repository
	config       *config.Config
	cacheService cache.Service

	// injectable clock for tests
	now func() time.Time
}

func NewService(repo Repository, cfg *config.Config) *service {
	return &service{
		repo:   repo,
		config: cfg,
		now:    time.Now,
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// AcquireHold claims the seat for the caller for the configured TTL.
// Re-acquiring one's own hold is idempotent and extends the deadline.
func (s *service) AcquireHold(ctx context.Context, seatID string, userID uuid.UUID) (*HoldResponse, error) {
	seatUUID, err := uuid.Parse(seatID)
	if err != nil {
		return nil, apperrors.NewValidation("seat_id", "invalid seat ID")
	}

	now := s.now()
	ttl := s.config.Booking.SeatHoldTTL
	until := now.Add(ttl)

	ok, err := s.repo.AcquireHold(ctx, seatUUID, userID, until, now)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire hold: %w", err)
	}

	if !ok {
		// The guard did not match: seat missing, booked, or held by
		// someone else. Refetch once to report which.
		seat, err := s.repo.GetSeatByID(ctx, seatUUID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrNotFound
			}
			return nil, fmt.Errorf("failed to get seat: %w", err)
		}
		return nil, apperrors.NewSeatUnavailable(seat.SeatNumber)
	}

	seat, err := s.repo.GetSeatByID(ctx, seatUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get seat after hold: %w", err)
	}

	s.invalidateSeatMap(ctx, seat.FlightID)
	logger.GetDefault().LogHoldAcquired(ctx, seatID, userID.String(), ttl)

	return &HoldResponse{
		SeatID:     seat.ID.String(),
		FlightID:   seat.FlightID.String(),
		SeatNumber: seat.SeatNumber,
		ExpiresAt:  until,
		TTL:        int(ttl.Seconds()),
	}, nil
}

// ReleaseHold clears the caller's hold. Holds owned by other users and
// booked seats are left untouched; both cases succeed silently.
func (s *service) ReleaseHold(ctx context.Context, seatID string, userID uuid.UUID) error {
	seatUUID, err := uuid.Parse(seatID)
	if err != nil {
		return apperrors.NewValidation("seat_id", "invalid seat ID")
	}

	released, err := s.repo.ReleaseHold(ctx, seatUUID, userID)
	if err != nil {
		return fmt.Errorf("failed to release hold: %w", err)
	}

	if released {
		if seat, err := s.repo.GetSeatByID(ctx, seatUUID); err == nil {
			s.invalidateSeatMap(ctx, seat.FlightID)
		}
	}

	return nil
}

// GetSeatMap returns the rendering model for a flight's seats. The seat rows
// are cached briefly in Redis; per-user flags are computed per request so the
// cache stays shared across users.
func (s *service) GetSeatMap(ctx context.Context, flightID string, userID uuid.UUID) ([]SeatMapEntry, error) {
	flightUUID, err := uuid.Parse(flightID)
	if err != nil {
		return nil, apperrors.NewValidation("flight_id", "invalid flight ID")
	}

	var flightSeats []Seat
	if s.cacheService != nil {
		cacheKey := constants.BuildSeatMapKey(flightID)
		err = s.cacheService.GetOrSet(ctx, cacheKey, constants.TTL_SEAT_MAP, func() (interface{}, error) {
			return s.repo.GetSeatsByFlightID(ctx, flightUUID)
		}, &flightSeats)
	} else {
		flightSeats, err = s.repo.GetSeatsByFlightID(ctx, flightUUID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seats: %w", err)
	}

	now := s.now()
	entries := make([]SeatMapEntry, 0, len(flightSeats))
	for i := range flightSeats {
		seat := &flightSeats[i]
		entries = append(entries, SeatMapEntry{
			SeatID:     seat.ID.String(),
			SeatNumber: seat.SeatNumber,
			Class:      seat.Class.String(),
			Status:     seat.EffectiveStatus(now),
			HeldByMe:   seat.IsHeldBy(userID, now),
		})
	}

	return entries, nil
}

func (s *service) GetSeatByID(ctx context.Context, id string) (*Seat, error) {
	seatUUID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.NewValidation("seat_id", "invalid seat ID")
	}

	seat, err := s.repo.GetSeatByID(ctx, seatUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get seat: %w", err)
	}

	return seat, nil
}

// HoldMetrics counts holds whose deadline has passed but whose rows have
// not been reclaimed yet.
func (s *service) HoldMetrics(ctx context.Context) (*HoldMetricsResponse, error) {
	now := s.now()
	expired, err := s.repo.ExpiredHoldCount(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to count expired holds: %w", err)
	}

	return &HoldMetricsResponse{
		ExpiredHolds: expired,
		EvaluatedAt:  now,
	}, nil
}

func (s *service) invalidateSeatMap(ctx context.Context, flightID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildSeatMapKey(flightID.String())); err != nil {
		logger.GetDefault().Debug("failed to invalidate seat map cache", "flight_id", flightID.String(), "error", err)
	}
}
