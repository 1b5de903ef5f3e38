package flights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aviato/internal/pricing"
	"aviato/internal/seats"
	"aviato/internal/shared/constants"
	"aviato/pkg/apperrors"
	"aviato/pkg/cache"
	"aviato/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	CreateFlight(ctx context.Context, req CreateFlightRequest) (*FlightResponse, error)
	GetFlight(ctx context.Context, id string) (*FlightResponse, error)
	GetFlightEntity(ctx context.Context, id uuid.UUID) (*Flight, error)
	SearchFlights(ctx context.Context, query SearchQuery) (*FlightListResponse, error)
	UpdateStatus(ctx context.Context, id string, status string) error
}

type service struct {
	repo         Repository
	seatRepo     seats.Repository
	cacheService cache.Service
}

func NewService(repo Repository, seatRepo seats.Repository) *service {
	return &service{repo: repo, seatRepo: seatRepo}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// CreateFlight schedules a flight and materialises its seat rows from the
// per-class counts. Admin only; enforced at the router.
func (s *service) CreateFlight(ctx context.Context, req CreateFlightRequest) (*FlightResponse, error) {
	departure, err := time.Parse(time.RFC3339, req.DepartureTime)
	if err != nil {
		return nil, apperrors.NewValidation("departure_time", "must be RFC3339")
	}
	arrival, err := time.Parse(time.RFC3339, req.ArrivalTime)
	if err != nil {
		return nil, apperrors.NewValidation("arrival_time", "must be RFC3339")
	}
	if !arrival.After(departure) {
		return nil, apperrors.NewValidation("arrival_time", "must be after departure_time")
	}
	if req.EconomySeats+req.BusinessSeats+req.FirstSeats == 0 {
		return nil, apperrors.NewValidation("economy_seats", "flight must have at least one seat")
	}

	flight := &Flight{
		FlightNumber:  strings.ToUpper(req.FlightNumber),
		Origin:        strings.ToUpper(req.Origin),
		Destination:   strings.ToUpper(req.Destination),
		DepartureTime: departure,
		ArrivalTime:   arrival,
		BasePrice:     req.BasePrice,
		EconomyPrice:  req.EconomyPrice,
		BusinessPrice: req.BusinessPrice,
		FirstPrice:    req.FirstPrice,
		Status:        StatusScheduled,
	}

	if err := s.repo.CreateFlight(ctx, flight); err != nil {
		return nil, fmt.Errorf("failed to create flight: %w", err)
	}

	seatRows := generateSeats(flight.ID, req.FirstSeats, req.BusinessSeats, req.EconomySeats)
	if err := s.seatRepo.CreateSeats(ctx, seatRows); err != nil {
		return nil, fmt.Errorf("failed to create seats: %w", err)
	}

	s.invalidateSearchCache(ctx)
	logger.GetDefault().Info("flight created",
		"flight_id", flight.ID.String(),
		"flight_number", flight.FlightNumber,
		"seats", len(seatRows))

	return toFlightResponse(flight), nil
}

// GetFlight returns the public view of a flight, cached briefly.
func (s *service) GetFlight(ctx context.Context, id string) (*FlightResponse, error) {
	flightID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperrors.NewValidation("flight_id", "invalid flight ID")
	}

	var resp FlightResponse
	if s.cacheService != nil {
		cacheKey := constants.BuildFlightDetailKey(id)
		err = s.cacheService.GetOrSet(ctx, cacheKey, constants.TTL_FLIGHT_DETAIL, func() (interface{}, error) {
			flight, err := s.repo.GetFlightByID(ctx, flightID)
			if err != nil {
				return nil, err
			}
			return toFlightResponse(flight), nil
		}, &resp)
	} else {
		var flight *Flight
		flight, err = s.repo.GetFlightByID(ctx, flightID)
		if err == nil {
			resp = *toFlightResponse(flight)
		}
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}

	return &resp, nil
}

// GetFlightEntity is the uncached lookup used by other services that need
// the row itself rather than the response view.
func (s *service) GetFlightEntity(ctx context.Context, id uuid.UUID) (*Flight, error) {
	flight, err := s.repo.GetFlightByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	return flight, nil
}

// SearchFlights lists non-cancelled flights matching the filters, cached per
// filter combination.
func (s *service) SearchFlights(ctx context.Context, query SearchQuery) (*FlightListResponse, error) {
	query.Origin = strings.ToUpper(query.Origin)
	query.Destination = strings.ToUpper(query.Destination)

	var resp FlightListResponse
	fetch := func() (interface{}, error) {
		flights, err := s.repo.SearchFlights(ctx, query)
		if err != nil {
			return nil, err
		}
		list := FlightListResponse{Flights: make([]FlightResponse, 0, len(flights))}
		for i := range flights {
			list.Flights = append(list.Flights, *toFlightResponse(&flights[i]))
		}
		list.Count = len(list.Flights)
		return list, nil
	}

	var err error
	if s.cacheService != nil {
		cacheKey := constants.BuildFlightSearchKey(query.Origin, query.Destination, query.Date)
		err = s.cacheService.GetOrSet(ctx, cacheKey, constants.TTL_FLIGHT_SEARCH, fetch, &resp)
	} else {
		var data interface{}
		data, err = fetch()
		if err == nil {
			resp = data.(FlightListResponse)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search flights: %w", err)
	}

	return &resp, nil
}

// UpdateStatus transitions a flight between SCHEDULED, DELAYED and
// CANCELLED. Cancelling does not touch existing tickets; refunds for a
// cancelled flight go through the refund workflow.
func (s *service) UpdateStatus(ctx context.Context, id string, status string) error {
	flightID, err := uuid.Parse(id)
	if err != nil {
		return apperrors.NewValidation("flight_id", "invalid flight ID")
	}

	newStatus := Status(status)
	if !newStatus.IsValid() {
		return apperrors.NewValidation("status", "must be SCHEDULED, DELAYED or CANCELLED")
	}

	if _, err := s.GetFlightEntity(ctx, flightID); err != nil {
		return err
	}

	if err := s.repo.UpdateFlightStatus(ctx, flightID, newStatus); err != nil {
		return fmt.Errorf("failed to update flight status: %w", err)
	}

	if s.cacheService != nil {
		if err := s.cacheService.Delete(ctx, constants.BuildFlightDetailKey(id)); err != nil {
			logger.GetDefault().Debug("failed to invalidate flight detail cache", "flight_id", id, "error", err)
		}
	}
	s.invalidateSearchCache(ctx)

	logger.GetDefault().Info("flight status updated", "flight_id", id, "status", status)
	return nil
}

func (s *service) invalidateSearchCache(ctx context.Context) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.DeletePattern(ctx, constants.CACHE_KEY_FLIGHTS_SEARCH+"*"); err != nil {
		logger.GetDefault().Debug("failed to invalidate flight search cache", "error", err)
	}
}

func toFlightResponse(f *Flight) *FlightResponse {
	return &FlightResponse{
		ID:            f.ID.String(),
		FlightNumber:  f.FlightNumber,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureTime: f.DepartureTime,
		ArrivalTime:   f.ArrivalTime,
		Status:        f.Status.String(),
		EconomyPrice:  pricing.ClassPrice(f.BasePrice, f.EconomyPrice, seats.ClassEconomy),
		BusinessPrice: pricing.ClassPrice(f.BasePrice, f.BusinessPrice, seats.ClassBusiness),
		FirstPrice:    pricing.ClassPrice(f.BasePrice, f.FirstPrice, seats.ClassFirst),
	}
}

// generateSeats lays out the cabin front to back: first class, then
// business, then economy, six seats per row lettered A-F.
func generateSeats(flightID uuid.UUID, first, business, economy int) []seats.Seat {
	letters := []string{"A", "B", "C", "D", "E", "F"}
	rows := make([]seats.Seat, 0, first+business+economy)
	row, col := 1, 0

	appendClass := func(count int, class seats.Class) {
		for i := 0; i < count; i++ {
			rows = append(rows, seats.Seat{
				FlightID:   flightID,
				SeatNumber: fmt.Sprintf("%d%s", row, letters[col]),
				Class:      class,
			})
			col++
			if col == len(letters) {
				col = 0
				row++
			}
		}
		// Classes never share a row.
		if col != 0 {
			col = 0
			row++
		}
	}

	appendClass(first, seats.ClassFirst)
	appendClass(business, seats.ClassBusiness)
	appendClass(economy, seats.ClassEconomy)
	return rows
}
