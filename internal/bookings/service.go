package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"aviato/internal/flashsales"
	"aviato/internal/flights"
	"aviato/internal/pricing"
	"aviato/internal/seats"
	"aviato/internal/shared/config"
	"aviato/internal/shared/constants"
	"aviato/internal/users"
	"aviato/pkg/apperrors"
	"aviato/pkg/cache"
	"aviato/pkg/logger"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserDirectory is the slice of the user store this service needs; it is an
// interface so tests and wiring stay decoupled from the auth package.
type UserDirectory interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*users.User, error)
}

// Notifier receives post-commit booking events. Implementations must not
// block the caller; failures are the implementation's problem to log.
type Notifier interface {
	TicketsIssued(ctx context.Context, userID uuid.UUID, ticketCodes []string, totalAmount int64)
}

type Service interface {
	CreateBooking(ctx context.Context, callerID uuid.UUID, isAdmin bool, req CreateBookingRequest) (*BookingResponse, error)
	GetBookingGroup(ctx context.Context, groupID string, callerID uuid.UUID, isAdmin bool) ([]TicketResponse, error)
	GetTicketByCode(ctx context.Context, code string, callerID uuid.UUID, isAdmin bool) (*TicketResponse, error)
	GetUserTickets(ctx context.Context, userID uuid.UUID) ([]TicketResponse, error)
}

type service struct {
	repo          Repository
	seatRepo      seats.Repository
	flightService flights.Service
	flashSaleRepo flashsales.Repository
	userDirectory UserDirectory
	config        *config.Config
	cacheService  cache.Service
	notifier      Notifier

	// injectable clock for tests
	now func() time.Time
}

func NewService(
	repo Repository,
	seatRepo seats.Repository,
	flightService flights.Service,
	flashSaleRepo flashsales.Repository,
	userDirectory UserDirectory,
	cfg *config.Config,
) *service {
	return &service{
		repo:          repo,
		seatRepo:      seatRepo,
		flightService: flightService,
		flashSaleRepo: flashSaleRepo,
		userDirectory: userDirectory,
		config:        cfg,
		now:           time.Now,
	}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

func (s *service) SetNotifier(notifier Notifier) {
	s.notifier = notifier
}

// leg is one flight's worth of a booking request after validation.
type leg struct {
	flight *flights.Flight
	seats  []seats.Seat
}

// CreateBooking issues one ticket per requested seat, atomically across all
// seats and, for round trips, across both legs. Pre-checks here are fast
// failures only; the transaction in the repository rechecks everything
// under row locks and is the sole authority.
func (s *service) CreateBooking(ctx context.Context, callerID uuid.UUID, isAdmin bool, req CreateBookingRequest) (*BookingResponse, error) {
	channel := Channel(req.Channel)
	if !channel.IsValid() {
		return nil, apperrors.NewValidation("channel", "must be ONLINE, COUNTER or FLASH_SALE")
	}

	paymentMethod := PaymentMethod(req.PaymentMethod)
	if !paymentMethod.IsValid() {
		return nil, apperrors.NewValidation("payment_method", "must be CARD, CASH or VOUCHER")
	}

	if len(req.Passengers) != len(req.SeatIDs) {
		return nil, apperrors.NewValidation("passengers", "one passenger record per seat")
	}
	for _, p := range req.Passengers {
		if strings.TrimSpace(p.Name) == "" {
			return nil, apperrors.NewValidation("passengers", "passenger name is required")
		}
	}

	now := s.now()

	passengerID, err := s.resolvePassenger(ctx, callerID, isAdmin, channel, req.CustomerID)
	if err != nil {
		return nil, err
	}

	roundTrip := req.ReturnFlightID != "" || len(req.ReturnSeatIDs) > 0
	if roundTrip {
		if req.ReturnFlightID == "" || len(req.ReturnSeatIDs) == 0 {
			return nil, apperrors.NewValidation("return_flight_id", "round trip requires both return flight and return seats")
		}
		if req.ReturnFlightID == req.FlightID {
			return nil, apperrors.NewValidation("return_flight_id", "return flight must differ from outbound flight")
		}
		if len(req.ReturnSeatIDs) != len(req.SeatIDs) {
			return nil, apperrors.NewValidation("return_seat_ids", "the same passengers fly both legs, seat counts must match")
		}
		if channel == ChannelFlashSale {
			return nil, apperrors.NewValidation("channel", "flash sale bookings are single flight only")
		}
	}

	outbound, err := s.loadLeg(ctx, req.FlightID, req.SeatIDs, now)
	if err != nil {
		return nil, err
	}

	legs := []leg{*outbound}
	if roundTrip {
		ret, err := s.loadLeg(ctx, req.ReturnFlightID, req.ReturnSeatIDs, now)
		if err != nil {
			return nil, err
		}
		if !ret.flight.DepartureTime.After(outbound.flight.DepartureTime) {
			return nil, apperrors.NewValidation("return_flight_id", "return flight must depart after outbound flight")
		}
		legs = append(legs, *ret)
	}

	var sale *flashsales.FlashSale
	var quota *QuotaClaim
	if channel == ChannelFlashSale {
		if req.FlashSaleID == "" {
			return nil, apperrors.NewValidation("flash_sale_id", "required for flash sale bookings")
		}
		sale, err = s.loadFlashSale(ctx, req.FlashSaleID, outbound.flight.ID, now)
		if err != nil {
			return nil, err
		}
		quota = &QuotaClaim{SaleID: sale.ID, Count: len(outbound.seats)}
	}

	groupID := uuid.New()
	seatIDs := make([]uuid.UUID, 0, len(req.SeatIDs)+len(req.ReturnSeatIDs))
	for _, l := range legs {
		for i := range l.seats {
			seatIDs = append(seatIDs, l.seats[i].ID)
		}
	}

	// Bounded retry on ticket code collision; each attempt regenerates
	// every code in the group.
	var tickets []*Ticket
	attempts := s.config.Booking.TicketCodeRetries
	if attempts < 1 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		tickets, err = s.buildTickets(groupID, passengerID, channel, paymentMethod, req.Passengers, sale, roundTrip, legs)
		if err != nil {
			return nil, err
		}

		err = s.repo.CreateTicketsWithSeatCheck(ctx, CreateTicketsParams{
			Tickets: tickets,
			SeatIDs: seatIDs,
			Quota:   quota,
			Now:     now,
		})
		if !errors.Is(err, ErrCodeCollision) {
			break
		}
	}
	if err != nil {
		if errors.Is(err, ErrCodeCollision) {
			return nil, apperrors.ErrTransient
		}
		return nil, err
	}

	for _, l := range legs {
		s.invalidateSeatMap(ctx, l.flight.ID)
	}

	codes := make([]string, len(tickets))
	var total int64
	for i, t := range tickets {
		codes[i] = t.Code
		total += t.Price
	}
	logger.GetDefault().LogBookingCreated(ctx, passengerID.String(), codes, channel.String())

	if s.notifier != nil {
		s.notifier.TicketsIssued(ctx, passengerID, codes, total)
	}

	return s.buildResponse(groupID, channel, paymentMethod, roundTrip, tickets, legs), nil
}

// resolvePassenger decides who the tickets belong to. COUNTER is the only
// channel where caller and passenger differ, and only staff may use it.
func (s *service) resolvePassenger(ctx context.Context, callerID uuid.UUID, isAdmin bool, channel Channel, customerID string) (uuid.UUID, error) {
	if channel != ChannelCounter {
		return callerID, nil
	}

	if !isAdmin {
		return uuid.Nil, apperrors.ErrUnauthorized
	}
	if customerID == "" {
		return uuid.Nil, apperrors.NewValidation("customer_id", "required for counter bookings")
	}
	customerUUID, err := uuid.Parse(customerID)
	if err != nil {
		return uuid.Nil, apperrors.NewValidation("customer_id", "invalid customer ID")
	}
	if _, err := s.userDirectory.GetUserByID(ctx, customerUUID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, apperrors.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to look up customer: %w", err)
	}
	return customerUUID, nil
}

// loadLeg validates one flight plus its requested seats.
func (s *service) loadLeg(ctx context.Context, flightID string, seatIDs []string, now time.Time) (*leg, error) {
	flightUUID, err := uuid.Parse(flightID)
	if err != nil {
		return nil, apperrors.NewValidation("flight_id", "invalid flight ID")
	}

	flight, err := s.flightService.GetFlightEntity(ctx, flightUUID)
	if err != nil {
		return nil, err
	}
	if !flight.Status.IsBookable() {
		return nil, apperrors.ErrStateConflict
	}
	if flight.HasDeparted(now) {
		return nil, apperrors.NewValidation("flight_id", "flight has already departed")
	}

	seatUUIDs := make([]uuid.UUID, 0, len(seatIDs))
	dedupe := make(map[uuid.UUID]bool, len(seatIDs))
	for _, raw := range seatIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperrors.NewValidation("seat_ids", "invalid seat ID")
		}
		if dedupe[id] {
			return nil, apperrors.NewValidation("seat_ids", "duplicate seat ID")
		}
		dedupe[id] = true
		seatUUIDs = append(seatUUIDs, id)
	}

	found, err := s.seatRepo.GetSeatsByIDs(ctx, seatUUIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to get seats: %w", err)
	}
	if len(found) != len(seatUUIDs) {
		return nil, apperrors.ErrNotFound
	}

	// Reorder to the requested order; passenger records pair with seats
	// by index.
	byID := make(map[uuid.UUID]seats.Seat, len(found))
	for i := range found {
		byID[found[i].ID] = found[i]
	}
	legSeats := make([]seats.Seat, 0, len(seatUUIDs))
	for _, id := range seatUUIDs {
		legSeats = append(legSeats, byID[id])
	}

	var conflicts []string
	for i := range legSeats {
		seat := &legSeats[i]
		if seat.FlightID != flight.ID {
			return nil, apperrors.NewValidation("seat_ids", "seat does not belong to the requested flight")
		}
		if seat.IsBooked {
			conflicts = append(conflicts, seat.SeatNumber)
		}
	}
	if len(conflicts) > 0 {
		return nil, apperrors.NewSeatUnavailable(conflicts...)
	}

	return &leg{flight: flight, seats: legSeats}, nil
}

func (s *service) loadFlashSale(ctx context.Context, saleID string, flightID uuid.UUID, now time.Time) (*flashsales.FlashSale, error) {
	saleUUID, err := uuid.Parse(saleID)
	if err != nil {
		return nil, apperrors.NewValidation("flash_sale_id", "invalid flash sale ID")
	}

	sale, err := s.flashSaleRepo.GetFlashSaleByID(ctx, saleUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get flash sale: %w", err)
	}
	if sale.FlightID != flightID {
		return nil, apperrors.NewValidation("flash_sale_id", "flash sale is for a different flight")
	}
	if !sale.IsActive(now) {
		return nil, apperrors.ErrQuotaExceeded
	}
	return sale, nil
}

// buildTickets generates fresh codes and resolves the fare for every seat
// in the group. Passengers pair with seats by index within each leg, so a
// round trip issues the same passenger both of their boarding passes.
func (s *service) buildTickets(groupID, passengerID uuid.UUID, channel Channel, paymentMethod PaymentMethod, passengers []PassengerRecord, sale *flashsales.FlashSale, roundTrip bool, legs []leg) ([]*Ticket, error) {
	var tickets []*Ticket
	for _, l := range legs {
		for i := range l.seats {
			seat := &l.seats[i]
			passenger := passengers[i]
			fare := pricing.ClassPrice(l.flight.BasePrice, l.flight.ClassOverride(seat.Class), seat.Class)
			if sale != nil {
				fare = pricing.FlashSalePrice(fare, sale.DiscountPercent)
			} else if roundTrip {
				fare = pricing.RoundTripFare(fare, s.config.Booking.RoundTripDiscountPercent)
			}

			code, err := GenerateTicketCode(channel)
			if err != nil {
				return nil, fmt.Errorf("failed to generate ticket code: %w", err)
			}

			ticket := &Ticket{
				Code:              code,
				GroupID:           groupID,
				UserID:            passengerID,
				FlightID:          l.flight.ID,
				SeatID:            seat.ID,
				PassengerName:     strings.TrimSpace(passenger.Name),
				PassengerDocument: strings.TrimSpace(passenger.Document),
				Channel:           channel,
				PaymentMethod:     paymentMethod,
				Status:            StatusSuccess,
				Price:             fare,
			}
			if sale != nil {
				saleID := sale.ID
				ticket.FlashSaleID = &saleID
			}
			tickets = append(tickets, ticket)
		}
	}
	return tickets, nil
}

func (s *service) buildResponse(groupID uuid.UUID, channel Channel, paymentMethod PaymentMethod, roundTrip bool, tickets []*Ticket, legs []leg) *BookingResponse {
	seatsByID := make(map[uuid.UUID]*seats.Seat)
	flightsByID := make(map[uuid.UUID]*flights.Flight)
	for li := range legs {
		flightsByID[legs[li].flight.ID] = legs[li].flight
		for i := range legs[li].seats {
			seatsByID[legs[li].seats[i].ID] = &legs[li].seats[i]
		}
	}

	resp := &BookingResponse{
		GroupID:       groupID.String(),
		Channel:       channel.String(),
		PaymentMethod: paymentMethod.String(),
		RoundTrip:     roundTrip,
		Tickets:       make([]TicketResponse, 0, len(tickets)),
	}
	for _, t := range tickets {
		tr := TicketResponse{
			ID:            t.ID.String(),
			Code:          t.Code,
			FlightID:      t.FlightID.String(),
			PassengerName: t.PassengerName,
			Channel:       t.Channel.String(),
			PaymentMethod: t.PaymentMethod.String(),
			Status:        t.Status.String(),
			Price:         t.Price,
			CreatedAt:     t.CreatedAt,
		}
		if f := flightsByID[t.FlightID]; f != nil {
			tr.FlightNumber = f.FlightNumber
		}
		if seat := seatsByID[t.SeatID]; seat != nil {
			tr.SeatNumber = seat.SeatNumber
			tr.Class = seat.Class.String()
		}
		resp.TotalAmount += t.Price
		resp.Tickets = append(resp.Tickets, tr)
	}
	return resp
}

// GetBookingGroup returns every ticket issued by one booking request, both
// legs of a round trip included. Customers only see their own groups.
func (s *service) GetBookingGroup(ctx context.Context, groupID string, callerID uuid.UUID, isAdmin bool) ([]TicketResponse, error) {
	groupUUID, err := uuid.Parse(groupID)
	if err != nil {
		return nil, apperrors.NewValidation("group_id", "invalid group ID")
	}

	tickets, err := s.repo.GetTicketsByGroupID(ctx, groupUUID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking group: %w", err)
	}
	if len(tickets) == 0 {
		return nil, apperrors.ErrNotFound
	}

	if !isAdmin {
		for i := range tickets {
			if !tickets[i].BelongsTo(callerID) {
				return nil, apperrors.ErrUnauthorized
			}
		}
	}

	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, toTicketResponse(&tickets[i]))
	}
	return out, nil
}

// GetTicketByCode looks up a ticket; customers only see their own.
func (s *service) GetTicketByCode(ctx context.Context, code string, callerID uuid.UUID, isAdmin bool) (*TicketResponse, error) {
	if code == "" {
		return nil, apperrors.NewValidation("code", "required")
	}

	ticket, err := s.repo.GetTicketByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	if !isAdmin && !ticket.BelongsTo(callerID) {
		return nil, apperrors.ErrUnauthorized
	}

	tr := toTicketResponse(ticket)
	return &tr, nil
}

func (s *service) GetUserTickets(ctx context.Context, userID uuid.UUID) ([]TicketResponse, error) {
	tickets, err := s.repo.GetUserTickets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets: %w", err)
	}

	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, toTicketResponse(&tickets[i]))
	}
	return out, nil
}

func toTicketResponse(t *Ticket) TicketResponse {
	tr := TicketResponse{
		ID:            t.ID.String(),
		Code:          t.Code,
		FlightID:      t.FlightID.String(),
		PassengerName: t.PassengerName,
		Channel:       t.Channel.String(),
		PaymentMethod: t.PaymentMethod.String(),
		Status:        t.Status.String(),
		Price:         t.Price,
		CreatedAt:     t.CreatedAt,
	}
	if t.Flight != nil {
		tr.FlightNumber = t.Flight.FlightNumber
	}
	if t.Seat != nil {
		tr.SeatNumber = t.Seat.SeatNumber
		tr.Class = t.Seat.Class.String()
	}
	return tr
}

func (s *service) invalidateSeatMap(ctx context.Context, flightID uuid.UUID) {
	if s.cacheService == nil {
		return
	}
	if err := s.cacheService.Delete(ctx, constants.BuildSeatMapKey(flightID.String())); err != nil {
		logger.GetDefault().Debug("failed to invalidate seat map cache", "flight_id", flightID.String(), "error", err)
	}
}
