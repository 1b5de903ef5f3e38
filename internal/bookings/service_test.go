package bookings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"aviato/internal/flashsales"
	"aviato/internal/flights"
	"aviato/internal/seats"
	"aviato/internal/shared/config"
	"aviato/internal/users"
	"aviato/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeStore is an in-memory stand-in for Postgres. Its
// CreateTicketsWithSeatCheck mirrors the real transaction: validate
// everything under one lock, then apply everything or nothing.
type fakeStore struct {
	mu      sync.Mutex
	seats   map[uuid.UUID]*seats.Seat
	flights map[uuid.UUID]*flights.Flight
	sales   map[uuid.UUID]*flashsales.FlashSale
	tickets map[uuid.UUID]*Ticket

	// test knobs
	collideAttempts int  // first N create calls fail with ErrCodeCollision
	failCommit      bool // abort after validation, before any write
	createCalls     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		seats:   make(map[uuid.UUID]*seats.Seat),
		flights: make(map[uuid.UUID]*flights.Flight),
		sales:   make(map[uuid.UUID]*flashsales.FlashSale),
		tickets: make(map[uuid.UUID]*Ticket),
	}
}

func (f *fakeStore) CreateTicketsWithSeatCheck(ctx context.Context, params CreateTicketsParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++

	userID := params.Tickets[0].UserID
	var conflicts []string
	for _, id := range params.SeatIDs {
		seat, ok := f.seats[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		if seat.IsBooked || seat.IsHeldByOther(userID, params.Now) {
			conflicts = append(conflicts, seat.SeatNumber)
		}
	}
	if len(conflicts) > 0 {
		return apperrors.NewSeatUnavailable(conflicts...)
	}

	for _, t := range params.Tickets {
		flight, ok := f.flights[t.FlightID]
		if !ok {
			return apperrors.ErrNotFound
		}
		if !flight.Status.IsBookable() {
			return apperrors.ErrStateConflict
		}
	}

	if params.Quota != nil {
		sale, ok := f.sales[params.Quota.SaleID]
		if !ok {
			return apperrors.ErrNotFound
		}
		if !sale.IsActive(params.Now) || sale.SoldCount+params.Quota.Count > sale.MaxQuota {
			return apperrors.ErrQuotaExceeded
		}
	}

	if f.collideAttempts > 0 {
		f.collideAttempts--
		return ErrCodeCollision
	}
	if f.failCommit {
		return apperrors.ErrTransient
	}

	if params.Quota != nil {
		f.sales[params.Quota.SaleID].SoldCount += params.Quota.Count
	}
	for _, t := range params.Tickets {
		t.ID = uuid.New()
		t.CreatedAt = params.Now
		f.tickets[t.ID] = t
	}
	for _, id := range params.SeatIDs {
		seat := f.seats[id]
		seat.IsBooked = true
		seat.HoldUntil = nil
		seat.HeldByUserID = nil
	}
	return nil
}

func (f *fakeStore) GetTicketByID(ctx context.Context, id uuid.UUID) (*Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tickets[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) GetTicketByCode(ctx context.Context, code string) (*Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tickets {
		if t.Code == code {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) GetTicketsByGroupID(ctx context.Context, groupID uuid.UUID) ([]Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Ticket
	for _, t := range f.tickets {
		if t.GroupID == groupID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeStore) GetUserTickets(ctx context.Context, userID uuid.UUID) ([]Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Ticket
	for _, t := range f.tickets {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeStore) ticketCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickets)
}

// fakeSeatRepo exposes the store through the seats repository interface.
type fakeSeatRepo struct{ store *fakeStore }

func (f *fakeSeatRepo) CreateSeats(ctx context.Context, rows []seats.Seat) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for i := range rows {
		seat := rows[i]
		if seat.ID == uuid.Nil {
			seat.ID = uuid.New()
		}
		f.store.seats[seat.ID] = &seat
	}
	return nil
}

func (f *fakeSeatRepo) GetSeatByID(ctx context.Context, id uuid.UUID) (*seats.Seat, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if seat, ok := f.store.seats[id]; ok {
		copied := *seat
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeSeatRepo) GetSeatsByFlightID(ctx context.Context, flightID uuid.UUID) ([]seats.Seat, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []seats.Seat
	for _, seat := range f.store.seats {
		if seat.FlightID == flightID {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (f *fakeSeatRepo) GetSeatsByIDs(ctx context.Context, ids []uuid.UUID) ([]seats.Seat, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []seats.Seat
	for _, id := range ids {
		if seat, ok := f.store.seats[id]; ok {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (f *fakeSeatRepo) AcquireHold(ctx context.Context, seatID, userID uuid.UUID, until, now time.Time) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	seat, ok := f.store.seats[seatID]
	if !ok || seat.IsBooked || seat.IsHeldByOther(userID, now) {
		return false, nil
	}
	seat.HoldUntil = &until
	seat.HeldByUserID = &userID
	return true, nil
}

func (f *fakeSeatRepo) ReleaseHold(ctx context.Context, seatID, userID uuid.UUID) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	seat, ok := f.store.seats[seatID]
	if !ok || seat.IsBooked || seat.HeldByUserID == nil || *seat.HeldByUserID != userID {
		return false, nil
	}
	seat.HoldUntil = nil
	seat.HeldByUserID = nil
	return true, nil
}

func (f *fakeSeatRepo) ExpiredHoldCount(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

// fakeFlightService only serves entity lookups; nothing else is exercised
// by the booking path.
type fakeFlightService struct{ store *fakeStore }

func (f *fakeFlightService) CreateFlight(ctx context.Context, req flights.CreateFlightRequest) (*flights.FlightResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeFlightService) GetFlight(ctx context.Context, id string) (*flights.FlightResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeFlightService) GetFlightEntity(ctx context.Context, id uuid.UUID) (*flights.Flight, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if flight, ok := f.store.flights[id]; ok {
		copied := *flight
		return &copied, nil
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeFlightService) SearchFlights(ctx context.Context, query flights.SearchQuery) (*flights.FlightListResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeFlightService) UpdateStatus(ctx context.Context, id string, status string) error {
	return errors.New("not implemented")
}

type fakeFlashSaleRepo struct{ store *fakeStore }

func (f *fakeFlashSaleRepo) CreateFlashSale(ctx context.Context, sale *flashsales.FlashSale) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if sale.ID == uuid.Nil {
		sale.ID = uuid.New()
	}
	f.store.sales[sale.ID] = sale
	return nil
}

func (f *fakeFlashSaleRepo) GetFlashSaleByID(ctx context.Context, id uuid.UUID) (*flashsales.FlashSale, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if sale, ok := f.store.sales[id]; ok {
		copied := *sale
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeFlashSaleRepo) GetActiveSalesByFlightID(ctx context.Context, flightID uuid.UUID, now time.Time) ([]flashsales.FlashSale, error) {
	return nil, nil
}

type fakeUserDirectory struct {
	users map[uuid.UUID]*users.User
}

func (f *fakeUserDirectory) GetUserByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// fixture helpers

func testConfig() *config.Config {
	return &config.Config{
		Booking: config.BookingConfig{
			SeatHoldTTL:              10 * time.Minute,
			RoundTripDiscountPercent: 10,
			TicketCodeRetries:        3,
		},
	}
}

func newBookingService(store *fakeStore) *service {
	svc := NewService(
		store,
		&fakeSeatRepo{store: store},
		&fakeFlightService{store: store},
		&fakeFlashSaleRepo{store: store},
		&fakeUserDirectory{users: make(map[uuid.UUID]*users.User)},
		testConfig(),
	)
	return svc
}

func addFlight(store *fakeStore, departure time.Time, seatCount int) (*flights.Flight, []uuid.UUID) {
	flight := &flights.Flight{
		ID:            uuid.New(),
		FlightNumber:  "AV" + uuid.NewString()[:4],
		Origin:        "BOM",
		Destination:   "DEL",
		DepartureTime: departure,
		ArrivalTime:   departure.Add(2 * time.Hour),
		BasePrice:     100000,
		Status:        flights.StatusScheduled,
	}
	store.flights[flight.ID] = flight

	ids := make([]uuid.UUID, 0, seatCount)
	for i := 0; i < seatCount; i++ {
		seat := &seats.Seat{
			ID:         uuid.New(),
			FlightID:   flight.ID,
			SeatNumber: "1" + string(rune('A'+i)),
			Class:      seats.ClassEconomy,
		}
		store.seats[seat.ID] = seat
		ids = append(ids, seat.ID)
	}
	return flight, ids
}

func passengerList(n int) []PassengerRecord {
	out := make([]PassengerRecord, n)
	for i := range out {
		out[i] = PassengerRecord{Name: fmt.Sprintf("Passenger %d", i+1)}
	}
	return out
}

func TestCreateBooking_Online(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	flight, seatIDs := addFlight(store, departure, 3)

	svc := newBookingService(store)
	userID := uuid.New()

	resp, err := svc.CreateBooking(context.Background(), userID, false, CreateBookingRequest{
		Channel:       "ONLINE",
		FlightID:      flight.ID.String(),
		SeatIDs:       []string{seatIDs[0].String(), seatIDs[1].String()},
		Passengers:    passengerList(2),
		PaymentMethod: "CARD",
	})
	require.NoError(t, err)
	require.Len(t, resp.Tickets, 2)
	assert.Equal(t, int64(200000), resp.TotalAmount)
	assert.False(t, resp.RoundTrip)
	for _, tr := range resp.Tickets {
		assert.Equal(t, "SUCCESS", tr.Status)
		assert.Contains(t, tr.Code, "ONL-")
	}

	assert.True(t, store.seats[seatIDs[0]].IsBooked)
	assert.True(t, store.seats[seatIDs[1]].IsBooked)
	assert.False(t, store.seats[seatIDs[2]].IsBooked)
}

func TestCreateBooking_StoresPassengerAndPayment(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	flight, seatIDs := addFlight(store, departure, 2)

	svc := newBookingService(store)

	resp, err := svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
		Channel:  "ONLINE",
		FlightID: flight.ID.String(),
		SeatIDs:  []string{seatIDs[0].String(), seatIDs[1].String()},
		Passengers: []PassengerRecord{
			{Name: "Asha Mehta", Document: "P1234567"},
			{Name: "Ravi Mehta"},
		},
		PaymentMethod: "CASH",
	})
	require.NoError(t, err)
	require.Len(t, resp.Tickets, 2)
	assert.Equal(t, "CASH", resp.PaymentMethod)

	// Passengers pair with seat_ids by index, and both land on the
	// stored rows.
	assert.Equal(t, "Asha Mehta", resp.Tickets[0].PassengerName)
	assert.Equal(t, "Ravi Mehta", resp.Tickets[1].PassengerName)

	byName := make(map[string]*Ticket)
	for _, ticket := range store.tickets {
		byName[ticket.PassengerName] = ticket
		assert.Equal(t, PaymentCash, ticket.PaymentMethod)
	}
	require.Contains(t, byName, "Asha Mehta")
	require.Contains(t, byName, "Ravi Mehta")
	assert.Equal(t, seatIDs[0], byName["Asha Mehta"].SeatID)
	assert.Equal(t, "P1234567", byName["Asha Mehta"].PassengerDocument)
	assert.Equal(t, seatIDs[1], byName["Ravi Mehta"].SeatID)
}

func TestCreateBooking_PassengerSeatCountMismatch(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	flight, seatIDs := addFlight(store, departure, 2)

	svc := newBookingService(store)

	_, err := svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
		Channel:       "ONLINE",
		FlightID:      flight.ID.String(),
		SeatIDs:       []string{seatIDs[0].String(), seatIDs[1].String()},
		Passengers:    passengerList(1),
		PaymentMethod: "CARD",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, 0, store.ticketCount())
}

func TestCreateBooking_InvalidPaymentMethod(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	flight, seatIDs := addFlight(store, departure, 1)

	svc := newBookingService(store)

	_, err := svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
		Channel:       "ONLINE",
		FlightID:      flight.ID.String(),
		SeatIDs:       []string{seatIDs[0].String()},
		Passengers:    passengerList(1),
		PaymentMethod: "BARTER",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateBooking_DoubleBookingLeavesNoPartialEffects(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	flight, seatIDs := addFlight(store, departure, 2)

	svc := newBookingService(store)

	_, err := svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
		Channel:       "ONLINE",
		FlightID:      flight.ID.String(),
		SeatIDs:       []string{seatIDs[0].String()},
		Passengers:    passengerList(1),
		PaymentMethod: "CARD",
	})
	require.NoError(t, err)

	// Second user asks for the taken seat plus a free one; neither may be
	// granted.
	_, err = svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
		Channel:       "ONLINE",
		FlightID:      flight.ID.String(),
		SeatIDs:       []string{seatIDs[0].String(), seatIDs[1].String()},
		Passengers:    passengerList(2),
		PaymentMethod: "CARD",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsSeatUnavailable(err))

	var unavailable *apperrors.SeatUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, []string{"1A"}, unavailable.SeatNumbers)

	assert.False(t, store.seats[seatIDs[1]].IsBooked)
	assert.Equal(t, 1, store.ticketCount())
}

func TestCreateBooking_SeatHeldByOtherUser(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	flight, seatIDs := addFlight(store, departure, 1)

	holder := uuid.New()
	until := time.Now().Add(5 * time.Minute)
	store.seats[seatIDs[0]].HoldUntil = &until
	store.seats[seatIDs[0]].HeldByUserID = &holder

	svc := newBookingService(store)

	// A stranger cannot book through an active hold.
	_, err := svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
		Channel:       "ONLINE",
		FlightID:      flight.ID.String(),
		SeatIDs:       []string{seatIDs[0].String()},
		Passengers:    passengerList(1),
		PaymentMethod: "CARD",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsSeatUnavailable(err))

	// The holder books straight through their own hold.
	resp, err := svc.CreateBooking(context.Background(), holder, false, CreateBookingRequest{
		Channel:       "ONLINE",
		FlightID:      flight.ID.String(),
		SeatIDs:       []string{seatIDs[0].String()},
		Passengers:    passengerList(1),
		PaymentMethod: "CARD",
	})
	require.NoError(t, err)
	require.Len(t, resp.Tickets, 1)
	assert.True(t, store.seats[seatIDs[0]].IsBooked)
	assert.Nil(t, store.seats[seatIDs[0]].HeldByUserID)
}

func TestCreateBooking_RoundTripAtomicity(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	outbound, outSeats := addFlight(store, departure, 1)
	ret, retSeats := addFlight(store, departure.Add(72*time.Hour), 1)

	store.failCommit = true
	svc := newBookingService(store)

	_, err := svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
		Channel:        "ONLINE",
		FlightID:       outbound.ID.String(),
		SeatIDs:        []string{outSeats[0].String()},
		Passengers:     passengerList(1),
		PaymentMethod:  "CARD",
		ReturnFlightID: ret.ID.String(),
		ReturnSeatIDs:  []string{retSeats[0].String()},
	})
	require.Error(t, err)

	assert.False(t, store.seats[outSeats[0]].IsBooked)
	assert.False(t, store.seats[retSeats[0]].IsBooked)
	assert.Equal(t, 0, store.ticketCount())
}

func TestCreateBooking_RoundTripDiscount(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	outbound, outSeats := addFlight(store, departure, 1)
	ret, retSeats := addFlight(store, departure.Add(72*time.Hour), 1)

	svc := newBookingService(store)

	resp, err := svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
		Channel:        "ONLINE",
		FlightID:       outbound.ID.String(),
		SeatIDs:        []string{outSeats[0].String()},
		Passengers:     passengerList(1),
		PaymentMethod:  "CARD",
		ReturnFlightID: ret.ID.String(),
		ReturnSeatIDs:  []string{retSeats[0].String()},
	})
	require.NoError(t, err)
	require.Len(t, resp.Tickets, 2)
	assert.True(t, resp.RoundTrip)
	// Each 100000 leg discounted 10 percent.
	assert.Equal(t, int64(180000), resp.TotalAmount)

	// One passenger, one ticket per leg.
	assert.Equal(t, resp.Tickets[0].PassengerName, resp.Tickets[1].PassengerName)
}

func TestCreateBooking_RoundTripSeatCountMismatch(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	outbound, outSeats := addFlight(store, departure, 2)
	ret, retSeats := addFlight(store, departure.Add(72*time.Hour), 1)

	svc := newBookingService(store)

	_, err := svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
		Channel:        "ONLINE",
		FlightID:       outbound.ID.String(),
		SeatIDs:        []string{outSeats[0].String(), outSeats[1].String()},
		Passengers:     passengerList(2),
		PaymentMethod:  "CARD",
		ReturnFlightID: ret.ID.String(),
		ReturnSeatIDs:  []string{retSeats[0].String()},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCreateBooking_FlashSaleQuotaRace(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	flight, seatIDs := addFlight(store, departure, 2)

	sale := &flashsales.FlashSale{
		ID:              uuid.New(),
		FlightID:        flight.ID,
		DiscountPercent: 25,
		StartsAt:        time.Now().Add(-time.Hour),
		EndsAt:          time.Now().Add(time.Hour),
		MaxQuota:        1,
	}
	store.sales[sale.ID] = sale

	svc := newBookingService(store)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
				Channel:       "FLASH_SALE",
				FlightID:      flight.ID.String(),
				SeatIDs:       []string{seatIDs[i].String()},
				Passengers:    passengerList(1),
				PaymentMethod: "CARD",
				FlashSaleID:   sale.ID.String(),
			})
		}(i)
	}
	wg.Wait()

	var successes, quotaFailures int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, apperrors.ErrQuotaExceeded):
			quotaFailures++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, quotaFailures)
	assert.Equal(t, 1, store.sales[sale.ID].SoldCount)
}

func TestCreateBooking_FlashSalePriceAndWindow(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	flight, seatIDs := addFlight(store, departure, 2)

	sale := &flashsales.FlashSale{
		ID:              uuid.New(),
		FlightID:        flight.ID,
		DiscountPercent: 25,
		StartsAt:        time.Now().Add(-time.Hour),
		EndsAt:          time.Now().Add(time.Hour),
		MaxQuota:        10,
	}
	store.sales[sale.ID] = sale

	svc := newBookingService(store)

	resp, err := svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
		Channel:       "FLASH_SALE",
		FlightID:      flight.ID.String(),
		SeatIDs:       []string{seatIDs[0].String()},
		Passengers:    passengerList(1),
		PaymentMethod: "CARD",
		FlashSaleID:   sale.ID.String(),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(75000), resp.TotalAmount)
	assert.Contains(t, resp.Tickets[0].Code, "FSL-")

	// Closed window reads as quota exhaustion.
	sale.EndsAt = time.Now().Add(-time.Minute)
	_, err = svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
		Channel:       "FLASH_SALE",
		FlightID:      flight.ID.String(),
		SeatIDs:       []string{seatIDs[1].String()},
		Passengers:    passengerList(1),
		PaymentMethod: "CARD",
		FlashSaleID:   sale.ID.String(),
	})
	assert.ErrorIs(t, err, apperrors.ErrQuotaExceeded)
}

func TestCreateBooking_CounterChannelRequiresAdmin(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	flight, seatIDs := addFlight(store, departure, 1)

	customer := &users.User{ID: uuid.New(), Role: users.RoleCustomer}
	directory := &fakeUserDirectory{users: map[uuid.UUID]*users.User{customer.ID: customer}}

	svc := NewService(
		store,
		&fakeSeatRepo{store: store},
		&fakeFlightService{store: store},
		&fakeFlashSaleRepo{store: store},
		directory,
		testConfig(),
	)

	req := CreateBookingRequest{
		Channel:       "COUNTER",
		FlightID:      flight.ID.String(),
		SeatIDs:       []string{seatIDs[0].String()},
		Passengers:    passengerList(1),
		PaymentMethod: "CASH",
		CustomerID:    customer.ID.String(),
	}

	_, err := svc.CreateBooking(context.Background(), uuid.New(), false, req)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	resp, err := svc.CreateBooking(context.Background(), uuid.New(), true, req)
	require.NoError(t, err)
	require.Len(t, resp.Tickets, 1)
	assert.Contains(t, resp.Tickets[0].Code, "CNT-")

	// Tickets belong to the customer, not the booking agent.
	tickets, err := svc.GetUserTickets(context.Background(), customer.ID)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}

func TestCreateBooking_RetriesOnCodeCollision(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	flight, seatIDs := addFlight(store, departure, 1)
	store.collideAttempts = 2

	svc := newBookingService(store)

	resp, err := svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
		Channel:       "ONLINE",
		FlightID:      flight.ID.String(),
		SeatIDs:       []string{seatIDs[0].String()},
		Passengers:    passengerList(1),
		PaymentMethod: "CARD",
	})
	require.NoError(t, err)
	assert.Len(t, resp.Tickets, 1)
	assert.Equal(t, 3, store.createCalls)
}

func TestCreateBooking_CodeCollisionBudgetExhausted(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	flight, seatIDs := addFlight(store, departure, 1)
	store.collideAttempts = 5

	svc := newBookingService(store)

	_, err := svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
		Channel:       "ONLINE",
		FlightID:      flight.ID.String(),
		SeatIDs:       []string{seatIDs[0].String()},
		Passengers:    passengerList(1),
		PaymentMethod: "CARD",
	})
	assert.ErrorIs(t, err, apperrors.ErrTransient)
	assert.Equal(t, 0, store.ticketCount())
}

func TestCreateBooking_CancelledFlight(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	flight, seatIDs := addFlight(store, departure, 1)
	store.flights[flight.ID].Status = flights.StatusCancelled

	svc := newBookingService(store)

	_, err := svc.CreateBooking(context.Background(), uuid.New(), false, CreateBookingRequest{
		Channel:       "ONLINE",
		FlightID:      flight.ID.String(),
		SeatIDs:       []string{seatIDs[0].String()},
		Passengers:    passengerList(1),
		PaymentMethod: "CARD",
	})
	assert.ErrorIs(t, err, apperrors.ErrStateConflict)
}

func TestGetTicketByCode_Ownership(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	flight, seatIDs := addFlight(store, departure, 1)

	svc := newBookingService(store)
	owner := uuid.New()

	resp, err := svc.CreateBooking(context.Background(), owner, false, CreateBookingRequest{
		Channel:       "ONLINE",
		FlightID:      flight.ID.String(),
		SeatIDs:       []string{seatIDs[0].String()},
		Passengers:    passengerList(1),
		PaymentMethod: "CARD",
	})
	require.NoError(t, err)
	code := resp.Tickets[0].Code

	ticket, err := svc.GetTicketByCode(context.Background(), code, owner, false)
	require.NoError(t, err)
	assert.Equal(t, code, ticket.Code)

	_, err = svc.GetTicketByCode(context.Background(), code, uuid.New(), false)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.GetTicketByCode(context.Background(), code, uuid.New(), true)
	assert.NoError(t, err)

	_, err = svc.GetTicketByCode(context.Background(), "ONL-MISSING1", owner, false)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetBookingGroup_Ownership(t *testing.T) {
	store := newFakeStore()
	departure := time.Now().Add(48 * time.Hour)
	outbound, outSeats := addFlight(store, departure, 1)
	ret, retSeats := addFlight(store, departure.Add(72*time.Hour), 1)

	svc := newBookingService(store)
	owner := uuid.New()

	resp, err := svc.CreateBooking(context.Background(), owner, false, CreateBookingRequest{
		Channel:        "ONLINE",
		FlightID:       outbound.ID.String(),
		SeatIDs:        []string{outSeats[0].String()},
		Passengers:     passengerList(1),
		PaymentMethod:  "CARD",
		ReturnFlightID: ret.ID.String(),
		ReturnSeatIDs:  []string{retSeats[0].String()},
	})
	require.NoError(t, err)

	tickets, err := svc.GetBookingGroup(context.Background(), resp.GroupID, owner, false)
	require.NoError(t, err)
	assert.Len(t, tickets, 2)

	_, err = svc.GetBookingGroup(context.Background(), resp.GroupID, uuid.New(), false)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	tickets, err = svc.GetBookingGroup(context.Background(), resp.GroupID, uuid.New(), true)
	require.NoError(t, err)
	assert.Len(t, tickets, 2)

	_, err = svc.GetBookingGroup(context.Background(), uuid.NewString(), owner, false)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.GetBookingGroup(context.Background(), "not-a-uuid", owner, false)
	assert.True(t, apperrors.IsValidation(err))
}
