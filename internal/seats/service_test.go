package seats

import (
	"context"
	"sync"
	"testing"
	"time"

	"aviato/internal/shared/config"
	"aviato/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeRepo keeps seats in memory and applies the same conditional
// semantics as the SQL guards.
type fakeRepo struct {
	mu    sync.Mutex
	seats map[uuid.UUID]*Seat
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{seats: make(map[uuid.UUID]*Seat)}
}

func (f *fakeRepo) addSeat(flightID uuid.UUID, number string) *Seat {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat := &Seat{
		ID:         uuid.New(),
		FlightID:   flightID,
		SeatNumber: number,
		Class:      ClassEconomy,
	}
	f.seats[seat.ID] = seat
	return seat
}

func (f *fakeRepo) CreateSeats(ctx context.Context, rows []Seat) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range rows {
		seat := rows[i]
		if seat.ID == uuid.Nil {
			seat.ID = uuid.New()
		}
		f.seats[seat.ID] = &seat
	}
	return nil
}

func (f *fakeRepo) GetSeatByID(ctx context.Context, id uuid.UUID) (*Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if seat, ok := f.seats[id]; ok {
		copied := *seat
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetSeatsByFlightID(ctx context.Context, flightID uuid.UUID) ([]Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Seat
	for _, seat := range f.seats {
		if seat.FlightID == flightID {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetSeatsByIDs(ctx context.Context, ids []uuid.UUID) ([]Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Seat
	for _, id := range ids {
		if seat, ok := f.seats[id]; ok {
			out = append(out, *seat)
		}
	}
	return out, nil
}

func (f *fakeRepo) AcquireHold(ctx context.Context, seatID, userID uuid.UUID, until, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[seatID]
	if !ok || seat.IsBooked {
		return false, nil
	}
	if seat.HeldByUserID != nil && *seat.HeldByUserID != userID && seat.HoldUntil != nil && seat.HoldUntil.After(now) {
		return false, nil
	}
	seat.HoldUntil = &until
	seat.HeldByUserID = &userID
	return true, nil
}

func (f *fakeRepo) ReleaseHold(ctx context.Context, seatID, userID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seat, ok := f.seats[seatID]
	if !ok || seat.IsBooked || seat.HeldByUserID == nil || *seat.HeldByUserID != userID {
		return false, nil
	}
	seat.HoldUntil = nil
	seat.HeldByUserID = nil
	return true, nil
}

func (f *fakeRepo) ExpiredHoldCount(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, seat := range f.seats {
		if !seat.IsBooked && seat.HoldUntil != nil && !seat.HoldUntil.After(now) {
			count++
		}
	}
	return count, nil
}

func newHoldService(repo Repository, clock func() time.Time) *service {
	cfg := &config.Config{
		Booking: config.BookingConfig{SeatHoldTTL: 10 * time.Minute},
	}
	svc := NewService(repo, cfg)
	if clock != nil {
		svc.now = clock
	}
	return svc
}

func TestAcquireHold_Exclusivity(t *testing.T) {
	repo := newFakeRepo()
	seat := repo.addSeat(uuid.New(), "12C")
	svc := newHoldService(repo, nil)

	first := uuid.New()
	hold, err := svc.AcquireHold(context.Background(), seat.ID.String(), first)
	require.NoError(t, err)
	assert.Equal(t, "12C", hold.SeatNumber)
	assert.Equal(t, 600, hold.TTL)

	// A second user is rejected while the hold is live.
	_, err = svc.AcquireHold(context.Background(), seat.ID.String(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsSeatUnavailable(err))
}

func TestAcquireHold_IdempotentForOwner(t *testing.T) {
	repo := newFakeRepo()
	seat := repo.addSeat(uuid.New(), "12C")

	base := time.Now()
	current := base
	svc := newHoldService(repo, func() time.Time { return current })

	owner := uuid.New()
	first, err := svc.AcquireHold(context.Background(), seat.ID.String(), owner)
	require.NoError(t, err)

	// Re-acquiring five minutes later extends the deadline.
	current = base.Add(5 * time.Minute)
	second, err := svc.AcquireHold(context.Background(), seat.ID.String(), owner)
	require.NoError(t, err)
	assert.True(t, second.ExpiresAt.After(first.ExpiresAt))
}

func TestAcquireHold_ExpiredHoldIsClaimable(t *testing.T) {
	repo := newFakeRepo()
	seat := repo.addSeat(uuid.New(), "12C")

	base := time.Now()
	current := base
	svc := newHoldService(repo, func() time.Time { return current })

	_, err := svc.AcquireHold(context.Background(), seat.ID.String(), uuid.New())
	require.NoError(t, err)

	// Before expiry the seat is contested, after expiry it is free game.
	newcomer := uuid.New()
	current = base.Add(9 * time.Minute)
	_, err = svc.AcquireHold(context.Background(), seat.ID.String(), newcomer)
	require.Error(t, err)

	current = base.Add(11 * time.Minute)
	hold, err := svc.AcquireHold(context.Background(), seat.ID.String(), newcomer)
	require.NoError(t, err)
	assert.Equal(t, seat.ID.String(), hold.SeatID)
}

func TestAcquireHold_BookedSeat(t *testing.T) {
	repo := newFakeRepo()
	seat := repo.addSeat(uuid.New(), "12C")
	repo.seats[seat.ID].IsBooked = true

	svc := newHoldService(repo, nil)

	_, err := svc.AcquireHold(context.Background(), seat.ID.String(), uuid.New())
	require.Error(t, err)
	assert.True(t, apperrors.IsSeatUnavailable(err))
}

func TestAcquireHold_UnknownSeat(t *testing.T) {
	svc := newHoldService(newFakeRepo(), nil)

	_, err := svc.AcquireHold(context.Background(), uuid.NewString(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.AcquireHold(context.Background(), "not-a-uuid", uuid.New())
	assert.True(t, apperrors.IsValidation(err))
}

func TestReleaseHold(t *testing.T) {
	repo := newFakeRepo()
	seat := repo.addSeat(uuid.New(), "12C")
	svc := newHoldService(repo, nil)

	owner := uuid.New()
	_, err := svc.AcquireHold(context.Background(), seat.ID.String(), owner)
	require.NoError(t, err)

	// A stranger's release is a silent no-op; the hold survives.
	require.NoError(t, svc.ReleaseHold(context.Background(), seat.ID.String(), uuid.New()))
	assert.NotNil(t, repo.seats[seat.ID].HeldByUserID)

	require.NoError(t, svc.ReleaseHold(context.Background(), seat.ID.String(), owner))
	assert.Nil(t, repo.seats[seat.ID].HeldByUserID)
	assert.Nil(t, repo.seats[seat.ID].HoldUntil)
}

func TestGetSeatMap_Statuses(t *testing.T) {
	repo := newFakeRepo()
	flightID := uuid.New()
	free := repo.addSeat(flightID, "1A")
	held := repo.addSeat(flightID, "1B")
	booked := repo.addSeat(flightID, "1C")

	viewer := uuid.New()
	until := time.Now().Add(5 * time.Minute)
	repo.seats[held.ID].HoldUntil = &until
	repo.seats[held.ID].HeldByUserID = &viewer
	repo.seats[booked.ID].IsBooked = true

	svc := newHoldService(repo, nil)

	entries, err := svc.GetSeatMap(context.Background(), flightID.String(), viewer)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byNumber := make(map[string]SeatMapEntry)
	for _, e := range entries {
		byNumber[e.SeatNumber] = e
	}
	assert.Equal(t, "AVAILABLE", byNumber["1A"].Status)
	assert.Equal(t, "HELD", byNumber["1B"].Status)
	assert.True(t, byNumber["1B"].HeldByMe)
	assert.Equal(t, "BOOKED", byNumber["1C"].Status)
	assert.False(t, byNumber["1C"].HeldByMe)
	_ = free
}

func TestHoldMetrics_CountsExpiredHolds(t *testing.T) {
	repo := newFakeRepo()
	flightID := uuid.New()
	stale := repo.addSeat(flightID, "2A")
	live := repo.addSeat(flightID, "2B")
	repo.addSeat(flightID, "2C")

	base := time.Now()
	holder := uuid.New()
	expired := base.Add(-time.Minute)
	active := base.Add(5 * time.Minute)
	repo.seats[stale.ID].HoldUntil = &expired
	repo.seats[stale.ID].HeldByUserID = &holder
	repo.seats[live.ID].HoldUntil = &active
	repo.seats[live.ID].HeldByUserID = &holder

	svc := newHoldService(repo, func() time.Time { return base })

	metrics, err := svc.HoldMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), metrics.ExpiredHolds)
	assert.Equal(t, base, metrics.EvaluatedAt)
}
