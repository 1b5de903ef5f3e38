package flights

import (
	"context"
	"testing"
	"time"

	"aviato/internal/seats"
	"aviato/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSeatsLayout(t *testing.T) {
	flightID := uuid.New()
	rows := generateSeats(flightID, 4, 8, 12)

	require.Len(t, rows, 24)
	for _, seat := range rows {
		assert.Equal(t, flightID, seat.FlightID)
	}

	// First class fills row 1 and stops mid-row; business starts on a
	// fresh row.
	assert.Equal(t, "1A", rows[0].SeatNumber)
	assert.Equal(t, "1D", rows[3].SeatNumber)
	assert.Equal(t, seats.ClassFirst, rows[3].Class)
	assert.Equal(t, "2A", rows[4].SeatNumber)
	assert.Equal(t, seats.ClassBusiness, rows[4].Class)

	// Business fills row 2 and spills into 3A-3B; economy starts on a
	// fresh row 4.
	assert.Equal(t, "3B", rows[11].SeatNumber)
	assert.Equal(t, "4A", rows[12].SeatNumber)
	assert.Equal(t, seats.ClassEconomy, rows[12].Class)
	assert.Equal(t, "5F", rows[23].SeatNumber)
}

func TestGenerateSeatsNumbersAreUnique(t *testing.T) {
	rows := generateSeats(uuid.New(), 2, 5, 17)

	seen := make(map[string]bool, len(rows))
	for _, seat := range rows {
		assert.False(t, seen[seat.SeatNumber], "duplicate seat number %s", seat.SeatNumber)
		seen[seat.SeatNumber] = true
	}
}

func TestGenerateSeatsSkipsEmptyClasses(t *testing.T) {
	rows := generateSeats(uuid.New(), 0, 0, 6)

	require.Len(t, rows, 6)
	assert.Equal(t, "1A", rows[0].SeatNumber)
	assert.Equal(t, "1F", rows[5].SeatNumber)
	for _, seat := range rows {
		assert.Equal(t, seats.ClassEconomy, seat.Class)
	}
}

func TestCreateFlightRejectsBadSchedule(t *testing.T) {
	svc := NewService(nil, nil)
	departure := time.Now().UTC().Add(48 * time.Hour)

	cases := []struct {
		name string
		req  CreateFlightRequest
	}{
		{
			name: "malformed departure time",
			req: CreateFlightRequest{
				FlightNumber:  "AV900",
				DepartureTime: "tomorrow",
				ArrivalTime:   departure.Add(2 * time.Hour).Format(time.RFC3339),
				EconomySeats:  10,
			},
		},
		{
			name: "arrival before departure",
			req: CreateFlightRequest{
				FlightNumber:  "AV900",
				DepartureTime: departure.Format(time.RFC3339),
				ArrivalTime:   departure.Add(-time.Hour).Format(time.RFC3339),
				EconomySeats:  10,
			},
		},
		{
			name: "no seats at all",
			req: CreateFlightRequest{
				FlightNumber:  "AV900",
				DepartureTime: departure.Format(time.RFC3339),
				ArrivalTime:   departure.Add(2 * time.Hour).Format(time.RFC3339),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateFlight(context.Background(), tc.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
		})
	}
}
