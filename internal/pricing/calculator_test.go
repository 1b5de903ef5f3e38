package pricing

import (
	"testing"

	"aviato/internal/seats"

	"github.com/stretchr/testify/assert"
)

func int64Ptr(v int64) *int64 { return &v }

func TestClassPrice_Multipliers(t *testing.T) {
	base := int64(100000)

	assert.Equal(t, int64(100000), ClassPrice(base, nil, seats.ClassEconomy))
	assert.Equal(t, int64(150000), ClassPrice(base, nil, seats.ClassBusiness))
	assert.Equal(t, int64(250000), ClassPrice(base, nil, seats.ClassFirst))
}

func TestClassPrice_RoundsToNearestUnit(t *testing.T) {
	// 333 * 1.5 = 499.5 rounds up to 500
	assert.Equal(t, int64(500), ClassPrice(333, nil, seats.ClassBusiness))
	// 333 * 2.5 = 832.5 rounds up to 833
	assert.Equal(t, int64(833), ClassPrice(333, nil, seats.ClassFirst))
	// 101 * 1.5 = 151.5 rounds up, 102 * 1.5 = 153 exact
	assert.Equal(t, int64(152), ClassPrice(101, nil, seats.ClassBusiness))
	assert.Equal(t, int64(153), ClassPrice(102, nil, seats.ClassBusiness))
}

func TestClassPrice_OverrideWins(t *testing.T) {
	base := int64(100000)

	assert.Equal(t, int64(80000), ClassPrice(base, int64Ptr(80000), seats.ClassEconomy))
	assert.Equal(t, int64(999999), ClassPrice(base, int64Ptr(999999), seats.ClassFirst))
}

func TestRoundTripFare(t *testing.T) {
	tests := []struct {
		name            string
		fare            int64
		discountPercent int
		want            int64
	}{
		{"no discount", 100000, 0, 100000},
		{"ten percent", 120000, 10, 108000},
		{"floors fractional units", 99, 10, 89}, // 99 * 0.9 = 89.1
		{"full discount", 100000, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoundTripFare(tt.fare, tt.discountPercent))
		})
	}
}

func TestFlashSalePrice(t *testing.T) {
	assert.Equal(t, int64(75000), FlashSalePrice(100000, 25))
	assert.Equal(t, int64(100000), FlashSalePrice(100000, 0))
	// 333 * 0.75 = 249.75 floors to 249
	assert.Equal(t, int64(249), FlashSalePrice(333, 25))
}

func TestFlashSalePrice_NeverNegative(t *testing.T) {
	assert.Equal(t, int64(0), FlashSalePrice(100000, 100))
	assert.Equal(t, int64(0), FlashSalePrice(100000, 150))
	assert.Equal(t, int64(100000), FlashSalePrice(100000, -5))
}
