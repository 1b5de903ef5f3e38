package refunds

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateRefund_Tiers(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	const original = int64(1000000)

	tests := []struct {
		name        string
		departure   time.Time
		wantPercent int
		wantAmount  int64
	}{
		{"30h out is fully refundable", now.Add(30 * time.Hour), 100, 1000000},
		{"exactly 24h out is fully refundable", now.Add(24 * time.Hour), 100, 1000000},
		{"18h out refunds three quarters", now.Add(18 * time.Hour), 75, 750000},
		{"10h out refunds half", now.Add(10 * time.Hour), 50, 500000},
		{"2h out refunds a quarter", now.Add(2 * time.Hour), 25, 250000},
		{"at departure still refunds a quarter", now, 25, 250000},
		{"departed flight refunds nothing", now.Add(-1 * time.Hour), 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			percent, amount := CalculateRefund(original, tt.departure, now)
			assert.Equal(t, tt.wantPercent, percent)
			assert.Equal(t, tt.wantAmount, amount)
		})
	}
}

func TestCalculateRefund_FloorsToWholeUnits(t *testing.T) {
	now := time.Now()

	// 999 * 75 / 100 = 749.25 floors to 749
	_, amount := CalculateRefund(999, now.Add(18*time.Hour), now)
	assert.Equal(t, int64(749), amount)

	// 333 * 25 / 100 = 83.25 floors to 83
	_, amount = CalculateRefund(333, now.Add(2*time.Hour), now)
	assert.Equal(t, int64(83), amount)
}

func TestCalculateRefund_MonotoneNonIncreasing(t *testing.T) {
	now := time.Now()
	departure := now.Add(48 * time.Hour)

	prevPercent := 101
	// Walk the clock toward departure and past it; the percentage must
	// never go back up.
	for offset := time.Duration(0); offset <= 50*time.Hour; offset += 30 * time.Minute {
		percent, _ := CalculateRefund(1000000, departure, now.Add(offset))
		assert.LessOrEqual(t, percent, prevPercent,
			"refund percent increased at offset %v", offset)
		prevPercent = percent
	}
	assert.Equal(t, 0, prevPercent)
}
