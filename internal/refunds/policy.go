package refunds

import "time"

// Refund tiers by hours remaining until departure. The percentage never
// increases as departure approaches.
const (
	tierFullHours     = 24 * time.Hour
	tierHighHours     = 12 * time.Hour
	tierMidHours      = 6 * time.Hour
	percentFull       = 100
	percentHigh       = 75
	percentMid        = 50
	percentLow        = 25
	percentAfterwards = 0
)

// CalculateRefund resolves the refund percentage and amount for a ticket,
// given its departure time and the evaluation instant. Pure: callers use it
// both for side-effect-free previews and for the figures written at
// approval time. The amount floors to whole currency units.
func CalculateRefund(originalAmount int64, departure, now time.Time) (percent int, amount int64) {
	remaining := departure.Sub(now)

	switch {
	case remaining < 0:
		percent = percentAfterwards
	case remaining < tierMidHours:
		percent = percentLow
	case remaining < tierHighHours:
		percent = percentMid
	case remaining < tierFullHours:
		percent = percentHigh
	default:
		percent = percentFull
	}

	amount = originalAmount * int64(percent) / 100
	return percent, amount
}
