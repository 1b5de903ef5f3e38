// Package pricing computes ticket prices. Everything here is pure: quota
// and sale-window checks belong to the booking transaction, and the
// round-trip discount percentage is a stored setting read by callers.
package pricing

import (
	"math"

	"aviato/internal/seats"
)

// Fallback multipliers applied to the flight's base price when no explicit
// per-class price is configured.
const (
	multiplierEconomy  = 1.0
	multiplierBusiness = 1.5
	multiplierFirst    = 2.5
)

// ClassPrice resolves the fare for a seat class: the explicit override when
// set, otherwise the base price scaled by the class multiplier and rounded
// to the nearest currency unit.
func ClassPrice(basePrice int64, override *int64, class seats.Class) int64 {
	if override != nil {
		return *override
	}

	var multiplier float64
	switch class {
	case seats.ClassBusiness:
		multiplier = multiplierBusiness
	case seats.ClassFirst:
		multiplier = multiplierFirst
	default:
		multiplier = multiplierEconomy
	}

	return int64(math.Round(float64(basePrice) * multiplier))
}

// RoundTripFare applies the round-trip discount to a single leg fare. Each
// ticket carries its own charged amount, so the booking total floors each
// leg independently.
func RoundTripFare(fare int64, discountPercent int) int64 {
	return applyDiscount(fare, discountPercent)
}

// FlashSalePrice applies a flash-sale discount to a single fare, flooring
// to whole currency units.
func FlashSalePrice(originalPrice int64, discountPercent int) int64 {
	return applyDiscount(originalPrice, discountPercent)
}

func applyDiscount(amount int64, discountPercent int) int64 {
	if discountPercent <= 0 {
		return amount
	}
	if discountPercent >= 100 {
		return 0
	}
	// Integer division floors; amounts are never negative here.
	return amount * int64(100-discountPercent) / 100
}
