package constants

import "time"

// Redis cache keys and TTLs for the booking platform.
// Pattern: aviato:{module}:{operation}:{identifier}

const (
	CACHE_PREFIX = "aviato"
)

// ================== FLIGHTS MODULE ==================

const (
	CACHE_KEY_FLIGHTS_SEARCH = CACHE_PREFIX + ":flights:search:"      // + origin:dest:date
	CACHE_KEY_FLIGHT_DETAIL  = CACHE_PREFIX + ":flights:detail:uuid:" // + flight-id
)

// ================== SEATS MODULE ==================

const (
	// Full seat map per flight, advisory read model only. The booking
	// transaction always goes to Postgres.
	CACHE_KEY_SEAT_MAP = CACHE_PREFIX + ":seats:map:flight:" // + flight-id
)

// ================== FLASH SALES MODULE ==================

const (
	CACHE_KEY_FLASH_SALES_ACTIVE = CACHE_PREFIX + ":flashsales:active:flight:" // + flight-id
)

// TTLs. Seat maps go stale the moment anyone books, so they are
// deliberately short-lived and invalidated on every mutation.
const (
	TTL_FLIGHT_SEARCH     = 5 * time.Minute
	TTL_FLIGHT_DETAIL     = 5 * time.Minute
	TTL_SEAT_MAP          = 30 * time.Second
	TTL_FLASH_SALE_ACTIVE = 1 * time.Minute
)

// ================== HELPER FUNCTIONS ==================

func BuildFlightSearchKey(origin, destination, date string) string {
	return CACHE_KEY_FLIGHTS_SEARCH + origin + ":" + destination + ":" + date
}

func BuildFlightDetailKey(flightID string) string {
	return CACHE_KEY_FLIGHT_DETAIL + flightID
}

func BuildSeatMapKey(flightID string) string {
	return CACHE_KEY_SEAT_MAP + flightID
}

func BuildFlashSalesActiveKey(flightID string) string {
	return CACHE_KEY_FLASH_SALES_ACTIVE + flightID
}
