package database

import (
	"aviato/internal/bookings"
	"aviato/internal/flashsales"
	"aviato/internal/flights"
	"aviato/internal/refunds"
	"aviato/internal/seats"
	"aviato/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	// Models use uuid_generate_v4() for primary keys
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return err
	}

	return db.AutoMigrate(
		&users.User{},
		&flights.Flight{},
		&seats.Seat{},
		&flashsales.FlashSale{},
		&bookings.Ticket{},
		&refunds.RefundRequest{},
	)
}
