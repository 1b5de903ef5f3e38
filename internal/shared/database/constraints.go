package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the constraints the booking engine's correctness
// rests on. The application enforces these with row locks and guarded
// updates; the database enforces them again so a bug cannot corrupt
// inventory.
func MigrateConstraints(db *gorm.DB) error {
	// One live ticket per seat. FAILED tickets are history and do not
	// occupy the seat.
	err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_live_ticket_per_seat
		ON tickets (seat_id)
		WHERE status <> 'FAILED';
	`).Error
	if err != nil {
		return err
	}

	// A seat number exists once per flight
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uniq_seat_number_per_flight
		ON seats (flight_id, seat_number);
	`).Error
	if err != nil {
		return err
	}

	// A flash sale can never oversell past its quota
	err = db.Exec(`
		ALTER TABLE flash_sales
		DROP CONSTRAINT IF EXISTS chk_flash_sale_quota;
	`).Error
	if err != nil {
		return err
	}
	err = db.Exec(`
		ALTER TABLE flash_sales
		ADD CONSTRAINT chk_flash_sale_quota
		CHECK (sold_count >= 0 AND sold_count <= max_quota);
	`).Error
	if err != nil {
		return err
	}

	// Round-trip groups are fetched together
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_tickets_group_id
		ON tickets (group_id);
	`).Error
	if err != nil {
		return err
	}

	// Seat map reads filter by flight
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_seats_flight_id
		ON seats (flight_id);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
