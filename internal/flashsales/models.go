package flashsales

import (
	"time"

	"github.com/google/uuid"
)

// FlashSale is a quota-gated discount window on a flight. SoldCount only
// ever moves inside the booking transaction through ConsumeQuota, so
// sold_count <= max_quota holds under any interleaving.
type FlashSale struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FlightID        uuid.UUID `gorm:"type:uuid;not null;index" json:"flight_id"`
	DiscountPercent int       `gorm:"not null;check:discount_percent > 0 AND discount_percent <= 100" json:"discount_percent"`
	StartsAt        time.Time `gorm:"not null" json:"starts_at"`
	EndsAt          time.Time `gorm:"not null" json:"ends_at"`
	MaxQuota        int       `gorm:"not null;check:max_quota > 0" json:"max_quota"`
	SoldCount       int       `gorm:"not null;default:0" json:"sold_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName sets the table name for FlashSale
func (FlashSale) TableName() string {
	return "flash_sales"
}

// IsActive reports whether the sale window covers the given instant
func (f *FlashSale) IsActive(now time.Time) bool {
	return !now.Before(f.StartsAt) && now.Before(f.EndsAt)
}

// Remaining returns the unsold quota
func (f *FlashSale) Remaining() int {
	if r := f.MaxQuota - f.SoldCount; r > 0 {
		return r
	}
	return 0
}
