package flashsales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateFlashSale(ctx context.Context, sale *FlashSale) error
	GetFlashSaleByID(ctx context.Context, id uuid.UUID) (*FlashSale, error)
	GetActiveSalesByFlightID(ctx context.Context, flightID uuid.UUID, now time.Time) ([]FlashSale, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateFlashSale(ctx context.Context, sale *FlashSale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

func (r *repository) GetFlashSaleByID(ctx context.Context, id uuid.UUID) (*FlashSale, error) {
	var sale FlashSale
	err := r.db.WithContext(ctx).First(&sale, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (r *repository) GetActiveSalesByFlightID(ctx context.Context, flightID uuid.UUID, now time.Time) ([]FlashSale, error) {
	var sales []FlashSale
	err := r.db.WithContext(ctx).
		Where("flight_id = ? AND starts_at <= ? AND ends_at > ?", flightID, now, now).
		Order("ends_at ASC").
		Find(&sales).Error
	return sales, err
}

// ConsumeQuota reserves n slots on the sale with a single conditional
// UPDATE. The guard covers both the quota ceiling and the sale window, so
// the check and the increment cannot be split by a concurrent booking. It
// runs on the caller's transaction handle: quota moves only inside the
// booking transaction and rolls back with it.
func ConsumeQuota(tx *gorm.DB, saleID uuid.UUID, n int, now time.Time) (bool, error) {
	res := tx.Model(&FlashSale{}).
		Where("id = ? AND sold_count + ? <= max_quota", saleID, n).
		Where("starts_at <= ? AND ends_at > ?", now, now).
		Updates(map[string]interface{}{
			"sold_count": gorm.Expr("sold_count + ?", n),
			"updated_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
