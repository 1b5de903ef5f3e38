package flights

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateFlight(ctx context.Context, flight *Flight) error
	GetFlightByID(ctx context.Context, id uuid.UUID) (*Flight, error)
	GetFlightWithSeats(ctx context.Context, id uuid.UUID) (*Flight, error)
	SearchFlights(ctx context.Context, query SearchQuery) ([]Flight, error)
	UpdateFlightStatus(ctx context.Context, id uuid.UUID, status Status) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateFlight(ctx context.Context, flight *Flight) error {
	return r.db.WithContext(ctx).Create(flight).Error
}

func (r *repository) GetFlightByID(ctx context.Context, id uuid.UUID) (*Flight, error) {
	var flight Flight
	err := r.db.WithContext(ctx).First(&flight, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

func (r *repository) GetFlightWithSeats(ctx context.Context, id uuid.UUID) (*Flight, error) {
	var flight Flight
	err := r.db.WithContext(ctx).
		Preload("Seats").
		First(&flight, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

func (r *repository) SearchFlights(ctx context.Context, query SearchQuery) ([]Flight, error) {
	var flights []Flight

	q := r.db.WithContext(ctx).Model(&Flight{}).
		Where("status != ?", StatusCancelled)

	if query.Origin != "" {
		q = q.Where("origin = ?", query.Origin)
	}
	if query.Destination != "" {
		q = q.Where("destination = ?", query.Destination)
	}
	if query.Date != "" {
		if day, err := time.Parse("2006-01-02", query.Date); err == nil {
			q = q.Where("departure_time >= ? AND departure_time < ?", day, day.AddDate(0, 0, 1))
		}
	}

	err := q.Order("departure_time ASC").Find(&flights).Error
	return flights, err
}

func (r *repository) UpdateFlightStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Flight{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
