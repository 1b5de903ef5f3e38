package flashsales

import (
	"context"
	"fmt"
	"time"

	"aviato/internal/shared/constants"
	"aviato/pkg/apperrors"
	"aviato/pkg/cache"

	"github.com/google/uuid"
)

// Service is the read-only surface over flash sales. Quota mutation never
// happens here; it lives in the booking transaction.
type Service interface {
	GetActiveSales(ctx context.Context, flightID string) ([]ActiveSaleResponse, error)
}

type ActiveSaleResponse struct {
	ID              string    `json:"id"`
	FlightID        string    `json:"flight_id"`
	DiscountPercent int       `json:"discount_percent"`
	EndsAt          time.Time `json:"ends_at"`
	Remaining       int       `json:"remaining"`
}

type service struct {
	repo         Repository
	cacheService cache.Service

	now func() time.Time
}

func NewService(repo Repository) *service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) SetCacheService(cacheService cache.Service) {
	s.cacheService = cacheService
}

// GetActiveSales lists sales whose window covers now. Cached briefly; the
// remaining counts are advisory and may lag the booking transaction.
func (s *service) GetActiveSales(ctx context.Context, flightID string) ([]ActiveSaleResponse, error) {
	flightUUID, err := uuid.Parse(flightID)
	if err != nil {
		return nil, apperrors.NewValidation("flight_id", "invalid flight ID")
	}

	fetch := func() (interface{}, error) {
		sales, err := s.repo.GetActiveSalesByFlightID(ctx, flightUUID, s.now())
		if err != nil {
			return nil, err
		}
		out := make([]ActiveSaleResponse, 0, len(sales))
		for i := range sales {
			sale := &sales[i]
			out = append(out, ActiveSaleResponse{
				ID:              sale.ID.String(),
				FlightID:        sale.FlightID.String(),
				DiscountPercent: sale.DiscountPercent,
				EndsAt:          sale.EndsAt,
				Remaining:       sale.Remaining(),
			})
		}
		return out, nil
	}

	var result []ActiveSaleResponse
	if s.cacheService != nil {
		cacheKey := constants.BuildFlashSalesActiveKey(flightID)
		err = s.cacheService.GetOrSet(ctx, cacheKey, constants.TTL_FLASH_SALE_ACTIVE, fetch, &result)
	} else {
		var data interface{}
		data, err = fetch()
		if err == nil {
			result = data.([]ActiveSaleResponse)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active flash sales: %w", err)
	}

	return result, nil
}
