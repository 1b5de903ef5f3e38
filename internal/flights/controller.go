package flights

import (
	"net/http"

	"aviato/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateFlight handles POST /api/v1/admin/flights
func (c *Controller) CreateFlight(ctx *gin.Context) {
	var req CreateFlightRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	flight, err := c.service.CreateFlight(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Flight created successfully", flight, nil)
}

// SearchFlights handles GET /api/v1/flights
func (c *Controller) SearchFlights(ctx *gin.Context) {
	var query SearchQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := c.service.SearchFlights(ctx.Request.Context(), query)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Flights retrieved", result, nil)
}

// GetFlight handles GET /api/v1/flights/:id
func (c *Controller) GetFlight(ctx *gin.Context) {
	flight, err := c.service.GetFlight(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Flight retrieved", flight, nil)
}

// UpdateStatus handles PATCH /api/v1/admin/flights/:id/status
func (c *Controller) UpdateStatus(ctx *gin.Context) {
	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	if err := c.service.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), req.Status); err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Flight status updated", nil, nil)
}
