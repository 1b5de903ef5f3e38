package bookings

import (
	"net/http"

	"aviato/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

func callerFromContext(ctx *gin.Context) (uuid.UUID, bool, bool) {
	userIDInterface, exists := ctx.Get("user_id")
	if !exists {
		return uuid.Nil, false, false
	}
	userIDStr, ok := userIDInterface.(string)
	if !ok {
		return uuid.Nil, false, false
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, false, false
	}

	role, _ := ctx.Get("user_role")
	isAdmin := role == "ADMIN"
	return userID, isAdmin, true
}

// CreateBooking handles POST /api/v1/bookings
func (c *Controller) CreateBooking(ctx *gin.Context) {
	callerID, isAdmin, ok := callerFromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	booking, err := c.service.CreateBooking(ctx.Request.Context(), callerID, isAdmin, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking confirmed", booking, nil)
}

// GetBookingGroup handles GET /api/v1/bookings/:group_id
func (c *Controller) GetBookingGroup(ctx *gin.Context) {
	callerID, isAdmin, ok := callerFromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	tickets, err := c.service.GetBookingGroup(ctx.Request.Context(), ctx.Param("group_id"), callerID, isAdmin)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved", gin.H{
		"tickets": tickets,
		"count":   len(tickets),
	}, nil)
}

// GetTicketByCode handles GET /api/v1/tickets/:code
func (c *Controller) GetTicketByCode(ctx *gin.Context) {
	callerID, isAdmin, ok := callerFromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	ticket, err := c.service.GetTicketByCode(ctx.Request.Context(), ctx.Param("code"), callerID, isAdmin)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket retrieved", ticket, nil)
}

// GetMyTickets handles GET /api/v1/tickets
func (c *Controller) GetMyTickets(ctx *gin.Context) {
	callerID, _, ok := callerFromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	tickets, err := c.service.GetUserTickets(ctx.Request.Context(), callerID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Tickets retrieved", gin.H{
		"tickets": tickets,
		"count":   len(tickets),
	}, nil)
}
