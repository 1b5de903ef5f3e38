package bookings

import (
	"aviato/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures booking and ticket routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookingsGroup := rg.Group("/bookings")
	bookingsGroup.Use(middleware.JWTAuth(), middleware.RequireRoles("CUSTOMER", "ADMIN"))
	{
		bookingsGroup.POST("", controller.CreateBooking)            // POST /api/v1/bookings
		bookingsGroup.GET("/:group_id", controller.GetBookingGroup) // GET /api/v1/bookings/:group_id
	}

	tickets := rg.Group("/tickets")
	tickets.Use(middleware.JWTAuth(), middleware.RequireRoles("CUSTOMER", "ADMIN"))
	{
		tickets.GET("", controller.GetMyTickets)          // GET /api/v1/tickets
		tickets.GET("/:code", controller.GetTicketByCode) // GET /api/v1/tickets/:code
	}
}
