package flights

import (
	"aviato/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupFlightRoutes configures public search/detail routes and the admin
// management routes.
func SetupFlightRoutes(rg *gin.RouterGroup, controller *Controller) {
	public := rg.Group("/flights")
	{
		public.GET("", controller.SearchFlights) // GET /api/v1/flights
		public.GET("/:id", controller.GetFlight) // GET /api/v1/flights/:id
	}

	admin := rg.Group("/admin/flights")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.POST("", controller.CreateFlight)             // POST /api/v1/admin/flights
		admin.PATCH("/:id/status", controller.UpdateStatus) // PATCH /api/v1/admin/flights/:id/status
	}
}
