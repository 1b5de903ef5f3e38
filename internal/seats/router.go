package seats

import (
	"aviato/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSeatRoutes configures seat hold and seat map routes
func SetupSeatRoutes(rg *gin.RouterGroup, controller *Controller) {
	seatsGroup := rg.Group("/seats")
	seatsGroup.Use(middleware.JWTAuth(), middleware.RequireRoles("CUSTOMER", "ADMIN"))
	{
		seatsGroup.POST("/hold", controller.AcquireHold)    // POST /api/v1/seats/hold
		seatsGroup.POST("/release", controller.ReleaseHold) // POST /api/v1/seats/release
	}

	flights := rg.Group("/flights")
	flights.Use(middleware.JWTAuth(), middleware.RequireRoles("CUSTOMER", "ADMIN"))
	{
		flights.GET("/:id/seats", controller.GetSeatMap) // GET /api/v1/flights/:id/seats
	}

	admin := rg.Group("/admin/seats")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("/hold-metrics", controller.GetHoldMetrics) // GET /api/v1/admin/seats/hold-metrics
	}
}
