package refunds

import (
	"aviato/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRefundRoutes configures customer refund routes and the admin
// resolution routes.
func SetupRefundRoutes(rg *gin.RouterGroup, controller *Controller) {
	refundsGroup := rg.Group("/refunds")
	refundsGroup.Use(middleware.JWTAuth(), middleware.RequireRoles("CUSTOMER", "ADMIN"))
	{
		refundsGroup.GET("/preview/:code", controller.PreviewRefund) // GET /api/v1/refunds/preview/:code
		refundsGroup.POST("", controller.CreateRequest)              // POST /api/v1/refunds
		refundsGroup.GET("", controller.ListMyRequests)              // GET /api/v1/refunds
	}

	admin := rg.Group("/admin/refunds")
	admin.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		admin.GET("/pending", controller.ListPending)               // GET /api/v1/admin/refunds/pending
		admin.POST("/:id/approve", controller.ApproveRefund)        // POST /api/v1/admin/refunds/:id/approve
		admin.POST("/:id/reschedule", controller.ApproveReschedule) // POST /api/v1/admin/refunds/:id/reschedule
		admin.POST("/:id/reject", controller.Reject)                // POST /api/v1/admin/refunds/:id/reject
	}
}
