package flashsales

import "github.com/gin-gonic/gin"

// SetupFlashSaleRoutes configures the public flash sale read routes
func SetupFlashSaleRoutes(rg *gin.RouterGroup, controller *Controller) {
	flights := rg.Group("/flights")
	{
		flights.GET("/:id/flash-sales", controller.GetActiveSales) // GET /api/v1/flights/:id/flash-sales
	}
}
