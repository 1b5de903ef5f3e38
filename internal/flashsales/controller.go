package flashsales

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

// GetActiveSales handles GET /api/v1/flights/:id/flash-sales
func (c *Controller) GetActiveSales(ctx *gin.Context) {
	sales, err := c.service.GetActiveSales(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Active flash sales retrieved", gin.H{
		"flash_sales": sales,
		"count":       len(sales),
	}, nil)
}
