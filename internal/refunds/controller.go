package refunds

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
	return userID, role == "ADMIN", true
}

// PreviewRefund handles GET /api/v1/refunds/preview/:code
func (c *Controller) PreviewRefund(ctx *gin.Context) {
	callerID, isAdmin, ok := callerFromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	preview, err := c.service.PreviewRefund(ctx.Request.Context(), ctx.Param("code"), callerID, isAdmin)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Refund preview calculated", preview, nil)
}

// CreateRequest handles POST /api/v1/refunds
func (c *Controller) CreateRequest(ctx *gin.Context) {
	callerID, _, ok := callerFromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	var req CreateRefundRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	request, err := c.service.CreateRequest(ctx.Request.Context(), callerID, req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Refund request created", request, nil)
}

// ListMyRequests handles GET /api/v1/refunds
func (c *Controller) ListMyRequests(ctx *gin.Context) {
	callerID, _, ok := callerFromContext(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	requests, err := c.service.ListMyRequests(ctx.Request.Context(), callerID)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Refund requests retrieved", gin.H{
		"requests": requests,
		"count":    len(requests),
	}, nil)
}

// ListPending handles GET /api/v1/admin/refunds/pending
func (c *Controller) ListPending(ctx *gin.Context) {
	requests, err := c.service.ListPending(ctx.Request.Context())
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Pending refund requests retrieved", gin.H{
		"requests": requests,
		"count":    len(requests),
	}, nil)
}

// ApproveRefund handles POST /api/v1/admin/refunds/:id/approve
func (c *Controller) ApproveRefund(ctx *gin.Context) {
	var req ApproveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	request, err := c.service.ApproveRefund(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Refund approved", request, nil)
}

// ApproveReschedule handles POST /api/v1/admin/refunds/:id/reschedule
func (c *Controller) ApproveReschedule(ctx *gin.Context) {
	var req RescheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	request, err := c.service.ApproveReschedule(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Reschedule approved", request, nil)
}

// Reject handles POST /api/v1/admin/refunds/:id/reject
func (c *Controller) Reject(ctx *gin.Context) {
	var req RejectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	request, err := c.service.Reject(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		response.RespondError(ctx, err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Refund request rejected", request, nil)
}
