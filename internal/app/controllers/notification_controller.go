package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/app/services"
	"github.com/casportal/casportal/internal/middleware"
)

// NotificationController handles notification operations
type NotificationController struct {
	notificationService services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{notificationService: notificationService}
}

// Send fans a notification out to a recipient set; role holders only (the
// route carries the role middleware).
func (c *NotificationController) Send(ctx *gin.Context) {
	var req dto.SendNotificationRequest
	if !bindJSON(ctx, &req) {
		return
	}

	notification, err := c.notificationService.Send(ctx.Request.Context(), middleware.CurrentProfile(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, notification)
}

// GetNotification retrieves one notification the caller may see.
func (c *NotificationController) GetNotification(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	notification, err := c.notificationService.GetNotification(ctx.Request.Context(), middleware.CurrentProfile(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, notification)
}

// QueryReceived lists the caller's received notifications.
func (c *NotificationController) QueryReceived(ctx *gin.Context) {
	req, ok := bindQueryRequest(ctx)
	if !ok {
		return
	}

	notifications, total, err := c.notificationService.QueryMine(ctx.Request.Context(), middleware.CurrentProfile(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewListResponse(notifications, total))
}

// QueryPosted lists the notifications the caller authored.
func (c *NotificationController) QueryPosted(ctx *gin.Context) {
	req, ok := bindQueryRequest(ctx)
	if !ok {
		return
	}

	notifications, total, err := c.notificationService.QueryPosted(ctx.Request.Context(), middleware.CurrentProfile(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewListResponse(notifications, total))
}

// UpdateNotification rewrites the content; author or role holder.
func (c *NotificationController) UpdateNotification(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if !bindJSON(ctx, &req) {
		return
	}

	notification, err := c.notificationService.UpdateNotification(ctx.Request.Context(), middleware.CurrentProfile(ctx), id, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, notification)
}

// DeleteNotification removes a notification; author or role holder.
func (c *NotificationController) DeleteNotification(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.notificationService.DeleteNotification(ctx.Request.Context(), middleware.CurrentProfile(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Notification deleted"})
}

// MarkRead sets the caller's read flag on one notification.
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.MarkReadRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.notificationService.MarkRead(ctx.Request.Context(), middleware.CurrentProfile(ctx), id, req.Read); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Read flag updated"})
}

// UnreadCount returns the caller's number of unread notifications.
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	count, err := c.notificationService.UnreadCount(ctx.Request.Context(), middleware.CurrentProfile(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"unread": count})
}
