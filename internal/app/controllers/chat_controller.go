package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/app/services"
	"github.com/casportal/casportal/internal/middleware"
)

// ChatController serves the history side of the message relay.
type ChatController struct {
	messageService services.MessageService
}

// NewChatController creates a new ChatController
func NewChatController(messageService services.MessageService) *ChatController {
	return &ChatController{messageService: messageService}
}

// Conversation pages the messages between the caller and another profile,
// newest first.
func (c *ChatController) Conversation(ctx *gin.Context) {
	otherID, ok := parseIDParam(ctx, "profileId")
	if !ok {
		return
	}
	req, ok := bindQueryRequest(ctx)
	if !ok {
		return
	}

	messages, total, err := c.messageService.Conversation(ctx.Request.Context(), middleware.CurrentProfile(ctx), otherID, req.Pagination)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewListResponse(messages, total))
}
