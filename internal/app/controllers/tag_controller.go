package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/app/services"
	"github.com/casportal/casportal/internal/middleware"
)

// TagController handles tag operations
type TagController struct {
	tagService services.TagService
}

// NewTagController creates a new TagController
func NewTagController(tagService services.TagService) *TagController {
	return &TagController{tagService: tagService}
}

// QueryTags lists tags through the filter surface.
func (c *TagController) QueryTags(ctx *gin.Context) {
	req, ok := bindQueryRequest(ctx)
	if !ok {
		return
	}

	tags, total, err := c.tagService.QueryTags(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewListResponse(tags, total))
}

// DeleteTag removes a tag; admin only.
func (c *TagController) DeleteTag(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.tagService.DeleteTag(ctx.Request.Context(), middleware.CurrentProfile(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Tag deleted"})
}
