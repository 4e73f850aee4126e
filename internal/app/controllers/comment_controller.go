package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/app/services"
	"github.com/casportal/casportal/internal/middleware"
)

// CommentController handles comment operations
type CommentController struct {
	commentService services.CommentService
	reportService  services.ReportService
}

// NewCommentController creates a new CommentController
func NewCommentController(commentService services.CommentService, reportService services.ReportService) *CommentController {
	return &CommentController{
		commentService: commentService,
		reportService:  reportService,
	}
}

// CreateComment posts a comment under a readable reflection.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	var req dto.CreateCommentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	comment, err := c.commentService.CreateComment(ctx.Request.Context(), middleware.CurrentProfile(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, comment)
}

// QueryComments lists comments through the filter surface.
func (c *CommentController) QueryComments(ctx *gin.Context) {
	req, ok := bindQueryRequest(ctx)
	if !ok {
		return
	}

	comments, total, err := c.commentService.QueryComments(ctx.Request.Context(), middleware.CurrentProfile(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewListResponse(comments, total))
}

// UpdateComment replaces a comment's content; owner or role holder.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateCommentRequest
	if !bindJSON(ctx, &req) {
		return
	}

	comment, err := c.commentService.UpdateComment(ctx.Request.Context(), middleware.CurrentProfile(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment; owner or role holder.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.commentService.DeleteComment(ctx.Request.Context(), middleware.CurrentProfile(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Comment deleted"})
}

// ReportComment flags a comment for moderator review.
func (c *CommentController) ReportComment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.CreateReportRequest
	if !bindJSON(ctx, &req) {
		return
	}

	report, err := c.reportService.ReportComment(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, report)
}
