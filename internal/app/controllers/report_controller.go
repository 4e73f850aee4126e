package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/app/query"
	"github.com/casportal/casportal/internal/app/services"
	"github.com/casportal/casportal/internal/middleware"
)

// ReportController handles moderation report review; role holders only.
type ReportController struct {
	reportService services.ReportService
}

// NewReportController creates a new ReportController
func NewReportController(reportService services.ReportService) *ReportController {
	return &ReportController{reportService: reportService}
}

// ListReflectionReports pages filed reflection reports.
func (c *ReportController) ListReflectionReports(ctx *gin.Context) {
	pag, ok := bindPagination(ctx)
	if !ok {
		return
	}

	reports, total, err := c.reportService.ListReflectionReports(ctx.Request.Context(), middleware.CurrentProfile(ctx), pag)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewListResponse(reports, total))
}

// ListCommentReports pages filed comment reports.
func (c *ReportController) ListCommentReports(ctx *gin.Context) {
	pag, ok := bindPagination(ctx)
	if !ok {
		return
	}

	reports, total, err := c.reportService.ListCommentReports(ctx.Request.Context(), middleware.CurrentProfile(ctx), pag)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewListResponse(reports, total))
}

// DismissReflectionReport drops a reflection report without acting on it.
func (c *ReportController) DismissReflectionReport(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.reportService.DismissReflectionReport(ctx.Request.Context(), middleware.CurrentProfile(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Report dismissed"})
}

// DismissCommentReport drops a comment report without acting on it.
func (c *ReportController) DismissCommentReport(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.reportService.DismissCommentReport(ctx.Request.Context(), middleware.CurrentProfile(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Report dismissed"})
}

// bindPagination reads the optional pagination body shared by the report
// listings.
func bindPagination(ctx *gin.Context) (*query.Pagination, bool) {
	req, ok := bindQueryRequest(ctx)
	if !ok {
		return nil, false
	}
	return req.Pagination, true
}
