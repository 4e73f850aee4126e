package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/app/services"
	"github.com/casportal/casportal/internal/middleware"
)

// ReflectionController handles reflection, favourite and attachment
// operations.
type ReflectionController struct {
	reflectionService services.ReflectionService
	reportService     services.ReportService
}

// NewReflectionController creates a new ReflectionController
func NewReflectionController(reflectionService services.ReflectionService, reportService services.ReportService) *ReflectionController {
	return &ReflectionController{
		reflectionService: reflectionService,
		reportService:     reportService,
	}
}

// CreateReflection creates a reflection authored by the caller.
func (c *ReflectionController) CreateReflection(ctx *gin.Context) {
	var req dto.CreateReflectionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	reflection, err := c.reflectionService.CreateReflection(ctx.Request.Context(), middleware.CurrentProfile(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, reflection)
}

// GetReflection retrieves a reflection by id under the visibility policy.
func (c *ReflectionController) GetReflection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	reflection, err := c.reflectionService.GetReflection(ctx.Request.Context(), middleware.CurrentProfile(ctx), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, reflection)
}

// GetReflectionBySlug retrieves a reflection by its slug.
func (c *ReflectionController) GetReflectionBySlug(ctx *gin.Context) {
	reflection, err := c.reflectionService.GetReflectionBySlug(ctx.Request.Context(), middleware.CurrentProfile(ctx), ctx.Param("slug"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, reflection)
}

// QueryReflections lists the reflections visible to the caller.
func (c *ReflectionController) QueryReflections(ctx *gin.Context) {
	req, ok := bindQueryRequest(ctx)
	if !ok {
		return
	}

	reflections, total, err := c.reflectionService.QueryReflections(ctx.Request.Context(), middleware.CurrentProfile(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewListResponse(reflections, total))
}

// UpdateReflection patches a reflection; owner or role holder.
func (c *ReflectionController) UpdateReflection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateReflectionRequest
	if !bindJSON(ctx, &req) {
		return
	}

	reflection, err := c.reflectionService.UpdateReflection(ctx.Request.Context(), middleware.CurrentProfile(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, reflection)
}

// DeleteReflection removes a reflection and its dependents.
func (c *ReflectionController) DeleteReflection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.reflectionService.DeleteReflection(ctx.Request.Context(), middleware.CurrentProfile(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Reflection deleted"})
}

// Favourite marks a reflection as one of the caller's favourites.
func (c *ReflectionController) Favourite(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.reflectionService.Favourite(ctx.Request.Context(), middleware.CurrentProfile(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.SuccessResponse{Message: "Reflection favourited"})
}

// Unfavourite clears the caller's favourite mark.
func (c *ReflectionController) Unfavourite(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.reflectionService.Unfavourite(ctx.Request.Context(), middleware.CurrentProfile(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Favourite removed"})
}

// QueryFavourites pages the caller's favourites.
func (c *ReflectionController) QueryFavourites(ctx *gin.Context) {
	req, ok := bindQueryRequest(ctx)
	if !ok {
		return
	}

	reflections, total, err := c.reflectionService.QueryFavourites(ctx.Request.Context(), middleware.CurrentProfile(ctx), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewListResponse(reflections, total))
}

// AddAttachment stores an uploaded file against a reflection.
func (c *ReflectionController) AddAttachment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Attachment file is required").
			WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	attachment, err := c.reflectionService.AddAttachment(ctx.Request.Context(), middleware.CurrentProfile(ctx), id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, attachment)
}

// DownloadAttachment streams an attachment's backing file.
func (c *ReflectionController) DownloadAttachment(ctx *gin.Context) {
	attachment, fullPath, err := c.reflectionService.GetAttachmentFile(ctx.Request.Context(), middleware.CurrentProfile(ctx), ctx.Param("attachmentId"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", `attachment; filename="`+attachment.Filename+`"`)
	ctx.File(fullPath)
}

// DeleteAttachment removes an attachment record and its file.
func (c *ReflectionController) DeleteAttachment(ctx *gin.Context) {
	if err := c.reflectionService.DeleteAttachment(ctx.Request.Context(), middleware.CurrentProfile(ctx), ctx.Param("attachmentId")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Attachment deleted"})
}

// ReportReflection flags a reflection for moderator review.
func (c *ReflectionController) ReportReflection(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.CreateReportRequest
	if !bindJSON(ctx, &req) {
		return
	}

	report, err := c.reportService.ReportReflection(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, report)
}
