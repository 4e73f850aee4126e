package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/app/services"
	"github.com/casportal/casportal/internal/middleware"
)

// ProfileController handles profile related operations
type ProfileController struct {
	profileService services.ProfileService
}

// NewProfileController creates a new ProfileController
func NewProfileController(profileService services.ProfileService) *ProfileController {
	return &ProfileController{profileService: profileService}
}

// Me returns the caller's own profile.
func (c *ProfileController) Me(ctx *gin.Context) {
	profile := middleware.CurrentProfile(ctx)
	ctx.JSON(http.StatusOK, profile)
}

// GetProfile retrieves a profile by id.
func (c *ProfileController) GetProfile(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	profile, err := c.profileService.GetProfile(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

// QueryProfiles lists profiles through the filter surface.
func (c *ProfileController) QueryProfiles(ctx *gin.Context) {
	req, ok := bindQueryRequest(ctx)
	if !ok {
		return
	}

	profiles, total, err := c.profileService.QueryProfiles(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewListResponse(profiles, total))
}

// UpdateProfile patches a profile; owner or role holder.
func (c *ProfileController) UpdateProfile(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !bindJSON(ctx, &req) {
		return
	}

	profile, err := c.profileService.UpdateProfile(ctx.Request.Context(), middleware.CurrentProfile(ctx), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

// UpdateRoles toggles the moderator flag on a profile; admin only.
func (c *ProfileController) UpdateRoles(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateRolesRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.profileService.UpdateRoles(ctx.Request.Context(), middleware.CurrentProfile(ctx), id, &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Roles updated"})
}

// UpdateAvatar replaces the profile avatar with an uploaded image.
func (c *ProfileController) UpdateAvatar(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Avatar file is required").
			WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	avatar, err := c.profileService.UpdateAvatar(ctx.Request.Context(), middleware.CurrentProfile(ctx), id, file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, avatar)
}

// DeleteAvatar removes the profile avatar.
func (c *ProfileController) DeleteAvatar(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.profileService.DeleteAvatar(ctx.Request.Context(), middleware.CurrentProfile(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Avatar deleted"})
}

// DeleteProfile removes a profile and everything it authored.
func (c *ProfileController) DeleteProfile(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.profileService.DeleteProfile(ctx.Request.Context(), middleware.CurrentProfile(ctx), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Profile deleted"})
}
