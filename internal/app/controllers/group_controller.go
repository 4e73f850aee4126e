package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/app/services"
	"github.com/casportal/casportal/internal/middleware"
)

// GroupController handles group and join-request operations
type GroupController struct {
	groupService services.GroupService
}

// NewGroupController creates a new GroupController
func NewGroupController(groupService services.GroupService) *GroupController {
	return &GroupController{groupService: groupService}
}

// CreateGroup creates a group with the caller as coordinator.
func (c *GroupController) CreateGroup(ctx *gin.Context) {
	var req dto.CreateGroupRequest
	if !bindJSON(ctx, &req) {
		return
	}

	group, err := c.groupService.CreateGroup(ctx.Request.Context(), middleware.CurrentProfile(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, group)
}

// GetGroup retrieves a group by its token id.
func (c *GroupController) GetGroup(ctx *gin.Context) {
	group, err := c.groupService.GetGroup(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, group)
}

// QueryGroups lists groups through the filter surface.
func (c *GroupController) QueryGroups(ctx *gin.Context) {
	req, ok := bindQueryRequest(ctx)
	if !ok {
		return
	}

	groups, total, err := c.groupService.QueryGroups(ctx.Request.Context(), req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewListResponse(groups, total))
}

// UpdateGroup patches group metadata; coordinator or role holder.
func (c *GroupController) UpdateGroup(ctx *gin.Context) {
	var req dto.UpdateGroupRequest
	if !bindJSON(ctx, &req) {
		return
	}

	group, err := c.groupService.UpdateGroup(ctx.Request.Context(), middleware.CurrentProfile(ctx), ctx.Param("id"), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, group)
}

// UpdateAvatar replaces the group avatar with an uploaded image.
func (c *GroupController) UpdateAvatar(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Avatar file is required").
			WithField("file")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return
	}

	avatar, err := c.groupService.UpdateAvatar(ctx.Request.Context(), middleware.CurrentProfile(ctx), ctx.Param("id"), file)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, avatar)
}

// DeleteAvatar removes the group avatar.
func (c *GroupController) DeleteAvatar(ctx *gin.Context) {
	if err := c.groupService.DeleteAvatar(ctx.Request.Context(), middleware.CurrentProfile(ctx), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Avatar deleted"})
}

// DeleteGroup disbands a group.
func (c *GroupController) DeleteGroup(ctx *gin.Context) {
	if err := c.groupService.DeleteGroup(ctx.Request.Context(), middleware.CurrentProfile(ctx), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Group deleted"})
}

// RequestJoin posts a membership request for the caller.
func (c *GroupController) RequestJoin(ctx *gin.Context) {
	if err := c.groupService.RequestJoin(ctx.Request.Context(), middleware.CurrentProfile(ctx), ctx.Param("id")); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.SuccessResponse{Message: "Join request posted"})
}

// ListJoinRequests returns the pending requests for a group.
func (c *GroupController) ListJoinRequests(ctx *gin.Context) {
	requests, err := c.groupService.ListJoinRequests(ctx.Request.Context(), middleware.CurrentProfile(ctx), ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewListResponse(requests, int64(len(requests))))
}

// AcceptJoinRequest moves the requester into the group.
func (c *GroupController) AcceptJoinRequest(ctx *gin.Context) {
	c.decideJoinRequest(ctx, true, "Join request accepted")
}

// DenyJoinRequest declines the request.
func (c *GroupController) DenyJoinRequest(ctx *gin.Context) {
	c.decideJoinRequest(ctx, false, "Join request denied")
}

func (c *GroupController) decideJoinRequest(ctx *gin.Context, accept bool, message string) {
	profileID, ok := parseIDParam(ctx, "profileId")
	if !ok {
		return
	}

	err := c.groupService.DecideJoinRequest(ctx.Request.Context(), middleware.CurrentProfile(ctx), ctx.Param("id"), profileID, accept)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: message})
}

// LeaveGroup removes the caller from their group.
func (c *GroupController) LeaveGroup(ctx *gin.Context) {
	if err := c.groupService.LeaveGroup(ctx.Request.Context(), middleware.CurrentProfile(ctx)); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Left group"})
}

// RemoveMember expels a member from a group.
func (c *GroupController) RemoveMember(ctx *gin.Context) {
	profileID, ok := parseIDParam(ctx, "profileId")
	if !ok {
		return
	}

	err := c.groupService.RemoveMember(ctx.Request.Context(), middleware.CurrentProfile(ctx), ctx.Param("id"), profileID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Member removed"})
}
