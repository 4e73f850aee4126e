// Package controllers adapts HTTP requests to the service layer.
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/casportal/casportal/internal/app/models/dto"
)

// parseIDParam reads a numeric path parameter, answering 400 itself on
// malformed input.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name+" parameter").
			WithField(name).
			WithDetails(name + " must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return 0, false
	}
	return id, true
}

// bindJSON binds the request body, answering 400 itself on binding errors.
func bindJSON(ctx *gin.Context, obj any) bool {
	if err := ctx.ShouldBindJSON(obj); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
			WithDetails(err.Error())
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
		return false
	}
	return true
}

// bindQueryRequest binds a listing body; an empty body means no filter, no
// sort and no pagination.
func bindQueryRequest(ctx *gin.Context) (*dto.QueryRequest, bool) {
	req := &dto.QueryRequest{}
	if ctx.Request.ContentLength == 0 {
		return req, true
	}
	if !bindJSON(ctx, req) {
		return nil, false
	}
	return req, true
}
