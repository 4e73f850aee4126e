package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/pkg/apperrors"
)

// HandleAPIError translates service errors into HTTP responses. Every
// controller funnels errors through here so status codes stay consistent.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case apperrors.Is(err, apperrors.ErrResourceNotFound,
		apperrors.ErrProfileNotFound,
		apperrors.ErrGroupNotFound,
		apperrors.ErrJoinRequestNotFound,
		apperrors.ErrReflectionNotFound,
		apperrors.ErrAttachmentNotFound):
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, err.Error())))

	case apperrors.Is(err, apperrors.ErrResourceAlreadyExists,
		apperrors.ErrEmailAlreadyExists,
		apperrors.ErrDuplicateJoinRequest):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, err.Error())))

	case apperrors.Is(err, apperrors.ErrConflict,
		apperrors.ErrAlreadyInGroup,
		apperrors.ErrAlreadyCoordinator,
		apperrors.ErrAlreadyFavourited,
		apperrors.ErrCodeCooldown,
		apperrors.ErrFileUnavailable):
		c.JSON(http.StatusConflict, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceConflict, err.Error())))

	case errors.Is(err, apperrors.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials")))

	case errors.Is(err, apperrors.ErrTokenExpired):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")))

	case apperrors.Is(err, apperrors.ErrTokenInvalid, apperrors.ErrInvalidFormat):
		c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")))

	case errors.Is(err, apperrors.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodePermissionDenied, "Permission denied")))

	case apperrors.Is(err, apperrors.ErrValidationFailed,
		apperrors.ErrInvalidEmail,
		apperrors.ErrInvalidPassword,
		apperrors.ErrCodeNotFound,
		apperrors.ErrNotFavourited,
		apperrors.ErrBadRequest):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, err.Error())))

	default:
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")))
	}
}
