package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/app/repositories"
	"github.com/casportal/casportal/internal/pkg/auth"
)

// Context keys set by the auth middleware.
const (
	ContextProfileKey   = "profile"
	ContextProfileIDKey = "profileID"
)

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	profiles   *repositories.ProfileRepository
	logger     zerolog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, profiles *repositories.ProfileRepository, logger zerolog.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		profiles:   profiles,
		logger:     logger,
	}
}

// JWTAuth validates the bearer token and loads the caller's profile into the
// request context. The websocket handshake cannot set headers, so a token
// query parameter is accepted as a fallback.
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			authHeader = c.Query("token")
		}
		if authHeader == "" {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			code := dto.ErrorCodeInvalidToken
			details := "Invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				code = dto.ErrorCodeExpiredToken
				details = "Token has expired"
			}
			detail := dto.NewErrorDetail(code, "Authentication failed").WithDetails(details)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		profile, err := m.profiles.GetProfileByID(c.Request.Context(), claims.ProfileID)
		if err != nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication failed").
				WithDetails("Profile no longer exists")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		if err := m.profiles.TouchLastOnline(c.Request.Context(), profile.ID); err != nil {
			m.logger.Warn().Err(err).Int64("profileId", profile.ID).Msg("failed to touch last online")
		}

		c.Set(ContextProfileIDKey, claims.ProfileID)
		c.Set(ContextProfileKey, profile)

		c.Next()
	}
}

// RoleRequired admits admins and moderators only. It must run after JWTAuth.
func (m *AuthMiddleware) RoleRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := CurrentProfile(c)
		if profile == nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}
		if !profile.HasRole() {
			detail := dto.NewErrorDetail(dto.ErrorCodePermissionDenied, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(detail))
			return
		}
		c.Next()
	}
}

// CurrentProfile returns the authenticated profile from the request context,
// or nil when the request is unauthenticated.
func CurrentProfile(c *gin.Context) *models.Profile {
	value, ok := c.Get(ContextProfileKey)
	if !ok {
		return nil
	}
	profile, ok := value.(*models.Profile)
	if !ok {
		return nil
	}
	return profile
}
