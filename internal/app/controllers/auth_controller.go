package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/app/services"
	"github.com/casportal/casportal/internal/middleware"
)

// AuthController handles registration, login and credential recovery.
type AuthController struct {
	authService services.AuthService
}

// NewAuthController creates a new AuthController
func NewAuthController(authService services.AuthService) *AuthController {
	return &AuthController{authService: authService}
}

// Register creates a profile with basic login credentials and mails a
// confirmation code.
func (c *AuthController) Register(ctx *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Register(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

// Login exchanges email and password for an access token.
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.Login(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ForeignLogin signs a member in through a third-party identity, registering
// them on first contact.
func (c *AuthController) ForeignLogin(ctx *gin.Context) {
	var req dto.ForeignLoginRequest
	if !bindJSON(ctx, &req) {
		return
	}

	resp, err := c.authService.ForeignLogin(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ConfirmEmail consumes a mailed confirmation code.
func (c *AuthController) ConfirmEmail(ctx *gin.Context) {
	var req dto.ConfirmEmailRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ConfirmEmail(ctx.Request.Context(), req.Code); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Email confirmed"})
}

// ResendConfirmation mails a fresh confirmation code, honouring the cooldown.
func (c *AuthController) ResendConfirmation(ctx *gin.Context) {
	var req dto.ResendConfirmationRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ResendConfirmation(ctx.Request.Context(), req.Email); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Confirmation code sent"})
}

// RequestRecovery starts a password recovery flow by mailing a code.
func (c *AuthController) RequestRecovery(ctx *gin.Context) {
	var req dto.RecoveryRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.RequestRecovery(ctx.Request.Context(), req.Email); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Recovery code sent"})
}

// ResetPassword completes recovery with the mailed code.
func (c *AuthController) ResetPassword(ctx *gin.Context) {
	var req dto.ResetPasswordRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.authService.ResetPassword(ctx.Request.Context(), &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Password reset"})
}
