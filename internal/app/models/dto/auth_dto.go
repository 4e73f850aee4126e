package dto

import "github.com/casportal/casportal/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents a new member registration
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

// ForeignLoginRequest represents sign-in through a third-party identity
// provider, after the controller has verified the provider's token.
type ForeignLoginRequest struct {
	Provider  string `json:"provider" binding:"required"`
	ForeignID string `json:"foreignId" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}

// AuthResponse represents a successful authentication
type AuthResponse struct {
	Token   TokenResponse   `json:"token"`
	Profile *models.Profile `json:"profile"`
}

// ConfirmEmailRequest carries the code mailed on registration
type ConfirmEmailRequest struct {
	Code string `json:"code" binding:"required"`
}

// ResendConfirmationRequest asks for a fresh confirmation code
type ResendConfirmationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RecoveryRequest starts a password recovery flow
type RecoveryRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes password recovery with a mailed code
type ResetPasswordRequest struct {
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}
