package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/pkg/apperrors"
	"github.com/casportal/casportal/internal/pkg/auth"
	"github.com/casportal/casportal/internal/pkg/helpers"
	"github.com/casportal/casportal/internal/pkg/validation"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	ForeignLogin(ctx context.Context, req *dto.ForeignLoginRequest) (*dto.AuthResponse, error)
	ConfirmEmail(ctx context.Context, code string) error
	ResendConfirmation(ctx context.Context, email string) error
	RequestRecovery(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error
}

type mailSender interface {
	SendConfirmationEmail(toEmail, code string) error
	SendRecoveryEmail(toEmail, code string) error
}

type tokenIssuer interface {
	GenerateToken(profile *models.Profile, email string) (string, int, error)
}

// authServiceImpl implements AuthService
type authServiceImpl struct {
	profileStore ProfileStore
	credentials  CredentialStore
	codes        ConfirmationCodeStore
	mailer       mailSender
	tokens       tokenIssuer
	logger       zerolog.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	profileStore ProfileStore,
	credentials CredentialStore,
	codes ConfirmationCodeStore,
	mailer mailSender,
	tokens tokenIssuer,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		profileStore: profileStore,
		credentials:  credentials,
		codes:        codes,
		mailer:       mailer,
		tokens:       tokens,
		logger:       logger,
	}
}

// Register creates a profile with a basic login and mails a confirmation
// code. The account works immediately; verification only flips a flag.
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if !validation.IsValidEmail(req.Email) {
		return nil, apperrors.NewValidationError("invalid email address")
	}
	if !validation.IsValidPassword(req.Password) {
		return nil, apperrors.NewValidationError("password must be at least 8 characters")
	}
	if !validation.IsValidName(req.FirstName) || !validation.IsValidName(req.LastName) {
		return nil, apperrors.NewValidationError("first and last name are required")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PostVisibility: models.VisibilityGroup,
	}
	if err := s.profileStore.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}

	login := &models.BasicLogin{
		ProfileID: profile.ID,
		Email:     req.Email,
		Password:  hash,
	}
	if err := s.credentials.CreateBasicLogin(ctx, login); err != nil {
		// the profile row is useless without its credential
		if delErr := s.profileStore.DeleteProfile(ctx, profile.ID); delErr != nil {
			s.logger.Error().Err(delErr).Int64("profileId", profile.ID).Msg("failed to remove orphaned profile")
		}
		return nil, err
	}

	if err := s.issueCode(ctx, profile.ID, req.Email, false); err != nil {
		// registration itself stands; the member can ask for a resend
		s.logger.Warn().Err(err).Int64("profileId", profile.ID).Msg("confirmation mail not sent on registration")
	} else if err := s.credentials.MarkVerificationSent(ctx, profile.ID); err != nil {
		s.logger.Error().Err(err).Int64("profileId", profile.ID).Msg("failed to record verification mail")
	}

	return s.authResponse(profile, req.Email)
}

// Login authenticates an email/password pair.
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	login, err := s.credentials.GetBasicLoginByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(login.Password, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	profile, err := s.profileStore.GetProfileByID(ctx, login.ProfileID)
	if err != nil {
		return nil, err
	}
	if err := s.profileStore.TouchLastOnline(ctx, profile.ID); err != nil {
		s.logger.Warn().Err(err).Int64("profileId", profile.ID).Msg("failed to update last online")
	}

	return s.authResponse(profile, login.Email)
}

// ForeignLogin signs a member in through a verified third-party identity,
// registering a profile on first contact.
func (s *authServiceImpl) ForeignLogin(ctx context.Context, req *dto.ForeignLoginRequest) (*dto.AuthResponse, error) {
	login, err := s.credentials.GetForeignLogin(ctx, req.Provider, req.ForeignID)
	if err == nil {
		profile, err := s.profileStore.GetProfileByID(ctx, login.ProfileID)
		if err != nil {
			return nil, err
		}
		if err := s.profileStore.TouchLastOnline(ctx, profile.ID); err != nil {
			s.logger.Warn().Err(err).Int64("profileId", profile.ID).Msg("failed to update last online")
		}
		return s.authResponse(profile, login.Email)
	}
	if !errors.Is(err, apperrors.ErrResourceNotFound) {
		return nil, err
	}

	profile := &models.Profile{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		PostVisibility: models.VisibilityGroup,
	}
	if err := s.profileStore.CreateProfile(ctx, profile); err != nil {
		return nil, err
	}
	if err := s.credentials.CreateForeignLogin(ctx, &models.ForeignLogin{
		ProfileID: profile.ID,
		Provider:  req.Provider,
		ForeignID: req.ForeignID,
		Email:     req.Email,
	}); err != nil {
		if delErr := s.profileStore.DeleteProfile(ctx, profile.ID); delErr != nil {
			s.logger.Error().Err(delErr).Int64("profileId", profile.ID).Msg("failed to remove orphaned profile")
		}
		return nil, err
	}

	return s.authResponse(profile, req.Email)
}

// ConfirmEmail consumes a mailed confirmation code.
func (s *authServiceImpl) ConfirmEmail(ctx context.Context, code string) error {
	c, err := s.codes.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if c.Expired(time.Now()) {
		return apperrors.ErrCodeNotFound
	}
	if err := s.credentials.MarkVerified(ctx, c.ProfileID); err != nil {
		return err
	}
	return s.codes.Delete(ctx, c.ProfileID)
}

// ResendConfirmation mails a fresh confirmation code, honoring the cooldown.
func (s *authServiceImpl) ResendConfirmation(ctx context.Context, email string) error {
	login, err := s.credentials.GetBasicLoginByEmail(ctx, email)
	if err != nil {
		return err
	}
	if login.Verified {
		return apperrors.NewConflictError("email is already verified")
	}
	if err := s.issueCode(ctx, login.ProfileID, login.Email, false); err != nil {
		return err
	}
	return s.credentials.MarkVerificationSent(ctx, login.ProfileID)
}

// RequestRecovery mails a password recovery code, honoring the cooldown.
func (s *authServiceImpl) RequestRecovery(ctx context.Context, email string) error {
	login, err := s.credentials.GetBasicLoginByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.issueCode(ctx, login.ProfileID, login.Email, true)
}

// ResetPassword completes a recovery flow with the mailed code.
func (s *authServiceImpl) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	if !validation.IsValidPassword(req.NewPassword) {
		return apperrors.NewValidationError("password must be at least 8 characters")
	}

	c, err := s.codes.GetByCode(ctx, req.Code)
	if err != nil {
		return err
	}
	if c.Expired(time.Now()) {
		return apperrors.ErrCodeNotFound
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.credentials.UpdatePassword(ctx, c.ProfileID, hash); err != nil {
		return err
	}
	return s.codes.Delete(ctx, c.ProfileID)
}

// issueCode stores a fresh code for the profile and mails it. A live code
// inside the validity window blocks reissue; an expired one is silently
// replaced. When the mail cannot be sent the stored code is rolled back so
// the member can retry immediately.
func (s *authServiceImpl) issueCode(ctx context.Context, profileID int64, email string, recovery bool) error {
	existing, err := s.codes.GetByProfile(ctx, profileID)
	if err != nil && !errors.Is(err, apperrors.ErrCodeNotFound) {
		return err
	}
	if existing != nil && !existing.Expired(time.Now()) {
		return apperrors.ErrCodeCooldown
	}

	token, err := helpers.RandomToken(16)
	if err != nil {
		return err
	}
	code := &models.ConfirmationCode{
		ProfileID:   profileID,
		Code:        token,
		DateCreated: time.Now().UTC(),
	}
	if err := s.codes.Replace(ctx, code); err != nil {
		return err
	}

	send := s.mailer.SendConfirmationEmail
	if recovery {
		send = s.mailer.SendRecoveryEmail
	}
	if err := send(email, code.Code); err != nil {
		if delErr := s.codes.Delete(ctx, profileID); delErr != nil {
			s.logger.Error().Err(delErr).Int64("profileId", profileID).Msg("failed to roll back confirmation code")
		}
		return apperrors.NewCustomError(err, "could not send the confirmation email")
	}
	return nil
}

func (s *authServiceImpl) authResponse(profile *models.Profile, email string) (*dto.AuthResponse, error) {
	token, expiresIn, err := s.tokens.GenerateToken(profile, email)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: dto.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		},
		Profile: profile,
	}, nil
}
