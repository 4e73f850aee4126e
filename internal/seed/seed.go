// Package seed creates the default data a fresh deployment needs.
package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	appModels "github.com/casportal/casportal/internal/app/models"
	appRepos "github.com/casportal/casportal/internal/app/repositories"
	"github.com/casportal/casportal/internal/pkg/apperrors"
	pkgAuth "github.com/casportal/casportal/internal/pkg/auth"
)

const adminEmail = "admin@casportal.app"

// CreateDefaultData creates the default admin profile if it doesn't exist.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	profileRepo := appRepos.NewProfileRepository(dbPool)
	credentialRepo := appRepos.NewCredentialRepository(dbPool)

	lgr.Info().Msg("Checking/Creating default data...")
	var finalErr error

	// --- Default Admin Profile --- //
	_, err := credentialRepo.GetBasicLoginByEmail(ctx, adminEmail)
	switch {
	case err == nil:
		lgr.Info().Msg("Admin profile already exists, skipping creation")

	case errors.Is(err, apperrors.ErrResourceNotFound):
		lgr.Info().Msg("Creating default admin profile...")

		hashedPassword, hashErr := pkgAuth.HashPassword("Admin123!")
		if hashErr != nil {
			lgr.Error().Err(hashErr).Msg("Error hashing admin password")
			return errors.Join(finalErr, hashErr)
		}

		admin := &appModels.Profile{
			FirstName:      "Portal",
			LastName:       "Administrator",
			PostVisibility: appModels.VisibilityCoordinator,
			IsAdmin:        true,
		}
		if createErr := profileRepo.CreateProfile(ctx, admin); createErr != nil {
			lgr.Error().Err(createErr).Msg("Error creating admin profile")
			finalErr = errors.Join(finalErr, createErr)
			break
		}

		login := &appModels.BasicLogin{
			ProfileID:        admin.ID,
			Email:            adminEmail,
			Password:         hashedPassword,
			VerificationSent: true,
			Verified:         true,
		}
		if loginErr := credentialRepo.CreateBasicLogin(ctx, login); loginErr != nil {
			lgr.Error().Err(loginErr).Msg("Error creating admin login")
			finalErr = errors.Join(finalErr, loginErr)
			break
		}

		lgr.Info().Int64("adminID", admin.ID).Msg("Default admin profile created successfully")

	default:
		lgr.Error().Err(err).Msg("Error checking if admin profile exists")
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}
