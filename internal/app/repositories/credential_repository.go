package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/pkg/apperrors"
	"github.com/casportal/casportal/internal/pkg/dberrors"
)

// CredentialRepository handles database operations for basic and foreign
// login credentials.
type CredentialRepository struct {
	db *pgxpool.Pool
}

// NewCredentialRepository creates a new CredentialRepository
func NewCredentialRepository(db *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// CreateBasicLogin stores an email/password credential for a profile.
func (r *CredentialRepository) CreateBasicLogin(ctx context.Context, login *models.BasicLogin) error {
	sql, args, err := psql.Insert("basic_logins").
		Columns("profile_id", "email", "password", "verification_sent", "verified").
		Values(login.ProfileID, login.Email, login.Password, login.VerificationSent, login.Verified).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrEmailAlreadyExists
		}
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// GetBasicLoginByEmail retrieves the credential bound to an email
func (r *CredentialRepository) GetBasicLoginByEmail(ctx context.Context, email string) (*models.BasicLogin, error) {
	return r.getBasicLogin(ctx, "email = ?", email)
}

// GetBasicLoginByProfileID retrieves the credential owned by a profile
func (r *CredentialRepository) GetBasicLoginByProfileID(ctx context.Context, profileID int64) (*models.BasicLogin, error) {
	return r.getBasicLogin(ctx, "profile_id = ?", profileID)
}

func (r *CredentialRepository) getBasicLogin(ctx context.Context, pred string, arg any) (*models.BasicLogin, error) {
	sql, args, err := psql.Select("profile_id", "email", "password", "verification_sent", "verified").
		From("basic_logins").
		Where(pred, arg).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var login models.BasicLogin
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&login.ProfileID, &login.Email, &login.Password,
		&login.VerificationSent, &login.Verified,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &login, nil
}

// UpdatePassword replaces the stored password hash
func (r *CredentialRepository) UpdatePassword(ctx context.Context, profileID int64, hash string) error {
	sql, args, err := psql.Update("basic_logins").
		Set("password", hash).
		Where("profile_id = ?", profileID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrResourceNotFound)
}

// MarkVerified flags the credential as email-confirmed
func (r *CredentialRepository) MarkVerified(ctx context.Context, profileID int64) error {
	sql, args, err := psql.Update("basic_logins").
		Set("verified", true).
		Where("profile_id = ?", profileID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrResourceNotFound)
}

// MarkVerificationSent records that a confirmation mail went out
func (r *CredentialRepository) MarkVerificationSent(ctx context.Context, profileID int64) error {
	sql, args, err := psql.Update("basic_logins").
		Set("verification_sent", true).
		Where("profile_id = ?", profileID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrResourceNotFound)
}

// CreateForeignLogin binds a third-party identity to a profile. The
// (provider, foreign id) pair is unique.
func (r *CredentialRepository) CreateForeignLogin(ctx context.Context, login *models.ForeignLogin) error {
	sql, args, err := psql.Insert("foreign_logins").
		Columns("profile_id", "provider", "foreign_id", "email").
		Values(login.ProfileID, login.Provider, login.ForeignID, login.Email).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrResourceAlreadyExists
		}
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// GetForeignLogin retrieves a third-party identity binding
func (r *CredentialRepository) GetForeignLogin(ctx context.Context, provider, foreignID string) (*models.ForeignLogin, error) {
	sql, args, err := psql.Select("profile_id", "provider", "foreign_id", "email").
		From("foreign_logins").
		Where("provider = ? AND foreign_id = ?", provider, foreignID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var login models.ForeignLogin
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&login.ProfileID, &login.Provider, &login.ForeignID, &login.Email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &login, nil
}

// DeleteCredentials removes every credential owned by a profile.
func (r *CredentialRepository) DeleteCredentials(ctx context.Context, profileID int64) error {
	for _, table := range []string{"basic_logins", "foreign_logins", "confirmation_codes"} {
		sql, args, err := psql.Delete(table).Where("profile_id = ?", profileID).ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if _, err := r.db.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
	}
	return nil
}

// execExpectingRow runs a statement that must touch at least one row and
// returns missing otherwise.
func execExpectingRow(ctx context.Context, db *pgxpool.Pool, sql string, args []any, missing error) error {
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return missing
	}
	return nil
}
