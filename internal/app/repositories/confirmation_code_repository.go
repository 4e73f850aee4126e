package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/pkg/apperrors"
)

// ConfirmationCodeRepository handles database operations for single-use
// confirmation codes. Each profile holds at most one code.
type ConfirmationCodeRepository struct {
	db *pgxpool.Pool
}

// NewConfirmationCodeRepository creates a new ConfirmationCodeRepository
func NewConfirmationCodeRepository(db *pgxpool.Pool) *ConfirmationCodeRepository {
	return &ConfirmationCodeRepository{db: db}
}

// Replace stores a fresh code for the profile, displacing any previous one.
func (r *ConfirmationCodeRepository) Replace(ctx context.Context, code *models.ConfirmationCode) error {
	sql, args, err := psql.Insert("confirmation_codes").
		Columns("profile_id", "code", "date_created").
		Values(code.ProfileID, code.Code, code.DateCreated).
		Suffix("ON CONFLICT (profile_id) DO UPDATE SET code = EXCLUDED.code, date_created = EXCLUDED.date_created").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// GetByProfile retrieves the profile's current code, if any.
func (r *ConfirmationCodeRepository) GetByProfile(ctx context.Context, profileID int64) (*models.ConfirmationCode, error) {
	return r.get(ctx, "profile_id = ?", profileID)
}

// GetByCode resolves a presented code back to its profile.
func (r *ConfirmationCodeRepository) GetByCode(ctx context.Context, code string) (*models.ConfirmationCode, error) {
	return r.get(ctx, "code = ?", code)
}

func (r *ConfirmationCodeRepository) get(ctx context.Context, pred string, arg any) (*models.ConfirmationCode, error) {
	sql, args, err := psql.Select("profile_id", "code", "date_created").
		From("confirmation_codes").
		Where(pred, arg).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var c models.ConfirmationCode
	err = r.db.QueryRow(ctx, sql, args...).Scan(&c.ProfileID, &c.Code, &c.DateCreated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCodeNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &c, nil
}

// Delete consumes the profile's code.
func (r *ConfirmationCodeRepository) Delete(ctx context.Context, profileID int64) error {
	sql, args, err := psql.Delete("confirmation_codes").Where("profile_id = ?", profileID).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}
