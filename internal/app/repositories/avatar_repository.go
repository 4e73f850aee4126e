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

// AvatarRepository handles database operations for profile and group avatars
type AvatarRepository struct {
	db *pgxpool.Pool
}

// NewAvatarRepository creates a new AvatarRepository
func NewAvatarRepository(db *pgxpool.Pool) *AvatarRepository {
	return &AvatarRepository{db: db}
}

// CreateAvatar records a stored avatar image.
func (r *AvatarRepository) CreateAvatar(ctx context.Context, a *models.Avatar) error {
	sql, args, err := psql.Insert("avatars").
		Columns("id", "saved_path", "filename").
		Values(a.ID, a.SavedPath, a.Filename).
		Suffix("RETURNING date_added").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&a.DateAdded); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// GetAvatarByID retrieves an avatar by ID
func (r *AvatarRepository) GetAvatarByID(ctx context.Context, id string) (*models.Avatar, error) {
	sql, args, err := psql.Select("id", "saved_path", "filename", "date_added").
		From("avatars").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var a models.Avatar
	err = r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.SavedPath, &a.Filename, &a.DateAdded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("avatar not found")
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &a, nil
}

// DeleteAvatar removes the avatar row.
func (r *AvatarRepository) DeleteAvatar(ctx context.Context, id string) error {
	sql, args, err := psql.Delete("avatars").Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.NewResourceNotFoundError("avatar not found"))
}
