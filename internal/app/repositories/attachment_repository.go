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

// AttachmentRepository handles database operations for reflection attachments
type AttachmentRepository struct {
	db *pgxpool.Pool
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db *pgxpool.Pool) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// CreateAttachment records a stored file against a reflection.
func (r *AttachmentRepository) CreateAttachment(ctx context.Context, a *models.Attachment) error {
	sql, args, err := psql.Insert("attachments").
		Columns("id", "reflection_id", "saved_path", "filename").
		Values(a.ID, a.ReflectionID, a.SavedPath, a.Filename).
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

// GetAttachmentByID retrieves an attachment by ID
func (r *AttachmentRepository) GetAttachmentByID(ctx context.Context, id string) (*models.Attachment, error) {
	sql, args, err := psql.Select("id", "reflection_id", "saved_path", "filename", "date_added").
		From("attachments").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var a models.Attachment
	err = r.db.QueryRow(ctx, sql, args...).Scan(&a.ID, &a.ReflectionID, &a.SavedPath, &a.Filename, &a.DateAdded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAttachmentNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &a, nil
}

// AttachmentsByReflectionIDs loads the attachments of each listed reflection
// in one round trip, keyed by reflection id.
func (r *AttachmentRepository) AttachmentsByReflectionIDs(ctx context.Context, reflectionIDs []int64) (map[int64][]models.Attachment, error) {
	if len(reflectionIDs) == 0 {
		return map[int64][]models.Attachment{}, nil
	}
	sql, args, err := psql.Select("id", "reflection_id", "saved_path", "filename", "date_added").
		From("attachments").
		Where(map[string]any{"reflection_id": reflectionIDs}).
		OrderBy("date_added ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]models.Attachment, len(reflectionIDs))
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.ReflectionID, &a.SavedPath, &a.Filename, &a.DateAdded); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		result[a.ReflectionID] = append(result[a.ReflectionID], a)
	}
	return result, rows.Err()
}

// DeleteAttachment removes one attachment row.
func (r *AttachmentRepository) DeleteAttachment(ctx context.Context, id string) error {
	sql, args, err := psql.Delete("attachments").Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrAttachmentNotFound)
}

// DeleteByReflection removes every attachment row of a reflection and
// returns the removed rows so the caller can clear the backing files.
func (r *AttachmentRepository) DeleteByReflection(ctx context.Context, reflectionID int64) ([]models.Attachment, error) {
	sql, args, err := psql.Delete("attachments").
		Where("reflection_id = ?", reflectionID).
		Suffix("RETURNING id, reflection_id, saved_path, filename, date_added").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var removed []models.Attachment
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.ReflectionID, &a.SavedPath, &a.Filename, &a.DateAdded); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		removed = append(removed, a)
	}
	return removed, rows.Err()
}
