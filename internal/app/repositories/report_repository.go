package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/query"
	"github.com/casportal/casportal/internal/pkg/apperrors"
	"github.com/casportal/casportal/internal/pkg/dberrors"
)

// ReportRepository handles database operations for moderation reports
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a new ReportRepository
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// CreateReflectionReport files a report against a reflection.
func (r *ReportRepository) CreateReflectionReport(ctx context.Context, report *models.ReflectionReport) error {
	sql, args, err := psql.Insert("reflection_reports").
		Columns("reflection_id", "reason").
		Values(report.ReflectionID, report.Reason).
		Suffix("RETURNING id, date_added").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&report.ID, &report.DateAdded); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrReflectionNotFound
		}
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// CreateCommentReport files a report against a comment.
func (r *ReportRepository) CreateCommentReport(ctx context.Context, report *models.CommentReport) error {
	sql, args, err := psql.Insert("comment_reports").
		Columns("comment_id", "reason").
		Values(report.CommentID, report.Reason).
		Suffix("RETURNING id, date_added").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&report.ID, &report.DateAdded); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("comment not found")
		}
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// ListReflectionReports pages reflection reports, newest first.
func (r *ReportRepository) ListReflectionReports(ctx context.Context, pag *query.Pagination) ([]models.ReflectionReport, int64, error) {
	total, err := scanCount(ctx, r.db, psql.Select("COUNT(*)").From("reflection_reports"))
	if err != nil {
		return nil, 0, err
	}

	base := psql.Select("id", "reflection_id", "reason", "date_added").
		From("reflection_reports").
		OrderBy("date_added DESC")
	sql, args, err := query.ApplyPagination(base, pag).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var reports []models.ReflectionReport
	for rows.Next() {
		var rep models.ReflectionReport
		if err := rows.Scan(&rep.ID, &rep.ReflectionID, &rep.Reason, &rep.DateAdded); err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, total, rows.Err()
}

// ListCommentReports pages comment reports, newest first.
func (r *ReportRepository) ListCommentReports(ctx context.Context, pag *query.Pagination) ([]models.CommentReport, int64, error) {
	total, err := scanCount(ctx, r.db, psql.Select("COUNT(*)").From("comment_reports"))
	if err != nil {
		return nil, 0, err
	}

	base := psql.Select("id", "comment_id", "reason", "date_added").
		From("comment_reports").
		OrderBy("date_added DESC")
	sql, args, err := query.ApplyPagination(base, pag).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var reports []models.CommentReport
	for rows.Next() {
		var rep models.CommentReport
		if err := rows.Scan(&rep.ID, &rep.CommentID, &rep.Reason, &rep.DateAdded); err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, total, rows.Err()
}

// DeleteReflectionReport dismisses one reflection report.
func (r *ReportRepository) DeleteReflectionReport(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("reflection_reports").Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.NewResourceNotFoundError("report not found"))
}

// DeleteCommentReport dismisses one comment report.
func (r *ReportRepository) DeleteCommentReport(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("comment_reports").Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.NewResourceNotFoundError("report not found"))
}

// DeleteByReflection clears the reports filed against a reflection.
func (r *ReportRepository) DeleteByReflection(ctx context.Context, reflectionID int64) error {
	sql, args, err := psql.Delete("reflection_reports").Where("reflection_id = ?", reflectionID).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}
