package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/query"
	"github.com/casportal/casportal/internal/pkg/apperrors"
	"github.com/casportal/casportal/internal/pkg/dberrors"
)

// CommentRepository handles database operations for comments
type CommentRepository struct {
	db *pgxpool.Pool
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{db: db}
}

// CreateComment inserts a comment and fills its generated fields.
func (r *CommentRepository) CreateComment(ctx context.Context, c *models.Comment) error {
	sql, args, err := psql.Insert("comments").
		Columns("profile_id", "reflection_id", "content").
		Values(c.ProfileID, c.ReflectionID, c.Content).
		Suffix("RETURNING id, date_added").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.DateAdded); err != nil {
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrReflectionNotFound
		}
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// GetCommentByID retrieves a comment by ID
func (r *CommentRepository) GetCommentByID(ctx context.Context, id int64) (*models.Comment, error) {
	sql, args, err := psql.Select("c.id", "c.profile_id", "c.reflection_id", "c.content", "c.date_added").
		From("comments c").
		Where("c.id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var c models.Comment
	err = r.db.QueryRow(ctx, sql, args...).Scan(&c.ID, &c.ProfileID, &c.ReflectionID, &c.Content, &c.DateAdded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("comment not found")
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &c, nil
}

// UpdateComment replaces a comment's content
func (r *CommentRepository) UpdateComment(ctx context.Context, c *models.Comment) error {
	sql, args, err := psql.Update("comments").
		Set("content", c.Content).
		Where("id = ?", c.ID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrResourceNotFound)
}

// DeleteComment removes a comment together with its reports.
func (r *CommentRepository) DeleteComment(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := psql.Delete("comment_reports").Where("comment_id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	sql, args, err = psql.Delete("comments").Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return tx.Commit(ctx)
}

// DeleteByReflection removes every comment on a reflection, reports included.
func (r *CommentRepository) DeleteByReflection(ctx context.Context, reflectionID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := psql.Delete("comment_reports").
		Where("comment_id IN (SELECT id FROM comments WHERE reflection_id = ?)", reflectionID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	sql, args, err = psql.Delete("comments").Where("reflection_id = ?", reflectionID).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return tx.Commit(ctx)
}

// DeleteByProfile removes every comment authored by a profile, reports
// included.
func (r *CommentRepository) DeleteByProfile(ctx context.Context, profileID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := psql.Delete("comment_reports").
		Where("comment_id IN (SELECT id FROM comments WHERE profile_id = ?)", profileID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	sql, args, err = psql.Delete("comments").Where("profile_id = ?", profileID).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return tx.Commit(ctx)
}

// QueryComments lists comments through the comment filter surface with their
// authors attached.
func (r *CommentRepository) QueryComments(ctx context.Context, filter map[string]any, sortParams []query.SortParam, pag *query.Pagination) ([]models.Comment, int64, error) {
	conds, joins, err := commentRegistry.Parse(filter)
	if err != nil {
		return nil, 0, err
	}
	sorts, err := commentRegistry.ParseSorts(sortParams)
	if err != nil {
		return nil, 0, err
	}
	if _, err := commentRegistry.ParsePagination(pag); err != nil {
		return nil, 0, err
	}

	// the author join doubles as the response's author payload, so it is
	// always attached under the registry's alias
	base := psql.Select("c.id", "c.profile_id", "c.reflection_id", "c.content", "c.date_added",
		"cap.id", "cap.first_name", "cap.last_name", "cap.post_visibility",
		"cap.is_moderator", "cap.is_admin", "cap.group_id", "cap.avatar_id",
		"cap.date_joined", "cap.last_online").
		From("comments c").
		Join("profiles cap ON cap.id = c.profile_id")
	base = query.ApplyConditions(base, conds)

	countB := psql.Select("COUNT(*)").From("comments c")
	countB = query.ApplyJoins(countB, commentRegistry, joins)
	countB = query.ApplyConditions(countB, conds)
	total, err := scanCount(ctx, r.db, countB)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := query.ApplyPagination(query.ApplySorts(base, sorts), pag).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		var author models.Profile
		err := rows.Scan(
			&c.ID, &c.ProfileID, &c.ReflectionID, &c.Content, &c.DateAdded,
			&author.ID, &author.FirstName, &author.LastName, &author.PostVisibility,
			&author.IsModerator, &author.IsAdmin, &author.GroupID, &author.AvatarID,
			&author.DateJoined, &author.LastOnline,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		c.Author = &author
		comments = append(comments, c)
	}
	return comments, total, rows.Err()
}
