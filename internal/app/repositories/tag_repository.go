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
)

// TagRepository handles database operations for tags
type TagRepository struct {
	db *pgxpool.Pool
}

// NewTagRepository creates a new TagRepository
func NewTagRepository(db *pgxpool.Pool) *TagRepository {
	return &TagRepository{db: db}
}

// GetOrCreate resolves a tag by exact name, creating it on first use. The
// upsert keeps concurrent creates of the same name convergent.
func (r *TagRepository) GetOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	sql, args, err := psql.Insert("tags").
		Columns("name").
		Values(name).
		Suffix("ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id, name, date_added").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var t models.Tag
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.Name, &t.DateAdded); err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &t, nil
}

// GetByID retrieves a tag by ID
func (r *TagRepository) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	sql, args, err := psql.Select("t.id", "t.name", "t.date_added").
		From("tags t").
		Where("t.id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var t models.Tag
	err = r.db.QueryRow(ctx, sql, args...).Scan(&t.ID, &t.Name, &t.DateAdded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &t, nil
}

// TagsByReflectionIDs loads the tags of each listed reflection in one round
// trip, keyed by reflection id.
func (r *TagRepository) TagsByReflectionIDs(ctx context.Context, reflectionIDs []int64) (map[int64][]models.Tag, error) {
	if len(reflectionIDs) == 0 {
		return map[int64][]models.Tag{}, nil
	}
	sql, args, err := psql.Select("rt.reflection_id", "t.id", "t.name", "t.date_added").
		From("reflection_tags rt").
		Join("tags t ON t.id = rt.tag_id").
		Where(map[string]any{"rt.reflection_id": reflectionIDs}).
		OrderBy("t.name ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]models.Tag, len(reflectionIDs))
	for rows.Next() {
		var reflectionID int64
		var t models.Tag
		if err := rows.Scan(&reflectionID, &t.ID, &t.Name, &t.DateAdded); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		result[reflectionID] = append(result[reflectionID], t)
	}
	return result, rows.Err()
}

// DeleteTag removes a tag together with its reflection links.
func (r *TagRepository) DeleteTag(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := psql.Delete("reflection_tags").Where("tag_id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	sql, args, err = psql.Delete("tags").Where("id = ?", id).ToSql()
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

// QueryTags lists tags through the tag filter surface.
func (r *TagRepository) QueryTags(ctx context.Context, filter map[string]any, sortParams []query.SortParam, pag *query.Pagination) ([]models.Tag, int64, error) {
	conds, _, err := tagRegistry.Parse(filter)
	if err != nil {
		return nil, 0, err
	}
	sorts, err := tagRegistry.ParseSorts(sortParams)
	if err != nil {
		return nil, 0, err
	}
	if _, err := tagRegistry.ParsePagination(pag); err != nil {
		return nil, 0, err
	}

	base := query.ApplyConditions(psql.Select("t.id", "t.name", "t.date_added").From("tags t"), conds)

	total, err := scanCount(ctx, r.db, query.ApplyConditions(psql.Select("COUNT(*)").From("tags t"), conds))
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

	var tags []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.DateAdded); err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, total, rows.Err()
}
