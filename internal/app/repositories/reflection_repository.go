package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/query"
	"github.com/casportal/casportal/internal/pkg/apperrors"
	"github.com/casportal/casportal/internal/pkg/dberrors"
)

var reflectionColumns = []string{
	"r.id", "r.profile_id", "r.title", "r.text_content", "r.slug",
	"r.post_visibility", "r.creativity", "r.activity", "r.service",
	"r.date_added",
}

// authorColumns mirror profileColumns under the "ap" alias used by
// reflection queries.
var authorColumns = []string{
	"ap.id", "ap.first_name", "ap.last_name", "ap.post_visibility",
	"ap.is_moderator", "ap.is_admin", "ap.group_id", "ap.avatar_id",
	"ap.date_joined", "ap.last_online",
}

// ReflectionRepository handles database operations for reflections, their
// tags and their favourite links.
type ReflectionRepository struct {
	db *pgxpool.Pool
}

// NewReflectionRepository creates a new ReflectionRepository
func NewReflectionRepository(db *pgxpool.Pool) *ReflectionRepository {
	return &ReflectionRepository{db: db}
}

// CreateReflection inserts a reflection and fills its generated fields.
func (r *ReflectionRepository) CreateReflection(ctx context.Context, ref *models.Reflection) error {
	sql, args, err := psql.Insert("reflections").
		Columns("profile_id", "title", "text_content", "slug", "post_visibility",
			"creativity", "activity", "service").
		Values(ref.ProfileID, ref.Title, ref.TextContent, ref.Slug, ref.PostVisibility,
			ref.Creativity, ref.Activity, ref.Service).
		Suffix("RETURNING id, date_added").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&ref.ID, &ref.DateAdded); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.NewConflictError("a reflection with this slug already exists")
		}
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// selectReflections is the shared base: reflections joined with their author
// (and the author's group, for coordinator scoping) plus the caller's
// favourite annotation.
func (r *ReflectionRepository) selectReflections(actorID int64) squirrel.SelectBuilder {
	cols := append(append([]string{}, reflectionColumns...), authorColumns...)
	return psql.Select(cols...).
		Column("EXISTS (SELECT 1 FROM reflection_favourites f WHERE f.reflection_id = r.id AND f.profile_id = ?) AS is_favourite", actorID).
		From("reflections r").
		Join("profiles ap ON ap.id = r.profile_id").
		LeftJoin("groups ag ON ag.id = ap.group_id")
}

func scanReflection(row pgx.Row) (*models.Reflection, error) {
	var ref models.Reflection
	var author models.Profile
	err := row.Scan(
		&ref.ID, &ref.ProfileID, &ref.Title, &ref.TextContent, &ref.Slug,
		&ref.PostVisibility, &ref.Creativity, &ref.Activity, &ref.Service,
		&ref.DateAdded,
		&author.ID, &author.FirstName, &author.LastName, &author.PostVisibility,
		&author.IsModerator, &author.IsAdmin, &author.GroupID, &author.AvatarID,
		&author.DateJoined, &author.LastOnline,
		&ref.IsFavourite,
	)
	if err != nil {
		return nil, err
	}
	ref.Author = &author
	return &ref, nil
}

// GetReflectionByID retrieves a reflection with its author. The actor id
// only feeds the favourite annotation; pass 0 when no actor applies.
func (r *ReflectionRepository) GetReflectionByID(ctx context.Context, id, actorID int64) (*models.Reflection, error) {
	return r.get(ctx, actorID, "r.id = ?", id)
}

// GetReflectionBySlug retrieves a reflection by its URL slug.
func (r *ReflectionRepository) GetReflectionBySlug(ctx context.Context, slug string, actorID int64) (*models.Reflection, error) {
	return r.get(ctx, actorID, "r.slug = ?", slug)
}

func (r *ReflectionRepository) get(ctx context.Context, actorID int64, pred string, arg any) (*models.Reflection, error) {
	sql, args, err := r.selectReflections(actorID).Where(pred, arg).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	ref, err := scanReflection(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrReflectionNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return ref, nil
}

// UpdateReflection persists the mutable reflection fields.
func (r *ReflectionRepository) UpdateReflection(ctx context.Context, ref *models.Reflection) error {
	sql, args, err := psql.Update("reflections").
		Set("title", ref.Title).
		Set("text_content", ref.TextContent).
		Set("slug", ref.Slug).
		Set("post_visibility", ref.PostVisibility).
		Set("creativity", ref.Creativity).
		Set("activity", ref.Activity).
		Set("service", ref.Service).
		Where("id = ?", ref.ID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrReflectionNotFound)
}

// DeleteReflection removes the reflection row together with its tag and
// favourite links; comments, attachments and reports are cleared by the
// owning service.
func (r *ReflectionRepository) DeleteReflection(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"reflection_tags", "reflection_favourites"} {
		sql, args, err := psql.Delete(table).Where("reflection_id = ?", id).ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
	}

	sql, args, err := psql.Delete("reflections").Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	tag, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrReflectionNotFound
	}
	return tx.Commit(ctx)
}

// QueryReflections lists reflections visible under scope through the
// reflection filter surface. A nil scope means no visibility restriction.
func (r *ReflectionRepository) QueryReflections(ctx context.Context, actorID int64, scope squirrel.Sqlizer, filter map[string]any, sortParams []query.SortParam, pag *query.Pagination) ([]models.Reflection, int64, error) {
	conds, joins, err := reflectionRegistry.Parse(filter)
	if err != nil {
		return nil, 0, err
	}
	sorts, err := reflectionRegistry.ParseSorts(sortParams)
	if err != nil {
		return nil, 0, err
	}
	if _, err := reflectionRegistry.ParsePagination(pag); err != nil {
		return nil, 0, err
	}

	base := r.selectReflections(actorID)
	base = query.ApplyJoins(base, reflectionRegistry, joins)
	base = query.ApplyConditions(base, conds)
	if scope != nil {
		base = base.Where(scope)
	}
	if len(joins) > 0 {
		// the tags join can multiply rows
		base = base.Distinct()
	}

	countB := psql.Select("COUNT(DISTINCT r.id)").
		From("reflections r").
		Join("profiles ap ON ap.id = r.profile_id").
		LeftJoin("groups ag ON ag.id = ap.group_id")
	countB = query.ApplyJoins(countB, reflectionRegistry, joins)
	countB = query.ApplyConditions(countB, conds)
	if scope != nil {
		countB = countB.Where(scope)
	}
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

	var reflections []models.Reflection
	for rows.Next() {
		ref, err := scanReflection(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		reflections = append(reflections, *ref)
	}
	return reflections, total, rows.Err()
}

// QueryFavourites lists the actor's favourited reflections, newest first.
func (r *ReflectionRepository) QueryFavourites(ctx context.Context, actorID int64, pag *query.Pagination) ([]models.Reflection, int64, error) {
	if _, err := reflectionRegistry.ParsePagination(pag); err != nil {
		return nil, 0, err
	}

	base := r.selectReflections(actorID).
		Join("reflection_favourites rf ON rf.reflection_id = r.id").
		Where("rf.profile_id = ?", actorID).
		OrderBy("r.date_added DESC")

	countB := psql.Select("COUNT(*)").
		From("reflection_favourites rf").
		Where("rf.profile_id = ?", actorID)
	total, err := scanCount(ctx, r.db, countB)
	if err != nil {
		return nil, 0, err
	}

	sql, args, err := query.ApplyPagination(base, pag).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var reflections []models.Reflection
	for rows.Next() {
		ref, err := scanReflection(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		reflections = append(reflections, *ref)
	}
	return reflections, total, rows.Err()
}

// IsFavourite reports whether the profile has favourited the reflection.
func (r *ReflectionRepository) IsFavourite(ctx context.Context, reflectionID, profileID int64) (bool, error) {
	sql, args, err := psql.Select("1").
		From("reflection_favourites").
		Where("reflection_id = ? AND profile_id = ?", reflectionID, profileID).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("error building SQL: %w", err)
	}
	var one int
	err = r.db.QueryRow(ctx, sql, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error executing query: %w", err)
	}
	return true, nil
}

// AddFavourite links the profile to the reflection.
func (r *ReflectionRepository) AddFavourite(ctx context.Context, reflectionID, profileID int64) error {
	sql, args, err := psql.Insert("reflection_favourites").
		Columns("reflection_id", "profile_id").
		Values(reflectionID, profileID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrAlreadyFavourited
		}
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// RemoveFavourite unlinks the profile from the reflection.
func (r *ReflectionRepository) RemoveFavourite(ctx context.Context, reflectionID, profileID int64) error {
	sql, args, err := psql.Delete("reflection_favourites").
		Where("reflection_id = ? AND profile_id = ?", reflectionID, profileID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrNotFavourited)
}

// RemoveFavouritesOf drops every favourite link held by a profile.
func (r *ReflectionRepository) RemoveFavouritesOf(ctx context.Context, profileID int64) error {
	sql, args, err := psql.Delete("reflection_favourites").Where("profile_id = ?", profileID).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// ListIDsByProfile returns the ids of every reflection authored by a profile.
func (r *ReflectionRepository) ListIDsByProfile(ctx context.Context, profileID int64) ([]int64, error) {
	sql, args, err := psql.Select("id").From("reflections").Where("profile_id = ?", profileID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetTags replaces the reflection's tag links with the given tag ids.
func (r *ReflectionRepository) SetTags(ctx context.Context, reflectionID int64, tagIDs []int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := psql.Delete("reflection_tags").Where("reflection_id = ?", reflectionID).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	if len(tagIDs) > 0 {
		insert := psql.Insert("reflection_tags").Columns("reflection_id", "tag_id")
		for _, tagID := range tagIDs {
			insert = insert.Values(reflectionID, tagID)
		}
		sql, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
	}
	return tx.Commit(ctx)
}
