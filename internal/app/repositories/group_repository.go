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

var groupColumns = []string{
	"g.id", "g.coordinator_id", "g.name", "g.graduation_year",
	"g.description", "g.avatar_id", "g.date_created",
}

// GroupRepository handles database operations for groups
type GroupRepository struct {
	db *pgxpool.Pool
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

func scanGroup(row pgx.Row) (*models.Group, error) {
	var g models.Group
	err := row.Scan(
		&g.ID, &g.CoordinatorID, &g.Name, &g.GraduationYear,
		&g.Description, &g.AvatarID, &g.DateCreated,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGroup inserts a group with its caller-generated token id.
func (r *GroupRepository) CreateGroup(ctx context.Context, g *models.Group) error {
	sql, args, err := psql.Insert("groups").
		Columns("id", "coordinator_id", "name", "graduation_year", "description").
		Values(g.ID, g.CoordinatorID, g.Name, g.GraduationYear, g.Description).
		Suffix("RETURNING date_created").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&g.DateCreated); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrAlreadyCoordinator
		}
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// GetGroupByID retrieves a group by its token id
func (r *GroupRepository) GetGroupByID(ctx context.Context, id string) (*models.Group, error) {
	return r.get(ctx, "g.id = ?", id)
}

// GetGroupByCoordinator retrieves the group a profile coordinates, if any.
func (r *GroupRepository) GetGroupByCoordinator(ctx context.Context, profileID int64) (*models.Group, error) {
	return r.get(ctx, "g.coordinator_id = ?", profileID)
}

func (r *GroupRepository) get(ctx context.Context, pred string, arg any) (*models.Group, error) {
	sql, args, err := psql.Select(groupColumns...).
		From("groups g").
		Where(pred, arg).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	g, err := scanGroup(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return g, nil
}

// UpdateGroup persists the mutable group fields.
func (r *GroupRepository) UpdateGroup(ctx context.Context, g *models.Group) error {
	sql, args, err := psql.Update("groups").
		Set("name", g.Name).
		Set("graduation_year", g.GraduationYear).
		Set("description", g.Description).
		Where("id = ?", g.ID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrGroupNotFound)
}

// SetAvatar points the group at a stored avatar, or clears it when nil.
func (r *GroupRepository) SetAvatar(ctx context.Context, id string, avatarID *string) error {
	sql, args, err := psql.Update("groups").
		Set("avatar_id", avatarID).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrGroupNotFound)
}

// DeleteGroup removes the group row. Membership links are detached by the
// owning service first.
func (r *GroupRepository) DeleteGroup(ctx context.Context, id string) error {
	sql, args, err := psql.Delete("groups").Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrGroupNotFound)
}

// DetachMembers moves every member out of the group.
func (r *GroupRepository) DetachMembers(ctx context.Context, id string) error {
	sql, args, err := psql.Update("profiles").
		Set("group_id", nil).
		Where("group_id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// QueryGroups lists groups through the group filter surface.
func (r *GroupRepository) QueryGroups(ctx context.Context, filter map[string]any, sortParams []query.SortParam, pag *query.Pagination) ([]models.Group, int64, error) {
	conds, joins, err := groupRegistry.Parse(filter)
	if err != nil {
		return nil, 0, err
	}
	sorts, err := groupRegistry.ParseSorts(sortParams)
	if err != nil {
		return nil, 0, err
	}
	if _, err := groupRegistry.ParsePagination(pag); err != nil {
		return nil, 0, err
	}

	base := psql.Select(groupColumns...).From("groups g")
	base = query.ApplyJoins(base, groupRegistry, joins)
	base = query.ApplyConditions(base, conds)

	countB := psql.Select("COUNT(*)").From("groups g")
	countB = query.ApplyJoins(countB, groupRegistry, joins)
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

	var groups []models.Group
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		groups = append(groups, *g)
	}
	return groups, total, rows.Err()
}
