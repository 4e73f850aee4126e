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
)

var profileColumns = []string{
	"p.id", "p.first_name", "p.last_name", "p.post_visibility",
	"p.is_moderator", "p.is_admin", "p.group_id", "p.avatar_id",
	"p.date_joined", "p.last_online",
}

// ProfileRepository handles database operations for profiles
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(
		&p.ID, &p.FirstName, &p.LastName, &p.PostVisibility,
		&p.IsModerator, &p.IsAdmin, &p.GroupID, &p.AvatarID,
		&p.DateJoined, &p.LastOnline,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts a profile and fills in its generated fields.
func (r *ProfileRepository) CreateProfile(ctx context.Context, p *models.Profile) error {
	sql, args, err := psql.Insert("profiles").
		Columns("first_name", "last_name", "post_visibility", "is_moderator", "is_admin").
		Values(p.FirstName, p.LastName, p.PostVisibility, p.IsModerator, p.IsAdmin).
		Suffix("RETURNING id, date_joined, last_online").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	return r.db.QueryRow(ctx, sql, args...).Scan(&p.ID, &p.DateJoined, &p.LastOnline)
}

// GetProfileByID retrieves a profile by ID
func (r *ProfileRepository) GetProfileByID(ctx context.Context, id int64) (*models.Profile, error) {
	sql, args, err := psql.Select(profileColumns...).
		From("profiles p").
		Where("p.id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	p, err := scanProfile(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return p, nil
}

// UpdateProfile persists the mutable profile fields.
func (r *ProfileRepository) UpdateProfile(ctx context.Context, p *models.Profile) error {
	sql, args, err := psql.Update("profiles").
		Set("first_name", p.FirstName).
		Set("last_name", p.LastName).
		Set("post_visibility", p.PostVisibility).
		Where("id = ?", p.ID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrProfileNotFound)
}

// SetModerator toggles the moderator flag
func (r *ProfileRepository) SetModerator(ctx context.Context, id int64, isModerator bool) error {
	sql, args, err := psql.Update("profiles").
		Set("is_moderator", isModerator).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrProfileNotFound)
}

// SetGroup moves a profile into a group, or out of any group when nil.
func (r *ProfileRepository) SetGroup(ctx context.Context, id int64, groupID *string) error {
	sql, args, err := psql.Update("profiles").
		Set("group_id", groupID).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrProfileNotFound)
}

// SetAvatar points the profile at a stored avatar, or clears it when nil.
func (r *ProfileRepository) SetAvatar(ctx context.Context, id int64, avatarID *string) error {
	sql, args, err := psql.Update("profiles").
		Set("avatar_id", avatarID).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrProfileNotFound)
}

// TouchLastOnline refreshes the profile's last activity timestamp.
func (r *ProfileRepository) TouchLastOnline(ctx context.Context, id int64) error {
	sql, args, err := psql.Update("profiles").
		Set("last_online", squirrel.Expr("now()")).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

// DeleteProfile removes a profile row. Dependent rows are removed by the
// owning services before this is called.
func (r *ProfileRepository) DeleteProfile(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("profiles").Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrProfileNotFound)
}

// QueryProfiles lists profiles through the profile filter surface.
func (r *ProfileRepository) QueryProfiles(ctx context.Context, filter map[string]any, sortParams []query.SortParam, pag *query.Pagination) ([]models.Profile, int64, error) {
	conds, joins, err := profileRegistry.Parse(filter)
	if err != nil {
		return nil, 0, err
	}
	sorts, err := profileRegistry.ParseSorts(sortParams)
	if err != nil {
		return nil, 0, err
	}
	if _, err := profileRegistry.ParsePagination(pag); err != nil {
		return nil, 0, err
	}

	base := psql.Select(profileColumns...).From("profiles p")
	base = query.ApplyJoins(base, profileRegistry, joins)
	base = query.ApplyConditions(base, conds)

	total, err := r.countProfiles(ctx, conds)
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

	var profiles []models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, total, rows.Err()
}

func (r *ProfileRepository) countProfiles(ctx context.Context, conds []query.Condition) (int64, error) {
	b := psql.Select("COUNT(*)").From("profiles p")
	sql, args, err := query.ApplyConditions(b, conds).ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return total, nil
}
