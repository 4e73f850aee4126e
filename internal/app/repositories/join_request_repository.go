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

// JoinRequestRepository handles database operations for pending group
// membership requests.
type JoinRequestRepository struct {
	db *pgxpool.Pool
}

// NewJoinRequestRepository creates a new JoinRequestRepository
func NewJoinRequestRepository(db *pgxpool.Pool) *JoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

// Create stores a pending request; duplicate (group, profile) pairs conflict.
func (r *JoinRequestRepository) Create(ctx context.Context, req *models.GroupJoinRequest) error {
	sql, args, err := psql.Insert("group_join_requests").
		Columns("group_id", "profile_id").
		Values(req.GroupID, req.ProfileID).
		Suffix("RETURNING date_added").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&req.DateAdded); err != nil {
		if dberrors.IsUniqueViolation(err) {
			return apperrors.ErrDuplicateJoinRequest
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.ErrGroupNotFound
		}
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// Get retrieves one pending request.
func (r *JoinRequestRepository) Get(ctx context.Context, groupID string, profileID int64) (*models.GroupJoinRequest, error) {
	sql, args, err := psql.Select("group_id", "profile_id", "date_added").
		From("group_join_requests").
		Where("group_id = ? AND profile_id = ?", groupID, profileID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var req models.GroupJoinRequest
	err = r.db.QueryRow(ctx, sql, args...).Scan(&req.GroupID, &req.ProfileID, &req.DateAdded)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrJoinRequestNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &req, nil
}

// ListByGroup returns the pending requests for a group with the requesting
// profiles attached, oldest first.
func (r *JoinRequestRepository) ListByGroup(ctx context.Context, groupID string) ([]models.GroupJoinRequest, error) {
	cols := append([]string{"jr.group_id", "jr.profile_id", "jr.date_added"}, profileColumns...)
	sql, args, err := psql.Select(cols...).
		From("group_join_requests jr").
		Join("profiles p ON p.id = jr.profile_id").
		Where("jr.group_id = ?", groupID).
		OrderBy("jr.date_added ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var requests []models.GroupJoinRequest
	for rows.Next() {
		var req models.GroupJoinRequest
		var p models.Profile
		err := rows.Scan(
			&req.GroupID, &req.ProfileID, &req.DateAdded,
			&p.ID, &p.FirstName, &p.LastName, &p.PostVisibility,
			&p.IsModerator, &p.IsAdmin, &p.GroupID, &p.AvatarID,
			&p.DateJoined, &p.LastOnline,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		req.Profile = &p
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// ListByProfile returns the profile's own pending requests.
func (r *JoinRequestRepository) ListByProfile(ctx context.Context, profileID int64) ([]models.GroupJoinRequest, error) {
	sql, args, err := psql.Select("group_id", "profile_id", "date_added").
		From("group_join_requests").
		Where("profile_id = ?", profileID).
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

	var requests []models.GroupJoinRequest
	for rows.Next() {
		var req models.GroupJoinRequest
		if err := rows.Scan(&req.GroupID, &req.ProfileID, &req.DateAdded); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// Delete removes one pending request.
func (r *JoinRequestRepository) Delete(ctx context.Context, groupID string, profileID int64) error {
	sql, args, err := psql.Delete("group_join_requests").
		Where("group_id = ? AND profile_id = ?", groupID, profileID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.ErrJoinRequestNotFound)
}

// DeleteAllForProfile drops every pending request posted by a profile, used
// when the profile joins a group or is removed.
func (r *JoinRequestRepository) DeleteAllForProfile(ctx context.Context, profileID int64) error {
	sql, args, err := psql.Delete("group_join_requests").
		Where("profile_id = ?", profileID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// DeleteAllForGroup drops every pending request aimed at a group.
func (r *JoinRequestRepository) DeleteAllForGroup(ctx context.Context, groupID string) error {
	sql, args, err := psql.Delete("group_join_requests").
		Where("group_id = ?", groupID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}
