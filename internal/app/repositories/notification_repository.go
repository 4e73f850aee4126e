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

// NotificationRepository handles database operations for notifications and
// their per-recipient read state.
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateNotification stores the notification and one recipient row per id in
// a single transaction, so a partial fan-out can never be observed.
func (r *NotificationRepository) CreateNotification(ctx context.Context, n *models.Notification, recipientIDs []int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	sql, args, err := psql.Insert("notifications").
		Columns("profile_id", "content").
		Values(n.ProfileID, n.Content).
		Suffix("RETURNING id, date_sent").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := tx.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.DateSent); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	insert := psql.Insert("notification_recipients").Columns("notification_id", "profile_id")
	for _, id := range recipientIDs {
		insert = insert.Values(n.ID, id)
	}
	sql, args, err = insert.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return tx.Commit(ctx)
}

// GetNotificationByID retrieves a notification with its recipient rows.
func (r *NotificationRepository) GetNotificationByID(ctx context.Context, id int64) (*models.Notification, error) {
	sql, args, err := psql.Select("n.id", "n.profile_id", "n.content", "n.date_sent").
		From("notifications n").
		Where("n.id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var n models.Notification
	err = r.db.QueryRow(ctx, sql, args...).Scan(&n.ID, &n.ProfileID, &n.Content, &n.DateSent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("notification not found")
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	sql, args, err = psql.Select("id", "notification_id", "profile_id", "read").
		From("notification_recipients").
		Where("notification_id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rec models.NotificationRecipient
		if err := rows.Scan(&rec.ID, &rec.NotificationID, &rec.ProfileID, &rec.Read); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		n.Recipients = append(n.Recipients, rec)
	}
	return &n, rows.Err()
}

// QueryForRecipient lists the notifications addressed to a profile through
// the notification filter surface, annotated with the profile's read flag.
func (r *NotificationRepository) QueryForRecipient(ctx context.Context, profileID int64, filter map[string]any, sortParams []query.SortParam, pag *query.Pagination) ([]models.Notification, int64, error) {
	conds, _, err := notificationRegistry.Parse(filter)
	if err != nil {
		return nil, 0, err
	}
	sorts, err := notificationRegistry.ParseSorts(sortParams)
	if err != nil {
		return nil, 0, err
	}
	if _, err := notificationRegistry.ParsePagination(pag); err != nil {
		return nil, 0, err
	}

	base := psql.Select("n.id", "n.profile_id", "n.content", "n.date_sent", "nr.read").
		From("notifications n").
		Join("notification_recipients nr ON nr.notification_id = n.id").
		Where("nr.profile_id = ?", profileID)
	base = query.ApplyConditions(base, conds)

	countB := psql.Select("COUNT(*)").
		From("notifications n").
		Join("notification_recipients nr ON nr.notification_id = n.id").
		Where("nr.profile_id = ?", profileID)
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

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		var read bool
		if err := rows.Scan(&n.ID, &n.ProfileID, &n.Content, &n.DateSent, &read); err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		n.Read = &read
		notifications = append(notifications, n)
	}
	return notifications, total, rows.Err()
}

// QueryPosted lists the notifications a profile authored through the
// notification filter surface.
func (r *NotificationRepository) QueryPosted(ctx context.Context, profileID int64, filter map[string]any, sortParams []query.SortParam, pag *query.Pagination) ([]models.Notification, int64, error) {
	conds, _, err := notificationPostedRegistry.Parse(filter)
	if err != nil {
		return nil, 0, err
	}
	sorts, err := notificationPostedRegistry.ParseSorts(sortParams)
	if err != nil {
		return nil, 0, err
	}
	if _, err := notificationPostedRegistry.ParsePagination(pag); err != nil {
		return nil, 0, err
	}

	base := psql.Select("n.id", "n.profile_id", "n.content", "n.date_sent").
		From("notifications n").
		Where("n.profile_id = ?", profileID)
	base = query.ApplyConditions(base, conds)

	countB := psql.Select("COUNT(*)").
		From("notifications n").
		Where("n.profile_id = ?", profileID)
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

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.ProfileID, &n.Content, &n.DateSent); err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, total, rows.Err()
}

// UpdateNotification rewrites a notification's content.
func (r *NotificationRepository) UpdateNotification(ctx context.Context, n *models.Notification) error {
	sql, args, err := psql.Update("notifications").
		Set("content", n.Content).
		Where("id = ?", n.ID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.NewResourceNotFoundError("notification not found"))
}

// DeleteNotification removes a notification and all its recipient rows.
func (r *NotificationRepository) DeleteNotification(ctx context.Context, id int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, b := range []squirrel.DeleteBuilder{
		psql.Delete("notification_recipients").Where("notification_id = ?", id),
		psql.Delete("notifications").Where("id = ?", id),
	} {
		sql, args, err := b.ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// SetRead updates the recipient's read flag on one notification.
func (r *NotificationRepository) SetRead(ctx context.Context, notificationID, profileID int64, read bool) error {
	sql, args, err := psql.Update("notification_recipients").
		Set("read", read).
		Where("notification_id = ? AND profile_id = ?", notificationID, profileID).
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	return execExpectingRow(ctx, r.db, sql, args, apperrors.NewResourceNotFoundError("notification not found"))
}

// CountUnread returns how many notifications the profile has not read.
func (r *NotificationRepository) CountUnread(ctx context.Context, profileID int64) (int64, error) {
	b := psql.Select("COUNT(*)").
		From("notification_recipients").
		Where("profile_id = ? AND read = false", profileID)
	return scanCount(ctx, r.db, b)
}

// DeleteForProfile removes the profile's notification edges and any
// notifications it authored.
func (r *NotificationRepository) DeleteForProfile(ctx context.Context, profileID int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, b := range []squirrel.DeleteBuilder{
		psql.Delete("notification_recipients").Where("profile_id = ?", profileID),
		psql.Delete("notification_recipients").
			Where("notification_id IN (SELECT id FROM notifications WHERE profile_id = ?)", profileID),
		psql.Delete("notifications").Where("profile_id = ?", profileID),
	} {
		sql, args, err := b.ToSql()
		if err != nil {
			return fmt.Errorf("error building SQL: %w", err)
		}
		if _, err := tx.Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("error executing query: %w", err)
		}
	}
	return tx.Commit(ctx)
}
