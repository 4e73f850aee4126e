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

// MessageRepository handles database operations for direct messages
type MessageRepository struct {
	db *pgxpool.Pool
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: db}
}

// CreateMessage persists a relayed message.
func (r *MessageRepository) CreateMessage(ctx context.Context, m *models.Message) error {
	sql, args, err := psql.Insert("messages").
		Columns("sender_id", "receiver_id", "content").
		Values(m.SenderID, m.ReceiverID, m.Content).
		Suffix("RETURNING id, datetime_sent").
		ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.DatetimeSent); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// GetMessageByID retrieves a message by ID
func (r *MessageRepository) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	sql, args, err := psql.Select("id", "sender_id", "receiver_id", "content", "datetime_sent").
		From("messages").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error building SQL: %w", err)
	}

	var m models.Message
	err = r.db.QueryRow(ctx, sql, args...).Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.DatetimeSent)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	return &m, nil
}

// DeleteMessage removes one message row.
func (r *MessageRepository) DeleteMessage(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete("messages").Where("id = ?", id).ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// QueryConversation pages through the messages exchanged between two
// profiles, newest first.
func (r *MessageRepository) QueryConversation(ctx context.Context, a, b int64, pag *query.Pagination) ([]models.Message, int64, error) {
	pred := "(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)"

	countB := psql.Select("COUNT(*)").From("messages").Where(pred, a, b, b, a)
	total, err := scanCount(ctx, r.db, countB)
	if err != nil {
		return nil, 0, err
	}

	base := psql.Select("id", "sender_id", "receiver_id", "content", "datetime_sent").
		From("messages").
		Where(pred, a, b, b, a).
		OrderBy("datetime_sent DESC")

	sql, args, err := query.ApplyPagination(base, pag).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.DatetimeSent); err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, total, rows.Err()
}
