package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	ProfileRepository          *ProfileRepository
	CredentialRepository       *CredentialRepository
	ConfirmationCodeRepository *ConfirmationCodeRepository
	GroupRepository            *GroupRepository
	JoinRequestRepository      *JoinRequestRepository
	ReflectionRepository       *ReflectionRepository
	TagRepository              *TagRepository
	CommentRepository          *CommentRepository
	NotificationRepository     *NotificationRepository
	AttachmentRepository       *AttachmentRepository
	AvatarRepository           *AvatarRepository
	MessageRepository          *MessageRepository
	ReportRepository           *ReportRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		ProfileRepository:          NewProfileRepository(db),
		CredentialRepository:       NewCredentialRepository(db),
		ConfirmationCodeRepository: NewConfirmationCodeRepository(db),
		GroupRepository:            NewGroupRepository(db),
		JoinRequestRepository:      NewJoinRequestRepository(db),
		ReflectionRepository:       NewReflectionRepository(db),
		TagRepository:              NewTagRepository(db),
		CommentRepository:          NewCommentRepository(db),
		NotificationRepository:     NewNotificationRepository(db),
		AttachmentRepository:       NewAttachmentRepository(db),
		AvatarRepository:           NewAvatarRepository(db),
		MessageRepository:          NewMessageRepository(db),
		ReportRepository:           NewReportRepository(db),
	}
}

// scanCount runs a COUNT(*) builder and returns its single value.
func scanCount(ctx context.Context, db *pgxpool.Pool, b squirrel.SelectBuilder) (int64, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}
	var total int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return total, nil
}
