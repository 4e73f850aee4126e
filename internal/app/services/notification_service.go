package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/pkg/apperrors"
)

// NotificationService defines the interface for notification operations
type NotificationService interface {
	Send(ctx context.Context, actor *models.Profile, req *dto.SendNotificationRequest) (*models.Notification, error)
	GetNotification(ctx context.Context, actor *models.Profile, id int64) (*models.Notification, error)
	QueryMine(ctx context.Context, actor *models.Profile, req *dto.QueryRequest) ([]models.Notification, int64, error)
	QueryPosted(ctx context.Context, actor *models.Profile, req *dto.QueryRequest) ([]models.Notification, int64, error)
	UpdateNotification(ctx context.Context, actor *models.Profile, id int64, content string) (*models.Notification, error)
	DeleteNotification(ctx context.Context, actor *models.Profile, id int64) error
	MarkRead(ctx context.Context, actor *models.Profile, notificationID int64, read bool) error
	UnreadCount(ctx context.Context, actor *models.Profile) (int64, error)
}

// notificationServiceImpl implements NotificationService
type notificationServiceImpl struct {
	notifications NotificationStore
	profiles      ProfileStore
	logger        zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notifications NotificationStore, profiles ProfileStore, logger zerolog.Logger) NotificationService {
	return &notificationServiceImpl{notifications: notifications, profiles: profiles, logger: logger}
}

// Send fans a notification out to the requested recipients. Every recipient
// id must resolve to a profile; one invalid id aborts the whole send and the
// error names it.
func (s *notificationServiceImpl) Send(ctx context.Context, actor *models.Profile, req *dto.SendNotificationRequest) (*models.Notification, error) {
	for _, id := range req.RecipientIDs {
		if _, err := s.profiles.GetProfileByID(ctx, id); err != nil {
			if errors.Is(err, apperrors.ErrProfileNotFound) {
				return nil, apperrors.NewBadRequestError(fmt.Sprintf("recipient %d does not exist", id))
			}
			return nil, err
		}
	}

	notification := &models.Notification{
		ProfileID: actor.ID,
		Content:   req.Content,
	}
	if err := s.notifications.CreateNotification(ctx, notification, req.RecipientIDs); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("notificationId", notification.ID).Int("recipients", len(req.RecipientIDs)).Msg("notification sent")
	return notification, nil
}

// GetNotification retrieves one notification. Recipients see it annotated
// with their own read flag; otherwise only the author and role holders may
// look.
func (s *notificationServiceImpl) GetNotification(ctx context.Context, actor *models.Profile, id int64) (*models.Notification, error) {
	notification, err := s.notifications.GetNotificationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, rec := range notification.Recipients {
		if rec.ProfileID == actor.ID {
			read := rec.Read
			notification.Read = &read
			return notification, nil
		}
	}
	if notification.ProfileID == actor.ID || actor.HasRole() {
		return notification, nil
	}
	return nil, apperrors.NewForbiddenError("permission denied")
}

// QueryMine lists the caller's notifications with their read flags.
func (s *notificationServiceImpl) QueryMine(ctx context.Context, actor *models.Profile, req *dto.QueryRequest) ([]models.Notification, int64, error) {
	return s.notifications.QueryForRecipient(ctx, actor.ID, req.Filter, req.Sort, req.Pagination)
}

// QueryPosted lists the notifications the caller authored.
func (s *notificationServiceImpl) QueryPosted(ctx context.Context, actor *models.Profile, req *dto.QueryRequest) ([]models.Notification, int64, error) {
	return s.notifications.QueryPosted(ctx, actor.ID, req.Filter, req.Sort, req.Pagination)
}

// UpdateNotification rewrites the content; author or role holder.
func (s *notificationServiceImpl) UpdateNotification(ctx context.Context, actor *models.Profile, id int64, content string) (*models.Notification, error) {
	notification, err := s.notifications.GetNotificationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notification.ProfileID != actor.ID && !actor.HasRole() {
		return nil, apperrors.NewForbiddenError("permission denied")
	}
	notification.Content = content
	if err := s.notifications.UpdateNotification(ctx, notification); err != nil {
		return nil, err
	}
	return notification, nil
}

// DeleteNotification removes a notification and its recipient edges; author
// or role holder.
func (s *notificationServiceImpl) DeleteNotification(ctx context.Context, actor *models.Profile, id int64) error {
	notification, err := s.notifications.GetNotificationByID(ctx, id)
	if err != nil {
		return err
	}
	if notification.ProfileID != actor.ID && !actor.HasRole() {
		return apperrors.NewForbiddenError("permission denied")
	}
	return s.notifications.DeleteNotification(ctx, id)
}

// MarkRead flips the caller's read flag on one notification. Only the
// recipient's own edge is touched; other recipients are unaffected.
func (s *notificationServiceImpl) MarkRead(ctx context.Context, actor *models.Profile, notificationID int64, read bool) error {
	return s.notifications.SetRead(ctx, notificationID, actor.ID, read)
}

// UnreadCount returns the caller's number of unread notifications.
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, actor *models.Profile) (int64, error) {
	return s.notifications.CountUnread(ctx, actor.ID)
}
