package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/query"
	"github.com/casportal/casportal/internal/pkg/apperrors"
)

// MessageService defines the interface for direct message operations
type MessageService interface {
	SaveMessage(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error)
	DeleteMessage(ctx context.Context, senderID, messageID int64) (*models.Message, error)
	Conversation(ctx context.Context, actor *models.Profile, otherID int64, pag *query.Pagination) ([]models.Message, int64, error)
}

// messageServiceImpl implements MessageService
type messageServiceImpl struct {
	messages MessageStore
	profiles ProfileStore
	logger   zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(messages MessageStore, profiles ProfileStore, logger zerolog.Logger) MessageService {
	return &messageServiceImpl{messages: messages, profiles: profiles, logger: logger}
}

// SaveMessage persists a relayed message after checking the receiver exists.
func (s *messageServiceImpl) SaveMessage(ctx context.Context, senderID, receiverID int64, content string) (*models.Message, error) {
	if content == "" {
		return nil, apperrors.NewValidationError("message content is required")
	}
	if _, err := s.profiles.GetProfileByID(ctx, receiverID); err != nil {
		return nil, err
	}
	m := &models.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.messages.CreateMessage(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteMessage removes a message on the sender's request and returns the
// deleted row so the relay can notify both sides.
func (s *messageServiceImpl) DeleteMessage(ctx context.Context, senderID, messageID int64) (*models.Message, error) {
	m, err := s.messages.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if m.SenderID != senderID {
		return nil, apperrors.NewForbiddenError("only the sender can delete a message")
	}
	if err := s.messages.DeleteMessage(ctx, messageID); err != nil {
		return nil, err
	}
	return m, nil
}

// Conversation pages the messages between the caller and another profile.
func (s *messageServiceImpl) Conversation(ctx context.Context, actor *models.Profile, otherID int64, pag *query.Pagination) ([]models.Message, int64, error) {
	return s.messages.QueryConversation(ctx, actor.ID, otherID, pag)
}
