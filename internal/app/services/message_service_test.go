package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/pkg/apperrors"
)

type stubMessageStore struct {
	MessageStore
	messages map[int64]*models.Message
	nextID   int64
}

func (s *stubMessageStore) CreateMessage(_ context.Context, m *models.Message) error {
	s.nextID++
	m.ID = s.nextID
	m.DatetimeSent = time.Now()
	if s.messages == nil {
		s.messages = map[int64]*models.Message{}
	}
	s.messages[m.ID] = m
	return nil
}

func (s *stubMessageStore) GetMessageByID(_ context.Context, id int64) (*models.Message, error) {
	if m, ok := s.messages[id]; ok {
		return m, nil
	}
	return nil, apperrors.ErrResourceNotFound
}

func (s *stubMessageStore) DeleteMessage(_ context.Context, id int64) error {
	if _, ok := s.messages[id]; !ok {
		return apperrors.ErrResourceNotFound
	}
	delete(s.messages, id)
	return nil
}

func newMessageService(messages *stubMessageStore, profiles *stubProfileStore) MessageService {
	return NewMessageService(messages, profiles, zerolog.Nop())
}

func TestSaveMessageRequiresExistingReceiver(t *testing.T) {
	messages := &stubMessageStore{}
	profiles := &stubProfileStore{profiles: map[int64]*models.Profile{
		1: {ID: 1, FirstName: "Ada"},
	}}
	svc := newMessageService(messages, profiles)

	_, err := svc.SaveMessage(context.Background(), 1, 99, "hello")
	assert.ErrorIs(t, err, apperrors.ErrProfileNotFound)
	assert.Empty(t, messages.messages)
}

func TestDeleteMessageSenderOwned(t *testing.T) {
	messages := &stubMessageStore{}
	profiles := &stubProfileStore{profiles: map[int64]*models.Profile{
		1: {ID: 1, FirstName: "Ada"},
		2: {ID: 2, FirstName: "Grace"},
	}}
	svc := newMessageService(messages, profiles)

	saved, err := svc.SaveMessage(context.Background(), 1, 2, "hello")
	require.NoError(t, err)

	// only the sender may delete
	_, err = svc.DeleteMessage(context.Background(), 2, saved.ID)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	require.Contains(t, messages.messages, saved.ID)

	deleted, err := svc.DeleteMessage(context.Background(), 1, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, deleted.ID)
	assert.Equal(t, int64(2), deleted.ReceiverID)
	assert.NotContains(t, messages.messages, saved.ID)
}

func TestDeleteMessageMissing(t *testing.T) {
	svc := newMessageService(&stubMessageStore{}, &stubProfileStore{})

	_, err := svc.DeleteMessage(context.Background(), 1, 42)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
