package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/pkg/apperrors"
)

func newNotificationService(notifications *stubNotificationStore, profiles *stubProfileStore) NotificationService {
	return NewNotificationService(notifications, profiles, zerolog.Nop())
}

func TestSendNotificationFanOut(t *testing.T) {
	profiles := &stubProfileStore{profiles: map[int64]*models.Profile{
		1: {ID: 1}, 2: {ID: 2}, 3: {ID: 3},
	}}
	notifications := &stubNotificationStore{}
	svc := newNotificationService(notifications, profiles)

	sender := &models.Profile{ID: 1, IsModerator: true}
	n, err := svc.Send(context.Background(), sender, &dto.SendNotificationRequest{
		Content:      "Reminder: reflections due Friday.",
		RecipientIDs: []int64{2, 3},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.ProfileID)

	require.Len(t, notifications.sent, 1)
	assert.Equal(t, []int64{2, 3}, notifications.sent[0].recipients)
}

func TestSendNotificationInvalidRecipientAborts(t *testing.T) {
	profiles := &stubProfileStore{profiles: map[int64]*models.Profile{
		1: {ID: 1}, 2: {ID: 2},
	}}
	notifications := &stubNotificationStore{}
	svc := newNotificationService(notifications, profiles)

	sender := &models.Profile{ID: 1, IsModerator: true}
	_, err := svc.Send(context.Background(), sender, &dto.SendNotificationRequest{
		Content:      "hello",
		RecipientIDs: []int64{2, 42},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Contains(t, err.Error(), "recipient 42 does not exist")
	// nothing was written, including for the valid recipient
	assert.Empty(t, notifications.sent)
}
