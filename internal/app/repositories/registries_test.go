package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casportal/casportal/internal/app/query"
	"github.com/casportal/casportal/internal/pkg/apperrors"
)

func TestNotificationPostedRegistryRejectsReadFilter(t *testing.T) {
	// The posted listing selects from notifications alone; the recipient
	// read flag must not be reachable through its filter surface.
	_, _, err := notificationPostedRegistry.Parse(map[string]any{"read": true})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = notificationPostedRegistry.ParseSorts([]query.SortParam{{Field: "read"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestNotificationPostedRegistryAcceptsOwnFields(t *testing.T) {
	conds, joins, err := notificationPostedRegistry.Parse(map[string]any{"content_con": "exam"})
	require.NoError(t, err)
	assert.Empty(t, joins)
	require.Len(t, conds, 1)
	assert.Equal(t, "n.content", conds[0].Column)

	sorts, err := notificationPostedRegistry.ParseSorts([]query.SortParam{{Field: "date_sent", Desc: true}})
	require.NoError(t, err)
	require.Len(t, sorts, 1)
	assert.Equal(t, "n.date_sent", sorts[0].Column)
}

func TestNotificationRegistrySortsByReadStatus(t *testing.T) {
	// The received listing joins notification_recipients, so read-status
	// sorting is part of its surface.
	sorts, err := notificationRegistry.ParseSorts([]query.SortParam{{Field: "read"}, {Field: "date_sent", Desc: true}})
	require.NoError(t, err)
	require.Len(t, sorts, 2)
	assert.Equal(t, "nr.read", sorts[0].Column)
	assert.Equal(t, "n.date_sent", sorts[1].Column)
}
