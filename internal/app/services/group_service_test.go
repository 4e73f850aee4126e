package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casportal/casportal/internal/app/auth"
	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/pkg/apperrors"
)

type stubGroupStore struct {
	GroupStore
	groups        map[string]*models.Group
	byCoordinator map[int64]*models.Group
	created       []*models.Group
}

func (s *stubGroupStore) GetGroupByID(_ context.Context, id string) (*models.Group, error) {
	if g, ok := s.groups[id]; ok {
		return g, nil
	}
	return nil, apperrors.ErrGroupNotFound
}

func (s *stubGroupStore) GetGroupByCoordinator(_ context.Context, profileID int64) (*models.Group, error) {
	if g, ok := s.byCoordinator[profileID]; ok {
		return g, nil
	}
	return nil, apperrors.ErrGroupNotFound
}

func (s *stubGroupStore) CreateGroup(_ context.Context, g *models.Group) error {
	if s.groups == nil {
		s.groups = map[string]*models.Group{}
	}
	if s.byCoordinator == nil {
		s.byCoordinator = map[int64]*models.Group{}
	}
	s.groups[g.ID] = g
	s.byCoordinator[g.CoordinatorID] = g
	s.created = append(s.created, g)
	return nil
}

type stubJoinRequestStore struct {
	JoinRequestStore
	requests          map[string]map[int64]*models.GroupJoinRequest
	deleted           [][2]any
	clearedProfileIDs []int64
}

func (s *stubJoinRequestStore) Get(_ context.Context, groupID string, profileID int64) (*models.GroupJoinRequest, error) {
	if r, ok := s.requests[groupID][profileID]; ok {
		return r, nil
	}
	return nil, apperrors.ErrJoinRequestNotFound
}

func (s *stubJoinRequestStore) Create(_ context.Context, req *models.GroupJoinRequest) error {
	if s.requests == nil {
		s.requests = map[string]map[int64]*models.GroupJoinRequest{}
	}
	if s.requests[req.GroupID] == nil {
		s.requests[req.GroupID] = map[int64]*models.GroupJoinRequest{}
	}
	if _, ok := s.requests[req.GroupID][req.ProfileID]; ok {
		return apperrors.ErrDuplicateJoinRequest
	}
	s.requests[req.GroupID][req.ProfileID] = req
	return nil
}

func (s *stubJoinRequestStore) Delete(_ context.Context, groupID string, profileID int64) error {
	s.deleted = append(s.deleted, [2]any{groupID, profileID})
	delete(s.requests[groupID], profileID)
	return nil
}

func (s *stubJoinRequestStore) DeleteAllForProfile(_ context.Context, profileID int64) error {
	s.clearedProfileIDs = append(s.clearedProfileIDs, profileID)
	for _, byProfile := range s.requests {
		delete(byProfile, profileID)
	}
	return nil
}

type stubNotificationStore struct {
	NotificationStore
	sent []struct {
		notification *models.Notification
		recipients   []int64
	}
	failCreate error
}

func (s *stubNotificationStore) CreateNotification(_ context.Context, n *models.Notification, recipientIDs []int64) error {
	if s.failCreate != nil {
		return s.failCreate
	}
	n.ID = int64(len(s.sent) + 1)
	s.sent = append(s.sent, struct {
		notification *models.Notification
		recipients   []int64
	}{n, recipientIDs})
	return nil
}

func strptr(s string) *string { return &s }

func newGroupService(groups *stubGroupStore, profiles *stubProfileStore, requests *stubJoinRequestStore, notifications *stubNotificationStore) GroupService {
	authz := auth.NewAuthorizationService(profiles, groups, zerolog.Nop())
	return NewGroupService(groups, profiles, requests, notifications, nil, nil, authz, zerolog.Nop())
}

func TestCreateGroupSecondGroupConflicts(t *testing.T) {
	coordinator := &models.Profile{ID: 1}
	groups := &stubGroupStore{}
	svc := newGroupService(groups, &stubProfileStore{}, &stubJoinRequestStore{}, &stubNotificationStore{})

	first, err := svc.CreateGroup(context.Background(), coordinator, &dto.CreateGroupRequest{Name: "Class of 26", GraduationYear: 2026})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, int64(1), first.CoordinatorID)

	_, err = svc.CreateGroup(context.Background(), coordinator, &dto.CreateGroupRequest{Name: "Another", GraduationYear: 2027})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyCoordinator)
	assert.Len(t, groups.created, 1)
}

func TestRequestJoinWhileInGroup(t *testing.T) {
	groupID := "g1"
	groups := &stubGroupStore{groups: map[string]*models.Group{groupID: {ID: groupID, CoordinatorID: 9}}}
	svc := newGroupService(groups, &stubProfileStore{}, &stubJoinRequestStore{}, &stubNotificationStore{})

	member := &models.Profile{ID: 2, GroupID: strptr("other")}
	err := svc.RequestJoin(context.Background(), member, groupID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInGroup)
}

func TestDecideJoinRequestAccept(t *testing.T) {
	groupID := "g1"
	coordinator := &models.Profile{ID: 1}
	applicant := &models.Profile{ID: 2}

	groups := &stubGroupStore{groups: map[string]*models.Group{
		groupID: {ID: groupID, CoordinatorID: coordinator.ID, Name: "Class of 26"},
	}}
	profiles := &stubProfileStore{profiles: map[int64]*models.Profile{1: coordinator, 2: applicant}}
	requests := &stubJoinRequestStore{requests: map[string]map[int64]*models.GroupJoinRequest{
		groupID: {2: {GroupID: groupID, ProfileID: 2}},
	}}
	notifications := &stubNotificationStore{}
	svc := newGroupService(groups, profiles, requests, notifications)

	require.NoError(t, svc.DecideJoinRequest(context.Background(), coordinator, groupID, 2, true))

	// the applicant joined and their other pending requests are gone
	require.Contains(t, profiles.setGroup, int64(2))
	require.NotNil(t, profiles.setGroup[2])
	assert.Equal(t, groupID, *profiles.setGroup[2])
	assert.Equal(t, []int64{2}, requests.clearedProfileIDs)

	require.Len(t, notifications.sent, 1)
	assert.Equal(t, "Your request to join Class of 26 was accepted.", notifications.sent[0].notification.Content)
	assert.Equal(t, []int64{2}, notifications.sent[0].recipients)
}

func TestDecideJoinRequestDeny(t *testing.T) {
	groupID := "g1"
	coordinator := &models.Profile{ID: 1}

	groups := &stubGroupStore{groups: map[string]*models.Group{
		groupID: {ID: groupID, CoordinatorID: coordinator.ID, Name: "Class of 26"},
	}}
	profiles := &stubProfileStore{profiles: map[int64]*models.Profile{1: coordinator}}
	requests := &stubJoinRequestStore{requests: map[string]map[int64]*models.GroupJoinRequest{
		groupID: {2: {GroupID: groupID, ProfileID: 2}},
	}}
	notifications := &stubNotificationStore{}
	svc := newGroupService(groups, profiles, requests, notifications)

	require.NoError(t, svc.DecideJoinRequest(context.Background(), coordinator, groupID, 2, false))

	assert.Empty(t, profiles.setGroup)
	assert.Len(t, requests.deleted, 1)
	require.Len(t, notifications.sent, 1)
	assert.Equal(t, "Your request to join Class of 26 was denied.", notifications.sent[0].notification.Content)
}

func TestDecideJoinRequestNotificationFailureIsTolerated(t *testing.T) {
	groupID := "g1"
	coordinator := &models.Profile{ID: 1}

	groups := &stubGroupStore{groups: map[string]*models.Group{
		groupID: {ID: groupID, CoordinatorID: coordinator.ID, Name: "Class of 26"},
	}}
	profiles := &stubProfileStore{profiles: map[int64]*models.Profile{1: coordinator}}
	requests := &stubJoinRequestStore{requests: map[string]map[int64]*models.GroupJoinRequest{
		groupID: {2: {GroupID: groupID, ProfileID: 2}},
	}}
	notifications := &stubNotificationStore{failCreate: apperrors.ErrResourceNotFound}
	svc := newGroupService(groups, profiles, requests, notifications)

	// the decision still takes effect when the notification insert fails
	require.NoError(t, svc.DecideJoinRequest(context.Background(), coordinator, groupID, 2, true))
	require.Contains(t, profiles.setGroup, int64(2))
}

func TestDecideJoinRequestRequiresCoordinator(t *testing.T) {
	groupID := "g1"
	groups := &stubGroupStore{groups: map[string]*models.Group{
		groupID: {ID: groupID, CoordinatorID: 1},
	}}
	svc := newGroupService(groups, &stubProfileStore{}, &stubJoinRequestStore{}, &stubNotificationStore{})

	stranger := &models.Profile{ID: 5}
	err := svc.DecideJoinRequest(context.Background(), stranger, groupID, 2, true)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestLeaveGroupCoordinatorConflicts(t *testing.T) {
	groupID := "g1"
	coordinator := &models.Profile{ID: 1, GroupID: strptr(groupID)}
	groups := &stubGroupStore{groups: map[string]*models.Group{
		groupID: {ID: groupID, CoordinatorID: coordinator.ID},
	}}
	profiles := &stubProfileStore{}
	svc := newGroupService(groups, profiles, &stubJoinRequestStore{}, &stubNotificationStore{})

	err := svc.LeaveGroup(context.Background(), coordinator)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Empty(t, profiles.setGroup)

	member := &models.Profile{ID: 2, GroupID: strptr(groupID)}
	require.NoError(t, svc.LeaveGroup(context.Background(), member))
	require.Contains(t, profiles.setGroup, int64(2))
	assert.Nil(t, profiles.setGroup[2])
}

func TestRemoveMemberGuards(t *testing.T) {
	groupID := "g1"
	coordinator := &models.Profile{ID: 1, GroupID: strptr(groupID)}
	groups := &stubGroupStore{groups: map[string]*models.Group{
		groupID: {ID: groupID, CoordinatorID: coordinator.ID},
	}}
	profiles := &stubProfileStore{profiles: map[int64]*models.Profile{
		1: coordinator,
		2: {ID: 2, GroupID: strptr(groupID)},
		3: {ID: 3},
	}}
	svc := newGroupService(groups, profiles, &stubJoinRequestStore{}, &stubNotificationStore{})

	// outsiders cannot be removed
	err := svc.RemoveMember(context.Background(), coordinator, groupID, 3)
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	// the coordinator cannot be removed either
	err = svc.RemoveMember(context.Background(), coordinator, groupID, 1)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	require.NoError(t, svc.RemoveMember(context.Background(), coordinator, groupID, 2))
	require.Contains(t, profiles.setGroup, int64(2))
	assert.Nil(t, profiles.setGroup[2])
}
