package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/casportal/casportal/internal/app/auth"
	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/pkg/apperrors"
	"github.com/casportal/casportal/internal/pkg/filestorage"
	"github.com/casportal/casportal/internal/pkg/helpers"
)

// groupTokenBytes sizes the random group identifier.
const groupTokenBytes = 6

// GroupService defines the interface for group operations
type GroupService interface {
	CreateGroup(ctx context.Context, actor *models.Profile, req *dto.CreateGroupRequest) (*models.Group, error)
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	QueryGroups(ctx context.Context, req *dto.QueryRequest) ([]models.Group, int64, error)
	UpdateGroup(ctx context.Context, actor *models.Profile, id string, req *dto.UpdateGroupRequest) (*models.Group, error)
	UpdateAvatar(ctx context.Context, actor *models.Profile, id string, file *multipart.FileHeader) (*models.Avatar, error)
	DeleteAvatar(ctx context.Context, actor *models.Profile, id string) error
	DeleteGroup(ctx context.Context, actor *models.Profile, id string) error

	RequestJoin(ctx context.Context, actor *models.Profile, groupID string) error
	ListJoinRequests(ctx context.Context, actor *models.Profile, groupID string) ([]models.GroupJoinRequest, error)
	DecideJoinRequest(ctx context.Context, actor *models.Profile, groupID string, profileID int64, accept bool) error
	LeaveGroup(ctx context.Context, actor *models.Profile) error
	RemoveMember(ctx context.Context, actor *models.Profile, groupID string, profileID int64) error
}

// groupServiceImpl implements GroupService
type groupServiceImpl struct {
	groups        GroupStore
	profiles      ProfileStore
	joinRequests  JoinRequestStore
	notifications NotificationStore
	avatars       AvatarStore
	storage       filestorage.FileStorage
	authz         *auth.AuthorizationService
	logger        zerolog.Logger
}

// NewGroupService creates a new GroupService
func NewGroupService(
	groups GroupStore,
	profiles ProfileStore,
	joinRequests JoinRequestStore,
	notifications NotificationStore,
	avatars AvatarStore,
	storage filestorage.FileStorage,
	authz *auth.AuthorizationService,
	logger zerolog.Logger,
) GroupService {
	return &groupServiceImpl{
		groups:        groups,
		profiles:      profiles,
		joinRequests:  joinRequests,
		notifications: notifications,
		avatars:       avatars,
		storage:       storage,
		authz:         authz,
		logger:        logger,
	}
}

// CreateGroup creates a group coordinated by the caller. A profile can
// coordinate at most one group, regardless of role.
func (s *groupServiceImpl) CreateGroup(ctx context.Context, actor *models.Profile, req *dto.CreateGroupRequest) (*models.Group, error) {
	if _, err := s.groups.GetGroupByCoordinator(ctx, actor.ID); err == nil {
		return nil, apperrors.ErrAlreadyCoordinator
	} else if !errors.Is(err, apperrors.ErrGroupNotFound) {
		return nil, err
	}

	token, err := helpers.RandomToken(groupTokenBytes)
	if err != nil {
		return nil, err
	}
	group := &models.Group{
		ID:             token,
		CoordinatorID:  actor.ID,
		Name:           req.Name,
		GraduationYear: req.GraduationYear,
		Description:    req.Description,
	}
	if err := s.groups.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	s.logger.Info().Str("groupId", group.ID).Int64("coordinatorId", actor.ID).Msg("group created")
	return group, nil
}

// GetGroup retrieves a group with its coordinator and avatar attached.
func (s *groupServiceImpl) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	group, err := s.groups.GetGroupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if coordinator, err := s.profiles.GetProfileByID(ctx, group.CoordinatorID); err == nil {
		group.Coordinator = coordinator
	}
	if group.AvatarID != nil {
		if avatar, err := s.avatars.GetAvatarByID(ctx, *group.AvatarID); err == nil {
			group.Avatar = avatar
		}
	}
	return group, nil
}

// QueryGroups lists groups through the group filter surface.
func (s *groupServiceImpl) QueryGroups(ctx context.Context, req *dto.QueryRequest) ([]models.Group, int64, error) {
	return s.groups.QueryGroups(ctx, req.Filter, req.Sort, req.Pagination)
}

// UpdateGroup patches group metadata; coordinator or role holder.
func (s *groupServiceImpl) UpdateGroup(ctx context.Context, actor *models.Profile, id string, req *dto.UpdateGroupRequest) (*models.Group, error) {
	group, err := s.groups.GetGroupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeOwnership(actor, group.CoordinatorID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		group.Name = *req.Name
	}
	if req.GraduationYear != nil {
		group.GraduationYear = *req.GraduationYear
	}
	if req.Description != nil {
		group.Description = *req.Description
	}
	if err := s.groups.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}
	return group, nil
}

// UpdateAvatar swaps in a new group avatar, tolerating a missing old file.
func (s *groupServiceImpl) UpdateAvatar(ctx context.Context, actor *models.Profile, id string, file *multipart.FileHeader) (*models.Avatar, error) {
	group, err := s.groups.GetGroupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeOwnership(actor, group.CoordinatorID); err != nil {
		return nil, err
	}

	avatar, err := saveAvatar(ctx, s.storage, s.avatars, file)
	if err != nil {
		return nil, err
	}
	if err := s.groups.SetAvatar(ctx, id, &avatar.ID); err != nil {
		return nil, err
	}
	if group.AvatarID != nil {
		removeAvatar(ctx, s.storage, s.avatars, *group.AvatarID, s.logger)
	}
	return avatar, nil
}

// DeleteAvatar removes the group avatar; a missing backing file conflicts.
func (s *groupServiceImpl) DeleteAvatar(ctx context.Context, actor *models.Profile, id string) error {
	group, err := s.groups.GetGroupByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeOwnership(actor, group.CoordinatorID); err != nil {
		return err
	}
	if group.AvatarID == nil {
		return apperrors.NewResourceNotFoundError("group has no avatar")
	}
	if err := deleteAvatarStrict(ctx, s.storage, s.avatars, *group.AvatarID); err != nil {
		return err
	}
	return s.groups.SetAvatar(ctx, id, nil)
}

// DeleteGroup disbands a group: members are detached, pending requests and
// the avatar are dropped, then the row goes.
func (s *groupServiceImpl) DeleteGroup(ctx context.Context, actor *models.Profile, id string) error {
	group, err := s.groups.GetGroupByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeOwnership(actor, group.CoordinatorID); err != nil {
		return err
	}

	if err := s.joinRequests.DeleteAllForGroup(ctx, id); err != nil {
		return err
	}
	if err := s.groups.DetachMembers(ctx, id); err != nil {
		return err
	}
	if err := s.groups.DeleteGroup(ctx, id); err != nil {
		return err
	}
	if group.AvatarID != nil {
		removeAvatar(ctx, s.storage, s.avatars, *group.AvatarID, s.logger)
	}

	s.logger.Info().Str("groupId", id).Msg("group deleted")
	return nil
}

// RequestJoin posts a membership request. Members of any group cannot apply,
// and duplicate requests conflict.
func (s *groupServiceImpl) RequestJoin(ctx context.Context, actor *models.Profile, groupID string) error {
	if actor.GroupID != nil {
		return apperrors.ErrAlreadyInGroup
	}
	if _, err := s.groups.GetGroupByID(ctx, groupID); err != nil {
		return err
	}
	return s.joinRequests.Create(ctx, &models.GroupJoinRequest{
		GroupID:   groupID,
		ProfileID: actor.ID,
	})
}

// ListJoinRequests returns the pending requests; coordinator or role holder.
func (s *groupServiceImpl) ListJoinRequests(ctx context.Context, actor *models.Profile, groupID string) ([]models.GroupJoinRequest, error) {
	group, err := s.groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeOwnership(actor, group.CoordinatorID); err != nil {
		return nil, err
	}
	return s.joinRequests.ListByGroup(ctx, groupID)
}

// DecideJoinRequest accepts or denies a pending request. Accepting moves the
// profile into the group and clears its other pending requests; either way
// the requester is notified.
func (s *groupServiceImpl) DecideJoinRequest(ctx context.Context, actor *models.Profile, groupID string, profileID int64, accept bool) error {
	group, err := s.groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeOwnership(actor, group.CoordinatorID); err != nil {
		return err
	}
	if _, err := s.joinRequests.Get(ctx, groupID, profileID); err != nil {
		return err
	}

	var content string
	if accept {
		if err := s.profiles.SetGroup(ctx, profileID, &groupID); err != nil {
			return err
		}
		if err := s.joinRequests.DeleteAllForProfile(ctx, profileID); err != nil {
			return err
		}
		content = fmt.Sprintf("Your request to join %s was accepted.", group.Name)
	} else {
		if err := s.joinRequests.Delete(ctx, groupID, profileID); err != nil {
			return err
		}
		content = fmt.Sprintf("Your request to join %s was denied.", group.Name)
	}

	notification := &models.Notification{ProfileID: actor.ID, Content: content}
	if err := s.notifications.CreateNotification(ctx, notification, []int64{profileID}); err != nil {
		// the decision already took effect; the notification is best effort
		s.logger.Warn().Err(err).Int64("profileId", profileID).Msg("failed to notify join request decision")
	}
	return nil
}

// LeaveGroup removes the caller from their group. Coordinators cannot leave
// their own group; they disband it instead.
func (s *groupServiceImpl) LeaveGroup(ctx context.Context, actor *models.Profile) error {
	if actor.GroupID == nil {
		return apperrors.NewBadRequestError("profile is not in a group")
	}
	group, err := s.groups.GetGroupByID(ctx, *actor.GroupID)
	if err != nil {
		return err
	}
	if group.CoordinatorID == actor.ID {
		return apperrors.NewConflictError("the coordinator cannot leave; delete the group instead")
	}
	return s.profiles.SetGroup(ctx, actor.ID, nil)
}

// RemoveMember expels a member; coordinator or role holder.
func (s *groupServiceImpl) RemoveMember(ctx context.Context, actor *models.Profile, groupID string, profileID int64) error {
	group, err := s.groups.GetGroupByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeOwnership(actor, group.CoordinatorID); err != nil {
		return err
	}
	member, err := s.profiles.GetProfileByID(ctx, profileID)
	if err != nil {
		return err
	}
	if member.GroupID == nil || *member.GroupID != groupID {
		return apperrors.NewBadRequestError("profile is not a member of this group")
	}
	if profileID == group.CoordinatorID {
		return apperrors.NewConflictError("the coordinator cannot be removed")
	}
	return s.profiles.SetGroup(ctx, profileID, nil)
}
