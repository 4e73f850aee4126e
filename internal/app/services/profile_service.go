package services

import (
	"context"
	"errors"
	"mime/multipart"

	"github.com/rs/zerolog"

	"github.com/casportal/casportal/internal/app/auth"
	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/pkg/apperrors"
	"github.com/casportal/casportal/internal/pkg/filestorage"
	"github.com/casportal/casportal/internal/pkg/validation"
)

// ProfileService defines the interface for profile operations
type ProfileService interface {
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)
	QueryProfiles(ctx context.Context, req *dto.QueryRequest) ([]models.Profile, int64, error)
	UpdateProfile(ctx context.Context, actor *models.Profile, id int64, req *dto.UpdateProfileRequest) (*models.Profile, error)
	UpdateRoles(ctx context.Context, actor *models.Profile, id int64, req *dto.UpdateRolesRequest) error
	UpdateAvatar(ctx context.Context, actor *models.Profile, id int64, file *multipart.FileHeader) (*models.Avatar, error)
	DeleteAvatar(ctx context.Context, actor *models.Profile, id int64) error
	DeleteProfile(ctx context.Context, actor *models.Profile, id int64) error
}

// profileServiceImpl implements ProfileService
type profileServiceImpl struct {
	profiles      ProfileStore
	credentials   CredentialStore
	groups        GroupStore
	joinRequests  JoinRequestStore
	reflections   ReflectionStore
	comments      CommentStore
	notifications NotificationStore
	attachments   AttachmentStore
	avatars       AvatarStore
	reports       ReportStore
	storage       filestorage.FileStorage
	authz         *auth.AuthorizationService
	logger        zerolog.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(
	profiles ProfileStore,
	credentials CredentialStore,
	groups GroupStore,
	joinRequests JoinRequestStore,
	reflections ReflectionStore,
	comments CommentStore,
	notifications NotificationStore,
	attachments AttachmentStore,
	avatars AvatarStore,
	reports ReportStore,
	storage filestorage.FileStorage,
	authz *auth.AuthorizationService,
	logger zerolog.Logger,
) ProfileService {
	return &profileServiceImpl{
		profiles:      profiles,
		credentials:   credentials,
		groups:        groups,
		joinRequests:  joinRequests,
		reflections:   reflections,
		comments:      comments,
		notifications: notifications,
		attachments:   attachments,
		avatars:       avatars,
		reports:       reports,
		storage:       storage,
		authz:         authz,
		logger:        logger,
	}
}

// GetProfile retrieves a profile with its group and avatar attached.
func (s *profileServiceImpl) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	profile, err := s.profiles.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.GroupID != nil {
		group, err := s.groups.GetGroupByID(ctx, *profile.GroupID)
		if err == nil {
			profile.Group = group
		}
	}
	if profile.AvatarID != nil {
		avatar, err := s.avatars.GetAvatarByID(ctx, *profile.AvatarID)
		if err == nil {
			profile.Avatar = avatar
		}
	}
	return profile, nil
}

// QueryProfiles lists profiles through the profile filter surface.
func (s *profileServiceImpl) QueryProfiles(ctx context.Context, req *dto.QueryRequest) ([]models.Profile, int64, error) {
	return s.profiles.QueryProfiles(ctx, req.Filter, req.Sort, req.Pagination)
}

// UpdateProfile patches name and default visibility. Owner or role holder.
func (s *profileServiceImpl) UpdateProfile(ctx context.Context, actor *models.Profile, id int64, req *dto.UpdateProfileRequest) (*models.Profile, error) {
	if err := s.authz.AuthorizeOwnership(actor, id); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		if !validation.IsValidName(*req.FirstName) {
			return nil, apperrors.NewValidationError("first name is out of bounds")
		}
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		if !validation.IsValidName(*req.LastName) {
			return nil, apperrors.NewValidationError("last name is out of bounds")
		}
		profile.LastName = *req.LastName
	}
	if req.PostVisibility != nil {
		if !validation.IsValidVisibility(*req.PostVisibility) {
			return nil, apperrors.NewValidationError("unknown visibility tier")
		}
		profile.PostVisibility = *req.PostVisibility
	}

	if err := s.profiles.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateRoles toggles the moderator flag; admins only.
func (s *profileServiceImpl) UpdateRoles(ctx context.Context, actor *models.Profile, id int64, req *dto.UpdateRolesRequest) error {
	if actor == nil || !actor.IsAdmin {
		return apperrors.NewForbiddenError("permission denied")
	}
	return s.profiles.SetModerator(ctx, id, req.IsModerator)
}

// UpdateAvatar stores a new avatar image and swaps it in. A previous avatar
// is removed afterwards; a missing old file is tolerated since the
// replacement already took effect.
func (s *profileServiceImpl) UpdateAvatar(ctx context.Context, actor *models.Profile, id int64, file *multipart.FileHeader) (*models.Avatar, error) {
	if err := s.authz.AuthorizeOwnership(actor, id); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfileByID(ctx, id)
	if err != nil {
		return nil, err
	}

	avatar, err := saveAvatar(ctx, s.storage, s.avatars, file)
	if err != nil {
		return nil, err
	}
	if err := s.profiles.SetAvatar(ctx, id, &avatar.ID); err != nil {
		return nil, err
	}

	if profile.AvatarID != nil {
		removeAvatar(ctx, s.storage, s.avatars, *profile.AvatarID, s.logger)
	}
	return avatar, nil
}

// DeleteAvatar removes the profile's avatar. Unlike replacement, a plain
// delete whose backing file is already gone is reported as a conflict.
func (s *profileServiceImpl) DeleteAvatar(ctx context.Context, actor *models.Profile, id int64) error {
	if err := s.authz.AuthorizeOwnership(actor, id); err != nil {
		return err
	}
	profile, err := s.profiles.GetProfileByID(ctx, id)
	if err != nil {
		return err
	}
	if profile.AvatarID == nil {
		return apperrors.NewResourceNotFoundError("profile has no avatar")
	}

	if err := deleteAvatarStrict(ctx, s.storage, s.avatars, *profile.AvatarID); err != nil {
		return err
	}
	return s.profiles.SetAvatar(ctx, id, nil)
}

// DeleteProfile removes a profile and everything it owns: credentials,
// reflections with their comments and attachments, comments elsewhere,
// favourites, notifications and pending join requests.
func (s *profileServiceImpl) DeleteProfile(ctx context.Context, actor *models.Profile, id int64) error {
	if err := s.authz.AuthorizeOwnership(actor, id); err != nil {
		return err
	}
	profile, err := s.profiles.GetProfileByID(ctx, id)
	if err != nil {
		return err
	}

	// a coordinated group would be orphaned; it has to go first
	if _, err := s.groups.GetGroupByCoordinator(ctx, id); err == nil {
		return apperrors.NewConflictError("profile still coordinates a group; delete the group first")
	} else if !errors.Is(err, apperrors.ErrGroupNotFound) {
		return err
	}

	reflectionIDs, err := s.reflections.ListIDsByProfile(ctx, id)
	if err != nil {
		return err
	}
	for _, refID := range reflectionIDs {
		if err := cascadeDeleteReflection(ctx, s.comments, s.attachments, s.reports, s.reflections, s.storage, refID, s.logger); err != nil {
			return err
		}
	}

	if err := s.comments.DeleteByProfile(ctx, id); err != nil {
		return err
	}
	if err := s.reflections.RemoveFavouritesOf(ctx, id); err != nil {
		return err
	}
	if err := s.notifications.DeleteForProfile(ctx, id); err != nil {
		return err
	}
	if err := s.joinRequests.DeleteAllForProfile(ctx, id); err != nil {
		return err
	}
	if err := s.credentials.DeleteCredentials(ctx, id); err != nil {
		return err
	}

	if err := s.profiles.DeleteProfile(ctx, id); err != nil {
		return err
	}
	if profile.AvatarID != nil {
		removeAvatar(ctx, s.storage, s.avatars, *profile.AvatarID, s.logger)
	}

	s.logger.Info().Int64("profileId", id).Msg("profile deleted")
	return nil
}

// saveAvatar stores the uploaded image and records it.
func saveAvatar(ctx context.Context, storage filestorage.FileStorage, avatars AvatarStore, file *multipart.FileHeader) (*models.Avatar, error) {
	savedPath, id, err := storage.Save(file)
	if err != nil {
		return nil, err
	}
	avatar := &models.Avatar{
		ID:        id,
		SavedPath: savedPath,
		Filename:  file.Filename,
	}
	if err := avatars.CreateAvatar(ctx, avatar); err != nil {
		if delErr := storage.Delete(savedPath); delErr != nil {
			return nil, delErr
		}
		return nil, err
	}
	return avatar, nil
}

// removeAvatar drops an avatar row and its file, tolerating a file that is
// already gone.
func removeAvatar(ctx context.Context, storage filestorage.FileStorage, avatars AvatarStore, id string, logger zerolog.Logger) {
	avatar, err := avatars.GetAvatarByID(ctx, id)
	if err != nil {
		logger.Warn().Err(err).Str("avatarId", id).Msg("old avatar row not found")
		return
	}
	if err := storage.Delete(avatar.SavedPath); err != nil && !errors.Is(err, filestorage.ErrFileNotFound) {
		logger.Warn().Err(err).Str("avatarId", id).Msg("failed to remove old avatar file")
	}
	if err := avatars.DeleteAvatar(ctx, id); err != nil {
		logger.Warn().Err(err).Str("avatarId", id).Msg("failed to remove old avatar row")
	}
}

// deleteAvatarStrict removes an avatar and refuses when the backing file has
// gone missing, surfacing storage drift instead of hiding it.
func deleteAvatarStrict(ctx context.Context, storage filestorage.FileStorage, avatars AvatarStore, id string) error {
	avatar, err := avatars.GetAvatarByID(ctx, id)
	if err != nil {
		return err
	}
	if err := storage.Delete(avatar.SavedPath); err != nil {
		if errors.Is(err, filestorage.ErrFileNotFound) {
			return apperrors.NewConflictError("the avatar file is not available")
		}
		return err
	}
	return avatars.DeleteAvatar(ctx, id)
}

// cascadeDeleteReflection clears a reflection's dependents before the row
// itself: comments with their reports, attachments with their files, then
// the reflection (tag and favourite links go with it).
func cascadeDeleteReflection(
	ctx context.Context,
	comments CommentStore,
	attachments AttachmentStore,
	reports ReportStore,
	reflections ReflectionStore,
	storage filestorage.FileStorage,
	reflectionID int64,
	logger zerolog.Logger,
) error {
	if err := comments.DeleteByReflection(ctx, reflectionID); err != nil {
		return err
	}
	if err := reports.DeleteByReflection(ctx, reflectionID); err != nil {
		return err
	}
	removed, err := attachments.DeleteByReflection(ctx, reflectionID)
	if err != nil {
		return err
	}
	for _, a := range removed {
		if err := storage.Delete(a.SavedPath); err != nil && !errors.Is(err, filestorage.ErrFileNotFound) {
			logger.Warn().Err(err).Str("attachmentId", a.ID).Msg("failed to remove attachment file")
		}
	}
	return reflections.DeleteReflection(ctx, reflectionID)
}
