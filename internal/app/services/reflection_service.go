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
	"github.com/casportal/casportal/internal/pkg/helpers"
	"github.com/casportal/casportal/internal/pkg/validation"
)

// slugTokenBytes sizes the random suffix that keeps slugs unique.
const slugTokenBytes = 4

// ReflectionService defines the interface for reflection operations
type ReflectionService interface {
	CreateReflection(ctx context.Context, actor *models.Profile, req *dto.CreateReflectionRequest) (*models.Reflection, error)
	GetReflection(ctx context.Context, actor *models.Profile, id int64) (*models.Reflection, error)
	GetReflectionBySlug(ctx context.Context, actor *models.Profile, slug string) (*models.Reflection, error)
	QueryReflections(ctx context.Context, actor *models.Profile, req *dto.QueryRequest) ([]models.Reflection, int64, error)
	UpdateReflection(ctx context.Context, actor *models.Profile, id int64, req *dto.UpdateReflectionRequest) (*models.Reflection, error)
	DeleteReflection(ctx context.Context, actor *models.Profile, id int64) error

	Favourite(ctx context.Context, actor *models.Profile, id int64) error
	Unfavourite(ctx context.Context, actor *models.Profile, id int64) error
	QueryFavourites(ctx context.Context, actor *models.Profile, req *dto.QueryRequest) ([]models.Reflection, int64, error)

	AddAttachment(ctx context.Context, actor *models.Profile, reflectionID int64, file *multipart.FileHeader) (*models.Attachment, error)
	GetAttachmentFile(ctx context.Context, actor *models.Profile, attachmentID string) (*models.Attachment, string, error)
	DeleteAttachment(ctx context.Context, actor *models.Profile, attachmentID string) error
}

// reflectionServiceImpl implements ReflectionService
type reflectionServiceImpl struct {
	reflections ReflectionStore
	tags        TagStore
	comments    CommentStore
	attachments AttachmentStore
	reports     ReportStore
	storage     filestorage.FileStorage
	authz       *auth.AuthorizationService
	logger      zerolog.Logger
}

// NewReflectionService creates a new ReflectionService
func NewReflectionService(
	reflections ReflectionStore,
	tags TagStore,
	comments CommentStore,
	attachments AttachmentStore,
	reports ReportStore,
	storage filestorage.FileStorage,
	authz *auth.AuthorizationService,
	logger zerolog.Logger,
) ReflectionService {
	return &reflectionServiceImpl{
		reflections: reflections,
		tags:        tags,
		comments:    comments,
		attachments: attachments,
		reports:     reports,
		storage:     storage,
		authz:       authz,
		logger:      logger,
	}
}

// CreateReflection creates a reflection for the caller. At least one
// category flag must be set; visibility falls back to the caller's default.
func (s *reflectionServiceImpl) CreateReflection(ctx context.Context, actor *models.Profile, req *dto.CreateReflectionRequest) (*models.Reflection, error) {
	ref := &models.Reflection{
		ProfileID:   actor.ID,
		Title:       req.Title,
		TextContent: req.TextContent,
		Creativity:  req.Creativity,
		Activity:    req.Activity,
		Service:     req.Service,
	}
	if !ref.HasCategory() {
		return nil, apperrors.NewValidationError("at least one of creativity, activity or service must be set")
	}

	ref.PostVisibility = actor.PostVisibility
	if req.PostVisibility != nil {
		if !validation.IsValidVisibility(*req.PostVisibility) {
			return nil, apperrors.NewValidationError("unknown visibility tier")
		}
		ref.PostVisibility = *req.PostVisibility
	}

	token, err := helpers.RandomToken(slugTokenBytes)
	if err != nil {
		return nil, err
	}
	ref.Slug = helpers.Slugify(req.Title) + "-" + token

	if err := s.reflections.CreateReflection(ctx, ref); err != nil {
		return nil, err
	}
	if err := s.applyTags(ctx, ref, req.Tags); err != nil {
		return nil, err
	}

	ref.Author = actor
	s.logger.Info().Int64("reflectionId", ref.ID).Int64("profileId", actor.ID).Msg("reflection created")
	return ref, nil
}

// GetReflection retrieves a reflection the actor may read, with its tags and
// attachments attached.
func (s *reflectionServiceImpl) GetReflection(ctx context.Context, actor *models.Profile, id int64) (*models.Reflection, error) {
	ref, err := s.reflections.GetReflectionByID(ctx, id, actorID(actor))
	if err != nil {
		return nil, err
	}
	return s.authorizeAndDecorate(ctx, actor, ref)
}

// GetReflectionBySlug retrieves a reflection by slug under the same policy.
func (s *reflectionServiceImpl) GetReflectionBySlug(ctx context.Context, actor *models.Profile, slug string) (*models.Reflection, error) {
	ref, err := s.reflections.GetReflectionBySlug(ctx, slug, actorID(actor))
	if err != nil {
		return nil, err
	}
	return s.authorizeAndDecorate(ctx, actor, ref)
}

func (s *reflectionServiceImpl) authorizeAndDecorate(ctx context.Context, actor *models.Profile, ref *models.Reflection) (*models.Reflection, error) {
	if err := s.authz.AuthorizeReflectionRead(ctx, actor, ref); err != nil {
		return nil, err
	}
	return s.decorateOne(ctx, ref)
}

// QueryReflections lists the reflections visible to the actor through the
// reflection filter surface.
func (s *reflectionServiceImpl) QueryReflections(ctx context.Context, actor *models.Profile, req *dto.QueryRequest) ([]models.Reflection, int64, error) {
	scope := auth.ReflectionVisibilityScope(actor)
	refs, total, err := s.reflections.QueryReflections(ctx, actor.ID, scope, req.Filter, req.Sort, req.Pagination)
	if err != nil {
		return nil, 0, err
	}
	if err := s.decorateAll(ctx, refs); err != nil {
		return nil, 0, err
	}
	return refs, total, nil
}

// UpdateReflection patches a reflection; owner or role holder. Category
// changes are re-checked against the at-least-one rule.
func (s *reflectionServiceImpl) UpdateReflection(ctx context.Context, actor *models.Profile, id int64, req *dto.UpdateReflectionRequest) (*models.Reflection, error) {
	ref, err := s.reflections.GetReflectionByID(ctx, id, actorID(actor))
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeOwnership(actor, ref.ProfileID); err != nil {
		return nil, err
	}

	if req.Title != nil {
		ref.Title = *req.Title
		token, err := helpers.RandomToken(slugTokenBytes)
		if err != nil {
			return nil, err
		}
		ref.Slug = helpers.Slugify(*req.Title) + "-" + token
	}
	if req.TextContent != nil {
		ref.TextContent = *req.TextContent
	}
	if req.PostVisibility != nil {
		if !validation.IsValidVisibility(*req.PostVisibility) {
			return nil, apperrors.NewValidationError("unknown visibility tier")
		}
		ref.PostVisibility = *req.PostVisibility
	}
	if req.Creativity != nil {
		ref.Creativity = *req.Creativity
	}
	if req.Activity != nil {
		ref.Activity = *req.Activity
	}
	if req.Service != nil {
		ref.Service = *req.Service
	}
	if !ref.HasCategory() {
		return nil, apperrors.NewValidationError("at least one of creativity, activity or service must be set")
	}

	if err := s.reflections.UpdateReflection(ctx, ref); err != nil {
		return nil, err
	}
	if req.Tags != nil {
		if err := s.applyTags(ctx, ref, *req.Tags); err != nil {
			return nil, err
		}
	}
	return s.decorateOne(ctx, ref)
}

// DeleteReflection removes a reflection and its dependents; owner or role
// holder.
func (s *reflectionServiceImpl) DeleteReflection(ctx context.Context, actor *models.Profile, id int64) error {
	ref, err := s.reflections.GetReflectionByID(ctx, id, actorID(actor))
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeOwnership(actor, ref.ProfileID); err != nil {
		return err
	}
	return cascadeDeleteReflection(ctx, s.comments, s.attachments, s.reports, s.reflections, s.storage, id, s.logger)
}

// Favourite marks a readable reflection as a favourite of the caller.
// Favouriting twice conflicts.
func (s *reflectionServiceImpl) Favourite(ctx context.Context, actor *models.Profile, id int64) error {
	ref, err := s.reflections.GetReflectionByID(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeReflectionRead(ctx, actor, ref); err != nil {
		return err
	}
	return s.reflections.AddFavourite(ctx, id, actor.ID)
}

// Unfavourite removes a favourite mark; removing one that is not set is a
// bad request.
func (s *reflectionServiceImpl) Unfavourite(ctx context.Context, actor *models.Profile, id int64) error {
	if err := s.reflections.RemoveFavourite(ctx, id, actor.ID); err != nil {
		return err
	}
	return nil
}

// QueryFavourites pages the caller's favourites, newest first.
func (s *reflectionServiceImpl) QueryFavourites(ctx context.Context, actor *models.Profile, req *dto.QueryRequest) ([]models.Reflection, int64, error) {
	refs, total, err := s.reflections.QueryFavourites(ctx, actor.ID, req.Pagination)
	if err != nil {
		return nil, 0, err
	}
	if err := s.decorateAll(ctx, refs); err != nil {
		return nil, 0, err
	}
	return refs, total, nil
}

// AddAttachment stores an uploaded file against a reflection; owner or role
// holder.
func (s *reflectionServiceImpl) AddAttachment(ctx context.Context, actor *models.Profile, reflectionID int64, file *multipart.FileHeader) (*models.Attachment, error) {
	ref, err := s.reflections.GetReflectionByID(ctx, reflectionID, actorID(actor))
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeOwnership(actor, ref.ProfileID); err != nil {
		return nil, err
	}

	savedPath, id, err := s.storage.Save(file)
	if err != nil {
		return nil, err
	}
	attachment := &models.Attachment{
		ID:           id,
		ReflectionID: reflectionID,
		SavedPath:    savedPath,
		Filename:     file.Filename,
	}
	if err := s.attachments.CreateAttachment(ctx, attachment); err != nil {
		if delErr := s.storage.Delete(savedPath); delErr != nil {
			s.logger.Warn().Err(delErr).Str("path", savedPath).Msg("failed to clean up stored file")
		}
		return nil, err
	}
	return attachment, nil
}

// GetAttachmentFile resolves an attachment to its filesystem path, applying
// the owning reflection's visibility policy.
func (s *reflectionServiceImpl) GetAttachmentFile(ctx context.Context, actor *models.Profile, attachmentID string) (*models.Attachment, string, error) {
	attachment, err := s.attachments.GetAttachmentByID(ctx, attachmentID)
	if err != nil {
		return nil, "", err
	}
	ref, err := s.reflections.GetReflectionByID(ctx, attachment.ReflectionID, actorID(actor))
	if err != nil {
		return nil, "", err
	}
	if err := s.authz.AuthorizeReflectionRead(ctx, actor, ref); err != nil {
		return nil, "", err
	}
	if !s.storage.Exists(attachment.SavedPath) {
		return nil, "", apperrors.ErrFileUnavailable
	}
	return attachment, s.storage.FullPath(attachment.SavedPath), nil
}

// DeleteAttachment removes an attachment and its file; owner or role holder.
// A file that is already gone does not block removing the record.
func (s *reflectionServiceImpl) DeleteAttachment(ctx context.Context, actor *models.Profile, attachmentID string) error {
	attachment, err := s.attachments.GetAttachmentByID(ctx, attachmentID)
	if err != nil {
		return err
	}
	ref, err := s.reflections.GetReflectionByID(ctx, attachment.ReflectionID, actorID(actor))
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeOwnership(actor, ref.ProfileID); err != nil {
		return err
	}

	if err := s.storage.Delete(attachment.SavedPath); err != nil && !errors.Is(err, filestorage.ErrFileNotFound) {
		return err
	}
	return s.attachments.DeleteAttachment(ctx, attachmentID)
}

// applyTags resolves tag names by exact match, creating unseen ones, and
// rewrites the reflection's links.
func (s *reflectionServiceImpl) applyTags(ctx context.Context, ref *models.Reflection, names []string) error {
	seen := make(map[string]bool, len(names))
	tagIDs := make([]int64, 0, len(names))
	resolved := make([]models.Tag, 0, len(names))
	for _, name := range names {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		tag, err := s.tags.GetOrCreate(ctx, name)
		if err != nil {
			return err
		}
		tagIDs = append(tagIDs, tag.ID)
		resolved = append(resolved, *tag)
	}
	if err := s.reflections.SetTags(ctx, ref.ID, tagIDs); err != nil {
		return err
	}
	ref.Tags = resolved
	return nil
}

// decorateAll batches tag and attachment loading for a page of reflections.
func (s *reflectionServiceImpl) decorateAll(ctx context.Context, refs []models.Reflection) error {
	if len(refs) == 0 {
		return nil
	}
	ids := make([]int64, len(refs))
	for i := range refs {
		ids[i] = refs[i].ID
	}
	tags, err := s.tags.TagsByReflectionIDs(ctx, ids)
	if err != nil {
		return err
	}
	attachments, err := s.attachments.AttachmentsByReflectionIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range refs {
		refs[i].Tags = tags[refs[i].ID]
		refs[i].Attachments = attachments[refs[i].ID]
	}
	return nil
}

func (s *reflectionServiceImpl) decorateOne(ctx context.Context, ref *models.Reflection) (*models.Reflection, error) {
	tags, err := s.tags.TagsByReflectionIDs(ctx, []int64{ref.ID})
	if err != nil {
		return nil, err
	}
	attachments, err := s.attachments.AttachmentsByReflectionIDs(ctx, []int64{ref.ID})
	if err != nil {
		return nil, err
	}
	ref.Tags = tags[ref.ID]
	ref.Attachments = attachments[ref.ID]
	return ref, nil
}

// actorID tolerates a nil actor for annotation purposes only; authorization
// still rejects unauthenticated access.
func actorID(actor *models.Profile) int64 {
	if actor == nil {
		return 0
	}
	return actor.ID
}
