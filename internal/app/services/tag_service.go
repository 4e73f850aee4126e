package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/pkg/apperrors"
)

// TagService defines the interface for tag operations
type TagService interface {
	QueryTags(ctx context.Context, req *dto.QueryRequest) ([]models.Tag, int64, error)
	DeleteTag(ctx context.Context, actor *models.Profile, id int64) error
}

// tagServiceImpl implements TagService
type tagServiceImpl struct {
	tags   TagStore
	logger zerolog.Logger
}

// NewTagService creates a new TagService
func NewTagService(tags TagStore, logger zerolog.Logger) TagService {
	return &tagServiceImpl{tags: tags, logger: logger}
}

// QueryTags lists tags through the tag filter surface.
func (s *tagServiceImpl) QueryTags(ctx context.Context, req *dto.QueryRequest) ([]models.Tag, int64, error) {
	return s.tags.QueryTags(ctx, req.Filter, req.Sort, req.Pagination)
}

// DeleteTag removes a tag and its links to reflections; admin only.
func (s *tagServiceImpl) DeleteTag(ctx context.Context, actor *models.Profile, id int64) error {
	if actor == nil || !actor.IsAdmin {
		return apperrors.NewForbiddenError("permission denied")
	}
	return s.tags.DeleteTag(ctx, id)
}
