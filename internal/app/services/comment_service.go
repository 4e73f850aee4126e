package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/casportal/casportal/internal/app/auth"
	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/models/dto"
)

// CommentService defines the interface for comment operations
type CommentService interface {
	CreateComment(ctx context.Context, actor *models.Profile, req *dto.CreateCommentRequest) (*models.Comment, error)
	QueryComments(ctx context.Context, actor *models.Profile, req *dto.QueryRequest) ([]models.Comment, int64, error)
	UpdateComment(ctx context.Context, actor *models.Profile, id int64, req *dto.UpdateCommentRequest) (*models.Comment, error)
	DeleteComment(ctx context.Context, actor *models.Profile, id int64) error
}

// commentServiceImpl implements CommentService
type commentServiceImpl struct {
	comments    CommentStore
	reflections ReflectionStore
	authz       *auth.AuthorizationService
	logger      zerolog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(comments CommentStore, reflections ReflectionStore, authz *auth.AuthorizationService, logger zerolog.Logger) CommentService {
	return &commentServiceImpl{comments: comments, reflections: reflections, authz: authz, logger: logger}
}

// CreateComment posts a comment on a reflection the caller may read.
func (s *commentServiceImpl) CreateComment(ctx context.Context, actor *models.Profile, req *dto.CreateCommentRequest) (*models.Comment, error) {
	ref, err := s.reflections.GetReflectionByID(ctx, req.ReflectionID, actor.ID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeReflectionRead(ctx, actor, ref); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ProfileID:    actor.ID,
		ReflectionID: req.ReflectionID,
		Content:      req.Content,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	comment.Author = actor
	return comment, nil
}

// QueryComments lists comments through the comment filter surface. Listing a
// specific reflection's comments requires read access to it.
func (s *commentServiceImpl) QueryComments(ctx context.Context, actor *models.Profile, req *dto.QueryRequest) ([]models.Comment, int64, error) {
	if raw, ok := req.Filter["reflection_id"]; ok {
		if id, ok := toInt64(raw); ok {
			ref, err := s.reflections.GetReflectionByID(ctx, id, actor.ID)
			if err != nil {
				return nil, 0, err
			}
			if err := s.authz.AuthorizeReflectionRead(ctx, actor, ref); err != nil {
				return nil, 0, err
			}
		}
	}
	return s.comments.QueryComments(ctx, req.Filter, req.Sort, req.Pagination)
}

// UpdateComment edits a comment; author or role holder.
func (s *commentServiceImpl) UpdateComment(ctx context.Context, actor *models.Profile, id int64, req *dto.UpdateCommentRequest) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AuthorizeOwnership(actor, comment.ProfileID); err != nil {
		return nil, err
	}
	comment.Content = req.Content
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment; author or role holder.
func (s *commentServiceImpl) DeleteComment(ctx context.Context, actor *models.Profile, id int64) error {
	comment, err := s.comments.GetCommentByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authz.AuthorizeOwnership(actor, comment.ProfileID); err != nil {
		return err
	}
	return s.comments.DeleteComment(ctx, id)
}

// toInt64 coerces the JSON number shapes a filter document can carry.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
