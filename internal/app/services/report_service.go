package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/app/query"
	"github.com/casportal/casportal/internal/pkg/apperrors"
)

// ReportService defines the interface for moderation report operations
type ReportService interface {
	ReportReflection(ctx context.Context, reflectionID int64, req *dto.CreateReportRequest) (*models.ReflectionReport, error)
	ReportComment(ctx context.Context, commentID int64, req *dto.CreateReportRequest) (*models.CommentReport, error)
	ListReflectionReports(ctx context.Context, actor *models.Profile, pag *query.Pagination) ([]models.ReflectionReport, int64, error)
	ListCommentReports(ctx context.Context, actor *models.Profile, pag *query.Pagination) ([]models.CommentReport, int64, error)
	DismissReflectionReport(ctx context.Context, actor *models.Profile, id int64) error
	DismissCommentReport(ctx context.Context, actor *models.Profile, id int64) error
}

// reportServiceImpl implements ReportService
type reportServiceImpl struct {
	reports ReportStore
	logger  zerolog.Logger
}

// NewReportService creates a new ReportService
func NewReportService(reports ReportStore, logger zerolog.Logger) ReportService {
	return &reportServiceImpl{reports: reports, logger: logger}
}

// ReportReflection files a report against a reflection.
func (s *reportServiceImpl) ReportReflection(ctx context.Context, reflectionID int64, req *dto.CreateReportRequest) (*models.ReflectionReport, error) {
	report := &models.ReflectionReport{ReflectionID: reflectionID, Reason: req.Reason}
	if err := s.reports.CreateReflectionReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ReportComment files a report against a comment.
func (s *reportServiceImpl) ReportComment(ctx context.Context, commentID int64, req *dto.CreateReportRequest) (*models.CommentReport, error) {
	report := &models.CommentReport{CommentID: commentID, Reason: req.Reason}
	if err := s.reports.CreateCommentReport(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReflectionReports pages filed reflection reports; role holders only.
func (s *reportServiceImpl) ListReflectionReports(ctx context.Context, actor *models.Profile, pag *query.Pagination) ([]models.ReflectionReport, int64, error) {
	if err := requireRole(actor); err != nil {
		return nil, 0, err
	}
	return s.reports.ListReflectionReports(ctx, pag)
}

// ListCommentReports pages filed comment reports; role holders only.
func (s *reportServiceImpl) ListCommentReports(ctx context.Context, actor *models.Profile, pag *query.Pagination) ([]models.CommentReport, int64, error) {
	if err := requireRole(actor); err != nil {
		return nil, 0, err
	}
	return s.reports.ListCommentReports(ctx, pag)
}

// DismissReflectionReport drops a report without acting on it.
func (s *reportServiceImpl) DismissReflectionReport(ctx context.Context, actor *models.Profile, id int64) error {
	if err := requireRole(actor); err != nil {
		return err
	}
	return s.reports.DeleteReflectionReport(ctx, id)
}

// DismissCommentReport drops a report without acting on it.
func (s *reportServiceImpl) DismissCommentReport(ctx context.Context, actor *models.Profile, id int64) error {
	if err := requireRole(actor); err != nil {
		return err
	}
	return s.reports.DeleteCommentReport(ctx, id)
}

// requireRole admits admins and moderators only.
func requireRole(actor *models.Profile) error {
	if actor == nil || !actor.HasRole() {
		return apperrors.NewForbiddenError("permission denied")
	}
	return nil
}
