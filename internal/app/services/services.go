// Package services implements the portal's domain rules on top of the
// repositories.
package services

import (
	"github.com/rs/zerolog"

	"github.com/casportal/casportal/internal/app/auth"
	"github.com/casportal/casportal/internal/app/repositories"
	pkgauth "github.com/casportal/casportal/internal/pkg/auth"
	"github.com/casportal/casportal/internal/pkg/email"
	"github.com/casportal/casportal/internal/pkg/filestorage"
)

// Services holds all the service instances
type Services struct {
	AuthService         AuthService
	ProfileService      ProfileService
	GroupService        GroupService
	ReflectionService   ReflectionService
	CommentService      CommentService
	NotificationService NotificationService
	TagService          TagService
	ReportService       ReportService
	MessageService      MessageService
}

// NewServices wires every service onto the repositories and shared
// infrastructure.
func NewServices(
	repos *repositories.Repositories,
	jwtService *pkgauth.JWTService,
	mailer email.EmailService,
	storage filestorage.FileStorage,
	authz *auth.AuthorizationService,
	logger zerolog.Logger,
) *Services {
	return &Services{
		AuthService: NewAuthService(
			repos.ProfileRepository,
			repos.CredentialRepository,
			repos.ConfirmationCodeRepository,
			mailer,
			jwtService,
			logger.With().Str("service", "auth").Logger(),
		),
		ProfileService: NewProfileService(
			repos.ProfileRepository,
			repos.CredentialRepository,
			repos.GroupRepository,
			repos.JoinRequestRepository,
			repos.ReflectionRepository,
			repos.CommentRepository,
			repos.NotificationRepository,
			repos.AttachmentRepository,
			repos.AvatarRepository,
			repos.ReportRepository,
			storage,
			authz,
			logger.With().Str("service", "profile").Logger(),
		),
		GroupService: NewGroupService(
			repos.GroupRepository,
			repos.ProfileRepository,
			repos.JoinRequestRepository,
			repos.NotificationRepository,
			repos.AvatarRepository,
			storage,
			authz,
			logger.With().Str("service", "group").Logger(),
		),
		ReflectionService: NewReflectionService(
			repos.ReflectionRepository,
			repos.TagRepository,
			repos.CommentRepository,
			repos.AttachmentRepository,
			repos.ReportRepository,
			storage,
			authz,
			logger.With().Str("service", "reflection").Logger(),
		),
		CommentService: NewCommentService(
			repos.CommentRepository,
			repos.ReflectionRepository,
			authz,
			logger.With().Str("service", "comment").Logger(),
		),
		NotificationService: NewNotificationService(
			repos.NotificationRepository,
			repos.ProfileRepository,
			logger.With().Str("service", "notification").Logger(),
		),
		TagService: NewTagService(
			repos.TagRepository,
			logger.With().Str("service", "tag").Logger(),
		),
		ReportService: NewReportService(
			repos.ReportRepository,
			logger.With().Str("service", "report").Logger(),
		),
		MessageService: NewMessageService(
			repos.MessageRepository,
			repos.ProfileRepository,
			logger.With().Str("service", "message").Logger(),
		),
	}
}
