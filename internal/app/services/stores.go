package services

import (
	"context"

	"github.com/Masterminds/squirrel"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/query"
)

// Store interfaces consumed by the services. The concrete repositories
// satisfy them; service tests substitute stubs.
type (
	// ProfileStore persists profiles
	ProfileStore interface {
		CreateProfile(ctx context.Context, p *models.Profile) error
		GetProfileByID(ctx context.Context, id int64) (*models.Profile, error)
		UpdateProfile(ctx context.Context, p *models.Profile) error
		SetModerator(ctx context.Context, id int64, isModerator bool) error
		SetGroup(ctx context.Context, id int64, groupID *string) error
		SetAvatar(ctx context.Context, id int64, avatarID *string) error
		TouchLastOnline(ctx context.Context, id int64) error
		DeleteProfile(ctx context.Context, id int64) error
		QueryProfiles(ctx context.Context, filter map[string]any, sortParams []query.SortParam, pag *query.Pagination) ([]models.Profile, int64, error)
	}

	// CredentialStore persists login credentials
	CredentialStore interface {
		CreateBasicLogin(ctx context.Context, login *models.BasicLogin) error
		GetBasicLoginByEmail(ctx context.Context, email string) (*models.BasicLogin, error)
		GetBasicLoginByProfileID(ctx context.Context, profileID int64) (*models.BasicLogin, error)
		UpdatePassword(ctx context.Context, profileID int64, hash string) error
		MarkVerified(ctx context.Context, profileID int64) error
		MarkVerificationSent(ctx context.Context, profileID int64) error
		CreateForeignLogin(ctx context.Context, login *models.ForeignLogin) error
		GetForeignLogin(ctx context.Context, provider, foreignID string) (*models.ForeignLogin, error)
		DeleteCredentials(ctx context.Context, profileID int64) error
	}

	// ConfirmationCodeStore persists single-use confirmation codes
	ConfirmationCodeStore interface {
		Replace(ctx context.Context, code *models.ConfirmationCode) error
		GetByProfile(ctx context.Context, profileID int64) (*models.ConfirmationCode, error)
		GetByCode(ctx context.Context, code string) (*models.ConfirmationCode, error)
		Delete(ctx context.Context, profileID int64) error
	}

	// GroupStore persists groups
	GroupStore interface {
		CreateGroup(ctx context.Context, g *models.Group) error
		GetGroupByID(ctx context.Context, id string) (*models.Group, error)
		GetGroupByCoordinator(ctx context.Context, profileID int64) (*models.Group, error)
		UpdateGroup(ctx context.Context, g *models.Group) error
		SetAvatar(ctx context.Context, id string, avatarID *string) error
		DeleteGroup(ctx context.Context, id string) error
		DetachMembers(ctx context.Context, id string) error
		QueryGroups(ctx context.Context, filter map[string]any, sortParams []query.SortParam, pag *query.Pagination) ([]models.Group, int64, error)
	}

	// JoinRequestStore persists pending group membership requests
	JoinRequestStore interface {
		Create(ctx context.Context, req *models.GroupJoinRequest) error
		Get(ctx context.Context, groupID string, profileID int64) (*models.GroupJoinRequest, error)
		ListByGroup(ctx context.Context, groupID string) ([]models.GroupJoinRequest, error)
		ListByProfile(ctx context.Context, profileID int64) ([]models.GroupJoinRequest, error)
		Delete(ctx context.Context, groupID string, profileID int64) error
		DeleteAllForProfile(ctx context.Context, profileID int64) error
		DeleteAllForGroup(ctx context.Context, groupID string) error
	}

	// ReflectionStore persists reflections, favourites and tag links
	ReflectionStore interface {
		CreateReflection(ctx context.Context, ref *models.Reflection) error
		GetReflectionByID(ctx context.Context, id, actorID int64) (*models.Reflection, error)
		GetReflectionBySlug(ctx context.Context, slug string, actorID int64) (*models.Reflection, error)
		UpdateReflection(ctx context.Context, ref *models.Reflection) error
		DeleteReflection(ctx context.Context, id int64) error
		QueryReflections(ctx context.Context, actorID int64, scope squirrel.Sqlizer, filter map[string]any, sortParams []query.SortParam, pag *query.Pagination) ([]models.Reflection, int64, error)
		QueryFavourites(ctx context.Context, actorID int64, pag *query.Pagination) ([]models.Reflection, int64, error)
		IsFavourite(ctx context.Context, reflectionID, profileID int64) (bool, error)
		AddFavourite(ctx context.Context, reflectionID, profileID int64) error
		RemoveFavourite(ctx context.Context, reflectionID, profileID int64) error
		RemoveFavouritesOf(ctx context.Context, profileID int64) error
		ListIDsByProfile(ctx context.Context, profileID int64) ([]int64, error)
		SetTags(ctx context.Context, reflectionID int64, tagIDs []int64) error
	}

	// TagStore persists tags
	TagStore interface {
		GetOrCreate(ctx context.Context, name string) (*models.Tag, error)
		TagsByReflectionIDs(ctx context.Context, reflectionIDs []int64) (map[int64][]models.Tag, error)
		DeleteTag(ctx context.Context, id int64) error
		QueryTags(ctx context.Context, filter map[string]any, sortParams []query.SortParam, pag *query.Pagination) ([]models.Tag, int64, error)
	}

	// CommentStore persists comments
	CommentStore interface {
		CreateComment(ctx context.Context, c *models.Comment) error
		GetCommentByID(ctx context.Context, id int64) (*models.Comment, error)
		UpdateComment(ctx context.Context, c *models.Comment) error
		DeleteComment(ctx context.Context, id int64) error
		DeleteByReflection(ctx context.Context, reflectionID int64) error
		DeleteByProfile(ctx context.Context, profileID int64) error
		QueryComments(ctx context.Context, filter map[string]any, sortParams []query.SortParam, pag *query.Pagination) ([]models.Comment, int64, error)
	}

	// NotificationStore persists notifications and their recipient edges
	NotificationStore interface {
		CreateNotification(ctx context.Context, n *models.Notification, recipientIDs []int64) error
		GetNotificationByID(ctx context.Context, id int64) (*models.Notification, error)
		QueryForRecipient(ctx context.Context, profileID int64, filter map[string]any, sortParams []query.SortParam, pag *query.Pagination) ([]models.Notification, int64, error)
		QueryPosted(ctx context.Context, profileID int64, filter map[string]any, sortParams []query.SortParam, pag *query.Pagination) ([]models.Notification, int64, error)
		UpdateNotification(ctx context.Context, n *models.Notification) error
		DeleteNotification(ctx context.Context, id int64) error
		SetRead(ctx context.Context, notificationID, profileID int64, read bool) error
		CountUnread(ctx context.Context, profileID int64) (int64, error)
		DeleteForProfile(ctx context.Context, profileID int64) error
	}

	// AttachmentStore persists attachment rows
	AttachmentStore interface {
		CreateAttachment(ctx context.Context, a *models.Attachment) error
		GetAttachmentByID(ctx context.Context, id string) (*models.Attachment, error)
		AttachmentsByReflectionIDs(ctx context.Context, reflectionIDs []int64) (map[int64][]models.Attachment, error)
		DeleteAttachment(ctx context.Context, id string) error
		DeleteByReflection(ctx context.Context, reflectionID int64) ([]models.Attachment, error)
	}

	// AvatarStore persists avatar rows
	AvatarStore interface {
		CreateAvatar(ctx context.Context, a *models.Avatar) error
		GetAvatarByID(ctx context.Context, id string) (*models.Avatar, error)
		DeleteAvatar(ctx context.Context, id string) error
	}

	// MessageStore persists direct messages
	MessageStore interface {
		CreateMessage(ctx context.Context, m *models.Message) error
		GetMessageByID(ctx context.Context, id int64) (*models.Message, error)
		DeleteMessage(ctx context.Context, id int64) error
		QueryConversation(ctx context.Context, a, b int64, pag *query.Pagination) ([]models.Message, int64, error)
	}

	// ReportStore persists moderation reports
	ReportStore interface {
		CreateReflectionReport(ctx context.Context, report *models.ReflectionReport) error
		CreateCommentReport(ctx context.Context, report *models.CommentReport) error
		ListReflectionReports(ctx context.Context, pag *query.Pagination) ([]models.ReflectionReport, int64, error)
		ListCommentReports(ctx context.Context, pag *query.Pagination) ([]models.CommentReport, int64, error)
		DeleteReflectionReport(ctx context.Context, id int64) error
		DeleteCommentReport(ctx context.Context, id int64) error
		DeleteByReflection(ctx context.Context, reflectionID int64) error
	}
)
