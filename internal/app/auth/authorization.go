// Package auth implements the portal's access control rules: ownership
// checks for mutation and the tiered visibility policy for reflections.
package auth

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/pkg/apperrors"
)

// profileGetter loads profiles for visibility decisions.
type profileGetter interface {
	GetProfileByID(ctx context.Context, id int64) (*models.Profile, error)
}

// groupGetter loads groups for coordinator checks.
type groupGetter interface {
	GetGroupByID(ctx context.Context, id string) (*models.Group, error)
}

// AuthorizationService evaluates the ownership and visibility policies.
// Denials never carry object details; the caller only learns that access
// was refused.
type AuthorizationService struct {
	profiles profileGetter
	groups   groupGetter
	logger   zerolog.Logger
}

// NewAuthorizationService creates an AuthorizationService.
func NewAuthorizationService(profiles profileGetter, groups groupGetter, logger zerolog.Logger) *AuthorizationService {
	return &AuthorizationService{profiles: profiles, groups: groups, logger: logger}
}

// AuthorizeOwnership allows the owner of a resource plus any role holder
// (admin or moderator) and refuses everyone else.
func (s *AuthorizationService) AuthorizeOwnership(actor *models.Profile, ownerID int64) error {
	if actor == nil {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	if actor.ID == ownerID || actor.HasRole() {
		return nil
	}
	s.logger.Debug().Int64("actorId", actor.ID).Msg("ownership check refused")
	return apperrors.NewForbiddenError("permission denied")
}

// AuthorizeReflectionRead applies the visibility tiers:
//
//	tier 0: the author, role holders and the author's group coordinator
//	tier 1: tier 0 plus members of the author's group
//	tier 2: everyone
//
// An author without a group collapses tiers 0 and 1 to the author and role
// holders only.
func (s *AuthorizationService) AuthorizeReflectionRead(ctx context.Context, actor *models.Profile, reflection *models.Reflection) error {
	if actor == nil {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	if reflection.PostVisibility == models.VisibilityEveryone {
		return nil
	}
	if actor.ID == reflection.ProfileID || actor.HasRole() {
		return nil
	}

	author, err := s.profiles.GetProfileByID(ctx, reflection.ProfileID)
	if err != nil {
		return err
	}
	if author.GroupID == nil {
		return apperrors.NewForbiddenError("permission denied")
	}

	group, err := s.groups.GetGroupByID(ctx, *author.GroupID)
	if err != nil {
		return err
	}
	if group.CoordinatorID == actor.ID {
		return nil
	}
	if reflection.PostVisibility == models.VisibilityGroup &&
		actor.GroupID != nil && *actor.GroupID == *author.GroupID {
		return nil
	}

	s.logger.Debug().Int64("actorId", actor.ID).Msg("visibility check refused")
	return apperrors.NewForbiddenError("permission denied")
}

// ReflectionVisibilityScope returns the WHERE fragment restricting a listing
// to reflections the actor may read. The owning query must join the author
// profile as "ap" and left-join the author's group as "ag". Role holders get
// a nil scope, meaning no restriction.
func ReflectionVisibilityScope(actor *models.Profile) sq.Sqlizer {
	if actor.HasRole() {
		return nil
	}
	scope := sq.Or{
		sq.Eq{"r.post_visibility": models.VisibilityEveryone},
		sq.Eq{"r.profile_id": actor.ID},
		sq.Eq{"ag.coordinator_id": actor.ID},
	}
	if actor.GroupID != nil {
		scope = append(scope, sq.And{
			sq.Eq{"r.post_visibility": models.VisibilityGroup},
			sq.Eq{"ap.group_id": *actor.GroupID},
		})
	}
	return scope
}
