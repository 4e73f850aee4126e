package auth

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/pkg/apperrors"
)

type stubProfiles map[int64]*models.Profile

func (s stubProfiles) GetProfileByID(_ context.Context, id int64) (*models.Profile, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, apperrors.ErrProfileNotFound
}

type stubGroups map[string]*models.Group

func (s stubGroups) GetGroupByID(_ context.Context, id string) (*models.Group, error) {
	if g, ok := s[id]; ok {
		return g, nil
	}
	return nil, apperrors.ErrGroupNotFound
}

func strptr(s string) *string { return &s }

func newService(profiles stubProfiles, groups stubGroups) *AuthorizationService {
	return NewAuthorizationService(profiles, groups, zerolog.Nop())
}

func TestAuthorizeOwnership(t *testing.T) {
	svc := newService(nil, nil)

	owner := &models.Profile{ID: 1}
	admin := &models.Profile{ID: 2, IsAdmin: true}
	moderator := &models.Profile{ID: 3, IsModerator: true}
	stranger := &models.Profile{ID: 4}

	assert.NoError(t, svc.AuthorizeOwnership(owner, 1))
	assert.NoError(t, svc.AuthorizeOwnership(admin, 1))
	assert.NoError(t, svc.AuthorizeOwnership(moderator, 1))

	err := svc.AuthorizeOwnership(stranger, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	err = svc.AuthorizeOwnership(nil, 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthorizeReflectionReadMatrix(t *testing.T) {
	// author 10 belongs to group "g1" coordinated by 20; 11 shares the
	// group, 30 coordinates it without being a member, 40 is unrelated
	author := &models.Profile{ID: 10, GroupID: strptr("g1")}
	groupmate := &models.Profile{ID: 11, GroupID: strptr("g1")}
	coordinator := &models.Profile{ID: 30}
	stranger := &models.Profile{ID: 40}
	otherGroup := &models.Profile{ID: 41, GroupID: strptr("g2")}
	admin := &models.Profile{ID: 50, IsAdmin: true}

	svc := newService(
		stubProfiles{10: author},
		stubGroups{"g1": {ID: "g1", CoordinatorID: 30}},
	)

	reflectionAt := func(vis int) *models.Reflection {
		return &models.Reflection{ID: 1, ProfileID: 10, PostVisibility: vis}
	}

	cases := []struct {
		name    string
		actor   *models.Profile
		vis     int
		allowed bool
	}{
		{"author reads own tier 0", author, models.VisibilityCoordinator, true},
		{"coordinator reads tier 0", coordinator, models.VisibilityCoordinator, true},
		{"admin reads tier 0", admin, models.VisibilityCoordinator, true},
		{"groupmate denied tier 0", groupmate, models.VisibilityCoordinator, false},
		{"stranger denied tier 0", stranger, models.VisibilityCoordinator, false},

		{"groupmate reads tier 1", groupmate, models.VisibilityGroup, true},
		{"coordinator reads tier 1", coordinator, models.VisibilityGroup, true},
		{"other group denied tier 1", otherGroup, models.VisibilityGroup, false},
		{"stranger denied tier 1", stranger, models.VisibilityGroup, false},

		{"stranger reads tier 2", stranger, models.VisibilityEveryone, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.AuthorizeReflectionRead(context.Background(), tc.actor, reflectionAt(tc.vis))
			if tc.allowed {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
			}
		})
	}
}

func TestAuthorizeReflectionReadAuthorWithoutGroup(t *testing.T) {
	// with no group there is no coordinator and no groupmates: tiers 0
	// and 1 admit nobody beyond the author and role holders
	author := &models.Profile{ID: 10}
	svc := newService(stubProfiles{10: author}, stubGroups{})

	for _, vis := range []int{models.VisibilityCoordinator, models.VisibilityGroup} {
		err := svc.AuthorizeReflectionRead(context.Background(), &models.Profile{ID: 40}, &models.Reflection{ProfileID: 10, PostVisibility: vis})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	}
}

func TestAuthorizeReflectionReadDenialCarriesNoDetails(t *testing.T) {
	author := &models.Profile{ID: 10, GroupID: strptr("g1")}
	svc := newService(stubProfiles{10: author}, stubGroups{"g1": {ID: "g1", CoordinatorID: 30}})

	err := svc.AuthorizeReflectionRead(context.Background(), &models.Profile{ID: 40}, &models.Reflection{ID: 77, ProfileID: 10, Title: "secret"})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret")
	assert.NotContains(t, err.Error(), "77")
}

func TestReflectionVisibilityScope(t *testing.T) {
	admin := &models.Profile{ID: 1, IsAdmin: true}
	assert.Nil(t, ReflectionVisibilityScope(admin))

	member := &models.Profile{ID: 2, GroupID: strptr("g1")}
	sql, args, err := ReflectionVisibilityScope(member).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "r.post_visibility = ?")
	assert.Contains(t, sql, "r.profile_id = ?")
	assert.Contains(t, sql, "ag.coordinator_id = ?")
	assert.Contains(t, sql, "ap.group_id = ?")
	assert.Contains(t, args, "g1")

	// without a group the same-group branch is absent entirely
	loner := &models.Profile{ID: 3}
	sql, _, err = ReflectionVisibilityScope(loner).ToSql()
	require.NoError(t, err)
	assert.NotContains(t, sql, "ap.group_id")
}
