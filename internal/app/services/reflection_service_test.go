package services

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casportal/casportal/internal/app/auth"
	"github.com/casportal/casportal/internal/app/models"
	"github.com/casportal/casportal/internal/app/models/dto"
	"github.com/casportal/casportal/internal/pkg/apperrors"
)

type stubReflectionStore struct {
	ReflectionStore
	reflections map[int64]*models.Reflection
	favourites  map[[2]int64]bool
	tagLinks    map[int64][]int64
	nextID      int64
}

func (s *stubReflectionStore) CreateReflection(_ context.Context, ref *models.Reflection) error {
	s.nextID++
	ref.ID = s.nextID
	if s.reflections == nil {
		s.reflections = map[int64]*models.Reflection{}
	}
	s.reflections[ref.ID] = ref
	return nil
}

func (s *stubReflectionStore) GetReflectionByID(_ context.Context, id, _ int64) (*models.Reflection, error) {
	if ref, ok := s.reflections[id]; ok {
		return ref, nil
	}
	return nil, apperrors.ErrReflectionNotFound
}

func (s *stubReflectionStore) UpdateReflection(_ context.Context, ref *models.Reflection) error {
	s.reflections[ref.ID] = ref
	return nil
}

func (s *stubReflectionStore) AddFavourite(_ context.Context, reflectionID, profileID int64) error {
	key := [2]int64{reflectionID, profileID}
	if s.favourites == nil {
		s.favourites = map[[2]int64]bool{}
	}
	if s.favourites[key] {
		return apperrors.ErrAlreadyFavourited
	}
	s.favourites[key] = true
	return nil
}

func (s *stubReflectionStore) RemoveFavourite(_ context.Context, reflectionID, profileID int64) error {
	key := [2]int64{reflectionID, profileID}
	if !s.favourites[key] {
		return apperrors.ErrNotFavourited
	}
	delete(s.favourites, key)
	return nil
}

func (s *stubReflectionStore) SetTags(_ context.Context, reflectionID int64, tagIDs []int64) error {
	if s.tagLinks == nil {
		s.tagLinks = map[int64][]int64{}
	}
	s.tagLinks[reflectionID] = tagIDs
	return nil
}

type stubTagStore struct {
	TagStore
	byName map[string]*models.Tag
	nextID int64
}

func (s *stubTagStore) GetOrCreate(_ context.Context, name string) (*models.Tag, error) {
	if s.byName == nil {
		s.byName = map[string]*models.Tag{}
	}
	if t, ok := s.byName[name]; ok {
		return t, nil
	}
	s.nextID++
	t := &models.Tag{ID: s.nextID, Name: name}
	s.byName[name] = t
	return t, nil
}

func (s *stubTagStore) TagsByReflectionIDs(_ context.Context, _ []int64) (map[int64][]models.Tag, error) {
	return map[int64][]models.Tag{}, nil
}

type stubAttachmentStore struct {
	AttachmentStore
}

func (s *stubAttachmentStore) AttachmentsByReflectionIDs(_ context.Context, _ []int64) (map[int64][]models.Attachment, error) {
	return map[int64][]models.Attachment{}, nil
}

func newReflectionService(reflections *stubReflectionStore, tags *stubTagStore, profiles *stubProfileStore, groups *stubGroupStore) ReflectionService {
	authz := auth.NewAuthorizationService(profiles, groups, zerolog.Nop())
	return NewReflectionService(reflections, tags, nil, &stubAttachmentStore{}, nil, nil, authz, zerolog.Nop())
}

func TestCreateReflectionRequiresCategory(t *testing.T) {
	svc := newReflectionService(&stubReflectionStore{}, &stubTagStore{}, &stubProfileStore{}, &stubGroupStore{})

	_, err := svc.CreateReflection(context.Background(), &models.Profile{ID: 1}, &dto.CreateReflectionRequest{
		Title:       "A week without a category",
		TextContent: "text",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateReflectionDefaultsVisibilityFromAuthor(t *testing.T) {
	reflections := &stubReflectionStore{}
	svc := newReflectionService(reflections, &stubTagStore{}, &stubProfileStore{}, &stubGroupStore{})

	actor := &models.Profile{ID: 1, PostVisibility: models.VisibilityGroup}
	ref, err := svc.CreateReflection(context.Background(), actor, &dto.CreateReflectionRequest{
		Title:      "Football Practice",
		Activity:   true,
		Creativity: false,
	})
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityGroup, ref.PostVisibility)
	assert.True(t, strings.HasPrefix(ref.Slug, "football-practice-"))

	tier := models.VisibilityEveryone
	ref, err = svc.CreateReflection(context.Background(), actor, &dto.CreateReflectionRequest{
		Title:          "Open Mic Night",
		Creativity:     true,
		PostVisibility: &tier,
	})
	require.NoError(t, err)
	assert.Equal(t, models.VisibilityEveryone, ref.PostVisibility)

	bad := 7
	_, err = svc.CreateReflection(context.Background(), actor, &dto.CreateReflectionRequest{
		Title:          "Bad Tier",
		Creativity:     true,
		PostVisibility: &bad,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateReflectionDeduplicatesTags(t *testing.T) {
	reflections := &stubReflectionStore{}
	tags := &stubTagStore{}
	svc := newReflectionService(reflections, tags, &stubProfileStore{}, &stubGroupStore{})

	ref, err := svc.CreateReflection(context.Background(), &models.Profile{ID: 1}, &dto.CreateReflectionRequest{
		Title:   "Tagged",
		Service: true,
		Tags:    []string{"music", "", "music", "sport"},
	})
	require.NoError(t, err)
	require.Len(t, ref.Tags, 2)
	assert.Equal(t, "music", ref.Tags[0].Name)
	assert.Equal(t, "sport", ref.Tags[1].Name)
	assert.Len(t, reflections.tagLinks[ref.ID], 2)
}

func TestFavouriteHonoursVisibility(t *testing.T) {
	author := &models.Profile{ID: 1}
	reflections := &stubReflectionStore{reflections: map[int64]*models.Reflection{
		10: {ID: 10, ProfileID: 1, PostVisibility: models.VisibilityCoordinator},
	}}
	profiles := &stubProfileStore{profiles: map[int64]*models.Profile{1: author}}
	svc := newReflectionService(reflections, &stubTagStore{}, profiles, &stubGroupStore{})

	stranger := &models.Profile{ID: 2}
	err := svc.Favourite(context.Background(), stranger, 10)
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Empty(t, reflections.favourites)
}

func TestFavouriteTwiceConflicts(t *testing.T) {
	reflections := &stubReflectionStore{reflections: map[int64]*models.Reflection{
		10: {ID: 10, ProfileID: 1, PostVisibility: models.VisibilityEveryone},
	}}
	svc := newReflectionService(reflections, &stubTagStore{}, &stubProfileStore{}, &stubGroupStore{})

	reader := &models.Profile{ID: 2}
	require.NoError(t, svc.Favourite(context.Background(), reader, 10))
	err := svc.Favourite(context.Background(), reader, 10)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyFavourited)
}

func TestUnfavouriteWithoutFavourite(t *testing.T) {
	reflections := &stubReflectionStore{reflections: map[int64]*models.Reflection{
		10: {ID: 10, ProfileID: 1, PostVisibility: models.VisibilityEveryone},
	}}
	svc := newReflectionService(reflections, &stubTagStore{}, &stubProfileStore{}, &stubGroupStore{})

	err := svc.Unfavourite(context.Background(), &models.Profile{ID: 2}, 10)
	assert.ErrorIs(t, err, apperrors.ErrNotFavourited)
}

func TestUpdateReflectionKeepsCategoryRule(t *testing.T) {
	reflections := &stubReflectionStore{reflections: map[int64]*models.Reflection{
		10: {ID: 10, ProfileID: 1, Title: "Old", Activity: true, PostVisibility: models.VisibilityEveryone},
	}}
	svc := newReflectionService(reflections, &stubTagStore{}, &stubProfileStore{}, &stubGroupStore{})

	off := false
	owner := &models.Profile{ID: 1}
	_, err := svc.UpdateReflection(context.Background(), owner, 10, &dto.UpdateReflectionRequest{Activity: &off})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUpdateReflectionReslugsOnTitleChange(t *testing.T) {
	reflections := &stubReflectionStore{reflections: map[int64]*models.Reflection{
		10: {ID: 10, ProfileID: 1, Title: "Old", Slug: "old-abc", Activity: true, PostVisibility: models.VisibilityEveryone},
	}}
	svc := newReflectionService(reflections, &stubTagStore{}, &stubProfileStore{}, &stubGroupStore{})

	title := "Fresh Title"
	owner := &models.Profile{ID: 1}
	ref, err := svc.UpdateReflection(context.Background(), owner, 10, &dto.UpdateReflectionRequest{Title: &title})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref.Slug, "fresh-title-"))
	assert.NotEqual(t, "old-abc", ref.Slug)
}

func TestUpdateReflectionOwnershipEnforced(t *testing.T) {
	reflections := &stubReflectionStore{reflections: map[int64]*models.Reflection{
		10: {ID: 10, ProfileID: 1, Activity: true, PostVisibility: models.VisibilityEveryone},
	}}
	svc := newReflectionService(reflections, &stubTagStore{}, &stubProfileStore{}, &stubGroupStore{})

	text := "rewritten"
	_, err := svc.UpdateReflection(context.Background(), &models.Profile{ID: 2}, 10, &dto.UpdateReflectionRequest{TextContent: &text})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// a moderator may edit anyone's reflection
	_, err = svc.UpdateReflection(context.Background(), &models.Profile{ID: 3, IsModerator: true}, 10, &dto.UpdateReflectionRequest{TextContent: &text})
	require.NoError(t, err)
}
