package posting_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lukelittle/claroz/internal/core"
	"github.com/lukelittle/claroz/internal/posting"
)

type fakeStore struct {
	cid string
	err error

	addedName    string
	addedContent []byte
}

func (f *fakeStore) Add(_ context.Context, name string, content []byte) (string, error) {
	f.addedName = name
	f.addedContent = content
	return f.cid, f.err
}

func (f *fakeStore) Cat(context.Context, string) ([]byte, error) { panic("not used") }
func (f *fakeStore) GatewayURL(string) string                    { panic("not used") }
func (f *fakeStore) RemoveLocal(string) error                    { panic("not used") }

type fakePosts struct {
	created *core.PostModel
}

func (f *fakePosts) Create(_ context.Context, post *core.PostModel) error {
	f.created = post
	return nil
}

func (f *fakePosts) ListByProfiles(context.Context, []uuid.UUID) ([]core.LocalPost, error) {
	panic("not used")
}

type fakeProfiles struct {
	recountedFor uuid.UUID

	avatarCID      string
	avatarFilename string
}

func (f *fakeProfiles) Create(context.Context, string) (*core.ProfileModel, error) {
	panic("not used")
}

func (f *fakeProfiles) GetByID(context.Context, uuid.UUID) (*core.ProfileModel, error) {
	panic("not used")
}

func (f *fakeProfiles) GetByUsername(context.Context, string) (*core.ProfileModel, error) {
	panic("not used")
}

func (f *fakeProfiles) Link(context.Context, uuid.UUID, core.FederationLink) error {
	panic("not used")
}

func (f *fakeProfiles) Unlink(context.Context, uuid.UUID) error { panic("not used") }
func (f *fakeProfiles) UpdateTokens(context.Context, uuid.UUID, core.TokenPair) error {
	panic("not used")
}

func (f *fakeProfiles) SetAvatar(_ context.Context, _ uuid.UUID, cid, filename string) error {
	f.avatarCID = cid
	f.avatarFilename = filename
	return nil
}

func (f *fakeProfiles) RecountPosts(_ context.Context, id uuid.UUID) error {
	f.recountedFor = id
	return nil
}

func newService(t *testing.T, store *fakeStore) (*posting.Service, *fakePosts, *fakeProfiles) {
	t.Helper()

	posts := &fakePosts{}
	profiles := &fakeProfiles{}

	service := &posting.Service{
		Logger:   slog.Default(),
		Store:    store,
		Posts:    posts,
		Profiles: profiles,
	}
	require.NoError(t, service.Init(t.Context()))

	return service, posts, profiles
}

func TestService_CreatePost(t *testing.T) {
	t.Parallel()

	t.Run("stages media before persisting", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{cid: "bafytest"}
		service, posts, profiles := newService(t, store)
		author := uuid.New()

		post, err := service.CreatePost(t.Context(), author, "cat.jpg", []byte("image bytes"), "my cat")
		require.NoError(t, err)

		require.Equal(t, "cat.jpg", store.addedName)
		require.Equal(t, []byte("image bytes"), store.addedContent)

		require.Equal(t, "bafytest", post.ImageCID)
		require.Equal(t, "cat.jpg", post.OriginalFilename)
		require.Equal(t, "my cat", post.Caption)
		require.Same(t, post, posts.created)

		require.Equal(t, author, profiles.recountedFor)
	})

	t.Run("allows caption-only posts", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{}
		service, posts, _ := newService(t, store)

		post, err := service.CreatePost(t.Context(), uuid.New(), "", nil, "just words")
		require.NoError(t, err)

		require.Empty(t, store.addedName)
		require.Empty(t, post.ImageCID)
		require.NotNil(t, posts.created)
	})

	t.Run("fails the whole operation when staging fails", func(t *testing.T) {
		t.Parallel()

		store := &fakeStore{err: fmt.Errorf("%w: down", core.ErrStoreUnavailable)}
		service, posts, profiles := newService(t, store)

		_, err := service.CreatePost(t.Context(), uuid.New(), "cat.jpg", []byte("image bytes"), "my cat")
		require.ErrorIs(t, err, core.ErrStoreUnavailable)

		require.Nil(t, posts.created)
		require.Equal(t, uuid.Nil, profiles.recountedFor)
	})
}

func TestService_SetAvatar(t *testing.T) {
	t.Parallel()

	store := &fakeStore{cid: "bafyavatar"}
	service, _, profiles := newService(t, store)

	require.NoError(t, service.SetAvatar(t.Context(), uuid.New(), "me.png", []byte("avatar bytes")))
	require.Equal(t, "bafyavatar", profiles.avatarCID)
	require.Equal(t, "me.png", profiles.avatarFilename)
}
