package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/lukelittle/claroz/internal/api"
	"github.com/lukelittle/claroz/internal/core"
	"github.com/lukelittle/claroz/internal/posting"
)

type fakeProfiles struct {
	byUsername map[string]*core.ProfileModel
	byID       map[uuid.UUID]*core.ProfileModel

	created []string
}

func (f *fakeProfiles) Create(_ context.Context, username string) (*core.ProfileModel, error) {
	f.created = append(f.created, username)
	profile := &core.ProfileModel{ID: uuid.New(), Username: username}
	return profile, nil
}

func (f *fakeProfiles) GetByID(_ context.Context, id uuid.UUID) (*core.ProfileModel, error) {
	profile, ok := f.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: profile %s", core.ErrNotFound, id)
	}
	return profile, nil
}

func (f *fakeProfiles) GetByUsername(_ context.Context, username string) (*core.ProfileModel, error) {
	profile, ok := f.byUsername[username]
	if !ok {
		return nil, fmt.Errorf("%w: profile %s", core.ErrNotFound, username)
	}
	return profile, nil
}

func (f *fakeProfiles) Link(context.Context, uuid.UUID, core.FederationLink) error { return nil }
func (f *fakeProfiles) Unlink(context.Context, uuid.UUID) error                    { return nil }
func (f *fakeProfiles) UpdateTokens(context.Context, uuid.UUID, core.TokenPair) error {
	return nil
}
func (f *fakeProfiles) SetAvatar(context.Context, uuid.UUID, string, string) error { return nil }
func (f *fakeProfiles) RecountPosts(context.Context, uuid.UUID) error              { return nil }

type fakeFollows struct {
	followed   [][2]uuid.UUID
	unfollowed [][2]uuid.UUID
}

func (f *fakeFollows) Follow(_ context.Context, follower, followee uuid.UUID) error {
	f.followed = append(f.followed, [2]uuid.UUID{follower, followee})
	return nil
}

func (f *fakeFollows) Unfollow(_ context.Context, follower, followee uuid.UUID) error {
	f.unfollowed = append(f.unfollowed, [2]uuid.UUID{follower, followee})
	return nil
}

func (f *fakeFollows) IsFollowing(context.Context, uuid.UUID, uuid.UUID) (bool, error) {
	return false, nil
}

func (f *fakeFollows) FolloweesOf(context.Context, uuid.UUID) ([]core.ProfileModel, error) {
	return nil, nil
}

type fakeFeed struct {
	page *core.FeedPage

	listedViewer uuid.UUID
	listedPage   int
}

func (f *fakeFeed) ListFeed(_ context.Context, viewer uuid.UUID, page int) (*core.FeedPage, error) {
	f.listedViewer = viewer
	f.listedPage = page
	return f.page, nil
}

func (f *fakeFeed) ListProfileFeed(_ context.Context, _ string, page int) (*core.FeedPage, error) {
	f.listedPage = page
	return f.page, nil
}

type fakeFederation struct {
	linked    *core.FederationLink
	refreshed bool
	webhooks  []core.WebhookEvent
}

func (f *fakeFederation) Link(_ context.Context, _ uuid.UUID, link core.FederationLink) error {
	f.linked = &link
	return nil
}

func (f *fakeFederation) Unlink(context.Context, uuid.UUID) error { return nil }

func (f *fakeFederation) Refresh(context.Context, uuid.UUID) error {
	f.refreshed = true
	return nil
}

func (f *fakeFederation) ClientFor(*core.ProfileModel) core.FederationClient { return nil }

func (f *fakeFederation) HandleWebhook(_ context.Context, event core.WebhookEvent) error {
	f.webhooks = append(f.webhooks, event)
	return nil
}

type fakeStore struct {
	content map[string][]byte
}

func (f *fakeStore) Add(context.Context, string, []byte) (string, error) {
	return "bafytest", nil
}

func (f *fakeStore) Cat(_ context.Context, cid string) ([]byte, error) {
	content, ok := f.content[cid]
	if !ok {
		return nil, fmt.Errorf("%w: cid %s", core.ErrNotFound, cid)
	}
	return content, nil
}

func (f *fakeStore) GatewayURL(cid string) string { return "https://gateway.example.com/ipfs/" + cid }
func (f *fakeStore) RemoveLocal(string) error     { return nil }

type fakePosts struct{}

func (fakePosts) Create(_ context.Context, post *core.PostModel) error {
	post.ID = uuid.New()
	return nil
}

func (fakePosts) ListByProfiles(context.Context, []uuid.UUID) ([]core.LocalPost, error) {
	return nil, nil
}

type fixture struct {
	router http.Handler

	profiles   *fakeProfiles
	follows    *fakeFollows
	feed       *fakeFeed
	federation *fakeFederation
	store      *fakeStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		profiles: &fakeProfiles{
			byUsername: make(map[string]*core.ProfileModel),
			byID:       make(map[uuid.UUID]*core.ProfileModel),
		},
		follows:    &fakeFollows{},
		feed:       &fakeFeed{page: &core.FeedPage{Page: 1}},
		federation: &fakeFederation{},
		store:      &fakeStore{content: make(map[string][]byte)},
	}

	poster := &posting.Service{
		Logger:   slog.Default(),
		Store:    f.store,
		Posts:    fakePosts{},
		Profiles: f.profiles,
	}
	require.NoError(t, poster.Init(t.Context()))

	handlers := &api.Handlers{
		Logger:     slog.Default(),
		Profiles:   f.profiles,
		Follows:    f.follows,
		Feed:       f.feed,
		Federation: f.federation,
		Posting:    poster,
		Store:      f.store,
	}
	require.NoError(t, handlers.Init(t.Context()))

	router := chi.NewMux()
	handlers.Routes(router)
	f.router = router

	return f
}

func (f *fixture) addProfile(username string) *core.ProfileModel {
	profile := &core.ProfileModel{ID: uuid.New(), Username: username}
	f.profiles.byUsername[username] = profile
	f.profiles.byID[profile.ID] = profile
	return profile
}

func (f *fixture) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func TestHandlers_Feed(t *testing.T) {
	t.Parallel()

	t.Run("resolves the viewer and page", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		viewer := f.addProfile("alice")

		rec := f.do(t, http.MethodGet, "/v1/feed?viewer=alice&page=3", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, viewer.ID, f.feed.listedViewer)
		require.Equal(t, 3, f.feed.listedPage)
	})

	t.Run("defaults a missing page to 1", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addProfile("alice")

		rec := f.do(t, http.MethodGet, "/v1/feed?viewer=alice", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, 1, f.feed.listedPage)
	})

	t.Run("404s an unknown viewer", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		rec := f.do(t, http.MethodGet, "/v1/feed?viewer=nobody", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandlers_Follow(t *testing.T) {
	t.Parallel()

	t.Run("creates the edge and returns fresh counters", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		alice := f.addProfile("alice")
		bob := f.addProfile("bob")

		rec := f.do(t, http.MethodPost, "/v1/profiles/bob/follow", map[string]string{"follower": "alice"})

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, [][2]uuid.UUID{{alice.ID, bob.ID}}, f.follows.followed)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, true, body["following"])
	})

	t.Run("rejects a self follow", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addProfile("alice")

		rec := f.do(t, http.MethodPost, "/v1/profiles/alice/follow", map[string]string{"follower": "alice"})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Empty(t, f.follows.followed)
	})

	t.Run("unfollow removes the edge", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		alice := f.addProfile("alice")
		bob := f.addProfile("bob")

		rec := f.do(t, http.MethodPost, "/v1/profiles/bob/unfollow", map[string]string{"follower": "alice"})

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, [][2]uuid.UUID{{alice.ID, bob.ID}}, f.follows.unfollowed)
	})
}

func TestHandlers_CreateProfile(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/v1/profiles", map[string]string{"username": "alice"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, []string{"alice"}, f.profiles.created)

	rec = f.do(t, http.MethodPost, "/v1/profiles", map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_CreatePost(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addProfile("alice")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("username", "alice"))
	require.NoError(t, writer.WriteField("caption", "my cat"))

	part, err := writer.CreateFormFile("image", "cat.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/posts", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var post core.PostModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))
	require.Equal(t, "bafytest", post.ImageCID)
	require.Equal(t, "my cat", post.Caption)
}

func TestHandlers_GetMedia(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.store.content["bafytest"] = []byte("image bytes")

	rec := f.do(t, http.MethodGet, "/v1/media/bafytest", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image bytes", rec.Body.String())

	rec = f.do(t, http.MethodGet, "/v1/media/bafymissing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlers_Federation(t *testing.T) {
	t.Parallel()

	t.Run("links an account", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addProfile("alice")

		rec := f.do(t, http.MethodPost, "/v1/federation/link", map[string]string{
			"username":      "alice",
			"server":        "https://pds.example.com",
			"handle":        "alice.example.com",
			"did":           "did:plc:alice",
			"access_token":  "access-1",
			"refresh_token": "refresh-1",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, f.federation.linked)
		require.Equal(t, "https://pds.example.com", f.federation.linked.Server)
		require.Equal(t, "refresh-1", f.federation.linked.RefreshToken)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "success", body["status"])
	})

	t.Run("refreshes a token", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addProfile("alice")

		rec := f.do(t, http.MethodPost, "/v1/federation/refresh-token", map[string]string{"username": "alice"})

		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, f.federation.refreshed)
	})

	t.Run("acknowledges a webhook", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)

		rec := f.do(t, http.MethodPost, "/v1/federation/webhook", map[string]string{
			"type":   "profile.update",
			"handle": "alice.example.com",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, f.federation.webhooks, 1)
		require.Equal(t, "profile.update", f.federation.webhooks[0].Type)
	})

	t.Run("rejects remote reads without a link", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addProfile("alice")

		rec := f.do(t, http.MethodGet, "/v1/federation/profile/bob.example.com?viewer=alice", nil)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.True(t, strings.Contains(rec.Body.String(), "No federation account linked"))
	})
}
