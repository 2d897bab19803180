package atproto_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lukelittle/claroz/internal/core"
	"github.com/lukelittle/claroz/pkg/atproto"
)

func newTestClient(t *testing.T, handler http.Handler, cfg atproto.Config) *atproto.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg.ServerURL = server.URL
	client := atproto.NewClient(cfg)
	t.Cleanup(func() { client.Close() }) //nolint:errcheck

	return client
}

func TestClient_GetProfile(t *testing.T) {
	t.Parallel()

	t.Run("fetches and caches the profile", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)

			require.Equal(t, "/xrpc/app.bsky.actor.getProfile", r.URL.Path)
			require.Equal(t, "alice.example.com", r.URL.Query().Get("actor"))
			require.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))

			json.NewEncoder(w).Encode(core.RemoteProfile{ //nolint:errcheck
				DID:            "did:plc:alice",
				Handle:         "alice.example.com",
				DisplayName:    "Alice",
				FollowersCount: 7,
			})
		}), atproto.Config{AccessToken: "token-123"})

		profile := client.GetProfile(t.Context(), "alice.example.com")
		require.NotNil(t, profile)
		require.Equal(t, "did:plc:alice", profile.DID)
		require.Equal(t, int64(7), profile.FollowersCount)

		// Repeat lookups within the TTL never hit the server.
		require.NotNil(t, client.GetProfile(t.Context(), "alice.example.com"))
		require.NotNil(t, client.GetProfile(t.Context(), "alice.example.com"))
		require.Equal(t, int64(1), hits.Load())
	})

	t.Run("refetches after the cache expires", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			json.NewEncoder(w).Encode(core.RemoteProfile{Handle: "alice.example.com"}) //nolint:errcheck
		}), atproto.Config{ProfileCacheTTL: 10 * time.Millisecond})

		require.NotNil(t, client.GetProfile(t.Context(), "alice.example.com"))
		time.Sleep(20 * time.Millisecond)
		require.NotNil(t, client.GetProfile(t.Context(), "alice.example.com"))

		require.Equal(t, int64(2), hits.Load())
	})

	t.Run("returns nil on server error", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}), atproto.Config{})

		require.Nil(t, client.GetProfile(t.Context(), "alice.example.com"))
	})

	t.Run("does not cache failures", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int64
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if hits.Add(1) == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			json.NewEncoder(w).Encode(core.RemoteProfile{Handle: "alice.example.com"}) //nolint:errcheck
		}), atproto.Config{})

		require.Nil(t, client.GetProfile(t.Context(), "alice.example.com"))
		require.NotNil(t, client.GetProfile(t.Context(), "alice.example.com"))
		require.Equal(t, int64(2), hits.Load())
	})
}

func TestClient_GetAuthorFeed(t *testing.T) {
	t.Parallel()

	t.Run("maps posts and passes the cursor through", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/xrpc/app.bsky.feed.getAuthorFeed", r.URL.Path)
			require.Equal(t, "alice.example.com", r.URL.Query().Get("actor"))
			require.Equal(t, "cursor-in", r.URL.Query().Get("cursor"))
			require.Equal(t, "25", r.URL.Query().Get("limit"))

			w.Write([]byte(`{
				"feed": [
					{"post": {
						"uri": "at://did:plc:alice/app.bsky.feed.post/1",
						"cid": "bafy1",
						"author": {"did": "did:plc:alice", "handle": "alice.example.com", "displayName": "Alice"},
						"record": {"text": "hello", "createdAt": "2026-08-30T10:00:00Z"},
						"likeCount": 3,
						"replyCount": 1
					}}
				],
				"cursor": "cursor-out"
			}`)) //nolint:errcheck
		}), atproto.Config{})

		posts, cursor := client.GetAuthorFeed(t.Context(), "alice.example.com", "cursor-in", 25)

		require.Equal(t, "cursor-out", cursor)
		require.Len(t, posts, 1)
		require.Equal(t, "at://did:plc:alice/app.bsky.feed.post/1", posts[0].URI)
		require.Equal(t, "alice.example.com", posts[0].Author.Handle)
		require.Equal(t, "hello", posts[0].Text)
		require.Equal(t, "2026-08-30T10:00:00Z", posts[0].CreatedAt)
		require.Equal(t, int64(3), posts[0].LikeCount)
	})

	t.Run("degrades to an empty page on failure", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}), atproto.Config{})

		posts, cursor := client.GetAuthorFeed(t.Context(), "alice.example.com", "", 10)

		require.Empty(t, posts)
		require.Empty(t, cursor)
	})
}

func TestClient_RefreshSession(t *testing.T) {
	t.Parallel()

	t.Run("returns the rotated pair", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/xrpc/com.atproto.server.refreshSession", r.URL.Path)
			require.Equal(t, http.MethodPost, r.Method)

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "old-refresh", body["refreshToken"])

			json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
				"accessJwt":  "new-access",
				"refreshJwt": "new-refresh",
			})
		}), atproto.Config{})

		pair, err := client.RefreshSession(t.Context(), "old-refresh")
		require.NoError(t, err)
		require.Equal(t, "new-access", pair.AccessToken)
		require.Equal(t, "new-refresh", pair.RefreshToken)
	})

	t.Run("maps rejection to an expired auth error", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}), atproto.Config{})

		_, err := client.RefreshSession(t.Context(), "stale")
		require.ErrorIs(t, err, core.ErrAuthExpired)
	})

	t.Run("rejects a pair with missing tokens", func(t *testing.T) {
		t.Parallel()

		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(map[string]string{"accessJwt": "only-access"}) //nolint:errcheck
		}), atproto.Config{})

		_, err := client.RefreshSession(t.Context(), "stale")
		require.ErrorIs(t, err, core.ErrMalformedRemoteData)
	})
}
