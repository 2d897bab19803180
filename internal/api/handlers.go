package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lukelittle/claroz/internal/core"
	"github.com/lukelittle/claroz/internal/federation"
	"github.com/lukelittle/claroz/internal/posting"
)

const maxUploadBytes = 32 << 20

// Handlers is the JSON surface consumed by the presentation layer.
type Handlers struct {
	Logger *slog.Logger

	Profiles   core.ProfileRepository
	Follows    core.FollowGraph
	Feed       core.FeedService
	Federation core.FederationService
	Posting    *posting.Service
	Store      core.ContentStore
}

func (h *Handlers) Init(_ context.Context) error {
	h.Logger = h.Logger.With("component", "api.Handlers")
	return nil
}

func (h *Handlers) Routes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/feed", h.listFeed)
		r.Post("/profiles", h.createProfile)
		r.Get("/profiles/{username}/feed", h.listProfileFeed)
		r.Post("/profiles/{username}/follow", h.follow)
		r.Post("/profiles/{username}/unfollow", h.unfollow)

		r.Post("/posts", h.createPost)
		r.Get("/media/{cid}", h.getMedia)

		r.Route("/federation", func(r chi.Router) {
			r.Post("/link", h.linkFederation)
			r.Delete("/link", h.unlinkFederation)
			r.Post("/refresh-token", h.refreshFederationToken)
			r.Post("/webhook", h.federationWebhook)
			r.Get("/profile/{handle}", h.getFederatedProfile)
			r.Get("/posts", h.getFederatedPosts)
			r.Get("/posts/{handle}", h.getFederatedPosts)
		})
	})
}

func (h *Handlers) listFeed(w http.ResponseWriter, r *http.Request) {
	viewer, err := h.Profiles.GetByUsername(r.Context(), r.URL.Query().Get("viewer"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	page, err := h.Feed.ListFeed(r.Context(), viewer.ID, pageParam(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (h *Handlers) listProfileFeed(w http.ResponseWriter, r *http.Request) {
	page, err := h.Feed.ListProfileFeed(r.Context(), chi.URLParam(r, "username"), pageParam(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

type createProfileRequest struct {
	Username string `json:"username"`
}

func (h *Handlers) createProfile(w http.ResponseWriter, r *http.Request) {
	var req createProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	profile, err := h.Profiles.Create(r.Context(), req.Username)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, profile)
}

type followRequest struct {
	Follower string `json:"follower"`
}

func (h *Handlers) follow(w http.ResponseWriter, r *http.Request) {
	h.mutateFollow(w, r, h.Follows.Follow, true)
}

func (h *Handlers) unfollow(w http.ResponseWriter, r *http.Request) {
	h.mutateFollow(w, r, h.Follows.Unfollow, false)
}

func (h *Handlers) mutateFollow(w http.ResponseWriter, r *http.Request, mutate func(context.Context, uuid.UUID, uuid.UUID) error, following bool) {
	var req followRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Follower == "" {
		writeError(w, http.StatusBadRequest, "follower is required")
		return
	}

	followee, err := h.Profiles.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	follower, err := h.Profiles.GetByUsername(r.Context(), req.Follower)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if follower.ID == followee.ID {
		writeError(w, http.StatusBadRequest, "you cannot follow yourself")
		return
	}

	if err := mutate(r.Context(), follower.ID, followee.ID); err != nil {
		h.writeError(w, err)
		return
	}

	// Counters come from a fresh read; the mutation recounted them.
	follower, err = h.Profiles.GetByID(r.Context(), follower.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	followee, err = h.Profiles.GetByID(r.Context(), followee.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"following":      following,
		"followersCount": followee.FollowersCount,
		"followsCount":   follower.FollowsCount,
	})
}

func (h *Handlers) createPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	profile, err := h.Profiles.GetByUsername(r.Context(), r.FormValue("username"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	var (
		media    []byte
		filename string
	)

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()

		media, err = io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "cannot read image")
			return
		}
		filename = header.Filename
	case errors.Is(err, http.ErrMissingFile):
		// Caption-only posts are fine.
	default:
		writeError(w, http.StatusBadRequest, "invalid image upload")
		return
	}

	post, err := h.Posting.CreatePost(r.Context(), profile.ID, filename, media, r.FormValue("caption"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

func (h *Handlers) getMedia(w http.ResponseWriter, r *http.Request) {
	content, err := h.Store.Cat(r.Context(), chi.URLParam(r, "cid"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	w.Write(content) //nolint:errcheck
}

type linkRequest struct {
	Username string `json:"username"`
	core.FederationLink
}

func (h *Handlers) linkFederation(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.Profiles.GetByUsername(r.Context(), req.Username)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.Federation.Link(r.Context(), profile.ID, req.FederationLink); err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, "Federation account linked successfully")
}

func (h *Handlers) unlinkFederation(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Profiles.GetByUsername(r.Context(), r.URL.Query().Get("username"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.Federation.Unlink(r.Context(), profile.ID); err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, "Federation account unlinked successfully")
}

type refreshRequest struct {
	Username string `json:"username"`
}

func (h *Handlers) refreshFederationToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := h.Profiles.GetByUsername(r.Context(), req.Username)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.Federation.Refresh(r.Context(), profile.ID); err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, "Token refreshed successfully")
}

func (h *Handlers) federationWebhook(w http.ResponseWriter, r *http.Request) {
	var event core.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Federation.HandleWebhook(r.Context(), event); err != nil {
		h.writeError(w, err)
		return
	}

	writeSuccess(w, "Webhook processed successfully")
}

func (h *Handlers) getFederatedProfile(w http.ResponseWriter, r *http.Request) {
	client, ok := h.viewerClient(w, r)
	if !ok {
		return
	}

	profile := client.GetProfile(r.Context(), chi.URLParam(r, "handle"))
	if profile == nil {
		writeError(w, http.StatusNotFound, "Profile not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"profile": profile,
	})
}

func (h *Handlers) getFederatedPosts(w http.ResponseWriter, r *http.Request) {
	client, ok := h.viewerClient(w, r)
	if !ok {
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	posts, cursor := client.GetAuthorFeed(r.Context(), chi.URLParam(r, "handle"), r.URL.Query().Get("cursor"), limit)

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"posts":  posts,
		"cursor": cursor,
	})
}

// viewerClient resolves the requesting profile's federation client. The
// response is already written when ok is false.
func (h *Handlers) viewerClient(w http.ResponseWriter, r *http.Request) (core.FederationClient, bool) {
	profile, err := h.Profiles.GetByUsername(r.Context(), r.URL.Query().Get("viewer"))
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}

	client := h.Federation.ClientFor(profile)
	if client == nil {
		writeError(w, http.StatusBadRequest, "No federation account linked")
		return nil, false
	}

	return client, true
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, federation.ErrNotLinked),
		errors.Is(err, core.ErrAuthExpired),
		errors.Is(err, core.ErrUploadRejected):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrStoreUnavailable):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.Logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeSuccess(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"status":  "error",
		"message": message,
	})
}
