// Package feed merges local posts and remote AT-Proto posts into one
// consistently ordered, paginated feed.
package feed

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/lukelittle/claroz/internal/config"
	"github.com/lukelittle/claroz/internal/core"
	"github.com/lukelittle/claroz/internal/metrics"
	"github.com/lukelittle/claroz/pkg/async"
)

const (
	defaultPageSize   = 10
	defaultLimit      = 10
	defaultWorkers    = 4
	defaultCallBudget = 5 * time.Second
)

// Aggregator is stateless across requests: every feed request resolves its
// targets, fetches, normalizes, merges and paginates from scratch.
type Aggregator struct {
	Logger *slog.Logger
	Config *config.Config

	Posts      core.PostRepository
	Profiles   core.ProfileRepository
	Follows    core.FollowGraph
	Store      core.ContentStore
	Federation core.FederationService
}

func (a *Aggregator) Init(_ context.Context) error {
	a.Logger = a.Logger.With("component", "feed.Aggregator")
	return nil
}

// ListFeed is the following feed: posts of everyone the viewer follows,
// local and federated, merged.
func (a *Aggregator) ListFeed(ctx context.Context, viewer uuid.UUID, page int) (*core.FeedPage, error) {
	targets, err := a.Follows.FolloweesOf(ctx, viewer)
	if err != nil {
		return nil, err
	}

	return a.aggregate(ctx, targets, page)
}

// ListProfileFeed is the feed of a single profile, addressed by username.
func (a *Aggregator) ListProfileFeed(ctx context.Context, username string, page int) (*core.FeedPage, error) {
	profile, err := a.Profiles.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return a.aggregate(ctx, []core.ProfileModel{*profile}, page)
}

func (a *Aggregator) aggregate(ctx context.Context, targets []core.ProfileModel, page int) (*core.FeedPage, error) {
	ids := lo.Map(targets, func(t core.ProfileModel, _ int) uuid.UUID {
		return t.ID
	})

	// The local store is authoritative: its failure fails the request,
	// unlike any remote fetch.
	locals, err := a.Posts.ListByProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := lo.Map(locals, func(post core.LocalPost, _ int) core.FeedItem {
		return a.normalizeLocal(post)
	})

	items = append(items, a.fetchFederated(ctx, targets)...)

	// Stable sort keeps insertion order on equal timestamps: local posts
	// first, then remote targets in fetch order. Deterministic without
	// depending on remote tie-break behavior.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	return paginate(items, page, a.pageSize()), nil
}

// fetchFederated issues one author-feed fetch per linked target,
// concurrently and independently: one unreachable server degrades to zero
// items for that target without affecting the others.
func (a *Aggregator) fetchFederated(ctx context.Context, targets []core.ProfileModel) []core.FeedItem {
	linked := lo.Filter(targets, func(t core.ProfileModel, _ int) bool {
		return t.FederationLinked() && t.FederationHandle != nil
	})
	if len(linked) == 0 {
		return nil
	}

	limit := a.limit()
	budget := a.callBudget()

	results := async.PoolMap(ctx, a.workers(), linked, func(ctx context.Context, target core.ProfileModel) ([]core.FeedItem, error) {
		client := a.Federation.ClientFor(&target)
		if client == nil {
			return nil, nil
		}

		callCtx, cancel := context.WithTimeout(ctx, budget)
		defer cancel()

		posts, _ := client.GetAuthorFeed(callCtx, *target.FederationHandle, "", limit)
		if posts == nil {
			metrics.CountFeedTarget("degraded")
			a.Logger.Warn("remote target degraded to empty result", "handle", *target.FederationHandle)
			return nil, nil
		}

		metrics.CountFeedTarget("ok")
		return a.normalizeFederated(posts), nil
	})

	var items []core.FeedItem
	for _, res := range results {
		fetched, _ := res.Unpack()
		items = append(items, fetched...)
	}

	return items
}

func (a *Aggregator) normalizeLocal(post core.LocalPost) core.FeedItem {
	mediaURL := ""
	if post.Post.ImageCID != "" {
		mediaURL = a.Store.GatewayURL(post.Post.ImageCID)
	}

	return core.FeedItem{
		ID:                post.Post.ID.String(),
		Federated:         false,
		AuthorHandle:      post.AuthorHandle,
		AuthorDisplayName: post.AuthorDisplayName,
		MediaURL:          mediaURL,
		Caption:           post.Post.Caption,
		CreatedAt:         post.Post.CreatedAt,
		LikeCount:         post.LikeCount,
		CommentCount:      post.CommentCount,
	}
}

// normalizeFederated projects remote posts into feed items, dropping any
// malformed item so that one bad record cannot fail the whole request.
func (a *Aggregator) normalizeFederated(posts []core.FederatedPost) []core.FeedItem {
	return lo.FilterMap(posts, func(post core.FederatedPost, _ int) (core.FeedItem, bool) {
		if post.URI == "" {
			a.Logger.Warn("dropping federated post without URI")
			return core.FeedItem{}, false
		}

		createdAt, err := time.Parse(time.RFC3339, post.CreatedAt)
		if err != nil {
			a.Logger.Warn("dropping federated post with malformed timestamp",
				"uri", post.URI, "createdAt", post.CreatedAt, "error", err)
			return core.FeedItem{}, false
		}

		return core.FeedItem{
			ID:                post.URI,
			Federated:         true,
			AuthorHandle:      post.Author.Handle,
			AuthorDisplayName: post.Author.DisplayName,
			Caption:           post.Text,
			CreatedAt:         createdAt,
			LikeCount:         post.LikeCount,
			CommentCount:      post.ReplyCount,
		}, true
	})
}

func paginate(items []core.FeedItem, page, size int) *core.FeedPage {
	if page < 1 {
		page = 1
	}

	total := len(items)

	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	return &core.FeedPage{
		Items: items[start:end],
		Page:  page,
		Total: total,
	}
}

func (a *Aggregator) pageSize() int {
	if a.Config != nil && a.Config.FeedPageSize > 0 {
		return a.Config.FeedPageSize
	}
	return defaultPageSize
}

func (a *Aggregator) limit() int {
	if a.Config != nil && a.Config.FederationLimit > 0 {
		return a.Config.FederationLimit
	}
	return defaultLimit
}

func (a *Aggregator) workers() int {
	if a.Config != nil && a.Config.FederationWorkers > 0 {
		return a.Config.FederationWorkers
	}
	return defaultWorkers
}

func (a *Aggregator) callBudget() time.Duration {
	if a.Config != nil && a.Config.FederationTimeout > 0 {
		return a.Config.FederationTimeout
	}
	return defaultCallBudget
}
